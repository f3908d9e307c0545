package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/billbatista/acasinha-splitter/eventlogger"
	"github.com/shopspring/decimal"
)

var testTime = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fixedClock() time.Time { return testTime }

type recordingSink struct{ events []eventlogger.Event }

func (r *recordingSink) Log(e eventlogger.Event) { r.events = append(r.events, e) }

func (r *recordingSink) types() []string {
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type countingRenderer struct {
	views []View
}

func (r *countingRenderer) Render(v View) { r.views = append(r.views, v) }

func always(string) bool { return true }
func never(string) bool  { return false }

// newTestEngine returns an engine over an in-memory store with people as the
// roster and, when bill is not empty, the bill already set.
func newTestEngine(t *testing.T, bill string, people ...string) *Engine {
	t.Helper()
	e := NewEngine(context.Background(), NewMemoryRepository(),
		WithDefaultPeople(people),
		WithClock(fixedClock),
	)
	if bill != "" {
		if err := e.SetBill(context.Background(), bill); err != nil {
			t.Fatalf("SetBill(%s): %v", bill, err)
		}
	}
	return e
}

func mustPay(t *testing.T, e *Engine, amount string, people ...string) {
	t.Helper()
	if err := e.SubmitPayment(context.Background(), amount, people); err != nil {
		t.Fatalf("SubmitPayment(%s, %v): %v", amount, people, err)
	}
}

func assertAmount(t *testing.T, what string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Errorf("%s = %s, want %s", what, got, want)
	}
}

func assertPayments(t *testing.T, s State, want map[string]string) {
	t.Helper()
	if len(s.Payments) != len(want) {
		t.Errorf("Payments = %v, want %v", s.Payments, want)
		return
	}
	for name, amount := range want {
		got, ok := s.Payments[name]
		if !ok {
			t.Errorf("Payments has no entry for %q", name)
			continue
		}
		assertAmount(t, "Payments["+name+"]", got, amount)
	}
}

func eventContext() context.Context {
	return eventlogger.ContextWithMetadata(context.Background(), map[string]string{"request_id": "req-1"})
}
