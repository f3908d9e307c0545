package eventlogger

import (
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/billbatista/acasinha-splitter/database"
)

type recordingLogger struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingLogger) Save(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingLogger) GetByType(_ context.Context, eventType string) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestNewEvent_Options(t *testing.T) {
	at := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	e := NewEvent(
		WithType("ledger.bill_set"),
		WithData(map[string]string{"amount": "€100.00"}),
		WithMetadata(map[string]string{"source": "cli"}),
		WithMetadata(map[string]string{"request_id": "abc"}),
		WithTime(at),
	)
	if e.Type != "ledger.bill_set" {
		t.Errorf("Type = %q", e.Type)
	}
	if e.Metadata["source"] != "cli" || e.Metadata["request_id"] != "abc" {
		t.Errorf("Metadata = %v, want both keys merged", e.Metadata)
	}
	if !e.CreatedAt.Equal(at) {
		t.Errorf("CreatedAt = %v, want %v", e.CreatedAt, at)
	}
	if e.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("ID not generated")
	}
}

func TestContextMetadata(t *testing.T) {
	ctx := ContextWithMetadata(context.Background(), map[string]string{"a": "1"})
	ctx = ContextWithMetadata(ctx, map[string]string{"b": "2"})

	md := MetadataFromContext(ctx)
	if md["a"] != "1" || md["b"] != "2" {
		t.Errorf("MetadataFromContext = %v", md)
	}
	if MetadataFromContext(context.Background()) != nil {
		t.Error("empty context returned metadata")
	}
}

func TestWorker_SavesAndDrains(t *testing.T) {
	rec := &recordingLogger{}
	w := NewWorker(rec, 10)
	w.Start()

	for range 5 {
		w.Log(NewEvent(WithType("ledger.person_added")))
	}
	w.Shutdown()

	got, _ := rec.GetByType(context.Background(), "ledger.person_added")
	if len(got) != 5 {
		t.Errorf("saved %d events, want 5", len(got))
	}

	w.Log(NewEvent(WithType("ledger.person_added")))
	if w.Dropped() != 1 {
		t.Errorf("Dropped = %d after logging to a stopped worker, want 1", w.Dropped())
	}
	w.Shutdown()
}

func TestWorker_DropsWhenFull(t *testing.T) {
	rec := &recordingLogger{}
	w := NewWorker(rec, 2)

	for range 3 {
		w.Log(NewEvent(WithType("x")))
	}
	if w.Dropped() != 1 {
		t.Errorf("Dropped = %d, want 1", w.Dropped())
	}

	w.Start()
	w.Shutdown()
	got, _ := rec.GetByType(context.Background(), "x")
	if len(got) != 2 {
		t.Errorf("saved %d events, want 2", len(got))
	}
}

func TestSqlEventLogger_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, database.SQLite, filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	el := NewSqlEventLogger(db, database.SQLite)
	want := NewEvent(
		WithType("ledger.payment_submitted"),
		WithData(map[string]any{"amount": "€40.00"}),
		WithMetadata(map[string]string{"request_id": "r-1"}),
	)
	if err := el.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := el.Save(ctx, NewEvent(WithType("ledger.reset"))); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := el.GetByType(ctx, "ledger.payment_submitted")
	if err != nil {
		t.Fatalf("GetByType: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	if got[0].ID != want.ID {
		t.Errorf("ID = %s, want %s", got[0].ID, want.ID)
	}
	if got[0].Metadata["request_id"] != "r-1" {
		t.Errorf("Metadata = %v", got[0].Metadata)
	}
	var data map[string]string
	if err := json.Unmarshal(got[0].Data.(json.RawMessage), &data); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	if data["amount"] != "€40.00" {
		t.Errorf("Data = %v", data)
	}
}

func TestSlogEventLogger(t *testing.T) {
	el := NewSlogEventLogger(nil)
	ctx := context.Background()
	_ = el.Save(ctx, NewEvent(WithType("a")))
	_ = el.Save(ctx, NewEvent(WithType("b")))
	_ = el.Save(ctx, NewEvent(WithType("a")))

	got, _ := el.GetByType(ctx, "a")
	if len(got) != 2 {
		t.Errorf("GetByType(a) returned %d events, want 2", len(got))
	}
}

func TestSlogEventLogger_KeepsOnlyRecentEvents(t *testing.T) {
	el := NewSlogEventLogger(slog.New(slog.DiscardHandler))
	ctx := context.Background()
	for i := range recentEvents * 4 {
		_ = el.Save(ctx, NewEvent(WithType("tick"), WithData(i)))
	}
	_ = el.Save(ctx, NewEvent(WithType("last")))

	got, _ := el.GetByType(ctx, "tick")
	if len(got) != recentEvents-1 {
		t.Fatalf("kept %d tick events, want %d", len(got), recentEvents-1)
	}
	if got[len(got)-1].Data != recentEvents*4-1 {
		t.Errorf("newest kept tick = %v, want %d", got[len(got)-1].Data, recentEvents*4-1)
	}
	if last, _ := el.GetByType(ctx, "last"); len(last) != 1 {
		t.Errorf("GetByType(last) returned %d events, want 1", len(last))
	}
	if len(el.events) != recentEvents {
		t.Errorf("len(events) = %d, want %d", len(el.events), recentEvents)
	}
}
