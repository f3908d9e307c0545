package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/billbatista/acasinha-splitter/eventlogger"
	"github.com/billbatista/acasinha-splitter/history"
	"github.com/billbatista/acasinha-splitter/money"
	"github.com/shopspring/decimal"
)

// Store persists the serialized ledger. Load returns nil data and no error
// when nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
}

// Renderer is notified with a fresh View after every change.
type Renderer interface {
	Render(v View)
}

// Confirmer decides synchronously whether a participant may be removed.
type Confirmer func(name string) bool

// EventSink receives audit events. *eventlogger.Worker implements it.
type EventSink interface {
	Log(e eventlogger.Event)
}

// View is a read-only copy of everything a renderer needs.
type View struct {
	State   State
	Phase   Phase
	Split   []Share
	CanUndo bool
	CanRedo bool
}

type Option func(*Engine)

func WithRenderer(r Renderer) Option {
	return func(e *Engine) {
		e.renderer = r
	}
}

func WithEventSink(s EventSink) Option {
	return func(e *Engine) {
		e.events = s
	}
}

// WithDefaultPeople sets the roster used for a fresh ledger and after Reset.
func WithDefaultPeople(people []string) Option {
	return func(e *Engine) {
		e.defaultPeople = slices.Clone(people)
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine owns the ledger state and its undo/redo history. Its methods are
// the only way to change the ledger; all of them are serialized by one
// mutex, and each one either fails validation without touching anything or
// snapshots history before it mutates.
type Engine struct {
	mu      sync.Mutex
	state   State
	history *history.Manager[State]

	store         Store
	renderer      Renderer
	events        EventSink
	defaultPeople []string
	now           func() time.Time
}

// NewEngine loads the ledger from store, falling back to a fresh default
// ledger when nothing is stored or the stored data is unusable.
func NewEngine(ctx context.Context, store Store, opts ...Option) *Engine {
	e := &Engine{
		history:       history.New(State.Clone),
		store:         store,
		defaultPeople: DefaultPeople,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.state = e.load(ctx)
	return e
}

func (e *Engine) load(ctx context.Context) State {
	fresh := NewState(e.defaultPeople, e.now().UTC())
	if e.store == nil {
		return fresh
	}

	data, err := e.store.Load(ctx)
	if err != nil {
		slog.Warn("could not load state", "error", err)
		return fresh
	}
	if data == nil {
		return fresh
	}

	s, err := Decode(data)
	if err != nil {
		slog.Warn("could not load state", "error", err)
		return fresh
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = fresh.CreatedAt
	}
	return s
}

// State returns a copy of the current ledger.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view()
}

func (e *Engine) view() View {
	return View{
		State:   e.state.Clone(),
		Phase:   e.state.Phase(),
		Split:   e.state.Split(),
		CanUndo: e.history.CanUndo(),
		CanRedo: e.history.CanRedo(),
	}
}

// SetBill sets the total to split. It is only allowed once; Reset starts
// over.
func (e *Engine) SetBill(ctx context.Context, rawAmount string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	amount, ok := parsePositive(rawAmount)
	if !ok {
		return invalid(ErrInvalidAmount, "Please enter a valid bill amount!")
	}
	if e.state.Phase() == PhaseActive {
		return invalid(ErrBillAlreadySet, "The bill is already set. Reset to start a new one.")
	}

	e.history.Snapshot(e.state)
	e.state.BillAmount = amount
	e.state.RemainingAmount = amount

	e.commit(ctx, EventBillSet, BillSetEvent{Amount: money.Format(amount)})
	return nil
}

// SubmitPayment records that amount was paid and credits it equally to the
// selected participants. Allocations are updated in place; there is no
// full recalculation.
func (e *Engine) SubmitPayment(ctx context.Context, rawAmount string, selected []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Phase() == PhaseUnset {
		return invalid(ErrBillNotSet, "Set the bill amount first!")
	}
	amount, ok := parsePositive(rawAmount)
	if !ok {
		return invalid(ErrInvalidAmount, "Please enter a valid amount!")
	}
	if amount.GreaterThan(e.state.RemainingAmount) {
		return invalid(ErrExceedsRemaining,
			fmt.Sprintf("Amount exceeds remaining (%s)!", money.Format(e.state.RemainingAmount)))
	}
	people := uniqueNames(selected)
	if len(people) == 0 {
		return invalid(ErrNoParticipants, "Please select at least one person!")
	}

	e.history.Snapshot(e.state)

	perPerson := equalShare(amount, len(people))
	for _, p := range people {
		e.state.Payments[p] = e.state.Payments[p].Add(perPerson)
	}
	e.state.RemainingAmount = e.state.RemainingAmount.Sub(amount)
	e.state.Transactions = append(e.state.Transactions, Transaction{Amount: amount, People: people})

	e.commit(ctx, EventPaymentSubmitted, PaymentSubmittedEvent{
		Amount:    money.Format(amount),
		People:    people,
		PerPerson: money.Format(perPerson),
		Remaining: money.Format(e.state.RemainingAmount),
	})
	return nil
}

// AddPerson appends a participant. Earlier transactions are left alone: a
// newcomer has no share in them.
func (e *Engine) AddPerson(ctx context.Context, rawName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Phase() == PhaseUnset {
		return invalid(ErrBillNotSet, "Set the bill amount first!")
	}
	name := strings.TrimSpace(rawName)
	if name == "" {
		return invalid(ErrEmptyName, "Enter a valid name.")
	}
	if e.state.hasPersonFold(name) {
		return invalid(ErrDuplicateName, fmt.Sprintf("%q already exists.", name))
	}

	e.history.Snapshot(e.state)
	e.state.People = append(e.state.People, name)
	if e.state.Payments == nil {
		e.state.Payments = make(map[string]decimal.Decimal)
	}
	e.state.Payments[name] = decimal.Zero

	e.commit(ctx, EventPersonAdded, PersonAddedEvent{Name: name})
	return nil
}

// RemovePerson drops a participant once confirm agrees, then recalculates
// every transaction against the remaining roster. It reports whether the
// participant was removed; an unknown name or a declined confirmation is
// not an error.
func (e *Engine) RemovePerson(ctx context.Context, name string, confirm Confirmer) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Phase() == PhaseUnset {
		return false, invalid(ErrBillNotSet, "Set the bill amount first!")
	}
	if !e.state.HasPerson(name) {
		return false, nil
	}
	if confirm == nil || !confirm(name) {
		return false, nil
	}

	e.history.Snapshot(e.state)
	e.state.People = slices.DeleteFunc(e.state.People, func(p string) bool { return p == name })
	delete(e.state.Payments, name)
	Recalculate(&e.state)

	e.commit(ctx, EventPersonRemoved, PersonRemovedEvent{
		Name:      name,
		Remaining: money.Format(e.state.RemainingAmount),
		Orphaned:  e.state.orphanedTransactions(),
	})
	return true, nil
}

// DeleteTransaction removes the transaction at index and recalculates. An
// out of range index does nothing.
func (e *Engine) DeleteTransaction(ctx context.Context, index int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if index < 0 || index >= len(e.state.Transactions) {
		return false
	}

	e.history.Snapshot(e.state)
	removed := e.state.Transactions[index]
	e.state.Transactions = slices.Delete(e.state.Transactions, index, index+1)
	Recalculate(&e.state)

	e.commit(ctx, EventTransactionDeleted, TransactionDeletedEvent{
		Index:     index,
		Amount:    money.Format(removed.Amount),
		People:    removed.People,
		Remaining: money.Format(e.state.RemainingAmount),
	})
	return true
}

// Undo restores the state before the last change. It reports false when
// there is nothing to undo.
func (e *Engine) Undo(ctx context.Context) (State, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev, ok := e.history.Undo(e.state)
	if !ok {
		return e.state.Clone(), false
	}
	e.state = prev

	undo, redo := e.history.Len()
	e.commit(ctx, EventUndone, HistoryEvent{UndoDepth: undo, RedoDepth: redo})
	return e.state.Clone(), true
}

// Redo re-applies the last undone change.
func (e *Engine) Redo(ctx context.Context) (State, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, ok := e.history.Redo(e.state)
	if !ok {
		return e.state.Clone(), false
	}
	e.state = next

	undo, redo := e.history.Len()
	e.commit(ctx, EventRedone, HistoryEvent{UndoDepth: undo, RedoDepth: redo})
	return e.state.Clone(), true
}

// Reset throws everything away: persisted state, history and the ledger
// itself. The fresh ledger is persisted by the next change.
func (e *Engine) Reset(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.store != nil {
		if err := e.store.Clear(ctx); err != nil {
			slog.Error("failed to clear state", "error", err)
		}
	}
	e.history.Clear()
	e.state = NewState(e.defaultPeople, e.now().UTC())

	e.notify()
	e.emit(ctx, EventReset, ResetEvent{CreatedAt: e.state.CreatedAt})
}

// commit runs after every successful change: persist, re-render, audit.
// Persistence failures are logged and otherwise ignored.
func (e *Engine) commit(ctx context.Context, eventType string, data any) {
	e.persist(ctx)
	e.notify()
	e.emit(ctx, eventType, data)
}

func (e *Engine) persist(ctx context.Context) {
	if e.store == nil {
		return
	}
	data, err := Encode(e.state)
	if err == nil {
		err = e.store.Save(ctx, data)
	}
	if err != nil {
		slog.Error("failed to save state", "error", err)
	}
}

func (e *Engine) notify() {
	if e.renderer != nil {
		e.renderer.Render(e.view())
	}
}

func (e *Engine) emit(ctx context.Context, eventType string, data any) {
	if e.events == nil {
		return
	}
	e.events.Log(eventlogger.NewEvent(
		eventlogger.WithType(eventType),
		eventlogger.WithData(data),
		eventlogger.WithMetadata(eventlogger.MetadataFromContext(ctx)),
		eventlogger.WithTime(e.now().UTC()),
	))
}

// IsValidation reports whether err is a rejected input and returns the
// message to show the user.
func IsValidation(err error) (string, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message, true
	}
	return "", false
}

func parsePositive(raw string) (decimal.Decimal, bool) {
	amount, err := money.Parse(raw)
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, false
	}
	return amount, true
}

// uniqueNames keeps the first occurrence of each name, in order.
func uniqueNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || slices.Contains(out, n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (s State) orphanedTransactions() int {
	n := 0
	for _, tx := range s.Transactions {
		if !slices.ContainsFunc(tx.People, s.HasPerson) {
			n++
		}
	}
	return n
}
