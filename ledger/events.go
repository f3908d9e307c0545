package ledger

import "time"

// Event types written to the audit log.
const (
	EventBillSet            = "ledger.bill_set"
	EventPaymentSubmitted   = "ledger.payment_submitted"
	EventPersonAdded        = "ledger.person_added"
	EventPersonRemoved      = "ledger.person_removed"
	EventTransactionDeleted = "ledger.transaction_deleted"
	EventUndone             = "ledger.undone"
	EventRedone             = "ledger.redone"
	EventReset              = "ledger.reset"
)

type BillSetEvent struct {
	Amount string `json:"amount"`
}

type PaymentSubmittedEvent struct {
	Amount    string   `json:"amount"`
	People    []string `json:"people"`
	PerPerson string   `json:"per_person"`
	Remaining string   `json:"remaining"`
}

type PersonAddedEvent struct {
	Name string `json:"name"`
}

type PersonRemovedEvent struct {
	Name      string `json:"name"`
	Remaining string `json:"remaining"`
	// Orphaned counts transactions that no longer have any payer on the
	// roster.
	Orphaned int `json:"orphaned"`
}

type TransactionDeletedEvent struct {
	Index     int      `json:"index"`
	Amount    string   `json:"amount"`
	People    []string `json:"people"`
	Remaining string   `json:"remaining"`
}

type HistoryEvent struct {
	UndoDepth int `json:"undo_depth"`
	RedoDepth int `json:"redo_depth"`
}

type ResetEvent struct {
	CreatedAt time.Time `json:"created_at"`
}
