package ledger

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/billbatista/acasinha-splitter/money"
	"github.com/shopspring/decimal"
)

// StorageKey identifies the persisted ledger in key/value stores.
const StorageKey = "billSplitter.v1"

const (
	peopleSeparator = ", "
	createdAtLayout = "2006-01-02T15:04:05.000Z07:00"
)

type wireTransaction struct {
	Amount string `json:"amount"`
	People string `json:"people"`
}

type wireState struct {
	BillAmount      *float64           `json:"billAmount"`
	RemainingAmount float64            `json:"remainingAmount"`
	People          *[]string          `json:"people"`
	Payments        map[string]float64 `json:"payments"`
	Transactions    []wireTransaction  `json:"transactions"`
	CreatedAt       string             `json:"createdAt,omitempty"`
}

// Encode serializes s in the persisted JSON form. Transaction amounts are
// written as formatted currency strings and payers as a comma-joined list.
func Encode(s State) ([]byte, error) {
	bill := s.BillAmount.InexactFloat64()
	people := s.People
	if people == nil {
		people = []string{}
	}

	w := wireState{
		BillAmount:      &bill,
		RemainingAmount: s.RemainingAmount.InexactFloat64(),
		People:          &people,
		Payments:        make(map[string]float64, len(s.Payments)),
		Transactions:    make([]wireTransaction, 0, len(s.Transactions)),
	}
	for name, amount := range s.Payments {
		w.Payments[name] = amount.InexactFloat64()
	}
	for _, tx := range s.Transactions {
		w.Transactions = append(w.Transactions, wireTransaction{
			Amount: money.Format(tx.Amount),
			People: strings.Join(tx.People, peopleSeparator),
		})
	}
	if !s.CreatedAt.IsZero() {
		w.CreatedAt = s.CreatedAt.UTC().Format(createdAtLayout)
	}

	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encoding ledger state: %w", err)
	}
	return data, nil
}

// Decode parses persisted JSON. The people list must be an array and the
// bill amount a number; everything else is optional and defaulted. A zero
// CreatedAt means the stored state did not carry a usable timestamp.
//
// Every participant gets a payments entry, but entries for names that are no
// longer participants are kept as stored until the next recalculation.
func Decode(data []byte) (State, error) {
	var w wireState
	if err := json.Unmarshal(data, &w); err != nil {
		return State{}, fmt.Errorf("%w: %w", ErrMalformedState, err)
	}
	if w.People == nil {
		return State{}, fmt.Errorf("%w: people is not a list", ErrMalformedState)
	}
	if w.BillAmount == nil {
		return State{}, fmt.Errorf("%w: billAmount is not a number", ErrMalformedState)
	}

	s := State{
		BillAmount:      decimal.NewFromFloat(*w.BillAmount),
		RemainingAmount: decimal.NewFromFloat(w.RemainingAmount),
		People:          *w.People,
		Payments:        make(map[string]decimal.Decimal, len(w.Payments)),
		Transactions:    make([]Transaction, 0, len(w.Transactions)),
	}
	for name, amount := range w.Payments {
		s.Payments[name] = decimal.NewFromFloat(amount)
	}
	for _, p := range s.People {
		if _, ok := s.Payments[p]; !ok {
			s.Payments[p] = decimal.Zero
		}
	}
	for _, tx := range w.Transactions {
		s.Transactions = append(s.Transactions, Transaction{
			Amount: money.ParseOrZero(tx.Amount),
			People: splitPeople(tx.People),
		})
	}
	if w.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, w.CreatedAt); err == nil {
			s.CreatedAt = t
		}
	}
	return s, nil
}

func splitPeople(joined string) []string {
	people := make([]string, 0)
	for _, p := range strings.Split(joined, peopleSeparator) {
		if p != "" {
			people = append(people, p)
		}
	}
	return people
}
