package ledger

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPeople is the roster a brand new ledger starts with.
var DefaultPeople = []string{"Apurv", "Dhaivat", "Nishant", "Rutvik"}

// Phase is derived from the bill amount: nothing but SetBill is allowed
// until a bill exists.
type Phase int

const (
	PhaseUnset Phase = iota
	PhaseActive
)

func (p Phase) String() string {
	switch p {
	case PhaseUnset:
		return "unset"
	case PhaseActive:
		return "active"
	default:
		return "unknown"
	}
}

// Transaction is one recorded payment and the people it was credited to at
// submission time.
type Transaction struct {
	Amount decimal.Decimal
	People []string
}

// State is the whole ledger. Payments holds the share each participant has
// been allocated by the recorded transactions.
type State struct {
	BillAmount      decimal.Decimal
	RemainingAmount decimal.Decimal
	People          []string
	Payments        map[string]decimal.Decimal
	Transactions    []Transaction
	CreatedAt       time.Time
}

// Share is one row of the final split.
type Share struct {
	Name   string
	Amount decimal.Decimal
}

// NewState returns an empty ledger for the given roster. Duplicate names
// (case-insensitive) and blank names are skipped.
func NewState(people []string, createdAt time.Time) State {
	s := State{
		BillAmount:      decimal.Zero,
		RemainingAmount: decimal.Zero,
		People:          make([]string, 0, len(people)),
		Payments:        make(map[string]decimal.Decimal, len(people)),
		Transactions:    make([]Transaction, 0),
		CreatedAt:       createdAt,
	}
	for _, p := range people {
		p = strings.TrimSpace(p)
		if p == "" || s.hasPersonFold(p) {
			continue
		}
		s.People = append(s.People, p)
		s.Payments[p] = decimal.Zero
	}
	return s
}

func (s State) Phase() Phase {
	if s.BillAmount.IsPositive() {
		return PhaseActive
	}
	return PhaseUnset
}

// Clone returns a deep copy that shares no slices or maps with s.
func (s State) Clone() State {
	c := s
	c.People = slices.Clone(s.People)
	c.Payments = maps.Clone(s.Payments)
	c.Transactions = make([]Transaction, len(s.Transactions))
	for i, tx := range s.Transactions {
		c.Transactions[i] = Transaction{Amount: tx.Amount, People: slices.Clone(tx.People)}
	}
	return c
}

// Equal compares two states by value. Decimals are compared numerically
// so 20 and 20.00 are the same amount.
func (s State) Equal(o State) bool {
	if !s.BillAmount.Equal(o.BillAmount) || !s.RemainingAmount.Equal(o.RemainingAmount) {
		return false
	}
	if !slices.Equal(s.People, o.People) || !s.CreatedAt.Equal(o.CreatedAt) {
		return false
	}
	if !maps.EqualFunc(s.Payments, o.Payments, decimal.Decimal.Equal) {
		return false
	}
	return slices.EqualFunc(s.Transactions, o.Transactions, func(a, b Transaction) bool {
		return a.Amount.Equal(b.Amount) && slices.Equal(a.People, b.People)
	})
}

// HasPerson reports whether name is on the roster, case-sensitively.
func (s State) HasPerson(name string) bool {
	return slices.Contains(s.People, name)
}

func (s State) hasPersonFold(name string) bool {
	return slices.ContainsFunc(s.People, func(p string) bool {
		return strings.EqualFold(p, name)
	})
}

// Split returns what each participant owes in the end: the share already
// allocated to them plus an equal part of whatever is still unpaid.
func (s State) Split() []Share {
	count := len(s.People)
	if count == 0 {
		count = 1
	}
	shared := s.RemainingAmount.Div(decimal.NewFromInt(int64(count)))

	shares := make([]Share, 0, len(s.People))
	for _, p := range s.People {
		shares = append(shares, Share{Name: p, Amount: s.Payments[p].Add(shared)})
	}
	return shares
}

// TotalAllocated sums the allocations of the current participants.
func (s State) TotalAllocated() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.People {
		total = total.Add(s.Payments[p])
	}
	return total
}

// equalShare divides amount evenly between n people. No remainder is
// redistributed.
func equalShare(amount decimal.Decimal, n int) decimal.Decimal {
	return amount.Div(decimal.NewFromInt(int64(n)))
}
