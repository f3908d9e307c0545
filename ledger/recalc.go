package ledger

import "github.com/shopspring/decimal"

// Recalculate rebuilds RemainingAmount and Payments by replaying every
// transaction against the current roster.
//
// Each transaction always reduces the remaining amount. Its value is split
// between the payers that are still participants; a transaction whose
// payers have all been removed is credited to nobody.
func Recalculate(s *State) {
	s.RemainingAmount = s.BillAmount

	payments := make(map[string]decimal.Decimal, len(s.People))
	for _, p := range s.People {
		payments[p] = decimal.Zero
	}

	for _, tx := range s.Transactions {
		s.RemainingAmount = s.RemainingAmount.Sub(tx.Amount)

		eligible := make([]string, 0, len(tx.People))
		for _, p := range tx.People {
			if _, ok := payments[p]; ok {
				eligible = append(eligible, p)
			}
		}
		if len(eligible) == 0 {
			continue
		}

		share := equalShare(tx.Amount, len(eligible))
		for _, p := range eligible {
			payments[p] = payments[p].Add(share)
		}
	}

	s.Payments = payments
}
