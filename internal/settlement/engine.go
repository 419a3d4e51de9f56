// Package settlement computes per-user totals and shared-expense
// settlement from an in-memory snapshot of accounts and transactions.
// Every function is pure: it receives its own snapshot and returns a fresh
// result, so concurrent calls never interfere.
//
// Split policy: every shared transaction is divided equally among its
// participant set, which is the owner plus every distinct SharedWith entry.
// The owner's "paid" includes their own share; "owed to them" is strictly
// the other participants' shares. Participant.Share weightings are accepted
// by the data model but not applied here.
package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/dmelton/splitbook/internal/domain"
)

// TotalBalance sums the stored balance across accounts. Balances are
// authoritative at query time; transaction history is not consulted.
func TotalBalance(accounts []domain.Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	return total
}

// TotalIncome sums positive amounts over the transactions the user is a
// party to: owned, or shared with them. A user's exposure includes
// transactions they participate in even when another user owns the record.
func TotalIncome(userID string, txs []domain.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if !visibleTo(userID, t) {
			continue
		}
		if t.Amount.IsPositive() {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// TotalExpenses sums abs(amount) over the user's visible negative-amount
// transactions.
func TotalExpenses(userID string, txs []domain.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if !visibleTo(userID, t) {
			continue
		}
		if t.Amount.IsNegative() {
			total = total.Add(t.Amount.Abs())
		}
	}
	return total
}

// SharedSettlement computes the user's shared-expense position. No
// per-counterpart netting is performed; the result is a single aggregate
// across all counterparts. Empty input yields a zero settlement, never an
// error.
func SharedSettlement(userID string, txs []domain.Transaction) domain.Settlement {
	s := domain.Settlement{
		TotalShared: decimal.Zero,
		TotalPaid:   decimal.Zero,
		TotalOwed:   decimal.Zero,
		TotalOwedTo: decimal.Zero,
	}

	for _, t := range txs {
		if !t.Shared || !visibleTo(userID, t) {
			continue
		}

		full := t.Amount.Abs()
		count := participantCount(t)
		per := full.Div(decimal.NewFromInt(int64(count)))

		s.TotalShared = s.TotalShared.Add(full)

		if t.UserID == userID {
			// Owner paid the whole amount up front; the other
			// participants owe them their shares back.
			s.TotalPaid = s.TotalPaid.Add(full)
			s.TotalOwedTo = s.TotalOwedTo.Add(per.Mul(decimal.NewFromInt(int64(count - 1))))
		} else {
			s.TotalOwed = s.TotalOwed.Add(per)
		}
	}

	s.Net = s.TotalOwedTo.Sub(s.TotalOwed)
	return s
}

// participantCount is the size of the participant set: the owner plus the
// distinct SharedWith users. Listing the owner in SharedWith does not count
// them twice. Always at least 1.
func participantCount(t domain.Transaction) int {
	seen := map[string]struct{}{t.UserID: {}}
	for _, p := range t.SharedWith {
		seen[p.UserID] = struct{}{}
	}
	return len(seen)
}

func visibleTo(userID string, t domain.Transaction) bool {
	if t.UserID == userID {
		return true
	}
	if !t.Shared {
		return false
	}
	for _, p := range t.SharedWith {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
