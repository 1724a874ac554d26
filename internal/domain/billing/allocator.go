package billing

import (
	"bytes"
	"sort"
	"time"

	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OutstandingBill is the allocator's snapshot of one bill
type OutstandingBill struct {
	BillID     uuid.UUID
	BillNumber string
	BalanceDue decimal.Decimal
	CreatedAt  time.Time
}

// Allocation is the part of one incoming payment assigned to one bill
type Allocation struct {
	BillID        uuid.UUID       `json:"bill_id"`
	BillNumber    string          `json:"bill_number,omitempty"`
	AmountApplied decimal.Decimal `json:"amount_applied"`
}

// AllocationResult is the outcome of distributing one payment.
// Sum of AmountApplied plus Remainder always equals the input amount.
type AllocationResult struct {
	Allocations []Allocation    `json:"allocations"`
	Remainder   decimal.Decimal `json:"remainder"`
}

// TotalApplied returns the sum of all allocations
func (r AllocationResult) TotalApplied() decimal.Decimal {
	total := decimal.Zero
	for _, a := range r.Allocations {
		total = total.Add(a.AmountApplied)
	}
	return total
}

// Allocate distributes amount across bills in the order given, oldest first by
// convention. Each bill receives at most its balance due; bills with nothing due
// are skipped. Whatever cannot be placed is returned as Remainder.
// Allocate does not sort; use SortOldestFirst on unordered snapshots.
func Allocate(amount decimal.Decimal, bills []OutstandingBill) (AllocationResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return AllocationResult{}, shared.ErrInvalidAmount
	}

	allocations := make([]Allocation, 0, len(bills))
	remaining := amount

	for _, bill := range bills {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		if bill.BalanceDue.LessThanOrEqual(decimal.Zero) {
			continue
		}

		apply := decimal.Min(remaining, bill.BalanceDue)
		allocations = append(allocations, Allocation{
			BillID:        bill.BillID,
			BillNumber:    bill.BillNumber,
			AmountApplied: apply,
		})
		remaining = remaining.Sub(apply)
	}

	return AllocationResult{
		Allocations: allocations,
		Remainder:   remaining,
	}, nil
}

// AllocateSingle applies amount to exactly one bill, capped at its balance due
func AllocateSingle(amount decimal.Decimal, bill OutstandingBill) (AllocationResult, error) {
	return Allocate(amount, []OutstandingBill{bill})
}

// SortOldestFirst returns a copy of bills ordered by CreatedAt ascending.
// Ties are broken by bill ID so the order is deterministic.
func SortOldestFirst(bills []OutstandingBill) []OutstandingBill {
	sorted := make([]OutstandingBill, len(bills))
	copy(sorted, bills)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return bytes.Compare(sorted[i].BillID[:], sorted[j].BillID[:]) < 0
	})
	return sorted
}
