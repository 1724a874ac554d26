package billing

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// GracePeriodDays is the interest-free window after a bill is issued
	GracePeriodDays = 100
	// WeeklyInterestPercent accrues for every started week past the grace period
	WeeklyInterestPercent = 1
)

// InterestQuote is an advisory overdue-interest figure for one bill.
// It is shown to users and never written back to the ledger.
type InterestQuote struct {
	IsOverdue            bool            `json:"is_overdue"`
	DaysElapsed          int             `json:"days_elapsed"`
	DaysRemainingInGrace int             `json:"days_remaining_in_grace"`
	DaysOverGrace        int             `json:"days_over_grace,omitempty"`
	WeeksOverGrace       int             `json:"weeks_over_grace"`
	InterestRatePercent  int             `json:"interest_rate_percent"`
	InterestAmount       decimal.Decimal `json:"interest_amount"`
	NewTotalDue          decimal.Decimal `json:"new_total_due"`
}

// CalculateOverdueInterest quotes simple interest on balanceDue for a bill issued at createdAt.
// Returns nil for paid bills and bills with nothing due.
func CalculateOverdueInterest(balanceDue decimal.Decimal, createdAt, now time.Time, status BillStatus) *InterestQuote {
	if status == BillStatusPaid || balanceDue.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	daysElapsed := int(math.Floor(now.Sub(createdAt).Hours() / 24))
	daysOver := daysElapsed - GracePeriodDays

	if daysOver <= 0 {
		return &InterestQuote{
			IsOverdue:            false,
			DaysElapsed:          daysElapsed,
			DaysRemainingInGrace: GracePeriodDays - daysElapsed,
			InterestAmount:       decimal.Zero,
			NewTotalDue:          balanceDue,
		}
	}

	weeks := (daysOver + 6) / 7
	ratePercent := weeks * WeeklyInterestPercent
	interest := balanceDue.Mul(decimal.NewFromInt(int64(ratePercent))).Div(decimal.NewFromInt(100))

	return &InterestQuote{
		IsOverdue:           true,
		DaysElapsed:         daysElapsed,
		DaysOverGrace:       daysOver,
		WeeksOverGrace:      weeks,
		InterestRatePercent: ratePercent,
		InterestAmount:      interest,
		NewTotalDue:         balanceDue.Add(interest),
	}
}
