package fees

import (
	"math"
	"time"
)

const (
	// TierOneRate applies to each of the first TierOneDays overdue days.
	TierOneRate = 0.50
	// TierTwoRate applies to every overdue day after TierOneDays.
	TierTwoRate = 1.00
	// TierOneDays is the length of the cheaper tier.
	TierOneDays = 7
	// MaxFee caps the fee for a single loan.
	MaxFee = 15.00
)

const (
	StatusNoFee   = "no fee"
	StatusOverdue = "overdue"
)

// Quote is the outcome of a fee computation.
type Quote struct {
	Amount      float64 `json:"fee_amount"`
	DaysOverdue int     `json:"days_overdue"`
	Status      string  `json:"status"`
}

// Compute returns the late fee owed for a loan due at due when assessed at
// ref. Days are whole elapsed days; partial days do not count. The fee is
// tiered and capped at MaxFee, rounded to 2 decimals.
func Compute(due, ref time.Time) Quote {
	days := int(ref.Sub(due).Hours() / 24)
	if days <= 0 {
		return Quote{Amount: 0, DaysOverdue: 0, Status: StatusNoFee}
	}

	firstSeven := float64(min(days, TierOneDays)) * TierOneRate
	afterSeven := float64(max(days-TierOneDays, 0)) * TierTwoRate
	fee := math.Min(firstSeven+afterSeven, MaxFee)

	return Quote{
		Amount:      math.Round(fee*100) / 100,
		DaysOverdue: days,
		Status:      StatusOverdue,
	}
}
