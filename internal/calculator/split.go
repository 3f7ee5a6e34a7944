package calculator

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// SplitType selects how an expense total is divided among participants.
type SplitType string

const (
	SplitEqual      SplitType = "equal"
	SplitExact      SplitType = "exact"
	SplitPercentage SplitType = "percentage"
)

// percentageTolerance is how far the sum of percentages may drift from 100.
const percentageTolerance = 0.01

// SplitInput is one participant of a split. Amount is required for exact
// splits and Percentage for percentage splits; both are ignored otherwise.
type SplitInput struct {
	UserID     string
	Amount     *int64
	Percentage *float64
}

// Share is an allocated amount in minor units.
type Share struct {
	UserID string `json:"userId"`
	Amount int64  `json:"amount"`
}

// Allocate divides total among participants according to splitType.
//
// The result has one share per participant in input order, every share is
// non-negative, and the shares sum to exactly total. Rounding remainders are
// handed out one unit at a time to participants in input order, so for equal
// splits the first (total mod n) participants pay one unit more.
func Allocate(total int64, splitType SplitType, participants []SplitInput) ([]Share, error) {
	if total <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %d", ErrValidation, total)
	}
	if len(participants) == 0 {
		return nil, fmt.Errorf("%w: at least one participant is required", ErrValidation)
	}
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if p.UserID == "" {
			return nil, fmt.Errorf("%w: participant user id is required", ErrValidation)
		}
		if seen[p.UserID] {
			return nil, fmt.Errorf("%w: duplicate participant %s", ErrValidation, p.UserID)
		}
		seen[p.UserID] = true
	}

	switch splitType {
	case SplitEqual:
		return allocateEqual(total, participants), nil
	case SplitExact:
		return allocateExact(total, participants)
	case SplitPercentage:
		return allocatePercentage(total, participants)
	default:
		return nil, fmt.Errorf("%w: unknown split type %q", ErrValidation, splitType)
	}
}

func allocateEqual(total int64, participants []SplitInput) []Share {
	n := int64(len(participants))
	base := total / n
	shares := make([]Share, len(participants))
	for i, p := range participants {
		shares[i] = Share{UserID: p.UserID, Amount: base}
	}
	distributeRemainder(shares, total-base*n)
	return shares
}

func allocateExact(total int64, participants []SplitInput) ([]Share, error) {
	shares := make([]Share, len(participants))
	var sum int64
	for i, p := range participants {
		if p.Amount == nil {
			return nil, fmt.Errorf("%w: amount is required for %s", ErrValidation, p.UserID)
		}
		a := *p.Amount
		if a < 0 {
			return nil, fmt.Errorf("%w: negative amount for %s", ErrValidation, p.UserID)
		}
		// Both sides are bounded by total, so the running sum cannot wrap.
		if a > total-sum {
			return nil, fmt.Errorf("%w: split amounts exceed expense amount %d", ErrValidation, total)
		}
		shares[i] = Share{UserID: p.UserID, Amount: a}
		sum += a
	}
	if sum != total {
		return nil, fmt.Errorf("%w: split amounts sum to %d, expected %d", ErrValidation, sum, total)
	}
	return shares, nil
}

func allocatePercentage(total int64, participants []SplitInput) ([]Share, error) {
	var pctSum float64
	for _, p := range participants {
		if p.Percentage == nil {
			return nil, fmt.Errorf("%w: percentage is required for %s", ErrValidation, p.UserID)
		}
		pct := *p.Percentage
		if math.IsNaN(pct) || pct < 0 || pct > 100 {
			return nil, fmt.Errorf("%w: percentage for %s must be between 0 and 100", ErrValidation, p.UserID)
		}
		pctSum += pct
	}
	if math.Abs(pctSum-100) > percentageTolerance {
		return nil, fmt.Errorf("%w: percentages sum to %.2f, expected 100", ErrValidation, pctSum)
	}

	shares := make([]Share, len(participants))
	whole := decimal.NewFromInt(total)
	sum := decimal.Zero
	for i, p := range participants {
		amount := percentOf(whole, *p.Percentage)
		shares[i] = Share{UserID: p.UserID, Amount: amount}
		sum = sum.Add(decimal.NewFromInt(amount))
	}

	// The shares can sum past MaxInt64 even though each one fits, so the
	// difference is taken in decimal. It is small either way.
	diff := whole.Sub(sum).IntPart()
	if diff >= 0 {
		distributeRemainder(shares, diff)
		return shares, nil
	}

	// Percentages slightly above 100 can floor to more than total.
	removeExcess(shares, -diff)
	return shares, nil
}

// percentOf floors pct percent of total in decimal arithmetic. The result
// never exceeds total since pct is at most 100.
func percentOf(total decimal.Decimal, pct float64) int64 {
	return total.Mul(decimal.NewFromFloat(pct)).Shift(-2).Floor().IntPart()
}

// removeExcess takes one unit at a time from each non-zero share in order,
// wrapping around, until excess is used up. Whole passes are applied in bulk.
func removeExcess(shares []Share, excess int64) {
	for excess > 0 {
		var nonZero, smallest int64
		for _, s := range shares {
			if s.Amount > 0 {
				if nonZero == 0 || s.Amount < smallest {
					smallest = s.Amount
				}
				nonZero++
			}
		}
		if nonZero == 0 {
			return
		}
		passes := min(excess/nonZero, smallest)
		for i := range shares {
			if shares[i].Amount == 0 {
				continue
			}
			if passes > 0 {
				shares[i].Amount -= passes
				excess -= passes
			} else if excess > 0 {
				shares[i].Amount--
				excess--
			}
		}
	}
}

// distributeRemainder adds one unit to each share in order, wrapping around,
// until remainder is used up.
func distributeRemainder(shares []Share, remainder int64) {
	n := int64(len(shares))
	if n == 0 || remainder <= 0 {
		return
	}
	whole := remainder / n
	extra := remainder % n
	for i := range shares {
		shares[i].Amount += whole
		if int64(i) < extra {
			shares[i].Amount++
		}
	}
}

// SumShares returns the total of all share amounts.
func SumShares(shares []Share) int64 {
	var sum int64
	for _, s := range shares {
		sum += s.Amount
	}
	return sum
}
