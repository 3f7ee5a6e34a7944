package calculator

import "fmt"

// ResolvePayments returns the payment rows that fund an expense.
//
// With no explicit payers the whole total is paid by paidBy. With explicit
// payers every amount must be positive, payers must be distinct and the
// amounts must sum to total.
func ResolvePayments(total int64, paidBy string, payers []Share) ([]Share, error) {
	if len(payers) == 0 {
		if paidBy == "" {
			return nil, fmt.Errorf("%w: payer is required", ErrValidation)
		}
		return []Share{{UserID: paidBy, Amount: total}}, nil
	}

	seen := make(map[string]bool, len(payers))
	var sum int64
	for _, p := range payers {
		if p.UserID == "" {
			return nil, fmt.Errorf("%w: payer user id is required", ErrValidation)
		}
		if seen[p.UserID] {
			return nil, fmt.Errorf("%w: duplicate payer %s", ErrValidation, p.UserID)
		}
		seen[p.UserID] = true
		if p.Amount <= 0 {
			return nil, fmt.Errorf("%w: payment by %s must be positive", ErrValidation, p.UserID)
		}
		if p.Amount > total-sum {
			return nil, fmt.Errorf("%w: payments exceed expense amount %d", ErrPaymentMismatch, total)
		}
		sum += p.Amount
	}
	if sum != total {
		return nil, fmt.Errorf("%w: payments sum to %d, expense amount is %d", ErrPaymentMismatch, sum, total)
	}

	out := make([]Share, len(payers))
	copy(out, payers)
	return out, nil
}

// CheckMembership fails with ErrMembership naming the first user that is not
// in members.
func CheckMembership(members map[string]bool, userIDs ...string) error {
	for _, id := range userIDs {
		if !members[id] {
			return fmt.Errorf("%w: user %s", ErrMembership, id)
		}
	}
	return nil
}
