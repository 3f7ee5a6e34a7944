package calculator

import "errors"

// Error categories returned by the allocator. Concrete errors wrap one of
// these; match with errors.Is. None of them are retryable.
var (
	// ErrValidation means split amounts or percentages are malformed or do not
	// add up to the expense total.
	ErrValidation = errors.New("validation failed")

	// ErrMembership means a participant or payer is not a member of the group.
	ErrMembership = errors.New("not a group member")

	// ErrPaymentMismatch means multiple-payer amounts do not sum to the total.
	ErrPaymentMismatch = errors.New("payments do not match expense amount")
)
