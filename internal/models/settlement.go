package models

// Settlement is a direct payment between two group members recorded outside
// the expense system. Settlements are immutable once created.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// FromUserID is the user who paid (debtor settling up).
	FromUserID string

	// ToUserID is the user who received payment (creditor being paid).
	ToUserID string

	// Amount is the payment amount in minor units. Always positive.
	Amount int64

	// Currency is copied from the group when not supplied.
	Currency string

	// Date is the Unix timestamp the payment happened.
	Date int64

	// Notes is an optional description for the settlement.
	Notes string

	// CreatedBy is the user ID who recorded this settlement.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}

// Involves reports whether userID is one of the two parties.
func (s *Settlement) Involves(userID string) bool {
	return s.FromUserID == userID || s.ToUserID == userID
}
