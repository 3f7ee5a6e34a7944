package models

// Expense is a shared cost recorded in a group. It is immutable once created;
// corrections are made by deleting and re-creating it.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the owning group.
	GroupID string

	// Description is the human-readable label ("Dinner", "Taxi").
	Description string

	// Amount is the total cost in minor units.
	Amount int64

	// Currency of Amount; equal to the group currency.
	Currency string

	// PaidBy is the primary payer. With multiple payers it is still recorded
	// (it decides who may delete the expense) but Payments is authoritative
	// for balances.
	PaidBy string

	// Category is optional ("Food", "Transport").
	Category string

	// Date is the Unix timestamp the expense was incurred.
	Date int64

	// Notes is optional free text.
	Notes string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64

	// Payments are the funding rows. Their amounts sum to Amount.
	Payments []Payment

	// Splits are the owed rows, one per participant. Their amounts sum to Amount.
	Splits []Split
}

// Payment records how much one user paid towards an expense.
type Payment struct {
	ExpenseID string
	UserID    string
	Amount    int64
}

// Split records how much one participant owes for an expense.
type Split struct {
	ExpenseID string
	UserID    string
	Amount    int64

	// IsPaid is true when the participant was also a payer at creation time.
	// It is not a live settlement flag.
	IsPaid bool
}
