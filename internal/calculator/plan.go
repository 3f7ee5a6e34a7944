package calculator

// ExpenseRequest is the allocation input for a new expense.
type ExpenseRequest struct {
	Amount    int64
	PaidBy    string
	SplitType SplitType
	Splits    []SplitInput

	// Payers lists explicit payers for multi-payer expenses. Empty means
	// PaidBy funded the whole amount.
	Payers []Share
}

// SplitRow is a split ready to persist.
type SplitRow struct {
	UserID string
	Amount int64
	IsPaid bool
}

// ExpensePlan is the set of rows to write for a new expense.
type ExpensePlan struct {
	Payments []Share
	Splits   []SplitRow
}

// PlanExpense validates req against the group's members and allocates it.
//
// Checks run in a fixed order and stop at the first failure: split
// membership, then payers (sum before membership when there are several),
// then the allocation itself. Nothing is produced on failure.
func PlanExpense(req ExpenseRequest, members map[string]bool) (*ExpensePlan, error) {
	for _, s := range req.Splits {
		if err := CheckMembership(members, s.UserID); err != nil {
			return nil, err
		}
	}

	payments, err := ResolvePayments(req.Amount, req.PaidBy, req.Payers)
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		if err := CheckMembership(members, p.UserID); err != nil {
			return nil, err
		}
	}

	shares, err := Allocate(req.Amount, req.SplitType, req.Splits)
	if err != nil {
		return nil, err
	}

	paid := make(map[string]bool, len(payments))
	for _, p := range payments {
		paid[p.UserID] = true
	}
	splits := make([]SplitRow, len(shares))
	for i, s := range shares {
		splits[i] = SplitRow{UserID: s.UserID, Amount: s.Amount, IsPaid: paid[s.UserID]}
	}

	return &ExpensePlan{Payments: payments, Splits: splits}, nil
}
