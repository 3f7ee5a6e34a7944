package api

// MaxAmount is the largest amount, in minor units, accepted on any ledger
// entry. The lte tags below carry the same literal.
const MaxAmount int64 = 1_000_000_000_000_000

type Payment struct {
	UserID string `json:"userId" validate:"required"`
	Amount int64  `json:"amount" validate:"gt=0,lte=1000000000000000"`
}

type Split struct {
	UserID  string `json:"userId"`
	Amount  int64  `json:"amount"`
	IsPaid  bool   `json:"isPaid"`
	Display string `json:"amountDisplay,omitempty"`
}

type Expense struct {
	ID          string     `json:"id"`
	GroupID     string     `json:"groupId"`
	Description string     `json:"description"`
	Amount      int64      `json:"amount"`
	Display     string     `json:"amountDisplay,omitempty"`
	Currency    string     `json:"currency"`
	PaidBy      string     `json:"paidBy"`
	Category    string     `json:"category,omitempty"`
	Date        int64      `json:"date"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   int64      `json:"createdAt"`
	Payments    []*Payment `json:"payments"`
	Splits      []*Split   `json:"splits"`
}

// SplitInput is one participant of a new expense. Amount is read for exact
// splits, Percentage for percentage splits.
type SplitInput struct {
	UserID     string   `json:"userId" validate:"required"`
	Amount     *int64   `json:"amount,omitempty" validate:"omitempty,gte=0,lte=1000000000000000"`
	Percentage *float64 `json:"percentage,omitempty"`
}

type CreateExpenseRequest struct {
	GroupID     string `json:"groupId" validate:"required"`
	Description string `json:"description" validate:"required,max=200"`
	Amount      int64  `json:"amount" validate:"lte=1000000000000000"`
	// AmountText is a major-unit amount such as "12.34", read when Amount is zero.
	AmountText string `json:"amountText,omitempty" validate:"omitempty,max=32"`
	Currency   string `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	PaidBy     string `json:"paidBy" validate:"required"`
	Category   string `json:"category,omitempty" validate:"max=50"`
	Date       int64  `json:"date,omitempty"`
	Notes      string `json:"notes,omitempty" validate:"max=1000"`

	SplitType string        `json:"splitType" validate:"required,oneof=equal exact percentage"`
	Splits    []*SplitInput `json:"splits" validate:"required,min=1,dive,required"`

	// PaidByMultiple lists payers when more than one person funded the expense.
	PaidByMultiple []*Payment `json:"paidByMultiple,omitempty" validate:"dive,required"`
}

type ExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expenseId" validate:"required"`
}

type ListExpensesRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId" validate:"required"`
}

type DeleteExpenseResponse struct{}

type Settlement struct {
	ID         string `json:"id"`
	GroupID    string `json:"groupId"`
	FromUserID string `json:"fromUserId"`
	ToUserID   string `json:"toUserId"`
	Amount     int64  `json:"amount"`
	Display    string `json:"amountDisplay,omitempty"`
	Currency   string `json:"currency"`
	Date       int64  `json:"date"`
	Notes      string `json:"notes,omitempty"`
	CreatedBy  string `json:"createdBy"`
	CreatedAt  int64  `json:"createdAt"`
	// Direction is "paid" or "received" relative to the user a listing was
	// filtered by.
	Direction string `json:"direction,omitempty"`
}

type CreateSettlementRequest struct {
	GroupID    string `json:"groupId" validate:"required"`
	FromUserID string `json:"fromUserId" validate:"required"`
	ToUserID   string `json:"toUserId" validate:"required,nefield=FromUserID"`
	Amount     int64  `json:"amount" validate:"gte=0,lte=1000000000000000"`
	AmountText string `json:"amountText,omitempty" validate:"omitempty,max=32"`
	Currency   string `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	Date       int64  `json:"date,omitempty"`
	Notes      string `json:"notes,omitempty" validate:"max=1000"`
}

type SettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

// ListSettlementsRequest lists a group's settlements. When UserID is set only
// settlements that user paid or received are returned.
type ListSettlementsRequest struct {
	GroupID string `json:"groupId" validate:"required"`
	UserID  string `json:"userId,omitempty"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

type DeleteSettlementRequest struct {
	SettlementID string `json:"settlementId" validate:"required"`
}

type DeleteSettlementResponse struct{}
