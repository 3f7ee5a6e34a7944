package api

// Balance is a member's net position. Positive means the group owes them.
type Balance struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName,omitempty"`
	Balance     int64  `json:"balance"`
	TotalPaid   int64  `json:"totalPaid"`
	TotalOwed   int64  `json:"totalOwed"`
	Display     string `json:"balanceDisplay,omitempty"`
}

// Transfer is a suggested payment from a debtor to a creditor.
type Transfer struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Amount  int64  `json:"amount"`
	Display string `json:"amountDisplay,omitempty"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type GetGroupBalancesResponse struct {
	Currency    string      `json:"currency"`
	Balances    []*Balance  `json:"balances"`
	Suggestions []*Transfer `json:"suggestions"`
}

// PairBalance is signed from the queried user's point of view: positive means
// the other user owes them.
type PairBalance struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	Balance     int64  `json:"balance"`
	Display     string `json:"balanceDisplay,omitempty"`
}

type GetPairwiseBalancesRequest struct {
	GroupID string `json:"groupId" validate:"required"`

	// UserID defaults to the caller.
	UserID string `json:"userId,omitempty"`
}

type GetPairwiseBalancesResponse struct {
	UserID   string         `json:"userId"`
	Balances []*PairBalance `json:"balances"`
}

type ExportGroupRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

// ExportGroupResponse is a full snapshot of a group's ledger.
type ExportGroupResponse struct {
	Group       *Group        `json:"group"`
	Expenses    []*Expense    `json:"expenses"`
	Settlements []*Settlement `json:"settlements"`
	Balances    []*Balance    `json:"balances"`
	Suggestions []*Transfer   `json:"suggestions"`
	ExportedAt  int64         `json:"exportedAt"`
	ExportedBy  string        `json:"exportedBy"`
}
