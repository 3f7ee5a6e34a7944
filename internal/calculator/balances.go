package calculator

import "sort"

// ExpenseEntry is an expense with the minimal information needed for balance
// calculations.
type ExpenseEntry struct {
	ID       string
	Amount   int64
	Payments []Share // Who funded the expense
	Splits   []Share // Who owes part of it
}

// SettlementEntry is a settlement with the minimal information needed for
// balance calculations.
type SettlementEntry struct {
	FromUserID string // Who paid (debtor settling up)
	ToUserID   string // Who received (creditor being paid)
	Amount     int64
}

// MemberBalance is the balance of one group member in minor units.
type MemberBalance struct {
	UserID     string `json:"userId"`
	NetBalance int64  `json:"netBalance"` // Positive = owed money, negative = owes money
	TotalPaid  int64  `json:"totalPaid"`  // Payments plus settlements sent
	TotalOwed  int64  `json:"totalOwed"`  // Splits plus settlements received
}

// Report bundles balances and settlement suggestions for a group.
type Report struct {
	Balances    []MemberBalance `json:"balances"`
	Suggestions []Transfer      `json:"suggestions"`
}

// ComputeBalances aggregates a group's ledger into per-member balances.
//
// Payments credit payers, splits debit participants, and a settlement credits
// its sender and debits its receiver. Only users that appear in the ledger are
// returned; use FillMembers to add idle members. The result is sorted by net
// balance descending, with ties kept in order of first appearance.
func ComputeBalances(expenses []ExpenseEntry, settlements []SettlementEntry) []MemberBalance {
	var order []string
	balances := make(map[string]*MemberBalance)
	get := func(userID string) *MemberBalance {
		b, ok := balances[userID]
		if !ok {
			b = &MemberBalance{UserID: userID}
			balances[userID] = b
			order = append(order, userID)
		}
		return b
	}

	for _, e := range expenses {
		for _, p := range e.Payments {
			get(p.UserID).TotalPaid += p.Amount
		}
		for _, s := range e.Splits {
			get(s.UserID).TotalOwed += s.Amount
		}
	}

	for _, s := range settlements {
		get(s.FromUserID).TotalPaid += s.Amount
		get(s.ToUserID).TotalOwed += s.Amount
	}

	result := make([]MemberBalance, 0, len(order))
	for _, id := range order {
		b := balances[id]
		b.NetBalance = b.TotalPaid - b.TotalOwed
		result = append(result, *b)
	}
	sortBalances(result)
	return result
}

// FillMembers appends a zero balance for every member in memberIDs that is
// missing from balances, then re-sorts.
func FillMembers(balances []MemberBalance, memberIDs []string) []MemberBalance {
	present := make(map[string]bool, len(balances))
	for _, b := range balances {
		present[b.UserID] = true
	}
	out := make([]MemberBalance, len(balances), len(balances)+len(memberIDs))
	copy(out, balances)
	for _, id := range memberIDs {
		if !present[id] {
			present[id] = true
			out = append(out, MemberBalance{UserID: id})
		}
	}
	sortBalances(out)
	return out
}

// BuildReport computes balances for a ledger, fills in idle members and
// suggests settlements.
func BuildReport(expenses []ExpenseEntry, settlements []SettlementEntry, memberIDs []string) *Report {
	balances := FillMembers(ComputeBalances(expenses, settlements), memberIDs)
	return &Report{
		Balances:    balances,
		Suggestions: SuggestSettlements(balances),
	}
}

func sortBalances(b []MemberBalance) {
	sort.SliceStable(b, func(i, j int) bool {
		return b[i].NetBalance > b[j].NetBalance
	})
}
