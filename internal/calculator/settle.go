package calculator

import "sort"

// Transfer is a suggested payment that moves money from a debtor to a creditor.
type Transfer struct {
	From   string `json:"from"`   // Person who owes
	To     string `json:"to"`     // Person who is owed
	Amount int64  `json:"amount"` // Always positive
}

type party struct {
	userID    string
	remaining int64
}

// SuggestSettlements proposes transfers that bring every balance to zero.
//
// This is a greedy heuristic and not a minimum-transaction solver: the largest
// debtor pays the largest creditor, and whichever side is fully settled moves
// on. Equal magnitudes keep their order from balances (stable sort), so the
// output is deterministic for a given input order. At most
// debtors+creditors-1 transfers are produced. If debts and credits do not net
// to zero the leftover is dropped silently.
func SuggestSettlements(balances []MemberBalance) []Transfer {
	var debtors, creditors []party
	for _, b := range balances {
		switch {
		case b.NetBalance < 0:
			debtors = append(debtors, party{userID: b.UserID, remaining: -b.NetBalance})
		case b.NetBalance > 0:
			creditors = append(creditors, party{userID: b.UserID, remaining: b.NetBalance})
		}
	}
	sort.SliceStable(debtors, func(i, j int) bool { return debtors[i].remaining > debtors[j].remaining })
	sort.SliceStable(creditors, func(i, j int) bool { return creditors[i].remaining > creditors[j].remaining })

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		d, c := &debtors[i], &creditors[j]
		amount := min(d.remaining, c.remaining)
		if amount > 0 {
			transfers = append(transfers, Transfer{From: d.userID, To: c.userID, Amount: amount})
		}
		d.remaining -= amount
		c.remaining -= amount
		if d.remaining == 0 {
			i++
		}
		if c.remaining == 0 {
			j++
		}
	}
	return transfers
}
