package calculator

import "math"

// PairBalance is what one other user owes the queried user.
// Positive = they owe the queried user, negative = the queried user owes them.
type PairBalance struct {
	UserID  string `json:"userId"`
	Balance int64  `json:"balance"`
}

// PairwiseBalances computes, for userID, a net amount against every other
// user in the ledger.
//
// Each expense is apportioned proportionally: the queried user's payment is
// spread over the other participants' splits, and each other payer's payment
// is attributed to the queried user's split. With more than two parties on an
// expense this is an approximation, so it will not match ComputeBalances
// exactly. Intermediate values are float64 and only the result is rounded.
// Zero balances are omitted; order is first appearance in the ledger.
func PairwiseBalances(userID string, expenses []ExpenseEntry, settlements []SettlementEntry) []PairBalance {
	var order []string
	sums := make(map[string]float64)
	add := func(other string, v float64) {
		if _, ok := sums[other]; !ok {
			order = append(order, other)
		}
		sums[other] += v
	}

	for _, e := range expenses {
		if e.Amount == 0 {
			continue
		}
		total := float64(e.Amount)
		userPayment := float64(amountFor(e.Payments, userID))
		userSplit := float64(amountFor(e.Splits, userID))

		for _, s := range e.Splits {
			if s.UserID == userID {
				continue
			}
			otherPayment := float64(amountFor(e.Payments, s.UserID))
			if userPayment > 0 {
				add(s.UserID, userPayment*float64(s.Amount)/total)
			}
			if otherPayment > 0 && userSplit > 0 {
				add(s.UserID, -otherPayment*userSplit/total)
			}
		}
	}

	for _, s := range settlements {
		switch userID {
		case s.FromUserID:
			add(s.ToUserID, float64(s.Amount))
		case s.ToUserID:
			add(s.FromUserID, -float64(s.Amount))
		}
	}

	var result []PairBalance
	for _, other := range order {
		v := int64(math.Round(sums[other]))
		if v == 0 {
			continue
		}
		result = append(result, PairBalance{UserID: other, Balance: v})
	}
	return result
}

func amountFor(shares []Share, userID string) int64 {
	for _, s := range shares {
		if s.UserID == userID {
			return s.Amount
		}
	}
	return 0
}
