package service

import (
	"github.com/mmynk/owwn/internal/calculator"
	"github.com/mmynk/owwn/internal/models"
	"github.com/mmynk/owwn/internal/money"
	"github.com/mmynk/owwn/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPIGroup(g *models.Group, members []*models.Member) *api.Group {
	out := &api.Group{
		ID:             g.ID,
		Name:           g.Name,
		Description:    g.Description,
		Currency:       g.Currency,
		CurrencySymbol: g.CurrencySymbol,
		CreatedBy:      g.CreatedBy,
		CreatedAt:      g.CreatedAt,
	}
	for _, m := range members {
		out.Members = append(out.Members, &api.Member{
			UserID:      m.UserID,
			DisplayName: m.DisplayName,
			Role:        string(m.Role),
		})
	}
	return out
}

// formatter renders amounts in one group's currency.
type formatter struct {
	currency string
	symbol   string
}

func newFormatter(g *models.Group) formatter {
	return formatter{currency: g.Currency, symbol: g.CurrencySymbol}
}

func (f formatter) format(amount int64) string {
	return money.Format(amount, f.currency, f.symbol)
}

func (f formatter) expense(e *models.Expense) *api.Expense {
	out := &api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Amount:      e.Amount,
		Display:     f.format(e.Amount),
		Currency:    e.Currency,
		PaidBy:      e.PaidBy,
		Category:    e.Category,
		Date:        e.Date,
		Notes:       e.Notes,
		CreatedAt:   e.CreatedAt,
		Payments:    make([]*api.Payment, len(e.Payments)),
		Splits:      make([]*api.Split, len(e.Splits)),
	}
	for i, p := range e.Payments {
		out.Payments[i] = &api.Payment{UserID: p.UserID, Amount: p.Amount}
	}
	for i, s := range e.Splits {
		out.Splits[i] = &api.Split{UserID: s.UserID, Amount: s.Amount, IsPaid: s.IsPaid, Display: f.format(s.Amount)}
	}
	return out
}

func (f formatter) settlement(s *models.Settlement) *api.Settlement {
	return &api.Settlement{
		ID:         s.ID,
		GroupID:    s.GroupID,
		FromUserID: s.FromUserID,
		ToUserID:   s.ToUserID,
		Amount:     s.Amount,
		Display:    f.format(s.Amount),
		Currency:   s.Currency,
		Date:       s.Date,
		Notes:      s.Notes,
		CreatedBy:  s.CreatedBy,
		CreatedAt:  s.CreatedAt,
	}
}

// report converts a calculator report, naming users from names.
func (f formatter) report(r *calculator.Report, names map[string]string) ([]*api.Balance, []*api.Transfer) {
	balances := make([]*api.Balance, len(r.Balances))
	for i, b := range r.Balances {
		balances[i] = &api.Balance{
			UserID:      b.UserID,
			DisplayName: names[b.UserID],
			Balance:     b.NetBalance,
			TotalPaid:   b.TotalPaid,
			TotalOwed:   b.TotalOwed,
			Display:     f.format(b.NetBalance),
		}
	}
	transfers := make([]*api.Transfer, len(r.Suggestions))
	for i, t := range r.Suggestions {
		transfers[i] = &api.Transfer{From: t.From, To: t.To, Amount: t.Amount, Display: f.format(t.Amount)}
	}
	return balances, transfers
}

// ledgerEntries projects stored rows onto the calculator's inputs.
func ledgerEntries(expenses []*models.Expense, settlements []*models.Settlement) ([]calculator.ExpenseEntry, []calculator.SettlementEntry) {
	entries := make([]calculator.ExpenseEntry, len(expenses))
	for i, e := range expenses {
		entry := calculator.ExpenseEntry{
			ID:       e.ID,
			Amount:   e.Amount,
			Payments: make([]calculator.Share, len(e.Payments)),
			Splits:   make([]calculator.Share, len(e.Splits)),
		}
		for j, p := range e.Payments {
			entry.Payments[j] = calculator.Share{UserID: p.UserID, Amount: p.Amount}
		}
		for j, s := range e.Splits {
			entry.Splits[j] = calculator.Share{UserID: s.UserID, Amount: s.Amount}
		}
		entries[i] = entry
	}

	settles := make([]calculator.SettlementEntry, len(settlements))
	for i, s := range settlements {
		settles[i] = calculator.SettlementEntry{FromUserID: s.FromUserID, ToUserID: s.ToUserID, Amount: s.Amount}
	}
	return entries, settles
}
