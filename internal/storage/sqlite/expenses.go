package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/owwn/internal/models"
)

const expenseColumns = "id, group_id, description, amount, currency, paid_by, category, date, notes, created_at"

// CreateExpense persists a new expense with its payments and splits.
// Either every row is written or none is.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Date == 0 {
		expense.Date = expense.CreatedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		expense.ID, expense.GroupID, expense.Description, expense.Amount, expense.Currency,
		expense.PaidBy, nullString(expense.Category), expense.Date, nullString(expense.Notes),
		expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i := range expense.Payments {
		p := &expense.Payments[i]
		p.ExpenseID = expense.ID
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_payments (expense_id, user_id, amount, position) VALUES (?, ?, ?, ?)",
			expense.ID, p.UserID, p.Amount, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}
	}

	for i := range expense.Splits {
		sp := &expense.Splits[i]
		sp.ExpenseID = expense.ID
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, user_id, amount, is_paid, position) VALUES (?, ?, ?, ?, ?)",
			expense.ID, sp.UserID, sp.Amount, sp.IsPaid, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetExpense retrieves an expense by ID, including payments and splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE id = ?", expenseID)
	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("expense", expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	byID := map[string]*models.Expense{expense.ID: expense}
	if err := s.loadPayments(ctx, "p.expense_id = ?", expenseID, byID); err != nil {
		return nil, err
	}
	if err := s.loadSplits(ctx, "s.expense_id = ?", expenseID, byID); err != nil {
		return nil, err
	}

	return expense, nil
}

// ListExpensesByGroup retrieves all expenses of a group in the order they
// were incurred, each with payments and splits.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE group_id = ? ORDER BY date, created_at, id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	var expenses []*models.Expense
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
		byID[expense.ID] = expense
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	if len(expenses) == 0 {
		return expenses, nil
	}

	const byGroup = "e.group_id = ?"
	if err := s.loadPayments(ctx, byGroup, groupID, byID); err != nil {
		return nil, err
	}
	if err := s.loadSplits(ctx, byGroup, groupID, byID); err != nil {
		return nil, err
	}

	return expenses, nil
}

// DeleteExpense removes an expense. Payments and splits cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_payments WHERE expense_id = ?", expenseID); err != nil {
		return fmt.Errorf("failed to delete payments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_splits WHERE expense_id = ?", expenseID); err != nil {
		return fmt.Errorf("failed to delete splits: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if err := requireAffected(res, "expense", expenseID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// loadPayments attaches payment rows matching where to the expenses in byID.
func (s *SQLiteStore) loadPayments(ctx context.Context, where, arg string, byID map[string]*models.Expense) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.expense_id, p.user_id, p.amount
		 FROM expense_payments p
		 JOIN expenses e ON e.id = p.expense_id
		 WHERE `+where+`
		 ORDER BY p.expense_id, p.position`,
		arg,
	)
	if err != nil {
		return fmt.Errorf("failed to get payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ExpenseID, &p.UserID, &p.Amount); err != nil {
			return fmt.Errorf("failed to scan payment: %w", err)
		}
		if e, ok := byID[p.ExpenseID]; ok {
			e.Payments = append(e.Payments, p)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate payments: %w", err)
	}
	return nil
}

// loadSplits attaches split rows matching where to the expenses in byID.
func (s *SQLiteStore) loadSplits(ctx context.Context, where, arg string, byID map[string]*models.Expense) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.expense_id, s.user_id, s.amount, s.is_paid
		 FROM expense_splits s
		 JOIN expenses e ON e.id = s.expense_id
		 WHERE `+where+`
		 ORDER BY s.expense_id, s.position`,
		arg,
	)
	if err != nil {
		return fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sp models.Split
		if err := rows.Scan(&sp.ExpenseID, &sp.UserID, &sp.Amount, &sp.IsPaid); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		if e, ok := byID[sp.ExpenseID]; ok {
			e.Splits = append(e.Splits, sp)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate splits: %w", err)
	}
	return nil
}

func scanExpense(row scanner) (*models.Expense, error) {
	e := &models.Expense{}
	var category, notes sql.NullString
	err := row.Scan(&e.ID, &e.GroupID, &e.Description, &e.Amount, &e.Currency, &e.PaidBy,
		&category, &e.Date, &notes, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Category = category.String
	e.Notes = notes.String
	return e, nil
}
