// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/owwn/internal/models"
)

// ErrNotFound is wrapped by stores when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	GroupStore
	ExpenseStore
	SettlementStore

	// Close releases any resources held by the store.
	Close() error
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs returns the users that exist, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// GroupStore persists groups and their members.
type GroupStore interface {
	// CreateGroup persists a group together with its initial members.
	// The group.ID field will be populated by the store.
	CreateGroup(ctx context.Context, group *models.Group, members []*models.Member) error

	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForUser returns every group userID belongs to.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	UpdateGroup(ctx context.Context, group *models.Group) error

	AddMember(ctx context.Context, member *models.Member) error
	RemoveMember(ctx context.Context, groupID, userID string) error

	// GetMember returns the membership of userID in groupID, or ErrNotFound.
	GetMember(ctx context.Context, groupID, userID string) (*models.Member, error)

	// ListMembers returns members in the order they joined.
	ListMembers(ctx context.Context, groupID string) ([]*models.Member, error)
}

// ExpenseStore persists expenses with their payments and splits.
type ExpenseStore interface {
	// CreateExpense writes the expense, its payments and its splits atomically.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup returns the group's expenses with payments and splits,
	// oldest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// DeleteExpense removes the expense and its payments and splits.
	DeleteExpense(ctx context.Context, expenseID string) error
}

// SettlementStore persists settlements.
type SettlementStore interface {
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// ListSettlementsByGroup returns the group's settlements, oldest first.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)

	DeleteSettlement(ctx context.Context, settlementID string) error
}
