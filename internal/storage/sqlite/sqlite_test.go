package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmynk/owwn/internal/models"
	"github.com/mmynk/owwn/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "owwn-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedUsers(t *testing.T, store *SQLiteStore, names ...string) map[string]*models.User {
	t.Helper()
	users := make(map[string]*models.User, len(names))
	for _, name := range names {
		u := models.NewUser(name+"@example.com", name, "hash")
		if err := store.CreateUser(context.Background(), u); err != nil {
			t.Fatalf("CreateUser(%s) failed: %v", name, err)
		}
		users[name] = u
	}
	return users
}

func seedGroup(t *testing.T, store *SQLiteStore, admin *models.User, others ...*models.User) *models.Group {
	t.Helper()
	group := &models.Group{
		Name:           "Trip",
		Currency:       "USD",
		CurrencySymbol: "$",
		CreatedBy:      admin.ID,
	}
	members := []*models.Member{{UserID: admin.ID, Role: models.RoleAdmin}}
	for _, u := range others {
		members = append(members, &models.Member{UserID: u.ID, Role: models.RoleMember})
	}
	if err := store.CreateGroup(context.Background(), group, members); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return group
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	users := seedUsers(t, store, "alice", "bob")

	t.Run("GetUserByEmail", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got.ID != users["alice"].ID {
			t.Errorf("ID mismatch: got %s, want %s", got.ID, users["alice"].ID)
		}
	})

	t.Run("GetUserByID not found", func(t *testing.T) {
		_, err := store.GetUserByID(ctx, "nope")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		dup := models.NewUser("alice@example.com", "Other", "hash")
		if err := store.CreateUser(ctx, dup); err == nil {
			t.Error("Expected error for duplicate email, got nil")
		}
	})

	t.Run("GetUsersByIDs skips unknown ids", func(t *testing.T) {
		got, err := store.GetUsersByIDs(ctx, []string{users["alice"].ID, users["bob"].ID, "ghost"})
		if err != nil {
			t.Fatalf("GetUsersByIDs failed: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("Expected 2 users, got %d", len(got))
		}
	})
}

func TestGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	users := seedUsers(t, store, "alice", "bob", "carol")
	group := seedGroup(t, store, users["alice"], users["bob"])

	t.Run("CreateGroup generates ID", func(t *testing.T) {
		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}
		if group.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("ListMembers in join order with roles", func(t *testing.T) {
		members, err := store.ListMembers(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListMembers failed: %v", err)
		}
		if len(members) != 2 {
			t.Fatalf("Expected 2 members, got %d", len(members))
		}
		if members[0].UserID != users["alice"].ID || members[0].Role != models.RoleAdmin {
			t.Errorf("First member = %+v, want alice as admin", members[0])
		}
		if members[1].DisplayName != "bob" {
			t.Errorf("DisplayName = %q, want bob", members[1].DisplayName)
		}
	})

	t.Run("AddMember and GetMember", func(t *testing.T) {
		err := store.AddMember(ctx, &models.Member{GroupID: group.ID, UserID: users["carol"].ID, Role: models.RoleMember})
		if err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
		m, err := store.GetMember(ctx, group.ID, users["carol"].ID)
		if err != nil {
			t.Fatalf("GetMember failed: %v", err)
		}
		if m.Role != models.RoleMember {
			t.Errorf("Role = %s, want member", m.Role)
		}

		if err := store.AddMember(ctx, &models.Member{GroupID: group.ID, UserID: users["carol"].ID, Role: models.RoleMember}); err == nil {
			t.Error("Expected error adding an existing member")
		}
	})

	t.Run("RemoveMember", func(t *testing.T) {
		if err := store.RemoveMember(ctx, group.ID, users["carol"].ID); err != nil {
			t.Fatalf("RemoveMember failed: %v", err)
		}
		_, err := store.GetMember(ctx, group.ID, users["carol"].ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
		err = store.RemoveMember(ctx, group.ID, users["carol"].ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second removal, got %v", err)
		}
	})

	t.Run("UpdateGroup", func(t *testing.T) {
		group.Name = "Roommates"
		group.Description = "Rent and bills"
		if err := store.UpdateGroup(ctx, group); err != nil {
			t.Fatalf("UpdateGroup failed: %v", err)
		}
		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.Name != "Roommates" || got.Description != "Rent and bills" {
			t.Errorf("Group = %+v", got)
		}

		err = store.UpdateGroup(ctx, &models.Group{ID: "missing", Name: "x", Currency: "USD", CurrencySymbol: "$"})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListGroupsForUser", func(t *testing.T) {
		groups, err := store.ListGroupsForUser(ctx, users["bob"].ID)
		if err != nil {
			t.Fatalf("ListGroupsForUser failed: %v", err)
		}
		if len(groups) != 1 || groups[0].ID != group.ID {
			t.Errorf("Groups = %+v", groups)
		}

		groups, err = store.ListGroupsForUser(ctx, users["carol"].ID)
		if err != nil {
			t.Fatalf("ListGroupsForUser failed: %v", err)
		}
		if len(groups) != 0 {
			t.Errorf("Expected no groups for carol, got %d", len(groups))
		}
	})
}

func TestExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	users := seedUsers(t, store, "alice", "bob")
	a, b := users["alice"].ID, users["bob"].ID
	group := seedGroup(t, store, users["alice"], users["bob"])

	expense := &models.Expense{
		GroupID:     group.ID,
		Description: "Dinner",
		Amount:      1001,
		Currency:    "USD",
		PaidBy:      a,
		Category:    "Food",
		Date:        1700000000,
		Payments:    []models.Payment{{UserID: a, Amount: 601}, {UserID: b, Amount: 400}},
		Splits:      []models.Split{{UserID: b, Amount: 500, IsPaid: true}, {UserID: a, Amount: 501, IsPaid: true}},
	}

	t.Run("CreateExpense writes payments and splits", func(t *testing.T) {
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if expense.ID == "" {
			t.Error("Expected expense ID to be generated")
		}
		if expense.Splits[0].ExpenseID != expense.ID {
			t.Error("Expected split ExpenseID to be set")
		}
	})

	t.Run("GetExpense keeps row order", func(t *testing.T) {
		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.Amount != 1001 || got.Category != "Food" || got.Notes != "" {
			t.Errorf("Expense = %+v", got)
		}
		if len(got.Payments) != 2 || got.Payments[0].UserID != a || got.Payments[0].Amount != 601 {
			t.Errorf("Payments = %+v", got.Payments)
		}
		if len(got.Splits) != 2 || got.Splits[0].UserID != b || !got.Splits[0].IsPaid {
			t.Errorf("Splits = %+v", got.Splits)
		}
	})

	t.Run("ListExpensesByGroup", func(t *testing.T) {
		second := &models.Expense{
			GroupID:     group.ID,
			Description: "Taxi",
			Amount:      300,
			Currency:    "USD",
			PaidBy:      b,
			Date:        1700000100,
			Payments:    []models.Payment{{UserID: b, Amount: 300}},
			Splits:      []models.Split{{UserID: a, Amount: 150}, {UserID: b, Amount: 150, IsPaid: true}},
		}
		if err := store.CreateExpense(ctx, second); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		list, err := store.ListExpensesByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListExpensesByGroup failed: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("Expected 2 expenses, got %d", len(list))
		}
		if list[0].ID != expense.ID || list[1].ID != second.ID {
			t.Errorf("Expenses out of order: %s, %s", list[0].Description, list[1].Description)
		}
		if len(list[1].Payments) != 1 || len(list[1].Splits) != 2 {
			t.Errorf("Second expense rows = %+v / %+v", list[1].Payments, list[1].Splits)
		}
	})

	t.Run("ListExpensesByGroup empty", func(t *testing.T) {
		list, err := store.ListExpensesByGroup(ctx, "no-such-group")
		if err != nil {
			t.Fatalf("ListExpensesByGroup failed: %v", err)
		}
		if len(list) != 0 {
			t.Errorf("Expected no expenses, got %d", len(list))
		}
	})

	t.Run("DeleteExpense", func(t *testing.T) {
		if err := store.DeleteExpense(ctx, expense.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		_, err := store.GetExpense(ctx, expense.ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
		err = store.DeleteExpense(ctx, expense.ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestSettlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	users := seedUsers(t, store, "alice", "bob")
	a, b := users["alice"].ID, users["bob"].ID
	group := seedGroup(t, store, users["alice"], users["bob"])

	settlement := &models.Settlement{
		GroupID:    group.ID,
		FromUserID: b,
		ToUserID:   a,
		Amount:     500,
		Currency:   "USD",
		Notes:      "cash",
		CreatedBy:  b,
	}
	if err := store.CreateSettlement(ctx, settlement); err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}
	if settlement.Date == 0 {
		t.Error("Expected Date to default to CreatedAt")
	}

	got, err := store.GetSettlement(ctx, settlement.ID)
	if err != nil {
		t.Fatalf("GetSettlement failed: %v", err)
	}
	if *got != *settlement {
		t.Errorf("GetSettlement = %+v, want %+v", got, settlement)
	}

	list, err := store.ListSettlementsByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListSettlementsByGroup failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("Expected 1 settlement, got %d", len(list))
	}

	if err := store.DeleteSettlement(ctx, settlement.ID); err != nil {
		t.Fatalf("DeleteSettlement failed: %v", err)
	}
	if _, err := store.GetSettlement(ctx, settlement.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
