package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/owwn/internal/cache"
	"github.com/mmynk/owwn/internal/calculator"
	"github.com/mmynk/owwn/internal/metrics"
	"github.com/mmynk/owwn/internal/models"
	"github.com/mmynk/owwn/internal/money"
	"github.com/mmynk/owwn/internal/storage"
	"github.com/mmynk/owwn/pkg/api"
	"github.com/mmynk/owwn/pkg/api/apiconnect"
)

var _ apiconnect.LedgerServiceHandler = (*LedgerService)(nil)

const (
	settlementPaid     = "paid"
	settlementReceived = "received"
)

// LedgerService records expenses and settlements and reports balances.
type LedgerService struct {
	store     storage.Store
	cache     cache.BalanceCache
	metrics   *metrics.Metrics
	validator *ValidationHelper
	logger    *slog.Logger
	now       func() time.Time
}

// NewLedgerService creates a LedgerService. A nil cache disables balance
// caching and nil metrics disables instrumentation.
func NewLedgerService(store storage.Store, balances cache.BalanceCache, m *metrics.Metrics, logger *slog.Logger) *LedgerService {
	if balances == nil {
		balances = cache.Noop{}
	}
	return &LedgerService{
		store:     store,
		cache:     balances,
		metrics:   m,
		validator: NewValidationHelper(),
		logger:    logger,
		now:       time.Now,
	}
}

// CreateExpense validates, allocates and stores a new expense.
func (s *LedgerService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.ExpenseResponse], error) {
	msg := req.Msg
	s.logger.Info("CreateExpense request received",
		"group_id", msg.GroupID,
		"amount", msg.Amount,
		"split_type", msg.SplitType,
		"participants", len(msg.Splits),
	)

	if err := s.validator.ValidateStruct(msg); err != nil {
		return nil, err
	}

	access, err := requireMember(ctx, s.store, msg.GroupID)
	if err != nil {
		s.logger.Warn("CreateExpense rejected", "group_id", msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	group := access.group

	if msg.Currency != "" && !strings.EqualFold(msg.Currency, group.Currency) {
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("expense currency %s does not match group currency %s", strings.ToUpper(msg.Currency), group.Currency))
	}

	amount, err := resolveAmount(msg.Amount, msg.AmountText, group.Currency)
	if err != nil {
		return nil, err
	}

	members, err := s.store.ListMembers(ctx, group.ID)
	if err != nil {
		s.logger.Error("CreateExpense failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	plan, err := calculator.PlanExpense(expenseRequest(msg, amount), models.MemberSet(members))
	if err != nil {
		s.logger.Warn("CreateExpense rejected", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	expense := &models.Expense{
		GroupID:     group.ID,
		Description: strings.TrimSpace(msg.Description),
		Amount:      amount,
		Currency:    group.Currency,
		PaidBy:      msg.PaidBy,
		Category:    strings.TrimSpace(msg.Category),
		Date:        msg.Date,
		Notes:       msg.Notes,
		CreatedAt:   s.now().Unix(),
	}
	for _, p := range plan.Payments {
		expense.Payments = append(expense.Payments, models.Payment{UserID: p.UserID, Amount: p.Amount})
	}
	for _, sp := range plan.Splits {
		expense.Splits = append(expense.Splits, models.Split{UserID: sp.UserID, Amount: sp.Amount, IsPaid: sp.IsPaid})
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		s.logger.Error("CreateExpense failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}
	s.invalidate(ctx, group.ID)

	s.logger.Info("Expense created", "group_id", group.ID, "expense_id", expense.ID,
		"amount", money.String(expense.Amount, expense.Currency), "currency", expense.Currency)
	return connect.NewResponse(&api.ExpenseResponse{Expense: newFormatter(group).expense(expense)}), nil
}

func expenseRequest(msg *api.CreateExpenseRequest, amount int64) calculator.ExpenseRequest {
	req := calculator.ExpenseRequest{
		Amount:    amount,
		PaidBy:    msg.PaidBy,
		SplitType: calculator.SplitType(msg.SplitType),
		Splits:    make([]calculator.SplitInput, len(msg.Splits)),
	}
	for i, sp := range msg.Splits {
		req.Splits[i] = calculator.SplitInput{UserID: sp.UserID, Amount: sp.Amount, Percentage: sp.Percentage}
	}
	for _, p := range msg.PaidByMultiple {
		req.Payers = append(req.Payers, calculator.Share{UserID: p.UserID, Amount: p.Amount})
	}
	return req
}

// GetExpense retrieves one expense with its payments and splits.
func (s *LedgerService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.ExpenseResponse], error) {
	if err := s.validator.ValidateStruct(req.Msg); err != nil {
		return nil, err
	}

	expense, access, err := s.loadExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		s.logger.Warn("GetExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ExpenseResponse{Expense: newFormatter(access.group).expense(expense)}), nil
}

// ListExpenses lists a group's expenses in date order.
func (s *LedgerService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	if err := s.validator.ValidateStruct(req.Msg); err != nil {
		return nil, err
	}

	access, err := requireMember(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		s.logger.Warn("ListExpenses rejected", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, req.Msg.GroupID)
	if err != nil {
		s.logger.Error("ListExpenses failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	f := newFormatter(access.group)
	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = f.expense(e)
	}
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// DeleteExpense removes an expense. Only the payer or a group admin may
// delete it.
func (s *LedgerService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	if err := s.validator.ValidateStruct(req.Msg); err != nil {
		return nil, err
	}

	expense, access, err := s.loadExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		s.logger.Warn("DeleteExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, toConnectError(err)
	}
	if !access.isAdmin() && access.userID != expense.PaidBy {
		return nil, toConnectError(fmt.Errorf("only the payer or an admin can delete this expense: %w", ErrPermissionDenied))
	}

	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		s.logger.Error("DeleteExpense failed", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}
	s.invalidate(ctx, expense.GroupID)

	s.logger.Info("Expense deleted", "group_id", expense.GroupID, "expense_id", expense.ID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

func (s *LedgerService) loadExpense(ctx context.Context, expenseID string) (*models.Expense, *groupAccess, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, nil, err
	}
	access, err := requireMember(ctx, s.store, expense.GroupID)
	if err != nil {
		return nil, nil, err
	}
	return expense, access, nil
}

// CreateSettlement records a payment from one member to another.
func (s *LedgerService) CreateSettlement(ctx context.Context, req *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.SettlementResponse], error) {
	msg := req.Msg
	s.logger.Info("CreateSettlement request received",
		"group_id", msg.GroupID,
		"from", msg.FromUserID,
		"to", msg.ToUserID,
		"amount", msg.Amount,
	)

	if err := s.validator.ValidateStruct(msg); err != nil {
		return nil, err
	}

	access, err := requireMember(ctx, s.store, msg.GroupID)
	if err != nil {
		s.logger.Warn("CreateSettlement rejected", "group_id", msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	group := access.group

	if msg.Currency != "" && !strings.EqualFold(msg.Currency, group.Currency) {
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("settlement currency %s does not match group currency %s", strings.ToUpper(msg.Currency), group.Currency))
	}
	amount, err := resolveAmount(msg.Amount, msg.AmountText, group.Currency)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("settlement amount must be positive"))
	}

	members, err := s.store.ListMembers(ctx, group.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := calculator.CheckMembership(models.MemberSet(members), msg.FromUserID, msg.ToUserID); err != nil {
		s.logger.Warn("CreateSettlement rejected", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	settlement := &models.Settlement{
		GroupID:    group.ID,
		FromUserID: msg.FromUserID,
		ToUserID:   msg.ToUserID,
		Amount:     amount,
		Currency:   group.Currency,
		Date:       msg.Date,
		Notes:      msg.Notes,
		CreatedBy:  access.userID,
		CreatedAt:  s.now().Unix(),
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		s.logger.Error("CreateSettlement failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}
	s.invalidate(ctx, group.ID)

	s.logger.Info("Settlement recorded", "group_id", group.ID, "settlement_id", settlement.ID,
		"amount", money.String(settlement.Amount, settlement.Currency), "currency", settlement.Currency)
	return connect.NewResponse(&api.SettlementResponse{Settlement: newFormatter(group).settlement(settlement)}), nil
}

// ListSettlements lists a group's settlements in date order, optionally only
// those one user paid or received.
func (s *LedgerService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	if err := s.validator.ValidateStruct(req.Msg); err != nil {
		return nil, err
	}

	access, err := requireMember(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		s.logger.Warn("ListSettlements rejected", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	settlements, err := s.store.ListSettlementsByGroup(ctx, req.Msg.GroupID)
	if err != nil {
		s.logger.Error("ListSettlements failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	f := newFormatter(access.group)
	userID := req.Msg.UserID
	out := make([]*api.Settlement, 0, len(settlements))
	for _, st := range settlements {
		if userID == "" {
			out = append(out, f.settlement(st))
			continue
		}
		if !st.Involves(userID) {
			continue
		}
		item := f.settlement(st)
		item.Direction = settlementReceived
		if st.FromUserID == userID {
			item.Direction = settlementPaid
		}
		out = append(out, item)
	}
	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: out}), nil
}

// DeleteSettlement removes a settlement. Either party or an admin may
// delete it.
func (s *LedgerService) DeleteSettlement(ctx context.Context, req *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error) {
	if err := s.validator.ValidateStruct(req.Msg); err != nil {
		return nil, err
	}

	settlement, err := s.store.GetSettlement(ctx, req.Msg.SettlementID)
	if err != nil {
		return nil, toConnectError(err)
	}
	access, err := requireMember(ctx, s.store, settlement.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if !access.isAdmin() && !settlement.Involves(access.userID) {
		return nil, toConnectError(fmt.Errorf("only the parties or an admin can delete this settlement: %w", ErrPermissionDenied))
	}

	if err := s.store.DeleteSettlement(ctx, settlement.ID); err != nil {
		s.logger.Error("DeleteSettlement failed", "settlement_id", settlement.ID, "error", err)
		return nil, toConnectError(err)
	}
	s.invalidate(ctx, settlement.GroupID)

	s.logger.Info("Settlement deleted", "group_id", settlement.GroupID, "settlement_id", settlement.ID)
	return connect.NewResponse(&api.DeleteSettlementResponse{}), nil
}

// resolveAmount returns amount, or text parsed in the group currency when
// amount is zero.
func resolveAmount(amount int64, text, currency string) (int64, error) {
	if amount != 0 || text == "" {
		return amount, nil
	}
	parsed, err := money.Parse(text, currency)
	if err != nil {
		return 0, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid amount %q: %w", text, err))
	}
	if parsed <= 0 || parsed > api.MaxAmount {
		return 0, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("amount %q is out of range", text))
	}
	return parsed, nil
}

func (s *LedgerService) invalidate(ctx context.Context, groupID string) {
	if err := s.cache.Invalidate(ctx, groupID); err != nil {
		s.logger.Warn("Balance cache invalidation failed", "group_id", groupID, "error", err)
	}
}
