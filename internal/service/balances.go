package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/owwn/internal/calculator"
	"github.com/mmynk/owwn/internal/metrics"
	"github.com/mmynk/owwn/internal/models"
	"github.com/mmynk/owwn/pkg/api"
)

// GetGroupBalances reports every member's net balance and the suggested
// transfers that settle the group.
func (s *LedgerService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	if err := s.validator.ValidateStruct(req.Msg); err != nil {
		return nil, err
	}

	access, err := requireMember(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		s.logger.Warn("GetGroupBalances rejected", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	report, err := s.balanceReport(ctx, req.Msg.GroupID)
	if err != nil {
		s.logger.Error("GetGroupBalances failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	names, err := s.displayNames(ctx, report)
	if err != nil {
		return nil, toConnectError(err)
	}

	balances, suggestions := newFormatter(access.group).report(report, names)
	return connect.NewResponse(&api.GetGroupBalancesResponse{
		Currency:    access.group.Currency,
		Balances:    balances,
		Suggestions: suggestions,
	}), nil
}

// balanceReport serves the group's report from the cache, recomputing and
// storing it on a miss. Cache failures only degrade to recomputation.
//
// The generation is read before the ledger, so a write that lands while the
// report is being computed retires it before it can be served.
func (s *LedgerService) balanceReport(ctx context.Context, groupID string) (*calculator.Report, error) {
	report, gen, err := s.cache.Get(ctx, groupID)
	cacheable := err == nil
	if err != nil {
		s.logger.Warn("Balance cache read failed", "group_id", groupID, "error", err)
		report = nil
	}
	if report != nil {
		s.metrics.ObserveReport(metrics.SourceCache, len(report.Suggestions))
		s.logger.Debug("Balances served from cache", "group_id", groupID, "generation", gen)
		return report, nil
	}

	expenses, settlements, members, err := s.loadLedger(ctx, groupID)
	if err != nil {
		return nil, err
	}
	report = computeReport(expenses, settlements, members)
	s.metrics.ObserveReport(metrics.SourceComputed, len(report.Suggestions))

	// Without a generation there is nothing safe to tag the report with.
	if !cacheable {
		return report, nil
	}
	if err := s.cache.Set(ctx, groupID, gen, report); err != nil {
		s.logger.Warn("Balance cache write failed", "group_id", groupID, "error", err)
	}
	return report, nil
}

func computeReport(expenses []*models.Expense, settlements []*models.Settlement, members []*models.Member) *calculator.Report {
	entries, settles := ledgerEntries(expenses, settlements)
	return calculator.BuildReport(entries, settles, models.MemberIDs(members))
}

func (s *LedgerService) loadLedger(ctx context.Context, groupID string) ([]*models.Expense, []*models.Settlement, []*models.Member, error) {
	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, nil, nil, err
	}
	settlements, err := s.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return nil, nil, nil, err
	}
	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, nil, nil, err
	}
	return expenses, settlements, members, nil
}

// displayNames looks up every user named in the report. Users that have
// since been deleted are left unnamed.
func (s *LedgerService) displayNames(ctx context.Context, report *calculator.Report) (map[string]string, error) {
	ids := make([]string, len(report.Balances))
	for i, b := range report.Balances {
		ids[i] = b.UserID
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for id, u := range users {
		names[id] = u.DisplayName
	}
	return names, nil
}

// GetPairwiseBalances reports what each other user owes the target user,
// who defaults to the caller.
func (s *LedgerService) GetPairwiseBalances(ctx context.Context, req *connect.Request[api.GetPairwiseBalancesRequest]) (*connect.Response[api.GetPairwiseBalancesResponse], error) {
	if err := s.validator.ValidateStruct(req.Msg); err != nil {
		return nil, err
	}

	access, err := requireMember(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		s.logger.Warn("GetPairwiseBalances rejected", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	target := req.Msg.UserID
	if target == "" {
		target = access.userID
	}

	expenses, settlements, members, err := s.loadLedger(ctx, req.Msg.GroupID)
	if err != nil {
		s.logger.Error("GetPairwiseBalances failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	if err := calculator.CheckMembership(models.MemberSet(members), target); err != nil {
		return nil, toConnectError(err)
	}

	entries, settles := ledgerEntries(expenses, settlements)
	pairs := calculator.PairwiseBalances(target, entries, settles)

	ids := make([]string, len(pairs))
	for i, p := range pairs {
		ids[i] = p.UserID
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, toConnectError(err)
	}

	f := newFormatter(access.group)
	out := make([]*api.PairBalance, len(pairs))
	for i, p := range pairs {
		entry := &api.PairBalance{UserID: p.UserID, Balance: p.Balance, Display: f.format(p.Balance)}
		if u := users[p.UserID]; u != nil {
			entry.DisplayName = u.DisplayName
			entry.Email = u.Email
		}
		out[i] = entry
	}

	return connect.NewResponse(&api.GetPairwiseBalancesResponse{UserID: target, Balances: out}), nil
}

// ExportGroup returns a full snapshot of the group's ledger with balances
// recomputed from it.
func (s *LedgerService) ExportGroup(ctx context.Context, req *connect.Request[api.ExportGroupRequest]) (*connect.Response[api.ExportGroupResponse], error) {
	if err := s.validator.ValidateStruct(req.Msg); err != nil {
		return nil, err
	}

	access, err := requireMember(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		s.logger.Warn("ExportGroup rejected", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	expenses, settlements, members, err := s.loadLedger(ctx, req.Msg.GroupID)
	if err != nil {
		s.logger.Error("ExportGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	report := computeReport(expenses, settlements, members)
	s.metrics.ObserveReport(metrics.SourceComputed, len(report.Suggestions))

	names, err := s.displayNames(ctx, report)
	if err != nil {
		return nil, toConnectError(err)
	}

	f := newFormatter(access.group)
	resp := &api.ExportGroupResponse{
		Group:       toAPIGroup(access.group, members),
		Expenses:    make([]*api.Expense, len(expenses)),
		Settlements: make([]*api.Settlement, len(settlements)),
		ExportedAt:  s.now().Unix(),
		ExportedBy:  access.userID,
	}
	for i, e := range expenses {
		resp.Expenses[i] = f.expense(e)
	}
	for i, st := range settlements {
		resp.Settlements[i] = f.settlement(st)
	}
	resp.Balances, resp.Suggestions = f.report(report, names)

	s.logger.Info("Group exported",
		slog.String("group_id", access.group.ID),
		slog.Int("expenses", len(expenses)),
		slog.Int("settlements", len(settlements)),
	)
	return connect.NewResponse(resp), nil
}
