package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/owwn/internal/cache"
	"github.com/mmynk/owwn/internal/models"
	"github.com/mmynk/owwn/internal/money"
	"github.com/mmynk/owwn/internal/storage"
	"github.com/mmynk/owwn/pkg/api"
	"github.com/mmynk/owwn/pkg/api/apiconnect"
)

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the GroupService RPC interface.
type GroupService struct {
	store     storage.Store
	cache     cache.BalanceCache
	validator *ValidationHelper
	logger    *slog.Logger
}

// NewGroupService creates a new GroupService with the given storage backend.
// A nil cache disables balance caching.
func NewGroupService(store storage.Store, balances cache.BalanceCache, logger *slog.Logger) *GroupService {
	if balances == nil {
		balances = cache.Noop{}
	}
	return &GroupService{
		store:     store,
		cache:     balances,
		validator: NewValidationHelper(),
		logger:    logger,
	}
}

// CreateGroup creates a new group. The caller becomes its admin.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	s.logger.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberIDs),
	)

	if err := s.validator.ValidateStruct(req.Msg); err != nil {
		return nil, err
	}

	currency, symbol := resolveCurrency(req.Msg.Currency, req.Msg.CurrencySymbol)
	group := &models.Group{
		Name:           strings.TrimSpace(req.Msg.Name),
		Description:    strings.TrimSpace(req.Msg.Description),
		Currency:       currency,
		CurrencySymbol: symbol,
		CreatedBy:      userID,
	}

	members := []*models.Member{{UserID: userID, Role: models.RoleAdmin}}
	seen := map[string]bool{userID: true}
	var others []string
	for _, id := range req.Msg.MemberIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		others = append(others, id)
	}
	if len(others) > 0 {
		users, err := s.store.GetUsersByIDs(ctx, others)
		if err != nil {
			s.logger.Error("CreateGroup failed", "error", err)
			return nil, toConnectError(err)
		}
		for _, id := range others {
			if users[id] == nil {
				return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("user %s does not exist", id))
			}
			members = append(members, &models.Member{UserID: id, Role: models.RoleMember})
		}
	}

	if err := s.store.CreateGroup(ctx, group, members); err != nil {
		s.logger.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Group created", "group_id", group.ID, "user_id", userID)
	return s.groupResponse(ctx, group)
}

// GetGroup retrieves a group with its members.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	if err := s.validator.ValidateStruct(req.Msg); err != nil {
		return nil, err
	}

	access, err := requireMember(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		s.logger.Warn("GetGroup rejected", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	return s.groupResponse(ctx, access.group)
}

// ListGroups lists the caller's groups with their role and member count.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		s.logger.Error("ListGroups failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Group, 0, len(groups))
	for _, g := range groups {
		members, err := s.store.ListMembers(ctx, g.ID)
		if err != nil {
			s.logger.Error("ListGroups failed", "group_id", g.ID, "error", err)
			return nil, toConnectError(err)
		}
		entry := toAPIGroup(g, nil)
		entry.MemberCount = len(members)
		for _, m := range members {
			if m.UserID == userID {
				entry.Role = string(m.Role)
			}
		}
		out = append(out, entry)
	}

	s.logger.Info("ListGroups successful", "user_id", userID, "count", len(out))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// UpdateGroup changes a group's name, description or currency. Admin only.
// The currency is fixed once the group has recorded any expense or settlement.
func (s *GroupService) UpdateGroup(ctx context.Context, req *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	if err := s.validator.ValidateStruct(req.Msg); err != nil {
		return nil, err
	}

	access, err := requireAdmin(ctx, s.store, req.Msg.GroupID, "update the group")
	if err != nil {
		s.logger.Warn("UpdateGroup rejected", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	group := access.group
	if req.Msg.Name != nil {
		group.Name = strings.TrimSpace(*req.Msg.Name)
	}
	if req.Msg.Description != nil {
		group.Description = strings.TrimSpace(*req.Msg.Description)
	}
	if req.Msg.Currency != nil && !strings.EqualFold(*req.Msg.Currency, group.Currency) {
		used, err := s.hasLedger(ctx, group.ID)
		if err != nil {
			return nil, toConnectError(err)
		}
		if used {
			return nil, connect.NewError(connect.CodeFailedPrecondition,
				errors.New("currency cannot change after expenses or settlements are recorded"))
		}
		symbol := ""
		if req.Msg.CurrencySymbol != nil {
			symbol = *req.Msg.CurrencySymbol
		}
		group.Currency, group.CurrencySymbol = resolveCurrency(*req.Msg.Currency, symbol)
	} else if req.Msg.CurrencySymbol != nil && *req.Msg.CurrencySymbol != "" {
		group.CurrencySymbol = *req.Msg.CurrencySymbol
	}

	if err := s.store.UpdateGroup(ctx, group); err != nil {
		s.logger.Error("UpdateGroup failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.invalidate(ctx, group.ID)
	s.logger.Info("Group updated", "group_id", group.ID)
	return s.groupResponse(ctx, group)
}

// AddMember adds a user to a group. Admin only.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.GroupResponse], error) {
	if err := s.validator.ValidateStruct(req.Msg); err != nil {
		return nil, err
	}

	access, err := requireAdmin(ctx, s.store, req.Msg.GroupID, "add members")
	if err != nil {
		s.logger.Warn("AddMember rejected", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	if _, err := s.store.GetUserByID(ctx, req.Msg.UserID); err != nil {
		return nil, toConnectError(err)
	}

	_, err = s.store.GetMember(ctx, req.Msg.GroupID, req.Msg.UserID)
	if err == nil {
		return nil, connect.NewError(connect.CodeAlreadyExists,
			fmt.Errorf("user %s is already a member of this group", req.Msg.UserID))
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, toConnectError(err)
	}

	role := models.RoleMember
	if req.Msg.Role != "" {
		role = models.Role(req.Msg.Role)
	}
	member := &models.Member{GroupID: req.Msg.GroupID, UserID: req.Msg.UserID, Role: role}
	if err := s.store.AddMember(ctx, member); err != nil {
		s.logger.Error("AddMember failed", "group_id", req.Msg.GroupID, "user_id", req.Msg.UserID, "error", err)
		return nil, toConnectError(err)
	}

	s.invalidate(ctx, req.Msg.GroupID)
	s.logger.Info("Member added", "group_id", req.Msg.GroupID, "user_id", req.Msg.UserID, "role", role)
	return s.groupResponse(ctx, access.group)
}

// RemoveMember removes a user from a group. Admins may remove anyone;
// members may remove themselves.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	if err := s.validator.ValidateStruct(req.Msg); err != nil {
		return nil, err
	}

	access, err := requireMember(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		s.logger.Warn("RemoveMember rejected", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	if !access.isAdmin() && access.userID != req.Msg.UserID {
		return nil, toConnectError(fmt.Errorf("only admins can remove other members: %w", ErrPermissionDenied))
	}

	if err := s.store.RemoveMember(ctx, req.Msg.GroupID, req.Msg.UserID); err != nil {
		s.logger.Warn("RemoveMember failed", "group_id", req.Msg.GroupID, "user_id", req.Msg.UserID, "error", err)
		return nil, toConnectError(err)
	}

	s.invalidate(ctx, req.Msg.GroupID)
	s.logger.Info("Member removed", "group_id", req.Msg.GroupID, "user_id", req.Msg.UserID)
	return connect.NewResponse(&api.RemoveMemberResponse{}), nil
}

func (s *GroupService) groupResponse(ctx context.Context, group *models.Group) (*connect.Response[api.GroupResponse], error) {
	members, err := s.store.ListMembers(ctx, group.ID)
	if err != nil {
		s.logger.Error("ListMembers failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GroupResponse{Group: toAPIGroup(group, members)}), nil
}

func (s *GroupService) hasLedger(ctx context.Context, groupID string) (bool, error) {
	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return false, err
	}
	if len(expenses) > 0 {
		return true, nil
	}
	settlements, err := s.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return false, err
	}
	return len(settlements) > 0, nil
}

// invalidate drops the cached balances. Membership changes alter the
// default-filled balance list.
func (s *GroupService) invalidate(ctx context.Context, groupID string) {
	if err := s.cache.Invalidate(ctx, groupID); err != nil {
		s.logger.Warn("Balance cache invalidation failed", "group_id", groupID, "error", err)
	}
}

// resolveCurrency upper-cases the currency code and picks a symbol when none
// is given. An empty code means the default currency.
func resolveCurrency(currency, symbol string) (string, string) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = models.DefaultCurrency
		if symbol == "" {
			symbol = models.DefaultCurrencySymbol
		}
	}
	if symbol == "" {
		symbol = money.Symbol(currency)
	}
	return currency, symbol
}
