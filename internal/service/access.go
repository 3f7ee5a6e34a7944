package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmynk/owwn/internal/auth"
	"github.com/mmynk/owwn/internal/middleware"
	"github.com/mmynk/owwn/internal/models"
	"github.com/mmynk/owwn/internal/storage"
)

// callerID returns the authenticated user or ErrMissingToken.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", auth.ErrMissingToken
	}
	return userID, nil
}

// groupAccess is the caller's view of a group.
type groupAccess struct {
	userID string
	group  *models.Group
	member *models.Member
}

func (a *groupAccess) isAdmin() bool {
	return a.member.IsAdmin()
}

// requireMember loads the group and the caller's membership in it.
// Unknown groups are NotFound; non-members get ErrNotMember.
func requireMember(ctx context.Context, store storage.GroupStore, groupID string) (*groupAccess, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	member, err := store.GetMember(ctx, groupID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("group %s: %w", groupID, ErrNotMember)
	}
	if err != nil {
		return nil, err
	}

	return &groupAccess{userID: userID, group: group, member: member}, nil
}

// requireAdmin is requireMember plus an admin role check.
func requireAdmin(ctx context.Context, store storage.GroupStore, groupID, action string) (*groupAccess, error) {
	access, err := requireMember(ctx, store, groupID)
	if err != nil {
		return nil, err
	}
	if !access.isAdmin() {
		return nil, fmt.Errorf("only admins can %s: %w", action, ErrPermissionDenied)
	}
	return access, nil
}
