package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/owwn/internal/auth"
	"github.com/mmynk/owwn/internal/calculator"
	"github.com/mmynk/owwn/internal/storage"
)

var (
	// ErrPermissionDenied means the caller's role does not allow the action.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotMember means the caller does not belong to the group.
	ErrNotMember = errors.New("you are not a member of this group")
)

// toConnectError maps domain errors onto connect codes. Errors that already
// carry a code pass through unchanged.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var ce *connect.Error
	if errors.As(err, &ce) {
		return err
	}

	switch {
	case errors.Is(err, calculator.ErrValidation), errors.Is(err, calculator.ErrPaymentMismatch):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, calculator.ErrMembership):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, ErrNotMember):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		return connect.NewError(connect.CodeUnauthenticated, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
