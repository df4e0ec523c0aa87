package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/tourledger/internal/middleware"
	"github.com/mmynk/tourledger/internal/models"
	"github.com/mmynk/tourledger/internal/storage"
)

var (
	errForbidden   = errors.New("not allowed for this role")
	errNotOwnEntry = errors.New("agencies may only change their own bookings")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateRequest runs the struct tags of a request message.
func validateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	return nil
}

// storeError maps a storage failure onto a Connect error.
func storeError(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, err)
	}
	slog.Error(op+" failed", "error", err)
	return connect.NewError(connect.CodeInternal, err)
}

// requireRole returns the caller if it holds one of roles.
func requireRole(ctx context.Context, roles ...models.Role) (models.Actor, error) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		return models.Actor{}, connect.NewError(connect.CodeUnauthenticated, errors.New("no authenticated actor"))
	}
	for _, r := range roles {
		if actor.Role == r {
			return actor, nil
		}
	}
	return models.Actor{}, connect.NewError(connect.CodePermissionDenied, errForbidden)
}

// targetUser resolves whose personal record a request addresses. Hosts only
// reach their own; admins may name any host.
func targetUser(actor models.Actor, requested string) (string, error) {
	if requested == "" || requested == actor.UserID {
		return actor.UserID, nil
	}
	if actor.IsAdmin() {
		return requested, nil
	}
	return "", connect.NewError(connect.CodePermissionDenied, errForbidden)
}
