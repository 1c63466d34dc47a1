package composables

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/taskvine/taskvine/pkg/constants"
)

var (
	ErrNoWorkspaceID = errors.New("no workspace id found in context")
	ErrNoUserID      = errors.New("no user id found in context")
)

func WithWorkspaceID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, constants.WorkspaceIDKey, id)
}

func UseWorkspaceID(ctx context.Context) (uuid.UUID, error) {
	id, ok := ctx.Value(constants.WorkspaceIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, ErrNoWorkspaceID
	}
	return id, nil
}

func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, constants.UserIDKey, id)
}

func UseUserID(ctx context.Context) (uuid.UUID, error) {
	id, ok := ctx.Value(constants.UserIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, ErrNoUserID
	}
	return id, nil
}
