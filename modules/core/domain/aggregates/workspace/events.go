package workspace

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskvine/taskvine/pkg/access"
	"github.com/taskvine/taskvine/pkg/composables"
)

type CreatedEvent struct {
	Actor  uuid.UUID
	Data   *Workspace
	Result *Workspace
}

func NewCreatedEvent(ctx context.Context, data *Workspace) (*CreatedEvent, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	return &CreatedEvent{Actor: actor, Data: data}, nil
}

type UpdatedEvent struct {
	Actor  uuid.UUID
	Data   *Workspace
	Result *Workspace
}

func NewUpdatedEvent(ctx context.Context, data *Workspace) (*UpdatedEvent, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	return &UpdatedEvent{Actor: actor, Data: data}, nil
}

type DeletedEvent struct {
	Actor  uuid.UUID
	Result *Workspace
}

func NewDeletedEvent(ctx context.Context) (*DeletedEvent, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	return &DeletedEvent{Actor: actor}, nil
}

type MemberInvitedEvent struct {
	Actor  uuid.UUID
	Result *Member
}

func NewMemberInvitedEvent(ctx context.Context) (*MemberInvitedEvent, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	return &MemberInvitedEvent{Actor: actor}, nil
}

type MemberRoleUpdatedEvent struct {
	Actor    uuid.UUID
	Previous access.WorkspaceRole
	Result   *Member
}

func NewMemberRoleUpdatedEvent(ctx context.Context, previous access.WorkspaceRole) (*MemberRoleUpdatedEvent, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	return &MemberRoleUpdatedEvent{Actor: actor, Previous: previous}, nil
}

type OwnershipTransferredEvent struct {
	Actor    uuid.UUID
	OldOwner uuid.UUID
	NewOwner uuid.UUID
}

func NewOwnershipTransferredEvent(ctx context.Context, oldOwner, newOwner uuid.UUID) (*OwnershipTransferredEvent, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	return &OwnershipTransferredEvent{Actor: actor, OldOwner: oldOwner, NewOwner: newOwner}, nil
}
