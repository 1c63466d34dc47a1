package project

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskvine/taskvine/pkg/access"
	"github.com/taskvine/taskvine/pkg/composables"
)

type CreatedEvent struct {
	Actor  uuid.UUID
	Data   *Project
	Result *Project
}

func NewCreatedEvent(ctx context.Context, data *Project) (*CreatedEvent, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	return &CreatedEvent{Actor: actor, Data: data}, nil
}

type UpdatedEvent struct {
	Actor  uuid.UUID
	Data   *Project
	Result *Project
}

func NewUpdatedEvent(ctx context.Context, data *Project) (*UpdatedEvent, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	return &UpdatedEvent{Actor: actor, Data: data}, nil
}

type DeletedEvent struct {
	Actor  uuid.UUID
	Result *Project
}

func NewDeletedEvent(ctx context.Context) (*DeletedEvent, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	return &DeletedEvent{Actor: actor}, nil
}

type MembershipSetEvent struct {
	Actor    uuid.UUID
	Previous access.ProjectPermission
	Result   *Membership
}

func NewMembershipSetEvent(ctx context.Context, previous access.ProjectPermission) (*MembershipSetEvent, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	return &MembershipSetEvent{Actor: actor, Previous: previous}, nil
}

type MembershipRemovedEvent struct {
	Actor     uuid.UUID
	ProjectID uuid.UUID
	UserID    uuid.UUID
}

func NewMembershipRemovedEvent(ctx context.Context, projectID, userID uuid.UUID) (*MembershipRemovedEvent, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	return &MembershipRemovedEvent{Actor: actor, ProjectID: projectID, UserID: userID}, nil
}
