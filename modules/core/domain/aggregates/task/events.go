package task

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskvine/taskvine/pkg/composables"
)

type CreatedEvent struct {
	Actor  uuid.UUID
	Data   *Task
	Result *Task
}

func NewCreatedEvent(ctx context.Context, data *Task) (*CreatedEvent, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	return &CreatedEvent{Actor: actor, Data: data}, nil
}

type UpdatedEvent struct {
	Actor  uuid.UUID
	Data   *Task
	Result *Task
}

func NewUpdatedEvent(ctx context.Context, data *Task) (*UpdatedEvent, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	return &UpdatedEvent{Actor: actor, Data: data}, nil
}

type DeletedEvent struct {
	Actor  uuid.UUID
	Result *Task
}

func NewDeletedEvent(ctx context.Context) (*DeletedEvent, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	return &DeletedEvent{Actor: actor}, nil
}

type StatusChangedEvent struct {
	Actor    uuid.UUID
	Previous Status
	Result   *Task
}

func NewStatusChangedEvent(ctx context.Context, previous Status) (*StatusChangedEvent, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	return &StatusChangedEvent{Actor: actor, Previous: previous}, nil
}
