package workspace

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskvine/taskvine/pkg/access"
)

// Member is one workspace role assignment. Exactly one exists per
// (workspace, user) pair.
type Member struct {
	workspaceID uuid.UUID
	userID      uuid.UUID
	role        access.WorkspaceRole
	joinedAt    time.Time
}

type MemberOption func(*Member)

func MemberWithJoinedAt(joinedAt time.Time) MemberOption {
	return func(m *Member) {
		m.joinedAt = joinedAt
	}
}

func NewMember(workspaceID, userID uuid.UUID, role access.WorkspaceRole, opts ...MemberOption) *Member {
	m := &Member{
		workspaceID: workspaceID,
		userID:      userID,
		role:        role,
		joinedAt:    time.Now(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Member) WorkspaceID() uuid.UUID {
	return m.workspaceID
}

func (m *Member) UserID() uuid.UUID {
	return m.userID
}

func (m *Member) Role() access.WorkspaceRole {
	return m.role
}

func (m *Member) JoinedAt() time.Time {
	return m.joinedAt
}

func (m *Member) WithRole(role access.WorkspaceRole) *Member {
	clone := *m
	clone.role = role
	return &clone
}
