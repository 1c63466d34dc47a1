package project

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskvine/taskvine/pkg/access"
)

// Membership is an explicit project grant. Zero or one exists per
// (project, user) pair; absence falls back to workspace-role defaults.
type Membership struct {
	projectID  uuid.UUID
	userID     uuid.UUID
	permission access.ProjectPermission
	grantedAt  time.Time
}

type MembershipOption func(*Membership)

func MembershipWithGrantedAt(grantedAt time.Time) MembershipOption {
	return func(m *Membership) {
		m.grantedAt = grantedAt
	}
}

func NewMembership(projectID, userID uuid.UUID, permission access.ProjectPermission, opts ...MembershipOption) *Membership {
	m := &Membership{
		projectID:  projectID,
		userID:     userID,
		permission: permission,
		grantedAt:  time.Now(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Membership) ProjectID() uuid.UUID {
	return m.projectID
}

func (m *Membership) UserID() uuid.UUID {
	return m.userID
}

func (m *Membership) Permission() access.ProjectPermission {
	return m.permission
}

func (m *Membership) GrantedAt() time.Time {
	return m.grantedAt
}
