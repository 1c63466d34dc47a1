package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvine/taskvine/modules/core/domain/aggregates/workspace"
	"github.com/taskvine/taskvine/modules/core/services"
	"github.com/taskvine/taskvine/pkg/access"
	"github.com/taskvine/taskvine/pkg/entitlement"
	"github.com/taskvine/taskvine/pkg/feature"
)

func TestWorkspaceService_CreateEnrollsCreatorAsOwner(t *testing.T) {
	e := newEnv()
	creator := uuid.New()
	ctx := actorContext(creator)

	created, err := e.workspaceService.Create(ctx, workspace.New("Acme"))
	require.NoError(t, err)

	owner, err := e.workspaces.GetOwner(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, creator, owner.UserID())
	assert.Equal(t, access.RoleOwner, owner.Role())
}

func TestWorkspaceService_TransferOwnershipKeepsSingleOwner(t *testing.T) {
	e := newEnv()
	oldOwner := uuid.New()
	newOwner := uuid.New()
	w := e.seedWorkspace(oldOwner)
	e.seedMember(w.ID(), newOwner, access.RoleMember)

	require.NoError(t, e.workspaceService.TransferOwnership(actorContext(oldOwner), w.ID(), newOwner))

	owners := 0
	for _, m := range e.workspaces.members[w.ID()] {
		if m.Role() == access.RoleOwner {
			owners++
		}
	}
	assert.Equal(t, 1, owners)

	promoted, err := e.workspaces.GetMember(context.Background(), w.ID(), newOwner)
	require.NoError(t, err)
	assert.Equal(t, access.RoleOwner, promoted.Role())

	demoted, err := e.workspaces.GetMember(context.Background(), w.ID(), oldOwner)
	require.NoError(t, err)
	assert.Equal(t, access.RoleAdmin, demoted.Role())
}

func TestWorkspaceService_TransferOwnershipRequiresOwner(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	admin := uuid.New()
	target := uuid.New()
	w := e.seedWorkspace(owner)
	e.seedMember(w.ID(), admin, access.RoleAdmin)
	e.seedMember(w.ID(), target, access.RoleMember)

	err := e.workspaceService.TransferOwnership(actorContext(admin), w.ID(), target)
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestWorkspaceService_InviteMemberRejectsOwnerRole(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	w := e.seedWorkspace(owner)

	_, err := e.workspaceService.InviteMember(actorContext(owner), w.ID(), uuid.New(), access.RoleOwner)
	assert.ErrorIs(t, err, services.ErrOwnerRole)
}

func TestWorkspaceService_InviteMemberEnforcesMemberLimit(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	w := e.seedWorkspace(owner)
	e.seedMember(w.ID(), uuid.New(), access.RoleMember)
	e.seedMember(w.ID(), uuid.New(), access.RoleMember)
	e.store.limits[entitlement.LimitMaxMembers] = 3

	_, err := e.workspaceService.InviteMember(actorContext(owner), w.ID(), uuid.New(), access.RoleMember)
	assert.ErrorIs(t, err, feature.ErrLimitExceeded)

	count, _ := e.workspaces.CountMembers(context.Background(), w.ID())
	assert.Equal(t, 3, count, "a rejected invite must not add the member")
}

func TestWorkspaceService_InviteMemberBelowLimitPasses(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	w := e.seedWorkspace(owner)
	e.seedMember(w.ID(), uuid.New(), access.RoleMember)
	e.store.limits[entitlement.LimitMaxMembers] = 3

	invited, err := e.workspaceService.InviteMember(actorContext(owner), w.ID(), uuid.New(), access.RoleMember)
	require.NoError(t, err)
	assert.Equal(t, access.RoleMember, invited.Role())

	count, _ := e.workspaces.CountMembers(context.Background(), w.ID())
	assert.Equal(t, 3, count)
}

func TestWorkspaceService_UpdateMemberRoleCannotTouchOwner(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	admin := uuid.New()
	w := e.seedWorkspace(owner)
	e.seedMember(w.ID(), admin, access.RoleAdmin)

	_, err := e.workspaceService.UpdateMemberRole(actorContext(admin), w.ID(), owner, access.RoleMember)
	assert.ErrorIs(t, err, services.ErrOwnerRole)
}

func TestWorkspaceService_RemoveMemberCannotRemoveOwner(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	admin := uuid.New()
	w := e.seedWorkspace(owner)
	e.seedMember(w.ID(), admin, access.RoleAdmin)

	err := e.workspaceService.RemoveMember(actorContext(admin), w.ID(), owner)
	assert.ErrorIs(t, err, services.ErrOwnerRole)
}

func TestWorkspaceService_GetByIDRequiresMembership(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	w := e.seedWorkspace(owner)

	_, err := e.workspaceService.GetByID(actorContext(uuid.New()), w.ID())
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestWorkspaceService_InviteAuditedWhenEnabled(t *testing.T) {
	e := newEnv()
	e.store.enabled[entitlement.FeatureAuditLog] = true
	owner := uuid.New()
	w := e.seedWorkspace(owner)

	_, err := e.workspaceService.InviteMember(actorContext(owner), w.ID(), uuid.New(), access.RoleMember)
	require.NoError(t, err)

	require.Len(t, e.audit.messages, 1)
	assert.Equal(t, "audit.member.invite.v1", e.audit.messages[0].Topic)
	assert.Equal(t, w.ID(), e.audit.messages[0].WorkspaceID)
}
