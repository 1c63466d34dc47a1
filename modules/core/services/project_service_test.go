package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvine/taskvine/modules/core/domain/aggregates/project"
	"github.com/taskvine/taskvine/modules/core/features"
	"github.com/taskvine/taskvine/modules/core/services"
	"github.com/taskvine/taskvine/pkg/access"
	"github.com/taskvine/taskvine/pkg/entitlement"
	"github.com/taskvine/taskvine/pkg/feature"
	"github.com/taskvine/taskvine/pkg/serrors"
)

func TestProjectService_CreateAtLimitBlocks(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	w := e.seedWorkspace(owner)
	e.seedProject(w.ID())
	e.seedProject(w.ID())
	e.seedProject(w.ID())
	e.store.limits[entitlement.LimitMaxProjects] = 3

	_, err := e.projectService.Create(actorContext(owner), project.New(w.ID(), "Daedalus"))
	require.ErrorIs(t, err, feature.ErrLimitExceeded)

	var base *serrors.BaseError
	require.ErrorAs(t, err, &base)
	assert.Equal(t, "MAX_PROJECTS", base.TemplateData["limitType"])

	count, _ := e.projects.CountByWorkspace(context.Background(), w.ID())
	assert.Equal(t, 3, count, "a rejected create must leave no project behind")
}

func TestProjectService_CreateBelowLimitPasses(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	w := e.seedWorkspace(owner)
	e.seedProject(w.ID())
	e.seedProject(w.ID())
	e.store.limits[entitlement.LimitMaxProjects] = 3

	created, err := e.projectService.Create(actorContext(owner), project.New(w.ID(), "Daedalus"))
	require.NoError(t, err)
	assert.Equal(t, "Daedalus", created.Name())

	grant, err := e.projects.GetMembership(context.Background(), created.ID(), owner)
	require.NoError(t, err)
	assert.Equal(t, access.PermissionManager, grant.Permission())
}

func TestProjectService_CreateRequiresAdmin(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	member := uuid.New()
	w := e.seedWorkspace(owner)
	e.seedMember(w.ID(), member, access.RoleMember)

	_, err := e.projectService.Create(actorContext(member), project.New(w.ID(), "Daedalus"))
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestProjectService_LastManagerCannotBeDemoted(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	manager := uuid.New()
	w := e.seedWorkspace(owner)
	e.seedMember(w.ID(), manager, access.RoleMember)
	p := e.seedProject(w.ID(), manager)

	_, err := e.projectService.SetMemberPermission(actorContext(owner), p.ID(), manager, access.PermissionView)
	assert.ErrorIs(t, err, services.ErrLastManager)
}

func TestProjectService_LastManagerCannotBeRemoved(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	manager := uuid.New()
	w := e.seedWorkspace(owner)
	e.seedMember(w.ID(), manager, access.RoleMember)
	p := e.seedProject(w.ID(), manager)

	err := e.projectService.RemoveMemberPermission(actorContext(owner), p.ID(), manager)
	assert.ErrorIs(t, err, services.ErrLastManager)
}

func TestProjectService_DemotionAllowedWithTwoManagers(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	first := uuid.New()
	second := uuid.New()
	w := e.seedWorkspace(owner)
	e.seedMember(w.ID(), first, access.RoleMember)
	e.seedMember(w.ID(), second, access.RoleMember)
	p := e.seedProject(w.ID(), first, second)

	updated, err := e.projectService.SetMemberPermission(actorContext(owner), p.ID(), first, access.PermissionView)
	require.NoError(t, err)
	assert.Equal(t, access.PermissionView, updated.Permission())

	managers, _ := e.projects.CountManagers(context.Background(), p.ID())
	assert.Equal(t, 1, managers)
}

func TestProjectService_NonManagerGrantDoesNotTripSafeguard(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	manager := uuid.New()
	viewer := uuid.New()
	w := e.seedWorkspace(owner)
	e.seedMember(w.ID(), manager, access.RoleMember)
	p := e.seedProject(w.ID(), manager)
	require.NoError(t, e.projects.SetMembership(context.Background(), project.NewMembership(p.ID(), viewer, access.PermissionView)))

	err := e.projectService.RemoveMemberPermission(actorContext(owner), p.ID(), viewer)
	assert.NoError(t, err)
}

func TestProjectService_GuestCannotView(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	guest := uuid.New()
	w := e.seedWorkspace(owner)
	e.seedMember(w.ID(), guest, access.RoleGuest)
	p := e.seedProject(w.ID())

	_, err := e.projectService.GetByID(actorContext(guest), p.ID())
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestProjectService_GuestWithExplicitGrantCanView(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	guest := uuid.New()
	w := e.seedWorkspace(owner)
	e.seedMember(w.ID(), guest, access.RoleGuest)
	p := e.seedProject(w.ID())
	require.NoError(t, e.projects.SetMembership(context.Background(), project.NewMembership(p.ID(), guest, access.PermissionView)))

	got, err := e.projectService.GetByID(actorContext(guest), p.ID())
	require.NoError(t, err)
	assert.Equal(t, p.ID(), got.ID())
}

func TestProjectService_UpdateAuditsChangedFieldsOnly(t *testing.T) {
	e := newEnv()
	e.store.enabled[entitlement.FeatureAuditLog] = true
	owner := uuid.New()
	w := e.seedWorkspace(owner)
	p := e.seedProject(w.ID())

	_, err := e.projectService.Update(actorContext(owner), p.Apply("Artemis", ""))
	require.NoError(t, err)

	require.Len(t, e.audit.messages, 1)
	var entry features.Entry
	require.NoError(t, json.Unmarshal(e.audit.messages[0].Payload, &entry))
	require.Len(t, entry.Changes, 1)
	assert.Equal(t, "Apollo", entry.Changes["name"].Old)
	assert.Equal(t, "Artemis", entry.Changes["name"].New)
}

func TestProjectService_DeleteAuditsPriorState(t *testing.T) {
	e := newEnv()
	e.store.enabled[entitlement.FeatureAuditLog] = true
	owner := uuid.New()
	w := e.seedWorkspace(owner)
	p := e.seedProject(w.ID())

	require.NoError(t, e.projectService.Delete(actorContext(owner), p.ID()))

	require.Len(t, e.audit.messages, 1)
	assert.Equal(t, "audit.project.delete.v1", e.audit.messages[0].Topic)
	var entry features.Entry
	require.NoError(t, json.Unmarshal(e.audit.messages[0].Payload, &entry))
	assert.Equal(t, "delete", entry.Action)
	assert.Equal(t, "Apollo", entry.Changes["name"].Old)
	assert.Nil(t, entry.Changes["name"].New)
}

func TestProjectService_DeleteWithoutAuditFeatureStaysSilent(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	w := e.seedWorkspace(owner)
	p := e.seedProject(w.ID())

	require.NoError(t, e.projectService.Delete(actorContext(owner), p.ID()))

	assert.Empty(t, e.audit.messages)
}

func TestProjectService_NoopUpdateProducesNoAuditEntry(t *testing.T) {
	e := newEnv()
	e.store.enabled[entitlement.FeatureAuditLog] = true
	owner := uuid.New()
	w := e.seedWorkspace(owner)
	p := e.seedProject(w.ID())

	_, err := e.projectService.Update(actorContext(owner), p.Apply("Apollo", ""))
	require.NoError(t, err)

	assert.Empty(t, e.audit.messages)
}
