package services_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/taskvine/taskvine/modules/core/domain/aggregates/project"
	"github.com/taskvine/taskvine/modules/core/domain/aggregates/task"
	"github.com/taskvine/taskvine/modules/core/domain/aggregates/workspace"
	"github.com/taskvine/taskvine/modules/core/infrastructure/persistence"
	"github.com/taskvine/taskvine/modules/core/services"
	"github.com/taskvine/taskvine/pkg/access"
	"github.com/taskvine/taskvine/pkg/composables"
	"github.com/taskvine/taskvine/pkg/constants"
	"github.com/taskvine/taskvine/pkg/entitlement"
	"github.com/taskvine/taskvine/pkg/eventbus"
	"github.com/taskvine/taskvine/pkg/feature"
	"github.com/taskvine/taskvine/pkg/outbox"
	"github.com/taskvine/taskvine/pkg/repo"
)

type noopTx struct{}

func (noopTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (noopTx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (noopTx) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func actorContext(userID uuid.UUID) context.Context {
	ctx := context.WithValue(context.Background(), constants.TxKey, noopTx{})
	return composables.WithUserID(ctx, userID)
}

type memWorkspaceRepo struct {
	workspaces map[uuid.UUID]*workspace.Workspace
	members    map[uuid.UUID]map[uuid.UUID]*workspace.Member
}

func newMemWorkspaceRepo() *memWorkspaceRepo {
	return &memWorkspaceRepo{
		workspaces: map[uuid.UUID]*workspace.Workspace{},
		members:    map[uuid.UUID]map[uuid.UUID]*workspace.Member{},
	}
}

func (r *memWorkspaceRepo) GetByID(_ context.Context, id uuid.UUID) (*workspace.Workspace, error) {
	w, ok := r.workspaces[id]
	if !ok {
		return nil, persistence.ErrWorkspaceNotFound
	}
	return w, nil
}

func (r *memWorkspaceRepo) GetAllForUser(_ context.Context, userID uuid.UUID) ([]*workspace.Workspace, error) {
	out := make([]*workspace.Workspace, 0)
	for id, members := range r.members {
		if _, ok := members[userID]; ok {
			out = append(out, r.workspaces[id])
		}
	}
	return out, nil
}

func (r *memWorkspaceRepo) GetIDsByPlan(_ context.Context, planID uuid.UUID) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0)
	for id, w := range r.workspaces {
		if w.PlanID() == planID {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *memWorkspaceRepo) Create(_ context.Context, data *workspace.Workspace) (*workspace.Workspace, error) {
	r.workspaces[data.ID()] = data
	return data, nil
}

func (r *memWorkspaceRepo) Update(_ context.Context, data *workspace.Workspace) (*workspace.Workspace, error) {
	if _, ok := r.workspaces[data.ID()]; !ok {
		return nil, persistence.ErrWorkspaceNotFound
	}
	r.workspaces[data.ID()] = data
	return data, nil
}

func (r *memWorkspaceRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.workspaces, id)
	delete(r.members, id)
	return nil
}

func (r *memWorkspaceRepo) GetMember(_ context.Context, workspaceID, userID uuid.UUID) (*workspace.Member, error) {
	m, ok := r.members[workspaceID][userID]
	if !ok {
		return nil, persistence.ErrMemberNotFound
	}
	return m, nil
}

func (r *memWorkspaceRepo) GetMembers(_ context.Context, workspaceID uuid.UUID) ([]*workspace.Member, error) {
	out := make([]*workspace.Member, 0, len(r.members[workspaceID]))
	for _, m := range r.members[workspaceID] {
		out = append(out, m)
	}
	return out, nil
}

func (r *memWorkspaceRepo) AddMember(_ context.Context, member *workspace.Member) error {
	if r.members[member.WorkspaceID()] == nil {
		r.members[member.WorkspaceID()] = map[uuid.UUID]*workspace.Member{}
	}
	r.members[member.WorkspaceID()][member.UserID()] = member
	return nil
}

func (r *memWorkspaceRepo) UpdateMemberRole(_ context.Context, workspaceID, userID uuid.UUID, role access.WorkspaceRole) error {
	m, ok := r.members[workspaceID][userID]
	if !ok {
		return persistence.ErrMemberNotFound
	}
	r.members[workspaceID][userID] = m.WithRole(role)
	return nil
}

func (r *memWorkspaceRepo) RemoveMember(_ context.Context, workspaceID, userID uuid.UUID) error {
	if _, ok := r.members[workspaceID][userID]; !ok {
		return persistence.ErrMemberNotFound
	}
	delete(r.members[workspaceID], userID)
	return nil
}

func (r *memWorkspaceRepo) CountMembers(_ context.Context, workspaceID uuid.UUID) (int, error) {
	return len(r.members[workspaceID]), nil
}

func (r *memWorkspaceRepo) GetOwner(_ context.Context, workspaceID uuid.UUID) (*workspace.Member, error) {
	for _, m := range r.members[workspaceID] {
		if m.Role() == access.RoleOwner {
			return m, nil
		}
	}
	return nil, persistence.ErrNoOwner
}

func (r *memWorkspaceRepo) TransferOwnership(ctx context.Context, workspaceID, newOwnerID uuid.UUID) error {
	owner, err := r.GetOwner(ctx, workspaceID)
	if err != nil {
		return err
	}
	if _, ok := r.members[workspaceID][newOwnerID]; !ok {
		return persistence.ErrMemberNotFound
	}
	r.members[workspaceID][owner.UserID()] = owner.WithRole(access.RoleAdmin)
	r.members[workspaceID][newOwnerID] = r.members[workspaceID][newOwnerID].WithRole(access.RoleOwner)
	return nil
}

type memProjectRepo struct {
	projects    map[uuid.UUID]*project.Project
	memberships map[uuid.UUID]map[uuid.UUID]*project.Membership
}

func newMemProjectRepo() *memProjectRepo {
	return &memProjectRepo{
		projects:    map[uuid.UUID]*project.Project{},
		memberships: map[uuid.UUID]map[uuid.UUID]*project.Membership{},
	}
}

func (r *memProjectRepo) GetByID(_ context.Context, id uuid.UUID) (*project.Project, error) {
	p, ok := r.projects[id]
	if !ok {
		return nil, persistence.ErrProjectNotFound
	}
	return p, nil
}

func (r *memProjectRepo) GetAllByWorkspace(_ context.Context, workspaceID uuid.UUID) ([]*project.Project, error) {
	out := make([]*project.Project, 0)
	for _, p := range r.projects {
		if p.WorkspaceID() == workspaceID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProjectRepo) Create(_ context.Context, data *project.Project) (*project.Project, error) {
	r.projects[data.ID()] = data
	return data, nil
}

func (r *memProjectRepo) Update(_ context.Context, data *project.Project) (*project.Project, error) {
	if _, ok := r.projects[data.ID()]; !ok {
		return nil, persistence.ErrProjectNotFound
	}
	r.projects[data.ID()] = data
	return data, nil
}

func (r *memProjectRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.projects, id)
	delete(r.memberships, id)
	return nil
}

func (r *memProjectRepo) CountByWorkspace(_ context.Context, workspaceID uuid.UUID) (int, error) {
	count := 0
	for _, p := range r.projects {
		if p.WorkspaceID() == workspaceID && !p.Archived() {
			count++
		}
	}
	return count, nil
}

func (r *memProjectRepo) GetMembership(_ context.Context, projectID, userID uuid.UUID) (*project.Membership, error) {
	m, ok := r.memberships[projectID][userID]
	if !ok {
		return nil, persistence.ErrMembershipNotFound
	}
	return m, nil
}

func (r *memProjectRepo) GetMemberships(_ context.Context, projectID uuid.UUID) ([]*project.Membership, error) {
	out := make([]*project.Membership, 0, len(r.memberships[projectID]))
	for _, m := range r.memberships[projectID] {
		out = append(out, m)
	}
	return out, nil
}

func (r *memProjectRepo) SetMembership(_ context.Context, membership *project.Membership) error {
	if r.memberships[membership.ProjectID()] == nil {
		r.memberships[membership.ProjectID()] = map[uuid.UUID]*project.Membership{}
	}
	r.memberships[membership.ProjectID()][membership.UserID()] = membership
	return nil
}

func (r *memProjectRepo) RemoveMembership(_ context.Context, projectID, userID uuid.UUID) error {
	if _, ok := r.memberships[projectID][userID]; !ok {
		return persistence.ErrMembershipNotFound
	}
	delete(r.memberships[projectID], userID)
	return nil
}

func (r *memProjectRepo) CountManagers(_ context.Context, projectID uuid.UUID) (int, error) {
	count := 0
	for _, m := range r.memberships[projectID] {
		if m.Permission() == access.PermissionManager {
			count++
		}
	}
	return count, nil
}

type memTaskRepo struct {
	tasks map[uuid.UUID]*task.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: map[uuid.UUID]*task.Task{}}
}

func (r *memTaskRepo) GetByID(_ context.Context, id uuid.UUID) (*task.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, persistence.ErrTaskNotFound
	}
	return t, nil
}

func (r *memTaskRepo) GetAllByProject(_ context.Context, projectID uuid.UUID) ([]*task.Task, error) {
	out := make([]*task.Task, 0)
	for _, t := range r.tasks {
		if t.ProjectID() == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTaskRepo) Create(_ context.Context, data *task.Task) (*task.Task, error) {
	r.tasks[data.ID()] = data
	return data, nil
}

func (r *memTaskRepo) Update(_ context.Context, data *task.Task) (*task.Task, error) {
	if _, ok := r.tasks[data.ID()]; !ok {
		return nil, persistence.ErrTaskNotFound
	}
	r.tasks[data.ID()] = data
	return data, nil
}

func (r *memTaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.tasks, id)
	return nil
}

func (r *memTaskRepo) CountByProject(_ context.Context, projectID uuid.UUID) (int, error) {
	count := 0
	for _, t := range r.tasks {
		if t.ProjectID() == projectID && t.Status() != task.StatusArchived {
			count++
		}
	}
	return count, nil
}

// memMemberships adapts the in-memory repos to the resolver port.
type memMemberships struct {
	workspaces *memWorkspaceRepo
	projects   *memProjectRepo
}

func (m *memMemberships) WorkspaceRole(_ context.Context, workspaceID, userID uuid.UUID) (access.WorkspaceRole, bool, error) {
	member, ok := m.workspaces.members[workspaceID][userID]
	if !ok {
		return "", false, nil
	}
	return member.Role(), true, nil
}

func (m *memMemberships) ProjectPermission(_ context.Context, projectID, userID uuid.UUID) (access.ProjectPermission, bool, error) {
	membership, ok := m.projects.memberships[projectID][userID]
	if !ok {
		return "", false, nil
	}
	return membership.Permission(), true, nil
}

func (m *memMemberships) WorkspaceIDByProject(_ context.Context, projectID uuid.UUID) (uuid.UUID, error) {
	p, ok := m.projects.projects[projectID]
	if !ok {
		return uuid.Nil, persistence.ErrProjectNotFound
	}
	return p.WorkspaceID(), nil
}

type stubStore struct {
	enabled     map[entitlement.Feature]bool
	limits      map[entitlement.LimitType]int
	invalidated []uuid.UUID
}

func newStubStore() *stubStore {
	return &stubStore{
		enabled: map[entitlement.Feature]bool{},
		limits:  map[entitlement.LimitType]int{},
	}
}

func (s *stubStore) IsEnabled(_ context.Context, _ uuid.UUID, f entitlement.Feature) bool {
	return s.enabled[f]
}

func (s *stubStore) GetLimit(_ context.Context, _ uuid.UUID, l entitlement.LimitType) int {
	value, ok := s.limits[l]
	if !ok {
		return entitlement.Unlimited
	}
	return value
}

func (s *stubStore) InvalidateCache(_ context.Context, workspaceID uuid.UUID) {
	s.invalidated = append(s.invalidated, workspaceID)
}

type capturingPublisher struct {
	messages []outbox.Message
}

func (p *capturingPublisher) Enqueue(_ context.Context, _ repo.Tx, _ pgx.Identifier, msg outbox.Message) (int64, error) {
	p.messages = append(p.messages, msg)
	return int64(len(p.messages)), nil
}

type env struct {
	workspaces *memWorkspaceRepo
	projects   *memProjectRepo
	tasks      *memTaskRepo
	store      *stubStore
	audit      *capturingPublisher

	workspaceService *services.WorkspaceService
	projectService   *services.ProjectService
	taskService      *services.TaskService
}

func newEnv() *env {
	workspaces := newMemWorkspaceRepo()
	projects := newMemProjectRepo()
	tasks := newMemTaskRepo()
	memberships := &memMemberships{workspaces: workspaces, projects: projects}

	store := newStubStore()
	audit := &capturingPublisher{}

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	log := logrus.NewEntry(logger)

	bus := eventbus.NewEventPublisher(logger)
	pool := feature.NewWorkerPool(1, 16, log)

	roles := access.NewRoleResolver(memberships)
	resolver := access.NewResolver(memberships)

	return &env{
		workspaces:       workspaces,
		projects:         projects,
		tasks:            tasks,
		store:            store,
		audit:            audit,
		workspaceService: services.NewWorkspaceService(workspaces, roles, store, audit, pool, bus, log),
		projectService:   services.NewProjectService(projects, roles, resolver, store, audit, pool, bus, log),
		taskService:      services.NewTaskService(tasks, resolver, store, audit, pool, bus, log),
	}
}

// seedWorkspace creates a workspace with an owner, bypassing the service.
func (e *env) seedWorkspace(owner uuid.UUID) *workspace.Workspace {
	w := workspace.New("Acme")
	e.workspaces.workspaces[w.ID()] = w
	e.workspaces.members[w.ID()] = map[uuid.UUID]*workspace.Member{
		owner: workspace.NewMember(w.ID(), owner, access.RoleOwner),
	}
	return w
}

func (e *env) seedMember(workspaceID, userID uuid.UUID, role access.WorkspaceRole) {
	e.workspaces.members[workspaceID][userID] = workspace.NewMember(workspaceID, userID, role)
}

func (e *env) seedProject(workspaceID uuid.UUID, managers ...uuid.UUID) *project.Project {
	p := project.New(workspaceID, "Apollo")
	e.projects.projects[p.ID()] = p
	for _, manager := range managers {
		_ = e.projects.SetMembership(context.Background(), project.NewMembership(p.ID(), manager, access.PermissionManager))
	}
	return p
}
