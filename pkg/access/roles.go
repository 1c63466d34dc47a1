package access

// WorkspaceRole is the coarse, workspace-wide authorization tier. Exactly one
// role is held per (workspace, user) pair, and a workspace has exactly one
// OWNER at any time.
type WorkspaceRole string

const (
	RoleOwner  WorkspaceRole = "OWNER"
	RoleAdmin  WorkspaceRole = "ADMIN"
	RoleMember WorkspaceRole = "MEMBER"
	RoleGuest  WorkspaceRole = "GUEST"
)

func NewWorkspaceRole(r string) (WorkspaceRole, error) {
	role := WorkspaceRole(r)
	if !role.IsValid() {
		return "", errInvalidRole(r)
	}
	return role, nil
}

func (r WorkspaceRole) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember, RoleGuest:
		return true
	}
	return false
}

// Level orders roles by privilege. Higher is more privileged.
func (r WorkspaceRole) Level() int {
	switch r {
	case RoleOwner:
		return 4
	case RoleAdmin:
		return 3
	case RoleMember:
		return 2
	case RoleGuest:
		return 1
	}
	return 0
}

func (r WorkspaceRole) AtLeast(other WorkspaceRole) bool {
	return r.Level() >= other.Level()
}

// ProjectPermission is the fine-grained, per-project access level.
type ProjectPermission string

const (
	PermissionManager     ProjectPermission = "MANAGER"
	PermissionContributor ProjectPermission = "CONTRIBUTOR"
	PermissionView        ProjectPermission = "VIEW"
)

func NewProjectPermission(p string) (ProjectPermission, error) {
	permission := ProjectPermission(p)
	if !permission.IsValid() {
		return "", errInvalidPermission(p)
	}
	return permission, nil
}

func (p ProjectPermission) IsValid() bool {
	switch p {
	case PermissionManager, PermissionContributor, PermissionView:
		return true
	}
	return false
}

func (p ProjectPermission) Level() int {
	switch p {
	case PermissionManager:
		return 3
	case PermissionContributor:
		return 2
	case PermissionView:
		return 1
	}
	return 0
}

func (p ProjectPermission) AtLeast(other ProjectPermission) bool {
	return p.Level() >= other.Level()
}

// defaultPermission maps a workspace role to its project-level default when
// no explicit project membership exists. GUEST intentionally maps to nothing:
// a guest must be granted project access explicitly.
func defaultPermission(role WorkspaceRole) (ProjectPermission, bool) {
	switch role {
	case RoleAdmin:
		return PermissionManager, true
	case RoleMember:
		return PermissionContributor, true
	}
	return "", false
}
