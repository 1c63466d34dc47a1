package services

import "github.com/taskvine/taskvine/pkg/serrors"

// ErrLastManager rejects demoting or removing a project's only explicit
// manager. Every project keeps at least one.
var ErrLastManager = serrors.NewError(
	"PROJECT_LAST_MANAGER",
	"cannot demote or remove the last manager of a project",
	"Projects.Errors.LastManager",
)

// ErrOwnerRole rejects granting or editing the OWNER role through member
// operations. Ownership moves only via TransferOwnership.
var ErrOwnerRole = serrors.NewError(
	"WORKSPACE_OWNER_ROLE",
	"ownership changes only through an ownership transfer",
	"Workspaces.Errors.OwnerRole",
)
