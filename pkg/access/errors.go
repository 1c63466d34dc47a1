package access

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/taskvine/taskvine/pkg/serrors"
)

const (
	errorCodeForbidden = "ACCESS_FORBIDDEN"
	errorLocaleKey     = "Authorization.PermissionDenied"
)

// ErrForbidden is the sentinel the HTTP boundary matches to render 403.
var ErrForbidden = serrors.NewError(errorCodeForbidden, "permission denied", errorLocaleKey)

// forbiddenError builds a standardized denial carrying the workspace and user
// the check was evaluated against.
func forbiddenError(workspaceID, userID uuid.UUID, required string) *serrors.BaseError {
	return serrors.NewError(
		errorCodeForbidden,
		"permission denied",
		errorLocaleKey,
	).WithTemplateData(map[string]string{
		"workspaceID": workspaceID.String(),
		"userID":      userID.String(),
		"required":    required,
	})
}

// Forbidden is forbiddenError for callers outside the package, e.g. a
// service rejecting a project action after a resolver check came back false.
func Forbidden(workspaceID, userID uuid.UUID, required string) *serrors.BaseError {
	return forbiddenError(workspaceID, userID, required)
}

func errInvalidRole(r string) error {
	return fmt.Errorf("invalid workspace role: %q", r)
}

func errInvalidPermission(p string) error {
	return fmt.Errorf("invalid project permission: %q", p)
}
