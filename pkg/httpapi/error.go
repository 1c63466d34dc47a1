package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/taskvine/taskvine/pkg/serrors"
)

// ErrorEnvelope standardizes JSON error responses for API namespaces.
type ErrorEnvelope struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}

// StatusForCode maps service error codes to HTTP statuses. Authorization
// denials and limit rejections are distinct on purpose: clients render an
// upgrade prompt for the latter.
func StatusForCode(code string) int {
	switch code {
	case "ACCESS_FORBIDDEN":
		return http.StatusForbidden
	case "PLAN_LIMIT_EXCEEDED":
		return http.StatusUnprocessableEntity
	case "WORKSPACE_OWNER_ROLE", "PROJECT_LAST_MANAGER":
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError renders a service-layer error. Coded errors carry their
// own status and metadata; anything else is a plain 500.
func WriteServiceError(w http.ResponseWriter, err error) error {
	var base *serrors.BaseError
	if errors.As(err, &base) {
		return WriteError(w, StatusForCode(base.Code), base.Code, base.Message, base.TemplateData)
	}
	return WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal server error", nil)
}
