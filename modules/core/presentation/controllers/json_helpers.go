package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/taskvine/taskvine/modules/core/infrastructure/persistence"
	"github.com/taskvine/taskvine/pkg/httpapi"
)

const maxBodyBytes = 1 << 20

// decodeJSON parses the request body into dst and writes the error response
// itself on failure. Callers bail out when it returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "malformed request body", nil)
		return false
	}
	return true
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw, ok := mux.Vars(r)[name]
	if !ok {
		return uuid.Nil, errors.Errorf("missing path parameter %q", name)
	}
	return uuid.Parse(raw)
}

func writeValidationErrors(w http.ResponseWriter, fields map[string]string) {
	_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request validation failed", fields)
}

// writeServiceError maps repository sentinels to 404 and defers to the
// shared code-to-status mapping for everything else.
func writeServiceError(w http.ResponseWriter, err error) {
	for _, sentinel := range []error{
		persistence.ErrWorkspaceNotFound,
		persistence.ErrMemberNotFound,
		persistence.ErrProjectNotFound,
		persistence.ErrMembershipNotFound,
		persistence.ErrTaskNotFound,
		persistence.ErrPlanNotFound,
	} {
		if errors.Is(err, sentinel) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", sentinel.Error(), nil)
			return
		}
	}
	_ = httpapi.WriteServiceError(w, err)
}
