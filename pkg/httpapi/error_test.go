package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvine/taskvine/pkg/httpapi"
	"github.com/taskvine/taskvine/pkg/serrors"
)

func TestStatusForCode(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, httpapi.StatusForCode("ACCESS_FORBIDDEN"))
	assert.Equal(t, http.StatusUnprocessableEntity, httpapi.StatusForCode("PLAN_LIMIT_EXCEEDED"))
	assert.Equal(t, http.StatusConflict, httpapi.StatusForCode("WORKSPACE_OWNER_ROLE"))
	assert.Equal(t, http.StatusConflict, httpapi.StatusForCode("PROJECT_LAST_MANAGER"))
	assert.Equal(t, http.StatusInternalServerError, httpapi.StatusForCode("SOMETHING_ELSE"))
}

func TestWriteServiceError_CodedError(t *testing.T) {
	rec := httptest.NewRecorder()
	err := serrors.NewError("ACCESS_FORBIDDEN", "no access", "")
	require.NoError(t, httpapi.WriteServiceError(rec, errors.Wrap(err, "project fetch")))

	assert.Equal(t, http.StatusForbidden, rec.Code)

	var envelope httpapi.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "ACCESS_FORBIDDEN", envelope.Code)
	assert.Equal(t, "no access", envelope.Message)
}

func TestWriteServiceError_UnknownError(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, httpapi.WriteServiceError(rec, errors.New("boom")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var envelope httpapi.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", envelope.Code)
}
