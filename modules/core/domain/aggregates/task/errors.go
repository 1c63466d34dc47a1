package task

import "github.com/taskvine/taskvine/pkg/serrors"

func errInvalidStatus(value string) *serrors.BaseError {
	return serrors.NewError("TASK_INVALID_STATUS", "invalid task status", "tasks.errors.invalidStatus").
		WithTemplateData(map[string]string{"Status": value})
}
