package feature

import (
	"strconv"

	"github.com/taskvine/taskvine/pkg/entitlement"
	"github.com/taskvine/taskvine/pkg/serrors"
)

const (
	errorCodeLimitExceeded = "PLAN_LIMIT_EXCEEDED"
	errorLocaleKey         = "Entitlement.LimitExceeded"
)

// ErrLimitExceeded is the sentinel for plan-limit rejections. It is surfaced
// distinctly from authorization denials so clients can render upgrade
// prompts instead of a plain forbidden message.
var ErrLimitExceeded = serrors.NewError(errorCodeLimitExceeded, "plan limit exceeded", errorLocaleKey)

// LimitExceededError builds a limit rejection carrying the limit type, the
// usage observed at validation time and the configured ceiling.
func LimitExceededError(limitType entitlement.LimitType, currentUsage, limit int) *serrors.BaseError {
	return serrors.NewError(
		errorCodeLimitExceeded,
		"plan limit exceeded",
		errorLocaleKey,
	).WithTemplateData(map[string]string{
		"limitType":    string(limitType),
		"currentUsage": strconv.Itoa(currentUsage),
		"limit":        strconv.Itoa(limit),
	})
}
