package serrors

import "fmt"

// BaseError is a coded error. Code is a stable machine-readable identifier
// used by the HTTP boundary to pick a status and by clients to branch on
// failure kinds. LocaleKey is an optional translation key for user-facing
// rendering.
type BaseError struct {
	Code         string
	Message      string
	LocaleKey    string
	TemplateData map[string]string
}

func NewError(code, message, localeKey string) *BaseError {
	return &BaseError{
		Code:      code,
		Message:   message,
		LocaleKey: localeKey,
	}
}

func (e *BaseError) Error() string {
	if len(e.TemplateData) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s %v", e.Code, e.Message, e.TemplateData)
}

// WithTemplateData returns a copy carrying key/value details for message
// templating and structured responses.
func (e *BaseError) WithTemplateData(data map[string]string) *BaseError {
	clone := *e
	clone.TemplateData = make(map[string]string, len(data))
	for k, v := range e.TemplateData {
		clone.TemplateData[k] = v
	}
	for k, v := range data {
		clone.TemplateData[k] = v
	}
	return &clone
}

// Is matches by code so wrapped instances compare equal to their sentinel.
func (e *BaseError) Is(target error) bool {
	other, ok := target.(*BaseError)
	if !ok {
		return false
	}
	return e.Code == other.Code
}
