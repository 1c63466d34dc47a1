package dtos

import (
	"github.com/go-playground/validator/v10"

	"github.com/taskvine/taskvine/pkg/constants"
)

// APIError mirrors the envelope in pkg/httpapi so controller tests can
// decode responses without importing the transport package.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Meta    map[string]string `json:"meta,omitempty"`
}

type CreateWorkspaceDTO struct {
	Name string `json:"name" validate:"required,max=200"`
}

type UpdateWorkspaceDTO struct {
	Name string `json:"name" validate:"required,max=200"`
}

type InviteMemberDTO struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Role   string `json:"role" validate:"required,oneof=ADMIN MEMBER GUEST"`
}

type UpdateMemberRoleDTO struct {
	Role string `json:"role" validate:"required,oneof=ADMIN MEMBER GUEST"`
}

type TransferOwnershipDTO struct {
	NewOwnerID string `json:"new_owner_id" validate:"required,uuid"`
}

type AssignPlanDTO struct {
	PlanID string `json:"plan_id" validate:"required,uuid"`
}

func (dto *CreateWorkspaceDTO) Ok() (map[string]string, bool)   { return validateStruct(dto) }
func (dto *UpdateWorkspaceDTO) Ok() (map[string]string, bool)   { return validateStruct(dto) }
func (dto *InviteMemberDTO) Ok() (map[string]string, bool)      { return validateStruct(dto) }
func (dto *UpdateMemberRoleDTO) Ok() (map[string]string, bool)  { return validateStruct(dto) }
func (dto *TransferOwnershipDTO) Ok() (map[string]string, bool) { return validateStruct(dto) }
func (dto *AssignPlanDTO) Ok() (map[string]string, bool)        { return validateStruct(dto) }

func validateStruct(dto any) (map[string]string, bool) {
	errorMessages := map[string]string{}
	errs := constants.Validate.Struct(dto)
	if errs == nil {
		return errorMessages, true
	}
	for _, err := range errs.(validator.ValidationErrors) {
		errorMessages[err.Field()] = err.Tag()
	}
	return errorMessages, len(errorMessages) == 0
}
