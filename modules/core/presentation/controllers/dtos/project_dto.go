package dtos

type CreateProjectDTO struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

type UpdateProjectDTO struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

type SetProjectMemberDTO struct {
	UserID     string `json:"user_id" validate:"required,uuid"`
	Permission string `json:"permission" validate:"required,oneof=MANAGER CONTRIBUTOR VIEW"`
}

func (dto *CreateProjectDTO) Ok() (map[string]string, bool)    { return validateStruct(dto) }
func (dto *UpdateProjectDTO) Ok() (map[string]string, bool)    { return validateStruct(dto) }
func (dto *SetProjectMemberDTO) Ok() (map[string]string, bool) { return validateStruct(dto) }
