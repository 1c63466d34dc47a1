package dtos

type CreateTaskDTO struct {
	Title       string `json:"title" validate:"required,max=500"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	AssigneeID  string `json:"assignee_id" validate:"omitempty,uuid"`
	DueAt       string `json:"due_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type UpdateTaskDTO struct {
	Title       string `json:"title" validate:"required,max=500"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	AssigneeID  string `json:"assignee_id" validate:"omitempty,uuid"`
	DueAt       string `json:"due_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type ChangeTaskStatusDTO struct {
	Status string `json:"status" validate:"required,oneof=OPEN IN_PROGRESS DONE ARCHIVED"`
}

func (dto *CreateTaskDTO) Ok() (map[string]string, bool)       { return validateStruct(dto) }
func (dto *UpdateTaskDTO) Ok() (map[string]string, bool)       { return validateStruct(dto) }
func (dto *ChangeTaskStatusDTO) Ok() (map[string]string, bool) { return validateStruct(dto) }
