package dtos

type CreatePlanDTO struct {
	Key      string          `json:"key" validate:"required,max=100"`
	Name     string          `json:"name" validate:"required,max=200"`
	Features map[string]bool `json:"features" validate:"omitempty,dive,keys,required,endkeys"`
	Limits   map[string]int  `json:"limits" validate:"omitempty,dive,gte=-1"`
}

type UpdatePlanDTO struct {
	Name     string          `json:"name" validate:"required,max=200"`
	Features map[string]bool `json:"features" validate:"omitempty,dive,keys,required,endkeys"`
	Limits   map[string]int  `json:"limits" validate:"omitempty,dive,gte=-1"`
}

func (dto *CreatePlanDTO) Ok() (map[string]string, bool) { return validateStruct(dto) }
func (dto *UpdatePlanDTO) Ok() (map[string]string, bool) { return validateStruct(dto) }
