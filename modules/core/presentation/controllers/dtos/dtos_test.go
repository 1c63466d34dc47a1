package dtos_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/taskvine/taskvine/modules/core/presentation/controllers/dtos"
)

func TestCreateWorkspaceDTO_Validation(t *testing.T) {
	fields, ok := (&dtos.CreateWorkspaceDTO{Name: "Acme"}).Ok()
	assert.True(t, ok)
	assert.Empty(t, fields)

	fields, ok = (&dtos.CreateWorkspaceDTO{}).Ok()
	assert.False(t, ok)
	assert.Contains(t, fields, "Name")
}

func TestInviteMemberDTO_RejectsOwnerRole(t *testing.T) {
	dto := &dtos.InviteMemberDTO{UserID: uuid.NewString(), Role: "OWNER"}
	fields, ok := dto.Ok()
	assert.False(t, ok)
	assert.Contains(t, fields, "Role")
}

func TestInviteMemberDTO_Valid(t *testing.T) {
	dto := &dtos.InviteMemberDTO{UserID: uuid.NewString(), Role: "MEMBER"}
	_, ok := dto.Ok()
	assert.True(t, ok)
}

func TestSetProjectMemberDTO_Validation(t *testing.T) {
	dto := &dtos.SetProjectMemberDTO{UserID: "nope", Permission: "MANAGER"}
	fields, ok := dto.Ok()
	assert.False(t, ok)
	assert.Contains(t, fields, "UserID")

	dto = &dtos.SetProjectMemberDTO{UserID: uuid.NewString(), Permission: "SUPERVISOR"}
	fields, ok = dto.Ok()
	assert.False(t, ok)
	assert.Contains(t, fields, "Permission")
}

func TestChangeTaskStatusDTO_Validation(t *testing.T) {
	_, ok := (&dtos.ChangeTaskStatusDTO{Status: "IN_PROGRESS"}).Ok()
	assert.True(t, ok)

	fields, ok := (&dtos.ChangeTaskStatusDTO{Status: "PAUSED"}).Ok()
	assert.False(t, ok)
	assert.Contains(t, fields, "Status")
}

func TestCreatePlanDTO_LimitBounds(t *testing.T) {
	dto := &dtos.CreatePlanDTO{
		Key:    "pro",
		Name:   "Pro",
		Limits: map[string]int{"MAX_PROJECTS": -2},
	}
	fields, ok := dto.Ok()
	assert.False(t, ok)
	assert.NotEmpty(t, fields)

	dto.Limits["MAX_PROJECTS"] = -1
	_, ok = dto.Ok()
	assert.True(t, ok)
}
