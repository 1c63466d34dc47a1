package feature_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvine/taskvine/pkg/feature"
)

func TestContext_Attributes(t *testing.T) {
	fctx := feature.NewContext(uuid.New(), uuid.New())

	_, ok := fctx.Get("auditPublished")
	assert.False(t, ok)

	fctx.Set("auditPublished", "true")
	value, ok := fctx.GetString("auditPublished")
	require.True(t, ok)
	assert.Equal(t, "true", value)
}

func TestContext_FailureFlag(t *testing.T) {
	fctx := feature.NewContext(uuid.New(), uuid.New())
	assert.False(t, fctx.Failed())
	fctx.MarkFailed()
	assert.True(t, fctx.Failed())
}

func TestContext_InitialState(t *testing.T) {
	fctx := feature.NewContext(uuid.New(), uuid.New())
	assert.Equal(t, feature.StateStarted, fctx.State())
}
