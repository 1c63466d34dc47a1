package entitlement_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvine/taskvine/pkg/entitlement"
)

func TestMemoryCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := entitlement.NewMemoryCache(16, time.Minute)
	workspaceID := uuid.New()

	_, ok := cache.Get(ctx, workspaceID, "limit:MAX_PROJECTS")
	assert.False(t, ok)

	cache.Set(ctx, workspaceID, "limit:MAX_PROJECTS", "5")
	value, ok := cache.Get(ctx, workspaceID, "limit:MAX_PROJECTS")
	require.True(t, ok)
	assert.Equal(t, "5", value)
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	cache := entitlement.NewMemoryCache(16, 10*time.Millisecond)
	workspaceID := uuid.New()

	cache.Set(ctx, workspaceID, "feature:AUDIT_LOG", "1")
	time.Sleep(30 * time.Millisecond)

	_, ok := cache.Get(ctx, workspaceID, "feature:AUDIT_LOG")
	assert.False(t, ok)
}

func TestMemoryCache_InvalidateOnlyTargetWorkspace(t *testing.T) {
	ctx := context.Background()
	cache := entitlement.NewMemoryCache(16, time.Minute)
	wsA, wsB := uuid.New(), uuid.New()

	cache.Set(ctx, wsA, "limit:MAX_PROJECTS", "1")
	cache.Set(ctx, wsA, "feature:AUDIT_LOG", "1")
	cache.Set(ctx, wsB, "limit:MAX_PROJECTS", "2")

	cache.Invalidate(ctx, wsA)

	_, ok := cache.Get(ctx, wsA, "limit:MAX_PROJECTS")
	assert.False(t, ok)
	_, ok = cache.Get(ctx, wsA, "feature:AUDIT_LOG")
	assert.False(t, ok)

	value, ok := cache.Get(ctx, wsB, "limit:MAX_PROJECTS")
	require.True(t, ok)
	assert.Equal(t, "2", value)
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	cache := entitlement.NewMemoryCache(64, time.Minute)
	workspaceID := uuid.New()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			cache.Set(ctx, workspaceID, "limit:MAX_PROJECTS", "1")
			cache.Get(ctx, workspaceID, "limit:MAX_PROJECTS")
		}
	}()
	for i := 0; i < 500; i++ {
		cache.Invalidate(ctx, workspaceID)
	}
	<-done
}
