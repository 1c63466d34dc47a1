package entitlement

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PlanReader resolves plan configuration rows. The second bool of the row
// lookups reports row existence; a missing row is a fail-closed result, not
// an error.
type PlanReader interface {
	PlanIDByWorkspace(ctx context.Context, workspaceID uuid.UUID) (uuid.UUID, bool, error)
	FeatureEnabled(ctx context.Context, planID uuid.UUID, feature Feature) (enabled, found bool, err error)
	LimitValue(ctx context.Context, planID uuid.UUID, limitType LimitType) (value int, found bool, err error)
}

// Store answers per-workspace entitlement questions with a bounded-TTL
// cache in front of the plan configuration.
//
// Both lookups fail closed: a workspace without a plan, a plan without the
// row, or a lookup error all resolve to disabled / zero. Only an explicit
// row may grant a feature or raise a limit, and only an explicit -1 row
// means unlimited.
type Store interface {
	IsEnabled(ctx context.Context, workspaceID uuid.UUID, feature Feature) bool
	GetLimit(ctx context.Context, workspaceID uuid.UUID, limitType LimitType) int
	InvalidateCache(ctx context.Context, workspaceID uuid.UUID)
}

type planStore struct {
	plans PlanReader
	cache Cache
	log   *logrus.Entry
	m     *metrics
}

func NewStore(plans PlanReader, cache Cache, log *logrus.Entry) Store {
	return &planStore{
		plans: plans,
		cache: cache,
		log:   log,
		m:     getMetrics(),
	}
}

const (
	featureKeyPrefix = "feature:"
	limitKeyPrefix   = "limit:"
)

func (s *planStore) IsEnabled(ctx context.Context, workspaceID uuid.UUID, feature Feature) bool {
	key := featureKeyPrefix + string(feature)
	if cached, ok := s.cache.Get(ctx, workspaceID, key); ok {
		s.m.cacheHits.WithLabelValues("feature").Inc()
		return cached == "1"
	}
	s.m.cacheMisses.WithLabelValues("feature").Inc()

	enabled := s.resolveFeature(ctx, workspaceID, feature)
	value := "0"
	if enabled {
		value = "1"
	}
	s.cache.Set(ctx, workspaceID, key, value)
	return enabled
}

func (s *planStore) resolveFeature(ctx context.Context, workspaceID uuid.UUID, feature Feature) bool {
	planID, found, err := s.plans.PlanIDByWorkspace(ctx, workspaceID)
	if err != nil {
		s.failClosed("feature", "lookup_error", workspaceID, err)
		return false
	}
	if !found {
		s.failClosed("feature", "no_plan", workspaceID, nil)
		return false
	}

	enabled, found, err := s.plans.FeatureEnabled(ctx, planID, feature)
	if err != nil {
		s.failClosed("feature", "lookup_error", workspaceID, err)
		return false
	}
	if !found {
		s.m.failClosed.WithLabelValues("feature", "no_row").Inc()
		return false
	}
	return enabled
}

func (s *planStore) GetLimit(ctx context.Context, workspaceID uuid.UUID, limitType LimitType) int {
	key := limitKeyPrefix + string(limitType)
	if cached, ok := s.cache.Get(ctx, workspaceID, key); ok {
		if value, err := strconv.Atoi(cached); err == nil {
			s.m.cacheHits.WithLabelValues("limit").Inc()
			return value
		}
	}
	s.m.cacheMisses.WithLabelValues("limit").Inc()

	value := s.resolveLimit(ctx, workspaceID, limitType)
	s.cache.Set(ctx, workspaceID, key, strconv.Itoa(value))
	return value
}

func (s *planStore) resolveLimit(ctx context.Context, workspaceID uuid.UUID, limitType LimitType) int {
	planID, found, err := s.plans.PlanIDByWorkspace(ctx, workspaceID)
	if err != nil {
		s.failClosed("limit", "lookup_error", workspaceID, err)
		return 0
	}
	if !found {
		s.failClosed("limit", "no_plan", workspaceID, nil)
		return 0
	}

	value, found, err := s.plans.LimitValue(ctx, planID, limitType)
	if err != nil {
		s.failClosed("limit", "lookup_error", workspaceID, err)
		return 0
	}
	if !found {
		s.m.failClosed.WithLabelValues("limit", "no_row").Inc()
		return 0
	}
	return value
}

func (s *planStore) InvalidateCache(ctx context.Context, workspaceID uuid.UUID) {
	s.cache.Invalidate(ctx, workspaceID)
	s.m.invalidates.Inc()
}

// failClosed records a lookup resolved by the restrictive default. A missing
// plan is a data-integrity gap worth a warning, not a user error.
func (s *planStore) failClosed(kind, reason string, workspaceID uuid.UUID, err error) {
	s.m.failClosed.WithLabelValues(kind, reason).Inc()
	if s.log == nil {
		return
	}
	entry := s.log.WithFields(logrus.Fields{
		"workspace_id": workspaceID.String(),
		"kind":         kind,
		"reason":       reason,
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn("entitlement: lookup failed closed")
}
