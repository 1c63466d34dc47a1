package plan

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskvine/taskvine/pkg/entitlement"
)

// Plan is a billing tier: a named bundle of feature switches and numeric
// limits. Workspaces reference exactly one plan.
type Plan struct {
	id        uuid.UUID
	key       string
	name      string
	features  map[entitlement.Feature]bool
	limits    map[entitlement.LimitType]int
	createdAt time.Time
	updatedAt time.Time
}

type Option func(*Plan)

func WithID(id uuid.UUID) Option {
	return func(p *Plan) {
		p.id = id
	}
}

func WithFeature(feature entitlement.Feature, enabled bool) Option {
	return func(p *Plan) {
		p.features[feature] = enabled
	}
}

func WithLimit(limitType entitlement.LimitType, value int) Option {
	return func(p *Plan) {
		p.limits[limitType] = value
	}
}

func WithFeatures(features map[entitlement.Feature]bool) Option {
	return func(p *Plan) {
		for feature, enabled := range features {
			p.features[feature] = enabled
		}
	}
}

func WithLimits(limits map[entitlement.LimitType]int) Option {
	return func(p *Plan) {
		for limitType, value := range limits {
			p.limits[limitType] = value
		}
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(p *Plan) {
		p.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(p *Plan) {
		p.updatedAt = updatedAt
	}
}

func New(key, name string, opts ...Option) *Plan {
	p := &Plan{
		id:        uuid.New(),
		key:       key,
		name:      name,
		features:  map[entitlement.Feature]bool{},
		limits:    map[entitlement.LimitType]int{},
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Plan) ID() uuid.UUID {
	return p.id
}

func (p *Plan) Key() string {
	return p.key
}

func (p *Plan) Name() string {
	return p.name
}

// Feature reports the explicit switch for the feature. The second return
// distinguishes "explicitly off" from "no row", which readers fail closed.
func (p *Plan) Feature(feature entitlement.Feature) (bool, bool) {
	enabled, found := p.features[feature]
	return enabled, found
}

// Limit returns the explicit ceiling for the limit type. The second return
// distinguishes an explicit 0 or -1 from a missing row.
func (p *Plan) Limit(limitType entitlement.LimitType) (int, bool) {
	value, found := p.limits[limitType]
	return value, found
}

func (p *Plan) Features() map[entitlement.Feature]bool {
	out := make(map[entitlement.Feature]bool, len(p.features))
	for feature, enabled := range p.features {
		out[feature] = enabled
	}
	return out
}

func (p *Plan) Limits() map[entitlement.LimitType]int {
	out := make(map[entitlement.LimitType]int, len(p.limits))
	for limitType, value := range p.limits {
		out[limitType] = value
	}
	return out
}

func (p *Plan) CreatedAt() time.Time {
	return p.createdAt
}

func (p *Plan) UpdatedAt() time.Time {
	return p.updatedAt
}

func (p *Plan) SetFeature(feature entitlement.Feature, enabled bool) *Plan {
	clone := p.clone()
	clone.features[feature] = enabled
	clone.updatedAt = time.Now()
	return clone
}

func (p *Plan) SetLimit(limitType entitlement.LimitType, value int) *Plan {
	clone := p.clone()
	clone.limits[limitType] = value
	clone.updatedAt = time.Now()
	return clone
}

func (p *Plan) clone() *Plan {
	out := *p
	out.features = make(map[entitlement.Feature]bool, len(p.features))
	for feature, enabled := range p.features {
		out.features[feature] = enabled
	}
	out.limits = make(map[entitlement.LimitType]int, len(p.limits))
	for limitType, value := range p.limits {
		out.limits[limitType] = value
	}
	return &out
}
