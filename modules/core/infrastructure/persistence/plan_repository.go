package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/taskvine/taskvine/modules/core/domain/entities/plan"
	"github.com/taskvine/taskvine/modules/core/infrastructure/persistence/models"
	"github.com/taskvine/taskvine/pkg/composables"
)

var ErrPlanNotFound = fmt.Errorf("plan not found")

const (
	planFindQuery = `SELECT id, key, name, created_at, updated_at FROM plans`

	planInsertQuery = `
		INSERT INTO plans (id, key, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	planUpdateQuery = `
		UPDATE plans
		SET key = $1, name = $2, updated_at = $3
		WHERE id = $4`

	planDeleteQuery = `DELETE FROM plans WHERE id = $1`

	planFeaturesQuery = `SELECT plan_id, feature, enabled FROM plan_features WHERE plan_id = $1`
	planLimitsQuery   = `SELECT plan_id, limit_type, value FROM plan_limits WHERE plan_id = $1`

	planFeatureUpsertQuery = `
		INSERT INTO plan_features (plan_id, feature, enabled)
		VALUES ($1, $2, $3)
		ON CONFLICT (plan_id, feature) DO UPDATE SET enabled = EXCLUDED.enabled`

	planLimitUpsertQuery = `
		INSERT INTO plan_limits (plan_id, limit_type, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (plan_id, limit_type) DO UPDATE SET value = EXCLUDED.value`

	planFeaturesDeleteQuery = `DELETE FROM plan_features WHERE plan_id = $1`
	planLimitsDeleteQuery   = `DELETE FROM plan_limits WHERE plan_id = $1`
)

type PlanRepository struct{}

func NewPlanRepository() plan.Repository {
	return &PlanRepository{}
}

func (r *PlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*plan.Plan, error) {
	return r.findOne(ctx, planFindQuery+" WHERE id = $1", id.String())
}

func (r *PlanRepository) GetByKey(ctx context.Context, key string) (*plan.Plan, error) {
	return r.findOne(ctx, planFindQuery+" WHERE key = $1", key)
}

func (r *PlanRepository) GetAll(ctx context.Context) ([]*plan.Plan, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, planFindQuery+" ORDER BY created_at")
	if err != nil {
		return nil, errors.Wrap(err, "failed to query plans")
	}
	defer rows.Close()

	planModels := make([]*models.Plan, 0)
	for rows.Next() {
		var m models.Plan
		if err := rows.Scan(&m.ID, &m.Key, &m.Name, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan plan")
		}
		planModels = append(planModels, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	plans := make([]*plan.Plan, 0, len(planModels))
	for _, m := range planModels {
		entity, err := r.hydrate(ctx, m)
		if err != nil {
			return nil, err
		}
		plans = append(plans, entity)
	}
	return plans, nil
}

func (r *PlanRepository) Create(ctx context.Context, data *plan.Plan) (*plan.Plan, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	_, err = tx.Exec(
		ctx,
		planInsertQuery,
		data.ID().String(),
		data.Key(),
		data.Name(),
		data.CreatedAt(),
		data.UpdatedAt(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert plan")
	}
	if err := r.saveRows(ctx, data); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, data.ID())
}

func (r *PlanRepository) Update(ctx context.Context, data *plan.Plan) (*plan.Plan, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, planUpdateQuery, data.Key(), data.Name(), data.UpdatedAt(), data.ID().String()); err != nil {
		return nil, errors.Wrap(err, "failed to update plan")
	}
	// Replace the full row set so removed switches do not linger as stale
	// explicit grants.
	if _, err := tx.Exec(ctx, planFeaturesDeleteQuery, data.ID().String()); err != nil {
		return nil, errors.Wrap(err, "failed to clear plan features")
	}
	if _, err := tx.Exec(ctx, planLimitsDeleteQuery, data.ID().String()); err != nil {
		return nil, errors.Wrap(err, "failed to clear plan limits")
	}
	if err := r.saveRows(ctx, data); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, data.ID())
}

func (r *PlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, planDeleteQuery, id.String()); err != nil {
		return errors.Wrap(err, "failed to delete plan")
	}
	return nil
}

func (r *PlanRepository) findOne(ctx context.Context, query string, args ...interface{}) (*plan.Plan, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var m models.Plan
	if err := tx.QueryRow(ctx, query, args...).Scan(&m.ID, &m.Key, &m.Name, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if isNoRows(err) {
			return nil, ErrPlanNotFound
		}
		return nil, errors.Wrap(err, "failed to query plan")
	}
	return r.hydrate(ctx, &m)
}

func (r *PlanRepository) hydrate(ctx context.Context, m *models.Plan) (*plan.Plan, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	featureRows, err := tx.Query(ctx, planFeaturesQuery, m.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query plan features")
	}
	defer featureRows.Close()

	features := make([]*models.PlanFeature, 0)
	for featureRows.Next() {
		var f models.PlanFeature
		if err := featureRows.Scan(&f.PlanID, &f.Feature, &f.Enabled); err != nil {
			return nil, errors.Wrap(err, "failed to scan plan feature")
		}
		features = append(features, &f)
	}
	if err := featureRows.Err(); err != nil {
		return nil, err
	}

	limitRows, err := tx.Query(ctx, planLimitsQuery, m.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query plan limits")
	}
	defer limitRows.Close()

	limits := make([]*models.PlanLimit, 0)
	for limitRows.Next() {
		var l models.PlanLimit
		if err := limitRows.Scan(&l.PlanID, &l.LimitType, &l.Value); err != nil {
			return nil, errors.Wrap(err, "failed to scan plan limit")
		}
		limits = append(limits, &l)
	}
	if err := limitRows.Err(); err != nil {
		return nil, err
	}

	return toDomainPlan(m, features, limits)
}

func (r *PlanRepository) saveRows(ctx context.Context, data *plan.Plan) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	for feature, enabled := range data.Features() {
		if _, err := tx.Exec(ctx, planFeatureUpsertQuery, data.ID().String(), string(feature), enabled); err != nil {
			return errors.Wrap(err, "failed to upsert plan feature")
		}
	}
	for limitType, value := range data.Limits() {
		if _, err := tx.Exec(ctx, planLimitUpsertQuery, data.ID().String(), string(limitType), value); err != nil {
			return errors.Wrap(err, "failed to upsert plan limit")
		}
	}
	return nil
}
