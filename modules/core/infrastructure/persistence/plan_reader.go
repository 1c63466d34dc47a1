package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/taskvine/taskvine/pkg/composables"
	"github.com/taskvine/taskvine/pkg/entitlement"
)

const (
	workspacePlanQuery = `SELECT plan_id FROM workspaces WHERE id = $1 AND plan_id IS NOT NULL`

	featureRowQuery = `
		SELECT enabled FROM plan_features
		WHERE plan_id = $1 AND feature = $2`

	limitRowQuery = `
		SELECT value FROM plan_limits
		WHERE plan_id = $1 AND limit_type = $2`
)

// PgPlanReader feeds the entitlement store. Missing rows surface as
// (zero, false, nil) so the store can fail closed without treating data
// gaps as outages.
type PgPlanReader struct{}

func NewPlanReader() entitlement.PlanReader {
	return &PgPlanReader{}
}

func (r *PgPlanReader) PlanIDByWorkspace(ctx context.Context, workspaceID uuid.UUID) (uuid.UUID, bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return uuid.Nil, false, err
	}
	var raw string
	if err := tx.QueryRow(ctx, workspacePlanQuery, workspaceID.String()).Scan(&raw); err != nil {
		if isNoRows(err) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, errors.Wrap(err, "failed to resolve workspace plan")
	}
	planID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false, errors.Wrap(err, "invalid workspace plan id")
	}
	return planID, true, nil
}

func (r *PgPlanReader) FeatureEnabled(ctx context.Context, planID uuid.UUID, feature entitlement.Feature) (bool, bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, false, err
	}
	var enabled bool
	if err := tx.QueryRow(ctx, featureRowQuery, planID.String(), string(feature)).Scan(&enabled); err != nil {
		if isNoRows(err) {
			return false, false, nil
		}
		return false, false, errors.Wrap(err, "failed to look up plan feature")
	}
	return enabled, true, nil
}

func (r *PgPlanReader) LimitValue(ctx context.Context, planID uuid.UUID, limitType entitlement.LimitType) (int, bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, false, err
	}
	var value int
	if err := tx.QueryRow(ctx, limitRowQuery, planID.String(), string(limitType)).Scan(&value); err != nil {
		if isNoRows(err) {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, "failed to look up plan limit")
	}
	return value, true, nil
}
