package commands

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/taskvine/taskvine/modules/core/domain/entities/plan"
	"github.com/taskvine/taskvine/modules/core/infrastructure/persistence"
	"github.com/taskvine/taskvine/pkg/composables"
	"github.com/taskvine/taskvine/pkg/configuration"
	"github.com/taskvine/taskvine/pkg/entitlement"
)

func NewSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the default plan catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return SeedPlans(cmd.Context())
		},
	}
}

// SeedPlans inserts the built-in free, pro and enterprise plans. Plans that
// already exist are left untouched.
func SeedPlans(ctx context.Context) error {
	conf := configuration.Use()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		return errors.Wrap(err, "failed to connect to database")
	}
	defer pool.Close()
	ctx = composables.WithPool(ctx, pool)

	plans := persistence.NewPlanRepository()
	for _, p := range defaultPlans() {
		if _, err := plans.GetByKey(ctx, p.Key()); err == nil {
			continue
		} else if !errors.Is(err, persistence.ErrPlanNotFound) {
			return err
		}
		if _, err := plans.Create(ctx, p); err != nil {
			return errors.Wrapf(err, "failed to seed plan %q", p.Key())
		}
		conf.Logger().Infof("seeded plan %s", p.Key())
	}
	return nil
}

func defaultPlans() []*plan.Plan {
	return []*plan.Plan{
		plan.New("free", "Free",
			plan.WithLimit(entitlement.LimitMaxProjects, 3),
			plan.WithLimit(entitlement.LimitMaxMembers, 5),
			plan.WithLimit(entitlement.LimitMaxTasksPerProject, 100),
			plan.WithLimit(entitlement.LimitMaxStorageMB, 512),
		),
		plan.New("pro", "Pro",
			plan.WithFeature(entitlement.FeatureAuditLog, true),
			plan.WithFeature(entitlement.FeatureProjectLimits, true),
			plan.WithLimit(entitlement.LimitMaxProjects, 50),
			plan.WithLimit(entitlement.LimitMaxMembers, 50),
			plan.WithLimit(entitlement.LimitMaxTasksPerProject, 5000),
			plan.WithLimit(entitlement.LimitMaxStorageMB, 10240),
		),
		plan.New("enterprise", "Enterprise",
			plan.WithFeature(entitlement.FeatureAuditLog, true),
			plan.WithFeature(entitlement.FeatureProjectLimits, true),
			plan.WithFeature(entitlement.FeatureMemberLimits, true),
			plan.WithLimit(entitlement.LimitMaxProjects, entitlement.Unlimited),
			plan.WithLimit(entitlement.LimitMaxMembers, entitlement.Unlimited),
			plan.WithLimit(entitlement.LimitMaxTasksPerProject, entitlement.Unlimited),
			plan.WithLimit(entitlement.LimitMaxStorageMB, entitlement.Unlimited),
		),
	}
}
