package commands

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/taskvine/taskvine/modules/core/infrastructure/persistence/schema"
	"github.com/taskvine/taskvine/pkg/configuration"
)

func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Migrate(cmd.Context())
		},
	}
}

// Migrate applies the embedded DDL. Every statement is idempotent
// (CREATE TABLE IF NOT EXISTS) so re-running is safe.
func Migrate(ctx context.Context) error {
	conf := configuration.Use()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		return errors.Wrap(err, "failed to connect to database")
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema.DDL); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}
	conf.Logger().Info("schema applied")
	return nil
}
