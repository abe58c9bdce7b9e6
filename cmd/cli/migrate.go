package cli

import (
	"bistro/internal/infra/db"
	"bistro/internal/infra/repository"
	"bistro/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}
	cmd.AddCommand(
		migrateStep("up", "Apply all pending migrations", repository.MigrateUp),
		migrateStep("down", "Revert all migrations", repository.MigrateDown),
	)
	return cmd
}

func migrateStep(use, short string, run func(*pgxpool.Pool) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			pool, cleanup, err := db.Connect(cfg.DB)
			if err != nil {
				return err
			}
			defer cleanup()
			return run(pool)
		},
	}
}
