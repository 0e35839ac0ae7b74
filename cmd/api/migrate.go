package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/staffing-service/internal/config"
	"github.com/spec-kit/staffing-service/internal/observability"
	"github.com/spec-kit/staffing-service/internal/persistence"
)

// NewMigrateCmd creates the migrate command and its up/down/version subcommands.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: withMigrator(func(cmd *cobra.Command, m *persistence.Migrator) error {
			if err := m.Up(); err != nil {
				return err
			}
			cmd.Println("Migrations completed successfully")
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration",
		RunE: withMigrator(func(cmd *cobra.Command, m *persistence.Migrator) error {
			if err := m.Down(); err != nil {
				return err
			}
			cmd.Println("Migrations rolled back")
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		RunE: withMigrator(func(cmd *cobra.Command, m *persistence.Migrator) error {
			v, dirty, err := m.Version()
			if err != nil {
				return err
			}
			cmd.Printf("version %d (dirty: %t)\n", v, dirty)
			return nil
		}),
	})
	return cmd
}

func withMigrator(fn func(*cobra.Command, *persistence.Migrator) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return oops.Code("CONFIG_INVALID").Wrap(err)
		}
		if cfg.Postgres.DSN == "" {
			return oops.Code("CONFIG_INVALID").Errorf("POSTGRES_DSN is required")
		}
		logger, err := observability.NewLogger(cfg.Logger)
		if err != nil {
			return oops.Code("LOGGER_INIT_FAILED").Wrap(err)
		}
		defer logger.Sync() //nolint:errcheck

		m, err := persistence.NewMigrator(cfg.Postgres.DSN, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := m.Close(); err != nil {
				logger.Warn("closing migrator", zap.Error(err))
			}
		}()
		return fn(cmd, m)
	}
}
