package cli

import (
	"context"
	"fmt"
	"log"

	"live-quiz-service/internal/config"
	"live-quiz-service/internal/infra/bundb"
	"live-quiz-service/internal/infra/bundb/migrations"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

func runMigrations(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	db, err := openSQL(cfg)
	if err != nil {
		return err
	}
	if db == nil {
		return fmt.Errorf("no SQL store configured: set postgres.url or sqlite.path")
	}
	defer db.Close()
	return migrate(ctx, db)
}

// openSQL returns nil when the config selects the in-memory store.
func openSQL(cfg config.Config) (*bun.DB, error) {
	switch {
	case cfg.Postgres.URL != "":
		return bundb.OpenPostgres(cfg.Postgres.URL), nil
	case cfg.SQLite.Path != "":
		return bundb.OpenSQLite(cfg.SQLite.Path)
	default:
		return nil, nil
	}
}

func migrate(ctx context.Context, db *bun.DB) error {
	group, err := migrations.Apply(ctx, db)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if group.IsZero() {
		log.Printf("no new migrations to apply")
		return nil
	}
	log.Printf("migrations applied: %s", group)
	return nil
}
