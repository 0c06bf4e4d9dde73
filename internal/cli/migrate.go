package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Chative-core-poc-v1/intake/internal/intake/complaints"
)

// MigrateCommand creates the migrate command
func MigrateCommand(cfg AppConfig) *cobra.Command {
	var dbURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the complaints table",
		Long: `Create the complaints table and its indexes in PostgreSQL.

The statement is idempotent and safe to run on every deploy.

Examples:
  intake migrate
  intake migrate --db "postgres://intake@localhost:5432/intake?sslmode=disable"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbURL != "" {
				cfg.Postgres.URL = dbURL
			}
			return runMigrate(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&dbURL, "db", "", "Database connection string (overrides DATABASE_URL)")
	return cmd
}

func runMigrate(ctx context.Context, cfg AppConfig, out io.Writer) error {
	db, err := cfg.Postgres.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	fmt.Fprintln(out, "🔄 Migrating complaints schema...")
	if err := complaints.NewPostgresRepository(db).Migrate(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "✅ Complaints schema is up to date")
	return nil
}
