package main

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/pkordes/map-collection/migrations"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database migrations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withProvider(func(p *goose.Provider) error {
					results, err := p.Up(cmd.Context())
					for _, r := range results {
						fmt.Fprintf(cmd.OutOrStdout(), "applied %s (%s)\n", r.Source.Path, r.Duration)
					}
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withProvider(func(p *goose.Provider) error {
					r, err := p.Down(cmd.Context())
					if r != nil {
						fmt.Fprintf(cmd.OutOrStdout(), "rolled back %s\n", r.Source.Path)
					}
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the state of every migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withProvider(func(p *goose.Provider) error {
					statuses, err := p.Status(cmd.Context())
					if err != nil {
						return err
					}
					for _, s := range statuses {
						fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", s.State, s.Source.Path)
					}
					return nil
				})
			},
		},
	)
	return cmd
}

// withProvider opens the database and runs fn with a goose provider over the
// embedded migrations.
func withProvider(fn func(*goose.Provider) error) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migrate: open: %w", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("migrate: provider: %w", err)
	}
	return fn(provider)
}
