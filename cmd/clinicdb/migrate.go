package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-data/internal/database"
)

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every table, foreign key and index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, db *database.DB) error {
				if err := db.Migrate(ctx); err != nil {
					return err
				}
				return db.Ping(ctx)
			})
		},
	}
}
