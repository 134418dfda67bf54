package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-data/internal/database"
	"github.com/jwalitptl/clinic-data/internal/seed"
)

func newSeedCommand(a *app) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the system roles, permissions, modules and forms",
		Long:  "seed creates whatever part of the system catalog is missing. Running it twice is harmless.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, db *database.DB) error {
				if migrate {
					if err := db.Migrate(ctx); err != nil {
						return err
					}
				}

				res, err := seed.NewSeeder(db.NewSession(), a.log).Run(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(),
					"created %d roles, %d permissions, %d modules, %d forms, %d module links, %d grants\n",
					res.Roles, res.Permissions, res.Modules, res.Forms, res.Links, res.Grants)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "run migrate before seeding")
	return cmd
}
