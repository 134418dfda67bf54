package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-data/internal/database"
	"github.com/jwalitptl/clinic-data/internal/dto"
	"github.com/jwalitptl/clinic-data/internal/model"
	"github.com/jwalitptl/clinic-data/internal/repository/postgres"
	"github.com/jwalitptl/clinic-data/internal/worker"
)

func newAuditCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect and prune the audit trail",
	}
	cmd.AddCommand(newAuditListCommand(a), newAuditPurgeCommand(a))
	return cmd
}

func newAuditListCommand(a *app) *cobra.Command {
	var (
		filters model.AuditFilters
		page    model.Pagination
		since   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print audit entries as JSON, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if since > 0 {
				filters.From = time.Now().UTC().Add(-since)
			}
			return a.run(cmd, func(ctx context.Context, db *database.DB) error {
				repos := postgres.NewRepositories(db.NewSession(), a.cfg)
				logs, err := repos.Audit.List(ctx, &filters, page)
				if err != nil {
					return err
				}

				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(dto.PageToDTO(logs, dto.AuditLogToDTO))
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&filters.EntityType, "entity-type", "", "table name, e.g. persons")
	flags.StringVar(&filters.Action, "action", "", "create, update, soft_delete or delete")
	flags.DurationVar(&since, "since", 0, "only entries newer than this")
	flags.IntVar(&page.Page, "page", 1, "page number")
	flags.IntVar(&page.PageSize, "page-size", model.DefaultPageSize, "entries per page")
	return cmd
}

func newAuditPurgeCommand(a *app) *cobra.Command {
	var (
		olderThan time.Duration
		every     bool
	)

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete audit entries older than the retention window",
		Long: "purge deletes audit entries older than --older-than (default audit.retention). " +
			"With --every it keeps running and purges every audit.cleanup_interval until interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			retention := a.cfg.Audit.Retention
			if cmd.Flags().Changed("older-than") {
				retention = olderThan
			}
			if retention <= 0 {
				return errors.New("--older-than must be positive")
			}

			return a.run(cmd, func(ctx context.Context, db *database.DB) error {
				repos := postgres.NewRepositories(db.NewSession(), a.cfg)
				w := worker.NewAuditCleanupWorker(repos.Audit, retention, a.cfg.Audit.CleanupInterval, a.log)
				if every {
					return w.Start(ctx)
				}

				n, err := w.RunOnce(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d audit entries older than %s\n", n, retention)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.DurationVar(&olderThan, "older-than", 0, "minimum age of the entries to delete")
	flags.BoolVar(&every, "every", false, "keep purging every audit.cleanup_interval")
	return cmd
}
