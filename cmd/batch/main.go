// Command batch runs attendance and leave batch jobs from a shell or an external scheduler.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cmlabs-hris/hris-attendance-go/internal/app"
	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/batch"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/migrations"
	"github.com/spf13/cobra"
)

const triggeredBy = "cli"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "batch",
		Short:         "Run HRIS attendance and leave batch jobs",
		SilenceUsage:  true,
	}

	for _, job := range batch.AllJobs() {
		root.AddCommand(newJobCmd(job))
	}
	root.AddCommand(newTickCmd(), newRunsCmd(), newMigrateCmd())
	return root
}

// withApp loads configuration, builds the services and closes them after fn.
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	a, err := app.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func newJobCmd(job batch.Job) *cobra.Command {
	var req batch.TriggerRequest
	cmd := &cobra.Command{
		Use:   string(job),
		Short: "Run the " + string(job) + " job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := req.Validate(job); err != nil {
				return err
			}
			return withApp(cmd.Context(), func(a *app.App) error {
				resp, err := a.Batch.Run(cmd.Context(), job, req, triggeredBy)
				if err != nil {
					return err
				}
				return printJSON(cmd, resp)
			})
		},
	}
	cmd.Flags().StringVar(&req.Period, "period", "", "period key ("+batch.PeriodLayout(job)+"); defaults to the job's latest due period")
	cmd.Flags().BoolVar(&req.DryRun, "dry-run", false, "compute outcomes and roll back (month-end and year-end only)")
	cmd.Flags().BoolVar(&req.Force, "force", false, "skip the hour gate of daily jobs")
	return cmd
}

func newTickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Run every job that is due at the current hour",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				jobs := cron.NewBatchJobs(a.Batch, a.Config.Policy, a.Config.Location())
				return jobs.Tick(cmd.Context())
			})
		},
	}
}

func newRunsCmd() *cobra.Command {
	var (
		jobName string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent batch runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var job *batch.Job
			if jobName != "" {
				j, err := batch.ParseJob(jobName)
				if err != nil {
					return err
				}
				job = &j
			}
			return withApp(cmd.Context(), func(a *app.App) error {
				runs, err := a.Batch.ListRuns(cmd.Context(), job, limit)
				if err != nil {
					return err
				}
				return printJSON(cmd, runs)
			})
		},
	}
	cmd.Flags().StringVar(&jobName, "job", "", "filter by job name")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("error loading config: %w", err)
			}
			db, err := database.NewPostgreSQLDB(cmd.Context(), cfg.DatabaseURL(), database.PoolSize{MaxConns: 2})
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()
			if err := migrations.Up(cmd.Context(), db.Pool); err != nil {
				return err
			}
			slog.Info("Migrations are up to date")
			return nil
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
