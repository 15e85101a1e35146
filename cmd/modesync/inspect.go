package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/flemzord/modesync/internal/syncer"
	"github.com/flemzord/modesync/pkg/app"
	"github.com/spf13/cobra"
)

func listCmd(g *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered modes grouped by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.withEnv(cmd, true, func(env *app.Env) error {
				return runListModes(cmd, env, asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func validateCmd(g *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Strictly validate every mode file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.withEnv(cmd, true, func(env *app.Env) error {
				report, err := env.Service.Validate(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if asJSON {
					if err := printJSON(out, report); err != nil {
						return err
					}
				} else {
					for _, f := range report.Files {
						if f.Valid {
							fmt.Fprintf(out, "ok    %s\n", f.Slug)
							continue
						}
						fmt.Fprintf(out, "FAIL  %s (%s)\n", f.Slug, f.Path)
						for _, msg := range f.Errors {
							fmt.Fprintf(out, "        %s\n", msg)
						}
					}
					fmt.Fprintf(out, "\n%d files, %d valid, %d invalid\n", report.Total, report.Valid, report.Invalid)
				}

				if !report.OK() {
					return fmt.Errorf("%d invalid mode files", report.Invalid)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func statusCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the effective configuration, target and last sync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.withEnv(cmd, false, func(env *app.Env) error {
				ctx := cmd.Context()
				cfg := env.Service.Config()

				st, err := env.Service.Status(ctx)
				if err != nil {
					return err
				}

				configPath := env.ConfigPath
				if configPath == "" {
					configPath = "(none, using defaults)"
				}
				target := "(invalid)"
				if req, err := env.Service.Request(syncer.SyncOptions{}); err == nil {
					target = req.Target.Path
				} else {
					env.Logger.Warn("resolving target", "error", err)
				}

				out := cmd.OutOrStdout()
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintf(tw, "Config:\t%s\n", configPath)
				fmt.Fprintf(tw, "Modes directory:\t%s\n", st.ModesDir)
				fmt.Fprintf(tw, "Modes:\t%d\n", st.ModeCount)
				fmt.Fprintf(tw, "Strategy:\t%s\n", cfg.Strategy)
				fmt.Fprintf(tw, "Target:\t%s\n", target)

				runs, err := env.Service.History(ctx, 1)
				switch {
				case errors.Is(err, syncer.ErrHistoryDisabled):
				case err != nil:
					return err
				case len(runs) == 0:
					fmt.Fprintf(tw, "Last sync:\tnever\n")
				default:
					last := runs[0]
					outcome := "ok"
					if !last.Succeeded() {
						outcome = "failed: " + last.Error
					}
					fmt.Fprintf(tw, "Last sync:\t%s (%s, %d modes, %s)\n",
						last.StartedAt.Local().Format(time.DateTime), last.Strategy, len(last.Modes), outcome)
				}
				return tw.Flush()
			})
		},
	}
}

func historyCmd(g *globalFlags) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent sync runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}
			return g.withEnv(cmd, false, func(env *app.Env) error {
				runs, err := env.Service.History(cmd.Context(), limit)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if asJSON {
					return printJSON(out, runs)
				}
				if len(runs) == 0 {
					fmt.Fprintln(out, "No sync runs recorded.")
					return nil
				}

				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tSTARTED\tSTRATEGY\tMODES\tDRY RUN\tRESULT\tTARGET")
				for _, r := range runs {
					result := "ok"
					if !r.Succeeded() {
						result = "error: " + r.Error
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%t\t%s\t%s\n",
						r.ID, r.StartedAt.Local().Format(time.DateTime), r.Strategy, len(r.Modes), r.DryRun, result, r.Target)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the runs as JSON")
	return cmd
}
