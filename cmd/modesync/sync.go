package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flemzord/modesync/internal/config"
	"github.com/flemzord/modesync/internal/ordering"
	"github.com/flemzord/modesync/internal/syncer"
	"github.com/flemzord/modesync/pkg/app"
	"github.com/spf13/cobra"
)

type syncFlags struct {
	order        string
	categories   string
	withinSort   string
	customOrder  string
	priority     string
	exclude      string
	globalConfig string
	local        string
	dryRun       bool
	listModes    bool
	validateOnly bool
	json         bool
}

// overrides turns the ordering flags into config overrides.
func (f *syncFlags) overrides() config.Overrides {
	return config.Overrides{
		Strategy:           ordering.Strategy(f.order),
		CategoryOrder:      config.ParseCategories(f.categories),
		WithinCategorySort: ordering.SortMode(f.withinSort),
		CustomOrder:        config.ParseList(f.customOrder),
		PriorityModes:      config.ParseList(f.priority),
		ExcludeModes:       config.ParseList(f.exclude),
	}.Normalized()
}

func syncCmd(g *globalFlags) *cobra.Command {
	f := &syncFlags{}
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Order the discovered modes and write them to the target configuration",
		Long: `Discover modes, order them with the selected strategy and write them to the
global custom modes file, or to <DIR>/.roomodes/modes.yaml with --local.

Command-line ordering flags override the configuration file field by field.
--priority entries come before the file's priority modes and --exclude adds
to the file's exclusions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.globalConfig != "" && f.local != "" {
				return errors.New("--global-config and --local are mutually exclusive")
			}
			return g.withEnv(cmd, f.listModes || f.validateOnly, func(env *app.Env) error {
				switch {
				case f.listModes:
					return runListModes(cmd, env, f.json)
				case f.validateOnly:
					return runValidateOnly(cmd, env, f)
				default:
					return runSync(cmd, env, f)
				}
			})
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.order, "order", "", "Ordering strategy: "+strategyList())
	fl.StringVar(&f.order, "strategy", "", "Alias for --order")
	_ = fl.MarkHidden("strategy")
	fl.StringVar(&f.categories, "category-order", "", "Comma-separated category precedence for the category strategy")
	fl.StringVar(&f.withinSort, "within-category-sort", "", "Sorting inside categories: alphabetical, manual")
	fl.StringVar(&f.customOrder, "custom-order", "", "Comma-separated slugs for the custom strategy")
	fl.StringVar(&f.priority, "priority", "", "Comma-separated slugs moved to the front")
	fl.StringVar(&f.exclude, "exclude", "", "Comma-separated slugs left out")
	fl.StringVar(&f.globalConfig, "global-config", "", "Write to this global custom modes file")
	fl.StringVar(&f.local, "local", "", "Write to the project configuration of this directory")
	fl.BoolVar(&f.dryRun, "dry-run", false, "Print the result without writing it")
	fl.BoolVar(&f.listModes, "list-modes", false, "List the discovered modes and exit")
	fl.BoolVar(&f.validateOnly, "validate-only", false, "Validate the ordering configuration and exit")
	fl.BoolVar(&f.json, "json", false, "Print the result as JSON")
	return cmd
}

func runSync(cmd *cobra.Command, env *app.Env, f *syncFlags) error {
	report, err := env.Service.Sync(cmd.Context(), syncer.SyncOptions{
		Overrides:  f.overrides(),
		DryRun:     f.dryRun,
		ProjectDir: f.local,
		GlobalPath: f.globalConfig,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.json {
		return printJSON(out, report)
	}
	printReport(out, report)
	if report.DryRun {
		fmt.Fprintln(out, "---")
		_, err = out.Write(report.Content)
	}
	return err
}

func runListModes(cmd *cobra.Command, env *app.Env, asJSON bool) error {
	st, err := env.Service.Status(cmd.Context())
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd.OutOrStdout(), st)
	}
	return printStatus(cmd.OutOrStdout(), st)
}

func runValidateOnly(cmd *cobra.Command, env *app.Env, f *syncFlags) error {
	plan, err := env.Service.Preview(cmd.Context(), f.overrides())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.json {
		return printJSON(out, plan)
	}
	fmt.Fprintf(out, "Configuration is valid (strategy: %s, %d modes)\n", plan.Strategy, len(plan.Order))
	printNotes(out, plan.Warnings, plan.Skipped)
	return nil
}

func strategyList() string {
	names := make([]string, 0, len(ordering.Strategies()))
	for _, s := range ordering.Strategies() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}
