package main

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/flemzord/modesync/internal/syncer"
	"github.com/flemzord/modesync/pkg/app"
	"github.com/spf13/cobra"
)

func backupCmd(g *globalFlags) *cobra.Command {
	var (
		local        string
		globalConfig string
	)
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "List or restore numbered backups of a target configuration",
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&local, "local", "", "Use the project configuration of this directory")
	pf.StringVar(&globalConfig, "global-config", "", "Use this global custom modes file")

	target := func(env *app.Env) (syncer.Target, error) {
		return syncer.TargetFor(env.Service.Config().Target, local, globalConfig)
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List backups of the target, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.withEnv(cmd, true, func(env *app.Env) error {
				t, err := target(env)
				if err != nil {
					return err
				}
				backups, err := env.Backups.List(t.Scope, filepath.Base(t.Path))
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(backups) == 0 {
					fmt.Fprintf(out, "No %s backups of %s.\n", t.Scope, t.Path)
					return nil
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NUMBER\tMODIFIED\tSIZE\tPATH")
				for _, b := range backups {
					fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", b.Number, b.ModTime.Local().Format(time.DateTime), b.Size, b.Path)
				}
				return tw.Flush()
			})
		},
	}

	var number int
	restore := &cobra.Command{
		Use:   "restore",
		Short: "Restore a backup over the target (latest by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if number < 0 {
				return fmt.Errorf("--number must not be negative, got %d", number)
			}
			return g.withEnv(cmd, true, func(env *app.Env) error {
				t, err := target(env)
				if err != nil {
					return err
				}
				b, err := env.Backups.Restore(t.Path, t.Scope, number)
				if err != nil {
					return err
				}
				env.Logger.Info("backup restored", "backup", b.Path, "target", t.Path)
				fmt.Fprintf(cmd.OutOrStdout(), "Restored backup #%d to %s\n", b.Number, t.Path)
				return nil
			})
		},
	}
	restore.Flags().IntVar(&number, "number", 0, "Backup number to restore (0 selects the latest)")

	cmd.AddCommand(list, restore)
	return cmd
}
