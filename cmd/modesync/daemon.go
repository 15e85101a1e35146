package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/flemzord/modesync/pkg/app"
	"github.com/spf13/cobra"
)

func daemonCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run or manage the background sync daemon",
		Long: `The daemon serves the HTTP API, the event stream and MCP over HTTP, runs
scheduled resyncs and reacts to configuration and modes directory changes.
SIGHUP reloads the configuration.`,
	}

	var syncOnStart bool
	run := &cobra.Command{
		Use:   "run",
		Short: "Run the daemon in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runDaemon := func(ctx context.Context) error {
				env, err := g.open(cmd, false)
				if err != nil {
					return err
				}
				defer func() {
					if cerr := env.Close(context.WithoutCancel(ctx)); cerr != nil {
						env.Logger.Warn("closing environment", "error", cerr)
					}
				}()

				d, err := app.NewDaemon(env, app.DaemonOptions{Version: version, SyncOnStart: syncOnStart})
				if err != nil {
					return err
				}
				return d.Run(ctx)
			}

			if app.Interactive() {
				return runDaemon(cmd.Context())
			}

			cfg, err := app.ServiceConfig(g.configPath)
			if err != nil {
				return err
			}
			s, err := app.NewSystemService(cfg, runDaemon)
			if err != nil {
				return err
			}
			return s.Run()
		},
	}
	run.Flags().BoolVar(&syncOnStart, "sync-on-start", false, "Run one sync as soon as the daemon is up")

	cmd.AddCommand(run)
	for _, action := range []string{"install", "uninstall", "start", "stop", "restart"} {
		cmd.AddCommand(controlCmd(g, action))
	}
	return cmd
}

func controlCmd(g *globalFlags, action string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: fmt.Sprintf("%s the system service", titleCase(action)),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.ServiceConfig(g.configPath)
			if err != nil {
				return err
			}
			s, err := app.NewSystemService(cfg, func(context.Context) error { return nil })
			if err != nil {
				return err
			}
			if err := app.Control(s, action); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Service %s: %s done\n", app.ServiceName, action)
			return nil
		},
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
