package main

import (
	"github.com/flemzord/modesync/internal/mcpserver"
	"github.com/flemzord/modesync/pkg/app"
	"github.com/spf13/cobra"
)

func serveCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the mode tools over MCP on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.withEnv(cmd, false, func(env *app.Env) error {
				srv := mcpserver.New(env.Service, version, env.Logger)
				env.Logger.Info("serving MCP over stdio", "modes_dir", env.Config.ModesDir)
				return mcpserver.ServeStdio(cmd.Context(), srv, cmd.InOrStdin(), cmd.OutOrStdout())
			})
		},
	}
}
