// Package main is the entry point for the modesync CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/flemzord/modesync/internal/config"
	"github.com/flemzord/modesync/internal/redact"
	"github.com/flemzord/modesync/pkg/app"
	"github.com/spf13/cobra"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath   string
	modesDir     string
	dataDir      string
	logLevel     string
	logFormat    string
	otlpEndpoint string
}

func rootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "modesync",
		Short:         "Order custom modes and sync them into editor configuration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "Path to configuration file (default: first of "+fmt.Sprint(config.SearchPaths())+")")
	pf.StringVar(&g.modesDir, "modes-dir", "", "Directory containing mode YAML files (overrides modes_dir and $"+config.EnvModesDir+")")
	pf.StringVar(&g.dataDir, "data-dir", "", "Directory for history and backups (default: "+app.DefaultDataDir()+")")
	pf.StringVar(&g.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&g.logFormat, "log-format", app.LogFormatText, "Log format: text, json")
	pf.StringVar(&g.otlpEndpoint, "otlp-endpoint", "", "OTLP/HTTP endpoint for trace export")

	root.AddCommand(
		syncCmd(g),
		listCmd(g),
		validateCmd(g),
		statusCmd(g),
		historyCmd(g),
		backupCmd(g),
		initCmd(g),
		serveCmd(g),
		daemonCmd(g),
		versionCmd(),
	)
	return root
}

// open builds the environment every command runs in. noHistory skips the
// run store for commands that never read or write it.
func (g *globalFlags) open(cmd *cobra.Command, noHistory bool) (*app.Env, error) {
	if g.modesDir != "" {
		// The flag outranks the file and the environment; routing it through
		// the environment keeps it applied across daemon reloads.
		abs, err := filepath.Abs(g.modesDir)
		if err != nil {
			return nil, err
		}
		if err := os.Setenv(config.EnvModesDir, abs); err != nil {
			return nil, err
		}
	}

	r := redact.NewRedactor()
	logger, err := app.NewLogger(app.LogOptions{Level: g.logLevel, Format: g.logFormat, Out: cmd.ErrOrStderr()}, r)
	if err != nil {
		return nil, err
	}

	return app.Open(cmd.Context(), app.Params{
		ConfigPath:   g.configPath,
		DataDir:      g.dataDir,
		OTLPEndpoint: g.otlpEndpoint,
		Version:      version,
		NoHistory:    noHistory,
		Logger:       logger,
		Redactor:     r,
	})
}

// withEnv opens the environment, runs fn and closes it.
func (g *globalFlags) withEnv(cmd *cobra.Command, noHistory bool, fn func(*app.Env) error) error {
	env, err := g.open(cmd, noHistory)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := env.Close(context.WithoutCancel(cmd.Context())); cerr != nil {
			env.Logger.Warn("closing environment", "error", cerr)
		}
	}()
	return fn(env)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "modesync %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
