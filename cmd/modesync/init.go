package main

import (
	"errors"
	"fmt"

	"github.com/flemzord/modesync/internal/config"
	"github.com/flemzord/modesync/internal/discovery"
	"github.com/flemzord/modesync/internal/wizard"
	"github.com/flemzord/modesync/pkg/app"
	"github.com/spf13/cobra"
)

func initCmd(g *globalFlags) *cobra.Command {
	var (
		output     string
		force      bool
		accessible bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := output
			if path == "" {
				path = g.configPath
			}
			if path == "" {
				path = config.DefaultPath()
			}

			return g.withEnv(cmd, true, func(env *app.Env) error {
				cat, err := discovery.New(env.Config.ModesDir, env.Logger).Discover(cmd.Context())
				if err != nil {
					return err
				}
				slugs := make([]string, 0, cat.Count())
				for _, m := range cat.Modes() {
					slugs = append(slugs, m.Slug)
				}

				defaults := wizard.DefaultAnswers()
				defaults.ModesDir = env.Config.ModesDir
				answers, err := wizard.Run(cmd.Context(), wizard.Options{
					Slugs:      slugs,
					Defaults:   &defaults,
					Accessible: accessible,
					In:         cmd.InOrStdin(),
					Out:        cmd.OutOrStdout(),
				})
				if errors.Is(err, wizard.ErrAborted) {
					fmt.Fprintln(cmd.ErrOrStderr(), "Aborted, nothing written.")
					return nil
				}
				if err != nil {
					return err
				}

				if err := wizard.Write(path, answers.Config(), force); err != nil {
					if errors.Is(err, wizard.ErrExists) {
						return fmt.Errorf("%w (use --force to overwrite)", err)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Where to write the configuration (default: --config or "+config.DefaultPath()+")")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	cmd.Flags().BoolVar(&accessible, "accessible", false, "Use plain prompts instead of the interactive form")
	return cmd
}
