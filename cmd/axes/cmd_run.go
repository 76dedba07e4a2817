package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Retype15/axes/pkg/config"
	"github.com/Retype15/axes/pkg/interp"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [context] <command> [params...]",
		Short: "Run a command defined in the project configuration",
		Long: "Run a command from [commands] in the project root with the merged env.\n" +
			"Extra params replace {params} in the command line.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, rest, err := a.project(cmd, args)
			if err != nil {
				return err
			}
			if len(rest) == 0 {
				return fmt.Errorf("run: missing command name; %q defines: %s",
					cfg.QualifiedName, strings.Join(config.SortedNames(cfg.Commands), ", "))
			}
			name := rest[0]
			c, ok := cfg.Commands[name]
			if !ok {
				return fmt.Errorf("run: command %q not defined for %q", name, cfg.QualifiedName)
			}
			run, err := c.Resolve(runtime.GOOS)
			if err != nil {
				return fmt.Errorf("run %q: %w", name, err)
			}
			run.Commands = interp.New(cfg, rest[1:]).ExpandAll(run.Commands)

			r := a.runner(cmd)
			r.Echo = cmd.ErrOrStderr()
			return r.Run(cmd.Context(), cfg.ProjectRoot, cfg.Env, run)
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}
