package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Retype15/axes/pkg/inherit"
	"github.com/Retype15/axes/pkg/interp"
	"github.com/Retype15/axes/pkg/settings"
)

func newStartCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "start [context]",
		Short: "Open an interactive shell in the project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, _, err := a.project(cmd, args)
			if err != nil {
				return err
			}
			env := sessionEnv(cfg)
			expand := interp.New(cfg, nil).Expand
			r := a.runner(cmd)
			hooks := a.runner(cmd)
			hooks.Stdin = nil
			ctx := cmd.Context()

			if cfg.Options.AtStart != "" {
				if err := hooks.Line(ctx, cfg.ProjectRoot, env, expand(cfg.Options.AtStart)); err != nil {
					return fmt.Errorf("at_start: %w", err)
				}
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "--- axes session for %q, exit the shell to leave ---\n", cfg.QualifiedName)
			shellErr := r.Shell(ctx, expand(cfg.Options.Shell), cfg.ProjectRoot, env)
			// Ctrl-C inside the shell reaches us too; it ended nothing here.
			a.flag.Reset()

			if cfg.Options.AtExit != "" {
				if err := hooks.Line(ctx, cfg.ProjectRoot, env, expand(cfg.Options.AtExit)); err != nil && shellErr == nil {
					return fmt.Errorf("at_exit: %w", err)
				}
			}
			return shellErr
		},
	}
}

// sessionEnv is the merged env plus the variables that put child commands
// into session mode.
func sessionEnv(cfg *inherit.Config) map[string]string {
	env := make(map[string]string, len(cfg.Env)+3)
	for k, v := range cfg.Env {
		env[k] = v
	}
	env[settings.SessionEnv] = cfg.UUID.String()
	env["AXES_PROJECT_ROOT"] = cfg.ProjectRoot
	env["AXES_PROJECT_NAME"] = cfg.QualifiedName
	return env
}
