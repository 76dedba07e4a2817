package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Retype15/axes/pkg/inherit"
	"github.com/Retype15/axes/pkg/interp"
)

const defaultOpener = "default"

func newOpenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open [context] [[with] app]",
		Short: "Open the project with an application from [options.open_with]",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, rest, err := a.project(cmd, args)
			if err != nil {
				return err
			}
			template, err := opener(cfg, rest)
			if err != nil {
				return err
			}
			r := a.runner(cmd)
			r.Echo = cmd.ErrOrStderr()
			return r.Line(cmd.Context(), cfg.ProjectRoot, cfg.Env, interp.New(cfg, nil).Expand(template))
		},
	}
}

// opener picks the open_with template named by args: "with <app>", "<app>",
// or nothing for the app named by the default key.
func opener(cfg *inherit.Config, args []string) (string, error) {
	var app string
	switch {
	case len(args) > 0 && args[0] == "with":
		if len(args) < 2 {
			return "", errors.New("open with: missing application name")
		}
		app = args[1]
	case len(args) > 0:
		app = args[0]
	default:
		name, ok := cfg.Options.OpenWith[defaultOpener]
		if !ok {
			return "", errors.New("open: no application given and [options.open_with] has no default")
		}
		app = name
	}
	if app == defaultOpener {
		return "", errors.New("open: 'default' must name another open_with entry, e.g. default = \"vsc\"")
	}
	template, ok := cfg.Options.OpenWith[app]
	if !ok {
		return "", fmt.Errorf("open: %q is not defined in [options.open_with]", app)
	}
	return template, nil
}
