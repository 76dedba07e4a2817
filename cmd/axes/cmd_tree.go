package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Retype15/axes/pkg/index"
	"github.com/Retype15/axes/pkg/tree"
)

func newTreeCmd(a *app) *cobra.Command {
	var opts tree.Options

	cmd := &cobra.Command{
		Use:   "tree [context]",
		Short: "Show the project hierarchy",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.open(cmd)
			if err != nil {
				return err
			}
			opts.From = index.RootID
			if len(args) > 0 {
				res, err := ws.ResolveContext(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				opts.From = res.ID
			} else if id, ok, err := a.settings.Session(); err != nil {
				return err
			} else if ok {
				opts.From = id
			}

			n, err := tree.Render(cmd.OutOrStdout(), ws.Index(), opts)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no matching projects")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "glob over qualified names, e.g. 'api/*'")
	cmd.Flags().BoolVar(&opts.Paths, "paths", false, "show project directories")
	return cmd
}
