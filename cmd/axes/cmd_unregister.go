package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUnregisterCmd(a *app) *cobra.Command {
	var children, yes bool

	cmd := &cobra.Command{
		Use:   "unregister [context]",
		Short: "Remove a project from the index, keeping its files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.open(cmd)
			if err != nil {
				return err
			}
			res, _, err := a.target(cmd.Context(), ws, args)
			if err != nil {
				return err
			}
			affected, err := ws.Affected(res.ID, children)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "these projects will be unregistered (files are kept):")
			for _, c := range affected {
				fmt.Fprintf(out, "  - %s\n", describe(ws.Index(), c))
			}
			if !children && len(ws.Index().Children(res.ID)) > 0 {
				fmt.Fprintf(out, "direct children of %q will move under %q\n", res.QualifiedName, "global")
			}
			if err := a.confirm(cmd, yes, "Continue?"); err != nil {
				return err
			}

			removed, err := ws.Unregister(res.ID, children)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "unregistered %d project(s)\n", len(removed))
			return nil
		},
	}
	cmd.Flags().BoolVar(&children, "children", false, "also unregister every descendant")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
