package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Retype15/axes/pkg/layout"
	"github.com/Retype15/axes/pkg/workspace"
)

func newDeleteCmd(a *app) *cobra.Command {
	var children, yes bool

	cmd := &cobra.Command{
		Use:   "delete [context]",
		Short: "Delete a project's .axes directory and unregister it",
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
			if !children && len(ws.Index().Children(res.ID)) > 0 {
				return fmt.Errorf("delete %q: %w; pass --children to delete them too", res.QualifiedName, workspace.ErrHasChildren)
			}
			affected, err := ws.Affected(res.ID, children)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "the %s directory of these projects will be deleted:\n", layout.MetaDirName)
			for _, c := range affected {
				fmt.Fprintf(out, "  - %s\n", describe(ws.Index(), c))
			}
			if err := a.confirm(cmd, yes, "Are you sure?"); err != nil {
				return err
			}

			removed, err := ws.Delete(res.ID, children)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "deleted %d project(s)\n", len(removed))
			return nil
		},
	}
	cmd.Flags().BoolVar(&children, "children", false, "also delete every descendant")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
