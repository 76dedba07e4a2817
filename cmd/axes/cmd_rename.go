package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename [context] <new-name>",
		Short: "Rename a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.open(cmd)
			if err != nil {
				return err
			}
			res, rest, err := a.target(cmd.Context(), ws, args)
			if err != nil {
				return err
			}
			if len(rest) != 1 {
				return fmt.Errorf("rename: want exactly one new name, got %d arguments", len(rest))
			}
			newName := strings.TrimSpace(rest[0])
			if err := ws.Rename(res.ID, newName); err != nil {
				return err
			}
			name, err := ws.Index().QualifiedName(res.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "renamed %q to %q\n", res.QualifiedName, name)
			return nil
		},
	}
}
