package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLinkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "link [context] <new-parent-context>",
		Short: "Move a project under another parent",
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
				return fmt.Errorf("link: want exactly one new parent, got %d arguments", len(rest))
			}
			parent, err := ws.ResolveContext(cmd.Context(), rest[0])
			if err != nil {
				return fmt.Errorf("resolve new parent: %w", err)
			}
			if err := ws.Link(res.ID, parent.ID); err != nil {
				return err
			}
			name, err := ws.Index().QualifiedName(res.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "linked %q under %q, now %q\n", res.QualifiedName, parent.QualifiedName, name)
			return nil
		},
	}
}
