package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Retype15/axes/pkg/index"
	"github.com/Retype15/axes/pkg/layout"
)

func newInitCmd(a *app) *cobra.Command {
	var parent, dir string

	cmd := &cobra.Command{
		Use:   "init <name>",
		Short: "Create a project in a directory and register it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			if err := os.MkdirAll(abs, 0o755); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}

			ws, err := a.open(cmd)
			if err != nil {
				return err
			}
			parentID := index.RootID
			parentName := index.RootName
			if parent != "" {
				res, err := ws.ResolveContext(cmd.Context(), parent)
				if err != nil {
					return fmt.Errorf("resolve parent: %w", err)
				}
				parentID, parentName = res.ID, res.QualifiedName
			}

			id, err := ws.Init(abs, args[0], parentID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "initialized project %q under %q\n", args[0], parentName)
			fmt.Fprintf(out, "  uuid:   %s\n", id)
			fmt.Fprintf(out, "  config: %s\n", layout.ConfigPath(ws.Index().Projects[id].Path))
			return nil
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "context of the parent project (default global)")
	cmd.Flags().StringVar(&dir, "dir", ".", "project directory")
	return cmd
}
