package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRegisterCmd(a *app) *cobra.Command {
	var autosolve bool

	cmd := &cobra.Command{
		Use:   "register [path]",
		Short: "Register an existing project directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			ws, err := a.open(cmd)
			if err != nil {
				return err
			}
			reg, err := ws.Register(path, autosolve)
			if err != nil {
				return err
			}
			name, err := ws.Index().QualifiedName(reg.ID)
			if err != nil {
				return err
			}
			if reg.Relocated {
				fmt.Fprintf(cmd.OutOrStdout(), "relocated project %q (%s)\n", name, reg.ID)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered project %q (%s)\n", name, reg.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&autosolve, "autosolve", false, "rename on sibling name collision by appending -2, -3, ...")
	return cmd
}
