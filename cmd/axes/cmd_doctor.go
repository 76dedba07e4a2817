package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the global index for broken links, cycles and missing configs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.open(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			age := "unknown"
			if st, err := os.Stat(ws.IndexPath()); err == nil {
				age = humanize.Time(st.ModTime())
			}
			fmt.Fprintf(out, "index %s (%s projects, saved %s)\n",
				ws.IndexPath(), humanize.Comma(int64(len(ws.Index().Projects))), age)

			problems := ws.Doctor()
			if len(problems) == 0 {
				fmt.Fprintln(out, "no problems found")
				return nil
			}
			for _, p := range problems {
				fmt.Fprintf(out, "  - %v\n", p)
			}
			return fmt.Errorf("doctor: %d problem(s) found", len(problems))
		},
	}
}
