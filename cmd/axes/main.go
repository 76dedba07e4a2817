package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Retype15/axes/pkg/interrupt"
	"github.com/Retype15/axes/pkg/logging"
	"github.com/Retype15/axes/pkg/prompt"
	"github.com/Retype15/axes/pkg/settings"
)

const version = "0.1.0-dev"

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// execute runs the command line and maps the outcome to an exit status.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	s, err := settings.Load()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	logger, err := logging.New(stderr, s.LogLevel, s.LogFormat)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	flag := interrupt.NewFlag()
	flag.Start()
	defer flag.Stop()

	a := &app{settings: s, logger: logger, flag: flag, stdin: stdin}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err = root.ExecuteContext(context.Background())
	return exitStatus(stderr, err, flag.Raised())
}

func exitStatus(stderr io.Writer, err error, interrupted bool) int {
	switch {
	case err == nil:
		return 0
	case interrupted || errors.Is(err, interrupt.ErrInterrupted):
		fmt.Fprintln(stderr, "interrupted")
		return 130
	case errors.Is(err, prompt.ErrCancelled):
		fmt.Fprintln(stderr, prompt.ErrCancelled)
		return 0
	default:
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "axes",
		Short:         "Hierarchical project workflow orchestrator",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newRegisterCmd(a))
	root.AddCommand(newTreeCmd(a))
	root.AddCommand(newInfoCmd(a))
	root.AddCommand(newRunCmd(a))
	root.AddCommand(newOpenCmd(a))
	root.AddCommand(newStartCmd(a))
	root.AddCommand(newRenameCmd(a))
	root.AddCommand(newLinkCmd(a))
	root.AddCommand(newUnregisterCmd(a))
	root.AddCommand(newDeleteCmd(a))
	root.AddCommand(newDoctorCmd(a))
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "axes %s\n", version)
		},
	}
}
