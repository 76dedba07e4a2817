package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Retype15/axes/pkg/contextpath"
	"github.com/Retype15/axes/pkg/index"
	"github.com/Retype15/axes/pkg/inherit"
	"github.com/Retype15/axes/pkg/interrupt"
	"github.com/Retype15/axes/pkg/prompt"
	"github.com/Retype15/axes/pkg/runner"
	"github.com/Retype15/axes/pkg/settings"
	"github.com/Retype15/axes/pkg/workspace"
)

var errNoContext = errors.New("no context given and no session active")

// app carries what every command needs besides its own flags.
type app struct {
	settings *settings.Settings
	logger   zerolog.Logger
	flag     *interrupt.Flag
	stdin    io.Reader
}

func (a *app) terminal(cmd *cobra.Command) *prompt.Terminal {
	return prompt.NewTerminal(a.stdin, cmd.ErrOrStderr())
}

// open loads the workspace. '*' prompts only when stdin is a terminal.
func (a *app) open(cmd *cobra.Command) (*workspace.Workspace, error) {
	dir, err := a.settings.ConfigDir()
	if err != nil {
		return nil, err
	}
	opts := []workspace.Option{
		workspace.WithLogger(a.logger),
		workspace.WithInterrupted(a.flag.Raised),
	}
	if term := a.terminal(cmd); term.Interactive() {
		opts = append(opts, workspace.WithSelector(term))
	}
	if a.settings.NoCache {
		opts = append(opts, workspace.WithoutCacheReads())
	}
	return workspace.Open(dir, opts...)
}

// target picks the project a command works on. In a session the session
// project is used and args are left alone; otherwise args[0] is the context.
func (a *app) target(ctx context.Context, ws *workspace.Workspace, args []string) (contextpath.Result, []string, error) {
	id, ok, err := a.settings.Session()
	if err != nil {
		return contextpath.Result{}, nil, err
	}
	if ok {
		res, err := ws.Session(id)
		if err != nil {
			return contextpath.Result{}, nil, err
		}
		a.logger.Info().Str("project", res.QualifiedName).Msg("session mode")
		return res, args, nil
	}
	if len(args) == 0 {
		return contextpath.Result{}, nil, errNoContext
	}
	res, err := ws.ResolveContext(ctx, args[0])
	if err != nil {
		return contextpath.Result{}, nil, err
	}
	return res, args[1:], nil
}

// project opens the workspace and resolves the target plus its config.
func (a *app) project(cmd *cobra.Command, args []string) (*workspace.Workspace, *inherit.Config, []string, error) {
	ws, err := a.open(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	res, rest, err := a.target(cmd.Context(), ws, args)
	if err != nil {
		return nil, nil, nil, err
	}
	cfg, err := ws.ResolveConfig(res)
	if err != nil {
		return nil, nil, nil, err
	}
	return ws, cfg, rest, nil
}

func (a *app) runner(cmd *cobra.Command) *runner.Runner {
	r := runner.New(a.logger)
	r.Stdin = a.stdin
	r.Stdout = cmd.OutOrStdout()
	r.Stderr = cmd.ErrOrStderr()
	return r
}

// confirm asks question unless yes is set. A "no" is ErrCancelled.
func (a *app) confirm(cmd *cobra.Command, yes bool, question string) error {
	if yes {
		return nil
	}
	term := a.terminal(cmd)
	if !term.Interactive() {
		return fmt.Errorf("%w; pass --yes to proceed", prompt.ErrNotInteractive)
	}
	ok, err := term.Confirm(cmd.Context(), question)
	if a.flag.Raised() {
		return interrupt.ErrInterrupted
	}
	if err != nil {
		return err
	}
	if !ok {
		return prompt.ErrCancelled
	}
	return nil
}

func describe(g *index.GlobalIndex, c index.Child) string {
	name, err := g.QualifiedName(c.ID)
	if err != nil {
		name = c.Entry.Name
	}
	return fmt.Sprintf("%s (%s)", name, c.Entry.Path)
}
