// Package runner executes project commands and interactive shells as child
// processes. It waits for every child and treats a non-zero exit as failure.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Retype15/axes/pkg/config"
)

// ErrEmptyCommand reports a blank command line.
var ErrEmptyCommand = errors.New("empty command")

// ExitError reports a command that ran and exited non-zero.
type ExitError struct {
	Line string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command %q exited with status %d", e.Line, e.Code)
}

// Runner starts child processes wired to the given streams.
type Runner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Echo, when set, receives "> line" before each command line runs.
	Echo io.Writer

	goos   string
	logger zerolog.Logger
}

// New returns a Runner using the process streams.
func New(logger zerolog.Logger) *Runner {
	return &Runner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		goos:   runtime.GOOS,
		logger: logger.With().Str("component", "runner").Logger(),
	}
}

// ShellCommand returns the argv that runs line through the platform shell.
func ShellCommand(goos, line string) []string {
	if goos == "windows" {
		return []string{"cmd", "/C", line}
	}
	return []string{"sh", "-c", line}
}

// DefaultShell returns the interactive shell used when a project sets none.
func DefaultShell(goos string) string {
	if goos == "windows" {
		if s := os.Getenv("ComSpec"); s != "" {
			return s
		}
		return "cmd.exe"
	}
	if s := os.Getenv("SHELL"); s != "" {
		return s
	}
	return "/bin/sh"
}

// Run executes each line of r in dir with env layered over the process
// environment. A sequence stops at the first failing line.
func (r *Runner) Run(ctx context.Context, dir string, env map[string]string, run config.Runnable) error {
	if len(run.Commands) == 0 {
		return ErrEmptyCommand
	}
	for _, line := range run.Commands {
		if err := r.Line(ctx, dir, env, line); err != nil {
			return err
		}
	}
	return nil
}

// Line runs one command line through the platform shell.
func (r *Runner) Line(ctx context.Context, dir string, env map[string]string, line string) error {
	if strings.TrimSpace(line) == "" {
		return ErrEmptyCommand
	}
	argv := ShellCommand(r.goos, line)
	if r.Echo != nil {
		fmt.Fprintf(r.Echo, "> %s\n", line)
	}
	r.logger.Info().Str("dir", dir).Str("command", line).Msg("running")
	return r.exec(ctx, dir, env, line, argv)
}

// Shell starts an interactive shell in dir and waits for it to exit. The
// exit status of an interactive session is logged, not returned.
func (r *Runner) Shell(ctx context.Context, shell, dir string, env map[string]string) error {
	if shell == "" {
		shell = DefaultShell(r.goos)
	}
	argv := strings.Fields(shell)
	if len(argv) == 0 {
		return ErrEmptyCommand
	}
	r.logger.Info().Str("dir", dir).Str("shell", shell).Msg("starting shell")
	err := r.exec(ctx, dir, env, shell, argv)
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		r.logger.Warn().Int("status", exitErr.Code).Msg("shell exited with non-zero status")
		return nil
	}
	return err
}

func (r *Runner) exec(ctx context.Context, dir string, env map[string]string, line string, argv []string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = Environ(os.Environ(), env)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Line: line, Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("run %q: %w", line, err)
	}
	return nil
}

// Environ returns base with extra appended in key order. Later entries win
// in os/exec, so extra overrides base.
func Environ(base []string, extra map[string]string) []string {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(base)+len(keys))
	out = append(out, base...)
	for _, k := range keys {
		out = append(out, k+"="+extra[k])
	}
	return out
}
