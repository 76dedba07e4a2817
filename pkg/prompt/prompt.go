// Package prompt implements the few interactive questions axes asks: pick one
// of several projects, or confirm a destructive operation.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

var (
	// ErrCancelled means the user declined to answer. It is not a failure.
	ErrCancelled = errors.New("operation cancelled")

	// ErrNotInteractive means input is not a terminal.
	ErrNotInteractive = errors.New("input is not an interactive terminal")
)

// Terminal asks questions on a line-oriented terminal.
type Terminal struct {
	in  io.Reader
	br  *bufio.Reader
	out io.Writer
}

// NewTerminal reads answers from in and writes questions to out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, br: bufio.NewReader(in), out: out}
}

// Interactive reports whether answers can be read. Only an *os.File that is
// not a terminal is considered non-interactive, so tests can feed readers.
func (t *Terminal) Interactive() bool {
	f, ok := t.in.(*os.File)
	if !ok {
		return true
	}
	return term.IsTerminal(int(f.Fd()))
}

// Select shows items numbered from 1 and returns the chosen index. An empty
// answer, "q" or end of input cancels.
func (t *Terminal) Select(ctx context.Context, question string, items []string) (int, error) {
	if len(items) == 0 {
		return 0, errors.New("select: no items")
	}
	if !t.Interactive() {
		return 0, ErrNotInteractive
	}

	fmt.Fprintln(t.out, question)
	for i, item := range items {
		fmt.Fprintf(t.out, "  %d) %s\n", i+1, item)
	}
	for {
		fmt.Fprintf(t.out, "choice [1-%d, q to cancel]: ", len(items))
		line, err := t.readLine(ctx)
		if err != nil {
			return 0, err
		}
		if line == "" || strings.EqualFold(line, "q") {
			return 0, ErrCancelled
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(items) {
			fmt.Fprintf(t.out, "invalid choice %q\n", line)
			continue
		}
		return n - 1, nil
	}
}

// Confirm asks a yes/no question defaulting to no.
func (t *Terminal) Confirm(ctx context.Context, question string) (bool, error) {
	if !t.Interactive() {
		return false, ErrNotInteractive
	}
	fmt.Fprintf(t.out, "%s [y/N]: ", question)
	line, err := t.readLine(ctx)
	if errors.Is(err, ErrCancelled) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (t *Terminal) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := t.br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("read answer: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
