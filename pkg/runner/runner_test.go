package runner

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Retype15/axes/pkg/config"
)

func newTestRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	var out bytes.Buffer
	r := New(zerolog.Nop())
	r.Stdin = strings.NewReader("")
	r.Stdout = &out
	r.Stderr = &out
	return r, &out
}

func TestRunSequence(t *testing.T) {
	r, out := newTestRunner(t)
	dir := t.TempDir()

	run := config.Runnable{Commands: []string{"echo one", "echo $GREETING", "pwd"}, Sequence: true}
	require.NoError(t, r.Run(context.Background(), dir, map[string]string{"GREETING": "hi"}, run))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "one", lines[0])
	assert.Equal(t, "hi", lines[1])
	assert.Contains(t, lines[2], dir[strings.LastIndex(dir, "/"):])
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	r, out := newTestRunner(t)
	run := config.Runnable{Commands: []string{"echo before", "exit 3", "echo after"}, Sequence: true}

	err := r.Run(context.Background(), t.TempDir(), nil, run)
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, "exit 3", exitErr.Line)
	assert.Contains(t, out.String(), "before")
	assert.NotContains(t, out.String(), "after")
}

func TestRunEmpty(t *testing.T) {
	r, _ := newTestRunner(t)
	assert.ErrorIs(t, r.Run(context.Background(), t.TempDir(), nil, config.Runnable{}), ErrEmptyCommand)
	assert.ErrorIs(t, r.Line(context.Background(), t.TempDir(), nil, "   "), ErrEmptyCommand)
}

func TestShellSwallowsExitStatus(t *testing.T) {
	r, _ := newTestRunner(t)
	r.Stdin = strings.NewReader("exit 4\n")
	require.NoError(t, r.Shell(context.Background(), "sh", t.TempDir(), nil))
}

func TestShellCommand(t *testing.T) {
	assert.Equal(t, []string{"sh", "-c", "ls"}, ShellCommand("linux", "ls"))
	assert.Equal(t, []string{"cmd", "/C", "dir"}, ShellCommand("windows", "dir"))
}

func TestEnviron(t *testing.T) {
	env := Environ([]string{"A=1", "B=2"}, map[string]string{"C": "3", "A": "9"})
	assert.Equal(t, []string{"A=1", "B=2", "A=9", "C=3"}, env)
}

func TestEcho(t *testing.T) {
	r, out := newTestRunner(t)
	var echo bytes.Buffer
	r.Echo = &echo

	require.NoError(t, r.Line(context.Background(), t.TempDir(), nil, "echo hi"))
	assert.Equal(t, "> echo hi\n", echo.String())
	assert.Equal(t, "hi\n", out.String())
}
