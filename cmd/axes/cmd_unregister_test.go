package main

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Retype15/axes/pkg/index"
	"github.com/Retype15/axes/pkg/prompt"
)

func TestUnregisterCmd(t *testing.T) {
	c := newCLI(t)
	c.mustRun(t, "init", "api", "--dir", c.dir(t, "api"))
	c.mustRun(t, "init", "v1", "--dir", c.dir(t, "api", "v1"), "--parent", "api")

	c.app.stdin = strings.NewReader("n\n")
	_, _, err := c.run("unregister", "api")
	require.ErrorIs(t, err, prompt.ErrCancelled)
	assert.Len(t, c.index(t).Projects, 3)

	c.app.stdin = strings.NewReader("y\n")
	out := c.mustRun(t, "unregister", "api")
	assert.Contains(t, out, "will move under \"global\"")
	assert.Contains(t, out, "unregistered 1 project(s)")

	g := c.index(t)
	id, ok := g.FindChild(index.RootID, "v1")
	require.True(t, ok)
	assert.True(t, g.Projects[id].HasParent(index.RootID))

	out = c.mustRun(t, "unregister", "v1", "--yes")
	assert.Contains(t, out, "unregistered 1 project(s)")
	assert.Len(t, c.index(t).Projects, 1)
}

func TestUnregisterNonInteractive(t *testing.T) {
	c := newCLI(t)
	c.mustRun(t, "init", "api", "--dir", c.dir(t, "api"))

	devNull, err := os.Open(os.DevNull)
	require.NoError(t, err)
	defer devNull.Close()
	c.app.stdin = devNull

	_, _, err = c.run("unregister", "api")
	require.ErrorIs(t, err, prompt.ErrNotInteractive)
}
