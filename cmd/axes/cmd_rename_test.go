package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Retype15/axes/pkg/index"
)

func TestRenameCmd(t *testing.T) {
	c := newCLI(t)
	c.mustRun(t, "init", "api", "--dir", c.dir(t, "api"))
	c.mustRun(t, "init", "web", "--dir", c.dir(t, "web"))

	out := c.mustRun(t, "rename", "api", "backend")
	assert.Equal(t, "renamed \"api\" to \"backend\"\n", out)
	_, ok := c.index(t).FindChild(index.RootID, "backend")
	assert.True(t, ok)

	_, _, err := c.run("rename", "web", "backend")
	require.ErrorIs(t, err, index.ErrNameCollision)

	_, _, err = c.run("rename", "web", "global")
	require.ErrorIs(t, err, index.ErrInvalidName)

	_, _, err = c.run("rename", "web")
	require.ErrorContains(t, err, "exactly one new name")
}
