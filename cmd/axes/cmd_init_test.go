package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Retype15/axes/pkg/index"
	"github.com/Retype15/axes/pkg/layout"
	"github.com/Retype15/axes/pkg/workspace"
)

func TestInitCmd(t *testing.T) {
	c := newCLI(t)
	api := c.dir(t, "api")
	out := c.mustRun(t, "init", "api", "--dir", api)
	assert.Contains(t, out, `initialized project "api" under "global"`)
	assert.True(t, layout.HasMarker(api))

	out = c.mustRun(t, "init", "v1", "--dir", c.dir(t, "api", "v1"), "--parent", "api")
	assert.Contains(t, out, `initialized project "v1" under "api"`)

	g := c.index(t)
	apiID, ok := g.FindChild(index.RootID, "api")
	require.True(t, ok)
	_, ok = g.FindChild(apiID, "v1")
	assert.True(t, ok)
}

func TestInitRefusesTwice(t *testing.T) {
	c := newCLI(t)
	dir := c.dir(t, "api")
	c.mustRun(t, "init", "api", "--dir", dir)

	_, _, err := c.run("init", "other", "--dir", dir)
	require.ErrorIs(t, err, workspace.ErrAlreadyInitialized)
}
