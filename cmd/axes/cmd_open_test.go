package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Retype15/axes/pkg/config"
	"github.com/Retype15/axes/pkg/workspace"
)

func TestOpenCmd(t *testing.T) {
	skipOnWindows(t)
	c := newCLI(t)
	dir := c.dir(t, "api")
	c.mustRun(t, "init", "api", "--dir", dir)
	writeConfig(t, dir, func(raw *config.RawProjectConfig) {
		raw.Options.OpenWith = map[string]string{"default": "show", "show": "echo open {root}"}
	})

	out := c.mustRun(t, "open", "api")
	assert.Equal(t, "open "+dir+"\n", out)
	out = c.mustRun(t, "open", "api", "with", "show")
	assert.Equal(t, "open "+dir+"\n", out)

	_, _, err := c.run("open", "api", "default")
	require.ErrorContains(t, err, "'default' must name another")
	_, _, err = c.run("open", "api", "with")
	require.ErrorContains(t, err, "missing application")
	_, _, err = c.run("open", "api", "nope")
	require.ErrorContains(t, err, `"nope" is not defined`)
}

func TestOpener(t *testing.T) {
	c := newCLI(t)
	dir := c.dir(t, "api")
	c.mustRun(t, "init", "api", "--dir", dir)
	ws, err := workspace.Open(c.home)
	require.NoError(t, err)
	res, err := ws.ResolveContext(t.Context(), "api")
	require.NoError(t, err)
	cfg, err := ws.ResolveConfig(res)
	require.NoError(t, err)

	cfg.Options.OpenWith = map[string]string{}
	_, err = opener(cfg, nil)
	require.ErrorContains(t, err, "has no default")
}
