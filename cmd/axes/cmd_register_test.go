package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Retype15/axes/pkg/config"
	"github.com/Retype15/axes/pkg/index"
)

func TestRegisterCmd(t *testing.T) {
	c := newCLI(t)
	c.mustRun(t, "init", "tool", "--dir", c.dir(t, "a", "tool"))
	dir := c.dir(t, "b", "tool")
	writeConfig(t, dir, func(*config.RawProjectConfig) {})

	_, _, err := c.run("register", dir)
	require.ErrorIs(t, err, index.ErrNameCollision)

	out := c.mustRun(t, "register", dir, "--autosolve")
	assert.Contains(t, out, `registered project "tool-2"`)
}
