package index

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLoadCreatesRoot(t *testing.T) {
	dir := t.TempDir()
	var scaffolded []Entry
	s := NewStore(dir, WithRootScaffold(func(root Entry) error {
		scaffolded = append(scaffolded, root)
		return nil
	}))

	g, err := s.Load()
	require.NoError(t, err)
	root, ok := g.Get(RootID)
	require.True(t, ok)
	assert.Equal(t, RootName, root.Name)
	assert.Equal(t, dir, root.Path)
	assert.Nil(t, root.Parent)
	require.Len(t, scaffolded, 1)

	_, err = os.Stat(s.Path())
	require.NoError(t, err)

	// Second load finds the root and does not scaffold again.
	_, err = s.Load()
	require.NoError(t, err)
	assert.Len(t, scaffolded, 1)
}

func TestStoreScaffoldFailure(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("boom")
	s := NewStore(dir, WithRootScaffold(func(Entry) error { return boom }))

	_, err := s.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	_, statErr := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestStoreRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())
	g, err := s.Load()
	require.NoError(t, err)

	api, err := g.Add("api", "/src/api", nil)
	require.NoError(t, err)
	v1, err := g.Add("v1", "/src/api/v1", &api)
	require.NoError(t, err)
	g.LastUsed = &v1
	require.NoError(t, s.Save(g))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, g, got)
}

func TestStoreReadMissingIsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "absent"))
	g, err := s.Read()
	require.NoError(t, err)
	assert.Empty(t, g.Projects)
	assert.Nil(t, g.LastUsed)
}

func TestDecodeHandEdited(t *testing.T) {
	data := []byte(`
last_used = "6f1c7a52-3c59-4f43-9d9a-8a1de9a8f0c1"

[projects.00000000-0000-0000-0000-000000000000]
name = "global"
path = "/home/u/.config/axes"

[projects.6f1c7a52-3c59-4f43-9d9a-8a1de9a8f0c1]
name = "api"
path = "/src/api"
parent = "00000000-0000-0000-0000-000000000000"
`)
	g, err := Decode("index.toml", data)
	require.NoError(t, err)
	require.Len(t, g.Projects, 2)
	require.NotNil(t, g.LastUsed)

	name, err := g.QualifiedName(*g.LastUsed)
	require.NoError(t, err)
	assert.Equal(t, "api", name)
}

func TestDecodeErrors(t *testing.T) {
	cases := map[string]string{
		"syntax":      "projects = [",
		"bad key":     "[projects.not-a-uuid]\nname = \"x\"\npath = \"/x\"\n",
		"bad parent":  "[projects.6f1c7a52-3c59-4f43-9d9a-8a1de9a8f0c1]\nname = \"x\"\npath = \"/x\"\nparent = \"nope\"\n",
		"bad lastuse": "last_used = \"nope\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode("/cfg/index.toml", []byte(body))
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, "/cfg/index.toml", perr.Path)
		})
	}
}
