package workspace

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Retype15/axes/pkg/config"
	"github.com/Retype15/axes/pkg/contextpath"
	"github.com/Retype15/axes/pkg/index"
	"github.com/Retype15/axes/pkg/inherit"
	"github.com/Retype15/axes/pkg/layout"
	"github.com/Retype15/axes/pkg/localref"
)

type sandbox struct {
	base string
	ws   *Workspace
}

func newSandbox(t *testing.T, opts ...Option) *sandbox {
	t.Helper()
	base, err := layout.Canonical(t.TempDir())
	require.NoError(t, err)
	ws, err := Open(filepath.Join(base, "home"), opts...)
	require.NoError(t, err)
	return &sandbox{base: base, ws: ws}
}

func (s *sandbox) dir(t *testing.T, parts ...string) string {
	t.Helper()
	dir := filepath.Join(append([]string{s.base}, parts...)...)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return dir
}

// reopen loads the index again from disk.
func (s *sandbox) reopen(t *testing.T) *Workspace {
	t.Helper()
	ws, err := Open(s.ws.ConfigDir)
	require.NoError(t, err)
	return ws
}

func readRef(t *testing.T, root string) localref.ProjectRef {
	t.Helper()
	ref, err := localref.NewStore(zerolog.Nop()).Read(root)
	require.NoError(t, err)
	return ref
}

func TestOpenScaffoldsRoot(t *testing.T) {
	s := newSandbox(t)

	root, ok := s.ws.Index().Get(index.RootID)
	require.True(t, ok)
	assert.Equal(t, index.RootName, root.Name)
	assert.Equal(t, s.ws.ConfigDir, root.Path)
	assert.FileExists(t, s.ws.IndexPath())
	assert.True(t, layout.HasMarker(root.Path))
	assert.Equal(t, index.RootID, readRef(t, root.Path).SelfUUID)

	// A second open keeps the hand-edited root config.
	require.NoError(t, os.WriteFile(layout.ConfigPath(root.Path), []byte("version = \"9\"\n"), 0o644))
	s.reopen(t)
	raw, err := config.Load(layout.ConfigPath(root.Path))
	require.NoError(t, err)
	require.NotNil(t, raw.Version)
	assert.Equal(t, "9", *raw.Version)
}

func TestInit(t *testing.T) {
	s := newSandbox(t)
	dir := s.dir(t, "api")

	id, err := s.ws.Init(dir, "api", index.RootID)
	require.NoError(t, err)

	assert.True(t, layout.HasMarker(dir))
	ref := readRef(t, dir)
	assert.Equal(t, id, ref.SelfUUID)
	assert.Equal(t, "api", ref.Name)
	require.NotNil(t, ref.ParentUUID)
	assert.Equal(t, index.RootID, *ref.ParentUUID)

	e, ok := s.reopen(t).Index().Get(id)
	require.True(t, ok)
	assert.Equal(t, "api", e.Name)
	assert.Equal(t, dir, e.Path)
}

func TestInitUnderParent(t *testing.T) {
	s := newSandbox(t)
	api, err := s.ws.Init(s.dir(t, "api"), "api", index.RootID)
	require.NoError(t, err)
	v1, err := s.ws.Init(s.dir(t, "api", "v1"), "v1", api)
	require.NoError(t, err)

	res, err := s.ws.ResolveContext(context.Background(), "api/v1")
	require.NoError(t, err)
	assert.Equal(t, v1, res.ID)
}

func TestInitRefusesExistingMetadata(t *testing.T) {
	s := newSandbox(t)
	dir := s.dir(t, "api")
	require.NoError(t, os.MkdirAll(layout.MetaDir(dir), 0o755))

	_, err := s.ws.Init(dir, "api", index.RootID)
	require.ErrorIs(t, err, ErrAlreadyInitialized)
	assert.Len(t, s.ws.Index().Projects, 1)
}

func TestInitNameCollisionLeavesNoFiles(t *testing.T) {
	s := newSandbox(t)
	_, err := s.ws.Init(s.dir(t, "a"), "api", index.RootID)
	require.NoError(t, err)

	dir := s.dir(t, "b")
	_, err = s.ws.Init(dir, "api", index.RootID)
	require.ErrorIs(t, err, index.ErrNameCollision)
	assert.NoDirExists(t, layout.MetaDir(dir))
}

func TestInitConfigWriteFailureRollsBack(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs symlinks")
	}
	s := newSandbox(t)
	dir := s.dir(t, "api")
	// A dangling symlink passes the metadata check but cannot be created.
	require.NoError(t, os.Symlink(filepath.Join(s.base, "nowhere"), layout.MetaDir(dir)))

	_, err := s.ws.Init(dir, "api", index.RootID)
	require.Error(t, err)
	_, ok := s.ws.Index().FindChild(index.RootID, "api")
	assert.False(t, ok)
	assert.Len(t, s.ws.Index().Projects, 1)
	_, err = os.Lstat(layout.MetaDir(dir))
	assert.True(t, os.IsNotExist(err))
}

func TestRegisterFresh(t *testing.T) {
	s := newSandbox(t)
	dir := s.dir(t, "tool")
	require.NoError(t, config.Write(layout.ConfigPath(dir), config.Default("linux")))

	reg, err := s.ws.Register(dir, false)
	require.NoError(t, err)
	assert.False(t, reg.Relocated)
	assert.Equal(t, "tool", reg.Name)
	assert.Equal(t, index.RootID, reg.Parent)
	assert.Equal(t, reg.ID, readRef(t, dir).SelfUUID)

	_, err = s.ws.Register(dir, false)
	require.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegisterWithoutConfig(t *testing.T) {
	s := newSandbox(t)
	_, err := s.ws.Register(s.dir(t, "empty"), false)
	require.ErrorIs(t, err, ErrNoProjectConfig)
}

func TestRegisterRelocatesMovedProject(t *testing.T) {
	s := newSandbox(t)
	old := s.dir(t, "old")
	id, err := s.ws.Init(old, "api", index.RootID)
	require.NoError(t, err)

	moved := filepath.Join(s.base, "moved")
	require.NoError(t, os.Rename(old, moved))

	reg, err := s.ws.Register(moved, false)
	require.NoError(t, err)
	assert.True(t, reg.Relocated)
	assert.Equal(t, id, reg.ID)

	g := s.reopen(t).Index()
	assert.Len(t, g.Projects, 2)
	assert.Equal(t, moved, g.Projects[id].Path)
}

func TestRegisterRelocatesParentlessEntry(t *testing.T) {
	s := newSandbox(t)
	old := s.dir(t, "old")
	id, err := s.ws.Init(old, "api", index.RootID)
	require.NoError(t, err)

	// Hand-edited index: a non-root entry without a parent.
	e := s.ws.Index().Projects[id]
	e.Parent = nil
	s.ws.Index().Projects[id] = e

	moved := filepath.Join(s.base, "moved")
	require.NoError(t, os.Rename(old, moved))

	reg, err := s.ws.Register(moved, false)
	require.NoError(t, err)
	assert.True(t, reg.Relocated)
	assert.Equal(t, index.RootID, reg.Parent)
	assert.Equal(t, moved, s.ws.Index().Projects[id].Path)
}

func TestRegisterKeepsMirrorParentAndName(t *testing.T) {
	s := newSandbox(t)
	api, err := s.ws.Init(s.dir(t, "api"), "api", index.RootID)
	require.NoError(t, err)
	v1dir := s.dir(t, "api", "v1")
	v1, err := s.ws.Init(v1dir, "v1", api)
	require.NoError(t, err)

	_, err = s.ws.Unregister(v1, false)
	require.NoError(t, err)

	reg, err := s.ws.Register(v1dir, false)
	require.NoError(t, err)
	assert.False(t, reg.Relocated)
	assert.NotEqual(t, v1, reg.ID)
	assert.Equal(t, "v1", reg.Name)
	assert.Equal(t, api, reg.Parent)
}

func TestRegisterAutosolve(t *testing.T) {
	s := newSandbox(t)
	_, err := s.ws.Init(s.dir(t, "a", "tool"), "tool", index.RootID)
	require.NoError(t, err)
	_, err = s.ws.Init(s.dir(t, "b", "tool-2"), "tool-2", index.RootID)
	require.NoError(t, err)

	dir := s.dir(t, "c", "tool")
	require.NoError(t, config.Write(layout.ConfigPath(dir), config.Default("linux")))

	_, err = s.ws.Register(dir, false)
	require.ErrorIs(t, err, index.ErrNameCollision)

	reg, err := s.ws.Register(dir, true)
	require.NoError(t, err)
	assert.Equal(t, "tool-3", reg.Name)
}

func TestRenameAndLinkUpdateMirror(t *testing.T) {
	s := newSandbox(t)
	apiDir := s.dir(t, "api")
	api, err := s.ws.Init(apiDir, "api", index.RootID)
	require.NoError(t, err)
	web, err := s.ws.Init(s.dir(t, "web"), "web", index.RootID)
	require.NoError(t, err)

	require.NoError(t, s.ws.Rename(api, "backend"))
	assert.Equal(t, "backend", readRef(t, apiDir).Name)

	require.NoError(t, s.ws.Link(api, web))
	ref := readRef(t, apiDir)
	require.NotNil(t, ref.ParentUUID)
	assert.Equal(t, web, *ref.ParentUUID)

	name, err := s.reopen(t).Index().QualifiedName(api)
	require.NoError(t, err)
	assert.Equal(t, "web/backend", name)

	require.ErrorIs(t, s.ws.Link(web, api), index.ErrCycle)
	require.ErrorIs(t, s.ws.Rename(index.RootID, "x"), index.ErrRootImmutable)
}

func TestUnregisterReparents(t *testing.T) {
	s := newSandbox(t)
	api, err := s.ws.Init(s.dir(t, "api"), "api", index.RootID)
	require.NoError(t, err)
	v1dir := s.dir(t, "api", "v1")
	v1, err := s.ws.Init(v1dir, "v1", api)
	require.NoError(t, err)

	removed, err := s.ws.Unregister(api, false)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, api, removed[0].ID)

	g := s.reopen(t).Index()
	assert.True(t, g.Projects[v1].HasParent(index.RootID))
	assert.True(t, layout.HasMarker(filepath.Join(s.base, "api")))
	ref := readRef(t, v1dir)
	require.NotNil(t, ref.ParentUUID)
	assert.Equal(t, index.RootID, *ref.ParentUUID)
}

func TestUnregisterCascade(t *testing.T) {
	s := newSandbox(t)
	api, err := s.ws.Init(s.dir(t, "api"), "api", index.RootID)
	require.NoError(t, err)
	_, err = s.ws.Init(s.dir(t, "api", "v1"), "v1", api)
	require.NoError(t, err)

	removed, err := s.ws.Unregister(api, true)
	require.NoError(t, err)
	assert.Len(t, removed, 2)
	assert.Len(t, s.reopen(t).Index().Projects, 1)

	_, err = s.ws.Unregister(index.RootID, false)
	require.ErrorIs(t, err, index.ErrRootImmutable)
}

func TestDelete(t *testing.T) {
	s := newSandbox(t)
	apiDir := s.dir(t, "api")
	api, err := s.ws.Init(apiDir, "api", index.RootID)
	require.NoError(t, err)
	v1dir := s.dir(t, "api", "v1")
	_, err = s.ws.Init(v1dir, "v1", api)
	require.NoError(t, err)

	_, err = s.ws.Delete(api, false)
	require.ErrorIs(t, err, ErrHasChildren)
	assert.DirExists(t, layout.MetaDir(apiDir))

	removed, err := s.ws.Delete(api, true)
	require.NoError(t, err)
	assert.Len(t, removed, 2)
	assert.NoDirExists(t, layout.MetaDir(apiDir))
	assert.NoDirExists(t, layout.MetaDir(v1dir))
	assert.DirExists(t, v1dir)
	assert.Len(t, s.reopen(t).Index().Projects, 1)

	_, err = s.ws.Delete(index.RootID, true)
	require.ErrorIs(t, err, index.ErrRootImmutable)
}

func TestResolveConfigThroughWorkspace(t *testing.T) {
	s := newSandbox(t, WithoutCacheReads())
	dir := s.dir(t, "api")
	id, err := s.ws.Init(dir, "api", index.RootID)
	require.NoError(t, err)

	raw := config.Default("linux")
	raw.Vars = map[string]string{"port": "8080"}
	require.NoError(t, config.Write(layout.ConfigPath(dir), raw))

	// Lose the mirror; resolving heals it.
	require.NoError(t, os.Remove(layout.ProjectRefPath(dir)))

	res, err := s.ws.ResolveContext(context.Background(), "api")
	require.NoError(t, err)
	cfg, err := s.ws.ResolveConfig(res)
	require.NoError(t, err)
	assert.Equal(t, id, cfg.UUID)
	assert.Equal(t, "8080", cfg.Vars["port"])
	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, id, readRef(t, dir).SelfUUID)

	require.NotNil(t, s.reopen(t).Index().LastUsed)
}

func TestResolveConfigFollowsLink(t *testing.T) {
	s := newSandbox(t)
	ctx := context.Background()
	apiDir := s.dir(t, "api")
	webDir := s.dir(t, "web")
	api, err := s.ws.Init(apiDir, "api", index.RootID)
	require.NoError(t, err)
	web, err := s.ws.Init(webDir, "web", index.RootID)
	require.NoError(t, err)
	v1, err := s.ws.Init(s.dir(t, "api", "v1"), "v1", api)
	require.NoError(t, err)

	for dir, owner := range map[string]string{apiDir: "api", webDir: "web"} {
		raw := config.Default("linux")
		raw.Vars = map[string]string{"owner": owner}
		raw.Commands = map[string]config.Command{owner: config.Simple("echo " + owner)}
		require.NoError(t, config.Write(layout.ConfigPath(dir), raw))
	}

	resolve := func() *inherit.Config {
		t.Helper()
		res, err := s.ws.ResolveContext(ctx, "**")
		require.NoError(t, err)
		require.Equal(t, v1, res.ID)
		cfg, err := s.ws.ResolveConfig(res)
		require.NoError(t, err)
		return cfg
	}

	_, err = s.ws.ResolveContext(ctx, "api/v1")
	require.NoError(t, err)
	before := resolve()
	assert.Equal(t, "v1", before.QualifiedName)
	assert.Equal(t, "api", before.Vars["owner"])

	require.NoError(t, s.ws.Link(v1, web))
	after := resolve()
	assert.Equal(t, "v1", after.QualifiedName)
	assert.Equal(t, "web", after.Vars["owner"])
	assert.Equal(t, []string{"web"}, config.SortedNames(after.Commands))
}

func TestSession(t *testing.T) {
	s := newSandbox(t)
	api, err := s.ws.Init(s.dir(t, "api"), "api", index.RootID)
	require.NoError(t, err)
	v1, err := s.ws.Init(s.dir(t, "api", "v1"), "v1", api)
	require.NoError(t, err)

	res, err := s.ws.Session(v1)
	require.NoError(t, err)
	assert.Equal(t, contextpath.Result{ID: v1, QualifiedName: "api/v1"}, res)
	assert.Nil(t, s.ws.Index().LastUsed)

	_, err = s.ws.Session(index.ID{1})
	require.ErrorIs(t, err, index.ErrNotFound)
}

func TestWorkingDirContext(t *testing.T) {
	s := newSandbox(t)
	dir := s.dir(t, "api")
	id, err := s.ws.Init(dir, "api", index.RootID)
	require.NoError(t, err)
	nested := s.dir(t, "api", "src", "pkg")

	ws, err := Open(s.ws.ConfigDir, WithWorkingDir(func() (string, error) { return nested, nil }))
	require.NoError(t, err)
	res, err := ws.ResolveContext(context.Background(), ".")
	require.NoError(t, err)
	assert.Equal(t, id, res.ID)

	_, err = ws.ResolveContext(context.Background(), "_")
	require.ErrorIs(t, err, contextpath.ErrProjectNotFoundInCwd)
}

func TestDoctor(t *testing.T) {
	s := newSandbox(t)
	assert.Empty(t, s.ws.Doctor())

	dir := s.dir(t, "api")
	_, err := s.ws.Init(dir, "api", index.RootID)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(layout.MetaDir(dir)))

	problems := s.ws.Doctor()
	require.Len(t, problems, 1)
	assert.ErrorIs(t, problems[0], inherit.ErrConfigFileNotFound)
}
