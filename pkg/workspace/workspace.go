// Package workspace ties the global index, the context resolver, the config
// engine and the local identity mirrors together into the operations the
// axes command line exposes.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/Retype15/axes/pkg/config"
	"github.com/Retype15/axes/pkg/contextpath"
	"github.com/Retype15/axes/pkg/index"
	"github.com/Retype15/axes/pkg/inherit"
	"github.com/Retype15/axes/pkg/layout"
	"github.com/Retype15/axes/pkg/localref"
)

var (
	ErrAlreadyInitialized = errors.New("project already initialized")
	ErrNoProjectConfig    = errors.New("directory holds no project config")
	ErrAlreadyRegistered  = errors.New("directory already registered")
	ErrHasChildren        = errors.New("project has children")
)

// Workspace is an opened global index plus the services that work on it.
type Workspace struct {
	ConfigDir string

	g      *index.GlobalIndex
	store  *index.Store
	refs   *localref.Store
	engine *inherit.Engine
	logger zerolog.Logger

	selector    contextpath.Selector
	cwd         func() (string, error)
	interrupted func() bool
	noCache     bool
}

// Option configures Open.
type Option func(*Workspace)

// WithLogger sets the logger handed to every service.
func WithLogger(logger zerolog.Logger) Option {
	return func(w *Workspace) { w.logger = logger }
}

// WithSelector sets who is asked when '*' has no usable record.
func WithSelector(s contextpath.Selector) Option {
	return func(w *Workspace) { w.selector = s }
}

// WithWorkingDir overrides the working directory lookup used by '.' and '_'.
func WithWorkingDir(fn func() (string, error)) Option {
	return func(w *Workspace) { w.cwd = fn }
}

// WithInterrupted sets the hook polled after interactive prompts.
func WithInterrupted(fn func() bool) Option {
	return func(w *Workspace) { w.interrupted = fn }
}

// WithoutCacheReads makes config resolution ignore existing caches.
func WithoutCacheReads() Option {
	return func(w *Workspace) { w.noCache = true }
}

// Open loads the global index under configDir, creating the directory and the
// root project on first use.
func Open(configDir string, opts ...Option) (*Workspace, error) {
	w := &Workspace{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(w)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("open: mkdir %s: %w", configDir, err)
	}
	dir, err := layout.Canonical(configDir)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	w.ConfigDir = dir

	w.refs = localref.NewStore(w.logger)
	w.store = index.NewStore(dir, index.WithLogger(w.logger), index.WithRootScaffold(w.scaffoldRoot))

	engineOpts := []inherit.Option{inherit.WithLogger(w.logger)}
	if w.noCache {
		engineOpts = append(engineOpts, inherit.WithoutCacheReads())
	}
	w.engine = inherit.NewEngine(engineOpts...)

	g, err := w.store.Load()
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	w.g = g
	return w, nil
}

func (w *Workspace) scaffoldRoot(root index.Entry) error {
	path := layout.ConfigPath(root.Path)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := config.Write(path, config.DefaultForHost()); err != nil {
			return err
		}
	}
	return w.refs.Write(root.Path, localref.FromEntry(index.RootID, root))
}

// Index returns the loaded graph. Callers must not mutate it directly.
func (w *Workspace) Index() *index.GlobalIndex {
	return w.g
}

// IndexPath returns the location of the global index file.
func (w *Workspace) IndexPath() string {
	return w.store.Path()
}

// ResolveContext resolves a context string and records it as used.
func (w *Workspace) ResolveContext(ctx context.Context, path string) (contextpath.Result, error) {
	opts := []contextpath.Option{contextpath.WithLogger(w.logger)}
	if w.selector != nil {
		opts = append(opts, contextpath.WithSelector(w.selector))
	}
	if w.cwd != nil {
		opts = append(opts, contextpath.WithWorkingDir(w.cwd))
	}
	if w.interrupted != nil {
		opts = append(opts, contextpath.WithInterrupted(w.interrupted))
	}
	return contextpath.New(w.g, w.store, opts...).Resolve(ctx, path)
}

// Session addresses id by the name the graph gives it, without recording use.
func (w *Workspace) Session(id index.ID) (contextpath.Result, error) {
	name, err := w.g.QualifiedName(id)
	if err != nil {
		return contextpath.Result{}, fmt.Errorf("session project: %w", err)
	}
	return contextpath.Result{ID: id, QualifiedName: name}, nil
}

// ResolveConfig returns the effective configuration of a resolved context and
// heals the project's identity mirror on the way.
func (w *Workspace) ResolveConfig(r contextpath.Result) (*inherit.Config, error) {
	cfg, err := w.engine.Resolve(r.ID, r.QualifiedName, w.g)
	if err != nil {
		return nil, err
	}
	if _, err := w.refs.GetOrCreate(cfg.ProjectRoot, r.ID, w.g); err != nil {
		w.logger.Warn().Err(err).Str("project", r.QualifiedName).Msg("project ref check failed")
	}
	return cfg, nil
}

// Init creates .axes/axes.toml in dir and registers it as name under parent.
// dir must not already hold a metadata directory.
func (w *Workspace) Init(dir, name string, parent index.ID) (index.ID, error) {
	if _, err := os.Stat(layout.MetaDir(dir)); err == nil {
		return index.ID{}, fmt.Errorf("init: %w at %s", ErrAlreadyInitialized, layout.MetaDir(dir))
	}
	root, err := layout.Canonical(dir)
	if err != nil {
		return index.ID{}, fmt.Errorf("init: %w", err)
	}
	if id, ok := w.g.FindByPath(root); ok {
		return index.ID{}, fmt.Errorf("init: %w as %s", ErrAlreadyRegistered, id)
	}

	id, err := w.g.Add(name, root, &parent)
	if err != nil {
		return index.ID{}, fmt.Errorf("init: %w", err)
	}
	if err := config.Write(layout.ConfigPath(root), config.DefaultForHost()); err != nil {
		if _, rmErr := w.g.Remove([]index.ID{id}, false); rmErr != nil {
			w.logger.Warn().Err(rmErr).Str("uuid", id.String()).Msg("could not roll back index entry")
		}
		_ = os.RemoveAll(layout.MetaDir(root))
		return index.ID{}, fmt.Errorf("init: %w", err)
	}
	if err := w.refs.Sync(id, w.g); err != nil {
		w.logger.Warn().Err(err).Str("path", root).Msg("could not write project ref")
	}
	if err := w.store.Save(w.g); err != nil {
		return index.ID{}, fmt.Errorf("init: %w", err)
	}
	return id, nil
}

// Registration describes the outcome of Register.
type Registration struct {
	ID        index.ID
	Name      string
	Parent    index.ID
	Relocated bool
}

// Register adds an existing project directory to the index. A directory
// whose identity mirror names a registered project moves that project here
// instead. With autosolve, a sibling name collision is avoided by appending
// -2, -3 and so on.
func (w *Workspace) Register(dir string, autosolve bool) (Registration, error) {
	root, err := layout.Canonical(dir)
	if err != nil {
		return Registration{}, fmt.Errorf("register: %w", err)
	}
	if !layout.HasMarker(root) {
		return Registration{}, fmt.Errorf("register: %w: %s", ErrNoProjectConfig, layout.ConfigPath(root))
	}
	if id, ok := w.g.FindByPath(root); ok {
		return Registration{}, fmt.Errorf("register: %w as %s", ErrAlreadyRegistered, id)
	}

	ref, err := w.refs.Read(root)
	haveRef := err == nil
	if err != nil && !os.IsNotExist(err) {
		w.logger.Warn().Err(err).Str("path", root).Msg("ignoring unreadable project ref")
	}

	if haveRef && ref.SelfUUID != index.RootID {
		if e, ok := w.g.Get(ref.SelfUUID); ok {
			parent := index.RootID
			if e.Parent != nil {
				parent = *e.Parent
			}
			w.logger.Info().Str("from", e.Path).Str("to", root).Msg("relocating registered project")
			e.Path = root
			w.g.Projects[ref.SelfUUID] = e
			if err := w.store.Save(w.g); err != nil {
				return Registration{}, fmt.Errorf("register: %w", err)
			}
			w.syncRef(ref.SelfUUID)
			return Registration{ID: ref.SelfUUID, Name: e.Name, Parent: parent, Relocated: true}, nil
		}
	}

	parent := index.RootID
	name := filepath.Base(root)
	if haveRef {
		if ref.ParentUUID != nil {
			if _, ok := w.g.Get(*ref.ParentUUID); ok {
				parent = *ref.ParentUUID
			}
		}
		if ref.Name != "" {
			name = ref.Name
		}
	}
	if autosolve {
		name = w.freeName(parent, name)
	}

	id, err := w.g.Add(name, root, &parent)
	if err != nil {
		return Registration{}, fmt.Errorf("register: %w", err)
	}
	if err := w.store.Save(w.g); err != nil {
		return Registration{}, fmt.Errorf("register: %w", err)
	}
	w.syncRef(id)
	return Registration{ID: id, Name: name, Parent: parent}, nil
}

func (w *Workspace) freeName(parent index.ID, name string) string {
	if _, taken := w.g.FindChild(parent, name); !taken {
		return name
	}
	for n := 2; ; n++ {
		candidate := name + "-" + strconv.Itoa(n)
		if _, taken := w.g.FindChild(parent, candidate); !taken {
			return candidate
		}
	}
}

// Rename gives id a new name among its siblings.
func (w *Workspace) Rename(id index.ID, newName string) error {
	if err := w.g.Rename(id, newName); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	if err := w.store.Save(w.g); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	w.syncRef(id)
	return nil
}

// Link moves id under newParent.
func (w *Workspace) Link(id, newParent index.ID) error {
	if err := w.g.Link(id, newParent); err != nil {
		return fmt.Errorf("link: %w", err)
	}
	if err := w.store.Save(w.g); err != nil {
		return fmt.Errorf("link: %w", err)
	}
	w.syncRef(id)
	return nil
}

func (w *Workspace) syncRef(id index.ID) {
	if err := w.refs.Sync(id, w.g); err != nil {
		w.logger.Warn().Err(err).Str("uuid", id.String()).Msg("could not update project ref")
	}
}

// Affected lists id and, with withChildren, every descendant, as Unregister
// and Delete would remove them.
func (w *Workspace) Affected(id index.ID, withChildren bool) ([]index.Child, error) {
	e, err := w.g.MustEntry(id)
	if err != nil {
		return nil, err
	}
	out := []index.Child{{ID: id, Entry: e}}
	if withChildren {
		var rest []index.Child
		for _, d := range w.g.Descendants(id) {
			rest = append(rest, index.Child{ID: d, Entry: w.g.Projects[d]})
		}
		sort.Slice(rest, func(i, j int) bool { return rest[i].Entry.Path < rest[j].Entry.Path })
		out = append(out, rest...)
	}
	return out, nil
}

// Unregister removes projects from the index without touching their files.
// Without withChildren the direct children of id move under the root.
func (w *Workspace) Unregister(id index.ID, withChildren bool) ([]index.Child, error) {
	affected, err := w.Affected(id, withChildren)
	if err != nil {
		return nil, fmt.Errorf("unregister: %w", err)
	}
	orphans := w.g.Children(id)
	if _, err := w.g.Remove(ids(affected), !withChildren); err != nil {
		return nil, fmt.Errorf("unregister: %w", err)
	}
	if err := w.store.Save(w.g); err != nil {
		return nil, fmt.Errorf("unregister: %w", err)
	}
	if !withChildren {
		for _, c := range orphans {
			w.syncRef(c.ID)
		}
	}
	return affected, nil
}

// Delete removes the metadata directory of id (and of every descendant with
// withChildren) and then unregisters them. Nothing is reparented, so without
// withChildren a project that still has children is refused.
func (w *Workspace) Delete(id index.ID, withChildren bool) ([]index.Child, error) {
	affected, err := w.Affected(id, withChildren)
	if err != nil {
		return nil, fmt.Errorf("delete: %w", err)
	}
	if id == index.RootID {
		return nil, fmt.Errorf("delete: %w", index.ErrRootImmutable)
	}
	if !withChildren && len(w.g.Children(id)) > 0 {
		return nil, fmt.Errorf("delete %q: %w", affected[0].Entry.Name, ErrHasChildren)
	}

	for _, c := range affected {
		meta := layout.MetaDir(c.Entry.Path)
		if err := os.RemoveAll(meta); err != nil {
			w.logger.Warn().Err(err).Str("path", meta).Msg("could not purge metadata directory")
		}
	}
	if _, err := w.g.Remove(ids(affected), false); err != nil {
		return nil, fmt.Errorf("delete: %w", err)
	}
	if err := w.store.Save(w.g); err != nil {
		return nil, fmt.Errorf("delete: %w", err)
	}
	return affected, nil
}

func ids(children []index.Child) []index.ID {
	out := make([]index.ID, len(children))
	for i, c := range children {
		out[i] = c.ID
	}
	return out
}

// Doctor reports graph problems plus registered projects whose config file
// is gone.
func (w *Workspace) Doctor() []error {
	problems := w.g.Validate()

	idsByPath := make([]index.ID, 0, len(w.g.Projects))
	for id := range w.g.Projects {
		idsByPath = append(idsByPath, id)
	}
	sort.Slice(idsByPath, func(i, j int) bool {
		return w.g.Projects[idsByPath[i]].Path < w.g.Projects[idsByPath[j]].Path
	})
	for _, id := range idsByPath {
		e := w.g.Projects[id]
		if !layout.HasMarker(e.Path) {
			problems = append(problems, &inherit.ConfigFileNotFoundError{Name: e.Name, Path: layout.ConfigPath(e.Path)})
		}
	}
	return problems
}
