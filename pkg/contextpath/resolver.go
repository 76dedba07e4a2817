// Package contextpath resolves the path-like context strings users type to
// address projects, such as "api/v1", "global", "**", "./*" or "api/..".
//
// The first segment may be:
//
//	**       the project used last, system wide
//	.        the registered project at or above the working directory
//	_        the registered project at the working directory only
//	global   the root project
//	name     a child of the root
//
// Later segments are a child name, ".." for the parent, or "*" for the child
// last used through the current project.
package contextpath

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Retype15/axes/pkg/cachefile"
	"github.com/Retype15/axes/pkg/index"
	"github.com/Retype15/axes/pkg/interrupt"
	"github.com/Retype15/axes/pkg/layout"
	"github.com/Retype15/axes/pkg/prompt"
)

// Selector asks the user to pick one of items. Declining returns
// ErrCancelled.
type Selector interface {
	Select(ctx context.Context, question string, items []string) (int, error)
}

// Saver persists the global index.
type Saver interface {
	Save(g *index.GlobalIndex) error
}

// Result is a resolved context.
type Result struct {
	ID            index.ID
	QualifiedName string
}

// Resolver resolves contexts against one loaded index.
type Resolver struct {
	g           *index.GlobalIndex
	saver       Saver
	selector    Selector
	cwd         func() (string, error)
	interrupted func() bool
	logger      zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSelector sets the collaborator used when '*' has no usable record.
func WithSelector(s Selector) Option {
	return func(r *Resolver) { r.selector = s }
}

// WithWorkingDir overrides how '.' and '_' find the working directory.
func WithWorkingDir(fn func() (string, error)) Option {
	return func(r *Resolver) { r.cwd = fn }
}

// WithInterrupted sets the hook checked after the selector returns.
func WithInterrupted(fn func() bool) Option {
	return func(r *Resolver) { r.interrupted = fn }
}

// WithLogger sets the resolver logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// New returns a Resolver over g that persists the global last-used project
// through saver.
func New(g *index.GlobalIndex, saver Saver, opts ...Option) *Resolver {
	r := &Resolver{
		g:           g,
		saver:       saver,
		cwd:         os.Getwd,
		interrupted: func() bool { return false },
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With().Str("component", "contextpath").Logger()
	return r
}

// Resolve turns path into a project identity and its qualified name. On
// success the global last-used project becomes the result and every ancestor
// records its child on the way down as its last-used child.
func (r *Resolver) Resolve(ctx context.Context, path string) (Result, error) {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return Result{}, ErrEmptyContext
	}

	cur, err := r.first(parts[0])
	if err != nil {
		return Result{}, err
	}
	names := []string{r.g.Projects[cur].Name}

	for _, part := range parts[1:] {
		switch part {
		case "**":
			return Result{}, ErrGlobalRecentNotAtStart
		case ".", "_":
			return Result{}, ErrLocalPathNotAtStart
		case "..":
			e := r.g.Projects[cur]
			if e.Parent == nil {
				return Result{}, ErrAlreadyAtRoot
			}
			parent, err := r.g.MustEntry(*e.Parent)
			if err != nil {
				return Result{}, &index.BrokenLinkError{Child: cur, MissingParent: *e.Parent}
			}
			cur = *e.Parent
			names = names[:len(names)-1]
			if len(names) == 0 {
				names = append(names, parent.Name)
			}
		case "*":
			child, err := r.lastUsedChild(ctx, cur)
			if err != nil {
				return Result{}, err
			}
			cur = child
			names = append(names, r.g.Projects[cur].Name)
		default:
			child, ok := r.g.FindChild(cur, part)
			if !ok {
				return Result{}, &ChildProjectNotFoundError{Child: part, Parent: r.g.Projects[cur].Name}
			}
			cur = child
			names = append(names, part)
		}
	}

	if err := r.recordUse(cur); err != nil {
		return Result{}, err
	}
	return Result{ID: cur, QualifiedName: strings.Join(names, "/")}, nil
}

func (r *Resolver) first(part string) (index.ID, error) {
	switch part {
	case "**":
		if r.g.LastUsed == nil {
			return index.ID{}, ErrNoLastUsedProject
		}
		id := *r.g.LastUsed
		if _, ok := r.g.Get(id); !ok {
			return index.ID{}, ErrNoLastUsedProject
		}
		return id, nil
	case ".":
		return r.fromWorkingDir(true)
	case "_":
		return r.fromWorkingDir(false)
	case index.RootName:
		if _, err := r.g.MustEntry(index.RootID); err != nil {
			return index.ID{}, err
		}
		return index.RootID, nil
	default:
		id, ok := r.g.FindChild(index.RootID, part)
		if !ok {
			return index.ID{}, &RootProjectNotFoundError{Name: part}
		}
		return id, nil
	}
}

// fromWorkingDir maps the working directory, or with searchUp the nearest
// ancestor directory holding a project marker, to its registered identity.
// Marked but unregistered directories are skipped.
func (r *Resolver) fromWorkingDir(searchUp bool) (index.ID, error) {
	notFound := ErrProjectNotFoundInCwd
	if searchUp {
		notFound = ErrProjectNotFoundFromPath
	}
	wd, err := r.cwd()
	if err != nil {
		return index.ID{}, err
	}
	dir, err := filepath.Abs(wd)
	if err != nil {
		return index.ID{}, err
	}

	for {
		if layout.HasMarker(dir) {
			canonical, err := layout.Canonical(dir)
			if err != nil {
				return index.ID{}, err
			}
			if id, ok := r.g.FindByPath(canonical); ok {
				return id, nil
			}
		}
		parent := filepath.Dir(dir)
		if !searchUp || parent == dir {
			return index.ID{}, notFound
		}
		dir = parent
	}
}

// lastUsedChild resolves '*' under parent: the recorded child if it is still
// a child, otherwise whichever child the user picks.
func (r *Resolver) lastUsedChild(ctx context.Context, parent index.ID) (index.ID, error) {
	pe := r.g.Projects[parent]

	rec, err := ReadLastUsedChild(pe.Path)
	switch {
	case err == nil:
		if rec.ChildUUID != nil {
			if ce, ok := r.g.Get(*rec.ChildUUID); ok && ce.HasParent(parent) {
				return *rec.ChildUUID, nil
			}
			r.logger.Debug().Str("parent", pe.Name).Msg("last used child is stale")
		}
	case os.IsNotExist(err):
	case errors.Is(err, cachefile.ErrCorrupt):
		r.logger.Warn().Err(err).Str("parent", pe.Name).Msg("last used child record corrupt, removing it")
		_ = os.Remove(layout.LastUsedPath(pe.Path))
	default:
		r.logger.Warn().Err(err).Str("parent", pe.Name).Msg("last used child record unreadable")
	}

	children := r.g.Children(parent)
	if len(children) == 0 {
		return index.ID{}, &NoLastUsedChildError{Parent: pe.Name}
	}
	if r.selector == nil {
		return index.ID{}, fmt.Errorf("resolve '*' under %q: %w", pe.Name, prompt.ErrNotInteractive)
	}

	r.logger.Info().Str("parent", pe.Name).Msg("no last used child, asking")
	items := make([]string, len(children))
	for i, c := range children {
		items[i] = c.Entry.Name
	}
	i, err := r.selector.Select(ctx, "Project '"+pe.Name+"' has no recently used child. Pick one:", items)
	if r.interrupted() {
		return index.ID{}, interrupt.ErrInterrupted
	}
	if err != nil {
		return index.ID{}, err
	}
	if i < 0 || i >= len(children) {
		return index.ID{}, ErrCancelled
	}
	return children[i].ID, nil
}

// recordUse makes id the global last-used project and points every ancestor's
// last-used-child record at the next project down.
func (r *Resolver) recordUse(id index.ID) error {
	r.g.LastUsed = &id
	if err := r.saver.Save(r.g); err != nil {
		return err
	}

	chain, err := r.g.Ancestors(id)
	if err != nil {
		r.logger.Warn().Err(err).Msg("cannot walk ancestors to record last used children")
		return nil
	}
	for i := 1; i < len(chain); i++ {
		parent := r.g.Projects[chain[i]]
		if err := WriteLastUsedChild(parent.Path, chain[i-1]); err != nil {
			r.logger.Warn().Err(err).Str("parent", parent.Name).Msg("could not record last used child")
		}
	}
	return nil
}
