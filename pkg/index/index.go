// Package index owns the global project graph: every registered project is a
// node keyed by an immutable identity, linked to its parent by identity.
//
// All mutations validate the graph invariants before touching it, so a
// failed call leaves the index exactly as it was:
//
//   - sibling names (entries sharing a parent) are unique, case-sensitive;
//   - only the root has no parent;
//   - following parent pointers from any entry reaches the root without
//     repeating an identity.
package index

import (
	"sort"

	"github.com/google/uuid"
)

// ID is a project identity.
type ID = uuid.UUID

// RootID is the reserved identity of the implicit root project.
var RootID = uuid.Nil

// RootName is the display name of the root project.
const RootName = "global"

// Entry is one registered project.
type Entry struct {
	Name   string
	Path   string
	Parent *ID
}

// HasParent reports whether e.Parent is set to p.
func (e Entry) HasParent(p ID) bool {
	return e.Parent != nil && *e.Parent == p
}

// GlobalIndex is the in-memory form of the global index file.
type GlobalIndex struct {
	Projects map[ID]Entry
	LastUsed *ID
}

// New returns an empty index.
func New() *GlobalIndex {
	return &GlobalIndex{Projects: make(map[ID]Entry)}
}

// Get returns the entry for id.
func (g *GlobalIndex) Get(id ID) (Entry, bool) {
	e, ok := g.Projects[id]
	return e, ok
}

// MustEntry returns the entry for id or a NotFound error.
func (g *GlobalIndex) MustEntry(id ID) (Entry, error) {
	e, ok := g.Projects[id]
	if !ok {
		return Entry{}, &NotFoundError{ID: id}
	}
	return e, nil
}

// EnsureRoot inserts the root entry if it is missing. It reports whether the
// root was created.
func (g *GlobalIndex) EnsureRoot(path string) bool {
	if g.Projects == nil {
		g.Projects = make(map[ID]Entry)
	}
	if _, ok := g.Projects[RootID]; ok {
		return false
	}
	g.Projects[RootID] = Entry{Name: RootName, Path: path}
	return true
}

// Child pairs an identity with its entry.
type Child struct {
	ID    ID
	Entry Entry
}

// Children returns the direct children of parent sorted by name.
func (g *GlobalIndex) Children(parent ID) []Child {
	var out []Child
	for id, e := range g.Projects {
		if e.HasParent(parent) {
			out = append(out, Child{ID: id, Entry: e})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Entry.Name < out[j].Entry.Name })
	return out
}

// FindChild returns the child of parent named name.
func (g *GlobalIndex) FindChild(parent ID, name string) (ID, bool) {
	for id, e := range g.Projects {
		if e.HasParent(parent) && e.Name == name {
			return id, true
		}
	}
	return ID{}, false
}

// FindByPath returns the identity registered at the canonical path.
func (g *GlobalIndex) FindByPath(path string) (ID, bool) {
	for id, e := range g.Projects {
		if e.Path == path {
			return id, true
		}
	}
	return ID{}, false
}

// Ancestors returns the identities from id up to the root, id first. It
// fails on cycles and broken parent links.
func (g *GlobalIndex) Ancestors(id ID) ([]ID, error) {
	if _, ok := g.Projects[id]; !ok {
		return nil, &NotFoundError{ID: id}
	}
	var chain []ID
	visited := make(map[ID]bool, len(g.Projects))
	cur := id
	for {
		if visited[cur] {
			return nil, &CycleError{ID: cur}
		}
		visited[cur] = true
		chain = append(chain, cur)

		e := g.Projects[cur]
		if e.Parent == nil {
			return chain, nil
		}
		if _, ok := g.Projects[*e.Parent]; !ok {
			return nil, &BrokenLinkError{Child: cur, MissingParent: *e.Parent}
		}
		cur = *e.Parent
	}
}

// QualifiedName builds the slash-joined name path of id from the graph,
// omitting the root. The root itself is named "global".
func (g *GlobalIndex) QualifiedName(id ID) (string, error) {
	chain, err := g.Ancestors(id)
	if err != nil {
		return "", err
	}
	if id == RootID {
		return RootName, nil
	}
	name := ""
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i] == RootID {
			continue
		}
		if name != "" {
			name += "/"
		}
		name += g.Projects[chain[i]].Name
	}
	return name, nil
}

// Clone returns a deep copy of the index.
func (g *GlobalIndex) Clone() *GlobalIndex {
	out := &GlobalIndex{Projects: make(map[ID]Entry, len(g.Projects))}
	for id, e := range g.Projects {
		if e.Parent != nil {
			p := *e.Parent
			e.Parent = &p
		}
		out.Projects[id] = e
	}
	if g.LastUsed != nil {
		lu := *g.LastUsed
		out.LastUsed = &lu
	}
	return out
}

func idPtr(id ID) *ID {
	return &id
}
