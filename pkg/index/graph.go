package index

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var reservedNames = map[string]bool{
	RootName: true,
	".":      true,
	"..":     true,
	"*":      true,
	"_":      true,
	"**":     true,
}

// ValidateName rejects names the context grammar could not address.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if name != strings.TrimSpace(name) {
		return fmt.Errorf("%w: %q has surrounding whitespace", ErrInvalidName, name)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}
	if reservedNames[strings.ToLower(name)] {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	}
	return nil
}

// Add registers a new project named name at path under parent, or under the
// root when parent is nil, and returns its freshly minted identity.
func (g *GlobalIndex) Add(name, path string, parent *ID) (ID, error) {
	if err := ValidateName(name); err != nil {
		return ID{}, err
	}
	p := RootID
	if parent != nil {
		p = *parent
	}
	if _, ok := g.Projects[p]; !ok {
		return ID{}, fmt.Errorf("add %q: parent: %w", name, &NotFoundError{ID: p})
	}
	if g.siblingNamed(p, name, nil) {
		return ID{}, &NameCollisionError{Name: name, Parent: p}
	}

	id := g.mint()
	g.Projects[id] = Entry{Name: name, Path: path, Parent: idPtr(p)}
	return id, nil
}

// Rename changes only the name of id.
func (g *GlobalIndex) Rename(id ID, newName string) error {
	if id == RootID {
		return ErrRootImmutable
	}
	e, err := g.MustEntry(id)
	if err != nil {
		return err
	}
	if err := ValidateName(newName); err != nil {
		return err
	}
	if e.Parent != nil && g.siblingNamed(*e.Parent, newName, &id) {
		return &NameCollisionError{Name: newName, Parent: *e.Parent}
	}
	e.Name = newName
	g.Projects[id] = e
	return nil
}

// Link re-parents id under newParent. It refuses to move the root, to create
// a cycle, or to collide with a sibling name under newParent.
func (g *GlobalIndex) Link(id, newParent ID) error {
	if id == RootID {
		return ErrRootImmutable
	}
	e, err := g.MustEntry(id)
	if err != nil {
		return err
	}
	if _, ok := g.Projects[newParent]; !ok {
		return fmt.Errorf("link: new parent: %w", &NotFoundError{ID: newParent})
	}

	// Walking up from the new parent must never meet id, otherwise id would
	// become its own ancestor.
	visited := make(map[ID]bool, len(g.Projects))
	cur := newParent
	for {
		if cur == id {
			return &CycleError{ID: id}
		}
		if visited[cur] {
			return &CycleError{ID: cur}
		}
		visited[cur] = true
		ce := g.Projects[cur]
		if ce.Parent == nil {
			break
		}
		if _, ok := g.Projects[*ce.Parent]; !ok {
			return &BrokenLinkError{Child: cur, MissingParent: *ce.Parent}
		}
		cur = *ce.Parent
	}

	if g.siblingNamed(newParent, e.Name, &id) {
		return &NameCollisionError{Name: e.Name, Parent: newParent}
	}
	e.Parent = idPtr(newParent)
	g.Projects[id] = e
	return nil
}

// Remove deletes ids from the index and returns how many entries existed.
// With reparentOrphans, surviving entries whose parent was removed are moved
// under the root; otherwise the caller must include every descendant.
func (g *GlobalIndex) Remove(ids []ID, reparentOrphans bool) (int, error) {
	removed := make(map[ID]bool, len(ids))
	for _, id := range ids {
		if id == RootID {
			return 0, ErrRootImmutable
		}
		removed[id] = true
	}

	count := 0
	for id := range removed {
		if _, ok := g.Projects[id]; ok {
			delete(g.Projects, id)
			count++
		}
	}

	if reparentOrphans {
		for id, e := range g.Projects {
			if e.Parent != nil && removed[*e.Parent] {
				e.Parent = idPtr(RootID)
				g.Projects[id] = e
			}
		}
	}
	if g.LastUsed != nil && removed[*g.LastUsed] {
		g.LastUsed = nil
	}
	return count, nil
}

// Descendants returns the transitive children of id in no particular order.
func (g *GlobalIndex) Descendants(id ID) []ID {
	children := make(map[ID][]ID)
	for cid, e := range g.Projects {
		if e.Parent != nil {
			children[*e.Parent] = append(children[*e.Parent], cid)
		}
	}

	var out []ID
	seen := map[ID]bool{id: true}
	queue := []ID{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range children[cur] {
			if seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
			queue = append(queue, c)
		}
	}
	return out
}

// CheckCycle walks parents from start. It returns nil when the walk reaches
// the root, a *CycleError naming the first repeated identity, or a
// *BrokenLinkError for a dangling parent pointer.
func (g *GlobalIndex) CheckCycle(start ID) error {
	if _, ok := g.Projects[start]; !ok {
		return &NotFoundError{ID: start}
	}
	visited := make(map[ID]bool)
	cur := start
	for {
		if visited[cur] {
			return &CycleError{ID: cur}
		}
		visited[cur] = true
		e := g.Projects[cur]
		if e.Parent == nil {
			return nil
		}
		if _, ok := g.Projects[*e.Parent]; !ok {
			return &BrokenLinkError{Child: cur, MissingParent: *e.Parent}
		}
		cur = *e.Parent
	}
}

// Validate runs CheckCycle from every entry and returns the distinct
// problems found, plus any non-root entry without a parent.
func (g *GlobalIndex) Validate() []error {
	var errs []error
	seen := make(map[string]bool)
	ids := make([]ID, 0, len(g.Projects))
	for id := range g.Projects {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, id := range ids {
		e := g.Projects[id]
		if id != RootID && e.Parent == nil {
			err := fmt.Errorf("project %q (%s) has no parent", e.Name, id)
			errs = append(errs, err)
			continue
		}
		if err := g.CheckCycle(id); err != nil && !seen[err.Error()] {
			seen[err.Error()] = true
			errs = append(errs, err)
		}
	}
	return errs
}

func (g *GlobalIndex) siblingNamed(parent ID, name string, except *ID) bool {
	for id, e := range g.Projects {
		if except != nil && id == *except {
			continue
		}
		if e.HasParent(parent) && e.Name == name {
			return true
		}
	}
	return false
}

func (g *GlobalIndex) mint() ID {
	for {
		id := uuid.New()
		if _, taken := g.Projects[id]; !taken && id != RootID {
			return id
		}
	}
}
