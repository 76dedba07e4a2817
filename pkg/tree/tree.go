// Package tree draws the project graph as an indented ASCII tree.
package tree

import (
	"fmt"
	"io"

	"github.com/gobwas/glob"

	"github.com/Retype15/axes/pkg/index"
)

// Options controls Render.
type Options struct {
	// From is the subtree root; the zero value is the global root.
	From index.ID

	// Filter is a glob over qualified names such as "api/*". Matching nodes
	// are shown together with their ancestors. Empty shows everything.
	Filter string

	// Paths appends each project's directory.
	Paths bool
}

// Render writes the tree under opts.From to w and returns the number of
// projects drawn. The global last-used project is marked with (**).
func Render(w io.Writer, g *index.GlobalIndex, opts Options) (int, error) {
	if _, err := g.MustEntry(opts.From); err != nil {
		return 0, err
	}

	var keep map[index.ID]bool
	if opts.Filter != "" {
		m, err := glob.Compile(opts.Filter, '/')
		if err != nil {
			return 0, fmt.Errorf("tree filter %q: %w", opts.Filter, err)
		}
		keep = matching(g, opts.From, m)
		if len(keep) == 0 {
			return 0, nil
		}
	}

	r := &renderer{w: w, g: g, opts: opts, keep: keep, seen: map[index.ID]bool{}}
	r.line("", "", opts.From)
	r.children("", opts.From)
	return r.count, r.err
}

// matching returns the nodes under from whose qualified name matches m,
// plus every ancestor of theirs up to from.
func matching(g *index.GlobalIndex, from index.ID, m glob.Glob) map[index.ID]bool {
	keep := map[index.ID]bool{}
	candidates := append([]index.ID{from}, g.Descendants(from)...)
	for _, id := range candidates {
		name, err := g.QualifiedName(id)
		if err != nil || !m.Match(name) {
			continue
		}
		chain, err := g.Ancestors(id)
		if err != nil {
			continue
		}
		for _, a := range chain {
			keep[a] = true
			if a == from {
				break
			}
		}
	}
	return keep
}

type renderer struct {
	w     io.Writer
	g     *index.GlobalIndex
	opts  Options
	keep  map[index.ID]bool
	seen  map[index.ID]bool
	count int
	err   error
}

func (r *renderer) line(prefix, connector string, id index.ID) {
	if r.err != nil {
		return
	}
	e := r.g.Projects[id]
	s := prefix + connector + e.Name
	if r.opts.Paths {
		s += " [" + e.Path + "]"
	}
	if r.g.LastUsed != nil && *r.g.LastUsed == id {
		s += " (**)"
	}
	_, r.err = fmt.Fprintln(r.w, s)
	r.count++
}

func (r *renderer) children(prefix string, parent index.ID) {
	if r.seen[parent] {
		return
	}
	r.seen[parent] = true

	var kids []index.Child
	for _, c := range r.g.Children(parent) {
		if r.keep == nil || r.keep[c.ID] {
			kids = append(kids, c)
		}
	}
	for i, c := range kids {
		last := i == len(kids)-1
		connector, next := "├─ ", "│  "
		if last {
			connector, next = "└─ ", "   "
		}
		r.line(prefix, connector, c.ID)
		r.children(prefix+next, c.ID)
	}
}
