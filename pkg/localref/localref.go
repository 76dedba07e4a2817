// Package localref keeps the per-project identity mirror in
// .axes/project_ref.bin. The global index is authoritative; the mirror only
// lets a moved or re-registered directory find its old identity again.
package localref

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/Retype15/axes/pkg/cachefile"
	"github.com/Retype15/axes/pkg/index"
	"github.com/Retype15/axes/pkg/layout"
)

// ProjectRef mirrors the index entry of the project it sits in.
type ProjectRef struct {
	SelfUUID   index.ID
	ParentUUID *index.ID
	Name       string
}

// FromEntry builds the mirror of entry id.
func FromEntry(id index.ID, e index.Entry) ProjectRef {
	ref := ProjectRef{SelfUUID: id, Name: e.Name}
	if e.Parent != nil {
		p := *e.Parent
		ref.ParentUUID = &p
	}
	return ref
}

func (r ProjectRef) equal(o ProjectRef) bool {
	if r.SelfUUID != o.SelfUUID || r.Name != o.Name {
		return false
	}
	if (r.ParentUUID == nil) != (o.ParentUUID == nil) {
		return false
	}
	return r.ParentUUID == nil || *r.ParentUUID == *o.ParentUUID
}

// Store reads and writes mirrors.
type Store struct {
	logger zerolog.Logger
}

// NewStore returns a Store logging through logger.
func NewStore(logger zerolog.Logger) *Store {
	return &Store{logger: logger.With().Str("component", "localref").Logger()}
}

// Read loads the mirror under root. Missing files satisfy os.IsNotExist;
// undecodable ones wrap cachefile.ErrCorrupt.
func (s *Store) Read(root string) (ProjectRef, error) {
	var ref ProjectRef
	if err := cachefile.Read(layout.ProjectRefPath(root), &ref); err != nil {
		return ProjectRef{}, err
	}
	return ref, nil
}

// Write overwrites the mirror under root.
func (s *Store) Write(root string, ref ProjectRef) error {
	if err := cachefile.Write(layout.ProjectRefPath(root), ref); err != nil {
		return fmt.Errorf("write project ref: %w", err)
	}
	return nil
}

// GetOrCreate returns the mirror of id rebuilt from g whenever the file under
// root is missing, unreadable or disagrees with the index. Rewriting it is
// best effort: a failed write is logged and the rebuilt value still returned.
func (s *Store) GetOrCreate(root string, id index.ID, g *index.GlobalIndex) (ProjectRef, error) {
	e, err := g.MustEntry(id)
	if err != nil {
		return ProjectRef{}, fmt.Errorf("project ref: %w", err)
	}
	want := FromEntry(id, e)

	have, err := s.Read(root)
	switch {
	case err == nil && have.equal(want):
		return have, nil
	case err == nil:
		s.logger.Debug().Str("root", root).Msg("project ref out of date, rebuilding")
	case os.IsNotExist(err):
		s.logger.Debug().Str("root", root).Msg("project ref missing, rebuilding")
	case errors.Is(err, cachefile.ErrCorrupt):
		s.logger.Warn().Err(err).Str("root", root).Msg("project ref corrupt, rebuilding")
	default:
		s.logger.Warn().Err(err).Str("root", root).Msg("project ref unreadable, rebuilding")
	}

	if err := s.Write(root, want); err != nil {
		s.logger.Warn().Err(err).Str("root", root).Msg("could not write project ref")
	}
	return want, nil
}

// Sync rewrites the mirror of id from g. Callers treat failure as a warning.
func (s *Store) Sync(id index.ID, g *index.GlobalIndex) error {
	e, err := g.MustEntry(id)
	if err != nil {
		return fmt.Errorf("sync project ref: %w", err)
	}
	return s.Write(e.Path, FromEntry(id, e))
}
