package index

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Retype15/axes/pkg/cachefile"
	"github.com/Retype15/axes/pkg/layout"
)

// indexFile is the on-disk shape of the global index. Identities are kept as
// strings so the file stays hand-editable.
type indexFile struct {
	LastUsed string               `toml:"last_used,omitempty"`
	Projects map[string]entryFile `toml:"projects"`
}

type entryFile struct {
	Name   string `toml:"name"`
	Path   string `toml:"path"`
	Parent string `toml:"parent,omitempty"`
}

// ScaffoldFunc creates the on-disk files of a freshly created root entry.
type ScaffoldFunc func(root Entry) error

// Store reads and writes the global index file.
type Store struct {
	path     string
	rootDir  string
	scaffold ScaffoldFunc
	logger   zerolog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithRootScaffold sets the hook run when Load has to create the root entry.
func WithRootScaffold(fn ScaffoldFunc) StoreOption {
	return func(s *Store) { s.scaffold = fn }
}

// WithLogger sets the store logger.
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// NewStore returns a store for the index file inside configDir. The root
// project lives at configDir too.
func NewStore(configDir string, opts ...StoreOption) *Store {
	s := &Store{
		path:    filepath.Join(configDir, layout.IndexFileName),
		rootDir: configDir,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "index.store").Logger()
	return s
}

// Path returns the index file path.
func (s *Store) Path() string {
	return s.path
}

// RootDir returns the directory of the root project.
func (s *Store) RootDir() string {
	return s.rootDir
}

// Read parses the index file. A missing file yields an empty index.
func (s *Store) Read() (*GlobalIndex, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("read index: %w", err)
	}
	return Decode(s.path, data)
}

// Load reads the index and makes sure the root entry exists. When the root
// has to be created, its scaffolding is written and the index persisted.
func (s *Store) Load() (*GlobalIndex, error) {
	g, err := s.Read()
	if err != nil {
		return nil, err
	}
	if err := s.EnsureRoot(g); err != nil {
		return nil, err
	}
	return g, nil
}

// EnsureRoot inserts the root entry into g if missing, scaffolds it and
// persists g. It is a no-op when the root already exists.
func (s *Store) EnsureRoot(g *GlobalIndex) error {
	if !g.EnsureRoot(s.rootDir) {
		return nil
	}
	s.logger.Warn().Str("path", s.rootDir).Msg("global project missing from index, creating it")
	if s.scaffold != nil {
		if err := s.scaffold(g.Projects[RootID]); err != nil {
			return fmt.Errorf("ensure root: scaffold: %w", err)
		}
	}
	return s.Save(g)
}

// Save overwrites the index file with g. Concurrent writers are not merged;
// the last one wins.
func (s *Store) Save(g *GlobalIndex) error {
	data, err := Encode(g)
	if err != nil {
		return err
	}
	if err := cachefile.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	return nil
}

// Decode parses index file contents; path is only used for error context.
func Decode(path string, data []byte) (*GlobalIndex, error) {
	var f indexFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	g := New()
	for key, ef := range f.Projects {
		id, err := uuid.Parse(key)
		if err != nil {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("project key %q: %w", key, err)}
		}
		e := Entry{Name: ef.Name, Path: ef.Path}
		if ef.Parent != "" {
			p, err := uuid.Parse(ef.Parent)
			if err != nil {
				return nil, &ParseError{Path: path, Err: fmt.Errorf("project %q parent: %w", key, err)}
			}
			e.Parent = &p
		}
		g.Projects[id] = e
	}
	if f.LastUsed != "" {
		lu, err := uuid.Parse(f.LastUsed)
		if err != nil {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("last_used: %w", err)}
		}
		g.LastUsed = &lu
	}
	return g, nil
}

// Encode renders g in the index file format.
func Encode(g *GlobalIndex) ([]byte, error) {
	f := indexFile{Projects: make(map[string]entryFile, len(g.Projects))}
	for id, e := range g.Projects {
		ef := entryFile{Name: e.Name, Path: e.Path}
		if e.Parent != nil {
			ef.Parent = e.Parent.String()
		}
		f.Projects[id.String()] = ef
	}
	if g.LastUsed != nil {
		f.LastUsed = g.LastUsed.String()
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return nil, fmt.Errorf("encode index: %w", err)
	}
	return buf.Bytes(), nil
}
