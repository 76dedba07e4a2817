package inherit

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/Retype15/axes/pkg/config"
	"github.com/Retype15/axes/pkg/index"
	"github.com/Retype15/axes/pkg/layout"
)

// Member is one link of an ancestor chain.
type Member struct {
	ID         index.ID
	Entry      index.Entry
	ConfigPath string
	ModTime    int64
	Raw        *config.RawProjectConfig
}

// Engine resolves and caches effective configurations.
type Engine struct {
	logger     zerolog.Logger
	cacheReads bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithoutCacheReads makes every Resolve recompute. The cache is still
// rewritten.
func WithoutCacheReads() Option {
	return func(e *Engine) { e.cacheReads = false }
}

// NewEngine returns an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{logger: zerolog.Nop(), cacheReads: true}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With().Str("component", "inherit").Logger()
	return e
}

// Resolve returns the effective configuration of id, addressed as
// qualifiedName. A valid cache under the project is served as is; otherwise
// the chain is merged and the cache rewritten. Cache problems never fail the
// call.
func (e *Engine) Resolve(id index.ID, qualifiedName string, g *index.GlobalIndex) (*Config, error) {
	leaf, err := g.MustEntry(id)
	if err != nil {
		return nil, fmt.Errorf("resolve config: %w", err)
	}
	cachePath := layout.ConfigCachePath(leaf.Path)

	if e.cacheReads {
		if cfg, ok := e.readCache(cachePath, id, qualifiedName, g); ok {
			e.logger.Debug().Str("project", qualifiedName).Msg("config cache hit")
			return cfg, nil
		}
	}

	chain, err := Chain(id, g)
	if err != nil {
		return nil, err
	}
	raws := make([]*config.RawProjectConfig, len(chain))
	deps := make(map[string]int64, len(chain))
	for i, m := range chain {
		raws[i] = m.Raw
		deps[m.ConfigPath] = m.ModTime
	}

	cfg := Merge(raws)
	cfg.UUID = id
	cfg.QualifiedName = qualifiedName
	cfg.ProjectRoot = leaf.Path

	if err := writeCache(cachePath, cfg, deps); err != nil {
		e.logger.Warn().Err(err).Str("path", cachePath).Msg("could not write config cache")
	}
	return cfg, nil
}

// Chain loads the ancestor chain of id, root first. Every member must have a
// readable config file.
func Chain(id index.ID, g *index.GlobalIndex) ([]Member, error) {
	ids, err := g.Ancestors(id)
	if err != nil {
		return nil, fmt.Errorf("resolve config: %w", err)
	}

	chain := make([]Member, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		entry := g.Projects[ids[i]]
		path := layout.ConfigPath(entry.Path)

		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			if err == nil || errors.Is(err, os.ErrNotExist) {
				return nil, &ConfigFileNotFoundError{Name: entry.Name, Path: path}
			}
			return nil, fmt.Errorf("resolve config: stat %s: %w", path, err)
		}
		raw, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		chain = append(chain, Member{
			ID:         ids[i],
			Entry:      entry,
			ConfigPath: path,
			ModTime:    info.ModTime().UnixNano(),
			Raw:        raw,
		})
	}
	return chain, nil
}
