package inherit

import (
	"errors"
	"os"

	"github.com/Retype15/axes/pkg/cachefile"
	"github.com/Retype15/axes/pkg/index"
	"github.com/Retype15/axes/pkg/layout"
)

// cacheRecord is the content of .axes/config.cache.bin: the merged snapshot
// plus the modification time of every config file it was built from.
type cacheRecord struct {
	Config       Config
	Dependencies map[string]int64
}

func writeCache(path string, cfg *Config, deps map[string]int64) error {
	return cachefile.Write(path, cacheRecord{Config: *cfg, Dependencies: deps})
}

// readCache returns the cached config when it is still valid for id under
// qualifiedName in g. Corrupt records are deleted.
func (e *Engine) readCache(path string, id index.ID, qualifiedName string, g *index.GlobalIndex) (*Config, bool) {
	var rec cacheRecord
	err := cachefile.Read(path, &rec)
	switch {
	case err == nil:
	case os.IsNotExist(err):
		return nil, false
	case errors.Is(err, cachefile.ErrCorrupt):
		e.logger.Warn().Err(err).Str("path", path).Msg("config cache corrupt, rebuilding")
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			e.logger.Warn().Err(rmErr).Str("path", path).Msg("could not remove corrupt config cache")
		}
		return nil, false
	default:
		e.logger.Warn().Err(err).Str("path", path).Msg("config cache unreadable")
		return nil, false
	}

	if rec.Config.UUID != id || rec.Config.QualifiedName != qualifiedName {
		e.logger.Debug().Str("cached", rec.Config.QualifiedName).Str("want", qualifiedName).Msg("config cache name mismatch")
		return nil, false
	}
	if len(rec.Dependencies) == 0 {
		return nil, false
	}
	// A one-segment name survives a link, so the recorded files must still
	// be exactly the current ancestor chain.
	if !sameChain(rec.Dependencies, id, g) {
		e.logger.Debug().Str("project", qualifiedName).Msg("config cache chain changed")
		return nil, false
	}
	for dep, recorded := range rec.Dependencies {
		info, err := os.Stat(dep)
		if err != nil {
			e.logger.Debug().Str("dependency", dep).Msg("config cache dependency gone")
			return nil, false
		}
		if info.ModTime().UnixNano() > recorded {
			e.logger.Debug().Str("dependency", dep).Msg("config cache dependency changed")
			return nil, false
		}
	}

	cfg := rec.Config
	cfg.normalize()
	return &cfg, true
}

func sameChain(deps map[string]int64, id index.ID, g *index.GlobalIndex) bool {
	ids, err := g.Ancestors(id)
	if err != nil || len(ids) != len(deps) {
		return false
	}
	for _, aid := range ids {
		if _, ok := deps[layout.ConfigPath(g.Projects[aid].Path)]; !ok {
			return false
		}
	}
	return true
}
