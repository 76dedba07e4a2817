// Package layout names the files axes keeps inside a project's metadata
// directory and in the per-user configuration directory.
package layout

import (
	"os"
	"path/filepath"
)

const (
	// MetaDirName is the per-project metadata directory.
	MetaDirName = ".axes"

	// ConfigFileName is the hand-edited raw project config inside MetaDirName.
	ConfigFileName = "axes.toml"

	// ConfigCacheFileName holds the resolved-config cache of a project.
	ConfigCacheFileName = "config.cache.bin"

	// LastUsedFileName holds the last-used-child record of a parent project.
	LastUsedFileName = "last_used.cache.bin"

	// ProjectRefFileName holds the local identity mirror of a project.
	ProjectRefFileName = "project_ref.bin"

	// IndexFileName is the global index inside the per-user config directory.
	IndexFileName = "index.toml"
)

// MetaDir returns <root>/.axes.
func MetaDir(root string) string {
	return filepath.Join(root, MetaDirName)
}

// ConfigPath returns <root>/.axes/axes.toml.
func ConfigPath(root string) string {
	return filepath.Join(root, MetaDirName, ConfigFileName)
}

// ConfigCachePath returns <root>/.axes/config.cache.bin.
func ConfigCachePath(root string) string {
	return filepath.Join(root, MetaDirName, ConfigCacheFileName)
}

// LastUsedPath returns <root>/.axes/last_used.cache.bin.
func LastUsedPath(root string) string {
	return filepath.Join(root, MetaDirName, LastUsedFileName)
}

// ProjectRefPath returns <root>/.axes/project_ref.bin.
func ProjectRefPath(root string) string {
	return filepath.Join(root, MetaDirName, ProjectRefFileName)
}

// HasMarker reports whether dir holds a recognized project marker, i.e. a
// regular .axes/axes.toml file.
func HasMarker(dir string) bool {
	info, err := os.Stat(ConfigPath(dir))
	return err == nil && info.Mode().IsRegular()
}

// Canonical returns the absolute, symlink-free form of path. Paths stored in
// the global index are always canonical so they can be compared directly.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return filepath.Clean(resolved), nil
}
