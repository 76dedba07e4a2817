// Package settings loads axes settings from AXES_* environment variables.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"

	"github.com/Retype15/axes/pkg/index"
)

// Prefix is prepended to every variable name.
const Prefix = "AXES"

// SessionEnv is set by `axes start` for the shell it launches.
const SessionEnv = "AXES_PROJECT_UUID"

// Settings holds the environment-driven configuration.
type Settings struct {
	// Home overrides the per-user directory holding index.toml and the root
	// project.
	Home string `envconfig:"HOME"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"warn"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`

	// ProjectUUID selects session mode.
	ProjectUUID string `envconfig:"PROJECT_UUID"`

	// NoCache skips reading resolved-config caches.
	NoCache bool `envconfig:"NO_CACHE" default:"false"`
}

// Load reads settings from the environment.
func Load() (*Settings, error) {
	var s Settings
	if err := envconfig.Process(Prefix, &s); err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	switch s.LogFormat {
	case "":
		s.LogFormat = "console"
	case "console", "json":
	default:
		return nil, fmt.Errorf("loading settings: %s_LOG_FORMAT must be console or json, got %q", Prefix, s.LogFormat)
	}
	return &s, nil
}

// ConfigDir returns the per-user axes directory.
func (s *Settings) ConfigDir() (string, error) {
	if s.Home != "" {
		return filepath.Abs(s.Home)
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(base, "axes"), nil
}

// Session returns the project identity of the current session, if any.
func (s *Settings) Session() (index.ID, bool, error) {
	if s.ProjectUUID == "" {
		return index.ID{}, false, nil
	}
	id, err := uuid.Parse(s.ProjectUUID)
	if err != nil {
		return index.ID{}, false, fmt.Errorf("%s: %w", SessionEnv, err)
	}
	return id, true, nil
}
