package inherit

import (
	"errors"
	"fmt"
)

var ErrConfigFileNotFound = errors.New("config file not found")

// ConfigFileNotFoundError names the chain member whose axes.toml is missing.
type ConfigFileNotFoundError struct {
	Name string
	Path string
}

func (e *ConfigFileNotFoundError) Error() string {
	return fmt.Sprintf("config file for project %q not found at %s", e.Name, e.Path)
}

func (e *ConfigFileNotFoundError) Is(target error) bool {
	return target == ErrConfigFileNotFound
}
