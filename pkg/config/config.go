// Package config models the hand-edited .axes/axes.toml file of a project.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/BurntSushi/toml"

	"github.com/Retype15/axes/pkg/cachefile"
)

// Options is the [options] table.
type Options struct {
	AtStart  *string           `toml:"at_start,omitempty"`
	AtExit   *string           `toml:"at_exit,omitempty"`
	Shell    *string           `toml:"shell,omitempty"`
	OpenWith map[string]string `toml:"open_with,omitempty"`
}

// RawProjectConfig is one project's own config, before inheritance. Nil
// pointers mean "not set here".
type RawProjectConfig struct {
	Version     *string
	Description *string
	Commands    map[string]Command
	Options     Options
	Vars        map[string]string
	Env         map[string]string
}

// rawFile is the TOML shape of axes.toml. Commands stay untyped until
// ParseCommand sorts out which of the four shapes each one is.
type rawFile struct {
	Version     *string           `toml:"version,omitempty"`
	Description *string           `toml:"description,omitempty"`
	Commands    map[string]any    `toml:"commands,omitempty"`
	Options     Options           `toml:"options"`
	Vars        map[string]string `toml:"vars,omitempty"`
	Env         map[string]string `toml:"env,omitempty"`
}

// ParseError reports a malformed config file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse config %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Default returns the scaffold written by init for goos.
func Default(goos string) *RawProjectConfig {
	openWith := map[string]string{"vsc": "code ."}
	switch goos {
	case "windows":
		openWith["default"] = "explorer ."
		openWith["explorer"] = "explorer ."
	case "darwin":
		openWith["default"] = "open ."
		openWith["finder"] = "open ."
	default:
		openWith["default"] = "xdg-open ."
		openWith["nautilus"] = "nautilus ."
	}
	return &RawProjectConfig{
		Version:     strPtr("0.1.0"),
		Description: strPtr("A new project managed by axes."),
		Commands:    map[string]Command{},
		Options:     Options{OpenWith: openWith},
		Vars:        map[string]string{},
		Env:         map[string]string{},
	}
}

// DefaultForHost is Default(runtime.GOOS).
func DefaultForHost() *RawProjectConfig {
	return Default(runtime.GOOS)
}

// Parse decodes axes.toml contents; path is only used for error context.
func Parse(path string, data []byte) (*RawProjectConfig, error) {
	var f rawFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	cfg := &RawProjectConfig{
		Version:     f.Version,
		Description: f.Description,
		Commands:    make(map[string]Command, len(f.Commands)),
		Options:     f.Options,
		Vars:        f.Vars,
		Env:         f.Env,
	}
	for name, v := range f.Commands {
		cmd, err := ParseCommand(v)
		if err != nil {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("command %q: %w", name, err)}
		}
		cfg.Commands[name] = cmd
	}
	if cfg.Vars == nil {
		cfg.Vars = map[string]string{}
	}
	if cfg.Env == nil {
		cfg.Env = map[string]string{}
	}
	if cfg.Options.OpenWith == nil {
		cfg.Options.OpenWith = map[string]string{}
	}
	return cfg, nil
}

// Load reads and parses the config file at path. A missing file yields an
// error satisfying errors.Is(err, fs.ErrNotExist).
func Load(path string) (*RawProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return Parse(path, data)
}

// Encode renders cfg as TOML.
func Encode(cfg *RawProjectConfig) ([]byte, error) {
	f := rawFile{
		Version:     cfg.Version,
		Description: cfg.Description,
		Options:     cfg.Options,
		Vars:        cfg.Vars,
		Env:         cfg.Env,
	}
	if len(cfg.Commands) > 0 {
		f.Commands = make(map[string]any, len(cfg.Commands))
		for name, c := range cfg.Commands {
			f.Commands[name] = c.value()
		}
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Write atomically replaces the config file at path with cfg.
func Write(path string, cfg *RawProjectConfig) error {
	data, err := Encode(cfg)
	if err != nil {
		return err
	}
	if err := cachefile.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// IsNotExist reports whether err came from a missing config file.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

func strPtr(s string) *string {
	return &s
}
