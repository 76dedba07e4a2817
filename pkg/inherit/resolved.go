// Package inherit computes the effective configuration of a project by
// merging the axes.toml files of its ancestor chain, root first, and caches
// the result beside the project.
package inherit

import (
	"dario.cat/mergo"

	"github.com/Retype15/axes/pkg/config"
	"github.com/Retype15/axes/pkg/index"
)

// Options is the merged [options] table. Empty strings mean unset.
type Options struct {
	AtStart  string
	AtExit   string
	Shell    string
	OpenWith map[string]string
}

// Config is the resolved view of one project. It is always derived, never
// written by hand.
type Config struct {
	UUID          index.ID
	QualifiedName string
	ProjectRoot   string
	Version       string
	Description   string
	Commands      map[string]config.Command
	Options       Options
	Vars          map[string]string
	Env           map[string]string
}

// Merge folds chain, ordered root first, into a Config. Scalars take the most
// specific defined value; open_with, vars and env merge key by key with the
// child winning; the command table of the most specific member defining any
// commands replaces everything above it.
func Merge(chain []*config.RawProjectConfig) *Config {
	out := &Config{}
	out.normalize()
	for _, raw := range chain {
		pick(&out.Version, raw.Version)
		pick(&out.Description, raw.Description)
		pick(&out.Options.AtStart, raw.Options.AtStart)
		pick(&out.Options.AtExit, raw.Options.AtExit)
		pick(&out.Options.Shell, raw.Options.Shell)
		mergeKeys(&out.Options.OpenWith, raw.Options.OpenWith)
		mergeKeys(&out.Vars, raw.Vars)
		mergeKeys(&out.Env, raw.Env)
		if len(raw.Commands) > 0 {
			out.Commands = make(map[string]config.Command, len(raw.Commands))
			for k, v := range raw.Commands {
				out.Commands[k] = v
			}
		}
	}
	return out
}

// mergeKeys copies every key of src into dst, replacing existing values.
func mergeKeys(dst *map[string]string, src map[string]string) {
	if len(src) == 0 {
		return
	}
	// mergo only errors on mismatched types.
	_ = mergo.Merge(dst, src, mergo.WithOverride)
}

func pick(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// normalize replaces nil maps, which gob produces for empty ones.
func (c *Config) normalize() {
	if c.Commands == nil {
		c.Commands = map[string]config.Command{}
	}
	if c.Options.OpenWith == nil {
		c.Options.OpenWith = map[string]string{}
	}
	if c.Vars == nil {
		c.Vars = map[string]string{}
	}
	if c.Env == nil {
		c.Env = map[string]string{}
	}
}
