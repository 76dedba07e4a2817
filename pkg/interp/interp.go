// Package interp expands {token} placeholders in command lines.
//
// Expansion runs in three passes: project tokens ({root}, {name}, {uuid},
// {version}, {description}), then one token per entry of [vars] whose value
// has project tokens expanded first, then {params}. Unknown tokens are left
// as written.
package interp

import (
	"sort"
	"strings"

	"github.com/Retype15/axes/pkg/inherit"
)

// Interpolator expands command lines for one resolved project.
type Interpolator struct {
	reserved *strings.Replacer
	vars     *strings.Replacer
	params   *strings.Replacer
}

// New builds an Interpolator for cfg with the extra CLI params.
func New(cfg *inherit.Config, params []string) *Interpolator {
	reserved := strings.NewReplacer(
		"{root}", cfg.ProjectRoot,
		"{name}", cfg.QualifiedName,
		"{uuid}", cfg.UUID.String(),
		"{version}", cfg.Version,
		"{description}", cfg.Description,
	)

	keys := make([]string, 0, len(cfg.Vars))
	for k := range cfg.Vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", reserved.Replace(cfg.Vars[k]))
	}

	return &Interpolator{
		reserved: reserved,
		vars:     strings.NewReplacer(pairs...),
		params:   strings.NewReplacer("{params}", strings.Join(params, " ")),
	}
}

// Expand returns s with every known token replaced.
func (i *Interpolator) Expand(s string) string {
	return i.params.Replace(i.vars.Replace(i.reserved.Replace(s)))
}

// ExpandAll expands each line.
func (i *Interpolator) ExpandAll(lines []string) []string {
	out := make([]string, len(lines))
	for n, l := range lines {
		out[n] = i.Expand(l)
	}
	return out
}
