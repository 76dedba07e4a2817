package config

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNoPlatformVariant reports a per-platform command with neither an entry
// for the current OS nor a default.
var ErrNoPlatformVariant = errors.New("no command variant for this platform")

// CommandKind tags the shape a command was written in.
type CommandKind int

const (
	KindSimple CommandKind = iota
	KindSequence
	KindExtended
	KindPlatform
)

func (k CommandKind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindSequence:
		return "sequence"
	case KindExtended:
		return "extended"
	case KindPlatform:
		return "platform"
	default:
		return fmt.Sprintf("CommandKind(%d)", int(k))
	}
}

// Runnable is the canonical executable form of a command: one shell line, or
// an ordered list run until the first failure.
type Runnable struct {
	Commands []string
	Sequence bool
}

// Command is one entry of the [commands] table. Run is set for the simple,
// sequence and extended shapes; the OS fields only for the platform shape.
type Command struct {
	Kind    CommandKind
	Run     Runnable
	Desc    string
	Default *Runnable
	Windows *Runnable
	Linux   *Runnable
	MacOS   *Runnable
}

// Simple returns a single-line command.
func Simple(line string) Command {
	return Command{Kind: KindSimple, Run: Runnable{Commands: []string{line}}}
}

// Sequence returns an ordered multi-line command.
func Sequence(lines ...string) Command {
	return Command{Kind: KindSequence, Run: Runnable{Commands: lines, Sequence: true}}
}

// Resolve picks the runnable for goos (runtime.GOOS values). Non-platform
// commands always resolve to Run.
func (c Command) Resolve(goos string) (Runnable, error) {
	if c.Kind != KindPlatform {
		return c.Run, nil
	}
	var pick *Runnable
	switch goos {
	case "windows":
		pick = c.Windows
	case "linux":
		pick = c.Linux
	case "darwin":
		pick = c.MacOS
	}
	if pick == nil {
		pick = c.Default
	}
	if pick == nil {
		return Runnable{}, fmt.Errorf("%w (%s)", ErrNoPlatformVariant, goos)
	}
	return *pick, nil
}

// ParseCommand converts a decoded TOML value into a Command. Accepted shapes:
// a string, an array of strings, a table with "run" (and optional "desc"),
// or a table of per-OS runnables (default, windows, linux, macos, desc).
func ParseCommand(v any) (Command, error) {
	switch t := v.(type) {
	case string:
		return Simple(t), nil
	case []any:
		r, err := parseRunnable(t)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindSequence, Run: r}, nil
	case []string:
		return Sequence(t...), nil
	case map[string]any:
		return parseTable(t)
	default:
		return Command{}, fmt.Errorf("unsupported command value of type %T", v)
	}
}

func parseTable(t map[string]any) (Command, error) {
	desc := ""
	if d, ok := t["desc"]; ok {
		s, ok := d.(string)
		if !ok {
			return Command{}, fmt.Errorf("desc: expected string, got %T", d)
		}
		desc = s
	}

	if run, ok := t["run"]; ok {
		r, err := parseRunnable(run)
		if err != nil {
			return Command{}, fmt.Errorf("run: %w", err)
		}
		return Command{Kind: KindExtended, Run: r, Desc: desc}, nil
	}

	c := Command{Kind: KindPlatform, Desc: desc}
	slots := []struct {
		key string
		dst **Runnable
	}{
		{"default", &c.Default},
		{"windows", &c.Windows},
		{"linux", &c.Linux},
		{"macos", &c.MacOS},
	}
	for _, s := range slots {
		v, ok := t[s.key]
		if !ok {
			continue
		}
		r, err := parseRunnable(v)
		if err != nil {
			return Command{}, fmt.Errorf("%s: %w", s.key, err)
		}
		*s.dst = &r
	}
	return c, nil
}

func parseRunnable(v any) (Runnable, error) {
	switch t := v.(type) {
	case string:
		return Runnable{Commands: []string{t}}, nil
	case []string:
		return Runnable{Commands: t, Sequence: true}, nil
	case []any:
		lines := make([]string, 0, len(t))
		for i, item := range t {
			s, ok := item.(string)
			if !ok {
				return Runnable{}, fmt.Errorf("item %d: expected string, got %T", i, item)
			}
			lines = append(lines, s)
		}
		return Runnable{Commands: lines, Sequence: true}, nil
	default:
		return Runnable{}, fmt.Errorf("expected string or array of strings, got %T", v)
	}
}

func (r Runnable) value() any {
	if r.Sequence {
		return r.Commands
	}
	if len(r.Commands) == 0 {
		return ""
	}
	return r.Commands[0]
}

// value renders c back into the plain TOML shape ParseCommand accepts.
func (c Command) value() any {
	switch c.Kind {
	case KindSimple, KindSequence:
		return c.Run.value()
	case KindExtended:
		m := map[string]any{"run": c.Run.value()}
		if c.Desc != "" {
			m["desc"] = c.Desc
		}
		return m
	default:
		m := map[string]any{}
		for key, r := range map[string]*Runnable{
			"default": c.Default,
			"windows": c.Windows,
			"linux":   c.Linux,
			"macos":   c.MacOS,
		} {
			if r != nil {
				m[key] = r.value()
			}
		}
		if c.Desc != "" {
			m["desc"] = c.Desc
		}
		return m
	}
}

// SortedNames returns the command names in lexical order.
func SortedNames(cmds map[string]Command) []string {
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
