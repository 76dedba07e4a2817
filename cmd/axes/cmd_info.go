package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Retype15/axes/pkg/config"
	"github.com/Retype15/axes/pkg/inherit"
	"github.com/Retype15/axes/pkg/layout"
)

type commandInfo struct {
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind" yaml:"kind"`
	Desc string `json:"desc,omitempty" yaml:"desc,omitempty"`
}

type projectInfo struct {
	UUID        string            `json:"uuid" yaml:"uuid"`
	Name        string            `json:"name" yaml:"name"`
	Root        string            `json:"root" yaml:"root"`
	Config      string            `json:"config" yaml:"config"`
	Version     string            `json:"version" yaml:"version"`
	Description string            `json:"description" yaml:"description"`
	Commands    []commandInfo     `json:"commands" yaml:"commands"`
	Vars        map[string]string `json:"vars" yaml:"vars"`
	Env         map[string]string `json:"env" yaml:"env"`
	AtStart     string            `json:"at_start,omitempty" yaml:"at_start,omitempty"`
	AtExit      string            `json:"at_exit,omitempty" yaml:"at_exit,omitempty"`
	Shell       string            `json:"shell,omitempty" yaml:"shell,omitempty"`
	OpenWith    map[string]string `json:"open_with,omitempty" yaml:"open_with,omitempty"`
}

func newProjectInfo(cfg *inherit.Config) projectInfo {
	info := projectInfo{
		UUID:        cfg.UUID.String(),
		Name:        cfg.QualifiedName,
		Root:        cfg.ProjectRoot,
		Config:      layout.ConfigPath(cfg.ProjectRoot),
		Version:     cfg.Version,
		Description: cfg.Description,
		Commands:    []commandInfo{},
		Vars:        cfg.Vars,
		Env:         cfg.Env,
		AtStart:     cfg.Options.AtStart,
		AtExit:      cfg.Options.AtExit,
		Shell:       cfg.Options.Shell,
		OpenWith:    cfg.Options.OpenWith,
	}
	for _, name := range config.SortedNames(cfg.Commands) {
		c := cfg.Commands[name]
		info.Commands = append(info.Commands, commandInfo{Name: name, Kind: c.Kind.String(), Desc: c.Desc})
	}
	return info
}

func newInfoCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "info [context]",
		Short: "Show the effective configuration of a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, rest, err := a.project(cmd, args)
			if err != nil {
				return err
			}
			if len(rest) > 0 {
				return fmt.Errorf("info: unexpected arguments %q", rest)
			}
			info := newProjectInfo(cfg)
			out := cmd.OutOrStdout()

			switch output {
			case "text", "":
				return writeInfoText(out, info)
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(info); err != nil {
					return fmt.Errorf("info: %w", err)
				}
				return enc.Close()
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			default:
				return fmt.Errorf("info: unknown output format %q (want text, yaml or json)", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, yaml or json")
	return cmd
}

func writeInfoText(w io.Writer, info projectInfo) error {
	modified := "missing"
	if st, err := os.Stat(info.Config); err == nil {
		modified = "modified " + humanize.Time(st.ModTime())
	}

	fmt.Fprintf(w, "%s\n", info.Name)
	fmt.Fprintf(w, "  uuid:        %s\n", info.UUID)
	fmt.Fprintf(w, "  root:        %s\n", info.Root)
	fmt.Fprintf(w, "  config:      %s (%s)\n", info.Config, modified)
	fmt.Fprintf(w, "  version:     %s\n", info.Version)
	fmt.Fprintf(w, "  description: %s\n", info.Description)

	fmt.Fprintln(w, "\ncommands:")
	if len(info.Commands) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, c := range info.Commands {
		line := fmt.Sprintf("  %-16s [%s]", c.Name, c.Kind)
		if c.Desc != "" {
			line += " " + c.Desc
		}
		fmt.Fprintln(w, line)
	}

	writeMap(w, "vars", info.Vars)
	writeMap(w, "env", info.Env)
	_, err := fmt.Fprintln(w)
	return err
}

func writeMap(w io.Writer, title string, m map[string]string) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s = %s\n", k, m[k])
	}
}
