// Package commands implements the liquidlite subcommands.
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/randalmurphal/liquidlite/config"
	"github.com/randalmurphal/liquidlite/template"
	"github.com/randalmurphal/liquidlite/variables"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

// DefaultConfigPath returns liquidlite.yaml in the working directory, or
// liquidlite.toml when only that exists.
func DefaultConfigPath() string {
	for _, name := range []string{"liquidlite.yaml", "liquidlite.yml", "liquidlite.toml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return "liquidlite.yaml"
}

// config returns the loaded config, or the defaults when none was loaded.
func (f *Flags) config() config.Config {
	if f == nil || f.Config == nil {
		return config.DefaultConfig()
	}
	return *f.Config
}

// loadVariables loads the configured variable files followed by files, then
// applies the configured assignments followed by sets.
func (f *Flags) loadVariables(files, sets []string) (template.Variables, error) {
	cfg := f.config()

	all := append(append([]string(nil), cfg.Variables...), files...)
	vars, err := variables.LoadFiles(all...)
	if err != nil {
		return nil, err
	}

	assignments := append(append([]string(nil), cfg.Set...), sets...)
	if err := variables.Apply(vars, assignments); err != nil {
		return nil, err
	}
	return vars, nil
}

// variableFiles lists every variable file a command reads.
func (f *Flags) variableFiles(files []string) []string {
	return append(append([]string(nil), f.config().Variables...), files...)
}

// readTemplate returns a template's front matter defaults and body.
func readTemplate(path string) (template.Variables, string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read template: %w", err)
	}
	defaults, body, err := variables.SplitFrontMatter(string(src))
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", filepath.Clean(path), err)
	}
	return defaults, body, nil
}
