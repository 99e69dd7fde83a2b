package variables

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/liquidlite/template"
)

// Format identifies a variables file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrFormat, path)
	}
}

// LoadFile reads and decodes a variables file.
func LoadFile(path string) (template.Variables, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read variables file: %w", err)
	}

	vars, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return vars, nil
}

// LoadFiles loads every file in order and merges them, later files taking
// precedence.
func LoadFiles(paths ...string) (template.Variables, error) {
	merged := template.Variables{}
	for _, path := range paths {
		vars, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		Merge(merged, vars)
	}
	return merged, nil
}

// Decode parses data in the given format and normalizes the result.
// Empty input yields empty variables.
func Decode(data []byte, format Format) (template.Variables, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return template.Variables{}, nil
	}

	var raw map[string]any

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrFormat, format)
	}

	return Normalize(raw)
}
