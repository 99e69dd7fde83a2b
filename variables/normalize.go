package variables

import (
	"fmt"
	"strings"
	"time"

	"github.com/randalmurphal/liquidlite/template"
)

// Normalize converts decoder output into template variables. Mappings may
// use string or arbitrary keys; keys are rendered with fmt. Timestamps become
// RFC 3339 strings and JSON numbers keep their text so large integers render
// exactly. Values templates cannot address, such as arrays, are kept as they
// are; compiling fails only if a template looks one up.
func Normalize(raw any) (template.Variables, error) {
	if raw == nil {
		return template.Variables{}, nil
	}
	vars, ok := normalizeValue(raw).(template.Variables)
	if !ok {
		return nil, fmt.Errorf("%w: top level must be a mapping, got %T", ErrUnsupported, raw)
	}
	return vars, nil
}

func normalizeValue(raw any) any {
	switch x := raw.(type) {
	case time.Time:
		return x.Format(time.RFC3339)
	case template.Variables:
		return normalizeMap(x)
	case map[string]any:
		return normalizeMap(x)
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[fmt.Sprint(k)] = v
		}
		return normalizeMap(m)
	case map[string]string:
		m := make(template.Variables, len(x))
		for k, v := range x {
			m[k] = v
		}
		return m
	default:
		return raw
	}
}

func normalizeMap(m map[string]any) template.Variables {
	out := make(template.Variables, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

// Merge deep-merges src into dst. Nested mappings are merged key by key;
// any other value in src replaces the value in dst.
func Merge(dst, src template.Variables) {
	for k, v := range src {
		srcMap, srcIsMap := v.(template.Variables)
		dstMap, dstIsMap := dst[k].(template.Variables)
		if srcIsMap && dstIsMap {
			Merge(dstMap, srcMap)
			continue
		}
		if srcIsMap {
			copied := template.Variables{}
			Merge(copied, srcMap)
			dst[k] = copied
			continue
		}
		dst[k] = v
	}
}

// Set assigns value at a dotted path, creating intermediate mappings. An
// existing non-mapping value along the path is replaced. vars must not be
// nil.
func Set(vars template.Variables, path string, value any) error {
	if vars == nil {
		return fmt.Errorf("%w: nil variables", ErrAssignment)
	}
	parts := strings.Split(path, ".")
	for _, part := range parts {
		if part == "" {
			return fmt.Errorf("%w: empty segment in path %q", ErrAssignment, path)
		}
	}

	current := vars
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(template.Variables)
		if !ok {
			next = template.Variables{}
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
	return nil
}

// ParseAssignment splits "path=value". The value may be empty and may
// itself contain '='.
func ParseAssignment(s string) (string, string, error) {
	path, value, ok := strings.Cut(s, "=")
	path = strings.TrimSpace(path)
	if !ok || path == "" {
		return "", "", fmt.Errorf("%w: %q (want path=value)", ErrAssignment, s)
	}
	return path, value, nil
}

// Apply parses each assignment and sets it on vars.
func Apply(vars template.Variables, assignments []string) error {
	for _, a := range assignments {
		path, value, err := ParseAssignment(a)
		if err != nil {
			return err
		}
		if err := Set(vars, path, value); err != nil {
			return err
		}
	}
	return nil
}
