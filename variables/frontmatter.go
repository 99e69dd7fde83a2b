package variables

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/liquidlite/template"
)

const frontMatterDelimiter = "---"

// SplitFrontMatter separates a leading YAML front matter block from a
// template. The block starts with a "---" first line and ends at the next
// "---" line. Sources without front matter are returned unchanged with nil
// variables.
func SplitFrontMatter(src string) (template.Variables, string, error) {
	lines := strings.Split(src, "\n")
	if strings.TrimRight(lines[0], "\r") != frontMatterDelimiter {
		return nil, src, nil
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r") == frontMatterDelimiter {
			end = i
			break
		}
	}
	if end == -1 {
		return nil, "", ErrFrontMatter
	}

	var raw map[string]any
	frontMatter := strings.Join(lines[1:end], "\n")
	if err := yaml.Unmarshal([]byte(frontMatter), &raw); err != nil {
		return nil, "", fmt.Errorf("parse front matter: %w", err)
	}
	vars, err := Normalize(raw)
	if err != nil {
		return nil, "", fmt.Errorf("parse front matter: %w", err)
	}

	return vars, strings.Join(lines[end+1:], "\n"), nil
}
