package template

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Engine compiles templates against a set of variables.
// An Engine is immutable after construction and safe for concurrent use.
type Engine struct {
	policy MissingPathPolicy
	logger zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMissingPath sets how undefined variable paths are handled.
func WithMissingPath(policy MissingPathPolicy) Option {
	return func(e *Engine) {
		e.policy = policy
	}
}

// WithLogger sets the logger used to report unbalanced blocks.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an engine. Without options it uses the strict
// missing-path policy and discards log output.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		policy: MissingPathStrict,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// Compile renders templateStr with the default strict engine.
func Compile(templateStr string, variables Variables) (string, error) {
	return defaultEngine.Compile(templateStr, variables)
}

// Policy returns the engine's missing-path policy.
func (e *Engine) Policy() MissingPathPolicy {
	return e.policy
}

// Compile renders templateStr line by line. Conditional blocks may span
// lines; interpolation runs on the text that survives them. The result is
// joined with newlines and trimmed of outer whitespace.
func (e *Engine) Compile(templateStr string, variables Variables) (string, error) {
	lines := strings.Split(templateStr, "\n")
	output := make([]string, 0, len(lines))
	stack := &blockStack{}

	evaluate := func(expr string) (bool, error) {
		return evaluateCondition(expr, variables, e.policy)
	}

	for lineNumber, line := range lines {
		processed, err := e.processLine(line, variables, stack, evaluate)
		if err != nil {
			return "", fmt.Errorf("line %d: %w", lineNumber+1, err)
		}
		output = append(output, processed)
	}

	if stack.depth() > 0 {
		e.logger.Debug().Int("open_blocks", stack.depth()).Msg("template ended with unclosed if blocks")
	}
	if stack.strayEndifs > 0 {
		e.logger.Debug().Int("stray_endifs", stack.strayEndifs).Msg("template has endif tags without a matching if")
	}

	return strings.TrimSpace(strings.Join(output, "\n")), nil
}

func (e *Engine) processLine(line string, variables Variables, stack *blockStack, evaluate conditionFunc) (string, error) {
	line, err := processBlocks(line, stack, evaluate)
	if err != nil {
		return "", err
	}

	if strings.Contains(line, interpolOpen) {
		return e.interpolate(line, variables)
	}
	return line, nil
}

// interpolate replaces every {{ path }} marker with the uncoerced value at
// that path.
func (e *Engine) interpolate(line string, variables Variables) (string, error) {
	var firstErr error

	result := interpolationPattern.ReplaceAllStringFunc(line, func(match string) string {
		if firstErr != nil {
			return ""
		}
		path := strings.TrimSpace(match[len(interpolOpen) : len(match)-len("}}")])
		value, err := lookup(path, variables, e.policy)
		if err != nil {
			firstErr = err
			return ""
		}
		out, err := value.render()
		if err != nil {
			firstErr = fmt.Errorf("%s: %w", path, err)
			return ""
		}
		return out
	})
	if firstErr != nil {
		return "", firstErr
	}

	return result, nil
}

// Parse validates the template and lists the variable paths it references,
// in order of first appearance. Literals in conditions are excluded.
func (e *Engine) Parse(templateStr string) ([]string, error) {
	if templateStr == "" {
		return nil, ErrEmpty
	}
	return extractPaths(templateStr), nil
}

// ValidateVariables checks that every required dotted path resolves.
// Returns an error wrapping ErrVariable naming the first missing path, or
// the *UnsupportedValueError of a path holding an unrenderable value.
func ValidateVariables(required []string, provided Variables) error {
	for _, path := range required {
		if _, err := lookup(path, provided, MissingPathStrict); err != nil {
			if errors.Is(err, ErrUnsupportedValue) {
				return err
			}
			return fmt.Errorf("%w: %s", ErrVariable, path)
		}
	}
	return nil
}
