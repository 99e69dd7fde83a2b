package template

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Tag delimiters recognised by the compiler.
const (
	tagOpen        = "{%"
	tagClose       = "%}"
	ifTagPrefix    = "{% if "
	elseTag        = "{% else %}"
	elseTagPrefix  = "{% else "
	elseifPrefix   = "{% elseif "
	endifTag       = "{% endif %}"
	interpolOpen   = "{{"
	pathSeparator  = "."
	tokenSeparator = " "
)

// interpolationPattern matches {{ path }} markers, non-greedy so several
// markers on one line are matched separately.
var interpolationPattern = regexp.MustCompile(`{{(.*?)}}`)

// referencePattern matches either an {% if ... %} condition (group 1) or an
// interpolation marker (group 2).
var referencePattern = regexp.MustCompile(`{% if (.*?)%}|{{(.*?)}}`)

// parseNumber reports whether s is a plain decimal number (optional sign,
// digits, optional fraction, optional exponent) and returns its value.
// Hex, infinities and NaN are rejected even though strconv accepts them.
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	for i, ch := range s {
		isDigit := ch >= '0' && ch <= '9'
		isSign := (ch == '-' || ch == '+') && (i == 0 || s[i-1] == 'e' || s[i-1] == 'E')
		if !isDigit && !isSign && ch != '.' && ch != 'e' && ch != 'E' {
			return 0, false
		}
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

// isQuoted reports whether a condition token is a double-quoted string
// literal.
func isQuoted(s string) bool {
	return strings.HasPrefix(s, `"`)
}

// unquote strips the surrounding double quotes of a string literal. A
// missing closing quote is tolerated.
func unquote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}

// isLiteral reports whether a condition token is a literal rather than a
// variable path.
func isLiteral(token string) bool {
	if _, ok := parseNumber(token); ok {
		return true
	}
	return isQuoted(token) || token == "true" || token == "false"
}

// literalValue converts a literal token to its Value.
func literalValue(token string) Value {
	switch {
	case isQuoted(token):
		return String(unquote(token))
	case token == "true":
		return Bool(true)
	case token == "false":
		return Bool(false)
	}
	n, _ := parseNumber(token)
	return Number(n)
}

// isOperator reports whether tok is one of the supported comparisons.
func isOperator(tok string) bool {
	switch tok {
	case "==", "!=", ">", ">=", "<", "<=":
		return true
	default:
		return false
	}
}

// extractPaths returns the variable paths referenced by interpolation
// markers and if-conditions, deduplicated in order of first appearance.
func extractPaths(templateStr string) []string {
	seen := make(map[string]bool)
	var result []string

	add := func(path string) {
		if path == "" || seen[path] {
			return
		}
		seen[path] = true
		result = append(result, path)
	}

	for _, line := range strings.Split(templateStr, "\n") {
		for _, match := range referencePattern.FindAllStringSubmatch(line, -1) {
			if !strings.HasPrefix(match[0], ifTagPrefix) {
				add(strings.TrimSpace(match[2]))
				continue
			}
			for _, tok := range conditionOperands(strings.TrimSpace(match[1])) {
				if !isLiteral(tok) {
					add(tok)
				}
			}
		}
	}

	return result
}

// conditionOperands returns the operand tokens of a well-formed condition.
// Malformed conditions evaluate to false without a lookup, so they have none.
func conditionOperands(expr string) []string {
	tokens := strings.Split(expr, tokenSeparator)
	switch {
	case len(tokens) == 1:
		return tokens
	case len(tokens) == 3 && isOperator(tokens[1]):
		return []string{tokens[0], tokens[2]}
	default:
		return nil
	}
}
