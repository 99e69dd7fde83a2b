package template

import (
	"fmt"
	"strings"
)

// MissingPathPolicy controls what happens when a variable path does not
// exist in the variables.
type MissingPathPolicy int

const (
	// MissingPathStrict fails compilation with a *MissingPathError.
	MissingPathStrict MissingPathPolicy = iota

	// MissingPathLenient resolves missing paths to the empty string.
	MissingPathLenient
)

// String returns the policy name as used in configuration files.
func (p MissingPathPolicy) String() string {
	if p == MissingPathLenient {
		return "lenient"
	}
	return "strict"
}

// ParseMissingPathPolicy converts "strict" or "lenient" to a policy.
// The empty string selects the strict default.
func ParseMissingPathPolicy(s string) (MissingPathPolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return MissingPathStrict, true
	case "lenient":
		return MissingPathLenient, true
	default:
		return MissingPathStrict, false
	}
}

// Resolve looks up a dotted path with the strict policy and coerces a string
// leaf that looks like a number or boolean into that type.
func Resolve(path string, vars Variables) (Value, error) {
	v, err := lookup(path, vars, MissingPathStrict)
	if err != nil {
		return Value{}, err
	}
	return v.coerce(), nil
}

// lookup walks vars one path segment at a time and returns the raw value
// found at the end of the path. A path that stops at a nested mapping
// returns that mapping. Reaching a value outside the variable model is an
// error under either policy, naming the path walked so far.
func lookup(path string, vars Variables, policy MissingPathPolicy) (Value, error) {
	current := Mapping(vars)
	parts := strings.Split(path, pathSeparator)

	for i, part := range parts {
		if current.kind != KindMapping {
			return missing(path, policy)
		}
		raw, ok := current.m[part]
		if !ok {
			return missing(path, policy)
		}
		next, ok := valueOf(raw)
		if !ok {
			return Value{}, &UnsupportedValueError{
				Path: strings.Join(parts[:i+1], pathSeparator),
				Type: fmt.Sprintf("%T", raw),
			}
		}
		current = next
	}

	return current, nil
}

func missing(path string, policy MissingPathPolicy) (Value, error) {
	if policy == MissingPathLenient {
		return String(""), nil
	}
	return Value{}, &MissingPathError{Path: path}
}
