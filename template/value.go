package template

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindMapping
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Variables maps names to values. Leaves may be bool, any Go integer or
// float type, string or nil; nested mappings may be Variables,
// map[string]any or map[string]string.
type Variables map[string]any

// Value is a resolved template value. The zero Value is the empty string.
type Value struct {
	kind Kind
	b    bool
	n    float64
	m    Variables

	// s is the text of a string. For a number it holds the exact digits of
	// an integer too large for n, and is empty otherwise.
	s string
}

// maxExactInteger is 2^53, past which float64 skips integers.
const maxExactInteger = 1 << 53

// integer builds a number from an integer whose decimal digits are
// literal. The digits are kept when n cannot hold the value exactly.
func integer(n float64, literal string) Value {
	if math.Abs(n) < maxExactInteger {
		return Number(n)
	}
	b, ok := new(big.Int).SetString(literal, 10)
	if !ok {
		return Number(n)
	}
	return Value{kind: KindNumber, n: n, s: b.String()}
}

// String constructs a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Number constructs a number Value.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// Bool constructs a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Mapping constructs a mapping Value.
func Mapping(m Variables) Value { return Value{kind: KindMapping, m: m} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// Truthy reports whether v counts as true in a condition: true, a non-zero
// number, a non-empty string or any mapping.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n != 0 && !math.IsNaN(v.n)
	case KindString:
		return v.s != ""
	case KindMapping:
		return true
	default:
		return false
	}
}

// String renders v as it appears in template output. A mapping that cannot
// be encoded renders as the empty string; compiling reports the error.
func (v Value) String() string {
	out, _ := v.render()
	return out
}

func (v Value) render() (string, error) {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b), nil
	case KindNumber:
		if v.s != "" {
			return v.s, nil
		}
		return formatNumber(v.n), nil
	case KindMapping:
		// encoding/json sorts map keys, which keeps output stable.
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("render mapping: %w", err)
		}
		return string(data), nil
	default:
		return v.s, nil
	}
}

// MarshalJSON encodes v as its native JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return json.Marshal(v.b)
	case KindNumber:
		if v.s != "" {
			return []byte(v.s), nil
		}
		if math.IsInf(v.n, 0) || math.IsNaN(v.n) {
			return json.Marshal(formatNumber(v.n))
		}
		return json.Marshal(v.n)
	case KindMapping:
		entries := make(map[string]any, len(v.m))
		for k, raw := range v.m {
			if raw == nil {
				entries[k] = nil
				continue
			}
			if value, ok := valueOf(raw); ok {
				entries[k] = value
				continue
			}
			entries[k] = raw
		}
		return json.Marshal(entries)
	default:
		return json.Marshal(v.s)
	}
}

// number converts v to a float64 where a numeric reading exists: numbers,
// booleans (1 or 0) and strings that parse fully as a finite number.
func (v Value) number() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.n, true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	case KindString:
		return parseNumber(v.s)
	default:
		return 0, false
	}
}

// coerce converts string values that look like literals into their typed
// form. Other kinds are returned unchanged.
func (v Value) coerce() Value {
	if v.kind != KindString {
		return v
	}
	if n, ok := parseNumber(v.s); ok {
		return integer(n, v.s)
	}
	switch v.s {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	return v
}

// valueOf wraps a raw mapping entry. It returns false for types that are
// not part of the variable model.
func valueOf(raw any) (Value, bool) {
	switch x := raw.(type) {
	case nil:
		return String(""), true
	case Value:
		return x, true
	case string:
		return String(x), true
	case bool:
		return Bool(x), true
	case float64:
		return Number(x), true
	case float32:
		return Number(float64(x)), true
	case int:
		return integer(float64(x), strconv.Itoa(x)), true
	case int8:
		return Number(float64(x)), true
	case int16:
		return Number(float64(x)), true
	case int32:
		return Number(float64(x)), true
	case int64:
		return integer(float64(x), strconv.FormatInt(x, 10)), true
	case uint:
		return integer(float64(x), strconv.FormatUint(uint64(x), 10)), true
	case uint8:
		return Number(float64(x)), true
	case uint16:
		return Number(float64(x)), true
	case uint32:
		return Number(float64(x)), true
	case uint64:
		return integer(float64(x), strconv.FormatUint(x, 10)), true
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return String(x.String()), true
		}
		return integer(n, x.String()), true
	case Variables:
		return Mapping(x), true
	case map[string]any:
		return Mapping(Variables(x)), true
	case map[string]string:
		m := make(Variables, len(x))
		for k, s := range x {
			m[k] = s
		}
		return Mapping(m), true
	default:
		return Value{}, false
	}
}

func formatNumber(n float64) string {
	if math.IsInf(n, 1) {
		return "Infinity"
	}
	if math.IsInf(n, -1) {
		return "-Infinity"
	}
	if math.IsNaN(n) {
		return "NaN"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
