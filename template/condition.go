package template

import "strings"

// EvaluateCondition evaluates an if-expression with the strict policy.
//
// The expression is either a single operand, tested for truthiness, or
// "LEFT OP RIGHT" with OP one of ==, !=, >, >=, <, <=. Malformed expressions
// evaluate to false without an error; only an undefined variable path
// returns one.
func EvaluateCondition(expr string, vars Variables) (bool, error) {
	return evaluateCondition(expr, vars, MissingPathStrict)
}

func evaluateCondition(expr string, vars Variables, policy MissingPathPolicy) (bool, error) {
	if expr == "" {
		return false, nil
	}
	parts := strings.Split(expr, tokenSeparator)

	if len(parts) == 1 {
		operand, err := operandValue(parts[0], vars, policy)
		if err != nil {
			return false, err
		}
		return operand.Truthy(), nil
	}
	if len(parts) != 3 || !isOperator(parts[1]) {
		return false, nil
	}

	left, err := operandValue(parts[0], vars, policy)
	if err != nil {
		return false, err
	}
	right, err := operandValue(parts[2], vars, policy)
	if err != nil {
		return false, err
	}

	return compare(left, parts[1], right), nil
}

// operandValue resolves a condition token as a literal or a coerced variable.
func operandValue(token string, vars Variables, policy MissingPathPolicy) (Value, error) {
	if isLiteral(token) {
		return literalValue(token), nil
	}
	v, err := lookup(token, vars, policy)
	if err != nil {
		return Value{}, err
	}
	return v.coerce(), nil
}

// compare applies op to two operands. Ordering operators require both
// operands to be truthy.
func compare(left Value, op string, right Value) bool {
	switch op {
	case "==":
		return looseEqual(left, right)
	case "!=":
		return !looseEqual(left, right)
	}

	if !left.Truthy() || !right.Truthy() {
		return false
	}
	c, ok := order(left, right)
	if !ok {
		return false
	}

	switch op {
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	default:
		return false
	}
}

// looseEqual compares numerically when both sides have a numeric reading,
// otherwise by rendered text. A boolean never equals a non-numeric string
// and mappings never compare equal.
func looseEqual(left, right Value) bool {
	if left.kind == KindMapping || right.kind == KindMapping {
		return false
	}
	ln, lok := left.number()
	rn, rok := right.number()
	if lok && rok {
		return ln == rn
	}
	if left.kind == KindBool || right.kind == KindBool {
		return false
	}
	return left.String() == right.String()
}

// order returns -1, 0 or 1. Numbers compare numerically and two strings
// compare lexicographically; any other pairing is unordered.
func order(left, right Value) (int, bool) {
	ln, lok := left.number()
	rn, rok := right.number()
	switch {
	case lok && rok:
		switch {
		case ln < rn:
			return -1, true
		case ln > rn:
			return 1, true
		default:
			return 0, true
		}
	case left.kind == KindString && right.kind == KindString:
		return strings.Compare(left.s, right.s), true
	default:
		return 0, false
	}
}
