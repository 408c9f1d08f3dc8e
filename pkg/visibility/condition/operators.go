package condition

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Operator names. Matching is case-insensitive and each operator accepts a few
// aliases.
const (
	OpEquals       = "equals"
	OpNotEquals    = "notequals"
	OpContains     = "contains"
	OpNotContains  = "notcontains"
	OpStartsWith   = "startswith"
	OpEndsWith     = "endswith"
	OpIsEmpty      = "isempty"
	OpIsNotEmpty   = "isnotempty"
	OpGreaterThan  = "greaterthan"
	OpLessThan     = "lessthan"
	OpGreaterEqual = "greaterequal"
	OpLessEqual    = "lessequal"
	OpIn           = "in"
	OpNotIn        = "notin"
)

var aliases = map[string]string{
	"equals": OpEquals, "eq": OpEquals, "==": OpEquals,
	"notequals": OpNotEquals, "neq": OpNotEquals, "!=": OpNotEquals,
	"contains":    OpContains,
	"notcontains": OpNotContains,
	"startswith":  OpStartsWith,
	"endswith":    OpEndsWith,
	"isempty":     OpIsEmpty, "empty": OpIsEmpty,
	"isnotempty": OpIsNotEmpty, "notempty": OpIsNotEmpty,
	"greaterthan": OpGreaterThan, "gt": OpGreaterThan,
	"lessthan": OpLessThan, "lt": OpLessThan,
	"greaterequal": OpGreaterEqual, "gte": OpGreaterEqual,
	"lessequal": OpLessEqual, "lte": OpLessEqual,
	"in":    OpIn,
	"notin": OpNotIn,
}

// OperatorError reports an operator the evaluator does not know. The clause
// evaluates to false.
type OperatorError struct {
	Operator string
	Clause   string
}

func (e *OperatorError) Error() string {
	return fmt.Sprintf("condition: unknown operator %q in clause %q", e.Operator, e.Clause)
}

// Canonical returns the canonical operator name for op.
func Canonical(op string) (string, bool) {
	name, ok := aliases[strings.ToLower(strings.TrimSpace(op))]
	return name, ok
}

// Normalize stringifies, trims and lowercases a value for comparison.
func Normalize(value any) string {
	if value == nil {
		return ""
	}
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		s = fmt.Sprint(v)
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// Apply evaluates operator against an already resolved field value.
func Apply(operator, fieldValue, target string) (bool, error) {
	op, ok := Canonical(operator)
	if !ok {
		return false, &OperatorError{Operator: operator}
	}

	got := Normalize(fieldValue)
	want := Normalize(target)

	switch op {
	case OpEquals:
		return got == want, nil
	case OpNotEquals:
		return got != want, nil
	case OpContains:
		return strings.Contains(got, want), nil
	case OpNotContains:
		return !strings.Contains(got, want), nil
	case OpStartsWith:
		return strings.HasPrefix(got, want), nil
	case OpEndsWith:
		return strings.HasSuffix(got, want), nil
	case OpIsEmpty:
		return got == "", nil
	case OpIsNotEmpty:
		return got != "", nil
	case OpIn:
		return inList(got, target), nil
	case OpNotIn:
		return !inList(got, target), nil
	case OpGreaterThan, OpLessThan, OpGreaterEqual, OpLessEqual:
		return compareNumbers(op, fieldValue, target), nil
	}
	return false, &OperatorError{Operator: operator}
}

func inList(got, list string) bool {
	for _, item := range strings.Split(list, ",") {
		if Normalize(item) == got {
			return true
		}
	}
	return false
}

// numericPrefix matches the leading number of a value such as "18 years".
var numericPrefix = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// leadingNumber reads the number a value starts with and ignores whatever
// follows it. Values that do not start with a number fail.
func leadingNumber(raw string) (float64, bool) {
	prefix := numericPrefix.FindString(strings.TrimSpace(raw))
	if prefix == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// compareNumbers compares the leading numbers of both sides. A side without
// one makes every comparison false.
func compareNumbers(op, fieldValue, target string) bool {
	a, okA := leadingNumber(fieldValue)
	b, okB := leadingNumber(target)
	if !okA || !okB {
		return false
	}
	switch op {
	case OpGreaterThan:
		return a > b
	case OpLessThan:
		return a < b
	case OpGreaterEqual:
		return a >= b
	case OpLessEqual:
		return a <= b
	}
	return false
}
