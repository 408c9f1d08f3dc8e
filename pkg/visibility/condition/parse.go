package condition

import (
	"fmt"
	"strings"
)

// Clause is a single `field:operator:value` condition.
type Clause struct {
	Field    string
	Operator string
	Target   string
	Raw      string
}

// Expression is a parsed, semicolon-separated clause list.
type Expression struct {
	Raw     string
	Clauses []Clause
}

// Empty reports whether the expression holds no usable clause.
func (e Expression) Empty() bool {
	return len(e.Clauses) == 0
}

// Fields returns the distinct field names referenced by the expression, in
// clause order.
func (e Expression) Fields() []string {
	seen := make(map[string]struct{}, len(e.Clauses))
	out := make([]string, 0, len(e.Clauses))
	for _, c := range e.Clauses {
		if _, ok := seen[c.Field]; ok {
			continue
		}
		seen[c.Field] = struct{}{}
		out = append(out, c.Field)
	}
	return out
}

// ParseError reports a clause that could not be parsed. Malformed clauses are
// skipped; the rest of the expression still applies.
type ParseError struct {
	Clause string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("condition: malformed clause %q: expected field:operator:value", e.Clause)
}

// Parse splits raw into clauses. Clauses with fewer than three colon-separated
// parts, or an empty field name, are reported and skipped. Any colons after
// the operator belong to the target value.
func Parse(raw string) (Expression, []error) {
	expr := Expression{Raw: raw}
	var errs []error
	for _, chunk := range strings.Split(raw, ";") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		parts := strings.Split(chunk, ":")
		if len(parts) < 3 {
			errs = append(errs, &ParseError{Clause: chunk})
			continue
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if parts[0] == "" || parts[1] == "" {
			errs = append(errs, &ParseError{Clause: chunk})
			continue
		}
		expr.Clauses = append(expr.Clauses, Clause{
			Field:    parts[0],
			Operator: parts[1],
			Target:   strings.TrimSpace(strings.Join(parts[2:], ":")),
			Raw:      chunk,
		})
	}
	return expr, errs
}
