package registry

import (
	"fmt"
	"strings"
)

// StepContext identifies the step (or summary container) an element belongs
// to. Empty attributes are wildcards when contexts are matched.
type StepContext struct {
	Type    string
	Number  string
	Subtype string
}

// IsZero reports whether no attribute could be resolved, i.e. the element is
// global/unscoped.
func (c StepContext) IsZero() bool {
	return c.Type == "" && c.Number == "" && c.Subtype == ""
}

func (c StepContext) String() string {
	if c.IsZero() {
		return "global"
	}
	number := c.Number
	if number == "" && c.Subtype != "" {
		number = "*"
	}
	parts := []string{c.Type}
	if number != "" {
		parts = append(parts, number)
	}
	if c.Subtype != "" {
		parts = append(parts, c.Subtype)
	}
	return strings.Join(parts, "/")
}

// Match implements the compatibility matching policy between a field's step
// context and a summary slot's container context: each attribute that is
// absent on either side matches anything; attributes present on both sides
// must be equal.
func Match(field, slot StepContext) bool {
	return matchPart(field.Type, slot.Type) &&
		matchPart(field.Number, slot.Number) &&
		matchPart(field.Subtype, slot.Subtype)
}

func matchPart(a, b string) bool {
	if a == "" || b == "" {
		return true
	}
	return a == b
}

// Key is the lookup key SummarySlots use to refer back to a field.
type Key struct {
	Field string
	Step  StepContext
}

func (k Key) String() string {
	return fmt.Sprintf("%s@%s", k.Field, k.Step)
}
