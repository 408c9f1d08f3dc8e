package visibility

// Lookup returns the current value of a field by its logical name. The second
// result is false when no such field exists.
type Lookup func(fieldName string) (string, bool)

// Rule holds the raw condition expressions attached to a conditional block.
// HideIf hides the block when any clause matches; ShowIf keeps it visible only
// while every clause matches.
type Rule struct {
	HideIf string
	ShowIf string
}

// Empty reports whether the rule carries no expression at all.
func (r Rule) Empty() bool {
	return r.HideIf == "" && r.ShowIf == ""
}

// Evaluator determines whether a block should be hidden for the current field
// values and which field names a rule depends on.
type Evaluator interface {
	ShouldHide(rule Rule, lookup Lookup) bool
	References(rule Rule) []string
}

// EvaluatorFunc adapts a function into an Evaluator that declares no
// references, so blocks using it are only re-evaluated on full rechecks.
type EvaluatorFunc func(rule Rule, lookup Lookup) bool

// ShouldHide delegates to the underlying function.
func (fn EvaluatorFunc) ShouldHide(rule Rule, lookup Lookup) bool {
	return fn(rule, lookup)
}

// References returns nil.
func (fn EvaluatorFunc) References(Rule) []string {
	return nil
}
