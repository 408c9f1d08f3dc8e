package condition

import (
	"errors"
	"sync"

	"github.com/goliatone/go-formsync/pkg/visibility"
)

// Reporter receives non-fatal problems found while parsing or evaluating
// expressions: malformed clauses and unknown operators.
type Reporter func(err error)

// Evaluator implements visibility.Evaluator for the clause grammar used in
// data-hide-if / data-show-if attributes. Parsed expressions are cached by
// their raw text.
type Evaluator struct {
	report Reporter

	mu    sync.Mutex
	cache map[string]Expression
}

var _ visibility.Evaluator = (*Evaluator)(nil)

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithReporter routes warnings to fn.
func WithReporter(fn Reporter) Option {
	return func(e *Evaluator) {
		e.report = fn
	}
}

// New constructs an Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{cache: make(map[string]Expression)}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// ShouldHide evaluates a block rule: the block hides when any HideIf clause
// matches, or when ShowIf has clauses and not all of them match.
func (e *Evaluator) ShouldHide(rule visibility.Rule, lookup visibility.Lookup) bool {
	if rule.ShowIf != "" {
		show := e.expression(rule.ShowIf)
		if !show.Empty() && !e.all(show, lookup) {
			return true
		}
	}
	if rule.HideIf != "" {
		return e.any(e.expression(rule.HideIf), lookup)
	}
	return false
}

// Hide evaluates a single hide expression (ANY clause true hides).
func (e *Evaluator) Hide(expr string, lookup visibility.Lookup) bool {
	return e.any(e.expression(expr), lookup)
}

// References lists the field names a rule depends on.
func (e *Evaluator) References(rule visibility.Rule) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, raw := range []string{rule.HideIf, rule.ShowIf} {
		if raw == "" {
			continue
		}
		for _, name := range e.expression(raw).Fields() {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// Clause evaluates one clause. An unknown operator is reported whether or not
// the field exists. A field the lookup does not know makes the clause false
// without a warning, since absent fields are a valid configuration.
func (e *Evaluator) Clause(c Clause, lookup visibility.Lookup) bool {
	if _, ok := Canonical(c.Operator); !ok {
		e.warn(&OperatorError{Operator: c.Operator, Clause: c.Raw})
		return false
	}
	if lookup == nil {
		return false
	}
	value, ok := lookup(c.Field)
	if !ok {
		return false
	}
	result, err := Apply(c.Operator, value, c.Target)
	if err != nil {
		var opErr *OperatorError
		if errors.As(err, &opErr) {
			opErr.Clause = c.Raw
		}
		e.warn(err)
		return false
	}
	return result
}

func (e *Evaluator) any(expr Expression, lookup visibility.Lookup) bool {
	for _, c := range expr.Clauses {
		if e.Clause(c, lookup) {
			return true
		}
	}
	return false
}

func (e *Evaluator) all(expr Expression, lookup visibility.Lookup) bool {
	for _, c := range expr.Clauses {
		if !e.Clause(c, lookup) {
			return false
		}
	}
	return true
}

func (e *Evaluator) expression(raw string) Expression {
	e.mu.Lock()
	if expr, ok := e.cache[raw]; ok {
		e.mu.Unlock()
		return expr
	}
	e.mu.Unlock()

	expr, errs := Parse(raw)
	for _, err := range errs {
		e.warn(err)
	}

	e.mu.Lock()
	e.cache[raw] = expr
	e.mu.Unlock()
	return expr
}

func (e *Evaluator) warn(err error) {
	if e.report != nil && err != nil {
		e.report(err)
	}
}
