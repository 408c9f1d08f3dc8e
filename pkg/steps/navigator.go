package steps

import (
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-formsync/pkg/dom"
)

var (
	// ErrStepIncomplete is returned when advancing past a step with
	// unsatisfied required groups.
	ErrStepIncomplete = errors.New("steps: current step is incomplete")
	// ErrNoNextStep is returned when advancing from the last step.
	ErrNoNextStep = errors.New("steps: no next step")
	// ErrNoPreviousStep is returned when going back from the first step.
	ErrNoPreviousStep = errors.New("steps: no previous step")
	// ErrUnreachableStep is returned by GoTo when the branches chosen so far
	// lead past the requested step or back into visited ones.
	ErrUnreachableStep = errors.New("steps: step is not on the chosen path")
)

// IncompleteError carries the issues that blocked an advance. It matches
// ErrStepIncomplete with errors.Is.
type IncompleteError struct {
	Step   int
	Issues []Issue
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("steps: step %d has %d unsatisfied group(s)", e.Step, len(e.Issues))
}

func (e *IncompleteError) Is(target error) bool {
	return target == ErrStepIncomplete
}

// Navigator shows one step at a time and moves between steps, refusing to
// advance past incomplete ones. Next follows branch targets; Back retraces
// the visited steps.
type Navigator struct {
	doc        *dom.Document
	cfg        Config
	validator  *Validator
	item       dom.Matcher
	unresolved UnresolvedFunc

	mu      sync.Mutex
	steps   []*dom.Element
	current int
	history []int
}

// NewNavigator discovers the steps of doc. Call Init to display the first.
func NewNavigator(doc *dom.Document, validator *Validator, cfg Config, opts ...NavigatorOption) *Navigator {
	n := &Navigator{doc: doc, cfg: cfg.WithDefaults(), validator: validator}
	n.item = dom.Selector(n.cfg.ItemSelector)
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	n.Refresh()
	return n
}

// Refresh rediscovers the steps, keeping the current index when still valid.
func (n *Navigator) Refresh() {
	var steps []*dom.Element
	if match := dom.Selector(n.cfg.StepSelector); match != nil && n.doc != nil {
		steps = n.doc.QueryAll(match)
	}
	n.mu.Lock()
	n.steps = steps
	if n.current >= len(steps) {
		n.current = 0
		n.history = nil
	}
	n.mu.Unlock()
}

// Init displays the first step, hides the others and applies step items.
func (n *Navigator) Init() {
	n.mu.Lock()
	n.current = 0
	n.history = nil
	n.mu.Unlock()
	n.show(0)
}

// Steps returns the discovered steps in document order.
func (n *Navigator) Steps() []*dom.Element {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*dom.Element(nil), n.steps...)
}

// Current returns the index of the displayed step.
func (n *Navigator) Current() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// CurrentStep returns the displayed step element, or nil when the document
// has no steps.
func (n *Navigator) CurrentStep() *dom.Element {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current < len(n.steps) {
		return n.steps[n.current]
	}
	return nil
}

// Next validates the current step and advances to its branch target, or to
// the following step when no target applies. When the step is incomplete,
// inline errors are shown, the first invalid control is focused and an
// *IncompleteError is returned. A complete last step without a target yields
// ErrNoNextStep.
func (n *Navigator) Next() error {
	n.mu.Lock()
	idx := n.current
	steps := append([]*dom.Element(nil), n.steps...)
	n.mu.Unlock()

	if idx >= len(steps) {
		return ErrNoNextStep
	}
	step := steps[idx]
	if err := n.check(idx, step); err != nil {
		return err
	}
	next, ok := n.nextIndex(idx, step, steps)
	if !ok {
		return ErrNoNextStep
	}

	n.mu.Lock()
	n.history = append(n.history, idx)
	n.current = next
	n.mu.Unlock()
	n.show(next)
	return nil
}

// Back returns to the previously displayed step.
func (n *Navigator) Back() error {
	n.mu.Lock()
	if len(n.history) == 0 {
		n.mu.Unlock()
		return ErrNoPreviousStep
	}
	prev := n.history[len(n.history)-1]
	n.history = n.history[:len(n.history)-1]
	n.current = prev
	n.mu.Unlock()
	n.show(prev)
	return nil
}

// GoTo displays step i. Backward jumps are free. Forward jumps walk the
// branches as Next would and stop at the first incomplete step, leaving it
// displayed with its errors. A step the chosen branches skip yields
// ErrUnreachableStep.
func (n *Navigator) GoTo(i int) error {
	total := len(n.Steps())
	if i < 0 || i >= total {
		return fmt.Errorf("steps: step index %d out of range [0,%d)", i, total)
	}
	from := n.Current()
	if i < from {
		n.mu.Lock()
		n.history = append(n.history, from)
		n.current = i
		n.mu.Unlock()
		n.show(i)
		return nil
	}
	seen := map[int]bool{from: true}
	for n.Current() != i {
		if err := n.Next(); err != nil {
			return err
		}
		cur := n.Current()
		if seen[cur] || cur > i {
			return fmt.Errorf("%w: %d", ErrUnreachableStep, i)
		}
		seen[cur] = true
	}
	return nil
}

// HandleClick routes a click on a next or back button. It reports whether
// the target was a navigation button and the outcome of the move.
func (n *Navigator) HandleClick(el *dom.Element) (bool, error) {
	if el == nil {
		return false, nil
	}
	if match := dom.Selector(n.cfg.NextSelector); match != nil && el.Closest(match) != nil {
		return true, n.Next()
	}
	if match := dom.Selector(n.cfg.BackSelector); match != nil && el.Closest(match) != nil {
		return true, n.Back()
	}
	return false, nil
}

func (n *Navigator) check(idx int, step *dom.Element) error {
	if n.validator == nil {
		return nil
	}
	issues := n.validator.ValidateStep(step)
	if len(issues) == 0 {
		return nil
	}
	if issues[0].Focus != nil {
		n.doc.Focus(issues[0].Focus)
	}
	return &IncompleteError{Step: idx, Issues: issues}
}

func (n *Navigator) show(idx int) {
	for i, step := range n.Steps() {
		step.SetDisplayNone(i != idx)
	}
	n.UpdateItems()
	if n.validator != nil {
		n.validator.UpdateButtons()
	}
}
