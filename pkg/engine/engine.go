package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsync/pkg/dom"
	"github.com/goliatone/go-formsync/pkg/registry"
	"github.com/goliatone/go-formsync/pkg/schedule"
	"github.com/goliatone/go-formsync/pkg/steps"
	"github.com/goliatone/go-formsync/pkg/summarysync"
	"github.com/goliatone/go-formsync/pkg/visibility"
	"github.com/goliatone/go-formsync/pkg/visibility/condition"
)

var (
	// ErrNoRootForm is returned by Attach when the document has no root form.
	ErrNoRootForm = errors.New("engine: root form not found")
	// ErrNotAttached is returned by operations that need an attached engine.
	ErrNotAttached = errors.New("engine: not attached")
	// ErrStepIncomplete is returned by Next when the current step has
	// unsatisfied required groups.
	ErrStepIncomplete = steps.ErrStepIncomplete
)

const visibilityKey = "visibility"

// Engine owns the controllers for one document.
type Engine struct {
	doc          *dom.Document
	logger       *zap.Logger
	settle       time.Duration
	markers      registry.Markers
	stepsCfg     steps.Config
	visCfg       visibility.Config
	compounds    []summarysync.Compound
	compoundsSet bool
	rootSelector string

	reg       *registry.Registry
	evaluator *condition.Evaluator
	vis       *visibility.Controller
	summaries *summarysync.Controller
	validator *steps.Validator
	nav       *steps.Navigator
	debounce  *schedule.Debouncer

	// mu serializes event handlers, debounced tasks and public operations.
	mu          sync.Mutex
	attached    bool
	root        *dom.Element
	formID      string
	unsubscribe []func()
	dirty       map[string]struct{}
}

// New builds the controllers for doc. The engine stays passive until Attach.
func New(doc *dom.Document, opts ...Option) *Engine {
	e := &Engine{
		doc:          doc,
		logger:       zap.NewNop(),
		settle:       DefaultSettleDelay,
		markers:      registry.DefaultMarkers(),
		stepsCfg:     steps.DefaultConfig(),
		rootSelector: RootSelector,
		dirty:        make(map[string]struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	// The visibility controller parks required on the marker and the
	// validator reads it back, so both must use the same attribute.
	if e.visCfg.RequiredMarker == "" {
		e.visCfg.RequiredMarker = e.stepsCfg.RequiredMarker
	} else {
		e.stepsCfg.RequiredMarker = e.visCfg.RequiredMarker
	}

	e.reg = registry.New(doc, registry.WithMarkers(e.markers))
	e.evaluator = condition.New(condition.WithReporter(func(err error) {
		e.logger.Warn("skipping condition clause", zap.Error(err))
	}))
	e.vis = visibility.NewController(doc, e.evaluator, e.lookup, e.visCfg)

	syncOpts := []summarysync.Option{summarysync.WithLogger(e.logger.Named("summary"))}
	if e.compoundsSet {
		syncOpts = append(syncOpts, summarysync.WithCompounds(e.compounds...))
	}
	e.summaries = summarysync.NewController(e.reg, syncOpts...)

	e.validator = steps.NewValidator(doc, e.stepsCfg, steps.WithHidden(e.vis.ConditionallyHidden))
	e.nav = steps.NewNavigator(doc, e.validator, e.stepsCfg, steps.WithUnresolved(func(step int, target string) {
		e.logger.Warn("branch target matches no step",
			zap.Int("step", step),
			zap.String("target", target),
		)
	}))
	e.debounce = schedule.NewDebouncer(nil)
	return e
}

// Attach waits for ready (nil means ready now), locates the root form,
// subscribes to document events and runs the initial visibility pass and
// summary population. Attaching an attached engine is a no-op.
func (e *Engine) Attach(ctx context.Context, ready *schedule.Readiness) error {
	if ready != nil {
		if err := ready.Wait(ctx); err != nil {
			return fmt.Errorf("engine: wait for readiness: %w", err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.attached {
		return nil
	}

	match, err := dom.Compile(e.rootSelector)
	if err != nil {
		return fmt.Errorf("engine: root selector: %w", err)
	}
	if e.doc == nil {
		return ErrNoRootForm
	}
	root := e.doc.Query(match)
	if root == nil {
		return ErrNoRootForm
	}
	formID := root.AttrValue(FormIDAttr)
	if formID == "" {
		formID = uuid.NewString()
		root.SetAttr(FormIDAttr, formID)
	}
	e.root = root
	e.formID = formID

	e.unsubscribe = append(e.unsubscribe,
		e.doc.On(dom.EventInput, e.onValue),
		e.doc.On(dom.EventChange, e.onValue),
		e.doc.On(dom.EventClick, e.onClick),
	)
	e.attached = true

	e.nav.Init()
	e.rescanLocked()

	e.logger.Info("form attached",
		zap.String("form_id", formID),
		zap.Int("fields", len(e.reg.Fields())),
		zap.Int("slots", len(e.reg.Slots())),
		zap.Int("blocks", len(e.vis.Blocks())),
		zap.Int("steps", len(e.nav.Steps())),
	)
	return nil
}

// Detach removes the event listeners and drops pending visibility work.
func (e *Engine) Detach() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, remove := range e.unsubscribe {
		remove()
	}
	e.unsubscribe = nil
	e.debounce.Cancel(visibilityKey)
	clear(e.dirty)
	e.attached = false
}

// Refresh re-scans fields, slots, conditional blocks, radio groups and steps,
// then re-applies visibility and summaries. Use it after markup changes.
func (e *Engine) Refresh() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.attached {
		return ErrNotAttached
	}
	e.reg.Refresh()
	e.vis.Scan()
	e.validator.Refresh()
	e.nav.Refresh()
	e.rescanLocked()
	return nil
}

// RecheckVisibility evaluates every conditional block now, discarding any
// pending debounced evaluation.
func (e *Engine) RecheckVisibility() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.attached {
		return ErrNotAttached
	}
	e.debounce.Cancel(visibilityKey)
	clear(e.dirty)
	e.vis.EvaluateAll()
	e.validator.UpdateButtons()
	return nil
}

// IsGroupValid reports whether the named radio group is satisfied.
func (e *Engine) IsGroupValid(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.validator.IsGroupValid(name)
}

// InvalidGroups lists the visible required radio groups without a selection.
func (e *Engine) InvalidGroups() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.validator.InvalidGroups()
}

// Next advances to the next step. It returns an error matching
// ErrStepIncomplete when the current step blocks.
func (e *Engine) Next() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.attached {
		return ErrNotAttached
	}
	return e.nav.Next()
}

// Back returns to the previous step.
func (e *Engine) Back() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.attached {
		return ErrNotAttached
	}
	return e.nav.Back()
}

// CurrentStep returns the index of the displayed step.
func (e *Engine) CurrentStep() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nav.Current()
}

// Flush runs pending debounced work immediately.
func (e *Engine) Flush() {
	e.debounce.Flush()
}

// FormID returns the identifier of the attached root form.
func (e *Engine) FormID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.formID
}

// Document returns the document the engine operates on.
func (e *Engine) Document() *dom.Document { return e.doc }

// Registry returns the field and summary registry.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// Visibility returns the conditional visibility controller.
func (e *Engine) Visibility() *visibility.Controller { return e.vis }

// Validator returns the step validator.
func (e *Engine) Validator() *steps.Validator { return e.validator }

// Navigator returns the step navigator.
func (e *Engine) Navigator() *steps.Navigator { return e.nav }

func (e *Engine) rescanLocked() {
	e.vis.EvaluateAll()
	written := e.summaries.PopulateInitial()
	e.validator.UpdateButtons()
	e.logger.Debug("initial pass complete", zap.Int("summary_slots", written))
}

func (e *Engine) onValue(ev dom.Event) {
	e.handle(ev, func() {
		target := ev.Target
		if !target.IsControl() {
			return
		}
		if n := e.summaries.HandleChange(target); n > 0 {
			e.logger.Debug("summaries synced", zap.String("event", ev.Type), zap.Int("slots", n))
		}
		e.validator.HandleChange(target)
		if e.nav.HandleChange(target) {
			e.logger.Debug("branch chosen", zap.String("field", target.Name()))
		}

		scheduled := false
		for _, name := range e.namesOf(target) {
			if e.vis.Watches(name) {
				e.dirty[name] = struct{}{}
				scheduled = true
			}
		}
		if scheduled {
			e.scheduleVisibilityLocked()
		}
	})
}

func (e *Engine) onClick(ev dom.Event) {
	e.handle(ev, func() {
		handled, err := e.nav.HandleClick(ev.Target)
		if !handled {
			return
		}
		if err != nil {
			e.logger.Debug("navigation refused", zap.Error(err))
			return
		}
		e.logger.Debug("navigated", zap.Int("step", e.nav.Current()))
	})
}

// handle runs fn for an event inside the root form, serialized with other
// handlers. A panic is logged and swallowed.
func (e *Engine) handle(ev dom.Event, fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.attached || ev.Target == nil || !e.root.Contains(ev.Target) {
		return
	}
	defer e.recoverPanic(ev.Type)
	fn()
}

func (e *Engine) recoverPanic(what string) {
	if r := recover(); r != nil {
		e.logger.Error("recovered from handler panic",
			zap.String("handler", what),
			zap.Any("panic", r),
			zap.StackSkip("stack", 2),
		)
	}
}

func (e *Engine) scheduleVisibilityLocked() {
	if e.settle <= 0 {
		e.evaluateDirtyLocked()
		return
	}
	e.debounce.Schedule(visibilityKey, e.settle, e.evaluateDirty)
}

func (e *Engine) evaluateDirty() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.attached {
		return
	}
	defer e.recoverPanic(visibilityKey)
	e.evaluateDirtyLocked()
}

func (e *Engine) evaluateDirtyLocked() {
	if len(e.dirty) == 0 {
		return
	}
	names := make([]string, 0, len(e.dirty))
	for name := range e.dirty {
		names = append(names, name)
	}
	slices.Sort(names)
	clear(e.dirty)

	e.vis.EvaluateFields(names...)
	e.validator.UpdateButtons()
	e.logger.Debug("visibility re-evaluated", zap.Strings("fields", names))
}
