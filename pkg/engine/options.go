package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formsync/pkg/registry"
	"github.com/goliatone/go-formsync/pkg/steps"
	"github.com/goliatone/go-formsync/pkg/summarysync"
	"github.com/goliatone/go-formsync/pkg/visibility"
)

// DefaultSettleDelay is how long visibility re-evaluation waits for a burst of
// changes to settle.
const DefaultSettleDelay = 50 * time.Millisecond

// RootSelector identifies the multi-step form the engine attaches to.
const RootSelector = `[data-form="multistep"]`

// FormIDAttr receives a generated identifier when the root form has none.
const FormIDAttr = "data-form-id"

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger shared by the engine and its controllers.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSettleDelay sets the visibility debounce. Zero or a negative value
// re-evaluates synchronously inside the event handler.
func WithSettleDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.settle = d
	}
}

// WithMarkers overrides the field and summary attribute names.
func WithMarkers(markers registry.Markers) Option {
	return func(e *Engine) {
		e.markers = markers.WithDefaults()
	}
}

// WithStepsConfig overrides step, radio group and button selectors.
func WithStepsConfig(cfg steps.Config) Option {
	return func(e *Engine) {
		e.stepsCfg = cfg.WithDefaults()
	}
}

// WithVisibilityConfig overrides the conditional visibility attributes.
func WithVisibilityConfig(cfg visibility.Config) Option {
	return func(e *Engine) {
		e.visCfg = cfg
	}
}

// WithCompounds replaces the compound summary fields. The phone compound is
// used when this option is absent.
func WithCompounds(compounds ...summarysync.Compound) Option {
	return func(e *Engine) {
		e.compounds = append([]summarysync.Compound(nil), compounds...)
		e.compoundsSet = true
	}
}

// WithRootSelector overrides the selector of the root form.
func WithRootSelector(selector string) Option {
	return func(e *Engine) {
		if selector != "" {
			e.rootSelector = selector
		}
	}
}
