package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formsync/pkg/dom"
	"github.com/goliatone/go-formsync/pkg/engine"
	"github.com/goliatone/go-formsync/pkg/registry"
	"github.com/goliatone/go-formsync/pkg/steps"
	"github.com/goliatone/go-formsync/pkg/visibility"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config describes the markup conventions of a form page.
type Config struct {
	RootSelector string           `json:"rootSelector" yaml:"rootSelector"`
	SettleDelay  Duration         `json:"settleDelay" yaml:"settleDelay"`
	Markers      registry.Markers `json:"markers" yaml:"markers"`
	Visibility   Visibility       `json:"visibility" yaml:"visibility"`
	Steps        steps.Config     `json:"steps" yaml:"steps"`
}

// Visibility names the conditional visibility attributes.
type Visibility struct {
	HideAttr       string   `json:"hideAttr" yaml:"hideAttr"`
	ShowAttr       string   `json:"showAttr" yaml:"showAttr"`
	HiddenMarker   string   `json:"hiddenMarker" yaml:"hiddenMarker"`
	RequiredMarker string   `json:"requiredMarker" yaml:"requiredMarker"`
	WrapperClasses []string `json:"wrapperClasses" yaml:"wrapperClasses"`
}

// Default returns the embedded configuration.
func Default() Config {
	cfg, err := Parse(defaultsYAML, "defaults.yaml")
	if err != nil {
		// defaults.yaml ships with the binary; failing to parse it is a build
		// defect.
		panic(err)
	}
	return cfg
}

// Load reads a JSON or YAML file from disk. An empty path yields Default.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return overlay(Default(), data, path)
}

// LoadFS reads a JSON or YAML file from fsys.
func LoadFS(fsys fs.FS, path string) (Config, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return overlay(Default(), data, path)
}

// Parse decodes data without applying defaults first.
func Parse(data []byte, source string) (Config, error) {
	return overlay(Config{}, data, source)
}

// overlay decodes data on top of base, so keys absent from data keep their
// base values. JSON is tried first, then YAML.
func overlay(base Config, data []byte, source string) (Config, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Config{}, fmt.Errorf("config: file %s is empty", source)
	}

	cfg := base
	if err := json.Unmarshal(data, &cfg); err != nil {
		cfg = base
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: invalid JSON or YAML: %w", source, err)
		}
	}
	cfg, err := cfg.normalise(base)
	if err != nil {
		return Config{}, fmt.Errorf("%w (in %s)", err, source)
	}
	return cfg, nil
}

// normalise fills defaults, unifies the required marker and validates every
// selector. base is the configuration the file was decoded over.
func (c Config) normalise(base Config) (Config, error) {
	c.RootSelector = strings.TrimSpace(c.RootSelector)
	c.Markers = c.Markers.WithDefaults()
	if c.SettleDelay < 0 {
		c.SettleDelay = 0
	}

	marker, err := requiredMarker(c, base)
	if err != nil {
		return Config{}, err
	}
	c.Steps.RequiredMarker = marker
	c.Steps = c.Steps.WithDefaults()
	c.Visibility.RequiredMarker = c.Steps.RequiredMarker

	if err := c.validateSelectors(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// requiredMarker picks the one attribute both the visibility controller and
// the step validator use for parked required flags. Setting either key is
// enough; setting both to different values is an error.
func requiredMarker(c, base Config) (string, error) {
	vis := strings.TrimSpace(c.Visibility.RequiredMarker)
	st := strings.TrimSpace(c.Steps.RequiredMarker)
	switch {
	case vis == st, vis == "":
		return st, nil
	case st == "":
		return vis, nil
	case st == strings.TrimSpace(base.Steps.RequiredMarker):
		return vis, nil
	case vis == strings.TrimSpace(base.Visibility.RequiredMarker):
		return st, nil
	}
	return "", fmt.Errorf("config: visibility.requiredMarker %q and steps.requiredMarker %q differ", vis, st)
}

func (c Config) validateSelectors() error {
	selectors := []struct {
		key, value string
	}{
		{"rootSelector", c.RootSelector},
		{"steps.stepSelector", c.Steps.StepSelector},
		{"steps.branchingSelector", c.Steps.BranchingSelector},
		{"steps.containerSelector", c.Steps.ContainerSelector},
		{"steps.errorSelector", c.Steps.ErrorSelector},
		{"steps.nextSelector", c.Steps.NextSelector},
		{"steps.backSelector", c.Steps.BackSelector},
		{"steps.itemSelector", c.Steps.ItemSelector},
	}
	for _, sel := range selectors {
		// An empty root selector falls back to the engine default.
		if sel.key == "rootSelector" && sel.value == "" {
			continue
		}
		if _, err := dom.Compile(sel.value); err != nil {
			return fmt.Errorf("config: invalid selector %s %q: %w", sel.key, sel.value, err)
		}
	}
	return nil
}

// EngineOptions translates the configuration into engine options.
func (c Config) EngineOptions() []engine.Option {
	return []engine.Option{
		engine.WithRootSelector(c.RootSelector),
		engine.WithSettleDelay(time.Duration(c.SettleDelay)),
		engine.WithMarkers(c.Markers),
		engine.WithStepsConfig(c.Steps),
		engine.WithVisibilityConfig(visibility.Config{
			HideAttr:       c.Visibility.HideAttr,
			ShowAttr:       c.Visibility.ShowAttr,
			HiddenMarker:   c.Visibility.HiddenMarker,
			RequiredMarker: c.Visibility.RequiredMarker,
			WrapperClasses: append([]string(nil), c.Visibility.WrapperClasses...),
		}),
	}
}

// Duration accepts Go duration strings ("50ms") or integer milliseconds.
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var ms int64
	if err := json.Unmarshal(data, &ms); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("config: duration: %w", err)
	}
	return d.set(raw)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var ms int64
	if node.Tag == "!!int" {
		if err := node.Decode(&ms); err != nil {
			return fmt.Errorf("config: duration: %w", err)
		}
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	return d.set(node.Value)
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) set(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}
