package steps

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formsync/pkg/dom"
)

// RadioGroup is a set of radios sharing a name. Required groups gate the
// completion of the step that owns them.
type RadioGroup struct {
	Name      string
	Radios    []*dom.Element
	Step      *dom.Element
	Container *dom.Element
	Error     *dom.Element
	Message   string
	Required  bool
}

// Checked reports whether any member is checked.
func (g *RadioGroup) Checked() bool {
	for _, r := range g.Radios {
		if r.Checked() {
			return true
		}
	}
	return false
}

// Issue describes an unsatisfied required group.
type Issue struct {
	Group   string
	Message string
	Focus   *dom.Element
}

// HiddenFunc reports whether an element is currently hidden from the user.
type HiddenFunc func(el *dom.Element) bool

// Validator tracks required radio groups and reports step completeness.
// Failures are surfaced through inline error elements, never as panics.
type Validator struct {
	doc    *dom.Document
	cfg    Config
	hidden HiddenFunc

	mu     sync.RWMutex
	groups []*RadioGroup
	byName map[string]*RadioGroup
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithHidden adds a visibility predicate, for example one that consults the
// conditional visibility controller. It is combined with the inline display
// check of the element and its ancestors.
func WithHidden(fn HiddenFunc) ValidatorOption {
	return func(v *Validator) {
		v.hidden = fn
	}
}

// NewValidator discovers radio groups in doc.
func NewValidator(doc *dom.Document, cfg Config, opts ...ValidatorOption) *Validator {
	v := &Validator{doc: doc, cfg: cfg.WithDefaults()}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	v.Refresh()
	return v
}

// Refresh rediscovers radio groups.
func (v *Validator) Refresh() {
	if v == nil || v.doc == nil {
		return
	}
	branching := dom.Selector(v.cfg.BranchingSelector)
	container := dom.Selector(v.cfg.ContainerSelector)
	stepMatch := dom.Selector(v.cfg.StepSelector)
	errorMatch := dom.Selector(v.cfg.ErrorSelector)

	var groups []*RadioGroup
	byName := make(map[string]*RadioGroup)
	for _, radio := range v.doc.QueryAll(func(el *dom.Element) bool { return el.Kind() == dom.KindRadio }) {
		name := radio.Name()
		if name == "" {
			continue
		}
		required := radio.HasAttr("required") || radio.HasAttr(v.cfg.RequiredMarker) ||
			(branching != nil && radio.Closest(branching) != nil)

		group, ok := byName[name]
		if !ok {
			group = &RadioGroup{Name: name}
			if stepMatch != nil {
				group.Step = radio.Closest(stepMatch)
			}
			if container != nil {
				group.Container = radio.Closest(container)
			}
			if group.Container == nil {
				group.Container = radio.Parent()
			}
			if errorMatch != nil && group.Container != nil {
				scope := group.Container.Parent()
				if scope == nil {
					scope = group.Container
				}
				group.Error = scope.Query(errorMatch)
			}
			byName[name] = group
			groups = append(groups, group)
		}
		group.Radios = append(group.Radios, radio)
		group.Required = group.Required || required
	}

	for _, group := range groups {
		group.Message = v.messageFor(group)
	}

	v.mu.Lock()
	v.groups = groups
	v.byName = byName
	v.mu.Unlock()
}

// Groups returns the discovered groups in document order.
func (v *Validator) Groups() []*RadioGroup {
	if v == nil {
		return nil
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]*RadioGroup(nil), v.groups...)
}

// Group returns the named group.
func (v *Validator) Group(name string) (*RadioGroup, bool) {
	if v == nil {
		return nil, false
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	g, ok := v.byName[name]
	return g, ok
}

// Visible reports whether a group is currently shown. Hidden groups never
// block completion.
func (v *Validator) Visible(group *RadioGroup) bool {
	if len(group.Radios) == 0 {
		return false
	}
	first := group.Radios[0]
	if first.HiddenWithin(nil) {
		return false
	}
	if v.hidden != nil && v.hidden(first) {
		return false
	}
	return true
}

// IsGroupValid reports whether the named group is satisfied right now.
// Unknown, optional and hidden groups are valid.
func (v *Validator) IsGroupValid(name string) bool {
	group, ok := v.Group(name)
	if !ok {
		return true
	}
	return v.satisfied(group)
}

// InvalidGroups lists the names of visible required groups without a
// selection, in document order.
func (v *Validator) InvalidGroups() []string {
	var out []string
	for _, group := range v.Groups() {
		if !v.satisfied(group) {
			out = append(out, group.Name)
		}
	}
	return out
}

// Complete reports whether every required group owned by step is satisfied,
// without touching error display.
func (v *Validator) Complete(step *dom.Element) bool {
	for _, group := range v.groupsIn(step) {
		if !v.satisfied(group) {
			return false
		}
	}
	return true
}

// ValidateStep checks the groups owned by step, shows inline errors for the
// unsatisfied ones and clears them for the rest.
func (v *Validator) ValidateStep(step *dom.Element) []Issue {
	var issues []Issue
	for _, group := range v.groupsIn(step) {
		if v.satisfied(group) {
			v.clearError(group)
			continue
		}
		v.showError(group)
		issues = append(issues, Issue{Group: group.Name, Message: group.Message, Focus: group.Radios[0]})
	}
	return issues
}

// HandleChange clears the error of the group el belongs to once it has a
// selection, and refreshes navigation button states.
func (v *Validator) HandleChange(el *dom.Element) {
	if el == nil || el.Kind() != dom.KindRadio {
		return
	}
	if group, ok := v.Group(el.Name()); ok && group.Checked() {
		v.clearError(group)
	}
	v.UpdateButtons()
}

// FocusFirstInvalid focuses the first radio of the first unsatisfied group in
// step (or anywhere when step is nil) and returns it.
func (v *Validator) FocusFirstInvalid(step *dom.Element) *dom.Element {
	for _, group := range v.groupsIn(step) {
		if v.satisfied(group) {
			continue
		}
		target := group.Radios[0]
		v.doc.Focus(target)
		return target
	}
	return nil
}

// ClearAllErrors hides every inline error.
func (v *Validator) ClearAllErrors() {
	for _, group := range v.Groups() {
		v.clearError(group)
	}
}

// UpdateButtons marks next buttons of incomplete steps with the disabled
// class and aria-disabled. The buttons stay clickable so a click can be
// refused with focus moved to the first invalid control.
func (v *Validator) UpdateButtons() {
	next := dom.Selector(v.cfg.NextSelector)
	stepMatch := dom.Selector(v.cfg.StepSelector)
	if next == nil || stepMatch == nil {
		return
	}
	for _, button := range v.doc.QueryAll(next) {
		step := button.Closest(stepMatch)
		if step == nil {
			continue
		}
		if v.Complete(step) {
			button.RemoveClass(v.cfg.ButtonDisabledClass)
			button.RemoveAttr("aria-disabled")
			continue
		}
		button.AddClass(v.cfg.ButtonDisabledClass)
		button.SetAttr("aria-disabled", "true")
	}
}

func (v *Validator) satisfied(group *RadioGroup) bool {
	if !group.Required || !v.Visible(group) {
		return true
	}
	return group.Checked()
}

func (v *Validator) groupsIn(step *dom.Element) []*RadioGroup {
	groups := v.Groups()
	if step == nil {
		return groups
	}
	out := groups[:0]
	for _, group := range groups {
		if len(group.Radios) > 0 && step.Contains(group.Radios[0]) {
			out = append(out, group)
		}
	}
	return out
}

func (v *Validator) showError(group *RadioGroup) {
	for _, radio := range group.Radios {
		radio.SetAttr("aria-invalid", "true")
		if field := radio.Parent(); field != nil {
			field.AddClass(v.cfg.ErrorClass)
		}
	}
	if group.Error == nil {
		return
	}
	if strings.TrimSpace(group.Error.Text()) == "" {
		group.Error.SetText(group.Message)
	}
	group.Error.SetStyle("display", "block")
	group.Error.SetAttr("role", "alert")
}

func (v *Validator) clearError(group *RadioGroup) {
	for _, radio := range group.Radios {
		radio.RemoveAttr("aria-invalid")
		if field := radio.Parent(); field != nil {
			field.RemoveClass(v.cfg.ErrorClass)
		}
	}
	if group.Error == nil {
		return
	}
	group.Error.SetStyle("display", "none")
	group.Error.RemoveAttr("role")
}

func (v *Validator) messageFor(group *RadioGroup) string {
	if group.Container != nil {
		if msg := strings.TrimSpace(group.Container.AttrValue(v.cfg.MessageAttr)); msg != "" {
			return msg
		}
	}
	if group.Error != nil {
		if msg := stripMarkup(group.Error.Text()); msg != "" {
			return msg
		}
	}
	return v.cfg.DefaultMessage
}

var (
	messagePolicyOnce sync.Once
	messagePolicy     *bluemonday.Policy
)

// stripMarkup removes any markup that authors pasted into an error element.
func stripMarkup(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	messagePolicyOnce.Do(func() {
		messagePolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(messagePolicy.Sanitize(trimmed)))
}
