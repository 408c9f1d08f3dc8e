package dom

import "strings"

// Control kinds reported by Element.Kind.
const (
	KindNone     = ""
	KindText     = "text"
	KindRadio    = "radio"
	KindCheckbox = "checkbox"
	KindSelect   = "select"
	KindTextarea = "textarea"
	KindButton   = "button"
)

// IsControl reports whether the element is an input, select or textarea.
func (e *Element) IsControl() bool {
	switch e.TagName() {
	case "input", "select", "textarea":
		return true
	}
	return false
}

// InputType returns the lowercase type attribute of an input, defaulting to
// "text" the way browsers do.
func (e *Element) InputType() string {
	if e.TagName() != "input" {
		return ""
	}
	t := strings.ToLower(strings.TrimSpace(e.AttrValue("type")))
	if t == "" {
		return "text"
	}
	return t
}

// Kind classifies a control for value resolution.
func (e *Element) Kind() string {
	switch e.TagName() {
	case "select":
		return KindSelect
	case "textarea":
		return KindTextarea
	case "button":
		return KindButton
	case "input":
		switch e.InputType() {
		case "radio":
			return KindRadio
		case "checkbox":
			return KindCheckbox
		case "submit", "button", "reset", "image":
			return KindButton
		}
		return KindText
	}
	return KindNone
}

// Name returns the name attribute.
func (e *Element) Name() string {
	return e.AttrValue("name")
}

// Value returns the current value of a control: the value attribute for
// inputs, the text for textareas and the selected option's value for selects.
func (e *Element) Value() string {
	switch e.Kind() {
	case KindTextarea:
		return e.Text()
	case KindSelect:
		opt := e.SelectedOption()
		if opt == nil {
			return ""
		}
		return optionValue(opt)
	}
	return e.AttrValue("value")
}

// SetValue stores value without dispatching events. For selects the first
// option whose value matches is selected.
func (e *Element) SetValue(value string) {
	switch e.Kind() {
	case KindTextarea:
		e.SetText(value)
	case KindSelect:
		for i, opt := range e.Options() {
			if optionValue(opt) == value {
				e.Select(i)
				return
			}
		}
		e.Select(-1)
	default:
		e.SetAttr("value", value)
	}
}

// Checked reports the checked state of a radio or checkbox.
func (e *Element) Checked() bool {
	return e.HasAttr("checked")
}

// SetChecked updates the checked state without dispatching events. Checking a
// radio unchecks the other radios sharing its name in the same form.
func (e *Element) SetChecked(checked bool) {
	if e == nil {
		return
	}
	if !checked {
		e.RemoveAttr("checked")
		return
	}
	if e.Kind() == KindRadio {
		for _, other := range e.RadioGroup() {
			if other != e {
				other.RemoveAttr("checked")
			}
		}
	}
	e.SetAttr("checked", "")
}

// RadioGroup returns the radios sharing e's name within its form (or the whole
// document when e is not inside a form), in document order.
func (e *Element) RadioGroup() []*Element {
	name := e.Name()
	if name == "" {
		return []*Element{e}
	}
	scope := e.Closest(Tag("form"))
	match := All(Tag("input"), AttrEquals("type", "radio"), AttrEquals("name", name))
	if scope == nil {
		return e.doc.QueryAll(match)
	}
	return scope.QueryAll(match)
}

// CheckedRadio returns the checked member of e's radio group.
func (e *Element) CheckedRadio() *Element {
	for _, r := range e.RadioGroup() {
		if r.Checked() {
			return r
		}
	}
	return nil
}

// Options returns the option elements of a select.
func (e *Element) Options() []*Element {
	return e.QueryAll(Tag("option"))
}

// SelectedIndex returns the index of the selected option. A single select with
// no explicit selection reports its first option, as browsers do; -1 means no
// option is selected.
func (e *Element) SelectedIndex() int {
	opts := e.Options()
	for i, opt := range opts {
		if opt.HasAttr("selected") {
			return i
		}
	}
	if len(opts) > 0 && !e.HasAttr("multiple") && !e.cleared() {
		return 0
	}
	return -1
}

func (e *Element) cleared() bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.doc.cleared[e.node]
}

// SelectedOption returns the selected option element, if any.
func (e *Element) SelectedOption() *Element {
	idx := e.SelectedIndex()
	if idx < 0 {
		return nil
	}
	opts := e.Options()
	if idx >= len(opts) {
		return nil
	}
	return opts[idx]
}

// Select marks option index as selected. An out-of-range index clears the
// selection so the select reports nothing; that state lives on the document,
// not in the markup.
func (e *Element) Select(index int) {
	opts := e.Options()
	for i, opt := range opts {
		if i == index {
			opt.SetAttr("selected", "")
		} else {
			opt.RemoveAttr("selected")
		}
	}
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if index < 0 || index >= len(opts) {
		e.doc.cleared[e.node] = true
		return
	}
	delete(e.doc.cleared, e.node)
}

// OptionText returns the trimmed label text of an option.
func (e *Element) OptionText() string {
	return strings.TrimSpace(e.Text())
}

func optionValue(opt *Element) string {
	if v, ok := opt.Attr("value"); ok {
		return v
	}
	return opt.OptionText()
}

// OptionValue returns an option's value attribute, falling back to its text.
func (e *Element) OptionValue() string {
	return optionValue(e)
}

// Disabled reports whether the element carries the disabled attribute.
func (e *Element) Disabled() bool {
	return e.HasAttr("disabled")
}

// SetDisabled toggles the disabled attribute.
func (e *Element) SetDisabled(disabled bool) {
	if disabled {
		e.SetAttr("disabled", "")
		return
	}
	e.RemoveAttr("disabled")
}
