package engine

import (
	"github.com/goliatone/go-formsync/pkg/dom"
)

// lookup resolves a name used in a condition expression to the current value
// of a control. Registered field names win; otherwise a control whose name or
// id attribute matches is used.
func (e *Engine) lookup(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	fields := e.reg.FieldsNamed(name)
	if len(fields) > 0 {
		for _, field := range fields {
			if v := conditionValue(field.Element); v != "" {
				return v, true
			}
		}
		return "", true
	}

	ctrl := e.doc.Query(func(el *dom.Element) bool {
		return el.IsControl() && (el.Name() == name || el.ID() == name)
	})
	if ctrl == nil {
		return "", false
	}
	return conditionValue(ctrl), true
}

// conditionValue is the value a condition sees: the checked member of a radio
// group, "on" or the value attribute for a checked checkbox, the selected
// option value for selects.
func conditionValue(el *dom.Element) string {
	switch el.Kind() {
	case dom.KindRadio:
		if checked := el.CheckedRadio(); checked != nil {
			if v, ok := checked.Attr("value"); ok {
				return v
			}
			return "on"
		}
		return ""
	case dom.KindCheckbox:
		if !el.Checked() {
			return ""
		}
		if v, ok := el.Attr("value"); ok {
			return v
		}
		return "on"
	}
	return el.Value()
}

// namesOf lists every name a condition may use to refer to el.
func (e *Engine) namesOf(el *dom.Element) []string {
	var names []string
	add := func(name string) {
		if name == "" {
			return
		}
		for _, n := range names {
			if n == name {
				return
			}
		}
		names = append(names, name)
	}
	if field, ok := e.reg.FieldFor(el); ok {
		add(field.Name)
	}
	add(el.Name())
	add(el.ID())
	return names
}
