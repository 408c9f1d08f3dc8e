package summarysync

import (
	"strings"

	"github.com/goliatone/go-formsync/pkg/dom"
)

// CheckboxDefault is the display value of a checked checkbox without an
// explicit value attribute.
const CheckboxDefault = "Yes"

// ResolveValue returns the display value of a field:
//   - radio: the value of the checked radio sharing its name, or ""
//   - checkbox: its value attribute when checked (CheckboxDefault when it has
//     none), or "" when unchecked
//   - select: the text of the selected option, or "" when nothing meaningful
//     is selected (no option, or an option with an empty value)
//   - anything else: the raw current value
func ResolveValue(el *dom.Element) string {
	if el == nil {
		return ""
	}
	switch el.Kind() {
	case dom.KindRadio:
		checked := el.CheckedRadio()
		if checked == nil {
			return ""
		}
		if v, ok := checked.Attr("value"); ok {
			return v
		}
		return "on"
	case dom.KindCheckbox:
		if !el.Checked() {
			return ""
		}
		if v := el.AttrValue("value"); v != "" {
			return v
		}
		return CheckboxDefault
	case dom.KindSelect:
		opt := el.SelectedOption()
		if opt == nil || strings.TrimSpace(opt.OptionValue()) == "" {
			return ""
		}
		return opt.OptionText()
	}
	return el.Value()
}
