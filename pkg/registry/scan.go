package registry

import (
	"iter"
	"strings"

	"github.com/goliatone/go-formsync/pkg/dom"
)

// Field is an interactive control bound to a logical field name and the step
// that owns it.
type Field struct {
	Element *dom.Element
	Name    string
	Step    StepContext
}

// Key returns the field's lookup key.
func (f Field) Key() Key {
	return Key{Field: f.Name, Step: f.Step}
}

// Slot is a display-only element mirroring a field's value.
type Slot struct {
	Element   *dom.Element
	Container *dom.Element
	Field     string
	Context   StepContext
}

// ScanFields lazily yields every control under root that carries a field-name
// marker. Controls outside any step are yielded with a zero StepContext.
func ScanFields(root *dom.Element, markers Markers) iter.Seq[Field] {
	markers = markers.WithDefaults()
	return func(yield func(Field) bool) {
		if root == nil {
			return
		}
		for el := range root.Descendants() {
			if !el.IsControl() {
				continue
			}
			name := FieldName(el, markers)
			if name == "" {
				continue
			}
			field := Field{Element: el, Name: name, Step: StepOf(el, markers)}
			if !yield(field) {
				return
			}
		}
	}
}

// ScanSlots lazily yields every summary element under root. Elements without
// an enclosing summary container are skipped because they cannot be matched
// safely.
func ScanSlots(root *dom.Element, markers Markers) iter.Seq[Slot] {
	markers = markers.WithDefaults()
	return func(yield func(Slot) bool) {
		if root == nil {
			return
		}
		for el := range root.Descendants() {
			name := strings.TrimSpace(el.AttrValue(markers.SummaryField))
			if name == "" {
				continue
			}
			container := el.Closest(dom.HasAttr(markers.SummaryType))
			if container == nil {
				continue
			}
			slot := Slot{
				Element:   el,
				Container: container,
				Field:     name,
				Context: StepContext{
					Type:    strings.TrimSpace(container.AttrValue(markers.SummaryType)),
					Number:  strings.TrimSpace(container.AttrValue(markers.SummaryNumber)),
					Subtype: strings.TrimSpace(container.AttrValue(markers.SummarySubtype)),
				},
			}
			if !yield(slot) {
				return
			}
		}
	}
}

// ScanCards lazily yields every summary container under root, including
// containers that hold no slot yet.
func ScanCards(root *dom.Element, markers Markers) iter.Seq[*dom.Element] {
	markers = markers.WithDefaults()
	return func(yield func(*dom.Element) bool) {
		if root == nil {
			return
		}
		for el := range root.Descendants() {
			if !el.HasAttr(markers.SummaryType) {
				continue
			}
			if !yield(el) {
				return
			}
		}
	}
}

// FieldName returns the logical field name carried by el, or "".
func FieldName(el *dom.Element, markers Markers) string {
	for _, attr := range markers.WithDefaults().FieldName {
		if name := strings.TrimSpace(el.AttrValue(attr)); name != "" {
			return name
		}
	}
	return ""
}

// StepOf resolves the step context from the nearest ancestor carrying a step
// type marker. Number and subtype are read from that same element.
func StepOf(el *dom.Element, markers Markers) StepContext {
	markers = markers.WithDefaults()
	step := el.Closest(dom.HasAttr(markers.StepType))
	if step == nil {
		return StepContext{}
	}
	return StepContext{
		Type:    strings.TrimSpace(step.AttrValue(markers.StepType)),
		Number:  strings.TrimSpace(step.AttrValue(markers.StepNumber)),
		Subtype: strings.TrimSpace(step.AttrValue(markers.StepSubtype)),
	}
}
