package dom

import "strings"

// HiddenClass is the class Webflow uses to hide elements responsively.
const HiddenClass = "w-hidden"

// Style returns the inline style value for prop.
func (e *Element) Style(prop string) string {
	for _, decl := range parseStyle(e.AttrValue("style")) {
		if decl.prop == strings.ToLower(prop) {
			return decl.value
		}
	}
	return ""
}

// SetStyle sets an inline style property; an empty value removes it.
func (e *Element) SetStyle(prop, value string) {
	if e == nil {
		return
	}
	prop = strings.ToLower(strings.TrimSpace(prop))
	value = strings.TrimSpace(value)

	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	raw, _ := attrLocked(e.node, "style")
	decls := parseStyle(raw)
	out := decls[:0]
	replaced := false
	for _, decl := range decls {
		if decl.prop == prop {
			if value == "" || replaced {
				continue
			}
			decl.value = value
			replaced = true
		}
		out = append(out, decl)
	}
	if !replaced && value != "" {
		out = append(out, styleDecl{prop: prop, value: value})
	}
	if len(out) == 0 {
		removeAttrLocked(e.node, "style")
		return
	}
	setAttrLocked(e.node, "style", formatStyle(out))
}

// IsDisplayNone reports whether the inline display is none.
func (e *Element) IsDisplayNone() bool {
	return strings.EqualFold(e.Style("display"), "none")
}

// SetDisplayNone hides or reveals the element through its inline display
// property. Revealing clears the inline value so stylesheet rules apply again.
func (e *Element) SetDisplayNone(hide bool) {
	if hide {
		e.SetStyle("display", "none")
		return
	}
	e.SetStyle("display", "")
}

// Hidden reports whether the element itself is hidden by inline display, the
// hidden attribute or the Webflow hidden class.
func (e *Element) Hidden() bool {
	if e == nil {
		return false
	}
	return e.IsDisplayNone() || e.HasAttr("hidden") || e.HasClass(HiddenClass)
}

// HiddenWithin reports whether e or any ancestor up to (and including) stop is
// hidden. A nil stop walks to the document root.
func (e *Element) HiddenWithin(stop *Element) bool {
	for cur := e; cur != nil; cur = cur.Parent() {
		if cur.Hidden() {
			return true
		}
		if cur == stop {
			return false
		}
	}
	return false
}

type styleDecl struct {
	prop  string
	value string
}

func parseStyle(raw string) []styleDecl {
	var out []styleDecl
	for _, chunk := range strings.Split(raw, ";") {
		prop, value, ok := strings.Cut(chunk, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" {
			continue
		}
		out = append(out, styleDecl{prop: prop, value: strings.TrimSpace(value)})
	}
	return out
}

func formatStyle(decls []styleDecl) string {
	parts := make([]string, 0, len(decls))
	for _, decl := range decls {
		parts = append(parts, decl.prop+": "+decl.value)
	}
	return strings.Join(parts, "; ") + ";"
}
