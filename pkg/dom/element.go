package dom

import (
	"iter"
	"strings"

	"golang.org/x/net/html"
)

// Element is a stable handle to one element node. The same node always maps
// to the same *Element, so pointers can be used as identity keys.
type Element struct {
	doc  *Document
	node *html.Node
}

// Matcher reports whether an element matches some criterion.
type Matcher func(*Element) bool

// Document returns the owning document.
func (e *Element) Document() *Document {
	if e == nil {
		return nil
	}
	return e.doc
}

// TagName returns the lowercase tag name.
func (e *Element) TagName() string {
	if e == nil {
		return ""
	}
	return strings.ToLower(e.node.Data)
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(key string) (string, bool) {
	if e == nil {
		return "", false
	}
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return attrLocked(e.node, key)
}

// AttrValue returns the attribute value or an empty string.
func (e *Element) AttrValue(key string) string {
	v, _ := e.Attr(key)
	return v
}

// HasAttr reports whether the attribute is present.
func (e *Element) HasAttr(key string) bool {
	_, ok := e.Attr(key)
	return ok
}

// SetAttr sets or replaces an attribute.
func (e *Element) SetAttr(key, value string) {
	if e == nil {
		return
	}
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	setAttrLocked(e.node, key, value)
}

// RemoveAttr deletes an attribute if present.
func (e *Element) RemoveAttr(key string) {
	if e == nil {
		return
	}
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	removeAttrLocked(e.node, key)
}

// ID returns the id attribute.
func (e *Element) ID() string {
	return e.AttrValue("id")
}

// HasClass reports whether the class list contains name.
func (e *Element) HasClass(name string) bool {
	for _, c := range strings.Fields(e.AttrValue("class")) {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass appends name to the class list when missing.
func (e *Element) AddClass(name string) {
	if e == nil || name == "" {
		return
	}
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	raw, _ := attrLocked(e.node, "class")
	classes := strings.Fields(raw)
	for _, c := range classes {
		if c == name {
			return
		}
	}
	setAttrLocked(e.node, "class", strings.Join(append(classes, name), " "))
}

// RemoveClass drops name from the class list.
func (e *Element) RemoveClass(name string) {
	if e == nil {
		return
	}
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	raw, ok := attrLocked(e.node, "class")
	if !ok {
		return
	}
	classes := strings.Fields(raw)
	out := classes[:0]
	for _, c := range classes {
		if c != name {
			out = append(out, c)
		}
	}
	if len(out) == len(classes) {
		return
	}
	setAttrLocked(e.node, "class", strings.Join(out, " "))
}

// Parent returns the parent element, or nil at the top of the tree.
func (e *Element) Parent() *Element {
	if e == nil {
		return nil
	}
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for p := e.node.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return e.doc.wrapLocked(p)
		}
	}
	return nil
}

// Closest returns the nearest element, starting with e itself, that matches
// pred.
func (e *Element) Closest(pred Matcher) *Element {
	for cur := e; cur != nil; cur = cur.Parent() {
		if pred(cur) {
			return cur
		}
	}
	return nil
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	if e == nil || other == nil || e.doc != other.doc {
		return false
	}
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for n := other.node; n != nil; n = n.Parent {
		if n == e.node {
			return true
		}
	}
	return false
}

// Descendants yields the element descendants of e in document order.
func (e *Element) Descendants() iter.Seq[*Element] {
	return func(yield func(*Element) bool) {
		if e == nil {
			return
		}
		for _, el := range e.doc.snapshot(e.node) {
			if !yield(el) {
				return
			}
		}
	}
}

// QueryAll returns the descendants of e matching pred.
func (e *Element) QueryAll(pred Matcher) []*Element {
	var out []*Element
	for el := range e.Descendants() {
		if pred(el) {
			out = append(out, el)
		}
	}
	return out
}

// Query returns the first descendant of e matching pred.
func (e *Element) Query(pred Matcher) *Element {
	for el := range e.Descendants() {
		if pred(el) {
			return el
		}
	}
	return nil
}

// Text returns the concatenated text content of e.
func (e *Element) Text() string {
	if e == nil {
		return ""
	}
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return textLocked(e.node)
}

// SetText replaces the children of e with a single text node. It never
// dispatches events.
func (e *Element) SetText(text string) {
	if e == nil {
		return
	}
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	setTextLocked(e.node, text)
}

func attrLocked(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func setAttrLocked(n *html.Node, key, value string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: strings.ToLower(key), Val: value})
}

func removeAttrLocked(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

func textLocked(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func setTextLocked(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}
