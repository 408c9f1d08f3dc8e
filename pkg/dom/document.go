package dom

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// Document is a parsed HTML page together with the listeners and focus state a
// browser would keep for it. All element accessors lock the document, so a
// Document can be shared between event handlers and timer callbacks.
type Document struct {
	mu        sync.Mutex
	root      *html.Node
	elements  map[*html.Node]*Element
	listeners map[string][]*listenerEntry
	nextID    int
	focused   *Element

	// cleared holds selects whose selection was explicitly emptied.
	cleared map[*html.Node]bool
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	node, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return newDocument(node), nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

func newDocument(root *html.Node) *Document {
	return &Document{
		root:      root,
		elements:  make(map[*html.Node]*Element),
		listeners: make(map[string][]*listenerEntry),
		cleared:   make(map[*html.Node]bool),
	}
}

// Render writes the current state of the document as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("dom: render: %w", err)
	}
	return nil
}

// HTML returns the rendered document, or an empty string on failure.
func (d *Document) HTML() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Root returns the <html> element, or nil for an empty document.
func (d *Document) Root() *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	for n := d.root.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode {
			return d.wrapLocked(n)
		}
	}
	return nil
}

// Elements yields every element in document order.
func (d *Document) Elements() iter.Seq[*Element] {
	return func(yield func(*Element) bool) {
		for _, el := range d.snapshot(d.root) {
			if !yield(el) {
				return
			}
		}
	}
}

// QueryAll returns every element matching pred in document order.
func (d *Document) QueryAll(pred Matcher) []*Element {
	var out []*Element
	for el := range d.Elements() {
		if pred(el) {
			out = append(out, el)
		}
	}
	return out
}

// Query returns the first element matching pred.
func (d *Document) Query(pred Matcher) *Element {
	for el := range d.Elements() {
		if pred(el) {
			return el
		}
	}
	return nil
}

// Focus moves focus to el. Focus never dispatches events.
func (d *Document) Focus(el *Element) {
	d.mu.Lock()
	d.focused = el
	d.mu.Unlock()
}

// Focused returns the element that currently has focus.
func (d *Document) Focused() *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.focused
}

// wrapLocked returns the stable wrapper for n. Callers hold d.mu.
func (d *Document) wrapLocked(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	if el, ok := d.elements[n]; ok {
		return el
	}
	el := &Element{doc: d, node: n}
	d.elements[n] = el
	return el
}

// snapshot collects the element descendants of n while holding the lock so
// callers can iterate (and mutate) without holding it.
func (d *Document) snapshot(n *html.Node) []*Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*Element
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				out = append(out, d.wrapLocked(c))
			}
			walk(c)
		}
	}
	walk(n)
	return out
}
