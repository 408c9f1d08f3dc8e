package dom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
)

// HasAttr matches elements carrying the attribute.
func HasAttr(key string) Matcher {
	return func(el *Element) bool {
		return el.HasAttr(key)
	}
}

// AttrEquals matches elements whose attribute equals value exactly.
func AttrEquals(key, value string) Matcher {
	return func(el *Element) bool {
		v, ok := el.Attr(key)
		return ok && v == value
	}
}

// Tag matches any of the given tag names.
func Tag(names ...string) Matcher {
	return func(el *Element) bool {
		tag := el.TagName()
		for _, name := range names {
			if strings.EqualFold(tag, name) {
				return true
			}
		}
		return false
	}
}

// Classes matches elements carrying every listed class.
func Classes(names ...string) Matcher {
	return func(el *Element) bool {
		for _, name := range names {
			if !el.HasClass(name) {
				return false
			}
		}
		return len(names) > 0
	}
}

// Compile turns a CSS selector such as `.radio_field.radio-type` or
// `form > [data-form="step"]` into a matcher. An empty selector is an error.
func Compile(raw string) (Matcher, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("dom: empty selector")
	}
	sel, err := cascadia.Compile(raw)
	if err != nil {
		return nil, fmt.Errorf("dom: selector %q: %w", raw, err)
	}
	return func(el *Element) bool {
		if el == nil {
			return false
		}
		el.doc.mu.Lock()
		defer el.doc.mu.Unlock()
		return sel.Match(el.node)
	}, nil
}

// Selector is Compile for selectors already validated, typically by the
// configuration loader. The result is nil when raw is empty or does not
// compile.
func Selector(raw string) Matcher {
	m, err := Compile(raw)
	if err != nil {
		return nil
	}
	return m
}

// All matches when every matcher matches.
func All(matchers ...Matcher) Matcher {
	return func(el *Element) bool {
		for _, m := range matchers {
			if m != nil && !m(el) {
				return false
			}
		}
		return true
	}
}

// Any matches when at least one matcher matches.
func Any(matchers ...Matcher) Matcher {
	return func(el *Element) bool {
		for _, m := range matchers {
			if m != nil && m(el) {
				return true
			}
		}
		return false
	}
}
