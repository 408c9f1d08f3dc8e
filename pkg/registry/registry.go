package registry

import (
	"sync"

	"github.com/goliatone/go-formsync/pkg/dom"
)

// Option configures a Registry.
type Option func(*Registry)

// WithMarkers overrides the attribute names used for discovery.
func WithMarkers(markers Markers) Option {
	return func(r *Registry) {
		r.markers = markers.WithDefaults()
	}
}

// WithScope restricts scanning to the subtree rooted at scope.
func WithScope(scope *dom.Element) Option {
	return func(r *Registry) {
		r.scope = scope
	}
}

// Registry indexes fields and summary slots for one page lifecycle. It is
// built once, passed to the controllers that need it and re-scanned through
// Refresh when markup changes. Entries are keyed by element identity so a
// re-scan yields the same logical set.
type Registry struct {
	doc     *dom.Document
	scope   *dom.Element
	markers Markers

	mu          sync.RWMutex
	fields      []Field
	byElement   map[*dom.Element]int
	fieldsNamed map[string][]int
	slots       []Slot
	slotsNamed  map[string][]int
	cards       []*dom.Element
}

// New constructs a registry and performs the initial scan.
func New(doc *dom.Document, opts ...Option) *Registry {
	r := &Registry{doc: doc, markers: DefaultMarkers()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.Refresh()
	return r
}

// Markers returns the attribute names in use.
func (r *Registry) Markers() Markers {
	if r == nil {
		return DefaultMarkers()
	}
	return r.markers
}

// Refresh re-scans the document. Running it repeatedly over unchanged markup
// produces the same entries.
func (r *Registry) Refresh() {
	if r == nil {
		return
	}
	root := r.scope
	if root == nil && r.doc != nil {
		root = r.doc.Root()
	}

	fields := make([]Field, 0)
	byElement := make(map[*dom.Element]int)
	fieldsNamed := make(map[string][]int)
	for field := range ScanFields(root, r.markers) {
		if _, seen := byElement[field.Element]; seen {
			continue
		}
		byElement[field.Element] = len(fields)
		fieldsNamed[field.Name] = append(fieldsNamed[field.Name], len(fields))
		fields = append(fields, field)
	}

	slots := make([]Slot, 0)
	slotsNamed := make(map[string][]int)
	seenSlots := make(map[*dom.Element]struct{})
	for slot := range ScanSlots(root, r.markers) {
		if _, seen := seenSlots[slot.Element]; seen {
			continue
		}
		seenSlots[slot.Element] = struct{}{}
		slotsNamed[slot.Field] = append(slotsNamed[slot.Field], len(slots))
		slots = append(slots, slot)
	}

	cards := make([]*dom.Element, 0)
	for card := range ScanCards(root, r.markers) {
		cards = append(cards, card)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cards = cards
	r.fields = fields
	r.byElement = byElement
	r.fieldsNamed = fieldsNamed
	r.slots = slots
	r.slotsNamed = slotsNamed
}

// Fields returns a copy of every indexed field in document order.
func (r *Registry) Fields() []Field {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Field(nil), r.fields...)
}

// Slots returns a copy of every indexed summary slot in document order.
func (r *Registry) Slots() []Slot {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Slot(nil), r.slots...)
}

// Cards returns every summary container in document order.
func (r *Registry) Cards() []*dom.Element {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*dom.Element(nil), r.cards...)
}

// FieldFor returns the field record for el.
func (r *Registry) FieldFor(el *dom.Element) (Field, bool) {
	if r == nil || el == nil {
		return Field{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.byElement[el]
	if !ok {
		return Field{}, false
	}
	return r.fields[idx], true
}

// FieldsNamed returns every field with the logical name, in document order.
func (r *Registry) FieldsNamed(name string) []Field {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.fieldsNamed[name]
	out := make([]Field, 0, len(idx))
	for _, i := range idx {
		out = append(out, r.fields[i])
	}
	return out
}

// FieldInStep returns the first field named name whose step context matches
// step under the wildcard policy.
func (r *Registry) FieldInStep(name string, step StepContext) (Field, bool) {
	for _, field := range r.FieldsNamed(name) {
		if Match(field.Step, step) {
			return field, true
		}
	}
	return Field{}, false
}

// SlotsFor returns the summary slots mirroring field name within step. Zero
// matches is a valid outcome.
func (r *Registry) SlotsFor(name string, step StepContext) []Slot {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Slot
	for _, i := range r.slotsNamed[name] {
		slot := r.slots[i]
		if Match(step, slot.Context) {
			out = append(out, slot)
		}
	}
	return out
}
