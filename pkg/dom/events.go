package dom

// Event types dispatched by the interaction helpers.
const (
	EventInput  = "input"
	EventChange = "change"
	EventClick  = "click"
)

// Event is a DOM event delivered to document-level listeners. Every event
// bubbles to the document, so listeners filter on Target.
type Event struct {
	Type   string
	Target *Element
}

// Listener handles a dispatched event.
type Listener func(Event)

type listenerEntry struct {
	id int
	fn Listener
}

// On registers a document-level listener for eventType and returns a function
// that removes it.
func (d *Document) On(eventType string, fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	d.mu.Lock()
	d.nextID++
	entry := &listenerEntry{id: d.nextID, fn: fn}
	d.listeners[eventType] = append(d.listeners[eventType], entry)
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		entries := d.listeners[eventType]
		for i, e := range entries {
			if e.id == entry.id {
				d.listeners[eventType] = append(entries[:i:i], entries[i+1:]...)
				return
			}
		}
	}
}

// Dispatch delivers ev to the listeners registered for its type. Listeners run
// outside the document lock, in registration order.
func (d *Document) Dispatch(ev Event) {
	d.mu.Lock()
	entries := append([]*listenerEntry(nil), d.listeners[ev.Type]...)
	d.mu.Unlock()
	for _, entry := range entries {
		entry.fn(ev)
	}
}

// Type sets a text-like control's value and dispatches input then change, the
// way a user typing and leaving the field would.
func (d *Document) Type(el *Element, value string) {
	if el == nil {
		return
	}
	el.SetValue(value)
	d.Dispatch(Event{Type: EventInput, Target: el})
	d.Dispatch(Event{Type: EventChange, Target: el})
}

// Choose selects option index of a select and dispatches change.
func (d *Document) Choose(el *Element, index int) {
	if el == nil {
		return
	}
	el.Select(index)
	d.Dispatch(Event{Type: EventChange, Target: el})
}

// Click activates el. Checkboxes toggle, radios become checked, and both then
// dispatch input and change after the click.
func (d *Document) Click(el *Element) {
	if el == nil || el.Disabled() {
		return
	}
	switch el.Kind() {
	case KindCheckbox:
		el.SetChecked(!el.Checked())
	case KindRadio:
		el.SetChecked(true)
	}
	d.Dispatch(Event{Type: EventClick, Target: el})
	switch el.Kind() {
	case KindCheckbox, KindRadio:
		d.Dispatch(Event{Type: EventInput, Target: el})
		d.Dispatch(Event{Type: EventChange, Target: el})
	}
}
