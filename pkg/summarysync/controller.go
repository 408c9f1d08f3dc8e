package summarysync

import (
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formsync/pkg/dom"
	"github.com/goliatone/go-formsync/pkg/registry"
)

// Formatter builds the display value of a compound from its constituent
// fields, keyed by field name. Missing constituents are absent from the map.
type Formatter func(parts map[string]registry.Field) string

// Compound is a logical field split across several controls, such as a phone
// number and its country code. A change to any part recomputes the combined
// value and writes it to the slots named after the compound.
type Compound struct {
	Name   string
	Parts  []string
	Format Formatter
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCompounds replaces the compound definitions. Pass no compounds to
// disable the built-in phone handling.
func WithCompounds(compounds ...Compound) Option {
	return func(c *Controller) {
		c.compounds = append([]Compound(nil), compounds...)
	}
}

// Controller mirrors field values into summary slots. It is the only writer
// of summary text and never dispatches events, so its writes cannot trigger
// further synchronization.
type Controller struct {
	reg       *registry.Registry
	logger    *zap.Logger
	compounds []Compound
}

// NewController constructs a Controller over reg. The phone compound is
// registered by default.
func NewController(reg *registry.Registry, opts ...Option) *Controller {
	c := &Controller{
		reg:       reg,
		logger:    zap.NewNop(),
		compounds: []Compound{PhoneCompound()},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// HandleChange synchronizes the summary slots affected by a change on el and
// returns how many slots were written. Elements that are not registered
// fields are ignored.
func (c *Controller) HandleChange(el *dom.Element) int {
	if c == nil || c.reg == nil {
		return 0
	}
	field, ok := c.reg.FieldFor(el)
	if !ok {
		return 0
	}
	written := c.Sync(field)
	c.UpdateCards()
	return written
}

// UpdateCards shows the summary cards holding at least one non-empty slot and
// hides the rest. It returns how many cards are visible.
func (c *Controller) UpdateCards() int {
	if c == nil || c.reg == nil {
		return 0
	}
	marker := dom.HasAttr(c.reg.Markers().SummaryField)
	visible := 0
	for _, card := range c.reg.Cards() {
		filled := hasContent(card, marker)
		card.SetDisplayNone(!filled)
		if filled {
			visible++
		}
	}
	return visible
}

func hasContent(card *dom.Element, slot dom.Matcher) bool {
	slots := card.QueryAll(slot)
	if slot(card) {
		slots = append(slots, card)
	}
	for _, el := range slots {
		if slotText(el) != "" {
			return true
		}
	}
	return false
}

// Sync mirrors one field, including any compound it belongs to.
func (c *Controller) Sync(field registry.Field) int {
	written := 0
	compound := c.compoundFor(field.Name)
	if compound == nil || compound.Name != field.Name {
		written += c.write(field.Name, field.Step, ResolveValue(field.Element))
	}
	if compound != nil {
		written += c.syncCompound(*compound, field)
	}
	return written
}

// PopulateInitial mirrors every field that already carries a value, so
// summaries reflect prefilled markup, then hides the cards left empty. It
// returns the number of slots written.
func (c *Controller) PopulateInitial() int {
	if c == nil || c.reg == nil {
		return 0
	}
	written := 0
	seenGroups := make(map[*dom.Element]struct{})
	for _, field := range c.reg.Fields() {
		el := field.Element
		if el.Kind() == dom.KindRadio {
			checked := el.CheckedRadio()
			if checked == nil {
				continue
			}
			if _, ok := seenGroups[checked]; ok {
				continue
			}
			seenGroups[checked] = struct{}{}
		}
		if ResolveValue(el) == "" {
			continue
		}
		written += c.Sync(field)
	}
	cards := c.UpdateCards()
	c.logger.Debug("populated initial summary values", zap.Int("slots", written), zap.Int("cards", cards))
	return written
}

func (c *Controller) syncCompound(compound Compound, changed registry.Field) int {
	parts := make(map[string]registry.Field, len(compound.Parts))
	for _, name := range compound.Parts {
		if name == changed.Name {
			parts[name] = changed
			continue
		}
		if sibling, ok := c.reg.FieldInStep(name, changed.Step); ok {
			parts[name] = sibling
		}
	}

	// Slots resolve against the compound's primary part when present so both
	// constituents target the same slots.
	step := changed.Step
	if primary, ok := parts[compound.Name]; ok {
		step = primary.Step
	}

	value := ""
	if compound.Format != nil {
		value = compound.Format(parts)
	}
	return c.write(compound.Name, step, value)
}

func (c *Controller) write(name string, step registry.StepContext, value string) int {
	slots := c.reg.SlotsFor(name, step)
	for _, slot := range slots {
		writeSlot(slot.Element, value)
	}
	if len(slots) > 0 {
		c.logger.Debug("summary updated",
			zap.String("field", name),
			zap.String("step", step.String()),
			zap.Int("slots", len(slots)),
		)
	}
	return len(slots)
}

func (c *Controller) compoundFor(name string) *Compound {
	for i := range c.compounds {
		for _, part := range c.compounds[i].Parts {
			if part == name {
				return &c.compounds[i]
			}
		}
	}
	return nil
}

func slotText(el *dom.Element) string {
	if el.IsControl() {
		return strings.TrimSpace(el.Value())
	}
	return strings.TrimSpace(el.Text())
}

func writeSlot(el *dom.Element, value string) {
	if el.IsControl() {
		if el.Value() != value {
			el.SetValue(value)
		}
		return
	}
	if el.Text() != value {
		el.SetText(value)
	}
}
