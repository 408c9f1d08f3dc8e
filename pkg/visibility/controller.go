package visibility

import (
	"strings"
	"sync"

	"github.com/goliatone/go-formsync/pkg/dom"
)

// Default attribute names.
const (
	DefaultHideAttr       = "data-hide-if"
	DefaultShowAttr       = "data-show-if"
	DefaultHiddenMarker   = "data-conditional-hidden"
	DefaultRequiredMarker = "data-conditional-required"
)

// DefaultWrapperClasses are the Webflow field wrappers hidden when a
// condition is attached directly to a control.
var DefaultWrapperClasses = []string{"multi-form_field-wrapper", "form_field-wrapper", "field-wrapper"}

// Block is a conditional subtree. Element carries the expression; Target is
// the subtree whose display is toggled (the element itself, or the wrapper of
// a control).
type Block struct {
	Element *dom.Element
	Target  *dom.Element
	Rule    Rule
	Fields  []string
}

// Config names the attributes the controller reads and writes.
type Config struct {
	HideAttr       string
	ShowAttr       string
	HiddenMarker   string
	RequiredMarker string
	WrapperClasses []string
}

func (c Config) withDefaults() Config {
	if c.HideAttr == "" {
		c.HideAttr = DefaultHideAttr
	}
	if c.ShowAttr == "" {
		c.ShowAttr = DefaultShowAttr
	}
	if c.HiddenMarker == "" {
		c.HiddenMarker = DefaultHiddenMarker
	}
	if c.RequiredMarker == "" {
		c.RequiredMarker = DefaultRequiredMarker
	}
	if len(c.WrapperClasses) == 0 {
		c.WrapperClasses = DefaultWrapperClasses
	}
	return c
}

// Controller discovers conditional blocks and applies evaluator results to
// them. Hiding never touches the values of controls inside a block.
type Controller struct {
	doc       *dom.Document
	evaluator Evaluator
	lookup    Lookup
	cfg       Config

	mu      sync.Mutex
	blocks  []*Block
	byField map[string][]*Block
}

// NewController constructs a controller and scans the document for blocks.
func NewController(doc *dom.Document, evaluator Evaluator, lookup Lookup, cfg Config) *Controller {
	c := &Controller{
		doc:       doc,
		evaluator: evaluator,
		lookup:    lookup,
		cfg:       cfg.withDefaults(),
	}
	c.Scan()
	return c
}

// Scan rediscovers conditional blocks.
func (c *Controller) Scan() {
	if c == nil || c.doc == nil {
		return
	}
	annotated := c.doc.QueryAll(dom.Any(dom.HasAttr(c.cfg.HideAttr), dom.HasAttr(c.cfg.ShowAttr)))
	blocks := make([]*Block, 0, len(annotated))
	byField := make(map[string][]*Block)
	for _, el := range annotated {
		block := &Block{
			Element: el,
			Target:  c.targetFor(el),
			Rule: Rule{
				HideIf: strings.TrimSpace(el.AttrValue(c.cfg.HideAttr)),
				ShowIf: strings.TrimSpace(el.AttrValue(c.cfg.ShowAttr)),
			},
		}
		if block.Rule.Empty() {
			continue
		}
		if c.evaluator != nil {
			block.Fields = c.evaluator.References(block.Rule)
		}
		for _, name := range block.Fields {
			byField[name] = append(byField[name], block)
		}
		blocks = append(blocks, block)
	}

	c.mu.Lock()
	c.blocks = blocks
	c.byField = byField
	c.mu.Unlock()
}

// Blocks returns the discovered blocks.
func (c *Controller) Blocks() []*Block {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Block(nil), c.blocks...)
}

// Watches reports whether any block depends on the field name.
func (c *Controller) Watches(fieldName string) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byField[fieldName]) > 0
}

// Evaluate recomputes one block from current values and applies the result.
func (c *Controller) Evaluate(block *Block) bool {
	if c == nil || block == nil || c.evaluator == nil {
		return false
	}
	hide := c.evaluator.ShouldHide(block.Rule, c.lookup)
	c.Apply(block, hide)
	return hide
}

// EvaluateAll recomputes every block.
func (c *Controller) EvaluateAll() {
	for _, block := range c.Blocks() {
		c.Evaluate(block)
	}
}

// EvaluateFields recomputes the blocks depending on any of the names.
func (c *Controller) EvaluateFields(names ...string) {
	if c == nil {
		return
	}
	seen := make(map[*Block]struct{})
	var pending []*Block
	c.mu.Lock()
	for _, name := range names {
		for _, block := range c.byField[name] {
			if _, ok := seen[block]; ok {
				continue
			}
			seen[block] = struct{}{}
			pending = append(pending, block)
		}
	}
	c.mu.Unlock()
	for _, block := range pending {
		c.Evaluate(block)
	}
}

// Apply sets the block's display state. Repeating a call with the same value
// leaves the document unchanged. Controls inside a hidden block keep their
// values; their required attribute is parked on a marker and restored once
// no enclosing block hides them.
func (c *Controller) Apply(block *Block, hide bool) {
	if c == nil || block == nil || block.Target == nil {
		return
	}
	target := block.Target
	target.SetDisplayNone(hide)
	if hide {
		target.SetAttr(c.cfg.HiddenMarker, "true")
		for _, ctrl := range controlsIn(target) {
			if ctrl.HasAttr("required") {
				ctrl.RemoveAttr("required")
				ctrl.SetAttr(c.cfg.RequiredMarker, "")
			}
		}
		return
	}
	target.RemoveAttr(c.cfg.HiddenMarker)
	for _, ctrl := range controlsIn(target) {
		// A control still inside another hidden block keeps its marker until
		// that block is shown.
		if ctrl.HasAttr(c.cfg.RequiredMarker) && !c.ConditionallyHidden(ctrl) {
			ctrl.RemoveAttr(c.cfg.RequiredMarker)
			ctrl.SetAttr("required", "")
		}
	}
}

// ConditionallyHidden reports whether el sits inside a block currently hidden
// by a condition.
func (c *Controller) ConditionallyHidden(el *dom.Element) bool {
	if c == nil || el == nil {
		return false
	}
	return el.Closest(dom.HasAttr(c.cfg.HiddenMarker)) != nil
}

func (c *Controller) targetFor(el *dom.Element) *dom.Element {
	if !el.IsControl() {
		return el
	}
	for _, class := range c.cfg.WrapperClasses {
		if wrapper := el.Closest(dom.Classes(class)); wrapper != nil {
			return wrapper
		}
	}
	if parent := el.Parent(); parent != nil {
		return parent
	}
	return el
}

func controlsIn(root *dom.Element) []*dom.Element {
	out := root.QueryAll(func(el *dom.Element) bool { return el.IsControl() })
	if root.IsControl() {
		out = append([]*dom.Element{root}, out...)
	}
	return out
}
