package steps

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formsync/pkg/dom"
)

// UnresolvedFunc receives a branch target that names no step. Navigation
// falls back to the following step.
type UnresolvedFunc func(step int, target string)

// NavigatorOption configures a Navigator.
type NavigatorOption func(*Navigator)

// WithUnresolved routes branch targets that match no step to fn.
func WithUnresolved(fn UnresolvedFunc) NavigatorOption {
	return func(n *Navigator) {
		n.unresolved = fn
	}
}

// StepID returns the name branch targets use for step: its own answer
// attribute, else the answer (or go-to) of the first wrapper inside it that is
// neither a control nor a step item.
func (n *Navigator) StepID(step *dom.Element) string {
	if step == nil {
		return ""
	}
	if id := strings.TrimSpace(step.AttrValue(n.cfg.AnswerAttr)); id != "" {
		return id
	}
	for _, el := range step.QueryAll(dom.Any(dom.HasAttr(n.cfg.AnswerAttr), dom.HasAttr(n.cfg.GoToAttr))) {
		if el.IsControl() || n.inItem(el) {
			continue
		}
		if id := strings.TrimSpace(el.AttrValue(n.cfg.AnswerAttr)); id != "" {
			return id
		}
		return strings.TrimSpace(el.AttrValue(n.cfg.GoToAttr))
	}
	return ""
}

// UpdateItems shows the step items whose answer lies on the chosen path and
// hides the other answered items. The path holds the names of the visited
// steps and the go-to targets of their checked radios. Items without an
// answer are left alone.
func (n *Navigator) UpdateItems() {
	if n.item == nil || n.doc == nil {
		return
	}
	chosen := n.path()
	for _, item := range n.doc.QueryAll(n.item) {
		answer := strings.TrimSpace(item.AttrValue(n.cfg.AnswerAttr))
		if answer == "" {
			continue
		}
		_, on := chosen[answer]
		n.setItem(item, on)
	}
}

// HandleChange re-applies step items after a branching radio changes. It
// reports whether el carried a branch target.
func (n *Navigator) HandleChange(el *dom.Element) bool {
	if el == nil || el.Kind() != dom.KindRadio {
		return false
	}
	branching := false
	for _, radio := range el.RadioGroup() {
		if strings.TrimSpace(radio.AttrValue(n.cfg.GoToAttr)) != "" {
			branching = true
			break
		}
	}
	if !branching {
		return false
	}
	n.UpdateItems()
	if n.validator != nil {
		n.validator.UpdateButtons()
	}
	return true
}

// nextIndex picks the step that follows idx. Candidates are tried in order:
// the checked radio's go-to, the first visible step item's go-to, then the
// step's own go-to. A candidate naming only the current step is skipped, so a
// radio that reveals an item inside its own step does not loop. Without a
// match the following step is used.
func (n *Navigator) nextIndex(idx int, step *dom.Element, steps []*dom.Element) (int, bool) {
	for _, target := range n.candidates(step) {
		if i, ok := n.resolve(target, idx, steps); ok {
			return i, true
		}
		if _, ok := n.resolve(target, -1, steps); !ok && n.unresolved != nil {
			n.unresolved(idx, target)
		}
	}
	if idx+1 < len(steps) {
		return idx + 1, true
	}
	return 0, false
}

func (n *Navigator) candidates(step *dom.Element) []string {
	var out []string
	add := func(el *dom.Element) {
		if v := strings.TrimSpace(el.AttrValue(n.cfg.GoToAttr)); v != "" {
			out = append(out, v)
		}
	}

	targets := step.QueryAll(dom.HasAttr(n.cfg.GoToAttr))
	for _, el := range targets {
		if el.Kind() == dom.KindRadio && el.Checked() && !n.hiddenIn(el, step) {
			add(el)
		}
	}
	if n.item != nil {
		for _, item := range step.QueryAll(n.item) {
			if !n.hiddenIn(item, step) {
				add(item)
			}
		}
	}
	add(step)
	for _, el := range targets {
		if el.IsControl() || n.inItem(el) {
			continue
		}
		add(el)
		break
	}
	return out
}

// resolve finds the step named target, skipping index skip. Steps match by
// name first, then by holding an answered element, then by 1-based position.
func (n *Navigator) resolve(target string, skip int, steps []*dom.Element) (int, bool) {
	for i, step := range steps {
		if i != skip && n.StepID(step) == target {
			return i, true
		}
	}
	answered := dom.All(dom.AttrEquals(n.cfg.AnswerAttr, target), func(el *dom.Element) bool { return !el.IsControl() })
	for i, step := range steps {
		if i != skip && step.Query(answered) != nil {
			return i, true
		}
	}
	if pos, err := strconv.Atoi(target); err == nil && pos >= 1 && pos <= len(steps) && pos-1 != skip {
		return pos - 1, true
	}
	return 0, false
}

func (n *Navigator) path() map[string]struct{} {
	n.mu.Lock()
	visited := append(append([]int(nil), n.history...), n.current)
	steps := n.steps
	n.mu.Unlock()

	chosen := make(map[string]struct{})
	for _, idx := range visited {
		if idx < 0 || idx >= len(steps) {
			continue
		}
		step := steps[idx]
		if id := n.StepID(step); id != "" {
			chosen[id] = struct{}{}
		}
		for _, radio := range step.QueryAll(dom.HasAttr(n.cfg.GoToAttr)) {
			if radio.Kind() != dom.KindRadio || !radio.Checked() || n.hiddenIn(radio, step) {
				continue
			}
			if target := strings.TrimSpace(radio.AttrValue(n.cfg.GoToAttr)); target != "" {
				chosen[target] = struct{}{}
			}
		}
	}
	return chosen
}

func (n *Navigator) setItem(item *dom.Element, show bool) {
	if show {
		item.SetStyle("display", "block")
		item.AddClass(n.cfg.ItemActiveClass)
		return
	}
	item.SetDisplayNone(true)
	item.RemoveClass(n.cfg.ItemActiveClass)
}

func (n *Navigator) inItem(el *dom.Element) bool {
	return n.item != nil && el.Closest(n.item) != nil
}

// hiddenIn reports whether el is hidden by itself or an ancestor below step,
// or by a conditional block. The step's own display is ignored.
func (n *Navigator) hiddenIn(el, step *dom.Element) bool {
	for cur := el; cur != nil && cur != step; cur = cur.Parent() {
		if cur.Hidden() {
			return true
		}
	}
	return n.validator != nil && n.validator.hidden != nil && n.validator.hidden(el)
}
