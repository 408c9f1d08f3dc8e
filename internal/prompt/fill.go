package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formsync/pkg/dom"
	"github.com/goliatone/go-formsync/pkg/engine"
	"github.com/goliatone/go-formsync/pkg/steps"
)

// Filler walks an attached engine step by step, prompting for every visible
// control and advancing once the step is complete.
type Filler struct {
	eng    *engine.Engine
	driver Driver
	logger *zap.Logger
}

// NewFiller constructs a Filler. A nil logger disables logging.
func NewFiller(eng *engine.Engine, driver Driver, logger *zap.Logger) *Filler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filler{eng: eng, driver: driver, logger: logger}
}

// Fill prompts through every step until the last one is reached. Incomplete
// steps are prompted again after their validation messages are shown.
func (f *Filler) Fill(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		step := f.eng.Navigator().CurrentStep()
		if step == nil {
			return nil
		}
		if err := f.fillStep(ctx, step); err != nil {
			return err
		}

		err := f.eng.Next()
		switch {
		case err == nil:
			continue
		case errors.Is(err, steps.ErrNoNextStep):
			return nil
		case errors.Is(err, engine.ErrStepIncomplete):
			var incomplete *steps.IncompleteError
			if errors.As(err, &incomplete) {
				for _, issue := range incomplete.Issues {
					if nerr := f.driver.Notify(ctx, fmt.Sprintf("! %s: %s", issue.Group, issue.Message)); nerr != nil {
						return nerr
					}
				}
			}
			f.logger.Debug("step incomplete, prompting again", zap.Int("step", f.eng.CurrentStep()))
		default:
			return fmt.Errorf("prompt: advance: %w", err)
		}
	}
}

// Summaries returns the text of every summary slot, labelled by field name,
// in document order.
func (f *Filler) Summaries() []string {
	var out []string
	for _, slot := range f.eng.Registry().Slots() {
		out = append(out, fmt.Sprintf("%s: %s", slot.Field, strings.TrimSpace(slot.Element.Text())))
	}
	return out
}

func (f *Filler) fillStep(ctx context.Context, step *dom.Element) error {
	doc := f.eng.Document()
	seenGroups := make(map[string]struct{})
	// Visibility is checked per control so blocks revealed by an earlier
	// answer are prompted too.
	for _, ctrl := range step.QueryAll(promptable) {
		if f.hidden(ctrl, step) {
			continue
		}
		label := f.label(ctrl)

		switch ctrl.Kind() {
		case dom.KindRadio:
			name := ctrl.Name()
			if _, ok := seenGroups[name]; ok {
				continue
			}
			seenGroups[name] = struct{}{}
			radios := visibleRadios(ctrl, step)
			q := ChoiceQuestion{Question: Question{Field: label}, Choices: make([]string, len(radios)), Selected: -1}
			for i, r := range radios {
				q.Choices[i] = radioLabel(r)
				if r.Checked() {
					q.Selected = i
				}
			}
			if group, ok := f.eng.Validator().Group(name); ok {
				q.Required = group.Required
				q.Hint = group.Message
			}
			idx, err := f.driver.Choose(ctx, q)
			if err != nil {
				return err
			}
			if idx >= 0 && idx < len(radios) {
				doc.Click(radios[idx])
			}

		case dom.KindCheckbox:
			yes, err := f.driver.Toggle(ctx, ToggleQuestion{Question: Question{Field: label}, Checked: ctrl.Checked()})
			if err != nil {
				return err
			}
			if yes != ctrl.Checked() {
				doc.Click(ctrl)
			}

		case dom.KindSelect:
			opts := ctrl.Options()
			q := ChoiceQuestion{
				Question: Question{Field: label, Required: ctrl.HasAttr("required")},
				Choices:  make([]string, len(opts)),
				Selected: ctrl.SelectedIndex(),
			}
			for i, opt := range opts {
				q.Choices[i] = optionLabel(opt)
			}
			idx, err := f.driver.Choose(ctx, q)
			if err != nil {
				return err
			}
			if idx >= 0 {
				doc.Choose(ctrl, idx)
			}

		default:
			value, err := f.driver.Text(ctx, TextQuestion{
				Question: Question{
					Field:    label,
					Hint:     ctrl.AttrValue("placeholder"),
					Required: ctrl.HasAttr("required"),
				},
				Value: ctrl.Value(),
			})
			if err != nil {
				return err
			}
			doc.Type(ctrl, value)
		}
		f.eng.Flush()
	}
	return nil
}

func (f *Filler) hidden(el, step *dom.Element) bool {
	return el.HiddenWithin(step) || f.eng.Visibility().ConditionallyHidden(el)
}

func (f *Filler) label(el *dom.Element) string {
	if field, ok := f.eng.Registry().FieldFor(el); ok {
		return field.Name
	}
	for _, candidate := range []string{el.Name(), el.ID(), el.AttrValue("placeholder")} {
		if candidate != "" {
			return candidate
		}
	}
	return el.TagName()
}

func promptable(el *dom.Element) bool {
	if !el.IsControl() || el.Disabled() {
		return false
	}
	switch el.Kind() {
	case dom.KindButton, dom.KindNone:
		return false
	}
	switch el.InputType() {
	case "hidden", "submit", "reset", "button", "image", "file":
		return false
	}
	return true
}

func visibleRadios(ctrl, step *dom.Element) []*dom.Element {
	var out []*dom.Element
	for _, r := range ctrl.RadioGroup() {
		if step.Contains(r) && !r.HiddenWithin(step) && !r.Disabled() {
			out = append(out, r)
		}
	}
	return out
}

func radioLabel(r *dom.Element) string {
	if label := r.Closest(dom.Tag("label")); label != nil {
		if text := strings.TrimSpace(label.Text()); text != "" {
			return text
		}
	}
	if v := r.AttrValue("value"); v != "" {
		return v
	}
	return "on"
}

func optionLabel(opt *dom.Element) string {
	if text := strings.TrimSpace(opt.OptionText()); text != "" {
		return text
	}
	if v := opt.OptionValue(); v != "" {
		return v
	}
	return "(none)"
}
