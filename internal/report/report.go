package report

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formsync/pkg/dom"
	"github.com/goliatone/go-formsync/pkg/engine"
	"github.com/goliatone/go-formsync/pkg/registry"
	"github.com/goliatone/go-formsync/pkg/summarysync"
)

//go:embed inspect.tpl
var inspectTemplate string

var (
	compileOnce sync.Once
	compiled    *pongo2.Template
	compileErr  error
)

// Page is the inspection result of one form page.
type Page struct {
	Path   string  `json:"path"`
	FormID string  `json:"formId,omitempty"`
	Steps  []Step  `json:"steps,omitempty"`
	Fields []Field `json:"fields,omitempty"`
	Slots  []Slot  `json:"slots,omitempty"`
	Blocks []Block `json:"blocks,omitempty"`
	Groups []Group `json:"groups,omitempty"`
}

// Step describes a navigation step.
type Step struct {
	Index   int    `json:"index"`
	Context string `json:"context"`
	Branch  string `json:"branch,omitempty"`
	Current bool   `json:"current,omitempty"`
}

// Field describes a registered field and its resolved value.
type Field struct {
	Name  string `json:"name"`
	Step  string `json:"step"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// Slot describes a summary slot and its current text.
type Slot struct {
	Field   string `json:"field"`
	Context string `json:"context"`
	Text    string `json:"text"`
}

// Block describes a conditional block.
type Block struct {
	Label  string   `json:"label"`
	HideIf string   `json:"hideIf,omitempty"`
	ShowIf string   `json:"showIf,omitempty"`
	Hidden bool     `json:"hidden"`
	Fields []string `json:"fields,omitempty"`
}

// Group describes a radio group known to the step validator.
type Group struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Valid    bool   `json:"valid"`
	Message  string `json:"message"`
}

// Build collects the state of an attached engine.
func Build(path string, eng *engine.Engine) Page {
	page := Page{Path: path, FormID: eng.FormID()}
	markers := eng.Registry().Markers()

	current := eng.CurrentStep()
	nav := eng.Navigator()
	for i, step := range nav.Steps() {
		page.Steps = append(page.Steps, Step{
			Index:   i,
			Context: stepContext(step, markers),
			Branch:  nav.StepID(step),
			Current: i == current,
		})
	}

	seenRadio := make(map[string]struct{})
	for _, field := range eng.Registry().Fields() {
		el := field.Element
		if el.Kind() == dom.KindRadio {
			key := field.Name + "|" + field.Step.String()
			if _, ok := seenRadio[key]; ok {
				continue
			}
			seenRadio[key] = struct{}{}
		}
		page.Fields = append(page.Fields, Field{
			Name:  field.Name,
			Step:  field.Step.String(),
			Kind:  el.Kind(),
			Value: summarysync.ResolveValue(el),
		})
	}

	for _, slot := range eng.Registry().Slots() {
		page.Slots = append(page.Slots, Slot{
			Field:   slot.Field,
			Context: slot.Context.String(),
			Text:    strings.TrimSpace(slot.Element.Text()),
		})
	}

	for _, block := range eng.Visibility().Blocks() {
		page.Blocks = append(page.Blocks, Block{
			Label:  describe(block.Element),
			HideIf: block.Rule.HideIf,
			ShowIf: block.Rule.ShowIf,
			Hidden: block.Target != nil && block.Target.IsDisplayNone(),
			Fields: block.Fields,
		})
	}

	validator := eng.Validator()
	for _, group := range validator.Groups() {
		page.Groups = append(page.Groups, Group{
			Name:     group.Name,
			Required: group.Required,
			Valid:    validator.IsGroupValid(group.Name),
			Message:  group.Message,
		})
	}
	return page
}

// Render writes the text report for pages.
func Render(w io.Writer, pages []Page) error {
	compileOnce.Do(func() {
		compiled, compileErr = pongo2.FromString(inspectTemplate)
	})
	if compileErr != nil {
		return fmt.Errorf("report: compile template: %w", compileErr)
	}
	if err := compiled.ExecuteWriter(pongo2.Context{"pages": pages}, w); err != nil {
		return fmt.Errorf("report: render: %w", err)
	}
	return nil
}

// RenderJSON writes pages as an indented JSON array.
func RenderJSON(w io.Writer, pages []Page) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pages); err != nil {
		return fmt.Errorf("report: encode json: %w", err)
	}
	return nil
}

func stepContext(step *dom.Element, markers registry.Markers) string {
	ctx := registry.StepContext{
		Type:    step.AttrValue(markers.StepType),
		Number:  step.AttrValue(markers.StepNumber),
		Subtype: step.AttrValue(markers.StepSubtype),
	}
	return ctx.String()
}

func describe(el *dom.Element) string {
	if id := el.ID(); id != "" {
		return "#" + id
	}
	if name := el.Name(); name != "" {
		return el.TagName() + "[name=" + name + "]"
	}
	return el.TagName()
}
