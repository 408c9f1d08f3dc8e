package dom_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsync/pkg/dom"
)

const page = `<!doctype html><html><body>
<form id="f" data-form="multistep">
  <div data-form="step" data-step-type="contact" data-step-number="1">
    <input id="first" type="text" data-step-field-name="firstName" value="Ada">
    <textarea id="notes">hello</textarea>
    <select id="answer">
      <option value="">Choose...</option>
      <option value="y">Yes</option>
      <option value="n">No</option>
    </select>
    <input id="r1" type="radio" name="kind" value="llc">
    <input id="r2" type="radio" name="kind" value="corp" checked>
    <input id="cb" type="checkbox">
  </div>
  <p id="summary" style="color: red">old <b>text</b></p>
</form>
</body></html>`

func mustParse(t *testing.T) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(page)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	return doc
}

func byID(t *testing.T, doc *dom.Document, id string) *dom.Element {
	t.Helper()
	el := doc.Query(dom.AttrEquals("id", id))
	if el == nil {
		t.Fatalf("element #%s not found", id)
	}
	return el
}

func TestElementIdentityIsStable(t *testing.T) {
	t.Parallel()

	doc := mustParse(t)
	a := byID(t, doc, "first")
	b := byID(t, doc, "first")
	if a != b {
		t.Fatalf("expected the same *Element for repeated queries")
	}
}

func TestClosestAndContains(t *testing.T) {
	t.Parallel()

	doc := mustParse(t)
	first := byID(t, doc, "first")
	step := first.Closest(dom.AttrEquals("data-form", "step"))
	if step == nil || step.AttrValue("data-step-type") != "contact" {
		t.Fatalf("expected enclosing step, got %v", step)
	}
	if !step.Contains(first) {
		t.Fatalf("step should contain its field")
	}
	if first.Contains(step) {
		t.Fatalf("field must not contain its step")
	}
}

func TestControlValues(t *testing.T) {
	t.Parallel()

	doc := mustParse(t)
	if got := byID(t, doc, "first").Value(); got != "Ada" {
		t.Fatalf("input value = %q", got)
	}
	if got := byID(t, doc, "notes").Value(); got != "hello" {
		t.Fatalf("textarea value = %q", got)
	}

	sel := byID(t, doc, "answer")
	if got := sel.SelectedIndex(); got != 0 {
		t.Fatalf("default selected index = %d, want 0", got)
	}
	sel.Select(2)
	if got := sel.Value(); got != "n" {
		t.Fatalf("select value = %q, want n", got)
	}
	if got := sel.SelectedOption().OptionText(); got != "No" {
		t.Fatalf("selected text = %q, want No", got)
	}
	sel.Select(-1)
	if got := sel.SelectedIndex(); got != -1 {
		t.Fatalf("cleared selected index = %d, want -1", got)
	}
	if strings.Contains(doc.HTML(), "data-no-default") {
		t.Fatalf("clearing a select must not change the markup")
	}
	sel.Select(1)
	if got := sel.SelectedIndex(); got != 1 {
		t.Fatalf("reselected index = %d, want 1", got)
	}
}

func TestRadioExclusivity(t *testing.T) {
	t.Parallel()

	doc := mustParse(t)
	r1 := byID(t, doc, "r1")
	r2 := byID(t, doc, "r2")
	if r1.CheckedRadio() != r2 {
		t.Fatalf("expected r2 to be the checked radio")
	}
	doc.Click(r1)
	if !r1.Checked() || r2.Checked() {
		t.Fatalf("clicking r1 should uncheck r2")
	}
}

func TestDispatchOrderAndRemoval(t *testing.T) {
	t.Parallel()

	doc := mustParse(t)
	var got []string
	removeInput := doc.On(dom.EventInput, func(ev dom.Event) {
		got = append(got, "input:"+ev.Target.ID())
	})
	doc.On(dom.EventChange, func(ev dom.Event) {
		got = append(got, "change:"+ev.Target.ID())
	})

	doc.Type(byID(t, doc, "first"), "Grace")
	removeInput()
	doc.Click(byID(t, doc, "cb"))

	want := []string{"input:first", "change:first", "change:cb"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
	if !byID(t, doc, "cb").Checked() {
		t.Fatalf("checkbox should be checked after click")
	}
}

func TestSetTextDoesNotDispatch(t *testing.T) {
	t.Parallel()

	doc := mustParse(t)
	fired := 0
	doc.On(dom.EventInput, func(dom.Event) { fired++ })
	doc.On(dom.EventChange, func(dom.Event) { fired++ })

	summary := byID(t, doc, "summary")
	summary.SetText("new")
	if summary.Text() != "new" {
		t.Fatalf("text = %q", summary.Text())
	}
	if fired != 0 {
		t.Fatalf("SetText dispatched %d events", fired)
	}
}

func TestDisplayToggleIsIdempotent(t *testing.T) {
	t.Parallel()

	doc := mustParse(t)
	summary := byID(t, doc, "summary")

	summary.SetDisplayNone(true)
	once := summary.AttrValue("style")
	summary.SetDisplayNone(true)
	if twice := summary.AttrValue("style"); twice != once {
		t.Fatalf("style changed on repeat: %q vs %q", once, twice)
	}
	if !summary.Hidden() {
		t.Fatalf("expected hidden")
	}

	summary.SetDisplayNone(false)
	if summary.Hidden() {
		t.Fatalf("expected visible")
	}
	if got := summary.Style("color"); got != "red" {
		t.Fatalf("unrelated style lost: %q", got)
	}
}

func TestSelector(t *testing.T) {
	t.Parallel()

	doc := mustParse(t)
	steps := doc.QueryAll(dom.Selector(`div[data-form="step"]`))
	if len(steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(steps))
	}
	radios := doc.QueryAll(dom.Selector(`input[type=radio][name]`))
	if len(radios) != 2 {
		t.Fatalf("expected 2 radios, got %d", len(radios))
	}
	if got := doc.QueryAll(dom.Selector(`form > [data-form="step"] > input[checked]`)); len(got) != 1 || got[0].ID() != "r2" {
		t.Fatalf("combinator selector matched %d elements", len(got))
	}
	if dom.Selector("div[") != nil || dom.Selector("  ") != nil {
		t.Fatalf("invalid or empty selectors should yield nil")
	}
}

func TestCompileReportsInvalidSelectors(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{`[data-form="step"`, "div[", "   "} {
		if m, err := dom.Compile(raw); err == nil || m != nil {
			t.Fatalf("Compile(%q) should fail", raw)
		}
	}
	m, err := dom.Compile(`[data-form="step"]`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if got := mustParse(t).QueryAll(m); len(got) != 1 {
		t.Fatalf("expected 1 step, got %d", len(got))
	}
}

func TestRenderReflectsState(t *testing.T) {
	t.Parallel()

	doc := mustParse(t)
	doc.Type(byID(t, doc, "first"), "Grace")
	out := doc.HTML()
	if !strings.Contains(out, `value="Grace"`) {
		t.Fatalf("rendered HTML missing new value:\n%s", out)
	}
}
