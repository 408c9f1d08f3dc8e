package steps_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsync/pkg/dom"
	"github.com/goliatone/go-formsync/pkg/steps"
	"github.com/goliatone/go-formsync/pkg/testsupport"
)

const page = `<html><body><form data-form="multistep">
  <div id="step1" data-form="step">
    <div class="field-group">
      <div class="radio_component" data-validation-message="Pick an entity type">
        <label class="radio_field radio-type is-active-inputactive"><input id="llc" type="radio" name="entity" value="LLC"></label>
        <label class="radio_field radio-type is-active-inputactive"><input id="corp" type="radio" name="entity" value="Corp"></label>
      </div>
      <div id="entity-error" class="text-size-tiny error-state" style="display: none;"></div>
    </div>
    <div class="field-group">
      <div class="radio_component">
        <label><input id="opt-a" type="radio" name="optional" value="a"></label>
      </div>
    </div>
    <a id="next1" data-form="next-btn">Next</a>
  </div>
  <div id="step2" data-form="step">
    <div class="field-group">
      <div id="hidden-block" class="radio_component" style="display: none;">
        <label><input id="h-yes" type="radio" name="hiddenq" value="yes" required></label>
      </div>
      <div class="text-size-tiny error-state">Answer <b>this</b> &amp; continue</div>
    </div>
    <div class="field-group">
      <div class="radio_component">
        <label><input id="tax-yes" type="radio" name="tax" value="yes" data-conditional-required="true"></label>
        <label><input id="tax-no" type="radio" name="tax" value="no" data-conditional-required="true"></label>
      </div>
      <div id="tax-error" class="text-size-tiny error-state"></div>
    </div>
    <a id="back2" data-form="back-btn">Back</a>
    <a id="next2" data-form="next-btn">Next</a>
  </div>
  <div id="step3" data-form="step"><p>Review</p></div>
</form></body></html>`

type fixture struct {
	doc *dom.Document
	val *steps.Validator
	nav *steps.Navigator
}

func setup(t *testing.T) fixture {
	t.Helper()
	doc := testsupport.MustParsePage(t, page)
	cfg := steps.DefaultConfig()
	val := steps.NewValidator(doc, cfg)
	nav := steps.NewNavigator(doc, val, cfg)
	nav.Init()
	return fixture{doc: doc, val: val, nav: nav}
}

func (f fixture) el(t *testing.T, id string) *dom.Element {
	t.Helper()
	el := f.doc.Query(dom.AttrEquals("id", id))
	if el == nil {
		t.Fatalf("missing #%s", id)
	}
	return el
}

func TestDiscoversRequiredGroups(t *testing.T) {
	t.Parallel()

	f := setup(t)
	got := map[string]bool{}
	for _, g := range f.val.Groups() {
		got[g.Name] = g.Required
	}
	want := map[string]bool{"entity": true, "optional": false, "hiddenq": true, "tax": true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestMessagesResolveFromAttributeThenErrorText(t *testing.T) {
	t.Parallel()

	f := setup(t)
	cases := map[string]string{
		"entity":  "Pick an entity type",
		"hiddenq": "Answer this & continue",
		"tax":     "Please make a selection to continue",
	}
	for name, want := range cases {
		g, ok := f.val.Group(name)
		if !ok {
			t.Fatalf("missing group %s", name)
		}
		if g.Message != want {
			t.Fatalf("group %s message = %q, want %q", name, g.Message, want)
		}
	}
}

func TestNextRefusedUntilRequiredGroupChecked(t *testing.T) {
	t.Parallel()

	f := setup(t)
	err := f.nav.Next()
	if !errors.Is(err, steps.ErrStepIncomplete) {
		t.Fatalf("expected ErrStepIncomplete, got %v", err)
	}
	var incomplete *steps.IncompleteError
	if !errors.As(err, &incomplete) || len(incomplete.Issues) != 1 || incomplete.Issues[0].Group != "entity" {
		t.Fatalf("unexpected issues: %+v", err)
	}
	if f.nav.Current() != 0 {
		t.Fatalf("navigator advanced on incomplete step")
	}
	if got := f.doc.Focused(); got != f.el(t, "llc") {
		t.Fatalf("focus should move to the first invalid radio")
	}

	errEl := f.el(t, "entity-error")
	if errEl.IsDisplayNone() || errEl.AttrValue("role") != "alert" {
		t.Fatalf("error element not shown: %s", errEl.AttrValue("style"))
	}
	if errEl.Text() != "Pick an entity type" {
		t.Fatalf("error text = %q", errEl.Text())
	}
	if f.el(t, "llc").AttrValue("aria-invalid") != "true" {
		t.Fatalf("radio should be marked invalid")
	}

	f.el(t, "corp").SetChecked(true)
	f.val.HandleChange(f.el(t, "corp"))
	if !errEl.IsDisplayNone() {
		t.Fatalf("error should clear once a selection is made")
	}
	if err := f.nav.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if f.nav.Current() != 1 {
		t.Fatalf("current = %d, want 1", f.nav.Current())
	}
}

func TestHiddenRequiredGroupDoesNotBlock(t *testing.T) {
	t.Parallel()

	f := setup(t)
	f.el(t, "corp").SetChecked(true)
	if err := f.nav.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}

	if !f.val.IsGroupValid("hiddenq") {
		t.Fatalf("group inside a hidden block must count as valid")
	}
	if f.val.IsGroupValid("tax") {
		t.Fatalf("visible unchecked required group must be invalid")
	}

	f.el(t, "hidden-block").SetDisplayNone(false)
	if diff := cmp.Diff([]string{"hiddenq", "tax"}, f.val.InvalidGroups()); diff != "" {
		t.Fatalf("invalid groups mismatch (-want +got):\n%s", diff)
	}
}

func TestStepMarkedHiddenIsComplete(t *testing.T) {
	t.Parallel()

	f := setup(t)
	step2 := f.el(t, "step2")
	if !step2.IsDisplayNone() {
		t.Fatalf("only the first step should be displayed after Init")
	}
	if !f.val.Complete(step2) {
		t.Fatalf("hidden step should not be blocked by its groups")
	}
	step2.SetDisplayNone(false)
	if f.val.Complete(step2) {
		t.Fatalf("visible step with unchecked required group should be incomplete")
	}
}

func TestWithHiddenPredicate(t *testing.T) {
	t.Parallel()

	doc := testsupport.MustParsePage(t, page)
	val := steps.NewValidator(doc, steps.DefaultConfig(), steps.WithHidden(func(el *dom.Element) bool {
		return el.Name() == "entity"
	}))
	if !val.IsGroupValid("entity") {
		t.Fatalf("predicate should exclude the entity group")
	}
}

func TestBackUsesHistoryAndButtonsRoute(t *testing.T) {
	t.Parallel()

	f := setup(t)
	if handled, err := f.nav.HandleClick(f.el(t, "next1")); !handled || err == nil {
		t.Fatalf("next click on incomplete step: handled=%v err=%v", handled, err)
	}
	f.el(t, "llc").SetChecked(true)
	if handled, err := f.nav.HandleClick(f.el(t, "next1")); !handled || err != nil {
		t.Fatalf("next click: handled=%v err=%v", handled, err)
	}
	if !f.el(t, "step1").IsDisplayNone() || f.el(t, "step2").IsDisplayNone() {
		t.Fatalf("only step 2 should be displayed")
	}
	if handled, err := f.nav.HandleClick(f.el(t, "back2")); !handled || err != nil {
		t.Fatalf("back click: handled=%v err=%v", handled, err)
	}
	if f.nav.Current() != 0 {
		t.Fatalf("current = %d, want 0", f.nav.Current())
	}
	if err := f.nav.Back(); !errors.Is(err, steps.ErrNoPreviousStep) {
		t.Fatalf("expected ErrNoPreviousStep, got %v", err)
	}
	if handled, _ := f.nav.HandleClick(f.el(t, "llc")); handled {
		t.Fatalf("radio click is not navigation")
	}
}

func TestGoToValidatesIntermediateSteps(t *testing.T) {
	t.Parallel()

	f := setup(t)
	f.el(t, "llc").SetChecked(true)
	if err := f.nav.GoTo(2); !errors.Is(err, steps.ErrStepIncomplete) {
		t.Fatalf("jump over incomplete step 2 should fail, got %v", err)
	}
	if f.nav.Current() != 1 {
		t.Fatalf("jump should stop at the incomplete step, current = %d", f.nav.Current())
	}
	f.el(t, "tax-no").SetChecked(true)
	if err := f.nav.GoTo(2); err != nil {
		t.Fatalf("goto: %v", err)
	}
	if f.nav.CurrentStep() != f.el(t, "step3") {
		t.Fatalf("expected step 3 displayed")
	}
	if err := f.nav.GoTo(0); err != nil || f.nav.Current() != 0 {
		t.Fatalf("backward jump: current=%d err=%v", f.nav.Current(), err)
	}
	if err := f.nav.GoTo(2); err != nil {
		t.Fatalf("goto over complete steps: %v", err)
	}
	if err := f.nav.Next(); !errors.Is(err, steps.ErrNoNextStep) {
		t.Fatalf("expected ErrNoNextStep, got %v", err)
	}
	if err := f.nav.GoTo(7); err == nil {
		t.Fatalf("out of range index should fail")
	}
}

func TestUpdateButtonsReflectsCompleteness(t *testing.T) {
	t.Parallel()

	f := setup(t)
	next := f.el(t, "next1")
	if !next.HasClass("wf-button-disabled") || next.AttrValue("aria-disabled") != "true" {
		t.Fatalf("next button should start disabled")
	}
	f.el(t, "llc").SetChecked(true)
	f.val.HandleChange(f.el(t, "llc"))
	if next.HasClass("wf-button-disabled") || next.HasAttr("aria-disabled") {
		t.Fatalf("next button should be enabled once complete")
	}
}

func TestClearAllErrors(t *testing.T) {
	t.Parallel()

	f := setup(t)
	f.val.ValidateStep(f.el(t, "step1"))
	f.val.ClearAllErrors()
	if !f.el(t, "entity-error").IsDisplayNone() {
		t.Fatalf("error should be hidden")
	}
	if f.el(t, "llc").HasAttr("aria-invalid") {
		t.Fatalf("aria-invalid should be cleared")
	}
}

const branchPage = `<html><body><form data-form="multistep">
  <div id="b-start" data-form="step">
    <div data-answer="start" data-go-to="details">
      <div class="radio_component">
        <label class="radio_field radio-type is-active-inputactive"><input id="pick-person" type="radio" name="owner" value="person" data-go-to="individual-1"></label>
        <label class="radio_field radio-type is-active-inputactive"><input id="pick-entity" type="radio" name="owner" value="entity" data-go-to="entity-1"></label>
        <label class="radio_field radio-type is-active-inputactive"><input id="pick-trust" type="radio" name="owner" value="trust" data-go-to="trust-1"></label>
        <label class="radio_field radio-type is-active-inputactive"><input id="pick-other" type="radio" name="owner" value="other" data-go-to="nowhere"></label>
      </div>
    </div>
    <div id="item-trust" class="step_item" data-answer="trust-1">Trusts need a trustee certificate.</div>
    <a id="b-next1" data-form="next-btn">Next</a>
  </div>
  <div id="b-entity" data-form="step" data-answer="entity-1" data-go-to="review">
    <p>Entity details</p>
    <a id="b-back2" data-form="back-btn">Back</a>
  </div>
  <div id="b-details" data-form="step">
    <div data-answer="details">
      <div id="item-person" class="step_item" data-answer="individual-1" data-go-to="review">Person</div>
      <div id="item-entity" class="step_item" data-answer="entity-1" data-go-to="review">Entity</div>
    </div>
  </div>
  <div id="b-review" data-form="step" data-answer="review"><p>Review</p></div>
</form></body></html>`

type unresolvedTarget struct {
	Step   int
	Target string
}

func setupBranching(t *testing.T) (fixture, *[]unresolvedTarget) {
	t.Helper()
	doc := testsupport.MustParsePage(t, branchPage)
	cfg := steps.DefaultConfig()
	val := steps.NewValidator(doc, cfg)
	var missed []unresolvedTarget
	nav := steps.NewNavigator(doc, val, cfg, steps.WithUnresolved(func(step int, target string) {
		missed = append(missed, unresolvedTarget{Step: step, Target: target})
	}))
	nav.Init()
	return fixture{doc: doc, val: val, nav: nav}, &missed
}

func TestStepIDPrefersAnswers(t *testing.T) {
	t.Parallel()

	f, _ := setupBranching(t)
	var got []string
	for _, step := range f.nav.Steps() {
		got = append(got, f.nav.StepID(step))
	}
	if diff := cmp.Diff([]string{"start", "entity-1", "details", "review"}, got); diff != "" {
		t.Fatalf("step ids mismatch (-want +got):\n%s", diff)
	}
}

func TestNextFollowsCheckedRadioTarget(t *testing.T) {
	t.Parallel()

	f, missed := setupBranching(t)
	if err := f.nav.Next(); !errors.Is(err, steps.ErrStepIncomplete) {
		t.Fatalf("branching choice is required, got %v", err)
	}

	f.el(t, "pick-entity").SetChecked(true)
	if err := f.nav.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if f.nav.CurrentStep() != f.el(t, "b-entity") {
		t.Fatalf("entity answer should jump to the entity step, at %d", f.nav.Current())
	}
	if err := f.nav.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if f.nav.CurrentStep() != f.el(t, "b-review") {
		t.Fatalf("entity step go-to should skip the details step, at %d", f.nav.Current())
	}

	if err := f.nav.Back(); err != nil || f.nav.CurrentStep() != f.el(t, "b-entity") {
		t.Fatalf("back should retrace to the entity step: current=%d err=%v", f.nav.Current(), err)
	}
	if handled, err := f.nav.HandleClick(f.el(t, "b-back2")); !handled || err != nil {
		t.Fatalf("back click: handled=%v err=%v", handled, err)
	}
	if f.nav.Current() != 0 {
		t.Fatalf("current = %d, want 0", f.nav.Current())
	}
	if len(*missed) != 0 {
		t.Fatalf("unexpected unresolved targets: %v", *missed)
	}
}

func TestChosenPathRevealsAnsweredItems(t *testing.T) {
	t.Parallel()

	f, _ := setupBranching(t)
	person, entity := f.el(t, "item-person"), f.el(t, "item-entity")
	if !person.IsDisplayNone() || !entity.IsDisplayNone() || !f.el(t, "item-trust").IsDisplayNone() {
		t.Fatalf("answered items start hidden")
	}

	f.el(t, "pick-person").SetChecked(true)
	if err := f.nav.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if f.nav.CurrentStep() != f.el(t, "b-details") {
		t.Fatalf("person answer should land on the step holding its item, at %d", f.nav.Current())
	}
	if person.IsDisplayNone() || !person.HasClass("active-step-item") {
		t.Fatalf("item on the chosen path should be shown")
	}
	if !entity.IsDisplayNone() || entity.HasClass("active-step-item") {
		t.Fatalf("item off the chosen path should stay hidden")
	}
	if err := f.nav.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if f.nav.CurrentStep() != f.el(t, "b-review") {
		t.Fatalf("visible item go-to should lead to review, at %d", f.nav.Current())
	}
}

func TestRadioChangeTogglesItemsInItsStep(t *testing.T) {
	t.Parallel()

	f, missed := setupBranching(t)
	trust := f.el(t, "item-trust")
	pick := f.el(t, "pick-trust")
	pick.SetChecked(true)
	if !f.nav.HandleChange(pick) {
		t.Fatalf("radio with a go-to should be handled")
	}
	if trust.IsDisplayNone() {
		t.Fatalf("item answering the checked radio should be shown")
	}

	f.el(t, "pick-person").SetChecked(true)
	f.nav.HandleChange(f.el(t, "pick-person"))
	if !trust.IsDisplayNone() {
		t.Fatalf("item should hide once another answer is chosen")
	}

	pick.SetChecked(true)
	f.nav.HandleChange(pick)
	if err := f.nav.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if f.nav.CurrentStep() != f.el(t, "b-details") {
		t.Fatalf("a target answered inside its own step falls through to the wrapper go-to, at %d", f.nav.Current())
	}
	if len(*missed) != 0 {
		t.Fatalf("in-step targets are not unresolved: %v", *missed)
	}
	if f.nav.HandleChange(f.el(t, "b-next1")) {
		t.Fatalf("a button is not a branching control")
	}
}

func TestUnresolvedTargetFallsBackAndIsReported(t *testing.T) {
	t.Parallel()

	f, missed := setupBranching(t)
	f.el(t, "pick-other").SetChecked(true)
	if err := f.nav.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if f.nav.CurrentStep() != f.el(t, "b-details") {
		t.Fatalf("unresolved target should fall back to the wrapper go-to, at %d", f.nav.Current())
	}
	if diff := cmp.Diff([]unresolvedTarget{{Step: 0, Target: "nowhere"}}, *missed); diff != "" {
		t.Fatalf("unresolved mismatch (-want +got):\n%s", diff)
	}
}

func TestGoToRejectsStepsOffThePath(t *testing.T) {
	t.Parallel()

	f, _ := setupBranching(t)
	f.el(t, "pick-entity").SetChecked(true)
	if err := f.nav.GoTo(2); !errors.Is(err, steps.ErrUnreachableStep) {
		t.Fatalf("details step is skipped by the entity branch, got %v", err)
	}
	if err := f.nav.GoTo(0); err != nil {
		t.Fatalf("backward jump: %v", err)
	}
	if err := f.nav.GoTo(1); err != nil || f.nav.CurrentStep() != f.el(t, "b-entity") {
		t.Fatalf("entity step is on the path: current=%d err=%v", f.nav.Current(), err)
	}
}
