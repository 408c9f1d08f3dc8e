package condition

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsync/pkg/visibility"
)

func lookupFrom(values map[string]string) visibility.Lookup {
	return func(name string) (string, bool) {
		v, ok := values[name]
		return v, ok
	}
}

func TestEvaluatorEqualsIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	eval := New()
	values := map[string]string{"Child-Entity-1": "California"}

	if !eval.Hide("Child-Entity-1:equals:california", lookupFrom(values)) {
		t.Fatalf("expected hide for case-insensitive match")
	}

	values["Child-Entity-1"] = "Arkansas"
	if eval.Hide("Child-Entity-1:equals:california", lookupFrom(values)) {
		t.Fatalf("expected no hide after value changed")
	}
}

func TestEvaluatorNormalisesWhitespace(t *testing.T) {
	t.Parallel()

	eval := New()
	values := map[string]string{"state": "  Texas  "}
	if !eval.Hide(" state : EQUALS : texas ", lookupFrom(values)) {
		t.Fatalf("expected trimmed operands and operator to match")
	}
}

func TestEvaluatorNotEquals(t *testing.T) {
	t.Parallel()

	eval := New()
	values := map[string]string{"kind": "LLC"}
	if eval.Hide("kind:notEquals:llc", lookupFrom(values)) {
		t.Fatalf("notEquals must be false for a normalised match")
	}
	if !eval.Hide("kind:notEquals:corp", lookupFrom(values)) {
		t.Fatalf("notEquals must be true for a mismatch")
	}
}

func TestEvaluatorAnyClauseHides(t *testing.T) {
	t.Parallel()

	eval := New()
	values := map[string]string{"a": "1", "b": "2"}
	if !eval.Hide("a:equals:9;b:equals:2", lookupFrom(values)) {
		t.Fatalf("a single matching clause should hide the block")
	}
	if eval.Hide("a:equals:9;b:equals:9", lookupFrom(values)) {
		t.Fatalf("no matching clause should keep the block visible")
	}
}

func TestEvaluatorSkipsMalformedClauses(t *testing.T) {
	t.Parallel()

	var reported []error
	eval := New(WithReporter(func(err error) { reported = append(reported, err) }))
	values := map[string]string{"b": "yes"}

	if !eval.Hide("broken:clause;b:equals:yes", lookupFrom(values)) {
		t.Fatalf("well-formed clause after a malformed one should still apply")
	}
	if len(reported) != 1 {
		t.Fatalf("expected one warning, got %d", len(reported))
	}
	var parseErr *ParseError
	if !errors.As(reported[0], &parseErr) || parseErr.Clause != "broken:clause" {
		t.Fatalf("expected ParseError for broken clause, got %v", reported[0])
	}
}

func TestEvaluatorUnknownOperatorWarns(t *testing.T) {
	t.Parallel()

	var reported []error
	eval := New(WithReporter(func(err error) { reported = append(reported, err) }))
	values := map[string]string{"a": "x"}

	if eval.Hide("a:matches:x", lookupFrom(values)) {
		t.Fatalf("unknown operator must evaluate false")
	}
	var opErr *OperatorError
	if len(reported) != 1 || !errors.As(reported[0], &opErr) {
		t.Fatalf("expected OperatorError, got %v", reported)
	}
	if opErr.Clause != "a:matches:x" {
		t.Fatalf("clause not attached to error: %q", opErr.Clause)
	}
}

func TestEvaluatorUnknownOperatorWarnsForAbsentField(t *testing.T) {
	t.Parallel()

	var reported []error
	eval := New(WithReporter(func(err error) { reported = append(reported, err) }))
	if eval.Hide("ghost:matches:x", lookupFrom(nil)) {
		t.Fatalf("unknown operator must evaluate false")
	}
	var opErr *OperatorError
	if len(reported) != 1 || !errors.As(reported[0], &opErr) {
		t.Fatalf("expected OperatorError for a field that does not exist, got %v", reported)
	}
	if opErr.Operator != "matches" {
		t.Fatalf("operator = %q, want matches", opErr.Operator)
	}
}

func TestEvaluatorMissingFieldIsFalse(t *testing.T) {
	t.Parallel()

	var reported []error
	eval := New(WithReporter(func(err error) { reported = append(reported, err) }))
	if eval.Hide("ghost:notEquals:x", lookupFrom(nil)) {
		t.Fatalf("clauses over unknown fields evaluate false")
	}
	if len(reported) != 0 {
		t.Fatalf("missing fields are not warnings: %v", reported)
	}
}

func TestShouldHideCombinesShowAndHide(t *testing.T) {
	t.Parallel()

	eval := New()
	rule := visibility.Rule{
		ShowIf: "country:equals:usa;age:gte:18",
		HideIf: "state:in:California, New York",
	}

	cases := []struct {
		name   string
		values map[string]string
		want   bool
	}{
		{"all show clauses pass", map[string]string{"country": "USA", "age": "21", "state": "Texas"}, false},
		{"one show clause fails", map[string]string{"country": "USA", "age": "17", "state": "Texas"}, true},
		{"hide clause matches", map[string]string{"country": "USA", "age": "30", "state": "new york"}, true},
	}
	for _, tc := range cases {
		if got := eval.ShouldHide(rule, lookupFrom(tc.values)); got != tc.want {
			t.Fatalf("%s: ShouldHide = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestReferences(t *testing.T) {
	t.Parallel()

	eval := New()
	got := eval.References(visibility.Rule{
		HideIf: "a:equals:1;b:equals:2;a:equals:3",
		ShowIf: "c:isNotEmpty:-",
	})
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Fatalf("references mismatch (-want +got):\n%s", diff)
	}
}

func TestParseKeepsColonsInTarget(t *testing.T) {
	t.Parallel()

	expr, errs := Parse("time:equals:10:30;;")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []Clause{{Field: "time", Operator: "equals", Target: "10:30", Raw: "time:equals:10:30"}}
	if diff := cmp.Diff(want, expr.Clauses); diff != "" {
		t.Fatalf("clauses mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyOperators(t *testing.T) {
	t.Parallel()

	cases := []struct {
		op, value, target string
		want              bool
	}{
		{"contains", "Hello World", "world", true},
		{"notContains", "Hello", "x", true},
		{"startsWith", "Hello", "he", true},
		{"endsWith", "Hello", "LO", true},
		{"isEmpty", "  ", "", true},
		{"isNotEmpty", "a", "", true},
		{"gt", "10", "9", true},
		{"lt", "abc", "9", false},
		{"lte", "9", "9", true},
		{"gte", "18 years", "18", true},
		{"gt", "2.5kg", "2", true},
		{"lt", " -3 degrees", "0", true},
		{"gt", "years: 18", "1", false},
		{"notIn", "c", "a,b", true},
		{"==", "A", "a", true},
	}
	for _, tc := range cases {
		got, err := Apply(tc.op, tc.value, tc.target)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.op, err)
		}
		if got != tc.want {
			t.Fatalf("%s(%q, %q) = %v, want %v", tc.op, tc.value, tc.target, got, tc.want)
		}
	}
}
