package report_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsync/internal/report"
	"github.com/goliatone/go-formsync/pkg/engine"
	"github.com/goliatone/go-formsync/pkg/testsupport"
)

const fixture = "testdata/owner.html"

func attach(t *testing.T) *engine.Engine {
	t.Helper()
	eng := engine.New(testsupport.MustLoadPage(t, fixture), engine.WithSettleDelay(0))
	if err := eng.Attach(testsupport.Context(), nil); err != nil {
		t.Fatalf("attach: %v", err)
	}
	t.Cleanup(eng.Detach)
	return eng
}

func TestBuildMatchesGolden(t *testing.T) {
	t.Parallel()

	got := report.Build(fixture, attach(t))
	golden := "testdata/owner.golden.json"
	if testsupport.WriteMaybeGolden(t, golden, got) {
		return
	}
	var want report.Page
	testsupport.MustLoadGolden(t, golden, &want)
	if diff := testsupport.CompareGolden(want, got); diff != "" {
		t.Fatalf("page mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTracksEngineState(t *testing.T) {
	t.Parallel()

	eng := attach(t)
	doc := eng.Document()
	state := testsupport.ByID(t, doc, "state")
	doc.Choose(state, 1)

	page := report.Build(fixture, eng)
	wantBlocks := []report.Block{
		{Label: "#agent-block", HideIf: "state:equals:CA", Hidden: true, Fields: []string{"state"}},
	}
	if diff := cmp.Diff(wantBlocks, page.Blocks); diff != "" {
		t.Fatalf("blocks mismatch (-want +got):\n%s", diff)
	}
	if page.Fields[1].Value != "California" {
		t.Fatalf("state value = %q, want California", page.Fields[1].Value)
	}
	if !page.Groups[0].Valid {
		t.Fatalf("hidden group should count as valid")
	}
}

func TestRenderWritesSections(t *testing.T) {
	t.Parallel()

	page := report.Build(fixture, attach(t))
	var buf bytes.Buffer
	if err := report.Render(&buf, []report.Page{page}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"== " + fixture + " ==",
		"form id: f-1",
		"[0] owner/1 (current)",
		"name @ owner/1 <text> = Ada",
		`#agent-block hide-if="state:equals:CA" [shown] watches: state`,
		"agent required [missing]",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderShowsBranchNames(t *testing.T) {
	t.Parallel()

	page := report.Page{Path: "paths.html", Steps: []report.Step{
		{Index: 0, Context: "owner/1", Branch: "start", Current: true},
		{Index: 1, Context: "review"},
	}}
	var buf bytes.Buffer
	if err := report.Render(&buf, []report.Page{page}); err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"[0] owner/1 #start (current)", "[1] review\n"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("report missing %q:\n%s", want, buf.String())
		}
	}
}

func TestRenderEmptySections(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := report.Render(&buf, []report.Page{{Path: "empty.html"}}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "form id: (none)") || !strings.Contains(buf.String(), "(none)") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestRenderJSON(t *testing.T) {
	t.Parallel()

	pages := []report.Page{report.Build(fixture, attach(t))}
	var buf bytes.Buffer
	if err := report.RenderJSON(&buf, pages); err != nil {
		t.Fatalf("render json: %v", err)
	}
	var got []report.Page
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(pages, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}
