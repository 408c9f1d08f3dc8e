package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsync/pkg/dom"
)

// MustLoadPage parses an HTML fixture from disk. Testing helpers fail the test
// on error to keep engine tests concise.
func MustLoadPage(t *testing.T, path string) *dom.Document {
	t.Helper()

	doc, err := LoadPage(path)
	if err != nil {
		t.Fatalf("load page: %v", err)
	}
	return doc
}

// LoadPage returns a parsed Document without requiring testing.T, allowing
// callers to build fixtures in setup functions.
func LoadPage(path string) (*dom.Document, error) {
	if path == "" {
		return nil, errors.New("testsupport: page path is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: open page: %w", err)
	}
	defer f.Close()

	doc, err := dom.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("testsupport: parse page: %w", err)
	}
	return doc, nil
}

// MustParsePage parses inline markup.
func MustParsePage(t *testing.T, markup string) *dom.Document {
	t.Helper()

	doc, err := dom.ParseString(markup)
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	return doc
}

// ByID returns the element with the given id or fails the test.
func ByID(t *testing.T, doc *dom.Document, id string) *dom.Element {
	t.Helper()

	el := doc.Query(dom.AttrEquals("id", id))
	if el == nil {
		t.Fatalf("no element with id %q", id)
	}
	return el
}

// WriteMaybeGolden marshals value to path when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, value any) bool {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustLoadGolden reads a JSON golden file into out.
func MustLoadGolden(t *testing.T, path string, out any) {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("load golden: %v", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("unmarshal golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
