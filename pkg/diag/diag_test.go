package diag

import (
	"strings"
	"testing"

	"github.com/cwbudde/as3sem/pkg/pos"
)

func TestBagCountsOnlyErrorsAndFatal(t *testing.T) {
	b := NewBag()
	b.Emit(Diagnostic{Level: Info, Kind: NotFound, Text: "info only"})
	b.Emit(Diagnostic{Level: Warning, Kind: NotFound, Text: "warn only"})
	if b.HasErrors() {
		t.Fatalf("info/warning should not count as errors")
	}
	b.Emit(Diagnostic{Level: Error, Kind: NotFound, Text: "boom"})
	if !b.HasErrors() || b.ErrorCount() != 1 {
		t.Fatalf("ErrorCount() = %d, want 1", b.ErrorCount())
	}
}

func TestBagInvokesAbortOnFatal(t *testing.T) {
	var reason string
	b := NewBagWithAbort(func(r string) { reason = r })
	b.Emit(Diagnostic{Level: Fatal, Kind: InternalError, Text: "unreachable state"})
	if reason != "unreachable state" {
		t.Fatalf("Abort not invoked with expected reason, got %q", reason)
	}
}

func TestFormatIncludesReasons(t *testing.T) {
	d := Diagnostic{
		Level:   Error,
		Kind:    NotFound,
		Pos:     pos.Position{File: "a.as", Line: 3, Column: 5},
		Text:    "could not resolve 'x'",
		Reasons: []string{"a match was found but was private"},
	}
	out := d.Format()
	if !strings.Contains(out, "a.as:3:5") || !strings.Contains(out, "private") {
		t.Fatalf("Format() = %q, missing position or reason", out)
	}
}

func TestFormatJSON(t *testing.T) {
	diags := []Diagnostic{{Level: Warning, Kind: Duplicates, Text: "ambiguous"}}
	out, err := FormatJSON(diags)
	if err != nil {
		t.Fatalf("FormatJSON: %v", err)
	}
	if !strings.Contains(string(out), "\"ambiguous\"") {
		t.Fatalf("FormatJSON output missing text: %s", out)
	}
}
