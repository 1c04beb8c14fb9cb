// Package diag is the core's only window onto the outside world for
// diagnostics (spec.md §6): "Diagnostics callback. emit(level, error_kind,
// position, message_text)." Everything else the core needs — package
// loading, time, abort — is likewise a narrow collaborator interface, kept
// here and in internal/pkgload / internal/special / internal/compiler.
package diag

import (
	"fmt"
	"strings"

	"github.com/cwbudde/as3sem/pkg/pos"
)

// Level classifies the severity of a diagnostic (spec.md §6: "level ∈
// {info, warning, error, fatal}").
type Level uint8

const (
	Info Level = iota
	Warning
	Error
	Fatal
)

func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Kind is the closed error-kind enum from spec.md §6.
type Kind string

const (
	InternalError        Kind = "internal-error"
	InvalidExpression     Kind = "invalid-expression"
	InvalidType           Kind = "invalid-type"
	InvalidAttributes     Kind = "invalid-attributes"
	InvalidOperator       Kind = "invalid-operator"
	InvalidReturnType     Kind = "invalid-return-type"
	InvalidFieldName      Kind = "invalid-field-name"
	InvalidTry            Kind = "invalid-try"
	ImproperStatement     Kind = "improper-statement"
	InaccessibleStatement Kind = "inaccessible-statement"
	LabelNotFound         Kind = "label-not-found"
	NotFound              Kind = "not-found"
	NeedConst             Kind = "need-const"
	CannotOverload        Kind = "cannot-overload"
	CannotOverwriteConst  Kind = "cannot-overwrite-const"
	Duplicates            Kind = "duplicates"
	MismatchFuncVar       Kind = "mismatch-func-var"
	InstanceExpected      Kind = "instance-expected"
	CannotMatch           Kind = "cannot-match"
	StaticError           Kind = "static"
	UnknownOperator       Kind = "unknown-operator"
	NotSupported          Kind = "not-supported"
)

// Diagnostic is one emitted message. Reasons holds the OR-ed sub-reasons
// spec.md §7 describes for a failed name resolution (e.g. "a match was
// found but was private") — rendered as indented lines under Text by
// Format, grounded on the original's PrintSearchErrors (SPEC_FULL.md §D.1).
type Diagnostic struct {
	Level   Level
	Kind    Kind
	Pos     pos.Position
	Text    string
	Reasons []string
}

// Format renders the diagnostic the way a developer-facing tool would print
// it: "level: text (kind) at pos", each Reason on its own indented line,
// grounded on the teacher's internal/errors.CompilerError.Format.
func (d Diagnostic) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s (%s) at %s", d.Level, d.Text, d.Kind, d.Pos)
	for _, r := range d.Reasons {
		sb.WriteString("\n    - ")
		sb.WriteString(r)
	}
	return sb.String()
}

func (d Diagnostic) Error() string { return d.Format() }

// Emitter is the collaborator interface spec.md §6 names: "Diagnostics
// callback. emit(level, error_kind, position, message_text)." The core
// depends only on this interface, never on a concrete sink.
type Emitter interface {
	Emit(d Diagnostic)
}

// Bag is the default in-process Emitter: it accumulates diagnostics and
// counts errors, matching spec.md §7's "error counter ... read by the host
// at the end of the pass to decide whether codegen proceeds."
type Bag struct {
	Diagnostics []Diagnostic
	errorCount  int

	// Abort is the host's abort channel (spec.md §5, §7): called once, on
	// the first Fatal diagnostic, instead of letting the core continue.
	// A nil Abort means the caller chooses to keep going (used by tests
	// that want to inspect the Fatal diagnostic rather than halt).
	Abort func(reason string)
}

// NewBag creates an empty diagnostic bag with no abort channel wired in.
func NewBag() *Bag { return &Bag{} }

// NewBagWithAbort creates a diagnostic bag that calls abort on the first
// Fatal diagnostic.
func NewBagWithAbort(abort func(reason string)) *Bag {
	return &Bag{Abort: abort}
}

// Emit records d, bumps the error counter for Error/Fatal levels, and
// invokes the abort channel on Fatal (spec.md §5: "On any fatal internal
// error ... the core calls the host's abort channel and does not attempt to
// continue").
func (b *Bag) Emit(d Diagnostic) {
	b.Diagnostics = append(b.Diagnostics, d)
	if d.Level == Error || d.Level == Fatal {
		b.errorCount++
	}
	if d.Level == Fatal && b.Abort != nil {
		b.Abort(d.Text)
	}
}

// ErrorCount returns the number of Error/Fatal diagnostics emitted so far.
func (b *Bag) ErrorCount() int { return b.errorCount }

// HasErrors reports whether any Error/Fatal diagnostic was emitted.
func (b *Bag) HasErrors() bool { return b.errorCount > 0 }

// ByKind filters accumulated diagnostics by Kind, for tests that assert a
// specific failure mode occurred without depending on message wording.
func (b *Bag) ByKind(k Kind) []Diagnostic {
	var out []Diagnostic
	for _, d := range b.Diagnostics {
		if d.Kind == k {
			out = append(out, d)
		}
	}
	return out
}
