// Package special implements SpecialIdents (spec.md §4.9): identifiers of
// the form `__NAME__` are folded in place, before NameResolver ever sees
// them, into a string or integer literal describing the enclosing
// function/class/interface/package or the host's current time.
//
// Grounded on the original's __LINE__/__FILE__-style token substitution in
// original_source/as2js/lib/compiler_compile.cpp (the pass that rewrites a
// handful of magic identifiers to literals ahead of normal resolution), and
// on the teacher's narrow host-collaborator interfaces (spec.md §6's
// "Host time source") rather than reaching for a clock library: formatting
// is plain stdlib time, the only ecosystem concern here, so no third-party
// dependency applies (see DESIGN.md).
package special

import (
	"strings"
	"time"

	"github.com/cwbudde/as3sem/pkg/ast"
	"github.com/cwbudde/as3sem/pkg/diag"
)

// Clock is the host time source (spec.md §6: "now() -> unix_seconds").
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock, backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// Folder evaluates SpecialIdents against a Graph.
type Folder struct {
	G     *ast.Graph
	Clock Clock
	Diags diag.Emitter
}

// New creates a Folder. A nil clock defaults to SystemClock.
func New(g *ast.Graph, clock Clock, d diag.Emitter) *Folder {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Folder{G: g, Clock: clock, Diags: d}
}

// IsSpecial reports whether name has the `__NAME__`-style shape spec.md
// §4.9 intercepts: starts and ends with "__", length at least 5 (so "____"
// alone does not qualify — it has no name between the sigils).
func IsSpecial(name string) bool {
	return len(name) >= 5 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}

// Fold intercepts id, an identifier node, before name resolution. It
// returns false (leaving id untouched) when id's text is not one of the
// recognized special tokens, so the caller falls through to normal
// resolution — spec.md §4.9 only intercepts the closed token set below,
// not every `__...__`-shaped name.
func (f *Folder) Fold(id ast.NodeID) bool {
	name := f.G.At(id).Str
	if !IsSpecial(name) {
		return false
	}

	switch name {
	case "__FUNCTION__":
		return f.foldEnclosingName(id, ast.KindFunction, "__FUNCTION__ used outside a function")
	case "__CLASS__":
		return f.foldEnclosingName(id, ast.KindClass, "__CLASS__ used outside a class")
	case "__INTERFACE__":
		return f.foldEnclosingName(id, ast.KindInterface, "__INTERFACE__ used outside an interface")
	case "__PACKAGE__":
		return f.foldEnclosingName(id, ast.KindPackage, "__PACKAGE__ used outside a package")
	case "__NAME__":
		f.foldString(id, f.qualifiedName(id))
		return true
	case "__TIME__":
		f.foldString(id, f.Clock.Now().Format("15:04:05"))
		return true
	case "__DATE__":
		f.foldString(id, f.Clock.Now().Format("2006-01-02"))
		return true
	case "__UTCTIME__":
		f.foldString(id, f.Clock.Now().UTC().Format("15:04:05"))
		return true
	case "__UTCDATE__":
		f.foldString(id, f.Clock.Now().UTC().Format("2006-01-02"))
		return true
	case "__DATE822__":
		f.foldString(id, f.Clock.Now().Format(time.RFC822))
		return true
	case "__UNIXTIME__":
		f.G.At(id).Kind = ast.KindIntLiteral
		f.G.At(id).Int = f.Clock.Now().Unix()
		f.G.At(id).Str = ""
		return true
	default:
		return false
	}
}

// foldEnclosingName folds id to the name of its nearest ancestor of kind k,
// emitting a diagnostic instead when there is no such ancestor (spec.md
// §4.9: "__FUNCTION__ ... diagnoses if not inside a function").
func (f *Folder) foldEnclosingName(id ast.NodeID, k ast.Kind, diagText string) bool {
	enclosing := f.G.EnclosingOfKind(id, k)
	if enclosing == ast.Nil {
		f.Diags.Emit(diag.Diagnostic{
			Level: diag.Error,
			Kind:  diag.ImproperStatement,
			Pos:   f.G.At(id).Pos,
			Text:  diagText,
		})
		return false
	}
	f.foldString(id, f.G.At(enclosing).Str)
	return true
}

// qualifiedName builds the dotted package.class.function name spec.md
// §4.9's __NAME__ describes. A missing or anonymous component (no
// enclosing package/class/interface, or a function with no name) is
// omitted rather than rendered as an empty segment between two dots — an
// explicit choice for one of design notes §9's open questions, recorded in
// DESIGN.md.
func (f *Folder) qualifiedName(id ast.NodeID) string {
	var parts []string
	if pkg := f.G.EnclosingOfKind(id, ast.KindPackage); pkg != ast.Nil {
		if n := f.G.At(pkg).Str; n != "" {
			parts = append(parts, n)
		}
	}
	if class := f.G.EnclosingOfKind(id, ast.KindClass); class != ast.Nil {
		if n := f.G.At(class).Str; n != "" {
			parts = append(parts, n)
		}
	} else if iface := f.G.EnclosingOfKind(id, ast.KindInterface); iface != ast.Nil {
		if n := f.G.At(iface).Str; n != "" {
			parts = append(parts, n)
		}
	}
	if fn := f.G.EnclosingOfKind(id, ast.KindFunction); fn != ast.Nil {
		if n := f.G.At(fn).Str; n != "" {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, ".")
}

func (f *Folder) foldString(id ast.NodeID, s string) {
	f.G.At(id).Kind = ast.KindStringLiteral
	f.G.At(id).Str = s
}
