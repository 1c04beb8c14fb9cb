package special

import (
	"testing"
	"time"

	"github.com/cwbudde/as3sem/pkg/ast"
	"github.com/cwbudde/as3sem/pkg/diag"
	"github.com/cwbudde/as3sem/pkg/pos"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestFoldFunctionNameInsidePackageLevelFunction(t *testing.T) {
	b := ast.NewBuilder()
	p := pos.Position{}
	bag := diag.NewBag()
	f := New(b.G, nil, bag)

	ref := b.Ident("__FUNCTION__", p)
	body := b.DirectiveList(p, ref)
	fn := b.Function("q", b.Parameters(p), ast.Nil, body, p)
	b.Package("p", p, fn)

	if !f.Fold(ref) {
		t.Fatalf("expected __FUNCTION__ to fold, diagnostics: %+v", bag.Diagnostics)
	}
	if b.G.Kind(ref) != ast.KindStringLiteral || b.G.At(ref).Str != "q" {
		t.Fatalf("expected ref folded to string \"q\", got kind=%v str=%q", b.G.Kind(ref), b.G.At(ref).Str)
	}
}

func TestFoldFunctionNameOutsideFunctionEmitsDiagnostic(t *testing.T) {
	b := ast.NewBuilder()
	p := pos.Position{}
	bag := diag.NewBag()
	f := New(b.G, nil, bag)

	ref := b.Ident("__FUNCTION__", p)
	b.Program(p, ref)

	if f.Fold(ref) {
		t.Fatalf("expected fold to fail outside a function")
	}
	if len(bag.ByKind(diag.ImproperStatement)) != 1 {
		t.Fatalf("expected one improper-statement diagnostic, got %d", len(bag.Diagnostics))
	}
}

func TestFoldQualifiedName(t *testing.T) {
	b := ast.NewBuilder()
	p := pos.Position{}
	bag := diag.NewBag()
	f := New(b.G, nil, bag)

	ref := b.Ident("__NAME__", p)
	body := b.DirectiveList(p, ref)
	fn := b.Function("greet", b.Parameters(p), ast.Nil, body, p)
	classBody := b.DirectiveList(p, fn)
	class := b.Class("Greeter", ast.Nil, ast.Nil, classBody, p)
	b.Package("com.example", p, class)

	if !f.Fold(ref) {
		t.Fatalf("expected __NAME__ to fold")
	}
	if got := b.G.At(ref).Str; got != "com.example.Greeter.greet" {
		t.Fatalf("expected qualified name, got %q", got)
	}
}

func TestFoldUnixTimeChangesKindToInteger(t *testing.T) {
	b := ast.NewBuilder()
	p := pos.Position{}
	bag := diag.NewBag()
	fixed := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	f := New(b.G, fixedClock{fixed}, bag)

	ref := b.Ident("__UNIXTIME__", p)
	b.Program(p, ref)

	if !f.Fold(ref) {
		t.Fatalf("expected __UNIXTIME__ to fold")
	}
	if b.G.Kind(ref) != ast.KindIntLiteral {
		t.Fatalf("expected kind to become an integer literal, got %v", b.G.Kind(ref))
	}
	if b.G.At(ref).Int != fixed.Unix() {
		t.Fatalf("expected unix seconds %d, got %d", fixed.Unix(), b.G.At(ref).Int)
	}
}

func TestFoldIgnoresOrdinaryIdentifiers(t *testing.T) {
	b := ast.NewBuilder()
	p := pos.Position{}
	bag := diag.NewBag()
	f := New(b.G, nil, bag)

	ref := b.Ident("x", p)
	if f.Fold(ref) {
		t.Fatalf("expected an ordinary identifier to be left alone")
	}
	if len(bag.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics, got %+v", bag.Diagnostics)
	}
}
