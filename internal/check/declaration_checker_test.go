package check

import (
	"testing"

	"github.com/cwbudde/as3sem/internal/typeresolve"
	"github.com/cwbudde/as3sem/pkg/ast"
	"github.com/cwbudde/as3sem/pkg/diag"
	"github.com/cwbudde/as3sem/pkg/pos"
)

func newDeclChecker(b *ast.Builder) (*DeclarationChecker, *diag.Bag) {
	builtins := typeresolve.Install(b.G)
	types := typeresolve.New(b.G, builtins)
	bag := diag.NewBag()
	return NewDeclarationChecker(b.G, types, bag), bag
}

func TestCheckAttributesRejectsMultipleAccessLevels(t *testing.T) {
	b := ast.NewBuilder()
	c, bag := newDeclChecker(b)
	p := pos.Position{}

	fn := b.Function("f", b.Parameters(p), ast.Nil, b.DirectiveList(p), p)
	b.G.At(fn).Attrs.Set(ast.AttrPublic, ast.True)
	b.G.At(fn).Attrs.Set(ast.AttrPrivate, ast.True)

	c.CheckAttributes(fn)
	if len(bag.ByKind(diag.InvalidAttributes)) != 1 {
		t.Fatalf("expected one invalid-attributes diagnostic, got %d", len(bag.Diagnostics))
	}
}

func TestCheckUniqueFunctionsDetectsDuplicateSignature(t *testing.T) {
	b := ast.NewBuilder()
	c, bag := newDeclChecker(b)
	p := pos.Position{}

	fn1 := b.Function("f", b.Parameters(p), ast.Nil, b.DirectiveList(p), p)
	fn2 := b.Function("f", b.Parameters(p), ast.Nil, b.DirectiveList(p), p)
	scope := b.Program(p, fn1, fn2)

	c.CheckUniqueFunctions(scope, false)
	if len(bag.ByKind(diag.Duplicates)) != 1 {
		t.Fatalf("expected one duplicates diagnostic, got %d", len(bag.Diagnostics))
	}
}

func TestCheckUniqueFunctionsAllowsDistinctOverloads(t *testing.T) {
	b := ast.NewBuilder()
	c, bag := newDeclChecker(b)
	p := pos.Position{}

	numType := b.Ident("Number", p)
	b.G.At(numType).Instance = c.Types.B.Number
	param := b.Parameter("n", numType, ast.Nil, p)

	fn1 := b.Function("f", b.Parameters(p), ast.Nil, b.DirectiveList(p), p)
	fn2 := b.Function("f", b.Parameters(p, param), ast.Nil, b.DirectiveList(p), p)
	scope := b.Program(p, fn1, fn2)

	c.CheckUniqueFunctions(scope, false)
	if len(bag.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics for distinct overloads, got %+v", bag.Diagnostics)
	}
}

func TestCheckFinalOverridesRejectsOverridingFinalMethod(t *testing.T) {
	b := ast.NewBuilder()
	c, bag := newDeclChecker(b)
	p := pos.Position{}

	baseMethod := b.Function("run", b.Parameters(p), ast.Nil, b.DirectiveList(p), p)
	b.G.At(baseMethod).Attrs.Set(ast.AttrFinal, ast.True)
	baseBody := b.DirectiveList(p, baseMethod)
	base := b.Class("Base", ast.Nil, ast.Nil, baseBody, p)

	derivedMethod := b.Function("run", b.Parameters(p), ast.Nil, b.DirectiveList(p), p)
	derivedBody := b.DirectiveList(p, derivedMethod)
	derived := b.Class("Derived", ast.Nil, ast.Nil, derivedBody, p)
	ext := ast.NewExtendsClause(b.G, base, p)
	b.G.ReplaceChild(derived, 0, ext)

	b.Program(p, base, derived)
	c.CheckFinalOverrides(derived)

	if len(bag.ByKind(diag.CannotOverload)) != 1 {
		t.Fatalf("expected one cannot-overload diagnostic, got %d", len(bag.Diagnostics))
	}
}

func TestCheckUniqueFunctionsAllLevelsCatchesAncestorDuplicate(t *testing.T) {
	b := ast.NewBuilder()
	c, bag := newDeclChecker(b)
	p := pos.Position{}

	baseCtor := b.Function("Base", b.Parameters(p), ast.Nil, b.DirectiveList(p), p)
	b.G.At(baseCtor).Attrs.Set(ast.AttrConstructor, ast.True)
	baseBody := b.DirectiveList(p, baseCtor)
	base := b.Class("Base", ast.Nil, ast.Nil, baseBody, p)

	derivedCtor := b.Function("Base", b.Parameters(p), ast.Nil, b.DirectiveList(p), p)
	derivedBody := b.DirectiveList(p, derivedCtor)
	derived := b.Class("Derived", ast.Nil, ast.Nil, derivedBody, p)
	ext := ast.NewExtendsClause(b.G, base, p)
	b.G.ReplaceChild(derived, 0, ext)
	b.Program(p, base, derived)

	c.CheckUniqueFunctions(derived, false)
	if len(bag.Diagnostics) != 0 {
		t.Fatalf("expected own-level-only scan to find nothing, got %+v", bag.Diagnostics)
	}

	c.CheckUniqueFunctions(derived, true)
	if len(bag.ByKind(diag.Duplicates)) != 1 {
		t.Fatalf("expected all-levels scan to catch the ancestor duplicate, got %d", len(bag.Diagnostics))
	}
}

func TestIsConstructorLegalRequiresMatchingName(t *testing.T) {
	b := ast.NewBuilder()
	c, bag := newDeclChecker(b)
	p := pos.Position{}

	ctor := b.Function("Wrong", b.Parameters(p), ast.Nil, b.DirectiveList(p), p)
	b.G.At(ctor).Attrs.Set(ast.AttrConstructor, ast.True)
	classBody := b.DirectiveList(p, ctor)
	b.Class("Shape", ast.Nil, ast.Nil, classBody, p)

	if c.IsConstructorLegal(ctor) {
		t.Fatalf("expected constructor name mismatch to be rejected")
	}
	if len(bag.ByKind(diag.InvalidAttributes)) != 1 {
		t.Fatalf("expected one invalid-attributes diagnostic, got %d", len(bag.Diagnostics))
	}
}
