package resolve

import (
	"testing"

	"github.com/cwbudde/as3sem/pkg/ast"
	"github.com/cwbudde/as3sem/pkg/diag"
	"github.com/cwbudde/as3sem/pkg/pos"
)

func TestResolveMemberField(t *testing.T) {
	b := ast.NewBuilder()
	r, bag := newResolver(b)
	p := pos.Position{}

	field := b.Variable("name", ast.Nil, ast.Nil, p)
	classBody := b.DirectiveList(p, b.Var(p, field))
	class := b.Class("Person", ast.Nil, ast.Nil, classBody, p)
	b.Program(p, class)

	receiver := b.Ident("p", p)
	b.G.At(receiver).Type = class

	member := b.Member(receiver, "name", p)
	b.G.AppendChild(classBody, member) // anchor member somewhere in the tree (position irrelevant to the test)

	if !r.ResolveMember(member, nil, false) {
		t.Fatalf("expected member resolution to succeed, diagnostics: %+v", bag.Diagnostics)
	}
	if b.G.At(member).Instance != field {
		t.Fatalf("expected member to resolve to field %d, got %d", field, b.G.At(member).Instance)
	}
}

func TestResolveMemberInheritedMethod(t *testing.T) {
	b := ast.NewBuilder()
	r, bag := newResolver(b)
	p := pos.Position{}

	baseMethod := b.Function("greet", b.Parameters(p), ast.Nil, b.DirectiveList(p), p)
	baseBody := b.DirectiveList(p, baseMethod)
	base := b.Class("Base", ast.Nil, ast.Nil, baseBody, p)

	derivedBody := b.DirectiveList(p)
	ext := ast.NewExtendsClause(b.G, base, p)
	derived := b.Class("Derived", ast.Nil, ast.Nil, derivedBody, p)
	b.G.ReplaceChild(derived, 0, ext)
	b.Program(p, base, derived)

	receiver := b.Ident("d", p)
	b.G.At(receiver).Type = derived
	member := b.Member(receiver, "greet", p)
	b.G.AppendChild(derivedBody, member)

	if !r.ResolveMember(member, nil, false) {
		t.Fatalf("expected inherited method resolution to succeed, diagnostics: %+v", bag.Diagnostics)
	}
	if b.G.At(member).Instance != baseMethod {
		t.Fatalf("expected member to resolve to base class method %d, got %d", baseMethod, b.G.At(member).Instance)
	}
}

func TestResolveMemberGetterRewrite(t *testing.T) {
	b := ast.NewBuilder()
	r, bag := newResolver(b)
	p := pos.Position{}

	getter := b.Function("value", b.Parameters(p), ast.Nil, b.DirectiveList(p), p)
	b.G.At(getter).Flags = b.G.At(getter).Flags.Set(ast.FlagGetter)
	classBody := b.DirectiveList(p, getter)
	class := b.Class("Box", ast.Nil, ast.Nil, classBody, p)
	b.Program(p, class)

	receiver := b.Ident("box", p)
	b.G.At(receiver).Type = class
	member := b.Member(receiver, "value", p)
	b.G.AppendChild(classBody, member)

	if !r.ResolveMember(member, nil, false) {
		t.Fatalf("expected getter resolution to succeed, diagnostics: %+v", bag.Diagnostics)
	}
	if b.G.Kind(member) != ast.KindCall {
		t.Fatalf("expected the getter read to be materialized into a call, got kind %v", b.G.Kind(member))
	}
	inner := b.G.Child(member, 0)
	if b.G.Kind(inner) != ast.KindMember {
		t.Fatalf("expected the call's callee to be the underlying member, got kind %v", b.G.Kind(inner))
	}
	if b.G.At(inner).Accessor != ast.AccessorGet {
		t.Fatalf("expected the inner member to be marked as a getter rewrite, got %v", b.G.At(inner).Accessor)
	}
	if b.G.At(inner).Instance != getter {
		t.Fatalf("expected the inner member's instance to point at the getter function")
	}
	args := b.G.Child(member, 1)
	if b.G.Kind(args) != ast.KindList || len(b.G.Children(args)) != 0 {
		t.Fatalf("expected the getter call to carry an empty argument list, got %v", args)
	}
}

func TestResolveMemberSetterRewriteStampsAccessorForLaterMaterialization(t *testing.T) {
	b := ast.NewBuilder()
	r, bag := newResolver(b)
	p := pos.Position{}

	setter := b.Function("value", b.Parameters(p, b.Parameter("v", ast.Nil, ast.Nil, p)), ast.Nil, b.DirectiveList(p), p)
	b.G.At(setter).Flags = b.G.At(setter).Flags.Set(ast.FlagSetter)
	classBody := b.DirectiveList(p, setter)
	class := b.Class("Box", ast.Nil, ast.Nil, classBody, p)
	b.Program(p, class)

	receiver := b.Ident("box", p)
	b.G.At(receiver).Type = class
	member := b.Member(receiver, "value", p)
	b.G.AppendChild(classBody, member)

	if !r.ResolveMember(member, nil, true) {
		t.Fatalf("expected setter resolution to succeed, diagnostics: %+v", bag.Diagnostics)
	}
	if b.G.Kind(member) != ast.KindMember {
		t.Fatalf("expected the setter write to remain a plain member (compiler materializes the call), got kind %v", b.G.Kind(member))
	}
	if b.G.At(member).Accessor != ast.AccessorSet {
		t.Fatalf("expected member to be marked as a setter rewrite, got %v", b.G.At(member).Accessor)
	}
	if b.G.At(member).Instance != setter {
		t.Fatalf("expected member instance to point at the setter function")
	}
}

func TestResolveMemberPrivateFieldDeniedFromOutsideClass(t *testing.T) {
	b := ast.NewBuilder()
	r, bag := newResolver(b)
	p := pos.Position{}

	field := b.Variable("secret", ast.Nil, ast.Nil, p)
	b.G.At(field).Attrs.Set(ast.AttrPrivate, ast.True)
	classBody := b.DirectiveList(p, b.Var(p, field))
	class := b.Class("Vault", ast.Nil, ast.Nil, classBody, p)

	receiver := b.Ident("v", p)
	b.G.At(receiver).Type = class
	member := b.Member(receiver, "secret", p)

	// member is built at program scope, outside any class, so checkAccess's
	// fromClass lookup finds no enclosing class and access must be denied.
	b.Program(p, class, member)

	if r.ResolveMember(member, nil, false) {
		t.Fatalf("expected private field access from outside the class to be denied")
	}
	if len(bag.ByKind(diag.NotFound)) != 1 {
		t.Fatalf("expected one not-found diagnostic, got %d", len(bag.ByKind(diag.NotFound)))
	}
}

func TestCheckSuperValidityOutsideClass(t *testing.T) {
	b := ast.NewBuilder()
	r, bag := newResolver(b)
	p := pos.Position{}

	super := b.Ident("super", p)
	member := b.Member(super, "greet", p)
	b.Program(p, member)

	if r.ResolveMember(member, nil, false) {
		t.Fatalf("expected super outside a class to be rejected")
	}
	if len(bag.ByKind(diag.ImproperStatement)) != 1 {
		t.Fatalf("expected one improper-statement diagnostic, got %d", len(bag.ByKind(diag.ImproperStatement)))
	}
}
