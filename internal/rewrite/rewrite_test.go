package rewrite

import (
	"testing"

	"github.com/cwbudde/as3sem/internal/overload"
	"github.com/cwbudde/as3sem/internal/typeresolve"
	"github.com/cwbudde/as3sem/pkg/ast"
	"github.com/cwbudde/as3sem/pkg/diag"
	"github.com/cwbudde/as3sem/pkg/pos"
)

func newRewriter(b *ast.Builder) (*Rewriter, *diag.Bag) {
	builtins := typeresolve.Install(b.G)
	types := typeresolve.New(b.G, builtins)
	ov := overload.New(b.G, types)
	bag := diag.NewBag()
	return New(b.G, b, types, ov, bag), bag
}

func TestRewriteBinaryLeavesPrimitivesAlone(t *testing.T) {
	b := ast.NewBuilder()
	r, bag := newRewriter(b)
	p := pos.Position{}

	lhs, rhs := b.Int(1, p), b.Int(2, p)
	r.G.SetType(lhs, r.Types.B.Number)
	r.G.SetType(rhs, r.Types.B.Number)
	add := b.Binary(ast.KindAdd, lhs, rhs, p)

	if r.RewriteBinary(add) {
		t.Fatalf("expected no rewrite for primitive operands")
	}
	if len(bag.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics, got %+v", bag.Diagnostics)
	}
}

func TestRewriteBinaryToOperatorMethodCall(t *testing.T) {
	b := ast.NewBuilder()
	r, bag := newRewriter(b)
	p := pos.Position{}

	opMethod := b.Function("+", b.Parameters(p, b.Parameter("other", ast.Nil, ast.Nil, p)), ast.Nil, b.DirectiveList(p), p)
	b.G.At(opMethod).Flags = b.G.At(opMethod).Flags.Set(ast.FlagOperator)
	classBody := b.DirectiveList(p, opMethod)
	vector := b.Class("Vector", ast.Nil, ast.Nil, classBody, p)
	b.Program(p, vector)

	lhs := b.Ident("v", p)
	r.G.SetType(lhs, vector)
	rhs := b.Ident("w", p)
	r.G.SetType(rhs, vector)
	add := b.Binary(ast.KindAdd, lhs, rhs, p)
	program2 := b.Node(ast.KindReturn, p, add)
	_ = program2

	if !r.RewriteBinary(add) {
		t.Fatalf("expected rewrite to succeed, diagnostics: %+v", bag.Diagnostics)
	}
	if r.G.Kind(add) != ast.KindCall {
		t.Fatalf("expected node to be rewritten into a call, still %v", r.G.Kind(add))
	}
}

func TestRewritePostfixProducesSequenceYieldingOriginalValue(t *testing.T) {
	b := ast.NewBuilder()
	r, _ := newRewriter(b)
	p := pos.Position{}

	v := b.Variable("x", ast.Nil, ast.Nil, p)
	x := b.Ident("x", p)
	_ = r.G.SetInstance(x, v)
	r.G.SetType(x, r.Types.B.Number)

	post := b.Unary(ast.KindPostIncrement, x, p)
	seq := r.RewritePostfix(post)
	if seq == ast.Nil {
		t.Fatalf("expected a synthesized sequence node")
	}
	children := r.G.Children(seq)
	if len(children) != 3 {
		t.Fatalf("expected a 3-element sequence, got %d", len(children))
	}
	if r.G.Kind(children[0]) != ast.KindVar {
		t.Fatalf("expected first element to be the temp var declaration")
	}
}

func TestSynthesizeImplicitVar(t *testing.T) {
	b := ast.NewBuilder()
	r, _ := newRewriter(b)
	p := pos.Position{}

	scope := b.DirectiveList(p)
	id := b.Ident("newVar", p)

	v := r.SynthesizeImplicitVar(scope, id)
	if v == ast.Nil {
		t.Fatalf("expected a synthesized variable")
	}
	if r.G.At(id).Instance != v {
		t.Fatalf("expected id to resolve to the synthesized variable")
	}
	if len(r.G.Children(scope)) != 1 {
		t.Fatalf("expected the synthesized var to be inserted into scope")
	}
}
