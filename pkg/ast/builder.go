package ast

import (
	"golang.org/x/text/unicode/norm"

	"github.com/cwbudde/as3sem/pkg/pos"
)

// Builder provides convenience constructors for hand-built trees. The
// surface parser is out of scope for this module (spec.md §1 Non-goals), so
// every test and the cmd/semcheck harness builds its input trees through
// Builder instead, the same way the teacher's internal/ast/test_helpers.go
// lets semantic-pass tests construct ASTs without running the real parser.
type Builder struct {
	G *Graph
}

// NewBuilder wraps a fresh Graph in a Builder.
func NewBuilder() *Builder {
	return &Builder{G: NewGraph()}
}

// normalizeIdent canonicalizes identifier text to NFC so that two
// differently-composed but canonically-equal Unicode identifiers resolve to
// the same symbol (SPEC_FULL.md §C).
func normalizeIdent(s string) string {
	return norm.NFC.String(s)
}

func (b *Builder) leaf(kind Kind, p pos.Position) NodeID {
	return b.G.New(kind, p)
}

// Ident creates an identifier node.
func (b *Builder) Ident(name string, p pos.Position) NodeID {
	id := b.leaf(KindIdentifier, p)
	b.G.At(id).Str = normalizeIdent(name)
	return id
}

// Int creates an integer literal node.
func (b *Builder) Int(v int64, p pos.Position) NodeID {
	id := b.leaf(KindIntLiteral, p)
	b.G.At(id).Int = v
	return id
}

// Float creates a float literal node.
func (b *Builder) Float(v float64, p pos.Position) NodeID {
	id := b.leaf(KindFloatLiteral, p)
	b.G.At(id).Float = v
	return id
}

// Str creates a string literal node.
func (b *Builder) Str(v string, p pos.Position) NodeID {
	id := b.leaf(KindStringLiteral, p)
	b.G.At(id).Str = v
	return id
}

// Bool creates a boolean literal node.
func (b *Builder) Bool(v bool, p pos.Position) NodeID {
	id := b.leaf(KindBoolLiteral, p)
	if v {
		b.G.At(id).Int = 1
	}
	return id
}

// Node creates a node of an arbitrary kind with the given children already
// attached in order. Useful for structural kinds the other helpers don't
// special-case (if/while/switch/try/...).
func (b *Builder) Node(kind Kind, p pos.Position, children ...NodeID) NodeID {
	id := b.leaf(kind, p)
	for _, c := range children {
		b.G.AppendChild(id, c)
	}
	return id
}

// DirectiveList creates a directive-list node (a block/function/program
// body) from an ordered list of statements.
func (b *Builder) DirectiveList(p pos.Position, stmts ...NodeID) NodeID {
	return b.Node(KindDirectiveList, p, stmts...)
}

// Binary creates a binary-operator expression node.
func (b *Builder) Binary(op Kind, lhs, rhs NodeID, p pos.Position) NodeID {
	return b.Node(op, p, lhs, rhs)
}

// Unary creates a unary-operator expression node.
func (b *Builder) Unary(op Kind, operand NodeID, p pos.Position) NodeID {
	return b.Node(op, p, operand)
}

// Member creates `object.field` (a `member` node: child 0 object, child 1
// field identifier).
func (b *Builder) Member(object NodeID, field string, p pos.Position) NodeID {
	f := b.Ident(field, p)
	return b.Node(KindMember, p, object, f)
}

// Call creates `callee(args...)` (child 0 callee, child 1 arg list).
func (b *Builder) Call(callee NodeID, p pos.Position, args ...NodeID) NodeID {
	argList := b.Node(KindList, p, args...)
	return b.Node(KindCall, p, callee, argList)
}

// Var creates a `var` node wrapping one or more `variable` children.
func (b *Builder) Var(p pos.Position, variables ...NodeID) NodeID {
	return b.Node(KindVar, p, variables...)
}

// Variable creates a `variable` declaration node: child 0 is the optional
// type-annotation expression (Nil if untyped), child 1 is the optional
// initializer (Nil if none).
func (b *Builder) Variable(name string, typ, init NodeID, p pos.Position) NodeID {
	id := b.leaf(KindVariable, p)
	b.G.At(id).Str = normalizeIdent(name)
	b.G.AppendChild(id, typ)
	b.G.AppendChild(id, init)
	return id
}

// Parameter creates a `parameter` node: child 0 optional type, child 1
// optional default-value expression.
func (b *Builder) Parameter(name string, typ, def NodeID, p pos.Position) NodeID {
	id := b.leaf(KindParameter, p)
	b.G.At(id).Str = normalizeIdent(name)
	b.G.AppendChild(id, typ)
	b.G.AppendChild(id, def)
	return id
}

// Parameters wraps parameter nodes in a `parameters` list.
func (b *Builder) Parameters(p pos.Position, params ...NodeID) NodeID {
	return b.Node(KindParameters, p, params...)
}

// Function creates a `function` node: child 0 parameters, child 1 optional
// return-type expression, child 2 optional body (directive-list).
func (b *Builder) Function(name string, params, retType, body NodeID, p pos.Position) NodeID {
	id := b.leaf(KindFunction, p)
	b.G.At(id).Str = normalizeIdent(name)
	b.G.AppendChild(id, params)
	b.G.AppendChild(id, retType)
	b.G.AppendChild(id, body)
	return id
}

// Class creates a `class` node: child 0 optional extends, child 1 optional
// implements, child 2 body (directive-list of members).
func (b *Builder) Class(name string, extends, implements, body NodeID, p pos.Position) NodeID {
	id := b.leaf(KindClass, p)
	b.G.At(id).Str = normalizeIdent(name)
	b.G.AppendChild(id, extends)
	b.G.AppendChild(id, implements)
	b.G.AppendChild(id, body)
	return id
}

// Program creates the top-level `program` node from top-level statements.
func (b *Builder) Program(p pos.Position, stmts ...NodeID) NodeID {
	return b.Node(KindProgram, p, stmts...)
}

// Package creates a named `package` node wrapping its top-level statements,
// the named alternative to Program (spec.md §4.2's KindProgram/KindPackage
// top-level scan treats the two identically once built).
func (b *Builder) Package(name string, p pos.Position, stmts ...NodeID) NodeID {
	id := b.Node(KindPackage, p, stmts...)
	b.G.At(id).Str = normalizeIdent(name)
	return id
}

// Label creates a `label` node wrapping the labeled statement as its only
// child.
func (b *Builder) Label(name string, stmt NodeID, p pos.Position) NodeID {
	id := b.leaf(KindLabel, p)
	b.G.At(id).Str = normalizeIdent(name)
	b.G.AppendChild(id, stmt)
	return id
}

// NewExtendsClause builds an `extends` wrapper whose single child is a
// reference node pointing at target via INSTANCE rather than target
// itself: target is an independently-owned declaration that may already
// be (or later become) another node's child, and a Node has exactly one
// Parent (pkg/ast's arena invariant), so an extends/implements clause must
// hold a non-owning reference to it, not the declaration node directly.
// This also lets the reference participate in ordinary name resolution
// when target is still a forward reference at parse time (it is always
// already resolved in this module, since the surface parser is out of
// scope, but the shape matches what a real one would produce).
func NewExtendsClause(g *Graph, target NodeID, p pos.Position) NodeID {
	ext := g.New(KindExtends, p)
	ref := g.New(KindIdentifier, p)
	if target != Nil {
		g.At(ref).Str = g.At(target).Str
		_ = g.SetInstance(ref, target)
	}
	g.AppendChild(ext, ref)
	return ext
}

// NewImplementsClause builds an `implements` wrapper listing one
// non-owning reference per target interface, for the same reason
// NewExtendsClause avoids aliasing target's Parent.
func NewImplementsClause(g *Graph, targets []NodeID, p pos.Position) NodeID {
	impl := g.New(KindImplements, p)
	for _, t := range targets {
		ref := g.New(KindIdentifier, p)
		if t != Nil {
			_ = g.SetInstance(ref, t)
		}
		g.AppendChild(impl, ref)
	}
	return impl
}
