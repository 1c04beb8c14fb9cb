package compiler

import (
	"github.com/cwbudde/as3sem/internal/special"
	"github.com/cwbudde/as3sem/pkg/ast"
	"github.com/cwbudde/as3sem/pkg/diag"
)

// ---------------------------------------------------------------------
// Pass 2: special-ident folding, name/member/operator resolution
// (spec.md §4.2, §4.3, §4.4, §4.7, §4.9; SPEC_FULL.md §D.4)
// ---------------------------------------------------------------------

// walkExpr is the generic recursive expression walk. Most node kinds fall
// through to the default case at the bottom, which simply recurses into
// every child; the cases above it intercept the kinds that need a
// resolution or rewrite step rather than plain recursion.
func (c *Compiler) walkExpr(n ast.NodeID) {
	if n == ast.Nil {
		return
	}
	switch c.G.Kind(n) {
	case ast.KindIdentifier:
		c.resolveIdentifier(n, nil)
		return
	case ast.KindMember:
		c.resolveMemberExpr(n, nil, false)
		return
	case ast.KindCall:
		c.resolveCall(n)
		return
	case ast.KindNew:
		c.resolveNew(n)
		return
	case ast.KindAssign:
		c.resolveAssign(n)
		return
	case ast.KindPostIncrement, ast.KindPostDecrement:
		operand := c.G.Child(n, 0)
		c.walkExpr(operand)
		c.Rewrite.RewritePostfix(n) // fully resolved by construction; nothing left to walk
		return
	case ast.KindIntLiteral, ast.KindFloatLiteral, ast.KindStringLiteral,
		ast.KindBoolLiteral, ast.KindNullLiteral, ast.KindUndefinedLiteral, ast.KindRegexLiteral:
		c.Types.AssignLiteralType(n)
		return
	case ast.KindExtends, ast.KindImplements:
		for _, ref := range c.G.Children(n) {
			c.resolveTypeRef(ref)
		}
		return
	case ast.KindObjectLiteral:
		c.walkObjectLiteral(n)
		return
	case ast.KindObjectLiteralMember:
		c.walkObjectLiteralMember(n)
		return
	case ast.KindVariable:
		c.walkVariable(n)
		return
	case ast.KindFunction:
		c.walkFunction(n)
		return
	}

	k := c.G.Kind(n)
	if k.IsCompoundAssignment() {
		c.resolveCompoundAssign(n)
		return
	}
	if k.IsBinaryOperator() {
		c.resolveBinary(n)
		return
	}
	if k.IsUnaryOperator() {
		c.resolveUnary(n)
		return
	}

	for _, ch := range c.G.Children(n) {
		c.walkExpr(ch)
	}
}

// resolveIdentifier folds a special ident in place (spec.md §4.9) before
// ever handing it to NameResolver, and leaves `super` alone — it is only
// ever meaningful as a member-expression receiver, special-cased inside
// MemberResolver.receiverTypeOf, never resolved as an ordinary name.
func (c *Compiler) resolveIdentifier(id ast.NodeID, argTypes []ast.NodeID) {
	name := c.G.At(id).Str
	if name == "super" {
		return
	}
	if special.IsSpecial(name) {
		if c.Special.Fold(id) {
			return
		}
	}
	c.Names.ResolveName(id, argTypes)
}

// resolveMemberExpr resolves object.field. The object sub-expression is
// walked first (unless it is the bare `super` identifier, which
// MemberResolver reads structurally rather than through ordinary name
// resolution) so its TYPE is available by the time ResolveMember runs.
func (c *Compiler) resolveMemberExpr(member ast.NodeID, argTypesForCall []ast.NodeID, forWrite bool) {
	children := c.G.Children(member)
	if len(children) < 2 {
		return
	}
	objectExpr := children[0]
	if !(c.G.Kind(objectExpr) == ast.KindIdentifier && c.G.At(objectExpr).Str == "super") {
		c.walkExpr(objectExpr)
	}
	c.Names.ResolveMember(member, argTypesForCall, forWrite)
}

// resolveTypeRef resolves a bare identifier naming a class/interface/enum
// (a variable's type annotation, a function's return type, or an extends/
// implements reference). Nodes already carrying an INSTANCE — builtins
// wired directly by typeresolve.Install's extends-Object clauses — are left
// untouched rather than re-resolved.
func (c *Compiler) resolveTypeRef(ref ast.NodeID) {
	if ref == ast.Nil || c.G.Kind(ref) != ast.KindIdentifier {
		return
	}
	if c.G.At(ref).Instance != ast.Nil {
		return
	}
	c.Names.ResolveName(ref, nil)
}

func (c *Compiler) resolveCall(n ast.NodeID) {
	callee := c.G.Child(n, 0)
	argList := c.G.Child(n, 1)
	var args []ast.NodeID
	if argList != ast.Nil {
		args = c.G.Children(argList)
	}
	for _, a := range args {
		c.walkExpr(a)
	}
	argTypes := make([]ast.NodeID, len(args))
	for i, a := range args {
		argTypes[i] = c.G.At(a).Type
	}

	switch c.G.Kind(callee) {
	case ast.KindIdentifier:
		c.resolveIdentifier(callee, argTypes)
	case ast.KindMember:
		c.resolveMemberExpr(callee, argTypes, false)
	default:
		c.walkExpr(callee)
	}

	calleeType := c.G.At(callee).Type
	if c.G.Kind(calleeType) == ast.KindFunction {
		c.G.SetType(n, c.Types.FunctionReturnType(calleeType))
	} else {
		c.G.SetType(n, c.Types.B.Unknown)
	}
}

// resolveNew resolves the instantiated type, checks abstract-class
// instantiation (spec.md §4.6), and walks constructor arguments.
func (c *Compiler) resolveNew(n ast.NodeID) {
	typeExpr := c.G.Child(n, 0)
	argList := c.G.Child(n, 1)

	if c.G.Kind(typeExpr) == ast.KindIdentifier {
		c.resolveIdentifier(typeExpr, nil)
	} else {
		c.walkExpr(typeExpr)
	}
	if argList != ast.Nil {
		for _, a := range c.G.Children(argList) {
			c.walkExpr(a)
		}
	}

	class := c.G.At(typeExpr).Instance
	if class != ast.Nil && c.G.Kind(class) == ast.KindClass {
		c.Decls.CheckAbstractInstantiation(n, class)
	}
	c.G.SetType(n, c.G.At(typeExpr).Type)
}

// resolveAssign handles a plain `=`: the right-hand side is always an
// ordinary expression, the left-hand side is resolved as a write target,
// synthesizing an implicit local when it names nothing yet (spec.md §4.7
// "assignment to an undeclared identifier synthesizes a local var").
func (c *Compiler) resolveAssign(n ast.NodeID) {
	lhs, rhs := c.G.Child(n, 0), c.G.Child(n, 1)
	c.walkExpr(rhs)
	c.resolveAssignTarget(lhs)
	if c.G.Kind(lhs) == ast.KindMember && c.G.At(lhs).Accessor == ast.AccessorSet {
		c.materializeSetterCall(n, lhs, rhs)
		return
	}
	c.G.SetType(n, c.G.At(lhs).Type)
}

// materializeSetterCall turns assign(member, rhs) into the call a setter
// rewrite denotes (spec.md §1, §6): lhs already is member(obj, identifier)
// with its accessor Instance/Type stamped by ResolveMember, so assign itself
// just needs to become call(lhs, [rhs]) in place.
func (c *Compiler) materializeSetterCall(n, lhs, rhs ast.NodeID) {
	p := c.G.At(n).Pos
	args := c.G.New(ast.KindList, p)
	c.G.AppendChild(args, rhs)

	c.G.At(n).Children = nil
	c.G.At(n).Kind = ast.KindCall
	c.G.AppendChild(n, lhs)
	c.G.AppendChild(n, args)
	c.G.SetType(n, c.G.At(lhs).Type)
}

func (c *Compiler) resolveAssignTarget(lhs ast.NodeID) {
	switch c.G.Kind(lhs) {
	case ast.KindIdentifier:
		name := c.G.At(lhs).Str
		if special.IsSpecial(name) {
			c.Special.Fold(lhs)
			return
		}
		if c.trialResolveName(lhs) {
			return
		}
		if scope := c.enclosingInsertionScope(lhs); scope != ast.Nil {
			c.Rewrite.SynthesizeImplicitVar(scope, lhs)
		}
	case ast.KindMember:
		c.resolveMemberExpr(lhs, nil, true)
	default:
		c.walkExpr(lhs)
	}
}

// trialResolveName attempts ResolveName without permanently recording a
// not-found diagnostic, by swapping in a scratch Bag for the duration
// (spec.md §4.7: only a genuine resolution failure should synthesize a
// variable, not every assignment target). Any UNKNOWN-type fallback the
// attempt leaves behind is undone on failure so SynthesizeImplicitVar
// starts from an unresolved node.
func (c *Compiler) trialResolveName(id ast.NodeID) bool {
	real := c.Names.Diags
	c.Names.Diags = diag.NewBag()
	ok := c.Names.ResolveName(id, nil)
	c.Names.Diags = real
	if !ok {
		c.G.At(id).Type = ast.Nil
	}
	return ok
}

// enclosingInsertionScope finds the nearest node whose Children() list is
// itself an ordered statement list a new `var` can be inserted at the
// front of: a directive-list, or a program/package (whose own children
// list doubles as its top-level statement list).
func (c *Compiler) enclosingInsertionScope(id ast.NodeID) ast.NodeID {
	for p := c.G.At(id).Parent; p != ast.Nil; p = c.G.At(p).Parent {
		switch c.G.Kind(p) {
		case ast.KindDirectiveList, ast.KindProgram, ast.KindPackage:
			return p
		}
	}
	return ast.Nil
}

func (c *Compiler) resolveBinary(n ast.NodeID) {
	lhs, rhs := c.G.Child(n, 0), c.G.Child(n, 1)
	c.walkExpr(lhs)
	c.walkExpr(rhs)
	if !c.Rewrite.RewriteBinary(n) {
		c.G.SetType(n, c.intrinsicBinaryType(n, lhs))
	}
}

func (c *Compiler) intrinsicBinaryType(n, lhs ast.NodeID) ast.NodeID {
	switch c.G.Kind(n) {
	case ast.KindEqual, ast.KindNotEqual, ast.KindStrictEqual, ast.KindStrictNotEqual,
		ast.KindLess, ast.KindLessEqual, ast.KindGreater, ast.KindGreaterEqual,
		ast.KindLogicalAnd, ast.KindLogicalOr, ast.KindInstanceOf, ast.KindIn:
		return c.Types.B.Boolean
	default:
		return c.G.At(lhs).Type
	}
}

func (c *Compiler) resolveUnary(n ast.NodeID) {
	operand := c.G.Child(n, 0)
	c.walkExpr(operand)
	if !c.Rewrite.RewriteUnary(n) {
		c.G.SetType(n, c.intrinsicUnaryType(n, operand))
	}
}

func (c *Compiler) intrinsicUnaryType(n, operand ast.NodeID) ast.NodeID {
	switch c.G.Kind(n) {
	case ast.KindLogicalNot, ast.KindDelete:
		return c.Types.B.Boolean
	case ast.KindTypeOf:
		return c.Types.B.String
	default:
		return c.G.At(operand).Type
	}
}

// resolveCompoundAssign handles `+=` and its siblings. Unlike plain `=`,
// an undeclared left-hand side is a genuine not-found — only `=` on an
// undeclared name synthesizes a variable (spec.md §4.7) — so the target is
// walked like any other read/write expression, not through the trial-
// resolution fallback.
func (c *Compiler) resolveCompoundAssign(n ast.NodeID) {
	lhs, rhs := c.G.Child(n, 0), c.G.Child(n, 1)
	c.walkExpr(lhs)
	c.walkExpr(rhs)
	c.G.SetType(n, c.G.At(lhs).Type)
}

// walkVariable resolves a variable's type annotation and initializer, and
// marks it COMPILED once both have been visited (spec.md §4.6).
func (c *Compiler) walkVariable(n ast.NodeID) {
	typeExpr, init := c.G.Child(n, 0), c.G.Child(n, 1)
	if typeExpr != ast.Nil {
		c.resolveTypeRef(typeExpr)
	}
	if init != ast.Nil {
		c.walkExpr(init)
	}
	c.G.At(n).Flags = c.G.At(n).Flags.Set(ast.FlagCompiled)
}

// walkFunction resolves parameter type annotations and default values, the
// return-type annotation, and the body.
func (c *Compiler) walkFunction(n ast.NodeID) {
	params, retType, body := c.G.Child(n, 0), c.G.Child(n, 1), c.G.Child(n, 2)
	if params != ast.Nil {
		for _, p := range c.G.Children(params) {
			if typeExpr := c.G.Child(p, 0); typeExpr != ast.Nil {
				c.resolveTypeRef(typeExpr)
			}
			if def := c.G.Child(p, 1); def != ast.Nil {
				c.walkExpr(def)
			}
		}
	}
	if retType != ast.Nil {
		c.resolveTypeRef(retType)
	}
	if body != ast.Nil {
		c.walkExpr(body)
	}
}

// walkObjectLiteral resolves each member in turn and gives the literal
// itself the generic Object type (SPEC_FULL.md §D.4, a feature the
// distillation dropped but original_source/ implements as a structural-type
// literal whose members are independently type-checked against whatever
// context expects the literal — out of scope here beyond per-member
// resolution).
func (c *Compiler) walkObjectLiteral(n ast.NodeID) {
	for _, m := range c.G.Children(n) {
		c.walkExpr(m)
	}
	c.G.SetType(n, c.Types.B.Object)
}

// walkObjectLiteralMember resolves a `key: value` pair's value expression;
// the key is a plain name, not a reference to resolve.
func (c *Compiler) walkObjectLiteralMember(n ast.NodeID) {
	value := c.G.Child(n, 1)
	if value == ast.Nil {
		return
	}
	c.walkExpr(value)
	c.G.SetType(n, c.G.At(value).Type)
}
