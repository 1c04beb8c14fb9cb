package typeresolve

import "github.com/cwbudde/as3sem/pkg/ast"

// Resolver assigns TYPE links. It depends only on the Graph and the
// Builtins table — name resolution of type-annotation identifiers
// (`var x: Foo`) is NameResolver's job; by the time Resolver looks at a
// `variable`/`parameter` node's type-annotation child, that child's
// INSTANCE link is already expected to point at the class/interface/enum
// it names.
type Resolver struct {
	G *ast.Graph
	B *Builtins
}

// New creates a Resolver over g using the builtins in b.
func New(g *ast.Graph, b *Builtins) *Resolver {
	return &Resolver{G: g, B: b}
}

// AssignLiteralType sets TYPE on a literal node based on its Kind (spec.md
// §2 TypeResolver: "Understands literal types").
func (r *Resolver) AssignLiteralType(id ast.NodeID) {
	var typ ast.NodeID
	switch r.G.Kind(id) {
	case ast.KindIntLiteral, ast.KindFloatLiteral:
		typ = r.B.Number
	case ast.KindStringLiteral:
		typ = r.B.String
	case ast.KindBoolLiteral:
		typ = r.B.Boolean
	case ast.KindNullLiteral:
		typ = r.B.Null
	case ast.KindUndefinedLiteral:
		typ = r.B.Undefined
	case ast.KindRegexLiteral:
		typ = r.B.RegExp
	default:
		typ = r.B.Unknown
	}
	r.G.SetType(id, typ)
}

// DeclaredType returns the type a `variable` or `parameter` node declares:
// the node's own TYPE link if it is already set; otherwise its
// type-annotation child's resolved INSTANCE, or Unknown when that
// annotation has not been resolved; Object when there is no annotation —
// matching spec.md §4.6 "when a function's type link is unset ... if
// absent, default to Object", generalized here to variables and parameters
// as well.
func (r *Resolver) DeclaredType(declNode ast.NodeID) ast.NodeID {
	if t := r.G.At(declNode).Type; t != ast.Nil {
		return t
	}
	children := r.G.Children(declNode)
	if len(children) == 0 {
		return r.B.Object
	}
	typeExpr := children[0]
	if typeExpr == ast.Nil {
		return r.B.Object
	}
	inst := r.G.At(typeExpr).Instance
	if inst == ast.Nil {
		return r.B.Unknown
	}
	return inst
}

// FunctionReturnType returns a function's declared return type: Void if
// flagged VOID, Never-as-Void if flagged NEVER (a function that never
// returns still has no meaningful value type), otherwise the resolved
// return-type expression's target: Object when there is no return-type
// expression (spec.md §4.6), Unknown when it has not been resolved.
func (r *Resolver) FunctionReturnType(funcNode ast.NodeID) ast.NodeID {
	n := r.G.At(funcNode)
	if n.Flags.Has(ast.FlagVoid) || n.Flags.Has(ast.FlagNever) {
		return r.B.Void
	}
	children := r.G.Children(funcNode)
	if len(children) < 2 || children[1] == ast.Nil {
		return r.B.Object
	}
	retExpr := children[1]
	inst := r.G.At(retExpr).Instance
	if inst == ast.Nil {
		return r.B.Unknown
	}
	return inst
}

// ---------------------------------------------------------------------
// Class-hierarchy queries shared by MemberResolver and OverloadSelector
// ---------------------------------------------------------------------

// ParentOf returns the single base class of a `class` node, or Nil if it
// has no `extends` clause (spec.md §3: "The `extends` relation among
// classes is acyclic"). The `extends` clause's child is a non-owning
// identifier reference (ast.NewExtendsClause), not the base class node
// itself, so the base is read off that reference's INSTANCE link.
func (r *Resolver) ParentOf(class ast.NodeID) ast.NodeID {
	for _, c := range r.G.Children(class) {
		if r.G.Kind(c) == ast.KindExtends {
			extChildren := r.G.Children(c)
			if len(extChildren) > 0 {
				return r.G.At(extChildren[0]).Instance
			}
		}
	}
	return ast.Nil
}

// Implements returns the interfaces an `class`/`interface` node's
// `implements` clause lists, read off each listed reference's INSTANCE
// link (ast.NewImplementsClause).
func (r *Resolver) Implements(class ast.NodeID) []ast.NodeID {
	var out []ast.NodeID
	for _, c := range r.G.Children(class) {
		if r.G.Kind(c) == ast.KindImplements {
			for _, ref := range r.G.Children(c) {
				if inst := r.G.At(ref).Instance; inst != ast.Nil {
					out = append(out, inst)
				}
			}
		}
	}
	return out
}

// IsDerivedFrom walks derived's extends chain looking for base, returning
// the chain depth (1 = direct parent) or -1 if base is not an ancestor.
// Cycle-safe via a visited set, satisfying the "find_in_extends is
// terminating for any well-formed input" testable property (spec.md §8)
// even for a malformed, cyclic one.
func (r *Resolver) IsDerivedFrom(derived, base ast.NodeID) int {
	if derived == base {
		return 0
	}
	seen := map[ast.NodeID]bool{}
	depth := 0
	cur := derived
	for {
		if seen[cur] {
			return -1 // cycle: treat as not-derived rather than looping forever
		}
		seen[cur] = true
		parent := r.ParentOf(cur)
		if parent == ast.Nil {
			return -1
		}
		depth++
		if parent == base {
			return depth
		}
		cur = parent
	}
}

// AncestorChain returns derived's extends chain, nearest first, stopping
// safely on a cycle.
func (r *Resolver) AncestorChain(derived ast.NodeID) []ast.NodeID {
	var out []ast.NodeID
	seen := map[ast.NodeID]bool{derived: true}
	cur := r.ParentOf(derived)
	for cur != ast.Nil && !seen[cur] {
		out = append(out, cur)
		seen[cur] = true
		cur = r.ParentOf(cur)
	}
	return out
}
