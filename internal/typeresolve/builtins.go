// Package typeresolve implements TypeResolver, the component table's
// "Assigns each expression node a TYPE link. Understands literal types and
// the structural type of a function" (spec.md §2).
//
// A "type" in this design is simply the NodeID of whichever declaration
// node defines it — a class, an interface, an enum, or one of the handful
// of built-in primitive markers this package creates once per compilation
// (Object, Number, String, Boolean, Void, Null, Undefined, Unknown). This
// keeps the core to the single Node/NodeID vocabulary spec.md §3 describes,
// instead of introducing a parallel Go type-system package the way the
// teacher's internal/types does for its Pascal type model — that
// parallel hierarchy made sense there because DWScript types (records,
// sets, subranges, metaclasses, ...) have no AST node of their own, but in
// this language every type *is* a declaration already in the tree.
package typeresolve

import (
	"github.com/cwbudde/as3sem/pkg/ast"
	"github.com/cwbudde/as3sem/pkg/pos"
)

// Builtins holds the NodeIDs of the primitive types every program has
// implicitly available, analogous to the teacher's registerBuiltinExceptionTypes
// seeding TObject/Exception into the class table before analysis starts.
type Builtins struct {
	Object    ast.NodeID // the top type; ancestor-match scoring treats it specially
	Number    ast.NodeID
	String    ast.NodeID
	Boolean   ast.NodeID
	Void      ast.NodeID // function return type meaning "no value"
	Null      ast.NodeID
	Undefined ast.NodeID
	Unknown   ast.NodeID // assigned to a node whose real type could not be determined, so cascaded diagnostics don't explode (spec.md §5)
	RegExp    ast.NodeID
}

// Install creates the builtin type markers in g and returns them. Each
// marker is a `class` node (so MemberResolver and extends-chain walks treat
// it uniformly with user classes) carrying FlagDefined and FlagCompiled.
func Install(g *ast.Graph) *Builtins {
	mk := func(name string) ast.NodeID {
		id := g.New(ast.KindClass, pos.Position{})
		n := g.At(id)
		n.Str = name
		n.Flags = n.Flags.Set(ast.FlagDefined | ast.FlagCompiled)
		n.Attrs.Set(ast.AttrPublic, ast.True)
		return id
	}

	b := &Builtins{
		Object:    mk("Object"),
		Number:    mk("Number"),
		String:    mk("String"),
		Boolean:   mk("Boolean"),
		Void:      mk("void"),
		Null:      mk("null"),
		Undefined: mk("undefined"),
		Unknown:   mk("*"),
		RegExp:    mk("RegExp"),
	}

	// Number/String/Boolean/RegExp/Null/Undefined all implicitly derive
	// from Object for ancestor-match purposes; Object itself has no parent.
	for _, prim := range []ast.NodeID{b.Number, b.String, b.Boolean, b.RegExp, b.Null, b.Undefined} {
		ext := ast.NewExtendsClause(g, b.Object, pos.Position{})
		g.AppendChild(prim, ext)
	}
	return b
}

// IsPrimitive reports whether typ is one of the built-in primitive markers
// (as opposed to a user-declared class/interface/enum).
func (b *Builtins) IsPrimitive(typ ast.NodeID) bool {
	switch typ {
	case b.Object, b.Number, b.String, b.Boolean, b.Void, b.Null, b.Undefined, b.Unknown, b.RegExp:
		return true
	}
	return false
}
