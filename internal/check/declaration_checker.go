package check

import (
	"github.com/cwbudde/as3sem/internal/typeresolve"
	"github.com/cwbudde/as3sem/pkg/ast"
	"github.com/cwbudde/as3sem/pkg/diag"
)

// DeclarationChecker validates variable/function attributes, uniqueness,
// final-override rules, and abstract-class instantiation (spec.md §4.6).
// Grounded on the original's CheckForDuplicates/CheckFinalFunctions and the
// IsConstructor legality check (SPEC_FULL.md §D.2–D.3).
type DeclarationChecker struct {
	G     *ast.Graph
	Types *typeresolve.Resolver
	Diags diag.Emitter
}

// NewDeclarationChecker creates a DeclarationChecker.
func NewDeclarationChecker(g *ast.Graph, types *typeresolve.Resolver, d diag.Emitter) *DeclarationChecker {
	return &DeclarationChecker{G: g, Types: types, Diags: d}
}

// CheckAttributes validates that an attribute combination on a declaration
// is self-consistent (spec.md §4.6): private/protected/internal/public are
// mutually exclusive, `static` and `abstract` cannot both apply to the same
// member body, and `final` only makes sense on something that can be
// overridden.
func (c *DeclarationChecker) CheckAttributes(n ast.NodeID) {
	attrs := c.G.At(n).Attrs
	exclusive := 0
	for _, a := range []ast.AttrKind{ast.AttrPublic, ast.AttrPrivate, ast.AttrProtected, ast.AttrInternal} {
		if attrs.Is(a) {
			exclusive++
		}
	}
	if exclusive > 1 {
		c.emit(n, diag.InvalidAttributes, "at most one of public/private/protected/internal may be set")
	}
	if attrs.Is(ast.AttrAbstract) && attrs.Is(ast.AttrStatic) {
		c.emit(n, diag.InvalidAttributes, "a static member cannot be abstract")
	}
	if attrs.Is(ast.AttrAbstract) && attrs.Is(ast.AttrFinal) {
		c.emit(n, diag.InvalidAttributes, "a member cannot be both abstract and final")
	}
	if attrs.Is(ast.AttrFinal) && c.G.Kind(n) != ast.KindFunction && c.G.Kind(n) != ast.KindClass {
		c.emit(n, diag.InvalidAttributes, "final only applies to functions and classes")
	}
}

// CheckUniqueFunctions detects duplicate declarations that are not
// legitimate overloads — i.e. two functions with the same name and
// identical parameter type signatures (spec.md §4.6 "Duplicates"). By
// default it only scans scope's own member list; when allLevels is true it
// also scans every ancestor class's body (SPEC_FULL.md §D.2, grounded on
// the original's CheckForDuplicates: constructors are always checked across
// the whole extends chain, regular methods only within their own level).
func (c *DeclarationChecker) CheckUniqueFunctions(scope ast.NodeID, allLevels bool) {
	type sig struct {
		name   string
		params string
	}
	seen := map[sig]ast.NodeID{}
	scopes := []ast.NodeID{scope}
	if allLevels && c.G.Kind(scope) == ast.KindClass {
		scopes = append(scopes, c.Types.AncestorChain(scope)...)
	}
	for _, s := range scopes {
		body := s
		if c.G.Kind(s) == ast.KindClass {
			body = c.G.Child(s, 2)
		}
		if body == ast.Nil {
			continue
		}
		for _, ch := range c.G.Children(body) {
			if c.G.Kind(ch) != ast.KindFunction {
				continue
			}
			key := sig{name: c.G.At(ch).Str, params: c.signatureOf(ch)}
			if _, ok := seen[key]; ok {
				c.Diags.Emit(diag.Diagnostic{
					Level: diag.Error,
					Kind:  diag.Duplicates,
					Pos:   c.G.At(ch).Pos,
					Text:  "duplicate declaration of " + key.name,
					Reasons: []string{
						"a function with the same name and parameter types was already declared",
					},
				})
				continue
			}
			seen[key] = ch
		}
	}
}

func (c *DeclarationChecker) signatureOf(fn ast.NodeID) string {
	params := c.G.Child(fn, 0)
	if params == ast.Nil {
		return ""
	}
	out := ""
	for _, p := range c.G.Children(params) {
		typeExpr := c.G.Child(p, 0)
		typ := ast.NodeID(0)
		if typeExpr != ast.Nil {
			typ = c.G.At(typeExpr).Instance
		}
		out += ":" + itoa(uint32(typ))
	}
	return out
}

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// CheckFinalOverrides walks class's extends chain and reports any member
// that attempts to override an ancestor member flagged `final` (spec.md
// §4.6, SPEC_FULL.md §D.2: checked across the *whole* chain, not just the
// immediate parent).
func (c *DeclarationChecker) CheckFinalOverrides(class ast.NodeID) {
	body := c.G.Child(class, 2)
	if body == ast.Nil {
		return
	}
	ownMembers := map[string]ast.NodeID{}
	for _, ch := range c.G.Children(body) {
		if c.G.Kind(ch) == ast.KindFunction {
			ownMembers[c.G.At(ch).Str] = ch
		}
	}
	for _, ancestor := range c.Types.AncestorChain(class) {
		abody := c.G.Child(ancestor, 2)
		if abody == ast.Nil {
			continue
		}
		for _, ch := range c.G.Children(abody) {
			if c.G.Kind(ch) != ast.KindFunction {
				continue
			}
			if !c.G.At(ch).Attrs.Is(ast.AttrFinal) {
				continue
			}
			if own, overridden := ownMembers[c.G.At(ch).Str]; overridden {
				c.Diags.Emit(diag.Diagnostic{
					Level: diag.Error,
					Kind:  diag.CannotOverload,
					Pos:   c.G.At(own).Pos,
					Text:  "cannot override final member " + c.G.At(ch).Str,
				})
			}
		}
	}
}

// CheckAbstractInstantiation reports `new`-ing an abstract class (spec.md
// §4.6).
func (c *DeclarationChecker) CheckAbstractInstantiation(newNode, class ast.NodeID) {
	if c.G.At(class).Attrs.Is(ast.AttrAbstract) {
		c.emit(newNode, diag.InvalidExpression, "cannot instantiate abstract class "+c.G.At(class).Str)
	}
}

// IsConstructorLegal validates the supplemented IsConstructor rule
// (SPEC_FULL.md §D.3, grounded on the original's IsConstructor): a
// constructor must be named identically to its enclosing class, must not
// declare a return type, and must not be `static`.
func (c *DeclarationChecker) IsConstructorLegal(fn ast.NodeID) bool {
	if !c.G.At(fn).Attrs.Is(ast.AttrConstructor) {
		return true
	}
	class := c.G.EnclosingOfKind(fn, ast.KindClass)
	ok := true
	if class == ast.Nil {
		c.emit(fn, diag.ImproperStatement, "constructor declared outside of a class")
		ok = false
	} else if c.G.At(fn).Str != c.G.At(class).Str {
		c.emit(fn, diag.InvalidAttributes, "constructor name must match its class name")
		ok = false
	}
	if c.G.Child(fn, 1) != ast.Nil {
		c.emit(fn, diag.InvalidReturnType, "constructor must not declare a return type")
		ok = false
	}
	if c.G.At(fn).Attrs.Is(ast.AttrStatic) {
		c.emit(fn, diag.InvalidAttributes, "constructor cannot be static")
		ok = false
	}
	return ok
}

func (c *DeclarationChecker) emit(n ast.NodeID, kind diag.Kind, text string) {
	c.Diags.Emit(diag.Diagnostic{Level: diag.Error, Kind: kind, Pos: c.G.At(n).Pos, Text: text})
}
