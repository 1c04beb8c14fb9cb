// Package resolve implements NameResolver and MemberResolver (spec.md §4.2,
// §4.3) — together the largest single component, responsible for turning a
// bare identifier or a `object.field` member expression into an INSTANCE
// cross-edge pointing at the declaration it names.
//
// Both resolvers are grounded on the original's Compiler::resolve_name and
// Compiler::FindField/Compiler::ResolveMember (original_source/as2js/lib/
// compiler_compile.cpp): the outward scope-by-scope walk, the
// variable-terminates/function-accumulates rule, and the getter/setter
// rewrite are all carried over; only the representation changes (an
// explicit NodeID walk over the Graph instead of a smart-pointer tree, and
// ast.AccessorDirection instead of the original's name-mangling sigil).
package resolve

import (
	"fmt"

	"github.com/cwbudde/as3sem/internal/overload"
	"github.com/cwbudde/as3sem/internal/scope"
	"github.com/cwbudde/as3sem/internal/typeresolve"
	"github.com/cwbudde/as3sem/pkg/ast"
	"github.com/cwbudde/as3sem/pkg/diag"
)

// PackageProvider is the collaborator NameResolver uses for step 11 of
// spec.md §4.2 ("program-level fallback"): it lazily resolves and loads the
// package an `import` directive names, handing back that package's
// top-level `program`/`package` node. Implemented by internal/pkgload.
type PackageProvider interface {
	ResolvePackage(importNode ast.NodeID) (program ast.NodeID, ok bool)
}

// Resolver implements both NameResolver and MemberResolver; they are kept in
// one type because they are mutually recursive in practice (a `with` scope
// resolves unqualified names as fields of an object, and a qualified member
// expression's object sub-expression is itself resolved by NameResolver).
type Resolver struct {
	G        *ast.Graph
	Types    *typeresolve.Resolver
	Overload *overload.Selector
	Scopes   *scope.Stack
	Diags    diag.Emitter
	Packages PackageProvider // nil disables cross-package resolution
}

// New creates a Resolver. pkgs may be nil if the caller never resolves
// `import`-qualified names (e.g. single-file tests).
func New(g *ast.Graph, types *typeresolve.Resolver, ov *overload.Selector, scopes *scope.Stack, diags diag.Emitter, pkgs PackageProvider) *Resolver {
	return &Resolver{G: g, Types: types, Overload: ov, Scopes: scopes, Diags: diags, Packages: pkgs}
}

// ---------------------------------------------------------------------
// Shared declaration-matching helpers
// ---------------------------------------------------------------------

// declAt inspects one statement/member node and reports whether it declares
// `name`. value is the matched variable/class/interface/enum node; isFunc
// distinguishes a function match (which the caller accumulates as an
// overload candidate rather than resolving immediately).
func (r *Resolver) declAt(node ast.NodeID, name string) (value ast.NodeID, isFunc, ok bool) {
	switch r.G.Kind(node) {
	case ast.KindVar:
		for _, vc := range r.G.Children(node) {
			if r.G.Kind(vc) == ast.KindVariable && r.G.At(vc).Str == name {
				return vc, false, true
			}
		}
	case ast.KindFunction:
		if r.G.At(node).Str == name {
			return node, true, true
		}
	case ast.KindClass, ast.KindInterface, ast.KindEnum:
		if r.G.At(node).Str == name {
			return node, false, true
		}
	}
	return ast.Nil, false, false
}

// scanDirectiveList implements the backward/forward split of spec.md §4.2
// step 2–3: declarations lexically *before* the use site shadow by nearest
// match (let/const semantics); if none is found, declarations *after* the
// use site are considered next (hoisting); function declarations anywhere
// in the list are always accumulated as overload candidates regardless of
// position, since overloads are not positionally ordered.
func (r *Resolver) scanDirectiveList(list, from ast.NodeID, name string) (value ast.NodeID, funcs []ast.NodeID) {
	children := r.G.Children(list)
	offset := -1
	for i, c := range children {
		if c == from {
			offset = i
			break
		}
	}
	if offset < 0 {
		offset = len(children)
	}

	for i := offset - 1; i >= 0; i-- {
		if v, isFunc, ok := r.declAt(children[i], name); ok && !isFunc {
			value = v
			break
		}
	}
	if value == ast.Nil {
		for i := offset; i < len(children); i++ {
			if v, isFunc, ok := r.declAt(children[i], name); ok && !isFunc {
				value = v
				break
			}
		}
	}
	for _, c := range children {
		if _, isFunc, ok := r.declAt(c, name); ok && isFunc {
			funcs = append(funcs, c)
		}
	}
	return value, funcs
}

// scanTopLevelDecls is scanDirectiveList without the positional shadowing
// split, used for package/program scope and for searching an imported
// package's top level, where declaration order carries no meaning.
func (r *Resolver) scanTopLevelDecls(list ast.NodeID, name string) (value ast.NodeID, funcs []ast.NodeID) {
	for _, c := range r.G.Children(list) {
		v, isFunc, ok := r.declAt(c, name)
		if !ok {
			continue
		}
		if isFunc {
			funcs = append(funcs, v)
		} else if value == ast.Nil {
			value = v
		}
	}
	return value, funcs
}

// searchClassChain searches class's own member list, then each ancestor in
// its extends chain in turn (spec.md §4.2 step "class/interface" + §4.4
// inherited-overload accumulation), cycle-safe via a visited set.
func (r *Resolver) searchClassChain(class ast.NodeID, name string) (value ast.NodeID, funcs []ast.NodeID) {
	seen := map[ast.NodeID]bool{}
	cur := class
	for cur != ast.Nil && !seen[cur] {
		seen[cur] = true
		if body := r.G.Child(cur, 2); body != ast.Nil {
			v, fns := r.scanTopLevelDecls(body, name)
			funcs = append(funcs, fns...)
			if v != ast.Nil && value == ast.Nil {
				value = v
				return value, funcs
			}
		}
		cur = r.Types.ParentOf(cur)
	}
	return value, funcs
}

func appendUnique(seen map[ast.NodeID]bool, dst, src []ast.NodeID) []ast.NodeID {
	for _, f := range src {
		if !seen[f] {
			seen[f] = true
			dst = append(dst, f)
		}
	}
	return dst
}

// ---------------------------------------------------------------------
// Access control (spec.md §4.2 "Access control is enforced post-match")
// ---------------------------------------------------------------------

func (r *Resolver) checkAccess(from, target ast.NodeID) (ok bool, reason string) {
	attrs := r.G.At(target).Attrs
	switch attrs.AccessLevel() {
	case ast.AttrPrivate:
		targetClass := r.G.EnclosingOfKind(target, ast.KindClass, ast.KindInterface)
		fromClass := r.G.EnclosingOfKind(from, ast.KindClass, ast.KindInterface)
		if targetClass != ast.Nil && fromClass == targetClass {
			return true, ""
		}
		return false, "a match was found but was private"
	case ast.AttrProtected:
		targetClass := r.G.EnclosingOfKind(target, ast.KindClass, ast.KindInterface)
		fromClass := r.G.EnclosingOfKind(from, ast.KindClass, ast.KindInterface)
		if targetClass != ast.Nil && fromClass != ast.Nil &&
			(fromClass == targetClass || r.Types.IsDerivedFrom(fromClass, targetClass) >= 0) {
			return true, ""
		}
		return false, "a match was found but was protected"
	case ast.AttrInternal:
		targetPkg := r.G.EnclosingOfKind(target, ast.KindPackage)
		fromPkg := r.G.EnclosingOfKind(from, ast.KindPackage)
		if targetPkg == fromPkg {
			return true, ""
		}
		return false, "a match was found but was internal to another package"
	}
	return true, ""
}

// declaredTypeOf is the TYPE value NameResolver assigns once a name is
// resolved; Function and class-like declarations carry their own node as
// their structural type (spec.md §2: TypeResolver "understands ... the
// structural type of a function").
func (r *Resolver) declaredTypeOf(target ast.NodeID) ast.NodeID {
	switch r.G.Kind(target) {
	case ast.KindVariable, ast.KindParameter:
		return r.Types.DeclaredType(target)
	case ast.KindFunction:
		return target
	case ast.KindClass, ast.KindInterface, ast.KindEnum:
		return target
	case ast.KindEnumerator:
		if enum := r.G.EnclosingOfKind(target, ast.KindEnum); enum != ast.Nil {
			return enum
		}
		return r.Types.B.Object
	default:
		return r.Types.B.Unknown
	}
}

// emitNotFound reports a failed resolution and, uniformly across every
// not-found path (spec.md §5/§9: the source's INSTANCE-fallback policy was
// inconsistent; this core always takes the same branch), leaves INSTANCE
// unset but marks the node resolved with an UNKNOWN type so dependents can
// still be walked without treating a missing link as "not yet visited".
func (r *Resolver) emitNotFound(id ast.NodeID, reasons []string) {
	r.Diags.Emit(diag.Diagnostic{
		Level:   diag.Error,
		Kind:    diag.NotFound,
		Pos:     r.G.At(id).Pos,
		Text:    fmt.Sprintf("cannot resolve %q", r.G.At(id).Str),
		Reasons: reasons,
	})
	r.G.SetType(id, r.Types.B.Unknown)
}

func (r *Resolver) emitImproper(id ast.NodeID, text string) {
	r.Diags.Emit(diag.Diagnostic{
		Level: diag.Error,
		Kind:  diag.ImproperStatement,
		Pos:   r.G.At(id).Pos,
		Text:  text,
	})
}
