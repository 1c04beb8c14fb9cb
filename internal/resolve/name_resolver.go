package resolve

import "github.com/cwbudde/as3sem/pkg/ast"

// ResolveName implements spec.md §4.2: walk outward from id through every
// enclosing scope kind, resolving a value match immediately (terminating
// the walk) or accumulating function matches as overload candidates to be
// decided once the walk reaches a scope with no further candidates.
//
// argTypes is the (already TypeResolver-assigned) type of each call
// argument, used only when the eventual match turns out to be a set of
// overloaded functions; pass nil for a plain variable/class reference.
func (r *Resolver) ResolveName(id ast.NodeID, argTypes []ast.NodeID) bool {
	name := r.G.At(id).Str
	seenFuncs := map[ast.NodeID]bool{}
	var funcs []ast.NodeID

	cur := id
	for {
		parent := r.G.At(cur).Parent
		if parent == ast.Nil {
			break
		}

		switch r.G.Kind(parent) {
		case ast.KindDirectiveList:
			value, fns := r.scanDirectiveList(parent, cur, name)
			funcs = appendUnique(seenFuncs, funcs, fns)
			if value != ast.Nil {
				return r.finishValue(id, value)
			}

		case ast.KindFunction:
			if params := r.G.Child(parent, 0); params != ast.Nil {
				if p := r.findParam(params, name); p != ast.Nil {
					return r.finishValue(id, p)
				}
			}

		case ast.KindFor:
			if init := r.G.Child(parent, 0); init != ast.Nil && r.G.Kind(init) == ast.KindVar {
				for _, vc := range r.G.Children(init) {
					if r.G.Kind(vc) == ast.KindVariable && r.G.At(vc).Str == name {
						return r.finishValue(id, vc)
					}
				}
			}

		case ast.KindWith:
			if obj := r.G.Child(parent, 0); obj != ast.Nil {
				if objType := r.G.At(obj).Type; objType != ast.Nil {
					if field, _ := r.searchClassChain(objType, name); field != ast.Nil {
						r.G.At(id).Flags = r.G.At(id).Flags.Set(ast.FlagWith)
						return r.finishValue(id, field)
					}
				}
			}

		case ast.KindEnum:
			for _, c := range r.G.Children(parent) {
				if r.G.Kind(c) == ast.KindEnumerator && r.G.At(c).Str == name {
					return r.finishValue(id, c)
				}
			}

		case ast.KindCatch:
			if cp := r.G.Child(parent, 0); cp != ast.Nil && r.G.At(cp).Str == name {
				return r.finishValue(id, cp)
			}

		case ast.KindClass, ast.KindInterface:
			value, fns := r.searchClassChain(parent, name)
			funcs = appendUnique(seenFuncs, funcs, fns)
			if value != ast.Nil {
				return r.finishValue(id, value)
			}

		case ast.KindParameters:
			children := r.G.Children(parent)
			idx := -1
			for i, c := range children {
				if c == cur {
					idx = i
					break
				}
			}
			for i := idx - 1; i >= 0; i-- {
				if r.G.At(children[i]).Str == name {
					return r.finishValue(id, children[i])
				}
			}

		case ast.KindProgram, ast.KindPackage:
			value, fns := r.scanTopLevelDecls(parent, name)
			funcs = appendUnique(seenFuncs, funcs, fns)
			if value != ast.Nil {
				return r.finishValue(id, value)
			}
			if v, fns2, ok := r.searchImports(parent, name); ok {
				funcs = appendUnique(seenFuncs, funcs, fns2)
				if v != ast.Nil {
					return r.finishValue(id, v)
				}
			}
		}

		cur = parent
	}

	if v, fns, ok := r.searchNamespaces(name); ok {
		funcs = appendUnique(seenFuncs, funcs, fns)
		if v != ast.Nil {
			return r.finishValue(id, v)
		}
	}

	if len(funcs) > 0 {
		return r.resolveOverload(id, funcs, argTypes)
	}
	r.emitNotFound(id, nil)
	return false
}

// searchNamespaces consults every currently active `use namespace` entry on
// the ScopeStack (spec.md §4.2 step 6's sibling construct, §2's ScopeStack
// collaborator), innermost-opened first, resolving each the same way an
// import is resolved — a namespace names a package whose top level is
// searched for name.
func (r *Resolver) searchNamespaces(name string) (value ast.NodeID, funcs []ast.NodeID, ok bool) {
	if r.Scopes == nil || r.Packages == nil {
		return ast.Nil, nil, false
	}
	namespaces := r.Scopes.Namespaces()
	for i := len(namespaces) - 1; i >= 0; i-- {
		pkg, found := r.Packages.ResolvePackage(namespaces[i])
		if !found {
			continue
		}
		v, fns := r.scanTopLevelDecls(pkg, name)
		if v != ast.Nil || len(fns) > 0 {
			return v, fns, true
		}
	}
	return ast.Nil, nil, false
}

func (r *Resolver) findParam(params ast.NodeID, name string) ast.NodeID {
	for _, p := range r.G.Children(params) {
		if r.G.At(p).Str == name {
			return p
		}
	}
	return ast.Nil
}

// searchImports consults every `import` sibling in scopeNode via
// PackageProvider, searching each resolved package's top level for name
// (spec.md §4.2 step 11, §4.8 lazy loading). Cross-package visibility is
// narrowed to public members by checkAccess once a candidate is found, so
// no special-casing is needed here beyond "found or not".
func (r *Resolver) searchImports(scopeNode ast.NodeID, name string) (value ast.NodeID, funcs []ast.NodeID, ok bool) {
	if r.Packages == nil {
		return ast.Nil, nil, false
	}
	for _, c := range r.G.Children(scopeNode) {
		if r.G.Kind(c) != ast.KindImport {
			continue
		}
		pkg, found := r.Packages.ResolvePackage(c)
		if !found {
			continue
		}
		v, fns := r.scanTopLevelDecls(pkg, name)
		if v != ast.Nil || len(fns) > 0 {
			return v, fns, true
		}
	}
	return ast.Nil, nil, false
}

// finishValue applies access control to a single non-overloaded match and,
// if it passes, sets id's INSTANCE/TYPE links.
func (r *Resolver) finishValue(id, target ast.NodeID) bool {
	if ok, reason := r.checkAccess(id, target); !ok {
		r.emitNotFound(id, []string{reason})
		return false
	}
	if err := r.G.SetInstance(id, target); err != nil {
		r.Diags.Emit(internalErrorDiag(r, id, err))
		return false
	}
	r.G.SetType(id, r.declaredTypeOf(target))
	return true
}

// resolveOverload hands the accumulated function candidates to
// OverloadSelector (spec.md §4.4) and resolves id to the winner, if any.
func (r *Resolver) resolveOverload(id ast.NodeID, funcs []ast.NodeID, argTypes []ast.NodeID) bool {
	return r.selectAndFinish(id, funcs, argTypes)
}
