// Package compiler implements the Core (spec.md §2's component table plus
// design notes §9's "explicit compilation context"): it wires NameResolver,
// MemberResolver, TypeResolver, OverloadSelector, StatementChecker,
// DeclarationChecker, OperatorRewriter, PackageLoader, and SpecialIdents
// into the single recursive pass spec.md §2 describes as "Parser -> AST ->
// DeclarationChecker -> NameResolver/MemberResolver (mutually recursive
// with TypeResolver, OverloadSelector, OperatorRewriter) -> StatementChecker
// -> resolved AST -> Optimizer".
//
// A Compiler value plays the role design notes §9 assigns to "the static
// f_time / global imports": rather than file-level globals, every
// collaborator the pass needs (the package cache owned by internal/pkgload,
// the error counter owned by the diag.Bag passed in) is a field
// reachable from one Compiler, constructed once at the entry point and
// dropped with it at end of pass (spec.md §5 "a per-compilation cache ...
// is owned by the core instance and dropped at the end of the pass").
package compiler

import (
	"github.com/cwbudde/as3sem/internal/check"
	"github.com/cwbudde/as3sem/internal/overload"
	"github.com/cwbudde/as3sem/internal/pkgload"
	"github.com/cwbudde/as3sem/internal/resolve"
	"github.com/cwbudde/as3sem/internal/rewrite"
	"github.com/cwbudde/as3sem/internal/scope"
	"github.com/cwbudde/as3sem/internal/special"
	"github.com/cwbudde/as3sem/internal/typeresolve"
	"github.com/cwbudde/as3sem/pkg/ast"
	"github.com/cwbudde/as3sem/pkg/diag"
)

// Compiler runs the pass described in spec.md §2 over one program/package
// tree. All fields are collaborators used directly by tests and by
// cmd/semcheck's harness to inspect intermediate state; nothing here is
// hidden behind an opaque handle, matching the teacher's preference for
// small composable structs over a single god-object with private state.
type Compiler struct {
	G        *ast.Graph
	B        *ast.Builder
	Types    *typeresolve.Resolver
	Decls    *check.DeclarationChecker
	Stmts    *check.StatementChecker
	Names    *resolve.Resolver
	Overload *overload.Selector
	Rewrite  *rewrite.Rewriter
	Special  *special.Folder
	Scopes   *scope.Stack
	Packages *pkgload.Loader // nil disables lazy/eager package loading
	Diags    diag.Emitter
}

// New wires every collaborator together over a single Graph. builtins must
// have been installed on g already (typeresolve.Install); packages may be
// nil for single-tree tests that never cross a package boundary; clock may
// be nil to default to the system clock.
func New(g *ast.Graph, b *ast.Builder, builtins *typeresolve.Builtins, packages *pkgload.Loader, clock special.Clock, d diag.Emitter) *Compiler {
	types := typeresolve.New(g, builtins)
	ov := overload.New(g, types)
	scopes := scope.New()

	// A nil *pkgload.Loader must reach resolve.New as a nil interface, not
	// an interface wrapping a nil pointer, or Resolver's own `r.Packages ==
	// nil` checks would never see it as absent.
	var pp resolve.PackageProvider
	if packages != nil {
		pp = packages
	}

	return &Compiler{
		G:        g,
		B:        b,
		Types:    types,
		Decls:    check.NewDeclarationChecker(g, types, d),
		Stmts:    check.NewStatementChecker(g, d),
		Names:    resolve.New(g, types, ov, scopes, d, pp),
		Overload: ov,
		Rewrite:  rewrite.New(g, b, types, ov, d),
		Special:  special.New(g, clock, d),
		Scopes:   scopes,
		Packages: packages,
		Diags:    d,
	}
}

// Compile runs the whole pass over root, a `program` or `package` node:
// eager package preload, then declaration/control-flow validation, then
// name/member/operator resolution. The two validation passes are kept
// separate recursive walks rather than one combined switch, mirroring how
// spec.md §2 lists DeclarationChecker/StatementChecker and
// NameResolver/MemberResolver/OperatorRewriter as cooperating but distinct
// responsibilities.
func (c *Compiler) Compile(root ast.NodeID) {
	if c.Packages != nil {
		c.Packages.Preload(root)
	}
	c.checkDeclarationsAndControlFlow(root)
	c.walkExpr(root)
}

// ---------------------------------------------------------------------
// Pass 1: declarations and control flow (spec.md §4.5, §4.6)
// ---------------------------------------------------------------------

func (c *Compiler) checkDeclarationsAndControlFlow(n ast.NodeID) {
	if n == ast.Nil {
		return
	}
	switch c.G.Kind(n) {
	case ast.KindFunction:
		c.checkFunction(n)
		return
	case ast.KindClass, ast.KindInterface:
		c.checkClassLike(n)
		return
	case ast.KindProgram, ast.KindPackage:
		c.checkTopLevel(n)
		return
	case ast.KindVar:
		for _, v := range c.G.Children(n) {
			c.registerVariable(v)
		}
	}
	for _, ch := range c.G.Children(n) {
		c.checkDeclarationsAndControlFlow(ch)
	}
}

// checkClassLike validates a class/interface's own attributes and member
// uniqueness (spec.md §4.6 "within a single scope"), final-override
// legality for classes, then recurses into each member declaration.
// extends/implements children are identifier references (ast.
// NewExtendsClause/NewImplementsClause), not declarations, so they are
// deliberately not recursed into here — TypeResolver's ParentOf/Implements
// read them directly, and walkExpr resolves the references themselves.
func (c *Compiler) checkClassLike(n ast.NodeID) {
	c.Decls.CheckAttributes(n)
	c.Decls.CheckUniqueFunctions(n, false)
	if c.G.Kind(n) == ast.KindClass {
		c.Decls.CheckFinalOverrides(n)
	}
	body := c.G.Child(n, 2)
	if body == ast.Nil {
		return
	}
	for _, m := range c.G.Children(body) {
		c.checkDeclarationsAndControlFlow(m)
	}
}

// checkFunction validates a function's attributes and, for a constructor,
// its name/return-type/static legality plus duplicate-constructor scanning
// across the whole extends chain (SPEC_FULL.md §D.2: "constructors always
// check all levels; regular methods check only the current level"). It
// then runs the label pre-scan and the single top-level CheckStatement call
// spec.md §4.5 requires per function body, before recursing for nested
// declarations.
func (c *Compiler) checkFunction(fn ast.NodeID) {
	c.Decls.CheckAttributes(fn)
	if c.G.At(fn).Attrs.Is(ast.AttrConstructor) {
		c.Decls.IsConstructorLegal(fn)
		if class := c.G.EnclosingOfKind(fn, ast.KindClass); class != ast.Nil {
			c.Decls.CheckUniqueFunctions(class, true)
		}
	}
	body := c.G.Child(fn, 2)
	if body == ast.Nil {
		return
	}
	c.Stmts.FindLabels(fn)
	c.Stmts.CheckStatement(body, fn)
	c.checkDeclarationsAndControlFlow(body)
}

// checkTopLevel runs the label scan, the top-level CheckStatement call, and
// free-function uniqueness checking (spec.md §4.6 "the enclosing
// directive-list for free functions") before recursing into every
// top-level declaration.
func (c *Compiler) checkTopLevel(n ast.NodeID) {
	c.Stmts.FindLabels(n)
	c.Stmts.CheckStatement(n, n)
	c.Decls.CheckUniqueFunctions(n, false)
	for _, ch := range c.G.Children(n) {
		c.checkDeclarationsAndControlFlow(ch)
	}
}

// registerVariable adds v to its nearest enclosing scope's variable index
// and marks it LOCAL (inside a function) or MEMBER (inside a class or
// interface), else it is left as a package/program-level global (spec.md
// §4.6 "add the variable to the nearest enclosing directive-list's
// variable list; also mark it LOCAL ... MEMBER ... else global").
func (c *Compiler) registerVariable(v ast.NodeID) {
	scope := c.G.EnclosingOfKind(v, ast.KindDirectiveList, ast.KindClass, ast.KindInterface, ast.KindProgram, ast.KindPackage)
	if scope == ast.Nil {
		return
	}
	c.G.AddVariable(scope, v)
	switch {
	case c.G.EnclosingOfKind(v, ast.KindFunction) != ast.Nil:
		c.G.At(v).Flags = c.G.At(v).Flags.Set(ast.FlagLocal)
	case c.G.Kind(scope) == ast.KindClass || c.G.Kind(scope) == ast.KindInterface:
		c.G.At(v).Flags = c.G.At(v).Flags.Set(ast.FlagMember)
	}
}
