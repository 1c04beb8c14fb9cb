// Package check implements StatementChecker and DeclarationChecker
// (spec.md §4.5, §4.6): structural and control-flow validation of
// statements, and attribute/uniqueness/override validation of
// declarations. Grounded on the original's Compiler::Check* family
// (original_source/as2js/lib/compiler_compile.cpp: CheckForDuplicates,
// CheckFinalFunctions, CheckUnusedVariables-adjacent statement walks) and
// the label pre-scan described under find_labels.
package check

import (
	"github.com/cwbudde/as3sem/pkg/ast"
	"github.com/cwbudde/as3sem/pkg/diag"
)

// StatementChecker validates the shape of control-flow statements and
// resolves goto targets against a prior label scan.
type StatementChecker struct {
	G     *ast.Graph
	Diags diag.Emitter
}

// NewStatementChecker creates a StatementChecker.
func NewStatementChecker(g *ast.Graph, d diag.Emitter) *StatementChecker {
	return &StatementChecker{G: g, Diags: d}
}

// FindLabels implements the find_labels pre-pass (spec.md §4.5): before any
// goto can be validated, every `label` node directly reachable within scope
// (a function/program/package body) must be registered, because a goto may
// legally jump forward to a label not yet walked by a straightforward
// top-down pass. It does not descend into nested function bodies — labels
// are local to the function that declares them.
func (c *StatementChecker) FindLabels(scope ast.NodeID) {
	if c.G.At(scope).Flags.Has(ast.FlagFoundLabels) {
		return
	}
	var walk func(n ast.NodeID)
	walk = func(n ast.NodeID) {
		if n == ast.Nil {
			return
		}
		if c.G.Kind(n) == ast.KindFunction {
			return // nested function: its own labels are scanned separately
		}
		if c.G.Kind(n) == ast.KindLabel {
			name := c.G.At(n).Str
			if !c.G.AddLabel(scope, name, n) {
				c.Diags.Emit(diag.Diagnostic{
					Level: diag.Error,
					Kind:  diag.Duplicates,
					Pos:   c.G.At(n).Pos,
					Text:  "duplicate label " + name,
				})
			}
		}
		for _, ch := range c.G.Children(n) {
			walk(ch)
		}
	}
	for _, ch := range c.G.Children(scope) {
		walk(ch)
	}
	c.G.At(scope).Flags = c.G.At(scope).Flags.Set(ast.FlagFoundLabels)
}

// CheckStatement dispatches on kind and validates statement-shape
// invariants (spec.md §4.5). labelScope is the nearest enclosing
// function/program/package whose label index FindLabels has populated.
// break/continue/goto targets are not tracked via a depth counter threaded
// through the recursion; they are found by walking the real Parent chain
// from the node itself (resolveJumpTarget, checkGoto), which is also what
// lets a labeled break/continue skip past non-matching loops to an outer
// one (spec.md §4.5).
func (c *StatementChecker) CheckStatement(n ast.NodeID, labelScope ast.NodeID) {
	if n == ast.Nil {
		return
	}
	switch c.G.Kind(n) {
	case ast.KindIf:
		c.checkChildStatement(n, 1, labelScope)
		c.checkChildStatement(n, 2, labelScope)
	case ast.KindWhile, ast.KindDo:
		c.checkChildStatement(n, 1, labelScope)
	case ast.KindFor:
		if children := c.G.Children(n); len(children) > 0 {
			c.CheckStatement(children[len(children)-1], labelScope)
		}
	case ast.KindWith:
		if obj := c.G.Child(n, 0); obj != ast.Nil && c.G.Kind(obj) == ast.KindIdentifier && c.G.At(obj).Str == "this" {
			c.emit(n, diag.InvalidExpression, "with object may not be `this`")
		}
		c.checkChildStatement(n, 1, labelScope)
	case ast.KindSwitch:
		c.checkSwitchBody(c.G.Child(n, 1), labelScope)
	case ast.KindTry:
		children := c.G.Children(n)
		if len(children) > 0 {
			c.CheckStatement(children[0], labelScope)
		}
		sawCatch, sawFinally := false, false
		for _, ch := range children[min(1, len(children)):] {
			switch c.G.Kind(ch) {
			case ast.KindCatch:
				sawCatch = true
				c.CheckStatement(ch, labelScope)
			case ast.KindFinally:
				sawFinally = true
				c.CheckStatement(ch, labelScope)
			}
		}
		if !sawCatch && !sawFinally {
			c.emit(n, diag.InvalidTry, "try must have at least one catch or a finally block")
		}
	case ast.KindCatch, ast.KindFinally, ast.KindDirectiveList, ast.KindProgram, ast.KindPackage:
		for _, ch := range c.G.Children(n) {
			c.CheckStatement(ch, labelScope)
		}
	case ast.KindBreak:
		if target := c.resolveJumpTarget(n, false); target == ast.Nil {
			c.emit(n, diag.ImproperStatement, "break outside of a loop or switch")
		} else {
			c.G.At(n).GotoExit = target
		}
	case ast.KindContinue:
		if target := c.resolveJumpTarget(n, true); target == ast.Nil {
			c.emit(n, diag.ImproperStatement, "continue outside of a loop")
		} else {
			c.G.At(n).GotoExit = target
		}
	case ast.KindThrow:
		if len(c.G.Children(n)) == 0 || c.G.Child(n, 0) == ast.Nil {
			c.emit(n, diag.InvalidExpression, "throw requires a value")
		}
	case ast.KindReturn:
		c.checkReturn(n)
	case ast.KindGoto:
		c.checkGoto(n, labelScope)
	case ast.KindLabel:
		c.CheckStatement(c.G.Child(n, 0), labelScope)
	}
}

func (c *StatementChecker) checkChildStatement(n ast.NodeID, idx int, labelScope ast.NodeID) {
	c.CheckStatement(c.G.Child(n, idx), labelScope)
}

// checkSwitchBody validates the three switch-body rules spec.md §4.5 lists:
// the directive list must open with a case/default (otherwise the leading
// statements are unreachable), at most one default is allowed, and a case
// range (two expressions) is only legal under an `in`/unknown switch
// operator. Cases and defaults sit directly among the directive list's
// children (case/default's parent is the switch's directive list, its
// grandparent the switch itself, per spec.md §4.5's "case/default" rule),
// not nested one level deeper under their own sub-block.
func (c *StatementChecker) checkSwitchBody(body ast.NodeID, labelScope ast.NodeID) {
	if body == ast.Nil {
		return
	}
	sw := c.G.At(body).Parent
	children := c.G.Children(body)
	if len(children) > 0 {
		if k := c.G.Kind(children[0]); k != ast.KindCase && k != ast.KindDefault {
			c.emit(children[0], diag.InaccessibleStatement, "switch body must begin with a case or default")
		}
	}
	sawDefault := false
	for _, ch := range children {
		switch c.G.Kind(ch) {
		case ast.KindCase:
			c.checkCaseRange(sw, ch)
		case ast.KindDefault:
			if sawDefault {
				c.emit(ch, diag.Duplicates, "switch may have at most one default")
			}
			sawDefault = true
		}
		c.CheckStatement(ch, labelScope)
	}
}

// checkCaseRange enforces spec.md §4.5's "a case may carry a range (two
// expressions) only when the switch operator is `in` or default (unknown)".
// The switch's operator is read off its Str payload (Node.Str is "used
// polymorphically by variant", spec.md §3); an empty Str is the
// default/unknown operator.
func (c *StatementChecker) checkCaseRange(sw, caseNode ast.NodeID) {
	if c.G.Child(caseNode, 1) == ast.Nil {
		return
	}
	if op := c.G.At(sw).Str; op != "" && op != "in" {
		c.emit(caseNode, diag.InvalidExpression, "case range only allowed when the switch operator is `in`")
	}
}

// checkReturn validates the four spec.md §4.5 return rules: must be inside
// a function; a constructor or VOID function's return must carry no
// expression; any other function's return must carry one; a NEVER
// function's return is always a diagnostic.
func (c *StatementChecker) checkReturn(n ast.NodeID) {
	fn := c.G.EnclosingOfKind(n, ast.KindFunction)
	if fn == ast.Nil {
		c.emit(n, diag.ImproperStatement, "return outside of a function")
		return
	}
	hasExpr := c.G.Child(n, 0) != ast.Nil
	isConstructor := c.G.At(fn).Attrs.Is(ast.AttrConstructor)
	switch {
	case c.G.At(fn).Flags.Has(ast.FlagNever):
		c.emit(n, diag.ImproperStatement, "return inside a function marked never")
	case isConstructor && hasExpr:
		c.emit(n, diag.InvalidReturnType, "constructor must not return a value")
	case c.G.At(fn).Flags.Has(ast.FlagVoid) && hasExpr:
		c.emit(n, diag.InvalidReturnType, "void function must not return a value")
	case !isConstructor && !c.G.At(fn).Flags.Has(ast.FlagVoid) && !hasExpr:
		c.emit(n, diag.InvalidReturnType, "function must return a value")
	}
}

// resolveJumpTarget walks up n's real Parent chain (not a depth counter) to
// find the loop/switch break/continue targets, stopping at a function/
// program/package boundary. continue skips over a switch unless a matching
// label names it; break always considers a switch (spec.md §4.5: "walk up
// to the nearest enclosing switch (only for break, or break/continue with
// a matching label), for, while, or do"). "statement immediately preceded
// by a label with that name" is read structurally: a label node is the
// parent of the statement it labels (ast.Builder.Label), so a labeled
// match requires the candidate's own parent to be that label.
func (c *StatementChecker) resolveJumpTarget(n ast.NodeID, forContinue bool) ast.NodeID {
	label := c.G.At(n).Str
	for p := c.G.At(n).Parent; p != ast.Nil; p = c.G.At(p).Parent {
		switch c.G.Kind(p) {
		case ast.KindFunction, ast.KindProgram, ast.KindPackage:
			return ast.Nil
		case ast.KindFor, ast.KindWhile, ast.KindDo:
			if label == "" || c.labelMatches(p, label) {
				return p
			}
		case ast.KindSwitch:
			if !forContinue || label != "" {
				if label == "" || c.labelMatches(p, label) {
					return p
				}
			}
		}
	}
	return ast.Nil
}

func (c *StatementChecker) labelMatches(n ast.NodeID, name string) bool {
	parent := c.G.At(n).Parent
	return parent != ast.Nil && c.G.Kind(parent) == ast.KindLabel && c.G.At(parent).Str == name
}

// checkGoto validates a goto target and records the GOTO_EXIT/GOTO_ENTER
// cross-edges used to unwind scopes between the jump and its label (spec.md
// §4.5, using Graph.LowestCommonAncestor as the unwind boundary).
func (c *StatementChecker) checkGoto(n ast.NodeID, labelScope ast.NodeID) {
	name := c.G.At(n).Str
	target, ok := c.G.LookupLabel(labelScope, name)
	if !ok {
		c.emit(n, diag.LabelNotFound, "label "+name+" not found")
		return
	}
	c.G.At(n).GotoExit = c.G.LowestCommonAncestor(n, target)
	c.G.At(n).GotoEnter = target
}

func (c *StatementChecker) emit(n ast.NodeID, kind diag.Kind, text string) {
	c.Diags.Emit(diag.Diagnostic{Level: diag.Error, Kind: kind, Pos: c.G.At(n).Pos, Text: text})
}
