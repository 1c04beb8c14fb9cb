package check

import (
	"testing"

	"github.com/cwbudde/as3sem/pkg/ast"
	"github.com/cwbudde/as3sem/pkg/diag"
	"github.com/cwbudde/as3sem/pkg/pos"
)

func TestBreakOutsideLoopIsImproper(t *testing.T) {
	b := ast.NewBuilder()
	bag := diag.NewBag()
	c := NewStatementChecker(b.G, bag)
	p := pos.Position{}

	brk := b.Node(ast.KindBreak, p)
	b.Program(p, brk) // a break with no enclosing loop/switch at all
	c.CheckStatement(brk, ast.Nil)

	if len(bag.ByKind(diag.ImproperStatement)) != 1 {
		t.Fatalf("expected one improper-statement diagnostic, got %d", len(bag.Diagnostics))
	}
}

func TestBreakInsideLoopSetsGotoExit(t *testing.T) {
	b := ast.NewBuilder()
	bag := diag.NewBag()
	c := NewStatementChecker(b.G, bag)
	p := pos.Position{}

	brk := b.Node(ast.KindBreak, p)
	body := b.DirectiveList(p, brk)
	loop := b.Node(ast.KindWhile, p, b.Bool(true, p), body)
	b.Program(p, loop)

	c.CheckStatement(brk, ast.Nil)

	if len(bag.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics, got %+v", bag.Diagnostics)
	}
	if b.G.At(brk).GotoExit != loop {
		t.Fatalf("expected break's GOTO_EXIT to be the enclosing while, got %v", b.G.At(brk).GotoExit)
	}
}

func TestContinueSkipsEnclosingSwitchWhenUnlabeled(t *testing.T) {
	b := ast.NewBuilder()
	bag := diag.NewBag()
	c := NewStatementChecker(b.G, bag)
	p := pos.Position{}

	cont := b.Node(ast.KindContinue, p)
	caseBody := b.Node(ast.KindCase, p, b.Int(1, p))
	b.G.AppendChild(caseBody, cont)
	sw := b.Node(ast.KindSwitch, p, b.Int(1, p), b.DirectiveList(p, caseBody))
	loopBody := b.DirectiveList(p, sw)
	loop := b.Node(ast.KindFor, p, b.Ident("i", p), b.Ident("xs", p), loopBody)
	b.Program(p, loop)

	c.CheckStatement(cont, ast.Nil)

	if len(bag.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics, got %+v", bag.Diagnostics)
	}
	if b.G.At(cont).GotoExit != loop {
		t.Fatalf("expected continue to skip the switch and target the enclosing for, got %v", b.G.At(cont).GotoExit)
	}
}

func TestLabeledBreakTargetsOuterLoop(t *testing.T) {
	b := ast.NewBuilder()
	bag := diag.NewBag()
	c := NewStatementChecker(b.G, bag)
	p := pos.Position{}

	brk := b.G.New(ast.KindBreak, p)
	b.G.At(brk).Str = "outer"

	innerBody := b.DirectiveList(p, brk)
	inner := b.Node(ast.KindWhile, p, b.Bool(true, p), innerBody)

	outerBody := b.DirectiveList(p, inner)
	outer := b.Node(ast.KindFor, p, b.Ident("i", p), b.Ident("xs", p), outerBody)
	labeled := b.Label("outer", outer, p)
	b.Program(p, labeled)

	c.CheckStatement(brk, ast.Nil)

	if len(bag.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics, got %+v", bag.Diagnostics)
	}
	if b.G.At(brk).GotoExit != outer {
		t.Fatalf("expected labeled break to target the labeled outer loop, got %v", b.G.At(brk).GotoExit)
	}
}

func TestTryRequiresCatchOrFinally(t *testing.T) {
	b := ast.NewBuilder()
	bag := diag.NewBag()
	c := NewStatementChecker(b.G, bag)
	p := pos.Position{}

	tryNode := b.Node(ast.KindTry, p, b.DirectiveList(p))
	c.CheckStatement(tryNode, ast.Nil)

	if len(bag.ByKind(diag.InvalidTry)) != 1 {
		t.Fatalf("expected one invalid-try diagnostic, got %d", len(bag.Diagnostics))
	}
}

func TestSwitchBodyMustOpenWithCaseOrDefault(t *testing.T) {
	b := ast.NewBuilder()
	bag := diag.NewBag()
	c := NewStatementChecker(b.G, bag)
	p := pos.Position{}

	stray := b.Node(ast.KindBreak, p)
	body := b.DirectiveList(p, stray)
	sw := b.Node(ast.KindSwitch, p, b.Int(1, p), body)

	c.CheckStatement(sw, ast.Nil)

	if len(bag.ByKind(diag.InaccessibleStatement)) != 1 {
		t.Fatalf("expected one inaccessible-statement diagnostic, got %+v", bag.Diagnostics)
	}
}

func TestSwitchAtMostOneDefault(t *testing.T) {
	b := ast.NewBuilder()
	bag := diag.NewBag()
	c := NewStatementChecker(b.G, bag)
	p := pos.Position{}

	d1 := b.Node(ast.KindDefault, p)
	d2 := b.Node(ast.KindDefault, p)
	body := b.DirectiveList(p, d1, d2)
	sw := b.Node(ast.KindSwitch, p, b.Int(1, p), body)

	c.CheckStatement(sw, ast.Nil)

	if len(bag.ByKind(diag.Duplicates)) != 1 {
		t.Fatalf("expected one duplicates diagnostic for the second default, got %+v", bag.Diagnostics)
	}
}

func TestSwitchCaseRangeRejectedUnderEqualityOperator(t *testing.T) {
	b := ast.NewBuilder()
	bag := diag.NewBag()
	c := NewStatementChecker(b.G, bag)
	p := pos.Position{}

	rangedCase := b.Node(ast.KindCase, p, b.Int(1, p), b.Int(10, p))
	body := b.DirectiveList(p, rangedCase)
	sw := b.Node(ast.KindSwitch, p, b.Int(1, p), body)
	b.G.At(sw).Str = "==" // an explicit non-`in` operator

	c.CheckStatement(sw, ast.Nil)

	if len(bag.ByKind(diag.InvalidExpression)) != 1 {
		t.Fatalf("expected one invalid-expression diagnostic for the case range, got %+v", bag.Diagnostics)
	}
}

func TestSwitchCaseRangeAllowedUnderInOperator(t *testing.T) {
	b := ast.NewBuilder()
	bag := diag.NewBag()
	c := NewStatementChecker(b.G, bag)
	p := pos.Position{}

	rangedCase := b.Node(ast.KindCase, p, b.Int(1, p), b.Int(10, p))
	body := b.DirectiveList(p, rangedCase)
	sw := b.Node(ast.KindSwitch, p, b.Int(1, p), body)
	b.G.At(sw).Str = "in"

	c.CheckStatement(sw, ast.Nil)

	if len(bag.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics, got %+v", bag.Diagnostics)
	}
}

func TestReturnRulesByFunctionKind(t *testing.T) {
	p := pos.Position{}

	t.Run("void function rejects an expression", func(t *testing.T) {
		b := ast.NewBuilder()
		bag := diag.NewBag()
		c := NewStatementChecker(b.G, bag)

		ret := b.Node(ast.KindReturn, p, b.Int(1, p))
		fn := b.Function("run", b.Parameters(p), ast.Nil, b.DirectiveList(p, ret), p)
		b.G.At(fn).Flags = b.G.At(fn).Flags.Set(ast.FlagVoid)

		c.CheckStatement(ret, ast.Nil)
		if len(bag.ByKind(diag.InvalidReturnType)) != 1 {
			t.Fatalf("expected one invalid-return-type diagnostic, got %+v", bag.Diagnostics)
		}
	})

	t.Run("constructor rejects an expression", func(t *testing.T) {
		b := ast.NewBuilder()
		bag := diag.NewBag()
		c := NewStatementChecker(b.G, bag)

		ret := b.Node(ast.KindReturn, p, b.Int(1, p))
		fn := b.Function("Create", b.Parameters(p), ast.Nil, b.DirectiveList(p, ret), p)
		b.G.At(fn).Attrs.Set(ast.AttrConstructor, ast.True)

		c.CheckStatement(ret, ast.Nil)
		if len(bag.ByKind(diag.InvalidReturnType)) != 1 {
			t.Fatalf("expected one invalid-return-type diagnostic, got %+v", bag.Diagnostics)
		}
	})

	t.Run("non-void function requires an expression", func(t *testing.T) {
		b := ast.NewBuilder()
		bag := diag.NewBag()
		c := NewStatementChecker(b.G, bag)

		ret := b.Node(ast.KindReturn, p)
		b.Function("run", b.Parameters(p), ast.Nil, b.DirectiveList(p, ret), p)

		c.CheckStatement(ret, ast.Nil)
		if len(bag.ByKind(diag.InvalidReturnType)) != 1 {
			t.Fatalf("expected one invalid-return-type diagnostic, got %+v", bag.Diagnostics)
		}
	})

	t.Run("never function always diagnoses a return", func(t *testing.T) {
		b := ast.NewBuilder()
		bag := diag.NewBag()
		c := NewStatementChecker(b.G, bag)

		ret := b.Node(ast.KindReturn, p)
		fn := b.Function("run", b.Parameters(p), ast.Nil, b.DirectiveList(p, ret), p)
		b.G.At(fn).Flags = b.G.At(fn).Flags.Set(ast.FlagNever)

		c.CheckStatement(ret, ast.Nil)
		if len(bag.ByKind(diag.ImproperStatement)) != 1 {
			t.Fatalf("expected one improper-statement diagnostic, got %+v", bag.Diagnostics)
		}
	})

	t.Run("well-formed non-void return is fine", func(t *testing.T) {
		b := ast.NewBuilder()
		bag := diag.NewBag()
		c := NewStatementChecker(b.G, bag)

		ret := b.Node(ast.KindReturn, p, b.Int(1, p))
		b.Function("run", b.Parameters(p), ast.Nil, b.DirectiveList(p, ret), p)

		c.CheckStatement(ret, ast.Nil)
		if len(bag.Diagnostics) != 0 {
			t.Fatalf("expected no diagnostics, got %+v", bag.Diagnostics)
		}
	})
}

func TestForInBodyIsChecked(t *testing.T) {
	b := ast.NewBuilder()
	bag := diag.NewBag()
	c := NewStatementChecker(b.G, bag)
	p := pos.Position{}

	brk := b.Node(ast.KindBreak, p)
	body := b.DirectiveList(p, brk)
	forIn := b.Node(ast.KindFor, p, b.Ident("item", p), b.Ident("collection", p), body)
	b.Program(p, forIn)

	c.CheckStatement(forIn, ast.Nil)

	if len(bag.Diagnostics) != 0 {
		t.Fatalf("expected the for-in body's break to resolve cleanly, got %+v", bag.Diagnostics)
	}
	if b.G.At(brk).GotoExit != forIn {
		t.Fatalf("expected the for-in body to be checked and its break to target the for, got %v", b.G.At(brk).GotoExit)
	}
}

func TestGotoUnresolvedLabel(t *testing.T) {
	b := ast.NewBuilder()
	bag := diag.NewBag()
	c := NewStatementChecker(b.G, bag)
	p := pos.Position{}

	scope := b.Program(p)
	c.FindLabels(scope)

	gotoNode := b.G.New(ast.KindGoto, p)
	b.G.At(gotoNode).Str = "nowhere"
	c.CheckStatement(gotoNode, scope)

	if len(bag.ByKind(diag.LabelNotFound)) != 1 {
		t.Fatalf("expected one label-not-found diagnostic, got %d", len(bag.Diagnostics))
	}
}

func TestGotoResolvesForwardLabel(t *testing.T) {
	b := ast.NewBuilder()
	bag := diag.NewBag()
	c := NewStatementChecker(b.G, bag)
	p := pos.Position{}

	gotoNode := b.G.New(ast.KindGoto, p)
	b.G.At(gotoNode).Str = "done"
	label := b.Label("done", b.Node(ast.KindBreak, p), p)

	scope := b.Program(p, gotoNode, label)
	c.FindLabels(scope)
	c.CheckStatement(gotoNode, scope)

	if len(bag.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics, got %+v", bag.Diagnostics)
	}
	if b.G.At(gotoNode).GotoEnter != label {
		t.Fatalf("expected goto to resolve GOTO_ENTER to the label node")
	}
}
