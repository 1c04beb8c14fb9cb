// Package overload implements OverloadSelector (spec.md §4.4): given a
// candidate set of functions and a parameter list, score each candidate and
// pick a unique best match.
//
// The scoring rules and the ambiguity/derived-class tie-break are grounded
// on the teacher's internal/semantic/overload_resolution.go
// (SignatureDistance, ResolveOverload): lower score is better, an exact
// type match beats an ancestor match, and a top-type (Object) match is
// scored as "worst acceptable" rather than rejected outright. This package
// generalizes that distance metric to per-argument score *vectors*
// (spec.md §4.4 step 6 compares vectors component-wise) instead of a single
// summed distance, because spec.md's tie-break rule needs to know whether
// one candidate is strictly better on every argument, not just better on
// average.
package overload

import (
	"github.com/cwbudde/as3sem/internal/typeresolve"
	"github.com/cwbudde/as3sem/pkg/ast"
)

// Reject is the score for an incompatible argument/parameter pair (spec.md
// §4.4 step 3: "mismatch -> 0").
const Reject = 0

// TopTypeScore is the score given when either the argument's or the
// parameter's type is the top type (Object): "one side is Object (top type) -> INT_MAX/2 (worst
// acceptable match)" (spec.md §4.4 step 3). Kept far below int's overflow
// range but still worse than any realistic ancestor-chain depth.
const TopTypeScore = 1 << 16

// Candidate is one overload candidate: the `function` node plus its
// `parameters` node (cached so callers don't re-derive it).
type Candidate struct {
	Func   ast.NodeID
	Params ast.NodeID // the function's `parameters` node, or Nil if NOPARAMS
}

// Selector scores and selects among candidates.
type Selector struct {
	G     *ast.Graph
	Types *typeresolve.Resolver
}

// New creates a Selector.
func New(g *ast.Graph, types *typeresolve.Resolver) *Selector {
	return &Selector{G: g, Types: types}
}

// MatchType scores how well an argument of type argType matches a formal
// parameter declared as paramType (spec.md §4.4 step 3):
//
//	identical types              -> 1
//	one side is Object           -> TopTypeScore
//	ancestor match (extends)     -> 1 + chain depth
//	mismatch                     -> Reject (0)
func (s *Selector) MatchType(argType, paramType ast.NodeID) int {
	if argType == paramType {
		return 1
	}
	if paramType == s.Types.B.Object || argType == s.Types.B.Object || argType == s.Types.B.Unknown {
		return TopTypeScore
	}
	if depth := s.Types.IsDerivedFrom(argType, paramType); depth >= 0 {
		return 1 + depth
	}
	// Interfaces: a class matching one of the interfaces the param type
	// names is scored the same as an ancestor match one level up from the
	// class itself (spec.md doesn't name a distinct score for interface
	// conformance, so this folds it into the ancestor-match family).
	for _, iface := range s.Types.Implements(argType) {
		if iface == paramType {
			return 2
		}
		if depth := s.Types.IsDerivedFrom(iface, paramType); depth >= 0 {
			return 2 + depth
		}
	}
	return Reject
}

// score is the per-argument score vector for one candidate against one
// argument list, or nil if the candidate is outright incompatible (wrong
// arity, or any Reject).
func (s *Selector) score(c Candidate, argTypes []ast.NodeID) []int {
	params := s.G.Children(c.Params)
	n := len(params)
	isRest := n > 0 && s.G.At(params[n-1]).Flags.Has(ast.FlagRest)

	if len(argTypes) > n && !isRest {
		return nil
	}
	minRequired := 0
	for _, p := range params {
		pn := s.G.At(p)
		if pn.Flags.Has(ast.FlagRest) {
			break
		}
		hasDefault := len(s.G.Children(p)) > 1 && s.G.Children(p)[1] != ast.Nil
		if !hasDefault {
			minRequired++
		}
	}
	if len(argTypes) < minRequired {
		return nil
	}

	vec := make([]int, len(argTypes))
	for i, argType := range argTypes {
		var paramType ast.NodeID
		switch {
		case isRest && i >= n-1:
			pn := s.G.At(params[n-1])
			pc := s.G.Children(params[n-1])
			if len(pc) > 0 && pc[0] != ast.Nil {
				paramType = s.G.At(pc[0]).Instance
			}
			_ = pn
		case i < n:
			pc := s.G.Children(params[i])
			if len(pc) > 0 && pc[0] != ast.Nil {
				paramType = s.G.At(pc[0]).Instance
			}
		}
		if paramType == ast.Nil {
			paramType = s.Types.B.Object
		}
		m := s.MatchType(argType, paramType)
		if m == Reject {
			return nil
		}
		vec[i] = m
	}
	return vec
}

// Result is the outcome of SelectBestFunc.
type Result struct {
	Winner     ast.NodeID // Nil if NoMatch or Ambiguous
	Ambiguous  []ast.NodeID
	NoMatch    bool
	Ambiguous2 bool // true when Ambiguous holds >= 2 tied candidates
}

// compareVectors reports whether a is strictly-better-or-equal to b on
// every argument and strictly better on at least one (spec.md §4.4 step 6:
// "the candidate with more strict-better-per-arg matches wins").
//
// Returns (better, comparable): better is meaningful only when comparable
// is true. Two vectors are *incomparable* when each beats the other on at
// least one argument — spec.md's design notes flag the original's tie-break
// here as buggy and say a reimplementation should treat incomparable
// vectors as ambiguous (spec.md §9 Open Questions), which is what callers
// of compareVectors do.
func compareVectors(a, b []int) (aBetter, comparable bool) {
	aWins, bWins := false, false
	for i := range a {
		switch {
		case a[i] < b[i]:
			aWins = true
		case a[i] > b[i]:
			bWins = true
		}
	}
	switch {
	case aWins && !bWins:
		return true, true
	case bWins && !aWins:
		return false, true
	default:
		return false, false // equal on every arg, or incomparable
	}
}

// SelectBestFunc implements spec.md §4.4 steps 1–6 plus the unprototyped
// handling of §4.4's final paragraph.
func (s *Selector) SelectBestFunc(candidates []Candidate, argTypes []ast.NodeID) Result {
	type scored struct {
		c   Candidate
		vec []int
	}
	var compatible []scored
	for _, c := range candidates {
		if s.G.At(c.Func).Flags.Has(ast.FlagUnprototyped) {
			// Matches anything, but always loses to a prototyped candidate
			// (spec.md §4.4 "Unprototyped functions"): give it a vector of
			// TopTypeScore-per-arg so any prototyped match beats it.
			vec := make([]int, len(argTypes))
			for i := range vec {
				vec[i] = TopTypeScore
			}
			compatible = append(compatible, scored{c, vec})
			continue
		}
		if vec := s.score(c, argTypes); vec != nil {
			compatible = append(compatible, scored{c, vec})
		}
	}
	if len(compatible) == 0 {
		return Result{NoMatch: true}
	}
	if len(compatible) == 1 {
		return Result{Winner: compatible[0].c.Func}
	}

	best := []scored{compatible[0]}
	for _, cand := range compatible[1:] {
		keep := true
		replaced := false
		for _, b := range best {
			better, comparable := compareVectors(cand.vec, b.vec)
			if !comparable {
				continue // neither strictly dominates; both stay candidates for now
			}
			if better {
				replaced = true
			} else {
				keep = false
			}
		}
		if !keep {
			continue
		}
		if replaced {
			best = []scored{cand}
		} else {
			best = append(best, cand)
		}
	}

	if len(best) == 1 {
		return Result{Winner: best[0].c.Func}
	}

	// More than one tied/incomparable candidate: derived-class tie-break
	// (spec.md §4.2 tie-break rules, §4.4 step 6).
	if len(best) == 2 {
		a, b := best[0].c.Func, best[1].c.Func
		classA := s.G.EnclosingOfKind(a, ast.KindClass, ast.KindInterface)
		classB := s.G.EnclosingOfKind(b, ast.KindClass, ast.KindInterface)
		if classA != ast.Nil && classB != ast.Nil {
			if depth := s.Types.IsDerivedFrom(classA, classB); depth >= 0 {
				return Result{Winner: a}
			}
			if depth := s.Types.IsDerivedFrom(classB, classA); depth >= 0 {
				return Result{Winner: b}
			}
		}
	}

	ids := make([]ast.NodeID, len(best))
	for i, sc := range best {
		ids[i] = sc.c.Func
	}
	return Result{Ambiguous: ids, Ambiguous2: true}
}
