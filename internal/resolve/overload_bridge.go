package resolve

import (
	"fmt"

	"github.com/cwbudde/as3sem/internal/overload"
	"github.com/cwbudde/as3sem/pkg/ast"
	"github.com/cwbudde/as3sem/pkg/diag"
)

// selectAndFinish builds overload.Candidate values from funcs, asks
// OverloadSelector for the winner, and resolves id to it — shared by
// NameResolver.resolveOverload and MemberResolver's call-member path.
func (r *Resolver) selectAndFinish(id ast.NodeID, funcs []ast.NodeID, argTypes []ast.NodeID) bool {
	candidates := make([]overload.Candidate, len(funcs))
	for i, f := range funcs {
		candidates[i] = overload.Candidate{Func: f, Params: r.G.Child(f, 0)}
	}
	res := r.Overload.SelectBestFunc(candidates, argTypes)
	switch {
	case res.NoMatch:
		r.emitNotFound(id, []string{"no overload matched the given argument types"})
		return false
	case res.Ambiguous2:
		r.Diags.Emit(diag.Diagnostic{
			Level: diag.Error,
			Kind:  diag.CannotMatch,
			Pos:   r.G.At(id).Pos,
			Text:  fmt.Sprintf("ambiguous call to %q: %d overloads match equally well", r.G.At(id).Str, len(res.Ambiguous)),
		})
		r.G.SetType(id, r.Types.B.Unknown)
		return false
	default:
		return r.finishValue(id, res.Winner)
	}
}

func internalErrorDiag(r *Resolver, id ast.NodeID, err error) diag.Diagnostic {
	return diag.Diagnostic{
		Level: diag.Fatal,
		Kind:  diag.InternalError,
		Pos:   r.G.At(id).Pos,
		Text:  err.Error(),
	}
}
