// Package pos carries source positions across the pass.
//
// A Position survives every rewrite the core performs: nodes created by
// OperatorRewriter or SpecialIdents copy the position of
// the node they replace so that diagnostics keep pointing at real source.
package pos

import "fmt"

// Position identifies a single location in a source file. The core never
// interprets file contents itself (lexing/parsing are out of scope); it only
// carries positions through so the diagnostics collaborator can render them.
type Position struct {
	File   string
	Line   int
	Column int
}

// String renders "file:line:column", or "line:column" when File is empty.
func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// IsZero reports whether the position carries no information.
func (p Position) IsZero() bool {
	return p == Position{}
}
