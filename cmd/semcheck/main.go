// Command semcheck is a developer harness for the semantic Core: it loads a
// hand-built JSON fixture tree (the surface lexer/parser is out of
// scope, spec.md §1 Non-goals), runs the full Compile pass over it, and
// prints the resulting diagnostics. It is not the language's own compiler
// entry point (SPEC_FULL.md §E).
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/as3sem/cmd/semcheck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
