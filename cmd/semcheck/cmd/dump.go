package cmd

import (
	"fmt"
	"os"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	tdpretty "github.com/tidwall/pretty"

	"github.com/cwbudde/as3sem/internal/compiler"
	"github.com/cwbudde/as3sem/internal/fixture"
	"github.com/cwbudde/as3sem/internal/typeresolve"
	"github.com/cwbudde/as3sem/pkg/ast"
	"github.com/cwbudde/as3sem/pkg/diag"
)

var (
	dumpResolved bool
	dumpDebug    bool
	dumpQuery    string
)

var dumpCmd = &cobra.Command{
	Use:   "dump [fixture.json]",
	Short: "Print a fixture tree, optionally after resolution",
	Long: `Read a JSON fixture and print it back out.

By default this just re-serializes the tree unchanged (a round-trip sanity
check on the fixture itself). --resolved runs the full semantic pass first
and writes the resolved type/instance cross-edges back into the JSON
document. --debug instead prints a kr/pretty structural dump of the
fixture's Node tree for failure-output-style debugging. --query extracts one gjson path
from the input document instead of dumping the whole tree.`,
	Args: cobra.ExactArgs(1),
	RunE: dumpFixture,
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().BoolVar(&dumpResolved, "resolved", false, "run the semantic pass first and include resolved cross-edges")
	dumpCmd.Flags().BoolVar(&dumpDebug, "debug", false, "print a kr/pretty structural dump instead of JSON")
	dumpCmd.Flags().StringVar(&dumpQuery, "query", "", "extract one gjson path from the input fixture instead of dumping the tree")
}

func dumpFixture(_ *cobra.Command, args []string) error {
	filename := args[0]
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read fixture %s: %w", filename, err)
	}

	if dumpQuery != "" {
		result := gjson.GetBytes(data, dumpQuery)
		if !result.Exists() {
			return fmt.Errorf("query %q matched nothing in %s", dumpQuery, filename)
		}
		fmt.Println(result.String())
		return nil
	}

	g := ast.NewGraph()
	b := &ast.Builder{G: g}
	root, err := fixture.Decode(g, data)
	if err != nil {
		return fmt.Errorf("failed to decode fixture %s: %w", filename, err)
	}

	if dumpResolved {
		builtins := typeresolve.Install(g)
		bag := diag.NewBag()
		compiler.New(g, b, builtins, nil, nil, bag).Compile(root)
		if verbose {
			for _, d := range bag.Diagnostics {
				fmt.Fprintln(os.Stderr, d.Format())
			}
		}
	}

	if dumpDebug {
		fmt.Println(debugDumpNode(g, root, 0))
		return nil
	}

	out, err := fixture.Encode(g, root)
	if err != nil {
		return fmt.Errorf("failed to encode fixture: %w", err)
	}
	fmt.Println(string(tdpretty.Pretty(out)))
	return nil
}

// debugDumpNode renders one subtree with kr/pretty (SPEC_FULL.md §C:
// "pretty-prints a Node subtree (kind, flags, children) for --debug
// diagnostics"), indenting children by nesting depth.
func debugDumpNode(g *ast.Graph, id ast.NodeID, depth int) string {
	if id == ast.Nil {
		return fmt.Sprintf("%*snil", depth*2, "")
	}
	n := g.At(id)
	summary := struct {
		Kind  string
		Str   string
		Attrs string
		Flags ast.Flags
	}{
		Kind:  n.Kind.String(),
		Str:   n.Str,
		Attrs: fmt.Sprintf("%v", n.Attrs),
		Flags: n.Flags,
	}
	out := fmt.Sprintf("%*s%# v", depth*2, "", pretty.Formatter(summary))
	for _, ch := range n.Children {
		out += "\n" + debugDumpNode(g, ch, depth+1)
	}
	return out
}
