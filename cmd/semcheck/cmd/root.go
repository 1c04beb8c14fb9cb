package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "semcheck",
	Short: "Fixture-driven harness for the semantic analysis core",
	Long: `semcheck loads a hand-built JSON fixture tree and runs it through
the semantic analysis core (name resolution, overload selection, member
resolution, control-flow validation, access control, special-identifier
folding, and mechanical AST rewrites), printing the diagnostics it emits.

It has no lexer or parser of its own: a fixture is the only input, the same
way unit tests build trees by hand instead of parsing source text.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
