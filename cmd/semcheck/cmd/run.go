package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/cwbudde/as3sem/internal/check"
	"github.com/cwbudde/as3sem/internal/compiler"
	"github.com/cwbudde/as3sem/internal/fixture"
	"github.com/cwbudde/as3sem/internal/pkgload"
	"github.com/cwbudde/as3sem/internal/typeresolve"
	"github.com/cwbudde/as3sem/pkg/ast"
	"github.com/cwbudde/as3sem/pkg/diag"
)

var (
	manifestPath string
	jsonOutput   bool
	configPath   string
)

// runConfig is the optional YAML sidecar SPEC_FULL.md §B describes ("cmd/
// semcheck ... reads a small YAML manifest"): a fixture can ship a config
// file naming its own default package manifest and output mode, so a CI
// invocation can just point at the fixture directory without repeating
// flags per fixture.
type runConfig struct {
	Packages string `yaml:"packages"`
	JSON     bool   `yaml:"json"`
}

func loadRunConfig(path string) (runConfig, error) {
	var cfg runConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

var runCmd = &cobra.Command{
	Use:   "run [fixture.json]",
	Short: "Run the semantic core over a fixture tree and print diagnostics",
	Long: `Decode a JSON fixture tree, run it through the full semantic analysis
pass (declaration/control-flow checking, then name/member/operator
resolution), and print every diagnostic the core emits.

Examples:
  # Check a fixture, plain text diagnostics
  semcheck run testdata/program.json

  # Check a fixture that imports other packages via a manifest
  semcheck run testdata/program.json --packages testdata/packages/index.yaml

  # Emit diagnostics as JSON instead
  semcheck run testdata/program.json --json`,
	Args: cobra.ExactArgs(1),
	RunE: runFixture,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&manifestPath, "packages", "", "package-index manifest (YAML or JSON) for cross-package imports")
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "emit diagnostics as JSON instead of plain text")
	runCmd.Flags().StringVar(&configPath, "config", "", "YAML config naming a default package manifest and output mode")
}

func runFixture(_ *cobra.Command, args []string) error {
	filename := args[0]

	if configPath != "" {
		cfg, err := loadRunConfig(configPath)
		if err != nil {
			return err
		}
		if manifestPath == "" {
			manifestPath = cfg.Packages
		}
		if cfg.JSON {
			jsonOutput = true
		}
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read fixture %s: %w", filename, err)
	}

	g := ast.NewGraph()
	b := &ast.Builder{G: g}
	root, err := fixture.Decode(g, data)
	if err != nil {
		return fmt.Errorf("failed to decode fixture %s: %w", filename, err)
	}

	builtins := typeresolve.Install(g)
	bag := diag.NewBag()

	var loader *pkgload.Loader
	if manifestPath != "" {
		idx, err := loadManifest(manifestPath)
		if err != nil {
			return err
		}
		stmts := check.NewStatementChecker(g, bag)
		modules := fixture.FileLoader{Dir: filepath.Dir(manifestPath)}
		loader = pkgload.New(g, idx, modules, stmts, bag)
	}

	c := compiler.New(g, b, builtins, loader, nil, bag)

	if verbose {
		fmt.Fprintf(os.Stderr, "Checking %s...\n", filename)
	}
	c.Compile(root)

	if jsonOutput {
		out, err := diag.FormatJSON(bag.Diagnostics)
		if err != nil {
			return fmt.Errorf("failed to render diagnostics as JSON: %w", err)
		}
		fmt.Println(string(out))
	} else {
		for _, d := range bag.Diagnostics {
			fmt.Println(d.Format())
		}
	}

	if bag.HasErrors() {
		return fmt.Errorf("semantic analysis failed with %d error(s)", bag.ErrorCount())
	}
	return nil
}

// loadManifest accepts either a YAML or a JSON package-index manifest,
// dispatching on file extension (SPEC_FULL.md §C: both formats are wired
// into internal/pkgload).
func loadManifest(path string) (*pkgload.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	if filepath.Ext(path) == ".json" {
		return pkgload.ParseJSONManifest(data)
	}
	return pkgload.ParseYAMLManifest(data)
}
