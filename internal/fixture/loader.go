package fixture

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/as3sem/pkg/ast"
)

// FileLoader implements internal/pkgload.ModuleLoader over a directory of
// JSON fixture files, the stand-in PackageLoader needs since the surface
// parser that would normally turn an import path into a package tree is out
// of scope (spec.md §1 Non-goals, SPEC_FULL.md §A "testdata/").
type FileLoader struct {
	Dir string
}

// Load reads Dir/file and decodes it as a fixture `package`/`program` tree.
func (l FileLoader) Load(g *ast.Graph, file string) (ast.NodeID, error) {
	data, err := os.ReadFile(filepath.Join(l.Dir, file))
	if err != nil {
		return ast.Nil, fmt.Errorf("fixture: reading %s: %w", file, err)
	}
	id, err := Decode(g, data)
	if err != nil {
		return ast.Nil, fmt.Errorf("fixture: decoding %s: %w", file, err)
	}
	return id, nil
}
