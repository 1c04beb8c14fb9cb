// Package fixture decodes and encodes the hand-built trees cmd/semcheck and
// internal/pkgload's file-backed ModuleLoader feed into the Core, since the
// surface lexer/parser is out of scope (spec.md §1 Non-goals). A fixture is
// a JSON document shaped like:
//
//	{
//	  "kind": "function",
//	  "str": "run",
//	  "attrs": {"public": "true"},
//	  "flags": ["local"],
//	  "children": [ {"kind": "parameters"}, null, {"kind": "directive-list"} ]
//	}
//
// grounded on the teacher's internal/ast/test_helpers.go hand-built trees,
// generalized here from Go constructors to a data format because this
// module's harness has no parser in front of it to produce the tree from
// source text (SPEC_FULL.md §B "Configuration").
package fixture

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/cwbudde/as3sem/pkg/ast"
	"github.com/cwbudde/as3sem/pkg/pos"
)

// Decode parses a JSON fixture document into g, returning the root node.
// A JSON `null` in a children array becomes ast.Nil, preserving optional-
// child slots (e.g. an untyped variable's type-annotation slot).
func Decode(g *ast.Graph, data []byte) (ast.NodeID, error) {
	if !gjson.ValidBytes(data) {
		return ast.Nil, fmt.Errorf("fixture: invalid JSON")
	}
	return decodeNode(g, gjson.ParseBytes(data))
}

func decodeNode(g *ast.Graph, v gjson.Result) (ast.NodeID, error) {
	if !v.Exists() || v.Type == gjson.Null {
		return ast.Nil, nil
	}
	if !v.IsObject() {
		return ast.Nil, fmt.Errorf("fixture: expected a node object, got %s", v.Raw)
	}

	kindName := v.Get("kind").String()
	kind, ok := ast.ParseKind(kindName)
	if !ok {
		return ast.Nil, fmt.Errorf("fixture: unknown node kind %q", kindName)
	}

	p := pos.Position{
		File:   v.Get("pos.file").String(),
		Line:   int(v.Get("pos.line").Int()),
		Column: int(v.Get("pos.column").Int()),
	}
	id := g.New(kind, p)
	n := g.At(id)
	n.Str = v.Get("str").String()
	n.Int = v.Get("int").Int()
	n.Float = v.Get("float").Float()

	for attrName, tristate := range v.Get("attrs").Map() {
		a, ok := ast.ParseAttrKind(attrName)
		if !ok {
			return ast.Nil, fmt.Errorf("fixture: unknown attribute %q", attrName)
		}
		n.Attrs.Set(a, ast.ParseTristate(tristate.String()))
	}
	for _, flagName := range v.Get("flags").Array() {
		f, ok := ast.ParseFlag(flagName.String())
		if !ok {
			return ast.Nil, fmt.Errorf("fixture: unknown flag %q", flagName.String())
		}
		n.Flags = n.Flags.Set(f)
	}

	for _, child := range v.Get("children").Array() {
		childID, err := decodeNode(g, child)
		if err != nil {
			return ast.Nil, err
		}
		g.AppendChild(id, childID)
	}
	return id, nil
}

// Encode renders id and its subtree back to a JSON fixture document,
// writing each field with sjson.SetBytes (SPEC_FULL.md §C: "writes the
// resolved tree's cross-edges back into a JSON document for round-trip
// fixture regeneration") rather than building a parallel Go struct tree, so
// adding a field here never risks drifting from what Decode reads back.
// Cross-edges are rendered by content rather than as an arena index, since
// an index is meaningless once re-decoded into a fresh Graph: TYPE as the
// referenced node's kind ("resolvedType"), INSTANCE as the referenced
// node's text ("resolvedInstance").
func Encode(g *ast.Graph, id ast.NodeID) ([]byte, error) {
	return encodeNode(g, id, []byte(`{}`))
}

func encodeNode(g *ast.Graph, id ast.NodeID, into []byte) ([]byte, error) {
	if id == ast.Nil {
		return json.Marshal(nil)
	}
	n := g.At(id)

	out := into
	var err error
	if out, err = sjson.SetBytes(out, "kind", n.Kind.String()); err != nil {
		return nil, err
	}
	if n.Str != "" {
		if out, err = sjson.SetBytes(out, "str", n.Str); err != nil {
			return nil, err
		}
	}
	if n.Int != 0 {
		if out, err = sjson.SetBytes(out, "int", n.Int); err != nil {
			return nil, err
		}
	}
	if n.Float != 0 {
		if out, err = sjson.SetBytes(out, "float", n.Float); err != nil {
			return nil, err
		}
	}
	if n.Type != ast.Nil {
		if out, err = sjson.SetBytes(out, "resolvedType", g.At(n.Type).Kind.String()); err != nil {
			return nil, err
		}
	}
	if n.Instance != ast.Nil {
		if out, err = sjson.SetBytes(out, "resolvedInstance", g.At(n.Instance).Str); err != nil {
			return nil, err
		}
	}

	for i, child := range n.Children {
		path := fmt.Sprintf("children.%d", i)
		if child == ast.Nil {
			if out, err = sjson.SetBytes(out, path, nil); err != nil {
				return nil, err
			}
			continue
		}
		childJSON, err := encodeNode(g, child, []byte(`{}`))
		if err != nil {
			return nil, err
		}
		if out, err = sjson.SetRawBytes(out, path, childJSON); err != nil {
			return nil, err
		}
	}
	return out, nil
}
