package pkgload

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/tidwall/gjson"
)

// ManifestEntry is one package-index row: which file declares importPath,
// and an eager value that Lookup reports. Loader does not act on it: eager
// loading is decided by the import node's flag (Loader.Preload).
type ManifestEntry struct {
	Path   string `yaml:"path" json:"path"`
	File   string `yaml:"file" json:"file"`
	Eager  bool   `yaml:"eager" json:"eager"`
}

// Manifest is a flat, in-memory Index backed by a decoded package-index
// fixture (SPEC_FULL.md §C: "package-index manifest / fixture config").
type Manifest struct {
	entries map[string]ManifestEntry
}

// Lookup implements Index.
func (m *Manifest) Lookup(importPath string) (file string, eager bool, ok bool) {
	e, found := m.entries[importPath]
	if !found {
		return "", false, false
	}
	return e.File, e.Eager, true
}

// ParseYAMLManifest decodes a YAML package-index document of the form:
//
//	packages:
//	  - path: com.example.shapes
//	    file: shapes.pkg.json
//	    eager: false
//
// grounded on the teacher's YAML-based fixture configuration, generalized
// here from DWScript unit search paths to this language's package index.
func ParseYAMLManifest(data []byte) (*Manifest, error) {
	var doc struct {
		Packages []ManifestEntry `yaml:"packages"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("pkgload: parsing YAML manifest: %w", err)
	}
	return newManifest(doc.Packages), nil
}

// ParseJSONManifest decodes the same shape from JSON using gjson, for
// fixtures authored as JSON instead of YAML (SPEC_FULL.md §C: gjson/sjson
// wired into the fixture-loading path).
func ParseJSONManifest(data []byte) (*Manifest, error) {
	result := gjson.GetBytes(data, "packages")
	if !result.Exists() {
		return nil, fmt.Errorf("pkgload: JSON manifest has no \"packages\" array")
	}
	var entries []ManifestEntry
	for _, item := range result.Array() {
		entries = append(entries, ManifestEntry{
			Path:  item.Get("path").String(),
			File:  item.Get("file").String(),
			Eager: item.Get("eager").Bool(),
		})
	}
	return newManifest(entries), nil
}

func newManifest(entries []ManifestEntry) *Manifest {
	m := &Manifest{entries: make(map[string]ManifestEntry, len(entries))}
	for _, e := range entries {
		m.entries[e.Path] = e
	}
	return m
}
