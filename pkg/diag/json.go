package diag

import (
	"encoding/json"

	tdpretty "github.com/tidwall/pretty"
)

// jsonDiagnostic is the wire shape used by cmd/semcheck's `--json` output
// mode, kept separate from Diagnostic so that a Kind value serializes as a
// plain string without exposing Diagnostic's internals to encoding/json
// reflection.
type jsonDiagnostic struct {
	Level   string   `json:"level"`
	Kind    string   `json:"kind"`
	Pos     string   `json:"pos"`
	Text    string   `json:"text"`
	Reasons []string `json:"reasons,omitempty"`
}

// FormatJSON renders a diagnostic list as an indented JSON array, using
// tidwall/pretty for the final indentation pass (SPEC_FULL.md §C) rather
// than json.MarshalIndent, so the harness can reuse the same pretty-printer
// for both diagnostics and ad hoc fixture JSON.
func FormatJSON(diags []Diagnostic) ([]byte, error) {
	out := make([]jsonDiagnostic, len(diags))
	for i, d := range diags {
		out[i] = jsonDiagnostic{
			Level:   d.Level.String(),
			Kind:    string(d.Kind),
			Pos:     d.Pos.String(),
			Text:    d.Text,
			Reasons: d.Reasons,
		}
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return tdpretty.Pretty(raw), nil
}
