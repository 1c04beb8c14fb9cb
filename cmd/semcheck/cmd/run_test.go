package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

const (
	programFixture  = "../../../testdata/program.json"
	packagesIndex   = "../../../testdata/packages/index.yaml"
	packagesIndexJS = "../../../testdata/packages/index.json"
)

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// whatever it wrote, mirroring the teacher's TestRunWithSemanticErrors.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	runErr := fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String(), runErr
}

func resetRunFlags() {
	manifestPath = ""
	jsonOutput = false
	configPath = ""
	verbose = false
}

func TestRunFixtureWithoutPackagesFailsOnUnresolvedImport(t *testing.T) {
	resetRunFlags()
	defer resetRunFlags()

	out, err := captureStdout(t, func() error {
		return runFixture(nil, []string{programFixture})
	})
	if err == nil {
		t.Fatalf("expected an error when the shapes package cannot be resolved, got none; output:\n%s", out)
	}
}

func TestRunFixtureWithPackagesSucceeds(t *testing.T) {
	resetRunFlags()
	defer resetRunFlags()
	manifestPath = packagesIndex

	out, err := captureStdout(t, func() error {
		return runFixture(nil, []string{programFixture})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput:\n%s", err, out)
	}
}

func TestRunFixtureJSONOutput(t *testing.T) {
	resetRunFlags()
	defer resetRunFlags()
	manifestPath = packagesIndex
	jsonOutput = true

	out, err := captureStdout(t, func() error {
		return runFixture(nil, []string{programFixture})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput:\n%s", err, out)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), "[") {
		t.Fatalf("expected --json output to be a JSON array, got:\n%s", out)
	}
}

func TestRunFixtureConfigSuppliesDefaultManifest(t *testing.T) {
	resetRunFlags()
	defer resetRunFlags()

	dir := t.TempDir()
	configFile := dir + "/semcheck.yaml"
	if err := os.WriteFile(configFile, []byte("packages: "+packagesIndex+"\njson: true\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	configPath = configFile

	out, err := captureStdout(t, func() error {
		return runFixture(nil, []string{programFixture})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput:\n%s", err, out)
	}
	if manifestPath != packagesIndex {
		t.Fatalf("expected config to populate manifestPath, got %q", manifestPath)
	}
	if !jsonOutput {
		t.Fatalf("expected config to turn on json output")
	}
}

func TestRunFixtureMissingFile(t *testing.T) {
	resetRunFlags()
	defer resetRunFlags()

	_, err := captureStdout(t, func() error {
		return runFixture(nil, []string{"../../../testdata/does-not-exist.json"})
	})
	if err == nil {
		t.Fatalf("expected an error for a missing fixture file")
	}
}
