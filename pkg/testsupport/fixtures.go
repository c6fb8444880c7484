// Package testsupport holds helpers shared by template and renderer tests.
package testsupport

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// UpdateEnv, when set, makes golden helpers rewrite their files instead of
// comparing against them.
const UpdateEnv = "UPDATE_GOLDENS"

// MustReadGoldenString reads a golden file. With UPDATE_GOLDENS set and got
// provided, the file is rewritten with got first.
func MustReadGoldenString(t *testing.T, path string, got ...string) string {
	t.Helper()

	if os.Getenv(UpdateEnv) != "" && len(got) > 0 {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(got[0]), 0o644); err != nil {
			t.Fatalf("write golden: %v", err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return string(data)
}

// CaptureTemplateOutput runs render against a buffer and returns both the
// returned string and what was written, so callers can check they agree.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
