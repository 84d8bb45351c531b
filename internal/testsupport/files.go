package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// SampleSRT has two captions with a gap before, between, and none after.
const SampleSRT = "1\n00:00:01,000 --> 00:00:02,000\nHello\n\n2\n00:00:05,000 --> 00:00:06,500\nWorld\n"

// WriteFile writes content to dir/name, creating directories, and returns the path.
func WriteFile(t testing.TB, dir, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteSample writes SampleSRT into a temp directory and returns its path.
func WriteSample(t testing.TB) string {
	t.Helper()
	return WriteFile(t, t.TempDir(), "sample.srt", []byte(SampleSRT))
}
