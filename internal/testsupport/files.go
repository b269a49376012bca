package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"linguo/internal/config"
)

// WriteFile fills the target path with placeholder content, creating parent
// directories as needed.
func WriteFile(t testing.TB, path string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteSourceFile drops a named file into the config's source directory.
func WriteSourceFile(t testing.TB, cfg *config.Config, name string) string {
	t.Helper()

	path := filepath.Join(cfg.Paths.SourceDir, name)
	WriteFile(t, path)
	return path
}
