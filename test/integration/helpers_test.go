//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir    string // LIBSTAND_HOME, holds config.yaml
	ProjectDir string // A mock host project with a package.json
}

// setupTestEnv creates isolated temp directories and points the config
// directory at one of them. The env vars are restored after the test.
func setupTestEnv(t *testing.T, manifest string) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir:    t.TempDir(),
		ProjectDir: t.TempDir(),
	}
	t.Setenv("LIBSTAND_HOME", env.HomeDir)

	writeFile(t, filepath.Join(env.ProjectDir, "package.json"), manifest)
	return env
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s", path)
	}
}

func assertContains(t *testing.T, content, substr string) {
	t.Helper()
	if !strings.Contains(content, substr) {
		t.Errorf("content does not contain %q\n--- content ---\n%s", substr, content)
	}
}

// warnings collects reporter output.
type warnings []string

func (w *warnings) Warnf(format string, args ...any) {
	*w = append(*w, format)
}
