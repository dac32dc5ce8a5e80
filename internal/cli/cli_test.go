package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const hostManifest = `{
  "name": "host",
  "scripts": {
    "start": "ng serve"
  },
  "devDependencies": {
    "typescript": "~2.4.2"
  }
}
`

// execute runs the root command with isolated config and fresh flag values.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("LIBSTAND_HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")
	resetFlags(rootCmd)

	var out, errb bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errb)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return out.String(), errb.String(), err
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeHost(t *testing.T, content string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "package.json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return root
}

func readManifest(t *testing.T, root string) map[string]map[string]string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("patched manifest is not valid JSON: %v\n%s", err, data)
	}
	out := map[string]map[string]string{}
	for _, key := range []string{"scripts", "devDependencies"} {
		raw, ok := m[key]
		if !ok {
			continue
		}
		section := map[string]string{}
		if err := json.Unmarshal(raw, &section); err != nil {
			t.Fatalf("%s: %v", key, err)
		}
		out[key] = section
	}
	return out
}

// ─── new ───────────────────────────────────────────────────────────

func TestNewScaffoldsAndPatches(t *testing.T) {
	root := writeHost(t, hostManifest)

	stdout, stderr, err := execute(t, "new", "ui-widgets", "--root", root)
	if err != nil {
		t.Fatalf("new: %v\nstderr: %s", err, stderr)
	}

	if _, err := os.Stat(filepath.Join(root, "src", "lib", "src", "ui-widgets.module.ts")); err != nil {
		t.Errorf("library module not generated: %v", err)
	}

	m := readManifest(t, root)
	if got := m["scripts"]["build:lib"]; got != "gulp build --gulpfile src/lib/gulpfile.js" {
		t.Errorf("build:lib = %q", got)
	}
	if got := m["scripts"]["start"]; got != "ng serve" {
		t.Errorf("existing script changed: %q", got)
	}
	if got := m["devDependencies"]["gulp"]; got != "^3.9.1" {
		t.Errorf("gulp = %q", got)
	}
	if got := m["devDependencies"]["typescript"]; got != "~2.4.2" {
		t.Errorf("existing devDependency changed: %q", got)
	}

	if !strings.Contains(stdout, "Next steps:") {
		t.Errorf("expected next steps, got:\n%s", stdout)
	}
	if want := "warning: devDependencies were added; run 'npm install' to install them\n"; stderr != want {
		t.Errorf("stderr = %q, want only the npm install reminder", stderr)
	}
	if !strings.Contains(stdout, "Completed with 1 warning.") {
		t.Errorf("expected warning summary, got:\n%s", stdout)
	}
}

func TestNewInvalidManifestWritesNothing(t *testing.T) {
	root := writeHost(t, `{"scripts": [1, 2]}`)

	_, _, err := execute(t, "new", "ui-widgets", "--root", root)
	if err == nil || !strings.Contains(err.Error(), `"scripts" must be an object`) {
		t.Fatalf("error = %v, want invalid section", err)
	}
	if _, err := os.Stat(filepath.Join(root, "src")); err == nil {
		t.Fatal("library files written despite an invalid manifest")
	}

	// Fixing the manifest and re-running succeeds.
	if err := os.WriteFile(filepath.Join(root, "package.json"), []byte(`{"scripts": {}, "devDependencies": {}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := execute(t, "new", "ui-widgets", "--root", root); err != nil {
		t.Fatalf("re-run after fixing the manifest: %v", err)
	}
	if got := readManifest(t, root)["scripts"]["build:lib"]; got == "" {
		t.Error("manifest not patched on re-run")
	}
	if _, err := os.Stat(filepath.Join(root, "src", "lib", "src", "ui-widgets.module.ts")); err != nil {
		t.Errorf("library not generated on re-run: %v", err)
	}
}

func TestNewWithoutManifestStillScaffolds(t *testing.T) {
	root := t.TempDir()

	_, stderr, err := execute(t, "new", "ui", "--root", root)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !strings.Contains(stderr, "package.json not found") {
		t.Errorf("expected missing-file warning, got:\n%s", stderr)
	}
	if _, err := os.Stat(filepath.Join(root, "src", "lib", "src", "ui.module.ts")); err != nil {
		t.Errorf("library not generated: %v", err)
	}
}

func TestNewCustomPaths(t *testing.T) {
	root := writeHost(t, hostManifest)

	if _, _, err := execute(t, "new", "grid", "--root", root, "--source-dir", "app", "--path", "shared/grid"); err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := readManifest(t, root)["scripts"]["watch:lib"]; got != "gulp watch --gulpfile app/shared/grid/gulpfile.js" {
		t.Errorf("watch:lib = %q", got)
	}
}

func TestNewOptionsFile(t *testing.T) {
	root := writeHost(t, hostManifest)
	optsFile := filepath.Join(t.TempDir(), "lib.yaml")
	if err := os.WriteFile(optsFile, []byte("name: charts\npath: charts\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := execute(t, "new", "--options", optsFile, "--root", root); err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "src", "charts", "src", "charts.module.ts")); err != nil {
		t.Errorf("library not generated from options file: %v", err)
	}
}

func TestNewRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad name", []string{"new", "UI_Widgets"}, "invalid name"},
		{"no name", []string{"new"}, "name is required"},
		{"absolute path", []string{"new", "ui", "--path", "/abs"}, "invalid options"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeHost(t, hostManifest)
			_, _, err := execute(t, append(tt.args, "--root", root)...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want %q", err, tt.want)
			}
			data, _ := os.ReadFile(filepath.Join(root, "package.json"))
			if string(data) != hostManifest {
				t.Error("manifest changed on invalid input")
			}
		})
	}
}

func TestNewDryRun(t *testing.T) {
	root := writeHost(t, hostManifest)

	stdout, _, err := execute(t, "new", "ui", "--root", root, "--dry-run")
	if err != nil {
		t.Fatalf("new --dry-run: %v", err)
	}
	if !strings.Contains(stdout, "+++ b/package.json") || !strings.Contains(stdout, `+    "build:lib"`) {
		t.Errorf("expected a diff, got:\n%s", stdout)
	}
	if _, err := os.Stat(filepath.Join(root, "src")); err == nil {
		t.Error("dry run must not generate files")
	}
	data, _ := os.ReadFile(filepath.Join(root, "package.json"))
	if string(data) != hostManifest {
		t.Error("dry run must not write package.json")
	}
}

// ─── patch ─────────────────────────────────────────────────────────

func TestPatchIsIdempotent(t *testing.T) {
	root := writeHost(t, hostManifest)

	if _, _, err := execute(t, "patch", "--root", root); err != nil {
		t.Fatalf("first patch: %v", err)
	}
	first, _ := os.ReadFile(filepath.Join(root, "package.json"))

	stdout, stderr, err := execute(t, "patch", "--root", root)
	if err != nil {
		t.Fatalf("second patch: %v", err)
	}
	if stderr != "" {
		t.Errorf("second patch warned:\n%s", stderr)
	}
	second, _ := os.ReadFile(filepath.Join(root, "package.json"))
	if !bytes.Equal(first, second) {
		t.Errorf("second patch changed the file:\n%s", second)
	}
	if !strings.Contains(stdout, "up to date") {
		t.Errorf("expected up-to-date message, got:\n%s", stdout)
	}
}

func TestPatchRemindsToInstall(t *testing.T) {
	root := writeHost(t, hostManifest)

	stdout, stderr, err := execute(t, "patch", "--root", root)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if !strings.Contains(stderr, "warning: devDependencies were added; run 'npm install'") {
		t.Errorf("expected npm install warning, got:\n%s", stderr)
	}
	if strings.Contains(stdout, "npm install") {
		t.Errorf("npm install reminder leaked to stdout:\n%s", stdout)
	}
}

func TestPatchReportsConflicts(t *testing.T) {
	root := writeHost(t, `{
  "scripts": {
    "build:lib": "tsc"
  },
  "devDependencies": {}
}
`)

	_, stderr, err := execute(t, "patch", "--root", root)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if !strings.Contains(stderr, `"build:lib" is already set to "tsc"`) {
		t.Errorf("expected conflict warning, got:\n%s", stderr)
	}
	m := readManifest(t, root)
	if m["scripts"]["build:lib"] != "tsc" {
		t.Errorf("conflicting script overwritten: %q", m["scripts"]["build:lib"])
	}
	if m["scripts"]["watch:lib"] == "" || m["devDependencies"]["del"] != "^3.0.0" {
		t.Errorf("other entries not added: %+v", m)
	}
}

func TestPatchMissingManifestIsSoft(t *testing.T) {
	_, stderr, err := execute(t, "patch", "--root", t.TempDir())
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if !strings.Contains(stderr, "package.json not found") {
		t.Errorf("expected missing-file warning, got:\n%s", stderr)
	}
}

func TestPatchAbsentSections(t *testing.T) {
	t.Run("skipped by default", func(t *testing.T) {
		root := writeHost(t, "{\n  \"name\": \"host\"\n}\n")
		_, stderr, err := execute(t, "patch", "--root", root)
		if err != nil {
			t.Fatalf("patch: %v", err)
		}
		if !strings.Contains(stderr, `no "scripts" section`) {
			t.Errorf("expected skip warning, got:\n%s", stderr)
		}
		if len(readManifest(t, root)) != 0 {
			t.Error("sections should not be created")
		}
	})

	t.Run("created on request", func(t *testing.T) {
		root := writeHost(t, "{\n  \"name\": \"host\"\n}\n")
		if _, _, err := execute(t, "patch", "--root", root, "--create-missing"); err != nil {
			t.Fatalf("patch: %v", err)
		}
		m := readManifest(t, root)
		if len(m["scripts"]) != 3 || len(m["devDependencies"]) != 6 {
			t.Errorf("sections not created: %+v", m)
		}
	})
}

func TestPatchInvalidManifest(t *testing.T) {
	root := writeHost(t, `{"scripts": [1, 2]}`)
	_, _, err := execute(t, "patch", "--root", root)
	if err == nil || !strings.Contains(err.Error(), `"scripts" must be an object`) {
		t.Fatalf("error = %v", err)
	}
}

// ─── build / preset / version / config ─────────────────────────────

func TestBuildCommand(t *testing.T) {
	root := writeHost(t, `{"name": "ui", "private": true}`)
	if err := os.MkdirAll(filepath.Join(root, "src"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "src", "a.html"), []byte("<p></p>"), 0644); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, err := execute(t, "build", "--root", root)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(stdout, "Built") {
		t.Errorf("stdout = %q", stdout)
	}
	if !strings.Contains(stderr, "README.md not found") {
		t.Errorf("expected README warning, got:\n%s", stderr)
	}
	if _, err := os.Stat(filepath.Join(root, "dist", "a.html")); err != nil {
		t.Errorf("source file not copied: %v", err)
	}
}

func TestPresetShow(t *testing.T) {
	stdout, _, err := execute(t, "preset", "show", "--path", "ui")
	if err != nil {
		t.Fatalf("preset show: %v", err)
	}
	for _, want := range []string{"name: lib-standalone", "gulp build --gulpfile src/ui/gulpfile.js", "gulp-typescript"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestVersionShort(t *testing.T) {
	buildVersion = "1.2.3"
	t.Cleanup(func() { buildVersion = "" })

	stdout, _, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(stdout) != "1.2.3" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestConfigSetThenGet(t *testing.T) {
	home := t.TempDir()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("LIBSTAND_HOME", home)
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"config", "set", "indent", "2"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("config set: %v", err)
	}

	viper.Reset()
	out.Reset()
	rootCmd.SetArgs([]string{"config", "get", "indent"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("config get: %v", err)
	}
	if strings.TrimSpace(out.String()) != "2" {
		t.Errorf("config get indent = %q, want 2", out.String())
	}
}

func TestConfigSetRejectsInvalidValue(t *testing.T) {
	_, _, err := execute(t, "config", "set", "indent", "tabs")
	if err == nil || !strings.Contains(err.Error(), "indent") {
		t.Fatalf("error = %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(os.Getenv("LIBSTAND_HOME"), "config.yaml")); !os.IsNotExist(statErr) {
		t.Errorf("config file written for invalid value: %v", statErr)
	}
}

func TestConfigGetUnknownKey(t *testing.T) {
	_, _, err := execute(t, "config", "get", "colour")
	if err == nil || !strings.Contains(err.Error(), "unknown key") {
		t.Fatalf("error = %v", err)
	}
}

func TestConfigList(t *testing.T) {
	stdout, _, err := execute(t, "config", "list")
	if err != nil {
		t.Fatalf("config list: %v", err)
	}
	for _, want := range []string{"preset", "indent", "create_missing"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestVersionDefaultOutput(t *testing.T) {
	buildVersion, buildCommit, buildDate = "1.2.3", "abc123", "2026-01-02"
	t.Cleanup(func() { buildVersion, buildCommit, buildDate = "", "", "" })

	stdout, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	for _, want := range []string{"libstand 1.2.3", "commit abc123", "built 2026-01-02", "go1."} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}
