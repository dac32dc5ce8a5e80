package hosttree

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/libstand-labs/libstand/internal/pkgjson"
)

type recordingReporter struct {
	msgs []string
}

func (r *recordingReporter) Warnf(format string, args ...any) {
	r.msgs = append(r.msgs, fmt.Sprintf(format, args...))
}

const manifest = `{
  "name": "host",
  "scripts": {
    "build": "ng build"
  },
  "devDependencies": {}
}
`

func writeFile(t *testing.T, path, content string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		t.Fatal(err)
	}
}

func TestCommitWritesAndPreservesMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFile)
	writeFile(t, path, `{"a":1}`, 0600)

	tree := NewDirTree(dir)
	s, err := tree.BeginEdit(ManifestFile)
	if err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}
	s.InsertAfter(6, `,"b":2`)
	if err := tree.Commit(s); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != `{"a":1,"b":2}` {
		t.Errorf("file = %s", got)
	}
	info, _ := os.Stat(path)
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestCommitEmptySessionWritesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFile)
	writeFile(t, path, `{}`, 0644)

	tree := NewDirTree(dir)
	s, err := tree.BeginEdit(ManifestFile)
	if err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}
	// Make the file stale; an empty commit must not notice or care.
	writeFile(t, path, `{"x":1}`, 0644)
	if err := tree.Commit(s); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != `{"x":1}` {
		t.Errorf("file rewritten: %s", got)
	}
}

func TestCommitRejectsStaleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFile)
	writeFile(t, path, `{"a":1}`, 0644)

	tree := NewDirTree(dir)
	s, err := tree.BeginEdit(ManifestFile)
	if err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}
	s.InsertAfter(6, `,"b":2`)

	writeFile(t, path, `{"a":2}`, 0644)
	if err := tree.Commit(s); !errors.Is(err, ErrStale) {
		t.Fatalf("Commit err = %v, want ErrStale", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != `{"a":2}` {
		t.Errorf("stale commit modified file: %s", got)
	}
}

func TestResolveRejectsEscapes(t *testing.T) {
	tree := NewDirTree(t.TempDir())
	for _, p := range []string{"../outside.json", "/etc/passwd"} {
		if _, err := tree.Read(p); err == nil {
			t.Errorf("Read(%q) succeeded, want error", p)
		}
	}
}

func TestReadMissingFile(t *testing.T) {
	tree := NewDirTree(t.TempDir())
	if _, err := tree.Read("nope.json"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want fs.ErrNotExist", err)
	}
}

func TestPatchManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFile)
	writeFile(t, path, manifest, 0644)

	tree := NewDirTree(dir)
	p := &pkgjson.Patcher{}
	targets := []pkgjson.Target{
		{Key: pkgjson.KeyScripts, Entries: []pkgjson.Entry{{Name: "build:lib", Value: "gulp build"}}},
		{Key: pkgjson.KeyDevDependencies, Entries: []pkgjson.Entry{{Name: "del", Value: "^3.0.0"}}},
	}

	res, err := PatchManifest(tree, ManifestFile, p, targets...)
	if err != nil {
		t.Fatalf("PatchManifest: %v", err)
	}
	if !res.Changed() {
		t.Fatal("expected changes")
	}

	want := `{
  "name": "host",
  "scripts": {
    "build": "ng build",
    "build:lib": "gulp build"
  },
  "devDependencies": {
    "del": "^3.0.0"
  }
}
`
	got, _ := os.ReadFile(path)
	if string(got) != want {
		t.Errorf("file =\n%s\nwant\n%s", got, want)
	}

	// Second run is a no-op.
	res, err = PatchManifest(tree, ManifestFile, p, targets...)
	if err != nil {
		t.Fatalf("second PatchManifest: %v", err)
	}
	if res.Changed() {
		t.Error("second run reported changes")
	}
	again, _ := os.ReadFile(path)
	if string(again) != want {
		t.Errorf("second run changed file:\n%s", again)
	}
}

func TestStageManifestMissingFile(t *testing.T) {
	rep := &recordingReporter{}
	tree := NewDirTree(t.TempDir())
	p := &pkgjson.Patcher{Reporter: rep}

	s, res, err := StageManifest(tree, ManifestFile, p)
	if !errors.Is(err, pkgjson.ErrMissingFile) {
		t.Fatalf("err = %v, want ErrMissingFile", err)
	}
	if s != nil || res != nil {
		t.Error("expected nil session and result")
	}
	if len(rep.msgs) != 1 || !strings.Contains(rep.msgs[0], ManifestFile) {
		t.Errorf("warnings = %v", rep.msgs)
	}
}

func TestStageManifestInvalidLeavesFileAlone(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFile)
	writeFile(t, path, "{not json", 0644)

	tree := NewDirTree(dir)
	_, err := PatchManifest(tree, ManifestFile, &pkgjson.Patcher{},
		pkgjson.Target{Key: pkgjson.KeyScripts, Entries: []pkgjson.Entry{{Name: "a", Value: "1"}}})
	if !errors.Is(err, pkgjson.ErrInvalidManifest) {
		t.Fatalf("err = %v, want ErrInvalidManifest", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "{not json" {
		t.Errorf("file modified: %s", got)
	}
}

func TestPreview(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ManifestFile), manifest, 0644)
	tree := NewDirTree(dir)

	s, _, err := StageManifest(tree, ManifestFile, &pkgjson.Patcher{},
		pkgjson.Target{Key: pkgjson.KeyScripts, Entries: []pkgjson.Entry{{Name: "build:lib", Value: "gulp build"}}})
	if err != nil {
		t.Fatalf("StageManifest: %v", err)
	}

	out, err := Preview(s)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	for _, want := range []string{
		"--- a/package.json",
		`-    "build": "ng build"`,
		`+    "build": "ng build",`,
		`+    "build:lib": "gulp build"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("preview missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, `"name"`) {
		t.Errorf("preview includes unchanged lines:\n%s", out)
	}

	// Nothing is written by a preview.
	got, _ := os.ReadFile(filepath.Join(dir, ManifestFile))
	if string(got) != manifest {
		t.Error("preview wrote the file")
	}
}
