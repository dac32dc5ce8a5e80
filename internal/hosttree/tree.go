package hosttree

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/libstand-labs/libstand/internal/jsonedit"
)

// ErrStale is returned by Commit when the file changed after BeginEdit.
var ErrStale = errors.New("file changed since the edit began")

// Tree reads files and commits staged edits to them.
type Tree interface {
	Read(path string) ([]byte, error)
	BeginEdit(path string) (*Session, error)
	Commit(s *Session) error
}

// Session stages insertions against the contents a file had when the
// session began. It embeds a Recorder, so InsertBefore and InsertAfter take
// offsets into Original.
type Session struct {
	*jsonedit.Recorder
	path     string
	original []byte
}

// Path returns the tree-relative path being edited.
func (s *Session) Path() string { return s.path }

// Original returns the file contents the session was started with.
func (s *Session) Original() []byte { return s.original }

// Result returns the contents the file will have after Commit.
func (s *Session) Result() ([]byte, error) {
	return s.Apply(s.original)
}

// DirTree is a Tree rooted at a directory on disk.
type DirTree struct {
	Root string
}

// NewDirTree returns a DirTree rooted at root.
func NewDirTree(root string) *DirTree {
	return &DirTree{Root: root}
}

func (t *DirTree) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if !filepath.IsLocal(clean) {
		return "", fmt.Errorf("path %q escapes %s", path, t.Root)
	}
	return filepath.Join(t.Root, clean), nil
}

// Read returns the contents of path. A missing file yields an error
// matching fs.ErrNotExist.
func (t *DirTree) Read(path string) ([]byte, error) {
	abs, err := t.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// BeginEdit reads path and returns a Session anchored to its contents.
func (t *DirTree) BeginEdit(path string) (*Session, error) {
	data, err := t.Read(path)
	if err != nil {
		return nil, err
	}
	return &Session{
		Recorder: jsonedit.NewRecorder(),
		path:     path,
		original: data,
	}, nil
}

// Commit writes the session's result. Sessions with no staged edits write
// nothing.
func (t *DirTree) Commit(s *Session) error {
	if s.Len() == 0 {
		return nil
	}
	abs, err := t.resolve(s.path)
	if err != nil {
		return err
	}

	out, err := s.Result()
	if err != nil {
		return fmt.Errorf("applying edits to %s: %w", s.path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}
	current, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.path, err)
	}
	if !bytes.Equal(current, s.original) {
		return fmt.Errorf("%s: %w", s.path, ErrStale)
	}

	return writeAtomic(abs, out, info.Mode().Perm())
}

// writeAtomic writes data to a temp file next to path and renames it into
// place, so readers never observe a partially written file.
func writeAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
