package hosttree

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/libstand-labs/libstand/internal/pkgjson"
)

// ManifestFile is the conventional manifest name at a project root.
const ManifestFile = "package.json"

// StageManifest opens path in t and stages the insertions needed for every
// target. The returned session is not committed. A missing file is reported
// to the patcher's Reporter and returned as pkgjson.ErrMissingFile.
func StageManifest(t Tree, path string, p *pkgjson.Patcher, targets ...pkgjson.Target) (*Session, *pkgjson.Result, error) {
	s, err := t.BeginEdit(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if p.Reporter != nil {
				p.Reporter.Warnf("%s not found; nothing to patch", path)
			}
			return nil, nil, fmt.Errorf("%w: %s", pkgjson.ErrMissingFile, path)
		}
		return nil, nil, err
	}

	res, err := p.Stage(s.Original(), s, targets...)
	if err != nil {
		return nil, nil, fmt.Errorf("patching %s: %w", path, err)
	}
	return s, res, nil
}

// PatchManifest stages and commits in one step.
func PatchManifest(t Tree, path string, p *pkgjson.Patcher, targets ...pkgjson.Target) (*pkgjson.Result, error) {
	s, res, err := StageManifest(t, path, p, targets...)
	if err != nil {
		return nil, err
	}
	if err := t.Commit(s); err != nil {
		return nil, err
	}
	return res, nil
}
