package pkgjson

import (
	"errors"
	"fmt"

	"github.com/libstand-labs/libstand/internal/jsonast"
)

var (
	// ErrMissingFile means there was no manifest to patch.
	ErrMissingFile = errors.New("manifest file not found")
	// ErrInvalidManifest means the manifest is not JSON or its root is not an object.
	ErrInvalidManifest = errors.New("invalid manifest")
	// ErrInvalidSubtree means a target key exists but does not hold an object.
	ErrInvalidSubtree = errors.New("invalid manifest section")
)

// SubtreeError reports a target key whose value is not an object.
type SubtreeError struct {
	Key  string
	Kind jsonast.Kind
}

func (e *SubtreeError) Error() string {
	return fmt.Sprintf("%s: %q must be an object, found %s", ErrInvalidSubtree, e.Key, e.Kind)
}

// Is makes errors.Is(err, ErrInvalidSubtree) match.
func (e *SubtreeError) Is(target error) bool {
	return target == ErrInvalidSubtree
}
