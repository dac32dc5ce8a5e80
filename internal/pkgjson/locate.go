package pkgjson

import "github.com/libstand-labs/libstand/internal/jsonast"

// Locate returns the object stored under key in root. It returns (nil, nil)
// when the key is absent and a *SubtreeError when the value is not an object.
func Locate(root *jsonast.Node, key string) (*jsonast.Node, error) {
	prop, ok := root.Lookup(key)
	if !ok {
		return nil, nil
	}
	if prop.Value.Kind != jsonast.KindObject {
		return nil, &SubtreeError{Key: key, Kind: prop.Value.Kind}
	}
	return prop.Value, nil
}
