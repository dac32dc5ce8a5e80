package pkgjson

import (
	"encoding/json"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// Reporter receives non-fatal warnings.
type Reporter interface {
	Warnf(format string, args ...any)
}

// Conflict is a desired entry whose name already exists with another value.
type Conflict struct {
	Section  string
	Name     string
	Existing any
	Wanted   any
}

// ReportConflicts warns about every desired entry already present in
// existing with a different value. Existing values are never changed; the
// conflicting entry is simply not inserted.
func ReportConflicts(section string, existing map[string]any, desired []Entry, sink Reporter) []Conflict {
	var out []Conflict
	for _, e := range desired {
		cur, ok := existing[e.Name]
		if !ok || sameJSON(cur, e.Value) {
			continue
		}
		c := Conflict{Section: section, Name: e.Name, Existing: cur, Wanted: e.Value}
		out = append(out, c)
		if sink != nil {
			sink.Warnf("%s: %q is already set to %s (wanted %s); reconcile it manually",
				section, e.Name, compact(cur), compact(e.Value))
		}
	}
	return out
}

func sameJSON(a, b any) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return jsonpatch.Equal(ab, bb)
}

func compact(v any) string {
	b, err := marshalValue(v, "", "")
	if err != nil {
		return "?"
	}
	return b
}
