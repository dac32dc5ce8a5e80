package pkgjson

// Entry is a member the caller wants present in a section: a script
// command or a dependency version constraint.
type Entry struct {
	Name  string
	Value any
}

// Target pairs a top-level section with the entries it should contain.
type Target struct {
	Key     string
	Entries []Entry
}

// Common section names.
const (
	KeyScripts         = "scripts"
	KeyDevDependencies = "devDependencies"
)

// Missing returns the entries of desired whose names are not in existing,
// keeping their relative order.
func Missing(existing map[string]struct{}, desired []Entry) []Entry {
	var out []Entry
	for _, e := range desired {
		if _, ok := existing[e.Name]; ok {
			continue
		}
		out = append(out, e)
	}
	return out
}

func names(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}
