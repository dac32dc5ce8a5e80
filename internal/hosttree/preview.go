package hosttree

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Preview renders the session's pending change as a line diff. It returns
// "" when nothing is staged.
func Preview(s *Session) (string, error) {
	if s.Len() == 0 {
		return "", nil
	}
	out, err := s.Result()
	if err != nil {
		return "", err
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(s.original), string(out))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", s.path, s.path)
	for _, d := range diffs {
		var mark string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			mark = "+"
		case diffmatchpatch.DiffDelete:
			mark = "-"
		default:
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(mark + line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteString("\n")
			}
		}
	}
	return sb.String(), nil
}
