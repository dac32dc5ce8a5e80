package pkgjson

import (
	"bytes"
	"strings"
)

// detectIndentUnit returns one level of indentation for buf: a tab for
// tab-indented files, otherwise the GCD of all leading-space widths.
// fallback spaces are used when nothing is indented.
func detectIndentUnit(buf []byte, fallback int) string {
	var widths []int
	tabs, spaces := 0, 0
	for _, ln := range bytes.Split(buf, []byte("\n")) {
		if len(bytes.TrimSpace(ln)) == 0 {
			continue
		}
		switch {
		case ln[0] == '\t':
			tabs++
		case ln[0] == ' ':
			spaces++
			widths = append(widths, leadingSpaces(ln))
		}
	}
	if tabs > spaces {
		return "\t"
	}
	if len(widths) == 0 {
		return strings.Repeat(" ", fallback)
	}

	n := widths[0]
	for _, w := range widths[1:] {
		n = gcd(n, w)
		if n == 1 {
			break
		}
	}
	if n < 1 || n > 8 {
		n = fallback
	}
	return strings.Repeat(" ", n)
}

// lineIndent returns the leading whitespace of the line containing off, and
// whether only whitespace precedes off on that line.
func lineIndent(buf []byte, off int) (string, bool) {
	start := bytes.LastIndexByte(buf[:off], '\n') + 1
	prefix := buf[start:off]
	i := 0
	for i < len(prefix) && (prefix[i] == ' ' || prefix[i] == '\t') {
		i++
	}
	return string(prefix[:i]), i == len(prefix)
}

func leadingSpaces(line []byte) int {
	i := 0
	for i < len(line) && line[i] == ' ' {
		i++
	}
	return i
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
