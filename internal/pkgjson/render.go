package pkgjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/libstand-labs/libstand/internal/jsonast"
)

// layout describes how new members are spliced into one object.
type layout struct {
	// multiline is false for objects written on a single line.
	multiline bool
	// memberIndent prefixes each new member line.
	memberIndent string
	// closeIndent is the whitespace in front of the closing brace.
	closeIndent string
	// tail is the original text between the last member (or the opening
	// brace) and the closing brace.
	tail   string
	empty  bool
	unit   string
	nl     string
	anchor int
}

func planLayout(buf []byte, obj *jsonast.Node, unit string) layout {
	l := layout{
		empty:  len(obj.Properties) == 0,
		unit:   unit,
		nl:     "\n",
		anchor: obj.ClosingOffset(),
	}
	if bytes.Contains(buf, []byte("\r\n")) {
		l.nl = "\r\n"
	}

	base, _ := lineIndent(buf, obj.Start)
	l.memberIndent = base + unit
	tailStart := obj.Start + 1
	if !l.empty {
		first := obj.Properties[0]
		if ind, atStart := lineIndent(buf, first.Start); atStart && bytes.Contains(buf[obj.Start:first.Start], []byte("\n")) {
			l.memberIndent = ind
		}
		tailStart = lastMemberEnd(buf, obj)
	}
	l.tail = string(buf[tailStart:l.anchor])

	if i := strings.LastIndexByte(l.tail, '\n'); i >= 0 {
		l.multiline = true
		l.closeIndent = l.tail[i+1:]
		return l
	}
	// Empty objects are expanded onto their own lines. Inner padding such as
	// `{ }` marks a deliberately inline object and is kept.
	if l.empty && l.tail == "" {
		l.multiline = true
		l.closeIndent = base
	}
	return l
}

// lastMemberEnd returns the offset just past the last member with any
// trailing whitespace trimmed off.
func lastMemberEnd(buf []byte, obj *jsonast.Node) int {
	last := obj.Properties[len(obj.Properties)-1]
	span := bytes.TrimRight(buf[last.Start:last.End], " \t\r\n")
	return last.Start + len(span)
}

// block renders members as the text inserted before the closing brace.
func (l layout) block(members []string) string {
	if !l.multiline {
		text := strings.Join(members, ", ") + l.tail
		if l.tail == "" {
			text = " " + text
		}
		return text
	}

	body := strings.Join(members, ","+l.nl+l.memberIndent)
	if l.empty && !strings.Contains(l.tail, "\n") {
		return l.nl + l.memberIndent + body + l.nl + l.closeIndent
	}
	pad := l.nl + l.memberIndent
	if strings.HasPrefix(l.memberIndent, l.closeIndent) {
		pad = l.memberIndent[len(l.closeIndent):]
	}
	return pad + body + l.nl + l.closeIndent
}

// renderMember renders `"name": value` for the given layout.
func (l layout) renderMember(name string, value any) (string, error) {
	key, err := marshalValue(name, "", "")
	if err != nil {
		return "", err
	}
	var val string
	if l.multiline {
		val, err = marshalValue(value, l.memberIndent, l.unit)
		if l.nl != "\n" {
			val = strings.ReplaceAll(val, "\n", l.nl)
		}
	} else {
		val, err = marshalValue(value, "", "")
	}
	if err != nil {
		return "", fmt.Errorf("encoding %q: %w", name, err)
	}
	return key + ": " + val, nil
}

// renderObject renders entries as a JSON object literal whose members sit one
// level below indent. It keeps the entries' order.
func (l layout) renderObject(entries []Entry) (string, error) {
	inner := layout{multiline: l.multiline, memberIndent: l.memberIndent + l.unit, unit: l.unit, nl: l.nl}

	members := make([]string, 0, len(entries))
	for _, e := range entries {
		m, err := inner.renderMember(e.Name, e.Value)
		if err != nil {
			return "", err
		}
		members = append(members, m)
	}
	if !l.multiline {
		return "{ " + strings.Join(members, ", ") + " }", nil
	}
	return "{" + l.nl + inner.memberIndent + strings.Join(members, ","+l.nl+inner.memberIndent) + l.nl + l.memberIndent + "}", nil
}

// marshalValue encodes v as JSON without escaping HTML characters, so shell
// operators such as && stay readable in scripts.
func marshalValue(v any, prefix, indent string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent(prefix, indent)
	}
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
