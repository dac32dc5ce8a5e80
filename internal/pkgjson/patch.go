package pkgjson

import (
	"bytes"
	"fmt"

	"github.com/libstand-labs/libstand/internal/jsonast"
	"github.com/libstand-labs/libstand/internal/jsonedit"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Inserter stages insertions anchored to offsets of the original buffer.
// *jsonedit.Recorder implements it.
type Inserter interface {
	InsertAfter(offset int, text string)
	InsertBefore(offset int, text string)
}

// Patcher fills gaps in manifest sections. The zero value is usable.
type Patcher struct {
	// Reporter receives conflict and skip warnings. May be nil.
	Reporter Reporter
	// CreateMissing adds absent sections as new top-level members instead
	// of skipping them with a warning.
	CreateMissing bool
	// DefaultIndent is the indent width used when none can be detected.
	// Zero means 4.
	DefaultIndent int
}

// Result describes what a patch did.
type Result struct {
	// Output is the patched manifest. Set by Patch only.
	Output []byte
	// Applied maps a section to the names inserted into it, in order.
	Applied map[string][]string
	// Created lists sections that were added to the manifest.
	Created []string
	// Skipped lists absent sections left alone.
	Skipped []string
	// Conflicts lists existing members that differ from the desired value.
	Conflicts []Conflict
}

// Changed reports whether any entry was inserted.
func (r *Result) Changed() bool {
	for _, n := range r.Applied {
		if len(n) > 0 {
			return true
		}
	}
	return false
}

// Patch inserts the entries of desired missing from the key section of buf
// and returns the new buffer. buf itself is never modified; when nothing is
// missing Output is buf.
func (p *Patcher) Patch(buf []byte, key string, desired []Entry) (*Result, error) {
	rec := jsonedit.NewRecorder()
	res, err := p.Stage(buf, rec, Target{Key: key, Entries: desired})
	if err != nil {
		return nil, err
	}
	if rec.Len() == 0 {
		res.Output = buf
		return res, nil
	}
	out, err := rec.Apply(buf)
	if err != nil {
		return nil, fmt.Errorf("applying edits: %w", err)
	}
	res.Output = out
	return res, nil
}

type plan struct {
	target   Target
	node     *jsonast.Node
	existing map[string]any
	missing  []Entry
}

// Stage records on rec the insertions needed to bring every target section
// of buf up to date. All offsets refer to buf, so several sections can share
// one recorder. Nothing is recorded when an error is returned.
func (p *Patcher) Stage(buf []byte, rec Inserter, targets ...Target) (*Result, error) {
	values, err := decodeManifest(buf)
	if err != nil {
		return nil, err
	}
	root, err := jsonast.Parse(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if root.Kind != jsonast.KindObject {
		return nil, fmt.Errorf("%w: root must be an object, found %s", ErrInvalidManifest, root.Kind)
	}

	plans := make([]plan, 0, len(targets))
	seen := make(map[string]bool, len(targets))
	for _, t := range targets {
		if seen[t.Key] {
			return nil, fmt.Errorf("section %q requested twice", t.Key)
		}
		seen[t.Key] = true

		node, err := Locate(root, t.Key)
		if err != nil {
			return nil, err
		}
		existing := map[string]any{}
		if node != nil {
			m, ok := values[t.Key].(map[string]any)
			if !ok {
				return nil, &SubtreeError{Key: t.Key, Kind: node.Kind}
			}
			existing = m
		}
		keys := make(map[string]struct{}, len(existing))
		for k := range existing {
			keys[k] = struct{}{}
		}
		plans = append(plans, plan{
			target:   t,
			node:     node,
			existing: existing,
			missing:  Missing(keys, t.Entries),
		})
	}

	// Stage locally first so a rendering failure leaves rec untouched.
	local := jsonedit.NewRecorder()
	unit := detectIndentUnit(buf, p.indent())
	res := &Result{Applied: make(map[string][]string)}
	var created []plan

	for _, pl := range plans {
		key := pl.target.Key
		if pl.node == nil {
			if len(pl.missing) == 0 {
				continue
			}
			if !p.CreateMissing {
				res.Skipped = append(res.Skipped, key)
				p.warnf("no %q section in manifest; %d entries not added", key, len(pl.missing))
				continue
			}
			created = append(created, pl)
			continue
		}

		res.Conflicts = append(res.Conflicts, ReportConflicts(key, pl.existing, pl.target.Entries, p.Reporter)...)
		if len(pl.missing) == 0 {
			continue
		}

		l := planLayout(buf, pl.node, unit)
		members := make([]string, 0, len(pl.missing))
		for _, e := range pl.missing {
			m, err := l.renderMember(e.Name, e.Value)
			if err != nil {
				return nil, fmt.Errorf("rendering %s: %w", key, err)
			}
			members = append(members, m)
		}
		stageAppend(local, buf, pl.node, l, members)
		res.Applied[key] = names(pl.missing)
	}

	if len(created) > 0 {
		l := planLayout(buf, root, unit)
		members := make([]string, 0, len(created))
		for _, pl := range created {
			key := pl.target.Key
			obj, err := l.renderObject(pl.missing)
			if err != nil {
				return nil, fmt.Errorf("rendering %s: %w", key, err)
			}
			name, err := marshalValue(key, "", "")
			if err != nil {
				return nil, err
			}
			members = append(members, name+": "+obj)
			res.Applied[key] = names(pl.missing)
			res.Created = append(res.Created, key)
		}
		stageAppend(local, buf, root, l, members)
	}

	for _, op := range local.Ops() {
		if op.Side == jsonedit.SideAfter {
			rec.InsertAfter(op.Offset, op.Text)
		} else {
			rec.InsertBefore(op.Offset, op.Text)
		}
	}
	return res, nil
}

// stageAppend records a comma after the last member, if any, and the new
// members in front of the closing brace.
func stageAppend(rec Inserter, buf []byte, obj *jsonast.Node, l layout, members []string) {
	if !l.empty {
		rec.InsertAfter(lastMemberEnd(buf, obj), ",")
	}
	rec.InsertBefore(l.anchor, l.block(members))
}

func (p *Patcher) indent() int {
	if p.DefaultIndent > 0 {
		return p.DefaultIndent
	}
	return 4
}

func (p *Patcher) warnf(format string, args ...any) {
	if p.Reporter != nil {
		p.Reporter.Warnf(format, args...)
	}
}

// decodeManifest decodes buf as strict JSON and requires an object root.
func decodeManifest(buf []byte) (map[string]any, error) {
	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: root must be an object, found %T", ErrInvalidManifest, v)
	}
	return m, nil
}
