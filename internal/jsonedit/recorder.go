package jsonedit

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
)

// ErrOffsetOutOfRange is returned by Apply when an anchor lies outside the buffer.
var ErrOffsetOutOfRange = errors.New("edit offset out of range")

// Side says which neighbour an inserted text sticks to.
type Side int

const (
	// SideAfter attaches the text to the byte preceding the anchor.
	SideAfter Side = iota
	// SideBefore attaches the text to the byte following the anchor.
	SideBefore
)

func (s Side) String() string {
	if s == SideBefore {
		return "before"
	}
	return "after"
}

// Op is a single staged insertion.
type Op struct {
	Offset int
	Side   Side
	Text   string
}

// Recorder accumulates insertions against an original buffer.
// A Recorder is not safe for concurrent use.
type Recorder struct {
	ops []Op
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// InsertAfter stages text right after the content ending at offset.
func (r *Recorder) InsertAfter(offset int, text string) {
	r.ops = append(r.ops, Op{Offset: offset, Side: SideAfter, Text: text})
}

// InsertBefore stages text right before the content starting at offset.
func (r *Recorder) InsertBefore(offset int, text string) {
	r.ops = append(r.ops, Op{Offset: offset, Side: SideBefore, Text: text})
}

// Len returns the number of staged operations.
func (r *Recorder) Len() int {
	return len(r.ops)
}

// Ops returns a copy of the staged operations in call order.
func (r *Recorder) Ops() []Op {
	out := make([]Op, len(r.ops))
	copy(out, r.ops)
	return out
}

// Apply splices every staged insertion into a copy of original and returns it.
// At a shared anchor, SideAfter texts come first and SideBefore texts second;
// within a side, texts are concatenated in call order. original is never modified.
func (r *Recorder) Apply(original []byte) ([]byte, error) {
	for _, op := range r.ops {
		if op.Offset < 0 || op.Offset > len(original) {
			return nil, fmt.Errorf("%w: %d not in [0, %d]", ErrOffsetOutOfRange, op.Offset, len(original))
		}
	}

	ops := r.Ops()
	// Stable sort keeps call order within (offset, side).
	sort.SliceStable(ops, func(i, j int) bool {
		if ops[i].Offset != ops[j].Offset {
			return ops[i].Offset < ops[j].Offset
		}
		return ops[i].Side < ops[j].Side
	})

	size := len(original)
	for _, op := range ops {
		size += len(op.Text)
	}

	var buf bytes.Buffer
	buf.Grow(size)
	pos := 0
	for _, op := range ops {
		buf.Write(original[pos:op.Offset])
		buf.WriteString(op.Text)
		pos = op.Offset
	}
	buf.Write(original[pos:])
	return buf.Bytes(), nil
}
