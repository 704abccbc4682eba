// Package trace prints nested, indented debug output around groups of
// low-level bus operations.
//
//	defer tr.Scope("load_program(%d words)", n)()
//	tr.Byte(v, ">> 0x%02X", reg)
//
// prints
//
//	load_program(8 words) {
//	  01000000 >> 0x4F
//	}
//
// A nil *Tracer is valid and prints nothing.
package trace

import (
	"fmt"
	"io"
	"strings"

	"lp55231-go/x/conv"
)

// Tracer is not safe for concurrent use; it shares the single-owner contract
// of the device it traces.
type Tracer struct {
	w     io.Writer
	depth int
}

// New returns a tracer writing to w. A nil w yields a nil (silent) tracer.
func New(w io.Writer) *Tracer {
	if w == nil {
		return nil
	}
	return &Tracer{w: w}
}

// Enabled reports whether output is produced.
func (t *Tracer) Enabled() bool { return t != nil }

// Depth returns the current nesting level.
func (t *Tracer) Depth() int {
	if t == nil {
		return 0
	}
	return t.depth
}

// Scope opens a named block and returns the function that closes it.
// The returned func is safe to call more than once; only the first call
// closes the block.
func (t *Tracer) Scope(format string, args ...any) func() {
	if t == nil {
		return func() {}
	}
	t.line(fmt.Sprintf(format, args...) + " {")
	t.depth++
	closed := false
	return func() {
		if closed {
			return
		}
		closed = true
		if t.depth > 0 {
			t.depth--
		}
		t.line("}")
	}
}

// Textf prints a formatted line at the current depth.
func (t *Tracer) Textf(format string, args ...any) {
	if t == nil {
		return
	}
	t.line(fmt.Sprintf(format, args...))
}

// Byte prints the binary form of v followed by a formatted description.
func (t *Tracer) Byte(v byte, format string, args ...any) {
	if t == nil {
		return
	}
	var b [8]byte
	t.line(string(conv.U8Bin(b[:], v)) + " " + fmt.Sprintf(format, args...))
}

func (t *Tracer) line(s string) {
	_, _ = io.WriteString(t.w, strings.Repeat("  ", t.depth)+s+"\n")
}
