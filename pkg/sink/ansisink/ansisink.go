// Package ansisink implements sink.CellSink by writing raw ANSI escape
// sequences to an io.Writer, with no terminal library dependency. It
// exists for headless pipelines and recording use cases where pulling in
// tcell is unwanted.
package ansisink

import (
	"bufio"
	"fmt"
	"io"

	"github.com/vitrineterm/vitrine/pkg/sink"
)

// Sink writes batches as cursor-position plus SGR color sequences onto a
// buffered writer; each SetString call flushes the writer after its batch.
type Sink struct {
	out *bufio.Writer
}

// New wraps w. Callers that pass os.Stdout typically also want to put the
// terminal in raw/alt-screen mode themselves first — this package only
// emits cell content, not mode-switching sequences.
func New(w io.Writer) *Sink {
	return &Sink{out: bufio.NewWriter(w)}
}

// SetString writes one batch's cursor position, its same-style segments,
// and a trailing reset, coalescing consecutive segments that share a
// color to avoid repeating SGR codes.
func (s *Sink) SetString(batch sink.BatchDrawInfo) error {
	fmt.Fprintf(s.out, "\x1b[%d;%dH", batch.Y+1, batch.StartX+1)

	var curFG, curBG sink.Color
	haveFG, haveBG := false, false

	for _, seg := range batch.Segments {
		fg, bg, _ := seg.Style.Decompose()
		if !haveFG || fg != curFG {
			writeForeground(s.out, fg)
			curFG, haveFG = fg, true
		}
		if !haveBG || bg != curBG {
			writeBackground(s.out, bg)
			curBG, haveBG = bg, true
		}
		s.out.WriteString(seg.Text)
	}

	s.out.WriteString("\x1b[0m")
	return s.out.Flush()
}

// Flush is a no-op beyond SetString's own flush: ansisink has no
// in-memory frame to reconcile, so there is nothing to batch across
// multiple SetString calls.
func (s *Sink) Flush() error {
	return s.out.Flush()
}

// Stop resets terminal attributes and flushes any buffered bytes.
func (s *Sink) Stop() error {
	s.out.WriteString("\x1b[0m")
	return s.out.Flush()
}

func writeForeground(w *bufio.Writer, c sink.Color) {
	if c == sink.ColorDefault {
		w.WriteString("\x1b[39m")
		return
	}
	if c.IsRGB() {
		r, g, b := c.RGB()
		fmt.Fprintf(w, "\x1b[38;2;%d;%d;%dm", r, g, b)
		return
	}
	fmt.Fprintf(w, "\x1b[38;5;%dm", int32(c))
}

func writeBackground(w *bufio.Writer, c sink.Color) {
	if c == sink.ColorDefault {
		w.WriteString("\x1b[49m")
		return
	}
	if c.IsRGB() {
		r, g, b := c.RGB()
		fmt.Fprintf(w, "\x1b[48;2;%d;%d;%dm", r, g, b)
		return
	}
	fmt.Fprintf(w, "\x1b[48;5;%dm", int32(c))
}

var _ sink.CellSink = (*Sink)(nil)
