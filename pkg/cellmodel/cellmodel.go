// Package cellmodel holds the per-cell character and color primitives that
// drawables emit and the compositor resolves: TerminalChar, BasicDraw, and
// the BasicDrawCreator staging map a drawable fills in during Draw.
package cellmodel

import (
	"github.com/mattn/go-runewidth"

	"github.com/vitrineterm/vitrine/pkg/geom"
)

// Color is an optional 24-bit RGB color. The zero value (Set == false) means
// "terminal default / reset" for that channel.
type Color struct {
	R, G, B uint8
	Set     bool
}

// RGB builds a set color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, Set: true}
}

// TerminalChar is a single character with optional foreground/background
// color. Equality is structural.
type TerminalChar struct {
	Char rune
	FG   Color
	BG   Color
}

// NewTerminalChar builds a TerminalChar with both colors unset (default).
func NewTerminalChar(r rune) TerminalChar {
	return TerminalChar{Char: r}
}

// Equal reports structural equality.
func (t TerminalChar) Equal(o TerminalChar) bool {
	return t == o
}

// Width reports the terminal display width of the character (1 for most
// glyphs, 2 for wide CJK glyphs, 0 for control/zero-width runes).
func (t TerminalChar) Width() int {
	return runewidth.RuneWidth(t.Char)
}

// BasicDraw is a single styled-character placement in a drawable's local
// coordinate space.
type BasicDraw struct {
	Point geom.Point
	Char  TerminalChar
}

// BasicDrawCreator accumulates BasicDraw placements keyed by position; the
// last write at a position wins. It supports merging with an offset and
// flattening to an ordered []BasicDraw.
type BasicDrawCreator struct {
	cells map[geom.Point]TerminalChar
	// order preserves insertion order for deterministic flattening.
	order []geom.Point
}

// NewBasicDrawCreator returns an empty creator.
func NewBasicDrawCreator() *BasicDrawCreator {
	return &BasicDrawCreator{cells: make(map[geom.Point]TerminalChar)}
}

// Set records a character at p, overwriting any prior value there.
func (c *BasicDrawCreator) Set(p geom.Point, ch TerminalChar) {
	if _, exists := c.cells[p]; !exists {
		c.order = append(c.order, p)
	}
	c.cells[p] = ch
}

// Get returns the character at p, if any.
func (c *BasicDrawCreator) Get(p geom.Point) (TerminalChar, bool) {
	ch, ok := c.cells[p]
	return ch, ok
}

// Len reports how many distinct positions have been written.
func (c *BasicDrawCreator) Len() int {
	return len(c.order)
}

// Merge folds another creator's contents into c, shifting every point by
// offset. Later writes (from other) win on collision.
func (c *BasicDrawCreator) Merge(other *BasicDrawCreator, offset geom.Point) {
	for _, p := range other.order {
		ch := other.cells[p]
		c.Set(p.Add(offset), ch)
	}
}

// BoundingBox returns the smallest rect containing every written point, and
// false if the creator is empty.
func (c *BasicDrawCreator) BoundingBox() (geom.Rect, bool) {
	if len(c.order) == 0 {
		return geom.Rect{}, false
	}
	r := geom.Rect{P1: c.order[0], P2: c.order[0]}
	for _, p := range c.order[1:] {
		r = geom.Union(r, geom.Rect{P1: p, P2: p})
	}
	return r, true
}

// Flatten returns the accumulated placements as an ordered slice of
// BasicDraw in insertion order.
func (c *BasicDrawCreator) Flatten() []BasicDraw {
	out := make([]BasicDraw, 0, len(c.order))
	for _, p := range c.order {
		out = append(out, BasicDraw{Point: p, Char: c.cells[p]})
	}
	return out
}
