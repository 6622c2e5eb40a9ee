// Package shader implements the Shader capability (§4.2): a per-BasicDraw
// transform applied in registration order, before clipping to screen
// bounds. Shaders may alter color or position relative to a frame size and
// top-left origin.
package shader

import (
	"github.com/vitrineterm/vitrine/pkg/cellmodel"
	"github.com/vitrineterm/vitrine/pkg/geom"
)

// Shader transforms one BasicDraw in place given the drawable's frame size
// and local top-left.
type Shader interface {
	Apply(d *cellmodel.BasicDraw, frameSize geom.Point, topLeft geom.Point)
}

// Chain applies a sequence of shaders in registration order.
type Chain []Shader

// Apply runs every shader in the chain over d, in order.
func (c Chain) Apply(d *cellmodel.BasicDraw, frameSize, topLeft geom.Point) {
	for _, s := range c {
		s.Apply(d, frameSize, topLeft)
	}
}

// ShaderFunc adapts a function to the Shader interface.
type ShaderFunc func(d *cellmodel.BasicDraw, frameSize, topLeft geom.Point)

func (f ShaderFunc) Apply(d *cellmodel.BasicDraw, frameSize, topLeft geom.Point) {
	f(d, frameSize, topLeft)
}

func saturatingAdd(v uint8, delta int) uint8 {
	n := int(v) + delta
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}

func grayscale(c cellmodel.Color) cellmodel.Color {
	if !c.Set {
		return c
	}
	lum := (uint16(c.R)*30 + uint16(c.G)*59 + uint16(c.B)*11) / 100
	g := uint8(lum)
	return cellmodel.RGB(g, g, g)
}

// Grayscale converts both fg/bg colors to their luminance-weighted gray.
var Grayscale Shader = ShaderFunc(func(d *cellmodel.BasicDraw, _, _ geom.Point) {
	d.Char.FG = grayscale(d.Char.FG)
	d.Char.BG = grayscale(d.Char.BG)
})

// Invert flips each color channel (255 - channel) for set colors.
var Invert Shader = ShaderFunc(func(d *cellmodel.BasicDraw, _, _ geom.Point) {
	invertColor := func(c cellmodel.Color) cellmodel.Color {
		if !c.Set {
			return c
		}
		return cellmodel.RGB(255-c.R, 255-c.G, 255-c.B)
	}
	d.Char.FG = invertColor(d.Char.FG)
	d.Char.BG = invertColor(d.Char.BG)
})

// Brighten adds delta to every RGB channel, saturating at 255.
func Brighten(delta int) Shader {
	return ShaderFunc(func(d *cellmodel.BasicDraw, _, _ geom.Point) {
		adjust := func(c cellmodel.Color) cellmodel.Color {
			if !c.Set {
				return c
			}
			return cellmodel.RGB(saturatingAdd(c.R, delta), saturatingAdd(c.G, delta), saturatingAdd(c.B, delta))
		}
		d.Char.FG = adjust(d.Char.FG)
		d.Char.BG = adjust(d.Char.BG)
	})
}

// Darken subtracts delta from every RGB channel, saturating at 0.
func Darken(delta int) Shader {
	return Brighten(-delta)
}

// SwapFGBG exchanges the foreground and background colors.
var SwapFGBG Shader = ShaderFunc(func(d *cellmodel.BasicDraw, _, _ geom.Point) {
	d.Char.FG, d.Char.BG = d.Char.BG, d.Char.FG
})

// Checkerboard swaps between two characters based on cell parity relative
// to topLeft, in both axes.
func Checkerboard(a, b rune) Shader {
	return ShaderFunc(func(d *cellmodel.BasicDraw, _, topLeft geom.Point) {
		dx := d.Point.X - topLeft.X
		dy := d.Point.Y - topLeft.Y
		if (dx+dy)%2 == 0 {
			d.Char.Char = a
		} else {
			d.Char.Char = b
		}
	})
}

// Stripes swaps between two characters based on row (horizontal) or column
// (vertical) parity relative to topLeft.
func Stripes(a, b rune, horizontal bool) Shader {
	return ShaderFunc(func(d *cellmodel.BasicDraw, _, topLeft geom.Point) {
		var parity int
		if horizontal {
			parity = (d.Point.Y - topLeft.Y) % 2
		} else {
			parity = (d.Point.X - topLeft.X) % 2
		}
		if parity == 0 {
			d.Char.Char = a
		} else {
			d.Char.Char = b
		}
	})
}

// ToUpper uppercases letter runes, leaving non-letters untouched.
var ToUpper Shader = ShaderFunc(func(d *cellmodel.BasicDraw, _, _ geom.Point) {
	if r := d.Char.Char; r >= 'a' && r <= 'z' {
		d.Char.Char = r - ('a' - 'A')
	}
})

// ToLower lowercases letter runes, leaving non-letters untouched.
var ToLower Shader = ShaderFunc(func(d *cellmodel.BasicDraw, _, _ geom.Point) {
	if r := d.Char.Char; r >= 'A' && r <= 'Z' {
		d.Char.Char = r + ('a' - 'A')
	}
})

// FlipHorizontal mirrors the point's x coordinate within frameSize about
// topLeft.
var FlipHorizontal Shader = ShaderFunc(func(d *cellmodel.BasicDraw, frameSize, topLeft geom.Point) {
	localX := d.Point.X - topLeft.X
	d.Point.X = topLeft.X + (frameSize.X - 1 - localX)
})

// FlipVertical mirrors the point's y coordinate within frameSize about
// topLeft.
var FlipVertical Shader = ShaderFunc(func(d *cellmodel.BasicDraw, frameSize, topLeft geom.Point) {
	localY := d.Point.Y - topLeft.Y
	d.Point.Y = topLeft.Y + (frameSize.Y - 1 - localY)
})

// FlipDiagonal swaps the point's local x and y coordinates about topLeft.
var FlipDiagonal Shader = ShaderFunc(func(d *cellmodel.BasicDraw, _, topLeft geom.Point) {
	localX := d.Point.X - topLeft.X
	localY := d.Point.Y - topLeft.Y
	d.Point.X = topLeft.X + localY
	d.Point.Y = topLeft.Y + localX
})
