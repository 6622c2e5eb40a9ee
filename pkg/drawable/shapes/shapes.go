// Package shapes implements the concrete drawables (§4.11): rectangles,
// circles, polygons, lines, text, and sprite/video primitives built on top
// of the Drawable capability and its pointed-accessor variants.
package shapes

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/vitrineterm/vitrine/pkg/cellmodel"
	"github.com/vitrineterm/vitrine/pkg/drawable"
	"github.com/vitrineterm/vitrine/pkg/geom"
	"github.com/vitrineterm/vitrine/pkg/interval"
	"github.com/vitrineterm/vitrine/pkg/spritesrc"
)

// Rect draws an axis-aligned rectangle: a Thickness-deep border and/or a
// fill, between two corners. It fits its owning screen's area on
// FitToScreen.
type Rect struct {
	P1, P2    geom.Point
	Border    *cellmodel.TerminalChar
	Fill      *cellmodel.TerminalChar
	Thickness int
}

func (r *Rect) normalized() geom.Rect {
	return geom.Rect{P1: r.P1, P2: r.P2}.Normalized()
}

func (r *Rect) Draw(drawable.SpriteProvider) (*cellmodel.BasicDrawCreator, error) {
	out := cellmodel.NewBasicDrawCreator()
	rect := r.normalized()
	thickness := r.Thickness
	if thickness <= 0 {
		thickness = 1
	}
	if r.Fill != nil {
		for y := rect.P1.Y; y <= rect.P2.Y; y++ {
			for x := rect.P1.X; x <= rect.P2.X; x++ {
				out.Set(geom.Point{X: x, Y: y}, *r.Fill)
			}
		}
	}
	if r.Border != nil {
		for y := rect.P1.Y; y <= rect.P2.Y; y++ {
			for x := rect.P1.X; x <= rect.P2.X; x++ {
				distX := min(x-rect.P1.X, rect.P2.X-x)
				distY := min(y-rect.P1.Y, rect.P2.Y-y)
				if min(distX, distY) < thickness {
					out.Set(geom.Point{X: x, Y: y}, *r.Border)
				}
			}
		}
	}
	return out, nil
}

func (r *Rect) BoundingIV(drawable.SpriteProvider) (*interval.Creator, bool) {
	c := interval.NewCreator()
	c.RegisterRect(r.normalized())
	return c, true
}

func (r *Rect) Size(drawable.SpriteProvider) (int, int) {
	n := r.normalized()
	return n.Width(), n.Height()
}

func (r *Rect) GetTopLeft() (geom.Point, bool) { return r.normalized().P1, true }

func (r *Rect) Start() geom.Point     { return r.P1 }
func (r *Rect) End() geom.Point       { return r.P2 }
func (r *Rect) SetStart(p geom.Point) { r.P1 = p }
func (r *Rect) SetEnd(p geom.Point)   { r.P2 = p }

// FitToScreen stretches the rectangle to exactly cover rect.
func (r *Rect) FitToScreen(rect geom.Rect) {
	n := rect.Normalized()
	r.P1, r.P2 = n.P1, n.P2
}

// Circle draws a midpoint-rasterized circle outline and/or a filled disc.
type Circle struct {
	Center geom.Point
	Radius int
	Border *cellmodel.TerminalChar
	Fill   *cellmodel.TerminalChar
}

func (c *Circle) Draw(drawable.SpriteProvider) (*cellmodel.BasicDrawCreator, error) {
	out := cellmodel.NewBasicDrawCreator()
	if c.Radius < 0 {
		return out, nil
	}
	if c.Fill != nil {
		for dy := -c.Radius; dy <= c.Radius; dy++ {
			half := rowHalfWidth(c.Radius, dy)
			for dx := -half; dx <= half; dx++ {
				out.Set(geom.Point{X: c.Center.X + dx, Y: c.Center.Y + dy}, *c.Fill)
			}
		}
	}
	if c.Border != nil {
		for _, p := range midpointCirclePoints(c.Radius) {
			out.Set(geom.Point{X: c.Center.X + p.X, Y: c.Center.Y + p.Y}, *c.Border)
		}
	}
	return out, nil
}

func rowHalfWidth(radius, dy int) int {
	v := radius*radius - dy*dy
	if v < 0 {
		return -1
	}
	return int(math.Sqrt(float64(v)))
}

// midpointCirclePoints returns the 8-way symmetric points of a circle of
// the given radius, centered at the origin, via the midpoint algorithm.
func midpointCirclePoints(radius int) []geom.Point {
	if radius == 0 {
		return []geom.Point{{X: 0, Y: 0}}
	}
	var pts []geom.Point
	x, y := radius, 0
	err := 1 - radius
	for x >= y {
		pts = append(pts,
			geom.Point{X: x, Y: y}, geom.Point{X: y, Y: x},
			geom.Point{X: -y, Y: x}, geom.Point{X: -x, Y: y},
			geom.Point{X: -x, Y: -y}, geom.Point{X: -y, Y: -x},
			geom.Point{X: y, Y: -x}, geom.Point{X: x, Y: -y},
		)
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2*(y-x) + 1
		}
	}
	return pts
}

func (c *Circle) BoundingIV(drawable.SpriteProvider) (*interval.Creator, bool) {
	creator := interval.NewCreator()
	creator.RegisterRect(geom.Rect{
		P1: geom.Point{X: c.Center.X - c.Radius, Y: c.Center.Y - c.Radius},
		P2: geom.Point{X: c.Center.X + c.Radius, Y: c.Center.Y + c.Radius},
	})
	return creator, true
}

func (c *Circle) Size(drawable.SpriteProvider) (int, int) {
	d := 2*c.Radius + 1
	return d, d
}

func (c *Circle) GetTopLeft() (geom.Point, bool) {
	return geom.Point{X: c.Center.X - c.Radius, Y: c.Center.Y - c.Radius}, true
}

func (c *Circle) Point() geom.Point      { return c.Center }
func (c *Circle) SetPoint(p geom.Point)  { c.Center = p }

// Polygon draws an edge-walked border and/or a scanline-filled interior
// over an ordered, implicitly-closed vertex list.
type Polygon struct {
	Points []geom.Point
	Border *cellmodel.TerminalChar
	Fill   *cellmodel.TerminalChar
}

func (p *Polygon) Draw(drawable.SpriteProvider) (*cellmodel.BasicDrawCreator, error) {
	out := cellmodel.NewBasicDrawCreator()
	if len(p.Points) < 2 {
		return out, nil
	}
	if p.Fill != nil {
		scanlineFill(out, p.Points, *p.Fill)
	}
	if p.Border != nil {
		n := len(p.Points)
		for i := 0; i < n; i++ {
			bresenhamLine(out, p.Points[i], p.Points[(i+1)%n], *p.Border)
		}
	}
	return out, nil
}

// scanlineFill rasterizes the polygon interior using the standard
// even-odd edge-crossing scanline algorithm.
func scanlineFill(out *cellmodel.BasicDrawCreator, pts []geom.Point, ch cellmodel.TerminalChar) {
	if len(pts) < 3 {
		return
	}
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts {
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}
	n := len(pts)
	for y := minY; y <= maxY; y++ {
		var xs []int
		for i := 0; i < n; i++ {
			a, b := pts[i], pts[(i+1)%n]
			if a.Y == b.Y {
				continue
			}
			y1, y2, x1, x2 := a.Y, b.Y, a.X, b.X
			if y1 > y2 {
				y1, y2, x1, x2 = y2, y1, x2, x1
			}
			if y < y1 || y >= y2 {
				continue
			}
			t := float64(y-y1) / float64(y2-y1)
			xs = append(xs, int(math.Round(float64(x1)+t*float64(x2-x1))))
		}
		sort.Ints(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for x := xs[i]; x <= xs[i+1]; x++ {
				out.Set(geom.Point{X: x, Y: y}, ch)
			}
		}
	}
}

func (p *Polygon) BoundingIV(drawable.SpriteProvider) (*interval.Creator, bool) {
	if len(p.Points) == 0 {
		return nil, false
	}
	c := interval.NewCreator()
	c.RegisterRect(polygonBounds(p.Points))
	return c, true
}

func polygonBounds(pts []geom.Point) geom.Rect {
	r := geom.Rect{P1: pts[0], P2: pts[0]}
	for _, p := range pts[1:] {
		r = geom.Union(r, geom.Rect{P1: p, P2: p})
	}
	return r
}

func (p *Polygon) Size(drawable.SpriteProvider) (int, int) {
	if len(p.Points) == 0 {
		return 0, 0
	}
	b := polygonBounds(p.Points)
	return b.Width(), b.Height()
}

func (p *Polygon) GetTopLeft() (geom.Point, bool) {
	if len(p.Points) == 0 {
		return geom.Point{}, false
	}
	return polygonBounds(p.Points).P1, true
}

func (p *Polygon) PointAt(i int) geom.Point     { return p.Points[i] }
func (p *Polygon) SetPointAt(i int, pt geom.Point) { p.Points[i] = pt }
func (p *Polygon) ReplacePoints(pts []geom.Point)  { p.Points = pts }
func (p *Polygon) PointCount() int                 { return len(p.Points) }

// Line draws a single Bresenham-rasterized segment between two endpoints.
// The endpoints are unexported because DoublePointed requires Start/End
// accessor methods of the same name; construct with NewLine.
type Line struct {
	start, end geom.Point
	Char       cellmodel.TerminalChar
}

// NewLine builds a Line between start and end.
func NewLine(start, end geom.Point, ch cellmodel.TerminalChar) *Line {
	return &Line{start: start, end: end, Char: ch}
}

func (l *Line) Draw(drawable.SpriteProvider) (*cellmodel.BasicDrawCreator, error) {
	out := cellmodel.NewBasicDrawCreator()
	bresenhamLine(out, l.start, l.end, l.Char)
	return out, nil
}

func bresenhamLine(out *cellmodel.BasicDrawCreator, a, b geom.Point, ch cellmodel.TerminalChar) {
	dx := absInt(b.X - a.X)
	dy := -absInt(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy
	x, y := a.X, a.Y
	for {
		out.Set(geom.Point{X: x, Y: y}, ch)
		if x == b.X && y == b.Y {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (l *Line) lineBounds() geom.Rect {
	return geom.Rect{P1: l.start, P2: l.end}.Normalized()
}

func (l *Line) BoundingIV(drawable.SpriteProvider) (*interval.Creator, bool) {
	c := interval.NewCreator()
	c.RegisterRect(l.lineBounds())
	return c, true
}

func (l *Line) Size(drawable.SpriteProvider) (int, int) {
	b := l.lineBounds()
	return b.Width(), b.Height()
}

func (l *Line) GetTopLeft() (geom.Point, bool) { return l.lineBounds().P1, true }

func (l *Line) Start() geom.Point     { return l.start }
func (l *Line) End() geom.Point       { return l.end }
func (l *Line) SetStart(p geom.Point) { l.start = p }
func (l *Line) SetEnd(p geom.Point)   { l.end = p }

// Text draws a block of text, one TerminalChar per rune, at Origin. Embedded
// newlines start a new row; there is no word wrapping.
type Text struct {
	Origin  geom.Point
	Content string
	Style   cellmodel.TerminalChar
}

func (t *Text) lines() []string { return strings.Split(t.Content, "\n") }

func (t *Text) Draw(drawable.SpriteProvider) (*cellmodel.BasicDrawCreator, error) {
	out := cellmodel.NewBasicDrawCreator()
	for y, line := range t.lines() {
		x := 0
		for _, r := range line {
			ch := t.Style
			ch.Char = r
			out.Set(geom.Point{X: t.Origin.X + x, Y: t.Origin.Y + y}, ch)
			x++
		}
	}
	return out, nil
}

func (t *Text) textSize() (int, int) {
	lines := t.lines()
	width := 0
	for _, line := range lines {
		width = max(width, len([]rune(line)))
	}
	return width, len(lines)
}

func (t *Text) BoundingIV(drawable.SpriteProvider) (*interval.Creator, bool) {
	w, h := t.textSize()
	if w == 0 || h == 0 {
		return nil, false
	}
	c := interval.NewCreator()
	c.RegisterRect(geom.Rect{P1: t.Origin, P2: geom.Point{X: t.Origin.X + w - 1, Y: t.Origin.Y + h - 1}})
	return c, true
}

func (t *Text) Size(drawable.SpriteProvider) (int, int) { return t.textSize() }
func (t *Text) GetTopLeft() (geom.Point, bool)          { return t.Origin, true }
func (t *Text) Point() geom.Point                       { return t.Origin }
func (t *Text) SetPoint(p geom.Point)                   { t.Origin = p }

// Sprite draws a single still frame addressed within a registered sprite
// video by FrameIdent.
type Sprite struct {
	Origin   geom.Point
	SpriteID string
	Frame    spritesrc.FrameIdent
}

func (s *Sprite) resolve(sprites drawable.SpriteProvider) (spritesrc.AsciiSprite, error) {
	return sprites.Frame(s.SpriteID, s.Frame)
}

func (s *Sprite) Draw(sprites drawable.SpriteProvider) (*cellmodel.BasicDrawCreator, error) {
	out := cellmodel.NewBasicDrawCreator()
	frame, err := s.resolve(sprites)
	if err != nil {
		return out, err
	}
	writeSprite(out, s.Origin, frame)
	return out, nil
}

func writeSprite(out *cellmodel.BasicDrawCreator, origin geom.Point, frame spritesrc.AsciiSprite) {
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			ch, ok := frame.At(x, y)
			if !ok {
				continue
			}
			out.Set(geom.Point{X: origin.X + x, Y: origin.Y + y}, ch)
		}
	}
}

func (s *Sprite) BoundingIV(sprites drawable.SpriteProvider) (*interval.Creator, bool) {
	frame, err := s.resolve(sprites)
	if err != nil {
		return nil, false
	}
	c := interval.NewCreator()
	c.RegisterRect(geom.Rect{P1: s.Origin, P2: geom.Point{X: s.Origin.X + frame.Width - 1, Y: s.Origin.Y + frame.Height - 1}})
	return c, true
}

func (s *Sprite) Size(sprites drawable.SpriteProvider) (int, int) {
	frame, err := s.resolve(sprites)
	if err != nil {
		return 0, 0
	}
	return frame.Width, frame.Height
}

func (s *Sprite) GetTopLeft() (geom.Point, bool) { return s.Origin, true }
func (s *Sprite) Point() geom.Point              { return s.Origin }
func (s *Sprite) SetPoint(p geom.Point)          { s.Origin = p }

// VideoStream advances an internal frame cursor by elapsed wall time and
// draws whichever frame of its registered video that cursor currently
// addresses. It fits its owning screen by repositioning its Origin; the
// underlying sprite frames are not resampled to a new size.
type VideoStream struct {
	Origin    geom.Point
	SpriteID  string
	FrameRate time.Duration

	started     bool
	lastAdvance time.Time
	frameIndex  uint16
}

func (v *VideoStream) advance() {
	now := time.Now()
	if !v.started {
		v.started = true
		v.lastAdvance = now
		v.frameIndex = 1
		return
	}
	if v.FrameRate <= 0 {
		return
	}
	elapsed := now.Sub(v.lastAdvance)
	steps := int(elapsed / v.FrameRate)
	if steps <= 0 {
		return
	}
	v.frameIndex += uint16(steps)
	v.lastAdvance = v.lastAdvance.Add(time.Duration(steps) * v.FrameRate)
}

func (v *VideoStream) currentIdent() spritesrc.FrameIdent {
	if v.frameIndex == 0 {
		return spritesrc.FirstFrame()
	}
	return spritesrc.Nth(v.frameIndex)
}

// resolve returns the frame the current cursor addresses, wrapping back to
// the first frame once the cursor has advanced past the last one.
func (v *VideoStream) resolve(sprites drawable.SpriteProvider) (spritesrc.AsciiSprite, error) {
	frame, err := sprites.Frame(v.SpriteID, v.currentIdent())
	if err == nil {
		return frame, nil
	}
	v.frameIndex = 1
	return sprites.Frame(v.SpriteID, spritesrc.FirstFrame())
}

func (v *VideoStream) Draw(sprites drawable.SpriteProvider) (*cellmodel.BasicDrawCreator, error) {
	out := cellmodel.NewBasicDrawCreator()
	v.advance()
	frame, err := v.resolve(sprites)
	if err != nil {
		return out, err
	}
	writeSprite(out, v.Origin, frame)
	return out, nil
}

func (v *VideoStream) BoundingIV(sprites drawable.SpriteProvider) (*interval.Creator, bool) {
	frame, err := v.resolve(sprites)
	if err != nil {
		return nil, false
	}
	c := interval.NewCreator()
	c.RegisterRect(geom.Rect{P1: v.Origin, P2: geom.Point{X: v.Origin.X + frame.Width - 1, Y: v.Origin.Y + frame.Height - 1}})
	return c, true
}

func (v *VideoStream) Size(sprites drawable.SpriteProvider) (int, int) {
	frame, err := v.resolve(sprites)
	if err != nil {
		return 0, 0
	}
	return frame.Width, frame.Height
}

func (v *VideoStream) GetTopLeft() (geom.Point, bool) { return v.Origin, true }
func (v *VideoStream) Point() geom.Point              { return v.Origin }
func (v *VideoStream) SetPoint(p geom.Point)          { v.Origin = p }

// FitToScreen repositions the stream's origin to rect's top-left.
func (v *VideoStream) FitToScreen(rect geom.Rect) {
	v.Origin = rect.Normalized().P1
}
