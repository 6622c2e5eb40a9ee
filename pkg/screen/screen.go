// Package screen implements the screen (C6): a rectangular viewport on the
// cell buffer, at a z-layer, owning an ordered list of object handles.
package screen

import (
	"github.com/vitrineterm/vitrine/pkg/cellbuf"
	"github.com/vitrineterm/vitrine/pkg/drawable"
	"github.com/vitrineterm/vitrine/pkg/geom"
	"github.com/vitrineterm/vitrine/pkg/registry"
)

// Coord is one axis of a screen-relative corner: either an absolute offset
// from 0, or an offset measured back from the terminal's extent on that
// axis (FromEnd), so a screen can track "bottom-right minus 2".
type Coord struct {
	Offset  int
	FromEnd bool
}

// Abs builds an absolute (non-terminal-relative) coordinate.
func Abs(v int) Coord { return Coord{Offset: v} }

// FromEndCoord builds a coordinate measured back from the terminal extent.
func FromEndCoord(v int) Coord { return Coord{Offset: v, FromEnd: true} }

// Resolve computes the absolute coordinate given the terminal's extent on
// this axis.
func (c Coord) Resolve(extent int) int {
	if c.FromEnd {
		return extent - c.Offset
	}
	return c.Offset
}

// RelPoint is a point whose axes may each be absolute or terminal-relative.
type RelPoint struct {
	X, Y Coord
}

// AbsPoint builds a RelPoint anchored at absolute coordinates.
func AbsPoint(p geom.Point) RelPoint {
	return RelPoint{X: Abs(p.X), Y: Abs(p.Y)}
}

// Resolve computes the absolute Point given the terminal size.
func (p RelPoint) Resolve(terminalSize geom.Point) geom.Point {
	return geom.Point{X: p.X.Resolve(terminalSize.X), Y: p.Y.Resolve(terminalSize.Y)}
}

// AreaKind distinguishes a full-screen area from one delimited by corners.
type AreaKind int

const (
	FullScreen AreaKind = iota
	FromPoints
)

// AreaRect is a screen's viewport, resolved against the terminal size.
type AreaRect struct {
	Kind   AreaKind
	P1, P2 RelPoint
}

// NewFullScreenArea returns an area that always covers the whole terminal.
func NewFullScreenArea() AreaRect {
	return AreaRect{Kind: FullScreen}
}

// NewAreaFromPoints returns an area delimited by two (possibly
// terminal-relative) corners.
func NewAreaFromPoints(p1, p2 RelPoint) AreaRect {
	return AreaRect{Kind: FromPoints, P1: p1, P2: p2}
}

// Resolve computes the absolute, normalized Rect for terminalSize.
func (a AreaRect) Resolve(terminalSize geom.Point) geom.Rect {
	if a.Kind == FullScreen {
		return geom.Rect{P1: geom.Point{}, P2: geom.Point{X: terminalSize.X - 1, Y: terminalSize.Y - 1}}
	}
	return geom.Rect{P1: a.P1.Resolve(terminalSize), P2: a.P2.Resolve(terminalSize)}.Normalized()
}

// Screen is a z-layered viewport owning an ordered set of object handles.
type Screen struct {
	Key          string
	Layer        int
	Area         AreaRect
	TerminalSize geom.Point
	objects      []registry.Handle
}

// New constructs a Screen at key, layer, area, sized to terminalSize.
func New(key string, layer int, area AreaRect, terminalSize geom.Point) *Screen {
	return &Screen{Key: key, Layer: layer, Area: area, TerminalSize: terminalSize}
}

// RegisterDrawable appends h to the screen's ordered object list if it is
// not already present.
func (s *Screen) RegisterDrawable(h registry.Handle) {
	for _, existing := range s.objects {
		if existing == h {
			return
		}
	}
	s.objects = append(s.objects, h)
}

// DeregisterDrawable removes h from the screen's object list, if present.
func (s *Screen) DeregisterDrawable(h registry.Handle) {
	for i, existing := range s.objects {
		if existing == h {
			s.objects = append(s.objects[:i], s.objects[i+1:]...)
			return
		}
	}
}

// Owns reports whether h is currently registered on this screen.
func (s *Screen) Owns(h registry.Handle) bool {
	for _, existing := range s.objects {
		if existing == h {
			return true
		}
	}
	return false
}

// Objects returns the screen's ordered object handles.
func (s *Screen) Objects() []registry.Handle {
	return s.objects
}

// RenderDrawable draws h into buf at the screen's current absolute rect
// and layer. A no-op if the screen does not own h; returns
// DrawableHandleNotFound if the registry does not have the object.
func (s *Screen) RenderDrawable(h registry.Handle, buf *cellbuf.Buffer, reg *registry.Registry, sprites drawable.SpriteProvider) error {
	if !s.Owns(h) {
		return nil
	}
	obj, err := reg.Get(h)
	if err != nil {
		return err
	}
	bounds := s.Area.Resolve(s.TerminalSize)
	return buf.AddToBuffer(obj.Drawable, obj.Shaders, cellbuf.Handle(h.ObjectID)^screenSalt(h.ScreenKey), s.Layer, int(obj.Layer), bounds, sprites)
}

// RemoveDrawable erases h's cells from buf using the screen's current rect.
func (s *Screen) RemoveDrawable(h registry.Handle, buf *cellbuf.Buffer, reg *registry.Registry, sprites drawable.SpriteProvider) error {
	obj, err := reg.Get(h)
	if err != nil {
		return err
	}
	bounds := s.Area.Resolve(s.TerminalSize)
	return buf.RemoveFromBuffer(obj.Drawable, cellbuf.Handle(h.ObjectID)^screenSalt(h.ScreenKey), sprites, bounds)
}

// RenderAll renders every object the screen owns, in registration order.
func (s *Screen) RenderAll(buf *cellbuf.Buffer, reg *registry.Registry, sprites drawable.SpriteProvider) error {
	for _, h := range s.objects {
		if err := s.RenderDrawable(h, buf, reg, sprites); err != nil {
			return err
		}
	}
	return nil
}

// RemoveAll erases every object the screen owns from buf.
func (s *Screen) RemoveAll(buf *cellbuf.Buffer, reg *registry.Registry, sprites drawable.SpriteProvider) error {
	for _, h := range s.objects {
		if err := s.RemoveDrawable(h, buf, reg, sprites); err != nil {
			return err
		}
	}
	return nil
}

// ChangeArea is a pure field update; the orchestrator sequences the
// surrounding remove-all / fit / render-all calls.
func (s *Screen) ChangeArea(area AreaRect) {
	s.Area = area
}

// ChangeLayer is a pure field update.
func (s *Screen) ChangeLayer(layer int) {
	s.Layer = layer
}

// FitToContents sets the screen's area to the union of its children's
// bounding boxes, in absolute coordinates. A no-op if the screen owns no
// objects.
func (s *Screen) FitToContents(reg *registry.Registry, sprites drawable.SpriteProvider) error {
	if len(s.objects) == 0 {
		return nil
	}
	base := s.Area.Resolve(s.TerminalSize).P1

	var union geom.Rect
	first := true
	for _, h := range s.objects {
		obj, err := reg.Get(h)
		if err != nil {
			return err
		}
		topLeft, ok := obj.Drawable.GetTopLeft()
		if !ok {
			topLeft = geom.Point{}
		}
		w, ht := obj.Drawable.Size(sprites)
		if w <= 0 {
			w = 1
		}
		if ht <= 0 {
			ht = 1
		}
		p1 := topLeft.Add(base)
		r := geom.Rect{P1: p1, P2: geom.Point{X: p1.X + w - 1, Y: p1.Y + ht - 1}}
		if first {
			union, first = r, false
		} else {
			union = geom.Union(union, r)
		}
	}
	s.Area = NewAreaFromPoints(AbsPoint(union.P1), AbsPoint(union.P2))
	return nil
}

// screenSalt folds a screen key into a cellbuf.Handle component so that
// object ids, which are dense per-screen, do not collide across screens
// sharing the same cell buffer.
func screenSalt(screenKey string) cellbuf.Handle {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(screenKey); i++ {
		h ^= uint64(screenKey[i])
		h *= 1099511628211
	}
	return cellbuf.Handle(h)
}
