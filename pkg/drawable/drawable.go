// Package drawable defines the Drawable capability (§4.1): the contract
// every graphical primitive satisfies, plus the optional pointed-accessor
// and screen-fitting capabilities the orchestrator uses to implement
// generic move/replace/resize operations.
package drawable

import (
	"github.com/vitrineterm/vitrine/pkg/cellmodel"
	"github.com/vitrineterm/vitrine/pkg/geom"
	"github.com/vitrineterm/vitrine/pkg/interval"
	"github.com/vitrineterm/vitrine/pkg/spritesrc"
)

// SpriteProvider resolves a sprite frame by id; concrete drawables that
// reference sprites call Frame during Draw.
type SpriteProvider interface {
	Frame(id string, ident spritesrc.FrameIdent) (spritesrc.AsciiSprite, error)
}

// Drawable is the capability every graphical primitive implements.
type Drawable interface {
	// Draw produces the raw cell contributions in local coordinate space.
	// It must not clip or layer; it may mutate internal animation state.
	Draw(sprites SpriteProvider) (*cellmodel.BasicDrawCreator, error)

	// BoundingIV returns a conservative over-approximation, in local
	// coordinates, of the cells Draw will touch. ok == false means "treat
	// as full screen".
	BoundingIV(sprites SpriteProvider) (creator *interval.Creator, ok bool)

	// Size returns the bounding-box extent used to frame shaders.
	Size(sprites SpriteProvider) (width, height int)

	// GetTopLeft returns the drawable-local origin used as the shader
	// coordinate base. ok == false means the drawable reports no origin;
	// the cell buffer then uses (0,0) and does not consult the
	// pointed-accessor capabilities.
	GetTopLeft() (p geom.Point, ok bool)
}

// SinglePointed is implemented by drawables positioned by one point.
type SinglePointed interface {
	Point() geom.Point
	SetPoint(p geom.Point)
}

// DoublePointed is implemented by drawables positioned by two endpoints.
type DoublePointed interface {
	Start() geom.Point
	End() geom.Point
	SetStart(p geom.Point)
	SetEnd(p geom.Point)
}

// MultiPointed is implemented by drawables positioned by an ordered vertex
// list (e.g. polygons).
type MultiPointed interface {
	PointAt(i int) geom.Point
	SetPointAt(i int, p geom.Point)
	ReplacePoints(pts []geom.Point)
	PointCount() int
}

// ScreenFitting is implemented by drawables that can resize themselves to
// fill their owning screen's area.
type ScreenFitting interface {
	FitToScreen(rect geom.Rect)
}

// MoveTo translates d to put its top-left-equivalent anchor at p, using
// whichever pointed-accessor capability d implements. It is a no-op if d
// implements none of them.
func MoveTo(d Drawable, p geom.Point) {
	switch v := d.(type) {
	case DoublePointed:
		delta := p.Sub(v.Start())
		v.SetStart(v.Start().Add(delta))
		v.SetEnd(v.End().Add(delta))
	case SinglePointed:
		v.SetPoint(p)
	case MultiPointed:
		n := v.PointCount()
		if n == 0 {
			return
		}
		delta := p.Sub(v.PointAt(0))
		for i := 0; i < n; i++ {
			v.SetPointAt(i, v.PointAt(i).Add(delta))
		}
	}
}

// MoveBy translates d by (dx, dy) using whichever pointed-accessor
// capability d implements.
func MoveBy(d Drawable, dx, dy int) {
	delta := geom.Point{X: dx, Y: dy}
	switch v := d.(type) {
	case DoublePointed:
		v.SetStart(v.Start().Add(delta))
		v.SetEnd(v.End().Add(delta))
	case SinglePointed:
		v.SetPoint(v.Point().Add(delta))
	case MultiPointed:
		n := v.PointCount()
		for i := 0; i < n; i++ {
			v.SetPointAt(i, v.PointAt(i).Add(delta))
		}
	}
}

// MovePoint overwrites a single indexed point; for Single/DoublePointed,
// index 0 is the (only, or start) point and index 1 is the end point of a
// DoublePointed drawable.
func MovePoint(d Drawable, index int, p geom.Point) {
	switch v := d.(type) {
	case DoublePointed:
		if index == 0 {
			v.SetStart(p)
		} else {
			v.SetEnd(p)
		}
	case SinglePointed:
		v.SetPoint(p)
	case MultiPointed:
		v.SetPointAt(index, p)
	}
}

// ReplacePoints overwrites all of d's points, as far as its capability
// allows: a DoublePointed drawable takes pts[0] and pts[1]; a SinglePointed
// drawable takes pts[0]; a MultiPointed drawable takes the whole slice.
func ReplacePoints(d Drawable, pts []geom.Point) {
	switch v := d.(type) {
	case MultiPointed:
		v.ReplacePoints(pts)
	case DoublePointed:
		if len(pts) > 0 {
			v.SetStart(pts[0])
		}
		if len(pts) > 1 {
			v.SetEnd(pts[1])
		}
	case SinglePointed:
		if len(pts) > 0 {
			v.SetPoint(pts[0])
		}
	}
}

// PointCount reports how many points the orchestrator's
// get_amount_of_points query should return for d.
func PointCount(d Drawable) int {
	switch v := d.(type) {
	case MultiPointed:
		return v.PointCount()
	case DoublePointed:
		return 2
	case SinglePointed:
		return 1
	}
	return 0
}
