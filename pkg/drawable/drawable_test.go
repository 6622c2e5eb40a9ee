package drawable

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitrineterm/vitrine/pkg/cellmodel"
	"github.com/vitrineterm/vitrine/pkg/geom"
	"github.com/vitrineterm/vitrine/pkg/interval"
)

// drawableStub supplies the Drawable methods so the pointed-accessor fakes
// can be passed where a Drawable is expected.
type drawableStub struct{}

func (drawableStub) Draw(SpriteProvider) (*cellmodel.BasicDrawCreator, error) {
	return cellmodel.NewBasicDrawCreator(), nil
}
func (drawableStub) BoundingIV(SpriteProvider) (*interval.Creator, bool) { return nil, false }
func (drawableStub) Size(SpriteProvider) (int, int)                     { return 0, 0 }
func (drawableStub) GetTopLeft() (geom.Point, bool)                     { return geom.Point{}, false }

type fakeSingle struct {
	drawableStub
	p geom.Point
}

func (f *fakeSingle) Point() geom.Point     { return f.p }
func (f *fakeSingle) SetPoint(p geom.Point) { f.p = p }

type fakeDouble struct {
	drawableStub
	start, end geom.Point
}

func (f *fakeDouble) Start() geom.Point     { return f.start }
func (f *fakeDouble) End() geom.Point       { return f.end }
func (f *fakeDouble) SetStart(p geom.Point) { f.start = p }
func (f *fakeDouble) SetEnd(p geom.Point)   { f.end = p }

type fakeMulti struct {
	drawableStub
	pts []geom.Point
}

func (f *fakeMulti) PointAt(i int) geom.Point        { return f.pts[i] }
func (f *fakeMulti) SetPointAt(i int, p geom.Point)  { f.pts[i] = p }
func (f *fakeMulti) ReplacePoints(pts []geom.Point)  { f.pts = pts }
func (f *fakeMulti) PointCount() int                 { return len(f.pts) }

func TestMoveToSinglePointed(t *testing.T) {
	d := &fakeSingle{p: geom.Point{X: 1, Y: 1}}
	MoveTo(d, geom.Point{X: 9, Y: 9})
	assert.Equal(t, geom.Point{X: 9, Y: 9}, d.p)
}

func TestMoveToDoublePointedPreservesOffset(t *testing.T) {
	d := &fakeDouble{start: geom.Point{X: 0, Y: 0}, end: geom.Point{X: 2, Y: 2}}
	MoveTo(d, geom.Point{X: 5, Y: 5})
	assert.Equal(t, geom.Point{X: 5, Y: 5}, d.start)
	assert.Equal(t, geom.Point{X: 7, Y: 7}, d.end)
}

func TestMoveToMultiPointedShiftsAll(t *testing.T) {
	d := &fakeMulti{pts: []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}}
	MoveTo(d, geom.Point{X: 10, Y: 10})
	assert.Equal(t, []geom.Point{{X: 10, Y: 10}, {X: 11, Y: 10}, {X: 11, Y: 11}}, d.pts)
}

func TestMoveToMultiPointedEmptyIsNoop(t *testing.T) {
	d := &fakeMulti{}
	MoveTo(d, geom.Point{X: 10, Y: 10})
	assert.Empty(t, d.pts)
}

func TestMoveByShiftsEachCapability(t *testing.T) {
	single := &fakeSingle{p: geom.Point{X: 1, Y: 1}}
	MoveBy(single, 2, 3)
	assert.Equal(t, geom.Point{X: 3, Y: 4}, single.p)

	double := &fakeDouble{start: geom.Point{X: 0, Y: 0}, end: geom.Point{X: 1, Y: 1}}
	MoveBy(double, 1, 1)
	assert.Equal(t, geom.Point{X: 1, Y: 1}, double.start)
	assert.Equal(t, geom.Point{X: 2, Y: 2}, double.end)
}

func TestMovePointIndexedAccess(t *testing.T) {
	double := &fakeDouble{start: geom.Point{X: 0, Y: 0}, end: geom.Point{X: 1, Y: 1}}
	MovePoint(double, 0, geom.Point{X: 9, Y: 9})
	assert.Equal(t, geom.Point{X: 9, Y: 9}, double.start)
	MovePoint(double, 1, geom.Point{X: 8, Y: 8})
	assert.Equal(t, geom.Point{X: 8, Y: 8}, double.end)

	multi := &fakeMulti{pts: []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}}
	MovePoint(multi, 1, geom.Point{X: 5, Y: 5})
	assert.Equal(t, geom.Point{X: 5, Y: 5}, multi.pts[1])
}

func TestReplacePointsByCapability(t *testing.T) {
	single := &fakeSingle{}
	ReplacePoints(single, []geom.Point{{X: 3, Y: 3}})
	assert.Equal(t, geom.Point{X: 3, Y: 3}, single.p)

	double := &fakeDouble{}
	ReplacePoints(double, []geom.Point{{X: 1, Y: 1}, {X: 2, Y: 2}})
	assert.Equal(t, geom.Point{X: 1, Y: 1}, double.start)
	assert.Equal(t, geom.Point{X: 2, Y: 2}, double.end)

	multi := &fakeMulti{}
	ReplacePoints(multi, []geom.Point{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}})
	assert.Len(t, multi.pts, 3)
}

func TestPointCountByCapability(t *testing.T) {
	assert.Equal(t, 1, PointCount(&fakeSingle{}))
	assert.Equal(t, 2, PointCount(&fakeDouble{}))
	assert.Equal(t, 3, PointCount(&fakeMulti{pts: make([]geom.Point, 3)}))
}
