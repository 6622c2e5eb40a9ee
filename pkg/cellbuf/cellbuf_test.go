package cellbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrineterm/vitrine/pkg/cellmodel"
	"github.com/vitrineterm/vitrine/pkg/drawable"
	"github.com/vitrineterm/vitrine/pkg/geom"
	"github.com/vitrineterm/vitrine/pkg/interval"
	"github.com/vitrineterm/vitrine/pkg/shader"
	"github.com/vitrineterm/vitrine/pkg/sink"
)

// fakeDrawable draws a fixed set of BasicDraws covering a WxH box; drops
// any point past keep on later calls, simulating an animation that shrinks.
type fakeDrawable struct {
	w, h int
	ch   rune
	keep int // max points to emit, -1 == all
}

func (f *fakeDrawable) Draw(drawable.SpriteProvider) (*cellmodel.BasicDrawCreator, error) {
	c := cellmodel.NewBasicDrawCreator()
	n := 0
	for y := 0; y < f.h; y++ {
		for x := 0; x < f.w; x++ {
			if f.keep >= 0 && n >= f.keep {
				return c, nil
			}
			c.Set(geom.Point{X: x, Y: y}, cellmodel.TerminalChar{Char: f.ch})
			n++
		}
	}
	return c, nil
}

func (f *fakeDrawable) BoundingIV(drawable.SpriteProvider) (*interval.Creator, bool) {
	c := interval.NewCreator()
	c.RegisterRect(geom.Rect{P1: geom.Point{}, P2: geom.Point{X: f.w - 1, Y: f.h - 1}})
	return c, true
}

func (f *fakeDrawable) Size(drawable.SpriteProvider) (int, int) { return f.w, f.h }
func (f *fakeDrawable) GetTopLeft() (geom.Point, bool)          { return geom.Point{}, true }

type fakeSink struct {
	batches []sink.BatchDrawInfo
	flushed int
}

func (s *fakeSink) SetString(b sink.BatchDrawInfo) error {
	s.batches = append(s.batches, b)
	return nil
}
func (s *fakeSink) Flush() error { s.flushed++; return nil }
func (s *fakeSink) Stop() error  { return nil }

func TestAddToBufferAndUpdateTerminalEmitsBatch(t *testing.T) {
	fs := &fakeSink{}
	buf := New(10, 5, fs)

	d := &fakeDrawable{w: 3, h: 1, ch: 'x', keep: -1}
	err := buf.AddToBuffer(d, nil, Handle(1), 0, 0, geom.Rect{P1: geom.Point{X: 2, Y: 1}, P2: geom.Point{X: 4, Y: 1}}, nil)
	require.NoError(t, err)

	require.NoError(t, buf.UpdateTerminal(0))
	require.Len(t, fs.batches, 1)
	assert.Equal(t, 1, fs.flushed)
	assert.Equal(t, 2, fs.batches[0].StartX)
	assert.Equal(t, 1, fs.batches[0].Y)
	assert.Equal(t, "xxx", fs.batches[0].Segments[0].Text)
}

func TestAddToBufferCleansUpShrunkenAnimationCells(t *testing.T) {
	fs := &fakeSink{}
	buf := New(10, 5, fs)
	bounds := geom.Rect{P1: geom.Point{X: 0, Y: 0}, P2: geom.Point{X: 2, Y: 0}}

	full := &fakeDrawable{w: 3, h: 1, ch: 'x', keep: -1}
	require.NoError(t, buf.AddToBuffer(full, nil, Handle(1), 0, 0, bounds, nil))

	shrunk := &fakeDrawable{w: 3, h: 1, ch: 'x', keep: 1}
	require.NoError(t, buf.AddToBuffer(shrunk, nil, Handle(1), 0, 0, bounds, nil))

	idx, ok := buf.index(geom.Point{X: 2, Y: 0})
	require.True(t, ok)
	_, stillThere := buf.cells[idx][Handle(1)]
	assert.False(t, stillThere, "stale cell from shrunk frame should be cleaned up")

	idx0, _ := buf.index(geom.Point{X: 0, Y: 0})
	_, kept := buf.cells[idx0][Handle(1)]
	assert.True(t, kept)
}

func TestLayerResolutionPicksHighestScreenLayer(t *testing.T) {
	fs := &fakeSink{}
	buf := New(5, 5, fs)
	bounds := geom.Rect{P1: geom.Point{X: 0, Y: 0}, P2: geom.Point{X: 0, Y: 0}}

	back := &fakeDrawable{w: 1, h: 1, ch: 'b', keep: -1}
	front := &fakeDrawable{w: 1, h: 1, ch: 'f', keep: -1}
	require.NoError(t, buf.AddToBuffer(back, nil, Handle(1), 0, 0, bounds, nil))
	require.NoError(t, buf.AddToBuffer(front, nil, Handle(2), 5, 0, bounds, nil))

	require.NoError(t, buf.UpdateTerminal(0))
	require.Len(t, fs.batches, 1)
	assert.Equal(t, "f", fs.batches[0].Segments[0].Text)
}

func TestLayerResolutionIsLexicographicNotSummed(t *testing.T) {
	fs := &fakeSink{}
	buf := New(5, 5, fs)
	bounds := geom.Rect{P1: geom.Point{X: 0, Y: 0}, P2: geom.Point{X: 0, Y: 0}}

	// screenLayer 0, objectLayer 5: sum is 5.
	lowScreenHighObject := &fakeDrawable{w: 1, h: 1, ch: 'a', keep: -1}
	// screenLayer 1, objectLayer 0: sum is 1, but screenLayer wins lexicographically.
	highScreenLowObject := &fakeDrawable{w: 1, h: 1, ch: 'b', keep: -1}
	require.NoError(t, buf.AddToBuffer(lowScreenHighObject, nil, Handle(1), 0, 5, bounds, nil))
	require.NoError(t, buf.AddToBuffer(highScreenLowObject, nil, Handle(2), 1, 0, bounds, nil))

	require.NoError(t, buf.UpdateTerminal(0))
	require.Len(t, fs.batches, 1)
	assert.Equal(t, "b", fs.batches[0].Segments[0].Text)
}

func TestRemoveFromBufferClearsHandle(t *testing.T) {
	fs := &fakeSink{}
	buf := New(5, 5, fs)
	bounds := geom.Rect{P1: geom.Point{X: 1, Y: 1}, P2: geom.Point{X: 1, Y: 1}}
	d := &fakeDrawable{w: 1, h: 1, ch: 'z', keep: -1}
	require.NoError(t, buf.AddToBuffer(d, nil, Handle(9), 0, 0, bounds, nil))

	require.NoError(t, buf.RemoveFromBuffer(d, Handle(9), nil, bounds))

	idx, _ := buf.index(geom.Point{X: 1, Y: 1})
	_, ok := buf.cells[idx][Handle(9)]
	assert.False(t, ok)
}

func TestMarkAllDirtyResizesAndInvalidates(t *testing.T) {
	fs := &fakeSink{}
	buf := New(3, 3, fs)
	buf.MarkAllDirty(6, 2)
	assert.Equal(t, 12, len(buf.cells))

	require.NoError(t, buf.UpdateTerminal(0))
	total := 0
	for _, b := range fs.batches {
		for _, seg := range b.Segments {
			total += len([]rune(seg.Text))
		}
	}
	assert.Equal(t, 12, total)
}

func TestShaderAppliedBeforeInsertion(t *testing.T) {
	fs := &fakeSink{}
	buf := New(5, 5, fs)
	bounds := geom.Rect{P1: geom.Point{X: 0, Y: 0}, P2: geom.Point{X: 0, Y: 0}}
	d := &fakeDrawable{w: 1, h: 1, ch: 'a', keep: -1}

	chain := shader.Chain{shader.ToUpper}
	require.NoError(t, buf.AddToBuffer(d, chain, Handle(1), 0, 0, bounds, nil))
	require.NoError(t, buf.UpdateTerminal(0))
	require.Len(t, fs.batches, 1)
	assert.Equal(t, "A", fs.batches[0].Segments[0].Text)
}
