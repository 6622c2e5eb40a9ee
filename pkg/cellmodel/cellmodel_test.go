package cellmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrineterm/vitrine/pkg/geom"
)

func TestNewTerminalCharHasUnsetColors(t *testing.T) {
	c := NewTerminalChar('x')
	assert.Equal(t, 'x', c.Char)
	assert.False(t, c.FG.Set)
	assert.False(t, c.BG.Set)
}

func TestTerminalCharEqual(t *testing.T) {
	a := NewTerminalChar('x')
	b := NewTerminalChar('x')
	c := NewTerminalChar('y')
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestTerminalCharWidthWideRune(t *testing.T) {
	narrow := NewTerminalChar('a')
	wide := NewTerminalChar('界')
	assert.Equal(t, 1, narrow.Width())
	assert.Equal(t, 2, wide.Width())
}

func TestBasicDrawCreatorSetGetOverwrites(t *testing.T) {
	creator := NewBasicDrawCreator()
	p := geom.Point{X: 1, Y: 1}
	creator.Set(p, NewTerminalChar('a'))
	creator.Set(p, NewTerminalChar('b'))

	got, ok := creator.Get(p)
	require.True(t, ok)
	assert.Equal(t, 'b', got.Char)
	assert.Equal(t, 1, creator.Len())
}

func TestBasicDrawCreatorMergeShiftsByOffset(t *testing.T) {
	dst := NewBasicDrawCreator()
	dst.Set(geom.Point{X: 0, Y: 0}, NewTerminalChar('a'))

	src := NewBasicDrawCreator()
	src.Set(geom.Point{X: 0, Y: 0}, NewTerminalChar('b'))

	dst.Merge(src, geom.Point{X: 5, Y: 5})

	_, ok := dst.Get(geom.Point{X: 0, Y: 0})
	assert.True(t, ok)
	got, ok := dst.Get(geom.Point{X: 5, Y: 5})
	require.True(t, ok)
	assert.Equal(t, 'b', got.Char)
	assert.Equal(t, 2, dst.Len())
}

func TestBasicDrawCreatorBoundingBoxEmpty(t *testing.T) {
	creator := NewBasicDrawCreator()
	_, ok := creator.BoundingBox()
	assert.False(t, ok)
}

func TestBasicDrawCreatorBoundingBoxSpansWrites(t *testing.T) {
	creator := NewBasicDrawCreator()
	creator.Set(geom.Point{X: 0, Y: 0}, NewTerminalChar('a'))
	creator.Set(geom.Point{X: 4, Y: 2}, NewTerminalChar('b'))

	box, ok := creator.BoundingBox()
	require.True(t, ok)
	assert.Equal(t, geom.Point{X: 0, Y: 0}, box.P1)
	assert.Equal(t, geom.Point{X: 4, Y: 2}, box.P2)
}

func TestBasicDrawCreatorFlattenPreservesInsertionOrder(t *testing.T) {
	creator := NewBasicDrawCreator()
	creator.Set(geom.Point{X: 2, Y: 0}, NewTerminalChar('b'))
	creator.Set(geom.Point{X: 1, Y: 0}, NewTerminalChar('a'))

	flat := creator.Flatten()
	require.Len(t, flat, 2)
	assert.Equal(t, geom.Point{X: 2, Y: 0}, flat[0].Point)
	assert.Equal(t, geom.Point{X: 1, Y: 0}, flat[1].Point)
}
