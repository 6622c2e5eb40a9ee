package interval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrineterm/vitrine/pkg/geom"
)

func TestTrackerRegisterRedrawRegionClamps(t *testing.T) {
	tr := NewTracker(10, 4)
	tr.RegisterRedrawRegion(geom.NewRect(geom.Point{X: -5, Y: -1}, geom.Point{X: 2, Y: 1}))
	ivs := tr.DumpIntervals()
	require.Len(t, ivs, 2)
	assert.Equal(t, UpdateInterval{Start: 0, End: 3, Kind: Optimized}, ivs[0])
	assert.Equal(t, UpdateInterval{Start: 10, End: 13, Kind: Optimized}, ivs[1])
}

func TestTrackerRegisterRedrawRegionIgnoresOutOfRange(t *testing.T) {
	tr := NewTracker(10, 4)
	tr.RegisterRedrawRegion(geom.NewRect(geom.Point{X: 0, Y: 10}, geom.Point{X: 2, Y: 12}))
	assert.Empty(t, tr.DumpIntervals())
}

func TestTrackerMergeIntervalsCoalescesAndForcedDominates(t *testing.T) {
	tr := NewTracker(10, 4)
	tr.RegisterRedrawRegion(geom.NewRect(geom.Point{X: 0, Y: 0}, geom.Point{X: 2, Y: 0}))
	tr.RegisterRedrawRegion(geom.NewRect(geom.Point{X: 3, Y: 0}, geom.Point{X: 5, Y: 0}))
	tr.InvalidateEntireScreen()
	tr.MergeIntervals()
	ivs := tr.DumpIntervals()
	require.Len(t, ivs, 1)
	assert.Equal(t, Forced, ivs[0].Kind)
	assert.Equal(t, 0, ivs[0].Start)
	assert.Equal(t, 40, ivs[0].End)
}

func TestTrackerMergeIntervalsDisjointStaySeparate(t *testing.T) {
	tr := NewTracker(10, 4)
	tr.RegisterRedrawRegion(geom.NewRect(geom.Point{X: 0, Y: 0}, geom.Point{X: 1, Y: 0}))
	tr.RegisterRedrawRegion(geom.NewRect(geom.Point{X: 5, Y: 2}, geom.Point{X: 6, Y: 2}))
	tr.MergeIntervals()
	ivs := tr.DumpIntervals()
	require.Len(t, ivs, 2)
}

func TestTrackerExpandRegionsSaturates(t *testing.T) {
	tr := NewTracker(4, 1)
	tr.RegisterRedrawRegion(geom.NewRect(geom.Point{X: 0, Y: 0}, geom.Point{X: 1, Y: 0}))
	tr.ExpandRegions(100)
	ivs := tr.DumpIntervals()
	require.Len(t, ivs, 1)
	assert.Equal(t, 4, ivs[0].End)
}

func TestCreatorRegisterRectAndShift(t *testing.T) {
	c := NewCreator()
	c.RegisterRect(geom.NewRect(geom.Point{X: 0, Y: 0}, geom.Point{X: 1, Y: 1}))
	shifted := c.Shift(geom.Point{X: 2, Y: 3})

	tr := NewTracker(10, 10)
	tr.MergeCreator(shifted)
	tr.MergeIntervals()
	ivs := tr.DumpIntervals()
	require.Len(t, ivs, 2)
	assert.Equal(t, 3*10+2, ivs[0].Start)
	assert.Equal(t, 3*10+4, ivs[0].End)
}

func TestCreatorAddIntervalNormalizesReversed(t *testing.T) {
	c := NewCreator()
	c.AddInterval(0, 5, 2)
	tr := NewTracker(10, 10)
	tr.MergeCreator(c)
	ivs := tr.DumpIntervals()
	require.Len(t, ivs, 1)
	assert.Equal(t, 2, ivs[0].Start)
	assert.Equal(t, 5, ivs[0].End)
}

func TestCreatorNegativeRowIgnored(t *testing.T) {
	c := NewCreator()
	c.AddInterval(-1, 0, 3)
	assert.True(t, c.Empty())
}
