// Package interval implements the dirty-region tracker (C1): it collects
// redraw rectangles and per-row intervals for a frame, then flattens them
// into a minimal sorted list of linear row-major cell ranges.
package interval

import (
	"sort"

	"github.com/vitrineterm/vitrine/pkg/geom"
)

// Kind distinguishes an interval that must be re-emitted regardless of
// whether its contents changed (Forced) from one that is only a candidate
// for re-emission (Optimized).
type Kind int

const (
	Optimized Kind = iota
	Forced
)

// UpdateInterval is a half-open linear range [Start, End) of row-major cell
// indices, tagged with a Kind.
type UpdateInterval struct {
	Start, End int
	Kind       Kind
}

// rowInterval is a half-open [Start, End) range of column indices on one row.
type rowInterval struct {
	Start, End int
	Kind       Kind
}

// Creator stages per-row intervals in a drawable-local coordinate space
// before they are merged into a Tracker. Row keys are non-negative; rows
// are kept in plain map order since callers always fold via MergeCreator,
// which does not depend on row iteration order.
type Creator struct {
	rows map[int][]rowInterval
}

// NewCreator returns an empty Creator.
func NewCreator() *Creator {
	return &Creator{rows: make(map[int][]rowInterval)}
}

// RegisterRect stages every row of rect as one column interval. Rows with
// negative y are dropped; an ill-ordered rect is normalized first.
func (c *Creator) RegisterRect(rect geom.Rect) {
	n := rect.Normalized()
	if n.P1.Y < 0 && n.P2.Y < 0 {
		return
	}
	startY := n.P1.Y
	if startY < 0 {
		startY = 0
	}
	for y := startY; y <= n.P2.Y; y++ {
		c.AddInterval(y, n.P1.X, n.P2.X+1)
	}
}

// AddInterval stages a single [startX, endX) range on row y. Negative y is
// ignored; a negative or reversed range is normalized.
func (c *Creator) AddInterval(y, startX, endX int) {
	if y < 0 {
		return
	}
	if startX < 0 {
		startX = 0
	}
	if endX < 0 {
		endX = 0
	}
	if startX > endX {
		startX, endX = endX, startX
	}
	c.rows[y] = append(c.rows[y], rowInterval{Start: startX, End: endX, Kind: Optimized})
}

// Shift translates every staged interval by offset, dropping rows that move
// to a negative y.
func (c *Creator) Shift(offset geom.Point) *Creator {
	out := NewCreator()
	for y, ivs := range c.rows {
		ny := y + offset.Y
		if ny < 0 {
			continue
		}
		for _, iv := range ivs {
			start := iv.Start + offset.X
			end := iv.End + offset.X
			if start < 0 {
				start = 0
			}
			if end < 0 {
				end = 0
			}
			if start > end {
				start, end = end, start
			}
			out.rows[ny] = append(out.rows[ny], rowInterval{Start: start, End: end, Kind: iv.Kind})
		}
	}
	return out
}

// Empty reports whether no rows have been staged.
func (c *Creator) Empty() bool {
	return len(c.rows) == 0
}

// Tracker accumulates dirty cell ranges for one frame against a fixed
// viewport size and flattens them into disjoint, sorted linear ranges.
type Tracker struct {
	width, height int
	intervals     []UpdateInterval
}

// NewTracker returns a Tracker sized to width x height cells.
func NewTracker(width, height int) *Tracker {
	return &Tracker{width: width, height: height}
}

// Resize changes the viewport dimensions the tracker clamps against. It
// does not itself invalidate anything; callers typically follow a resize
// with InvalidateEntireScreen.
func (t *Tracker) Resize(width, height int) {
	t.width, t.height = width, height
}

// RegisterRedrawRegion stages rect directly as linear intervals, clamped to
// the tracker's viewport. Negative coordinates clamp to 0; an entirely
// out-of-range rect contributes nothing.
func (t *Tracker) RegisterRedrawRegion(rect geom.Rect) {
	n := rect.Normalized()
	y1, y2 := n.P1.Y, n.P2.Y
	if y2 < 0 || y1 >= t.height {
		return
	}
	if y1 < 0 {
		y1 = 0
	}
	if y2 >= t.height {
		y2 = t.height - 1
	}
	x1, x2 := n.P1.X, n.P2.X+1
	if x1 < 0 {
		x1 = 0
	}
	if x2 > t.width {
		x2 = t.width
	}
	if x1 >= x2 {
		return
	}
	for y := y1; y <= y2; y++ {
		off := y * t.width
		t.intervals = append(t.intervals, UpdateInterval{Start: off + x1, End: off + x2, Kind: Optimized})
	}
}

// MergeCreator folds a Creator's row-keyed intervals into the tracker,
// converting row y + [x1,x2) into linear [y*width+x1, y*width+x2) ranges.
// Rows beyond the viewport height are dropped; columns are clamped to width.
func (t *Tracker) MergeCreator(c *Creator) {
	for y, ivs := range c.rows {
		if y < 0 || y >= t.height {
			continue
		}
		off := y * t.width
		for _, iv := range ivs {
			start := iv.Start
			end := iv.End
			if start > t.width {
				start = t.width
			}
			if end > t.width {
				end = t.width
			}
			if start >= end {
				continue
			}
			t.intervals = append(t.intervals, UpdateInterval{Start: off + start, End: off + end, Kind: iv.Kind})
		}
	}
}

// InvalidateEntireScreen pushes one Forced interval covering the whole
// viewport.
func (t *Tracker) InvalidateEntireScreen() {
	t.intervals = append(t.intervals, UpdateInterval{Start: 0, End: t.width * t.height, Kind: Forced})
}

// ExpandRegions extends every interval's End by amount, saturating at the
// viewport's total cell count. This coalesces adjacent writes at the cost
// of redundant re-emission, trading write-count for cursor-move overhead.
func (t *Tracker) ExpandRegions(amount int) {
	max := t.width * t.height
	for i := range t.intervals {
		end := t.intervals[i].End + amount
		if end > max {
			end = max
		}
		t.intervals[i].End = end
	}
}

// MergeIntervals sorts intervals by Start and coalesces overlapping or
// touching ranges. When a Forced interval merges with an Optimized one,
// the result is Forced.
func (t *Tracker) MergeIntervals() {
	if len(t.intervals) <= 1 {
		return
	}
	sort.Slice(t.intervals, func(i, j int) bool {
		return t.intervals[i].Start < t.intervals[j].Start
	})
	merged := make([]UpdateInterval, 0, len(t.intervals))
	cur := t.intervals[0]
	for _, iv := range t.intervals[1:] {
		if iv.Start <= cur.End {
			if iv.End > cur.End {
				cur.End = iv.End
			}
			if iv.Kind == Forced {
				cur.Kind = Forced
			}
			continue
		}
		merged = append(merged, cur)
		cur = iv
	}
	merged = append(merged, cur)
	t.intervals = merged
}

// DumpIntervals drains and returns the accumulated intervals.
func (t *Tracker) DumpIntervals() []UpdateInterval {
	out := t.intervals
	t.intervals = nil
	return out
}
