// Package cellbuf implements the cell buffer (C2): a row-major grid of
// per-cell layer stacks that resolves the visible character at emit time
// and streams batched, same-style runs to a sink.CellSink.
package cellbuf

import (
	"sync"

	"github.com/vitrineterm/vitrine/pkg/cellmodel"
	"github.com/vitrineterm/vitrine/pkg/drawable"
	"github.com/vitrineterm/vitrine/pkg/geom"
	"github.com/vitrineterm/vitrine/pkg/interval"
	"github.com/vitrineterm/vitrine/pkg/rerrors"
	"github.com/vitrineterm/vitrine/pkg/shader"
	"github.com/vitrineterm/vitrine/pkg/sink"
)

// Handle identifies the object that wrote a CharacterInfo entry. Callers
// (the drawable registry) are responsible for allocating unique handles.
type Handle uint64

// CharacterInfo is one object's contribution to a cell: its layer
// coordinates, the character it wants displayed there, and the insertion
// sequence used to break layer ties deterministically.
type CharacterInfo struct {
	Handle      Handle
	ObjectLayer int
	ScreenLayer int
	Char        cellmodel.TerminalChar
	seq         uint64
}

// CharacterInfoList is the per-cell mapping of object handle to that
// object's contribution.
type CharacterInfoList map[Handle]CharacterInfo

// resolve picks the visible CharacterInfo: the greatest (ScreenLayer,
// ObjectLayer) pair, ties broken by most-recent insertion.
func (l CharacterInfoList) resolve() (CharacterInfo, bool) {
	var best CharacterInfo
	found := false
	for _, ci := range l {
		if !found {
			best, found = ci, true
			continue
		}
		if ci.ScreenLayer > best.ScreenLayer ||
			(ci.ScreenLayer == best.ScreenLayer && ci.ObjectLayer > best.ObjectLayer) ||
			(ci.ScreenLayer == best.ScreenLayer && ci.ObjectLayer == best.ObjectLayer && ci.seq > best.seq) {
			best = ci
		}
	}
	return best, found
}

// Buffer is the cell buffer: current grid dimensions, per-cell layer
// stacks, a dirty-region tracker, and the sink commands are emitted to.
type Buffer struct {
	mu      sync.Mutex
	width   int
	height  int
	cells   []CharacterInfoList
	tracker *interval.Tracker
	sink    sink.CellSink
	nextSeq uint64
}

// New constructs an empty width x height Buffer backed by s.
func New(width, height int, s sink.CellSink) *Buffer {
	cells := make([]CharacterInfoList, width*height)
	for i := range cells {
		cells[i] = make(CharacterInfoList)
	}
	return &Buffer{
		width:   width,
		height:  height,
		cells:   cells,
		tracker: interval.NewTracker(width, height),
		sink:    s,
	}
}

func (b *Buffer) index(p geom.Point) (int, bool) {
	if p.X < 0 || p.Y < 0 || p.X >= b.width || p.Y >= b.height {
		return 0, false
	}
	return p.Y*b.width + p.X, true
}

// AddToBuffer draws d (decorated by shaders) into the buffer at bounds,
// owned by handle at (screenLayer, objectLayer), and updates the dirty
// tracker. Resolution orders strictly by screenLayer first, objectLayer
// second — the two never collapse into a single sum.
func (b *Buffer) AddToBuffer(d drawable.Drawable, shaders shader.Chain, handle Handle, screenLayer, objectLayer int, bounds geom.Rect, sprites drawable.SpriteProvider) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	creator, err := d.Draw(sprites)
	if err != nil {
		return err
	}
	localTopLeft, ok := d.GetTopLeft()
	if !ok {
		localTopLeft = geom.Point{}
	}

	boundsNorm := bounds.Normalized()
	if opt, ok := d.BoundingIV(sprites); ok {
		b.tracker.MergeCreator(opt.Shift(boundsNorm.P1))
	} else {
		b.tracker.RegisterRedrawRegion(geom.Rect{P1: geom.Point{}, P2: geom.Point{X: b.width - 1, Y: b.height - 1}})
	}

	w, h := d.Size(sprites)
	frameSize := geom.Point{X: w, Y: h}
	shaderTopLeft := localTopLeft.Add(boundsNorm.P1)

	touched := make(map[int]struct{})
	for _, bd := range creator.Flatten() {
		cell := bd
		cell.Point = bd.Point.Add(boundsNorm.P1)
		shaders.Apply(&cell, frameSize, shaderTopLeft)
		if !boundsNorm.Contains(cell.Point) {
			continue
		}

		idx, ok := b.index(cell.Point)
		if !ok {
			continue
		}
		b.nextSeq++
		b.cells[idx][handle] = CharacterInfo{
			Handle:      handle,
			ObjectLayer: objectLayer,
			ScreenLayer: screenLayer,
			Char:        cell.Char,
			seq:         b.nextSeq,
		}
		touched[idx] = struct{}{}
	}

	b.cleanupUntouched(d, handle, sprites, boundsNorm, touched)
	return nil
}

// cleanupUntouched removes stale handle entries from cells inside the
// drawable's bounding intervals that this draw pass did not write to —
// how animation frames that shrink get their old trailing cells cleared.
func (b *Buffer) cleanupUntouched(d drawable.Drawable, handle Handle, sprites drawable.SpriteProvider, boundsNorm geom.Rect, touched map[int]struct{}) {
	opt, ok := d.BoundingIV(sprites)
	if !ok {
		return
	}
	lin := interval.NewTracker(b.width, b.height)
	lin.MergeCreator(opt.Shift(boundsNorm.P1))
	for _, iv := range lin.DumpIntervals() {
		for linear := iv.Start; linear < iv.End; linear++ {
			if linear < 0 || linear >= len(b.cells) {
				continue
			}
			if _, hit := touched[linear]; hit {
				continue
			}
			delete(b.cells[linear], handle)
		}
	}
}

// RemoveFromBuffer removes handle's entries from every cell inside d's
// bounding intervals.
func (b *Buffer) RemoveFromBuffer(d drawable.Drawable, handle Handle, sprites drawable.SpriteProvider, bounds geom.Rect) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	boundsNorm := bounds.Normalized()
	opt, ok := d.BoundingIV(sprites)
	if !ok {
		b.tracker.RegisterRedrawRegion(geom.Rect{P1: geom.Point{}, P2: geom.Point{X: b.width - 1, Y: b.height - 1}})
		for i := range b.cells {
			delete(b.cells[i], handle)
		}
		return nil
	}
	shifted := opt.Shift(boundsNorm.P1)
	b.tracker.MergeCreator(shifted)
	lin := interval.NewTracker(b.width, b.height)
	lin.MergeCreator(shifted)
	for _, iv := range lin.DumpIntervals() {
		for linear := iv.Start; linear < iv.End; linear++ {
			if linear < 0 || linear >= len(b.cells) {
				continue
			}
			delete(b.cells[linear], handle)
		}
	}
	return nil
}

// UpdateTerminal expands and merges the dirty tracker's intervals, resolves
// each covered cell's visible character, batches same-style runs per row,
// and streams them to the sink followed by a single Flush.
func (b *Buffer) UpdateTerminal(expandAmount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tracker.ExpandRegions(expandAmount)
	b.tracker.MergeIntervals()
	intervals := b.tracker.DumpIntervals()

	for _, iv := range intervals {
		for _, batch := range b.buildBatches(iv) {
			if err := b.sink.SetString(batch); err != nil {
				return rerrors.Wrap(err, rerrors.CodeChannelSend, "failed to send cell batch to sink")
			}
		}
	}
	if err := b.sink.Flush(); err != nil {
		return rerrors.Wrap(err, rerrors.CodeChannelSend, "failed to flush sink")
	}
	return nil
}

func (b *Buffer) buildBatches(iv interval.UpdateInterval) []sink.BatchDrawInfo {
	var batches []sink.BatchDrawInfo
	var cur *sink.BatchDrawInfo
	var curFG, curBG cellmodel.Color
	var haveStyle bool

	flush := func() {
		if cur != nil && len(cur.Segments) > 0 {
			batches = append(batches, *cur)
		}
		cur = nil
		haveStyle = false
	}

	for linear := iv.Start; linear < iv.End; linear++ {
		if linear < 0 || linear >= len(b.cells) {
			continue
		}
		y := linear / b.width
		x := linear % b.width

		ch, fg, bg := b.resolveCell(linear)

		if cur == nil || y != cur.Y || x != cur.StartX+segmentsWidth(cur) {
			flush()
			cur = &sink.BatchDrawInfo{StartX: x, Y: y}
			haveStyle = false
		}
		if !haveStyle || fg != curFG || bg != curBG {
			cur.Segments = append(cur.Segments, sink.Segment{Style: toSinkStyle(fg, bg)})
			curFG, curBG, haveStyle = fg, bg, true
		}
		last := &cur.Segments[len(cur.Segments)-1]
		last.Text += string(ch)
	}
	flush()
	return batches
}

func segmentsWidth(b *sink.BatchDrawInfo) int {
	n := 0
	for _, seg := range b.Segments {
		n += len([]rune(seg.Text))
	}
	return n
}

func (b *Buffer) resolveCell(linear int) (rune, cellmodel.Color, cellmodel.Color) {
	ci, ok := b.cells[linear].resolve()
	if !ok {
		return ' ', cellmodel.Color{}, cellmodel.Color{}
	}
	ch := ci.Char.Char
	if ch == 0 {
		ch = ' '
	}
	return ch, ci.Char.FG, ci.Char.BG
}

func toSinkStyle(fg, bg cellmodel.Color) sink.Style {
	s := sink.DefaultStyle()
	if fg.Set {
		s = s.Foreground(sink.ColorRGB(fg.R, fg.G, fg.B))
	}
	if bg.Set {
		s = s.Background(sink.ColorRGB(bg.R, bg.G, bg.B))
	}
	return s
}

// MarkAllDirty invalidates the entire screen and resizes the cell grid,
// preserving no content in cells beyond the new bounds.
func (b *Buffer) MarkAllDirty(newWidth, newHeight int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.width, b.height = newWidth, newHeight
	b.tracker.Resize(newWidth, newHeight)

	newLen := newWidth * newHeight
	cells := make([]CharacterInfoList, newLen)
	for i := range cells {
		if i < len(b.cells) {
			cells[i] = b.cells[i]
		} else {
			cells[i] = make(CharacterInfoList)
		}
	}
	b.cells = cells
	b.tracker.InvalidateEntireScreen()
}
