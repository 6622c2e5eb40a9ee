package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrineterm/vitrine/pkg/cellmodel"
	"github.com/vitrineterm/vitrine/pkg/drawable"
	"github.com/vitrineterm/vitrine/pkg/geom"
	"github.com/vitrineterm/vitrine/pkg/interval"
	"github.com/vitrineterm/vitrine/pkg/registry"
	"github.com/vitrineterm/vitrine/pkg/screen"
	"github.com/vitrineterm/vitrine/pkg/sink"
)

type block struct {
	topLeft geom.Point
	w, h    int
	ch      rune
}

func (b *block) Draw(drawable.SpriteProvider) (*cellmodel.BasicDrawCreator, error) {
	c := cellmodel.NewBasicDrawCreator()
	for y := 0; y < b.h; y++ {
		for x := 0; x < b.w; x++ {
			c.Set(geom.Point{X: b.topLeft.X + x, Y: b.topLeft.Y + y}, cellmodel.TerminalChar{Char: b.ch})
		}
	}
	return c, nil
}
func (b *block) BoundingIV(drawable.SpriteProvider) (*interval.Creator, bool) {
	c := interval.NewCreator()
	c.RegisterRect(geom.Rect{P1: b.topLeft, P2: geom.Point{X: b.topLeft.X + b.w - 1, Y: b.topLeft.Y + b.h - 1}})
	return c, true
}
func (b *block) Size(drawable.SpriteProvider) (int, int) { return b.w, b.h }
func (b *block) GetTopLeft() (geom.Point, bool)          { return b.topLeft, true }
func (b *block) Point() geom.Point                       { return b.topLeft }
func (b *block) SetPoint(p geom.Point)                   { b.topLeft = p }

type recordingSink struct {
	batches []sink.BatchDrawInfo
	flushes int
}

func (s *recordingSink) SetString(batch sink.BatchDrawInfo) error {
	s.batches = append(s.batches, batch)
	return nil
}
func (s *recordingSink) Flush() error { s.flushes++; return nil }
func (s *recordingSink) Stop() error  { return nil }

func newTestOrchestrator(t *testing.T, mode RenderMode) (*Orchestrator, *recordingSink) {
	t.Helper()
	rs := &recordingSink{}
	o := New(Config{
		Sink:           rs,
		TerminalWidth:  20,
		TerminalHeight: 10,
		RenderMode:     mode,
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = o.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return o, rs
}

func TestRegisterDrawableInstantModeRendersImmediately(t *testing.T) {
	o, rs := newTestOrchestrator(t, Instant)
	require.NoError(t, o.CreateScreen("main", 0, screen.NewFullScreenArea()))

	h, err := o.RegisterDrawable("main", &block{w: 3, h: 1, ch: 'x'}, 0, nil, registry.Lifetime{})
	require.NoError(t, err)
	assert.Equal(t, "main", h.ScreenKey)
	require.NotEmpty(t, rs.batches)
	assert.Equal(t, "xxx", rs.batches[0].Segments[0].Text)
}

func TestLayerOverrideHigherScreenLayerWins(t *testing.T) {
	o, rs := newTestOrchestrator(t, Instant)
	require.NoError(t, o.CreateScreen("back", 0, screen.NewFullScreenArea()))
	require.NoError(t, o.CreateScreen("front", 10, screen.NewFullScreenArea()))

	_, err := o.RegisterDrawable("back", &block{w: 1, h: 1, ch: 'b'}, 0, nil, registry.Lifetime{})
	require.NoError(t, err)
	rs.batches = nil
	_, err = o.RegisterDrawable("front", &block{w: 1, h: 1, ch: 'f'}, 0, nil, registry.Lifetime{})
	require.NoError(t, err)

	require.NotEmpty(t, rs.batches)
	assert.Equal(t, "f", rs.batches[len(rs.batches)-1].Segments[0].Text)
}

func TestBufferedModeDoesNotFlushUntilRenderFrame(t *testing.T) {
	o, rs := newTestOrchestrator(t, Buffered)
	require.NoError(t, o.CreateScreen("main", 0, screen.NewFullScreenArea()))

	_, err := o.RegisterDrawable("main", &block{w: 2, h: 1, ch: 'y'}, 0, nil, registry.Lifetime{})
	require.NoError(t, err)
	assert.Empty(t, rs.batches)

	require.NoError(t, o.RenderFrame())
	require.NotEmpty(t, rs.batches)
}

func TestBufferedModeDrainsRemoveNextFrame(t *testing.T) {
	o, _ := newTestOrchestrator(t, Buffered)
	require.NoError(t, o.CreateScreen("main", 0, screen.NewFullScreenArea()))

	h, err := o.RegisterDrawable("main", &block{w: 1, h: 1, ch: 'z'}, 0, nil, registry.Lifetime{Kind: registry.RemoveNextFrame})
	require.NoError(t, err)

	require.NoError(t, o.RenderFrame())
	err = o.MoveTo(h, geom.Point{X: 1, Y: 1})
	assert.Error(t, err, "handle should have been removed after the frame it was drained on")
}

func TestMoveToRerendersAtNewPosition(t *testing.T) {
	o, rs := newTestOrchestrator(t, Instant)
	require.NoError(t, o.CreateScreen("main", 0, screen.NewFullScreenArea()))

	h, err := o.RegisterDrawable("main", &block{w: 1, h: 1, ch: 'm'}, 0, nil, registry.Lifetime{})
	require.NoError(t, err)

	require.NoError(t, o.MoveTo(h, geom.Point{X: 5, Y: 5}))
	last := rs.batches[len(rs.batches)-1]
	assert.Equal(t, 5, last.StartX)
	assert.Equal(t, 5, last.Y)
}

func TestHandleResizeRendersAllScreens(t *testing.T) {
	o, rs := newTestOrchestrator(t, Instant)
	require.NoError(t, o.CreateScreen("main", 0, screen.NewFullScreenArea()))
	_, err := o.RegisterDrawable("main", &block{w: 1, h: 1, ch: 'r'}, 0, nil, registry.Lifetime{})
	require.NoError(t, err)

	rs.batches = nil
	require.NoError(t, o.HandleResize(30, 15))
	assert.Equal(t, geom.Point{X: 30, Y: 15}, o.GetTerminalSize())
	assert.NotEmpty(t, rs.batches)
}

func TestUnknownScreenReturnsDisplayKeyNotFound(t *testing.T) {
	o, _ := newTestOrchestrator(t, Instant)
	_, err := o.RegisterDrawable("ghost", &block{w: 1, h: 1, ch: 'g'}, 0, nil, registry.Lifetime{})
	require.Error(t, err)
}

func TestEraseDrawableKeepsHandleRegistered(t *testing.T) {
	o, rs := newTestOrchestrator(t, Instant)
	require.NoError(t, o.CreateScreen("main", 0, screen.NewFullScreenArea()))

	h, err := o.RegisterDrawable("main", &block{w: 1, h: 1, ch: 'x'}, 0, nil, registry.Lifetime{})
	require.NoError(t, err)
	require.NotEmpty(t, rs.batches)

	require.NoError(t, o.EraseDrawable(h))

	// The handle is still registered: RenderDrawable succeeds and redraws it,
	// which RemoveDrawable would not allow (DrawableHandleNotFound after the
	// registry entry is gone).
	require.NoError(t, o.RenderDrawable(h))
}

func TestRemoveDrawableThenRenderFails(t *testing.T) {
	o, _ := newTestOrchestrator(t, Instant)
	require.NoError(t, o.CreateScreen("main", 0, screen.NewFullScreenArea()))

	h, err := o.RegisterDrawable("main", &block{w: 1, h: 1, ch: 'x'}, 0, nil, registry.Lifetime{})
	require.NoError(t, err)

	require.NoError(t, o.RemoveDrawable(h))
	require.Error(t, o.RenderDrawable(h))
}

func TestForTimeLifetimeExpiresViaTicker(t *testing.T) {
	o, _ := newTestOrchestrator(t, Instant)
	require.NoError(t, o.CreateScreen("main", 0, screen.NewFullScreenArea()))

	h, err := o.RegisterDrawable("main", &block{w: 1, h: 1, ch: 'e'}, 0, nil, registry.Lifetime{Kind: registry.ForTime, Duration: 10 * time.Millisecond})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return o.RenderDrawable(h) != nil
	}, 2*time.Second, 20*time.Millisecond)
}
