// Package orchestrator implements the render orchestrator (C7): the
// single-owner actor that serializes every mutation to the cell buffer,
// the drawable registry, and the set of screens, enforces object
// lifetimes, and drives the screen-fitting hook on layout changes.
package orchestrator

import (
	"context"
	"time"

	"github.com/vitrineterm/vitrine/pkg/cellbuf"
	"github.com/vitrineterm/vitrine/pkg/drawable"
	"github.com/vitrineterm/vitrine/pkg/geom"
	"github.com/vitrineterm/vitrine/pkg/metrics"
	"github.com/vitrineterm/vitrine/pkg/registry"
	"github.com/vitrineterm/vitrine/pkg/rerrors"
	"github.com/vitrineterm/vitrine/pkg/rlog"
	"github.com/vitrineterm/vitrine/pkg/screen"
	"github.com/vitrineterm/vitrine/pkg/sink"
	"github.com/vitrineterm/vitrine/pkg/spritesrc"
)

// RenderMode selects when mutations become visible on the sink.
type RenderMode int

const (
	// Instant flushes to the sink at the end of every mutating command.
	Instant RenderMode = iota
	// Buffered only flushes on an explicit render-frame command, and
	// drains RemoveNextFrame-lifetime objects immediately after.
	Buffered
)

// InputHook is implemented by an input dispatcher the orchestrator polls
// once per loop iteration, before draining commands, so it can update
// which screen subsequent input events target.
type InputHook interface {
	PumpOnce()
}

// renderStrategy captures the Instant/Buffered behavioral difference: what
// happens after a mutating command, and what happens on an explicit
// render-frame command.
type renderStrategy interface {
	afterMutation(o *Orchestrator) error
	renderFrame(o *Orchestrator) error
}

type instantStrategy struct{}

func (instantStrategy) afterMutation(o *Orchestrator) error { return o.flush() }
func (instantStrategy) renderFrame(o *Orchestrator) error   { return o.flush() }

type bufferedStrategy struct{}

func (bufferedStrategy) afterMutation(*Orchestrator) error { return nil }
func (bufferedStrategy) renderFrame(o *Orchestrator) error {
	err := o.flush()
	o.drainRemoveNextFrame()
	return err
}

// Orchestrator owns the registry, every screen, and the cell buffer. All
// state mutation happens on the goroutine running Run; every exported
// method sends a command and blocks for its reply.
type Orchestrator struct {
	commands chan any

	reg      *registry.Registry
	screens  map[string]*screen.Screen
	buffer   *cellbuf.Buffer
	sprites  *spritesrc.Registry
	log      *rlog.Logger
	hook     InputHook

	terminalSize geom.Point
	expandAmount int
	strategy     renderStrategy
}

// Config configures a new Orchestrator.
type Config struct {
	Sink           sink.CellSink
	Sprites        *spritesrc.Registry
	Logger         *rlog.Logger
	TerminalWidth  int
	TerminalHeight int
	ExpandAmount   int
	RenderMode     RenderMode
	CommandBuffer  int
	Hook           InputHook
}

// New constructs an Orchestrator. Call Run to start its command loop.
func New(cfg Config) *Orchestrator {
	bufSize := cfg.CommandBuffer
	if bufSize <= 0 {
		bufSize = 256
	}
	o := &Orchestrator{
		commands:     make(chan any, bufSize),
		reg:          registry.New(),
		screens:      make(map[string]*screen.Screen),
		buffer:       cellbuf.New(cfg.TerminalWidth, cfg.TerminalHeight, cfg.Sink),
		sprites:      cfg.Sprites,
		log:          cfg.Logger,
		hook:         cfg.Hook,
		terminalSize: geom.Point{X: cfg.TerminalWidth, Y: cfg.TerminalHeight},
		expandAmount: cfg.ExpandAmount,
	}
	o.setRenderMode(cfg.RenderMode)
	return o
}

func (o *Orchestrator) setRenderMode(mode RenderMode) {
	if mode == Buffered {
		o.strategy = bufferedStrategy{}
	} else {
		o.strategy = instantStrategy{}
	}
}

func (o *Orchestrator) flush() error {
	if err := o.buffer.UpdateTerminal(o.expandAmount); err != nil {
		if o.log != nil {
			_ = o.log.Error(rlog.CategorySink, "flush_failed", "sink write or flush failed", map[string]any{"error": err.Error()})
		}
		return err
	}
	metrics.FramesRendered.Inc()
	return nil
}

func (o *Orchestrator) drainRemoveNextFrame() {
	for _, s := range o.screens {
		for _, h := range o.reg.RemoveNextFrameHandles(s.Key) {
			_ = s.RemoveDrawable(h, o.buffer, o.reg, o.sprites)
			s.DeregisterDrawable(h)
			o.reg.Remove(h)
		}
	}
}

func (o *Orchestrator) checkLifetimes() {
	now := time.Now()
	expired := 0
	for _, s := range o.screens {
		for _, h := range o.reg.Expired(s.Key, now) {
			_ = s.RemoveDrawable(h, o.buffer, o.reg, o.sprites)
			s.DeregisterDrawable(h)
			o.reg.Remove(h)
			expired++
			if o.log != nil {
				_ = o.log.Info(rlog.CategoryOrchestrator, "object_expired", "removed expired object", map[string]any{"screen": h.ScreenKey, "object_id": h.ObjectID})
			}
		}
	}
	metrics.RecordExpired(expired)
	o.updateRegistrationGauges()
}

// updateRegistrationGauges syncs the active-screen and registered-drawable
// gauges to current map sizes. Called after any command that adds or
// removes a screen or a drawable handle.
func (o *Orchestrator) updateRegistrationGauges() {
	metrics.ActiveScreens.Set(float64(len(o.screens)))
	metrics.RegisteredDrawables.Set(float64(o.reg.Len()))
}

// Run drives the command loop until ctx is canceled or a shutdown command
// is processed. A ticker in the same select loop runs the lifetime checks.
func (o *Orchestrator) Run(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if o.hook != nil {
			o.hook.PumpOnce()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			o.checkLifetimes()
		case cmd := <-o.commands:
			if done := o.dispatch(cmd); done {
				return nil
			}
		drainLoop:
			for {
				select {
				case cmd := <-o.commands:
					if done := o.dispatch(cmd); done {
						return nil
					}
				default:
					break drainLoop
				}
			}
		}
	}
}

func (o *Orchestrator) dispatch(cmd any) (shutdown bool) {
	switch c := cmd.(type) {
	case createScreenCmd:
		o.handleCreateScreen(c)
	case changeScreenAreaCmd:
		o.handleChangeScreenArea(c)
	case changeScreenLayerCmd:
		o.handleChangeScreenLayer(c)
	case fitScreenCmd:
		o.handleFitScreen(c)
	case registerDrawableCmd:
		o.handleRegisterDrawable(c)
	case eraseDrawableCmd:
		o.handleEraseDrawable(c)
	case removeDrawableCmd:
		o.handleRemoveDrawable(c)
	case replaceDrawableCmd:
		o.handleReplaceDrawable(c)
	case renderDrawableCmd:
		o.handleRenderDrawable(c)
	case moveToCmd:
		o.handleMoveTo(c)
	case moveByCmd:
		o.handleMoveBy(c)
	case movePointCmd:
		o.handleMovePoint(c)
	case replacePointsCmd:
		o.handleReplacePoints(c)
	case registerSpriteCmd:
		o.handleRegisterSprite(c)
	case handleResizeCmd:
		o.handleResize(c)
	case getTerminalSizeCmd:
		c.reply <- o.terminalSize
	case setUpdateIntervalExpandCmd:
		o.expandAmount = c.amount
		close(c.reply)
	case setRenderModeCmd:
		o.setRenderMode(c.mode)
		close(c.reply)
	case renderFrameCmd:
		c.reply <- o.strategy.renderFrame(o)
	case checkLifetimesCmd:
		o.checkLifetimes()
	case shutdownCmd:
		close(c.reply)
		return true
	}
	return false
}

func (o *Orchestrator) screenOrErr(key string) (*screen.Screen, error) {
	s, ok := o.screens[key]
	if !ok {
		return nil, rerrors.DisplayKeyNotFound(key)
	}
	return s, nil
}

// mutateAndRender removes h's current footprint from the buffer, runs
// mutate against the registered drawable, then re-renders h — guaranteeing
// the dirty region covers both the old and new footprint.
func (o *Orchestrator) mutateAndRender(h registry.Handle, mutate func(drawable.Drawable)) error {
	obj, err := o.reg.Get(h)
	if err != nil {
		return err
	}
	s, err := o.screenOrErr(h.ScreenKey)
	if err != nil {
		return err
	}
	if err := s.RemoveDrawable(h, o.buffer, o.reg, o.sprites); err != nil {
		return err
	}
	mutate(obj.Drawable)
	if err := s.RenderDrawable(h, o.buffer, o.reg, o.sprites); err != nil {
		return err
	}
	return o.strategy.afterMutation(o)
}
