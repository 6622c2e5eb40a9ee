package orchestrator

import (
	"time"

	"github.com/vitrineterm/vitrine/pkg/drawable"
	"github.com/vitrineterm/vitrine/pkg/geom"
	"github.com/vitrineterm/vitrine/pkg/registry"
	"github.com/vitrineterm/vitrine/pkg/rerrors"
	"github.com/vitrineterm/vitrine/pkg/screen"
	"github.com/vitrineterm/vitrine/pkg/shader"
	"github.com/vitrineterm/vitrine/pkg/spritesrc"
)

type createScreenCmd struct {
	key   string
	layer int
	area  screen.AreaRect
	reply chan error
}

type changeScreenAreaCmd struct {
	key   string
	area  screen.AreaRect
	reply chan error
}

type changeScreenLayerCmd struct {
	key   string
	layer int
	reply chan error
}

type fitScreenCmd struct {
	key   string
	reply chan error
}

type registerDrawableCmd struct {
	screenKey string
	drawable  drawable.Drawable
	layer     uint32
	shaders   shader.Chain
	lifetime  registry.Lifetime
	reply     chan registerResult
}

type registerResult struct {
	Handle registry.Handle
	Err    error
}

type removeDrawableCmd struct {
	handle registry.Handle
	reply  chan error
}

type eraseDrawableCmd struct {
	handle registry.Handle
	reply  chan error
}

type replaceDrawableCmd struct {
	handle   registry.Handle
	drawable drawable.Drawable
	reply    chan error
}

type renderDrawableCmd struct {
	handle registry.Handle
	reply  chan error
}

type moveToCmd struct {
	handle registry.Handle
	point  geom.Point
	reply  chan error
}

type moveByCmd struct {
	handle registry.Handle
	dx, dy int
	reply  chan error
}

type movePointCmd struct {
	handle registry.Handle
	index  int
	point  geom.Point
	reply  chan error
}

type replacePointsCmd struct {
	handle registry.Handle
	points []geom.Point
	reply  chan error
}

type registerSpriteCmd struct {
	id    string
	video *spritesrc.AsciiVideo
	reply chan error
}

type handleResizeCmd struct {
	width, height int
	reply         chan error
}

type getTerminalSizeCmd struct {
	reply chan geom.Point
}

type setUpdateIntervalExpandCmd struct {
	amount int
	reply  chan struct{}
}

type setRenderModeCmd struct {
	mode  RenderMode
	reply chan struct{}
}

type renderFrameCmd struct {
	reply chan error
}

type checkLifetimesCmd struct{}

type shutdownCmd struct {
	reply chan struct{}
}

// CreateScreen registers a new screen at key, layer, and area. Returns an
// error if key is already in use.
func (o *Orchestrator) CreateScreen(key string, layer int, area screen.AreaRect) error {
	reply := make(chan error, 1)
	o.commands <- createScreenCmd{key: key, layer: layer, area: area, reply: reply}
	return <-reply
}

func (o *Orchestrator) handleCreateScreen(c createScreenCmd) {
	if _, exists := o.screens[c.key]; exists {
		c.reply <- rerrors.New(rerrors.CodeInternal, "screen already exists").WithContext("screen", c.key)
		return
	}
	o.screens[c.key] = screen.New(c.key, c.layer, c.area, o.terminalSize)
	o.updateRegistrationGauges()
	c.reply <- nil
}

// ChangeScreenArea erases the screen's current contents, updates its area,
// fits every owned ScreenFitting drawable to the new area, re-renders, and
// flushes in Instant mode.
func (o *Orchestrator) ChangeScreenArea(key string, area screen.AreaRect) error {
	reply := make(chan error, 1)
	o.commands <- changeScreenAreaCmd{key: key, area: area, reply: reply}
	return <-reply
}

func (o *Orchestrator) handleChangeScreenArea(c changeScreenAreaCmd) {
	s, err := o.screenOrErr(c.key)
	if err != nil {
		c.reply <- err
		return
	}
	if err := s.RemoveAll(o.buffer, o.reg, o.sprites); err != nil {
		c.reply <- err
		return
	}
	s.ChangeArea(c.area)
	resolved := s.Area.Resolve(s.TerminalSize)
	for _, h := range s.Objects() {
		obj, err := o.reg.Get(h)
		if err != nil {
			c.reply <- err
			return
		}
		if fitting, ok := obj.Drawable.(drawable.ScreenFitting); ok {
			fitting.FitToScreen(resolved)
		}
	}
	if err := s.RenderAll(o.buffer, o.reg, o.sprites); err != nil {
		c.reply <- err
		return
	}
	c.reply <- o.strategy.afterMutation(o)
}

// ChangeScreenLayer updates key's z-layer, a pure field update.
func (o *Orchestrator) ChangeScreenLayer(key string, layer int) error {
	reply := make(chan error, 1)
	o.commands <- changeScreenLayerCmd{key: key, layer: layer, reply: reply}
	return <-reply
}

func (o *Orchestrator) handleChangeScreenLayer(c changeScreenLayerCmd) {
	s, err := o.screenOrErr(c.key)
	if err != nil {
		c.reply <- err
		return
	}
	s.ChangeLayer(c.layer)
	c.reply <- nil
}

// FitScreen resizes key's area to the union of its children's bounding
// boxes.
func (o *Orchestrator) FitScreen(key string) error {
	reply := make(chan error, 1)
	o.commands <- fitScreenCmd{key: key, reply: reply}
	return <-reply
}

func (o *Orchestrator) handleFitScreen(c fitScreenCmd) {
	s, err := o.screenOrErr(c.key)
	if err != nil {
		c.reply <- err
		return
	}
	c.reply <- s.FitToContents(o.reg, o.sprites)
}

// RegisterDrawable allocates a handle on screenKey, registers obj on the
// screen, runs ScreenFitting if implemented, records creation time, draws
// obj into the cell buffer, and (in Instant mode) refreshes the sink.
func (o *Orchestrator) RegisterDrawable(screenKey string, d drawable.Drawable, layer uint32, shaders shader.Chain, lifetime registry.Lifetime) (registry.Handle, error) {
	reply := make(chan registerResult, 1)
	o.commands <- registerDrawableCmd{screenKey: screenKey, drawable: d, layer: layer, shaders: shaders, lifetime: lifetime, reply: reply}
	res := <-reply
	return res.Handle, res.Err
}

func (o *Orchestrator) handleRegisterDrawable(c registerDrawableCmd) {
	s, err := o.screenOrErr(c.screenKey)
	if err != nil {
		c.reply <- registerResult{Err: err}
		return
	}
	h := o.reg.Register(c.screenKey, &registry.DrawObject{
		Drawable:     c.drawable,
		Layer:        c.layer,
		Shaders:      c.shaders,
		Lifetime:     c.lifetime,
		CreationTime: time.Now(),
	})
	s.RegisterDrawable(h)
	o.updateRegistrationGauges()
	if fitting, ok := c.drawable.(drawable.ScreenFitting); ok {
		fitting.FitToScreen(s.Area.Resolve(s.TerminalSize))
	}
	renderErr := s.RenderDrawable(h, o.buffer, o.reg, o.sprites)
	if renderErr == nil {
		renderErr = o.strategy.afterMutation(o)
	}
	c.reply <- registerResult{Handle: h, Err: renderErr}
}

// EraseDrawable is the render-level-only remove: it erases h's cells from
// the buffer but leaves h registered on its screen and in the registry, so
// a later RenderDrawable call can redraw it. Move/replace operations clear
// the old footprint the same way via Screen.RemoveDrawable directly, since
// they run inside the command loop already; EraseDrawable exposes that same
// erase-without-deregister behavior to external callers that want to hide a
// drawable without tearing down its handle.
func (o *Orchestrator) EraseDrawable(h registry.Handle) error {
	reply := make(chan error, 1)
	o.commands <- eraseDrawableCmd{handle: h, reply: reply}
	return <-reply
}

func (o *Orchestrator) handleEraseDrawable(c eraseDrawableCmd) {
	s, err := o.screenOrErr(c.handle.ScreenKey)
	if err != nil {
		c.reply <- err
		return
	}
	if err := s.RemoveDrawable(c.handle, o.buffer, o.reg, o.sprites); err != nil {
		c.reply <- err
		return
	}
	c.reply <- o.strategy.afterMutation(o)
}

// RemoveDrawable is the explicit-remove command: it deregisters h from its
// screen, erases its cells, and deletes it from the registry.
func (o *Orchestrator) RemoveDrawable(h registry.Handle) error {
	reply := make(chan error, 1)
	o.commands <- removeDrawableCmd{handle: h, reply: reply}
	return <-reply
}

func (o *Orchestrator) handleRemoveDrawable(c removeDrawableCmd) {
	s, err := o.screenOrErr(c.handle.ScreenKey)
	if err != nil {
		c.reply <- err
		return
	}
	if err := s.RemoveDrawable(c.handle, o.buffer, o.reg, o.sprites); err != nil {
		c.reply <- err
		return
	}
	s.DeregisterDrawable(c.handle)
	o.reg.Remove(c.handle)
	o.updateRegistrationGauges()
	c.reply <- o.strategy.afterMutation(o)
}

// ReplaceDrawable swaps h's underlying drawable for d, re-rendering at the
// same handle and screen position.
func (o *Orchestrator) ReplaceDrawable(h registry.Handle, d drawable.Drawable) error {
	reply := make(chan error, 1)
	o.commands <- replaceDrawableCmd{handle: h, drawable: d, reply: reply}
	return <-reply
}

func (o *Orchestrator) handleReplaceDrawable(c replaceDrawableCmd) {
	obj, err := o.reg.Get(c.handle)
	if err != nil {
		c.reply <- err
		return
	}
	s, err := o.screenOrErr(c.handle.ScreenKey)
	if err != nil {
		c.reply <- err
		return
	}
	if err := s.RemoveDrawable(c.handle, o.buffer, o.reg, o.sprites); err != nil {
		c.reply <- err
		return
	}
	obj.Drawable = c.drawable
	if err := s.RenderDrawable(c.handle, o.buffer, o.reg, o.sprites); err != nil {
		c.reply <- err
		return
	}
	c.reply <- o.strategy.afterMutation(o)
}

// RenderDrawable re-renders h at its screen's current rect and layer,
// refreshing h's creation time.
func (o *Orchestrator) RenderDrawable(h registry.Handle) error {
	reply := make(chan error, 1)
	o.commands <- renderDrawableCmd{handle: h, reply: reply}
	return <-reply
}

func (o *Orchestrator) handleRenderDrawable(c renderDrawableCmd) {
	s, err := o.screenOrErr(c.handle.ScreenKey)
	if err != nil {
		c.reply <- err
		return
	}
	if _, err := o.reg.Get(c.handle); err != nil {
		c.reply <- err
		return
	}
	if err := s.RenderDrawable(c.handle, o.buffer, o.reg, o.sprites); err != nil {
		c.reply <- err
		return
	}
	_ = o.reg.TouchCreationTime(c.handle, time.Now())
	c.reply <- o.strategy.afterMutation(o)
}

// MoveTo translates h's drawable so its anchor sits at p.
func (o *Orchestrator) MoveTo(h registry.Handle, p geom.Point) error {
	reply := make(chan error, 1)
	o.commands <- moveToCmd{handle: h, point: p, reply: reply}
	return <-reply
}

func (o *Orchestrator) handleMoveTo(c moveToCmd) {
	c.reply <- o.mutateAndRender(c.handle, func(d drawable.Drawable) { drawable.MoveTo(d, c.point) })
}

// MoveBy translates h's drawable by (dx, dy).
func (o *Orchestrator) MoveBy(h registry.Handle, dx, dy int) error {
	reply := make(chan error, 1)
	o.commands <- moveByCmd{handle: h, dx: dx, dy: dy, reply: reply}
	return <-reply
}

func (o *Orchestrator) handleMoveBy(c moveByCmd) {
	c.reply <- o.mutateAndRender(c.handle, func(d drawable.Drawable) { drawable.MoveBy(d, c.dx, c.dy) })
}

// MovePoint overwrites one indexed point of h's drawable.
func (o *Orchestrator) MovePoint(h registry.Handle, index int, p geom.Point) error {
	reply := make(chan error, 1)
	o.commands <- movePointCmd{handle: h, index: index, point: p, reply: reply}
	return <-reply
}

func (o *Orchestrator) handleMovePoint(c movePointCmd) {
	c.reply <- o.mutateAndRender(c.handle, func(d drawable.Drawable) { drawable.MovePoint(d, c.index, c.point) })
}

// ReplacePoints overwrites all of h's drawable's points.
func (o *Orchestrator) ReplacePoints(h registry.Handle, points []geom.Point) error {
	reply := make(chan error, 1)
	o.commands <- replacePointsCmd{handle: h, points: points, reply: reply}
	return <-reply
}

func (o *Orchestrator) handleReplacePoints(c replacePointsCmd) {
	c.reply <- o.mutateAndRender(c.handle, func(d drawable.Drawable) { drawable.ReplacePoints(d, c.points) })
}

// RegisterSpriteFromSource registers video under id in the sprite registry.
func (o *Orchestrator) RegisterSpriteFromSource(id string, video *spritesrc.AsciiVideo) error {
	reply := make(chan error, 1)
	o.commands <- registerSpriteCmd{id: id, video: video, reply: reply}
	return <-reply
}

func (o *Orchestrator) handleRegisterSprite(c registerSpriteCmd) {
	if o.sprites == nil {
		c.reply <- rerrors.New(rerrors.CodeInternal, "no sprite registry configured")
		return
	}
	o.sprites.Register(c.id, c.video)
	c.reply <- nil
}

// HandleResize rebuilds the cell buffer at the new dimensions, updates
// every screen's terminal size, marks everything dirty, and renders all
// screens.
func (o *Orchestrator) HandleResize(width, height int) error {
	reply := make(chan error, 1)
	o.commands <- handleResizeCmd{width: width, height: height, reply: reply}
	return <-reply
}

func (o *Orchestrator) handleResize(c handleResizeCmd) {
	o.terminalSize = geom.Point{X: c.width, Y: c.height}
	o.buffer.MarkAllDirty(c.width, c.height)
	for _, s := range o.screens {
		s.TerminalSize = o.terminalSize
	}
	for _, s := range o.screens {
		if err := s.RenderAll(o.buffer, o.reg, o.sprites); err != nil {
			c.reply <- err
			return
		}
	}
	c.reply <- o.flush()
}

// GetTerminalSize returns the orchestrator's current terminal dimensions.
func (o *Orchestrator) GetTerminalSize() geom.Point {
	reply := make(chan geom.Point, 1)
	o.commands <- getTerminalSizeCmd{reply: reply}
	return <-reply
}

// SetUpdateIntervalExpand sets the dirty-tracker's batch-merge expansion
// amount used by every subsequent flush.
func (o *Orchestrator) SetUpdateIntervalExpand(amount int) {
	reply := make(chan struct{})
	o.commands <- setUpdateIntervalExpandCmd{amount: amount, reply: reply}
	<-reply
}

// SetRenderMode switches between Instant and Buffered render strategies.
func (o *Orchestrator) SetRenderMode(mode RenderMode) {
	reply := make(chan struct{})
	o.commands <- setRenderModeCmd{mode: mode, reply: reply}
	<-reply
}

// RenderFrame flushes pending mutations to the sink (a no-op trigger in
// Instant mode, since every mutation already flushed) and, in Buffered
// mode, drains RemoveNextFrame-lifetime objects.
func (o *Orchestrator) RenderFrame() error {
	reply := make(chan error, 1)
	o.commands <- renderFrameCmd{reply: reply}
	return <-reply
}

// Shutdown stops the command loop. Safe to call once.
func (o *Orchestrator) Shutdown() {
	reply := make(chan struct{})
	o.commands <- shutdownCmd{reply: reply}
	<-reply
}
