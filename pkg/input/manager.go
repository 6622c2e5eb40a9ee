package input

import (
	"context"
	"time"

	"github.com/vitrineterm/vitrine/pkg/geom"
	"github.com/vitrineterm/vitrine/pkg/metrics"
	"github.com/vitrineterm/vitrine/pkg/rerrors"
	"github.com/vitrineterm/vitrine/pkg/rlog"
	"github.com/vitrineterm/vitrine/pkg/termsrc"
)

const (
	defaultSubscribeTimeout = 4 * time.Second
	pollTimeout             = 10 * time.Millisecond
	selectorDeadline        = time.Millisecond
	subscriberBuffer        = 256
)

// RawEventSource is polled by the reader task once per loop iteration. ok
// is false on a poll timeout, not an error.
type RawEventSource interface {
	PollEvent(timeout time.Duration) (ev termsrc.Event, ok bool)
}

// ScreenSelector lets the application decide, per raw event, which screen
// the event is targeted at before classification and dispatch.
type ScreenSelector interface {
	SelectScreen(ev termsrc.Event, deadline time.Duration) (Target, bool)
}

type keySubscriber struct {
	filter KeyFilter
	ch     chan KeyMessage
}

type mouseSubscriber struct {
	filter MouseFilter
	ch     chan MouseMessage
}

type resizeSubscriber struct{ ch chan ResizeMessage }
type pasteSubscriber struct{ ch chan PasteMessage }
type focusSubscriber struct{ ch chan FocusMessage }

type subscribeKeyCmd struct {
	filter KeyFilter
	reply  chan subResult[KeyMessage]
}
type subscribeMouseCmd struct {
	filter MouseFilter
	reply  chan subResult[MouseMessage]
}
type subscribeResizeCmd struct{ reply chan subResult[ResizeMessage] }
type subscribePasteCmd struct{ reply chan subResult[PasteMessage] }
type subscribeFocusCmd struct{ reply chan subResult[FocusMessage] }
type unsubscribeCmd struct{ id SubscriptionID }

type subResult[T any] struct {
	id SubscriptionID
	ch chan T
}

// Manager is the input manager (C8): the single owner of pressed-key and
// mouse-button state, and of every subscriber table. All mutation happens
// on the goroutine running Run.
type Manager struct {
	commands         chan any
	source           RawEventSource
	selector         ScreenSelector
	state            *sharedState
	log              *rlog.Logger
	subscribeTimeout time.Duration

	nextSubID uint64

	keySubs    map[SubscriptionID]*keySubscriber
	mouseSubs  map[SubscriptionID]*mouseSubscriber
	resizeSubs map[SubscriptionID]*resizeSubscriber
	pasteSubs  map[SubscriptionID]*pasteSubscriber
	focusSubs  map[SubscriptionID]*focusSubscriber
}

// Config configures a new Manager.
type Config struct {
	Source                        RawEventSource
	Selector                      ScreenSelector
	Logger                        *rlog.Logger
	CommandBuffer                 int
	TerminalWidth, TerminalHeight int
	// SubscribeTimeout bounds the subscribe handshake and Unsubscribe
	// sends. Defaults to 4s, matching the manager's normal command-loop
	// latency; tests that never start Run should lower this.
	SubscribeTimeout time.Duration
}

// New constructs a Manager. Call Run to start its reader loop.
func New(cfg Config) *Manager {
	bufSize := cfg.CommandBuffer
	if bufSize <= 0 {
		bufSize = 256
	}
	timeout := cfg.SubscribeTimeout
	if timeout <= 0 {
		timeout = defaultSubscribeTimeout
	}
	state := newSharedState()
	state.setTerminalSize(geom.Point{X: cfg.TerminalWidth, Y: cfg.TerminalHeight})
	return &Manager{
		commands:         make(chan any, bufSize),
		source:           cfg.Source,
		selector:         cfg.Selector,
		state:            state,
		log:              cfg.Logger,
		subscribeTimeout: timeout,
		keySubs:          make(map[SubscriptionID]*keySubscriber),
		mouseSubs:        make(map[SubscriptionID]*mouseSubscriber),
		resizeSubs:       make(map[SubscriptionID]*resizeSubscriber),
		pasteSubs:        make(map[SubscriptionID]*pasteSubscriber),
		focusSubs:        make(map[SubscriptionID]*focusSubscriber),
	}
}

// Run drains subscription commands and polls the raw event source until
// ctx is canceled.
func (m *Manager) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		m.drainCommands()

		ev, ok := m.source.PollEvent(pollTimeout)
		if !ok {
			continue
		}
		m.handleEvent(ev)
	}
}

func (m *Manager) drainCommands() {
	for {
		select {
		case cmd := <-m.commands:
			m.dispatchCommand(cmd)
		default:
			return
		}
	}
}

func (m *Manager) dispatchCommand(cmd any) {
	switch c := cmd.(type) {
	case subscribeKeyCmd:
		m.nextSubID++
		id := SubscriptionID(m.nextSubID)
		ch := make(chan KeyMessage, subscriberBuffer)
		m.keySubs[id] = &keySubscriber{filter: c.filter, ch: ch}
		c.reply <- subResult[KeyMessage]{id: id, ch: ch}
	case subscribeMouseCmd:
		m.nextSubID++
		id := SubscriptionID(m.nextSubID)
		ch := make(chan MouseMessage, subscriberBuffer)
		m.mouseSubs[id] = &mouseSubscriber{filter: c.filter, ch: ch}
		c.reply <- subResult[MouseMessage]{id: id, ch: ch}
	case subscribeResizeCmd:
		m.nextSubID++
		id := SubscriptionID(m.nextSubID)
		ch := make(chan ResizeMessage, subscriberBuffer)
		m.resizeSubs[id] = &resizeSubscriber{ch: ch}
		c.reply <- subResult[ResizeMessage]{id: id, ch: ch}
	case subscribePasteCmd:
		m.nextSubID++
		id := SubscriptionID(m.nextSubID)
		ch := make(chan PasteMessage, subscriberBuffer)
		m.pasteSubs[id] = &pasteSubscriber{ch: ch}
		c.reply <- subResult[PasteMessage]{id: id, ch: ch}
	case subscribeFocusCmd:
		m.nextSubID++
		id := SubscriptionID(m.nextSubID)
		ch := make(chan FocusMessage, subscriberBuffer)
		m.focusSubs[id] = &focusSubscriber{ch: ch}
		c.reply <- subResult[FocusMessage]{id: id, ch: ch}
	case unsubscribeCmd:
		delete(m.keySubs, c.id)
		delete(m.mouseSubs, c.id)
		delete(m.resizeSubs, c.id)
		delete(m.pasteSubs, c.id)
		delete(m.focusSubs, c.id)
	}
}

func (m *Manager) resolveTarget(ev termsrc.Event) Target {
	if m.selector != nil {
		if t, ok := m.selector.SelectScreen(ev, selectorDeadline); ok {
			m.state.setTargetedScreen(t)
			return t
		}
	}
	return m.state.targetedScreenSnapshot()
}

func (m *Manager) handleEvent(ev termsrc.Event) {
	target := m.resolveTarget(ev)

	switch e := ev.(type) {
	case termsrc.KeyEvent:
		m.classifyKey(e, target)
	case termsrc.MouseEvent:
		m.classifyMouse(e, target)
	case termsrc.ResizeEvent:
		m.state.setTerminalSize(geom.Point{X: e.Width, Y: e.Height})
		m.dispatchResize(ResizeMessage{Width: e.Width, Height: e.Height, Target: target})
	case termsrc.PasteEvent:
		m.dispatchPaste(PasteMessage{Text: e.Text, Target: target})
	case termsrc.FocusEvent:
		m.state.setFocused(e.Gained)
		if !e.Gained {
			m.state.clearPressedKeys()
		}
		m.dispatchFocus(FocusMessage{Gained: e.Gained, Target: target})
	}
}

func (m *Manager) classifyKey(e termsrc.KeyEvent, target Target) {
	code := Keycode{Key: e.Key, Rune: e.Rune}
	if e.Kind == termsrc.KeyUp {
		m.state.keyRelease(code)
		m.dispatchKey(KeyMessage{Code: code, Action: KeyReleased, Target: target})
		return
	}
	action := KeyPressed
	if m.state.keyPress(code, target) {
		action = KeyRepeating
	}
	m.dispatchKey(KeyMessage{Code: code, Action: action, Target: target})
}

// classifyMouse implements the Down/Up/Drag button state machine and the
// coordinate-changed Move/Scroll rules of spec.md §4.7/§4.9. Moved events
// always carry (column, row) as (X, Y) — the original's manager.rs:552
// reported (row, row) for Move, which is the bug spec.md §9 calls out.
func (m *Manager) classifyMouse(e termsrc.MouseEvent, target Target) {
	if e.Button == termsrc.MouseWheelUp || e.Button == termsrc.MouseWheelDown {
		m.dispatchMouse(MouseMessage{
			Kind:     MouseScrollKind,
			Button:   e.Button,
			ScrollUp: e.Button == termsrc.MouseWheelUp,
			X:        e.X, Y: e.Y,
			Target: target,
		})
		return
	}

	switch e.Action {
	case termsrc.MousePress:
		if m.state.buttonState(e.Button) != Released {
			return
		}
		if m.state.setButtonState(e.Button, Pressed) {
			m.dispatchMouse(MouseMessage{Kind: MouseButtonKind, Button: e.Button, State: Pressed, X: e.X, Y: e.Y, Target: target})
		}
	case termsrc.MouseRelease:
		if m.state.setButtonState(e.Button, Released) {
			m.dispatchMouse(MouseMessage{Kind: MouseButtonKind, Button: e.Button, State: Released, X: e.X, Y: e.Y, Target: target})
		}
	case termsrc.MouseMove:
		if m.state.buttonState(e.Button) == Pressed {
			if m.state.setButtonState(e.Button, Dragging) {
				m.dispatchMouse(MouseMessage{Kind: MouseButtonKind, Button: e.Button, State: Dragging, X: e.X, Y: e.Y, Target: target})
			}
		}
		if m.state.setCursor(geom.Point{X: e.X, Y: e.Y}) {
			m.dispatchMouse(MouseMessage{Kind: MouseMoveKind, X: e.X, Y: e.Y, Target: target})
		}
	}
}

func (m *Manager) dispatchKey(msg KeyMessage) {
	delivered := false
	for id, sub := range m.keySubs {
		if !sub.filter.matches(msg) {
			continue
		}
		select {
		case sub.ch <- msg:
			delivered = true
		default:
			m.warnBackpressure("key", id)
		}
	}
	if delivered {
		metrics.InputEventsDispatched.Inc()
	}
}

func (m *Manager) dispatchMouse(msg MouseMessage) {
	delivered := false
	for id, sub := range m.mouseSubs {
		if !sub.filter.matches(msg) {
			continue
		}
		select {
		case sub.ch <- msg:
			delivered = true
		default:
			m.warnBackpressure("mouse", id)
		}
	}
	if delivered {
		metrics.InputEventsDispatched.Inc()
	}
}

func (m *Manager) dispatchResize(msg ResizeMessage) {
	delivered := false
	for id, sub := range m.resizeSubs {
		select {
		case sub.ch <- msg:
			delivered = true
		default:
			m.warnBackpressure("resize", id)
		}
	}
	if delivered {
		metrics.InputEventsDispatched.Inc()
	}
}

func (m *Manager) dispatchPaste(msg PasteMessage) {
	delivered := false
	for id, sub := range m.pasteSubs {
		select {
		case sub.ch <- msg:
			delivered = true
		default:
			m.warnBackpressure("paste", id)
		}
	}
	if delivered {
		metrics.InputEventsDispatched.Inc()
	}
}

func (m *Manager) dispatchFocus(msg FocusMessage) {
	delivered := false
	for id, sub := range m.focusSubs {
		select {
		case sub.ch <- msg:
			delivered = true
		default:
			m.warnBackpressure("focus", id)
		}
	}
	if delivered {
		metrics.InputEventsDispatched.Inc()
	}
}

func (m *Manager) warnBackpressure(table string, id SubscriptionID) {
	metrics.SubscribersDropped.Inc()
	if m.log == nil {
		return
	}
	_ = m.log.Warn(rlog.CategoryInput, "subscriber_backpressure", "dropped message, subscriber buffer full", map[string]any{"table": table, "id": uint64(id)})
}

// SubscribeKey registers a key subscription and returns its id and
// receive channel.
func (m *Manager) SubscribeKey(filter KeyFilter) (SubscriptionID, <-chan KeyMessage, error) {
	reply := make(chan subResult[KeyMessage], 1)
	if err := m.send(subscribeKeyCmd{filter: filter, reply: reply}); err != nil {
		return 0, nil, err
	}
	select {
	case res := <-reply:
		return res.id, res.ch, nil
	case <-time.After(m.subscribeTimeout):
		return 0, nil, rerrors.DidNotReceiveIDResponse()
	}
}

// SubscribeMouse registers a mouse subscription.
func (m *Manager) SubscribeMouse(filter MouseFilter) (SubscriptionID, <-chan MouseMessage, error) {
	reply := make(chan subResult[MouseMessage], 1)
	if err := m.send(subscribeMouseCmd{filter: filter, reply: reply}); err != nil {
		return 0, nil, err
	}
	select {
	case res := <-reply:
		return res.id, res.ch, nil
	case <-time.After(m.subscribeTimeout):
		return 0, nil, rerrors.DidNotReceiveIDResponse()
	}
}

// SubscribeResize registers a resize subscription.
func (m *Manager) SubscribeResize() (SubscriptionID, <-chan ResizeMessage, error) {
	reply := make(chan subResult[ResizeMessage], 1)
	if err := m.send(subscribeResizeCmd{reply: reply}); err != nil {
		return 0, nil, err
	}
	select {
	case res := <-reply:
		return res.id, res.ch, nil
	case <-time.After(m.subscribeTimeout):
		return 0, nil, rerrors.DidNotReceiveIDResponse()
	}
}

// SubscribePaste registers a paste subscription.
func (m *Manager) SubscribePaste() (SubscriptionID, <-chan PasteMessage, error) {
	reply := make(chan subResult[PasteMessage], 1)
	if err := m.send(subscribePasteCmd{reply: reply}); err != nil {
		return 0, nil, err
	}
	select {
	case res := <-reply:
		return res.id, res.ch, nil
	case <-time.After(m.subscribeTimeout):
		return 0, nil, rerrors.DidNotReceiveIDResponse()
	}
}

// SubscribeFocus registers a focus subscription.
func (m *Manager) SubscribeFocus() (SubscriptionID, <-chan FocusMessage, error) {
	reply := make(chan subResult[FocusMessage], 1)
	if err := m.send(subscribeFocusCmd{reply: reply}); err != nil {
		return 0, nil, err
	}
	select {
	case res := <-reply:
		return res.id, res.ch, nil
	case <-time.After(m.subscribeTimeout):
		return 0, nil, rerrors.DidNotReceiveIDResponse()
	}
}

func (m *Manager) send(cmd any) error {
	select {
	case m.commands <- cmd:
		return nil
	case <-time.After(m.subscribeTimeout):
		return rerrors.FailedToSendCommand("input manager command channel full")
	}
}

// Unsubscribe removes id from whichever subscriber table holds it.
func (m *Manager) Unsubscribe(id SubscriptionID) {
	select {
	case m.commands <- unsubscribeCmd{id: id}:
	case <-time.After(m.subscribeTimeout):
	}
}

// IsPressed is a synchronous, lock-only read of b's held state; it never
// touches the manager goroutine.
func (m *Manager) IsPressed(b Button) bool {
	switch b.Domain {
	case KeyDomain:
		return m.state.isPressed(b.Key)
	case MouseDomain:
		return m.state.buttonState(b.Mouse) != Released
	}
	return false
}

// IsPressedWithScreen additionally reports which screen b was last
// targeted at, if held.
func (m *Manager) IsPressedWithScreen(b Button) (Target, bool) {
	switch b.Domain {
	case KeyDomain:
		return m.state.isPressedWithScreen(b.Key)
	case MouseDomain:
		if m.state.buttonState(b.Mouse) == Released {
			return Target{}, false
		}
		return m.state.targetedScreenSnapshot(), true
	}
	return Target{}, false
}

// TerminalSize is a synchronous read of the last observed terminal size.
func (m *Manager) TerminalSize() geom.Point { return m.state.terminalSizeSnapshot() }

// IsFocused is a synchronous read of the last observed focus state.
func (m *Manager) IsFocused() bool { return m.state.isFocused() }
