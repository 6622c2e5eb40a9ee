package input

import "context"

// Hook is the event hook (C9): a per-consumer façade over a Manager. Each
// Subscribe* call performs the subscribe handshake against the manager's
// command channel (SubscriptionID or DidNotReceiveIDResponse on timeout,
// per spec.md §4.8) and then starts one goroutine that drains the
// returned channel and invokes callback, mirroring the one-goroutine-per-
// subscription shape of a memory-backed pub/sub bus rather than a single
// dynamic-select dispatcher: Go's channels are already typed per kind, so
// there is no untyped "wrong first message" case and no ReceiveUnexpectedResponse
// path to trigger from this side of the handshake.
type Hook struct {
	mgr    *Manager
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHook wraps mgr in a consumer-facing façade. Close stops every
// goroutine started by this Hook's Subscribe* calls.
func NewHook(mgr *Manager) *Hook {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hook{mgr: mgr, ctx: ctx, cancel: cancel}
}

// Close stops all dispatcher goroutines started by this Hook. It does not
// unsubscribe from the Manager; call Unsubscribe first if that matters.
func (h *Hook) Close() {
	h.cancel()
}

// SubscribeKey performs the subscribe handshake and starts a dispatcher
// goroutine that invokes callback for every matching key transition.
func (h *Hook) SubscribeKey(filter KeyFilter, callback func(KeyMessage)) (SubscriptionID, error) {
	id, ch, err := h.mgr.SubscribeKey(filter)
	if err != nil {
		return 0, err
	}
	go func() {
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				callback(msg)
			case <-h.ctx.Done():
				return
			}
		}
	}()
	return id, nil
}

// SubscribeMouse performs the subscribe handshake and starts a dispatcher
// goroutine that invokes callback for every matching mouse transition.
func (h *Hook) SubscribeMouse(filter MouseFilter, callback func(MouseMessage)) (SubscriptionID, error) {
	id, ch, err := h.mgr.SubscribeMouse(filter)
	if err != nil {
		return 0, err
	}
	go func() {
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				callback(msg)
			case <-h.ctx.Done():
				return
			}
		}
	}()
	return id, nil
}

// SubscribeResize performs the subscribe handshake and starts a
// dispatcher goroutine that invokes callback on every resize.
func (h *Hook) SubscribeResize(callback func(ResizeMessage)) (SubscriptionID, error) {
	id, ch, err := h.mgr.SubscribeResize()
	if err != nil {
		return 0, err
	}
	go func() {
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				callback(msg)
			case <-h.ctx.Done():
				return
			}
		}
	}()
	return id, nil
}

// SubscribePaste performs the subscribe handshake and starts a dispatcher
// goroutine that invokes callback on every bracketed paste.
func (h *Hook) SubscribePaste(callback func(PasteMessage)) (SubscriptionID, error) {
	id, ch, err := h.mgr.SubscribePaste()
	if err != nil {
		return 0, err
	}
	go func() {
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				callback(msg)
			case <-h.ctx.Done():
				return
			}
		}
	}()
	return id, nil
}

// SubscribeFocus performs the subscribe handshake and starts a
// dispatcher goroutine that invokes callback on every focus transition.
func (h *Hook) SubscribeFocus(callback func(FocusMessage)) (SubscriptionID, error) {
	id, ch, err := h.mgr.SubscribeFocus()
	if err != nil {
		return 0, err
	}
	go func() {
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				callback(msg)
			case <-h.ctx.Done():
				return
			}
		}
	}()
	return id, nil
}

// Unsubscribe removes id from the manager's subscriber tables.
func (h *Hook) Unsubscribe(id SubscriptionID) {
	h.mgr.Unsubscribe(id)
}

// IsPressed is a synchronous read of b's held state; it never blocks on
// the manager's reader loop.
func (h *Hook) IsPressed(b Button) bool {
	return h.mgr.IsPressed(b)
}

// IsPressedWithScreen additionally reports which screen b was targeted
// at when pressed, if held.
func (h *Hook) IsPressedWithScreen(b Button) (Target, bool) {
	return h.mgr.IsPressedWithScreen(b)
}

// PumpOnce satisfies pkg/orchestrator's InputHook interface. The reader
// loop already runs on its own goroutine via Manager.Run, so there is
// nothing to pump here; this exists purely to let an Orchestrator hold a
// Hook without a type assertion.
func (h *Hook) PumpOnce() {}
