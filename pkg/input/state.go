package input

import (
	"sync"

	"github.com/vitrineterm/vitrine/pkg/geom"
)

// sharedState is EventManagerState: the state the reader task mutates and
// hooks read synchronously. Go's sync.Mutex cannot be poisoned the way
// Rust's can (see DESIGN.md); a panicking holder still unlocks via defer,
// so there is no fallback path to implement.
type sharedState struct {
	mu sync.RWMutex

	pressedKeys map[Keycode]Target
	buttons     map[InputButton]MouseButtonState
	cursor      geom.Point

	terminalSize    geom.Point
	targetedScreen  Target
	terminalFocused bool
}

func newSharedState() *sharedState {
	return &sharedState{
		pressedKeys:     make(map[Keycode]Target),
		buttons:         make(map[InputButton]MouseButtonState),
		targetedScreen:  NoTarget(),
		terminalFocused: true,
	}
}

func (s *sharedState) isPressed(code Keycode) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.pressedKeys[code]
	return ok
}

func (s *sharedState) isPressedWithScreen(code Keycode) (Target, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	target, ok := s.pressedKeys[code]
	return target, ok
}

func (s *sharedState) buttonState(b InputButton) MouseButtonState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buttons[b]
}

func (s *sharedState) terminalSizeSnapshot() geom.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.terminalSize
}

func (s *sharedState) targetedScreenSnapshot() Target {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.targetedScreen
}

func (s *sharedState) isFocused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.terminalFocused
}

// keyPress records code as held under target and reports whether it was
// already held (Repeating) or newly pressed.
func (s *sharedState) keyPress(code Keycode, target Target) (alreadyHeld bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, alreadyHeld = s.pressedKeys[code]
	s.pressedKeys[code] = target
	return alreadyHeld
}

func (s *sharedState) keyRelease(code Keycode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pressedKeys, code)
}

func (s *sharedState) clearPressedKeys() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pressedKeys = make(map[Keycode]Target)
}

// setButtonState updates b's debounced state and reports whether it
// changed.
func (s *sharedState) setButtonState(b InputButton, next MouseButtonState) (changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.buttons[b]
	if prev == next {
		return false
	}
	s.buttons[b] = next
	return true
}

// setCursor updates the tracked cursor position and reports whether it
// moved.
func (s *sharedState) setCursor(p geom.Point) (changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor == p {
		return false
	}
	s.cursor = p
	return true
}

func (s *sharedState) setFocused(focused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terminalFocused = focused
}

func (s *sharedState) setTerminalSize(p geom.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terminalSize = p
}

func (s *sharedState) setTargetedScreen(t Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targetedScreen = t
}
