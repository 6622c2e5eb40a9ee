// Package input implements the input manager (C8) and its per-consumer
// hook façade (C9): a single reader task that classifies raw terminal
// events, tracks pressed-key and mouse-button state, and fans out typed
// subscription messages to mouse/key/resize/paste/focus subscriber tables.
package input

import (
	"github.com/vitrineterm/vitrine/pkg/termsrc"
)

// SubscriptionID identifies one subscriber within one subscriber table.
// IDs are unique per Manager, not per table.
type SubscriptionID uint64

// TargetKind discriminates which logical viewport an event applied to.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetGlobal
	TargetScreen
)

// Target carries the screen an event was classified against, decided by
// an optional screen-selector subprocessor at dispatch time.
type Target struct {
	Kind      TargetKind
	ScreenKey string
}

// NoTarget reports that no screen-selector is registered or no screen
// claimed the event.
func NoTarget() Target { return Target{Kind: TargetNone} }

// GlobalTarget marks an event as applying to every screen.
func GlobalTarget() Target { return Target{Kind: TargetGlobal} }

// ScreenTarget marks an event as applying to one specific screen.
func ScreenTarget(key string) Target { return Target{Kind: TargetScreen, ScreenKey: key} }

// Keycode is the identity of a pressed key: a special key, or a rune for
// KeyRune. Two KeyRune events with different runes are different keys.
type Keycode struct {
	Key  termsrc.Key
	Rune rune
}

// KeyAction is the kind of key transition a subscription message or
// filter refers to.
type KeyAction int

const (
	KeyPressed KeyAction = iota
	KeyReleased
	KeyRepeating
)

// KeyActionFilter is the action component of a key subscription filter.
type KeyActionFilter int

const (
	KeyActionAny KeyActionFilter = iota
	KeyActionPressed
	KeyActionReleased
	KeyActionRepeated
)

func (f KeyActionFilter) matches(a KeyAction) bool {
	switch f {
	case KeyActionAny:
		return true
	case KeyActionPressed:
		return a == KeyPressed
	case KeyActionReleased:
		return a == KeyReleased
	case KeyActionRepeated:
		return a == KeyRepeating
	}
	return false
}

// KeyFilter selects a key subscription: every key (Code == nil) or one
// specific code, crossed with an action filter.
type KeyFilter struct {
	Code   *Keycode
	Action KeyActionFilter
}

func (f KeyFilter) matches(msg KeyMessage) bool {
	if f.Code != nil && *f.Code != msg.Code {
		return false
	}
	return f.Action.matches(msg.Action)
}

// KeyMessage is one classified key transition.
type KeyMessage struct {
	Code   Keycode
	Action KeyAction
	Target Target
}

// InputButton identifies a mouse button, reusing the raw event source's
// button enumeration.
type InputButton = termsrc.MouseButton

// MouseButtonState is a single button's debounced press state.
type MouseButtonState int

const (
	Released MouseButtonState = iota
	Pressed
	Dragging
)

// MouseKind discriminates the three shapes a MouseMessage can take.
type MouseKind int

const (
	MouseButtonKind MouseKind = iota
	MouseMoveKind
	MouseScrollKind
)

// MouseMessage is one classified mouse transition.
type MouseMessage struct {
	Kind     MouseKind
	Button   InputButton
	State    MouseButtonState
	X, Y     int
	ScrollUp bool
	Target   Target
}

// MouseFilterKind selects which shape of MouseMessage a subscription
// wants, optionally narrowed to one button or one button+action pair.
type MouseFilterKind int

const (
	MouseFilterAll MouseFilterKind = iota
	MouseFilterButtons
	MouseFilterScrolls
	MouseFilterMoves
	MouseFilterButtonAny
	MouseFilterButtonAction
)

// MouseFilter selects a mouse subscription.
type MouseFilter struct {
	Kind   MouseFilterKind
	Button InputButton
	Action MouseButtonState
}

func (f MouseFilter) matches(msg MouseMessage) bool {
	switch f.Kind {
	case MouseFilterAll:
		return true
	case MouseFilterButtons:
		return msg.Kind == MouseButtonKind
	case MouseFilterScrolls:
		return msg.Kind == MouseScrollKind
	case MouseFilterMoves:
		return msg.Kind == MouseMoveKind
	case MouseFilterButtonAny:
		return msg.Kind == MouseButtonKind && msg.Button == f.Button
	case MouseFilterButtonAction:
		return msg.Kind == MouseButtonKind && msg.Button == f.Button && msg.State == f.Action
	}
	return false
}

// ResizeMessage reports a terminal resize.
type ResizeMessage struct {
	Width, Height int
	Target        Target
}

// PasteMessage carries bracketed-paste text. Go strings are already
// immutable and share their backing array on copy, which is the
// reference-counted sharing the original asks for.
type PasteMessage struct {
	Text   string
	Target Target
}

// FocusMessage reports a terminal focus transition.
type FocusMessage struct {
	Gained bool
	Target Target
}

// ButtonDomain discriminates which pressed-state table a Button queries.
type ButtonDomain int

const (
	KeyDomain ButtonDomain = iota
	MouseDomain
)

// Button addresses either a key or a mouse button for IsPressed /
// IsPressedWithScreen queries, which read across both domains.
type Button struct {
	Domain ButtonDomain
	Key    Keycode
	Mouse  InputButton
}

// KeyButton builds a Button addressing a held key.
func KeyButton(code Keycode) Button { return Button{Domain: KeyDomain, Key: code} }

// MouseButtonOf builds a Button addressing a held mouse button.
func MouseButtonOf(b InputButton) Button { return Button{Domain: MouseDomain, Mouse: b} }
