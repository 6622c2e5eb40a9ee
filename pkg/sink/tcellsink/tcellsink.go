// Package tcellsink provides a Backend implementation using tcell.
package tcellsink

import (
	"strings"

	"github.com/vitrineterm/vitrine/pkg/sink"
	"github.com/vitrineterm/vitrine/pkg/termsrc"
	"github.com/gdamore/tcell/v2"
)

// Backend wraps a tcell.Screen, exposing the terminal lifecycle and
// event-polling methods tcellsink needs alongside its sink.CellSink
// implementation.
type Backend struct {
	screen tcell.Screen

	// Bracketed paste state
	inPaste     bool
	pasteBuffer strings.Builder
}

// New creates a new tcell backend.
func New() (*Backend, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Backend{screen: screen}, nil
}

// NewWithScreen creates a backend with an existing tcell screen (for testing).
func NewWithScreen(screen tcell.Screen) *Backend {
	return &Backend{screen: screen}
}

// Init initializes the backend.
func (b *Backend) Init() error {
	if err := b.screen.Init(); err != nil {
		return err
	}
	b.screen.EnableMouse()
	b.screen.EnablePaste()
	return nil
}

// Fini cleans up the backend.
func (b *Backend) Fini() {
	b.screen.Fini()
}

// Size returns the terminal dimensions.
func (b *Backend) Size() (width, height int) {
	return b.screen.Size()
}

// SetContent sets a cell at position (x, y).
func (b *Backend) SetContent(x, y int, mainc rune, comb []rune, style sink.Style) {
	b.screen.SetContent(x, y, mainc, comb, convertStyle(style))
}

// Show synchronizes the buffer to the terminal.
func (b *Backend) Show() {
	b.screen.Show()
}

// Clear clears the screen.
func (b *Backend) Clear() {
	b.screen.Clear()
}

// HideCursor hides the cursor.
func (b *Backend) HideCursor() {
	b.screen.HideCursor()
}

// ShowCursor shows the cursor.
func (b *Backend) ShowCursor() {
	// tcell shows cursor when we set its position
}

// SetCursorPos sets the cursor position.
func (b *Backend) SetCursorPos(x, y int) {
	b.screen.ShowCursor(x, y)
}

// PollEvent blocks until an event is available.
func (b *Backend) PollEvent() termsrc.Event {
	for {
		ev := b.screen.PollEvent()
		if ev == nil {
			return nil
		}

		// Handle bracketed paste state machine
		switch e := ev.(type) {
		case *tcell.EventPaste:
			if e.Start() {
				// Begin paste mode, buffer subsequent key events
				b.inPaste = true
				b.pasteBuffer.Reset()
				continue
			}
			if e.End() {
				// End paste mode, emit PasteEvent with accumulated content
				b.inPaste = false
				text := b.pasteBuffer.String()
				b.pasteBuffer.Reset()
				if text != "" {
					return termsrc.PasteEvent{Text: text}
				}
				continue
			}

		case *tcell.EventKey:
			if b.inPaste {
				// Accumulate runes during paste
				if e.Key() == tcell.KeyRune {
					b.pasteBuffer.WriteRune(e.Rune())
				} else if e.Key() == tcell.KeyEnter {
					b.pasteBuffer.WriteRune('\n')
				} else if e.Key() == tcell.KeyTab {
					b.pasteBuffer.WriteRune('\t')
				}
				continue
			}
		}

		// Normal event handling
		return convertEvent(ev)
	}
}

// PostEvent injects an event into the queue. Only ResizeEvent is converted
// and posted; any other event is dropped and PostEvent returns nil.
func (b *Backend) PostEvent(ev termsrc.Event) error {
	tev := reverseConvertEvent(ev)
	if tev != nil {
		return b.screen.PostEvent(tev)
	}
	return nil
}

// Beep emits an audible bell.
func (b *Backend) Beep() {
	b.screen.Beep()
}

// Sync forces a full redraw.
func (b *Backend) Sync() {
	b.screen.Sync()
}

// convertStyle converts sink.Style to tcell.Style.
func convertStyle(s sink.Style) tcell.Style {
	fg, bg, attrs := s.Decompose()
	style := tcell.StyleDefault.
		Foreground(convertColor(fg)).
		Background(convertColor(bg))

	if attrs&sink.AttrBold != 0 {
		style = style.Bold(true)
	}
	if attrs&sink.AttrItalic != 0 {
		style = style.Italic(true)
	}
	if attrs&sink.AttrUnderline != 0 {
		style = style.Underline(true)
	}
	if attrs&sink.AttrDim != 0 {
		style = style.Dim(true)
	}
	if attrs&sink.AttrBlink != 0 {
		style = style.Blink(true)
	}
	if attrs&sink.AttrReverse != 0 {
		style = style.Reverse(true)
	}
	if attrs&sink.AttrStrikeThrough != 0 {
		style = style.StrikeThrough(true)
	}

	return style
}

// convertColor converts sink.Color to tcell.Color.
func convertColor(c sink.Color) tcell.Color {
	if c == sink.ColorDefault {
		return tcell.ColorDefault
	}
	if c.IsRGB() {
		r, g, b := c.RGB()
		return tcell.NewRGBColor(int32(r), int32(g), int32(b))
	}
	return tcell.PaletteColor(int(c))
}

// convertEvent converts a tcell event to termsrc.Event.
func convertEvent(ev tcell.Event) termsrc.Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return termsrc.KeyEvent{
			Key:   convertKey(e.Key()),
			Rune:  e.Rune(),
			Alt:   e.Modifiers()&tcell.ModAlt != 0,
			Ctrl:  e.Modifiers()&tcell.ModCtrl != 0,
			Shift: e.Modifiers()&tcell.ModShift != 0,
		}
	case *tcell.EventResize:
		w, h := e.Size()
		return termsrc.ResizeEvent{Width: w, Height: h}
	case *tcell.EventMouse:
		x, y := e.Position()
		mods := e.Modifiers()
		return termsrc.MouseEvent{
			X:      x,
			Y:      y,
			Button: convertMouseButton(e.Buttons()),
			Action: convertMouseAction(e.Buttons()),
			Alt:    mods&tcell.ModAlt != 0,
			Ctrl:   mods&tcell.ModCtrl != 0,
			Shift:  mods&tcell.ModShift != 0,
		}
	default:
		return nil
	}
}

// convertKey converts tcell.Key to termsrc.Key.
func convertKey(k tcell.Key) termsrc.Key {
	switch k {
	case tcell.KeyRune:
		return termsrc.KeyRune
	case tcell.KeyUp:
		return termsrc.KeyArrowUp
	case tcell.KeyDown:
		return termsrc.KeyArrowDown
	case tcell.KeyRight:
		return termsrc.KeyRight
	case tcell.KeyLeft:
		return termsrc.KeyLeft
	case tcell.KeyPgUp:
		return termsrc.KeyPageUp
	case tcell.KeyPgDn:
		return termsrc.KeyPageDown
	case tcell.KeyHome:
		return termsrc.KeyHome
	case tcell.KeyEnd:
		return termsrc.KeyEnd
	case tcell.KeyInsert:
		return termsrc.KeyInsert
	case tcell.KeyDelete:
		return termsrc.KeyDelete
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return termsrc.KeyBackspace
	case tcell.KeyTab:
		return termsrc.KeyTab
	case tcell.KeyEnter:
		return termsrc.KeyEnter
	case tcell.KeyEscape:
		return termsrc.KeyEscape
	case tcell.KeyCtrlB:
		return termsrc.KeyCtrlB
	case tcell.KeyCtrlC:
		return termsrc.KeyCtrlC
	case tcell.KeyCtrlD:
		return termsrc.KeyCtrlD
	case tcell.KeyCtrlF:
		return termsrc.KeyCtrlF
	case tcell.KeyCtrlP:
		return termsrc.KeyCtrlP
	case tcell.KeyCtrlZ:
		return termsrc.KeyCtrlZ
	case tcell.KeyF1:
		return termsrc.KeyF1
	case tcell.KeyF2:
		return termsrc.KeyF2
	case tcell.KeyF3:
		return termsrc.KeyF3
	case tcell.KeyF4:
		return termsrc.KeyF4
	case tcell.KeyF5:
		return termsrc.KeyF5
	case tcell.KeyF6:
		return termsrc.KeyF6
	case tcell.KeyF7:
		return termsrc.KeyF7
	case tcell.KeyF8:
		return termsrc.KeyF8
	case tcell.KeyF9:
		return termsrc.KeyF9
	case tcell.KeyF10:
		return termsrc.KeyF10
	case tcell.KeyF11:
		return termsrc.KeyF11
	case tcell.KeyF12:
		return termsrc.KeyF12
	default:
		return termsrc.KeyNone
	}
}

// convertMouseButton converts tcell button mask to termsrc.MouseButton.
func convertMouseButton(buttons tcell.ButtonMask) termsrc.MouseButton {
	switch {
	case buttons&tcell.WheelUp != 0:
		return termsrc.MouseWheelUp
	case buttons&tcell.WheelDown != 0:
		return termsrc.MouseWheelDown
	case buttons&tcell.Button1 != 0:
		return termsrc.MouseLeft
	case buttons&tcell.Button2 != 0:
		return termsrc.MouseMiddle
	case buttons&tcell.Button3 != 0:
		return termsrc.MouseRight
	default:
		return termsrc.MouseNone
	}
}

// convertMouseAction determines the mouse action from button state.
func convertMouseAction(buttons tcell.ButtonMask) termsrc.MouseAction {
	if buttons == tcell.ButtonNone {
		return termsrc.MouseRelease
	}
	if buttons&(tcell.WheelUp|tcell.WheelDown) != 0 {
		return termsrc.MousePress // Wheel events are instantaneous
	}
	return termsrc.MousePress
}

// reverseConvertEvent converts a termsrc.ResizeEvent to a tcell.Event for
// PostEvent; it returns nil for every other event type.
func reverseConvertEvent(ev termsrc.Event) tcell.Event {
	switch e := ev.(type) {
	case termsrc.ResizeEvent:
		return tcell.NewEventResize(e.Width, e.Height)
	default:
		return nil
	}
}

// SetString writes one batch of same-style segments starting at
// (batch.StartX, batch.Y), satisfying sink.CellSink on top of the
// cell-at-a-time Backend API tcell exposes.
func (b *Backend) SetString(batch sink.BatchDrawInfo) error {
	x := batch.StartX
	for _, seg := range batch.Segments {
		for _, r := range seg.Text {
			b.screen.SetContent(x, batch.Y, r, nil, convertStyle(seg.Style))
			x++
		}
	}
	return nil
}

// Flush synchronizes the buffer to the terminal.
func (b *Backend) Flush() error {
	b.screen.Show()
	return nil
}

// Stop restores the terminal, satisfying sink.CellSink.
func (b *Backend) Stop() error {
	b.screen.Fini()
	return nil
}

// Ensure Backend implements sink.CellSink.
var _ sink.CellSink = (*Backend)(nil)
