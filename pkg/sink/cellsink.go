// Package sink defines the destination a resolved cell buffer emits to:
// CellSink, the minimal SetString/Flush/Stop contract every renderer
// implements (tcellsink for interactive terminals, simsink for tests,
// ansisink for dependency-free raw ANSI output), plus the Style it carries.
package sink

// Segment groups consecutive cells on one row sharing the same style.
type Segment struct {
	Text  string
	Style Style
}

// BatchDrawInfo is one contiguous span of a dirty row, broken into
// same-style segments, as built by the cell buffer's update_terminal pass.
type BatchDrawInfo struct {
	StartX   int
	Y        int
	Segments []Segment
}

// CellSink is the destination the cell buffer emits resolved, batched
// screen content to. Implementations: tcellsink (interactive), simsink
// (tests), ansisink (dependency-free raw ANSI output).
type CellSink interface {
	// SetString writes one batch of same-row segments starting at
	// (batch.StartX, batch.Y).
	SetString(batch BatchDrawInfo) error

	// Flush makes all SetString calls since the last Flush visible.
	Flush() error

	// Stop releases any resources the sink holds (terminal mode, file
	// handles). Safe to call once at shutdown.
	Stop() error
}
