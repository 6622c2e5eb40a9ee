package tcellsink

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcellv2 "github.com/gdamore/tcell/v2"

	"github.com/vitrineterm/vitrine/pkg/sink"
	"github.com/vitrineterm/vitrine/pkg/termsrc"
)

func newTestBackend(t *testing.T, w, h int) (*Backend, tcellv2.SimulationScreen) {
	t.Helper()
	screen := tcellv2.NewSimulationScreen("")
	screen.SetSize(w, h)
	b := NewWithScreen(screen)
	require.NoError(t, b.Init())
	t.Cleanup(b.Fini)
	return b, screen
}

func TestSetStringWritesSegments(t *testing.T) {
	b, screen := newTestBackend(t, 20, 5)

	err := b.SetString(sink.BatchDrawInfo{
		StartX: 2,
		Y:      1,
		Segments: []sink.Segment{
			{Text: "hi", Style: sink.DefaultStyle().Foreground(sink.ColorRed)},
		},
	})
	require.NoError(t, err)
	require.NoError(t, b.Flush())

	mainc, _, _, _ := screen.GetContent(2, 1)
	assert.Equal(t, 'h', mainc)
	mainc2, _, _, _ := screen.GetContent(3, 1)
	assert.Equal(t, 'i', mainc2)
}

func TestStopCallsFini(t *testing.T) {
	screen := tcellv2.NewSimulationScreen("")
	screen.SetSize(10, 5)
	b := NewWithScreen(screen)
	require.NoError(t, b.Init())
	require.NoError(t, b.Stop())
}

func TestEventSourceDeliversInjectedKey(t *testing.T) {
	b, screen := newTestBackend(t, 10, 5)
	es := NewEventSource(b)
	defer es.Close()

	screen.InjectKey(tcellv2.KeyRune, 'a', tcellv2.ModNone)

	ev, ok := es.PollEvent(time.Second)
	require.True(t, ok)
	keyEv, ok := ev.(termsrc.KeyEvent)
	require.True(t, ok)
	assert.Equal(t, 'a', keyEv.Rune)
}

func TestEventSourceTimesOutWithNoEvents(t *testing.T) {
	b, _ := newTestBackend(t, 10, 5)
	es := NewEventSource(b)
	defer es.Close()

	_, ok := es.PollEvent(20 * time.Millisecond)
	assert.False(t, ok)
}
