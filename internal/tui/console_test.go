package tui

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/pders01/kn/internal/terminal"
)

// chunkWriter keeps every Write separately. Screen flushes with one Write, so
// each chunk is one frame. When err is set, every Write after the first
// okWrites fails with it.
type chunkWriter struct {
	chunks   []string
	err      error
	okWrites int
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	if w.err != nil && len(w.chunks) >= w.okWrites {
		return 0, w.err
	}
	w.chunks = append(w.chunks, string(p))
	return len(p), nil
}

func (w *chunkWriter) String() string {
	return strings.Join(w.chunks, "")
}

// fakeKey is a scripted keypress. typedAhead keys were queued before the
// current screen was drawn and are dropped by Drain.
type fakeKey struct {
	ev         terminal.Event
	typedAhead bool
}

type fakeConsole struct {
	out    *chunkWriter
	screen *terminal.Screen
	keys   []fakeKey

	width, height int
	cursorRow     int
	cursorErr     error
	acquireErr    error

	acquired     bool
	acquireCalls int
	releaseCalls int
	drainCalls   int
	dropped      []terminal.Event
}

func newFakeConsole(keys ...terminal.Event) *fakeConsole {
	out := &chunkWriter{}
	c := &fakeConsole{
		out:    out,
		screen: terminal.NewScreen(out),
		width:  80,
		height: 24,
	}
	for _, ev := range keys {
		c.keys = append(c.keys, fakeKey{ev: ev})
	}
	return c
}

// failWrites makes the terminal reject output after okWrites frames.
func (c *fakeConsole) failWrites(okWrites int, err error) {
	c.out.err = err
	c.out.okWrites = okWrites
}

func (c *fakeConsole) Acquire() error {
	c.acquireCalls++
	if c.acquireErr != nil {
		return c.acquireErr
	}
	c.acquired = true
	return nil
}

func (c *fakeConsole) Release() error {
	if !c.acquired {
		return nil
	}
	c.acquired = false
	c.releaseCalls++
	return nil
}

func (c *fakeConsole) ReadEvent() (terminal.Event, error) {
	if !c.acquired {
		return terminal.Event{}, errors.New("read outside of an acquired session")
	}
	if len(c.keys) == 0 {
		return terminal.Event{}, io.EOF
	}
	k := c.keys[0]
	c.keys = c.keys[1:]
	return k.ev, nil
}

func (c *fakeConsole) Drain() error {
	c.drainCalls++
	for len(c.keys) > 0 && c.keys[0].typedAhead {
		c.dropped = append(c.dropped, c.keys[0].ev)
		c.keys = c.keys[1:]
	}
	return nil
}

func (c *fakeConsole) Size() (int, int) {
	return c.width, c.height
}

func (c *fakeConsole) CursorRow() (int, error) {
	return c.cursorRow, c.cursorErr
}

func (c *fakeConsole) Screen() *terminal.Screen {
	return c.screen
}

// Key shorthands.
var (
	keyUp    = terminal.Event{Key: terminal.KeyUp}
	keyDown  = terminal.Event{Key: terminal.KeyDown}
	keyLeft  = terminal.Event{Key: terminal.KeyLeft}
	keyRight = terminal.Event{Key: terminal.KeyRight}
	keyEnter = terminal.Event{Key: terminal.KeyEnter}
	keyEsc   = terminal.Event{Key: terminal.KeyEscape}
	keyPgDn  = terminal.Event{Key: terminal.KeyPageDown}
	keyPgUp  = terminal.Event{Key: terminal.KeyPageUp}
	ctrlC    = terminal.Ctrl('c')
)

func key(r rune) terminal.Event {
	return terminal.Rune(r)
}

// stepClock advances by step on every call.
func stepClock(step time.Duration) func() time.Time {
	t := time.Unix(1_700_000_000, 0)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

// scriptClock returns base+offsets[i] on the i-th call and repeats the last
// offset afterwards.
func scriptClock(offsets ...time.Duration) func() time.Time {
	base := time.Unix(1_700_000_000, 0)
	i := 0
	return func() time.Time {
		off := offsets[min(i, len(offsets)-1)]
		i++
		return base.Add(off)
	}
}
