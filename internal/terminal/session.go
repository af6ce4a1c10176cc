package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/pders01/kn/internal/debuglog"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	cursorReportTimeout = 500 * time.Millisecond
)

// Swapped in tests.
var (
	makeRaw     = term.MakeRaw
	restoreTerm = term.Restore
	termGetSize = term.GetSize
	isTerminal  = term.IsTerminal
)

// Session owns the terminal for the duration of an interactive loop.
//
// Acquire switches the terminal to raw mode and hides the cursor; Release
// undoes both. A Session may be acquired again after it was released, which is
// how a list and a pager share one terminal.
type Session struct {
	mu       sync.Mutex
	fd       int
	in       *os.File
	tty      *os.File
	state    *term.State
	acquired bool

	reader *Reader
	screen *Screen

	width, height int
}

type Option func(*Session)

// WithSize fixes the size reported by a session that is not backed by a
// terminal.
func WithSize(width, height int) Option {
	return func(s *Session) {
		s.width, s.height = width, height
	}
}

// Open returns a session on the controlling terminal, falling back to
// stdin/stdout when /dev/tty cannot be opened.
func Open(opts ...Option) (*Session, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		debuglog.Debugf("open /dev/tty: %v, using stdin/stdout", err)
		if !isTerminal(int(os.Stdin.Fd())) {
			return nil, fmt.Errorf("no terminal available: %w", err)
		}
		return NewSession(os.Stdin, os.Stdout, opts...), nil
	}

	s := NewSession(tty, tty, opts...)
	s.tty = tty
	return s, nil
}

// NewSession wraps an arbitrary reader and writer. When in is not a terminal
// the session is virtual: Acquire and Release only write cursor sequences.
func NewSession(in io.Reader, out io.Writer, opts ...Option) *Session {
	s := &Session{
		fd:     -1,
		reader: NewReader(in),
		screen: NewScreen(out),
		width:  defaultWidth,
		height: defaultHeight,
	}
	if f, ok := in.(*os.File); ok && isTerminal(int(f.Fd())) {
		s.in = f
		s.fd = int(f.Fd())
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsTerminal reports whether the session drives a real terminal.
func (s *Session) IsTerminal() bool {
	return s.fd >= 0
}

// Acquire enters raw mode and hides the cursor. If raw mode cannot be entered
// the terminal is left untouched and the error is returned.
func (s *Session) Acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.acquired {
		return nil
	}
	if s.fd >= 0 {
		state, err := makeRaw(s.fd)
		if err != nil {
			return fmt.Errorf("entering raw mode: %w", err)
		}
		s.state = state
	}
	s.acquired = true

	s.screen.HideCursor()
	if err := s.screen.Flush(); err != nil {
		debuglog.Warnf("hide cursor: %v", err)
	}
	return nil
}

// Release restores the saved terminal mode and shows the cursor. Each step is
// attempted once; failures are logged and joined into the returned error.
// Releasing a session that is not acquired does nothing.
func (s *Session) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.acquired {
		return nil
	}
	s.acquired = false

	var errs []error
	if s.state != nil {
		if err := restoreTerm(s.fd, s.state); err != nil {
			debuglog.Errorf("restore terminal mode: %v", err)
			errs = append(errs, fmt.Errorf("restoring terminal mode: %w", err))
		}
		s.state = nil
	}

	s.screen.ShowCursor()
	if err := s.screen.Flush(); err != nil {
		debuglog.Errorf("show cursor: %v", err)
		errs = append(errs, fmt.Errorf("showing cursor: %w", err))
	}
	return errors.Join(errs...)
}

// Acquired reports whether the session is currently in raw mode.
func (s *Session) Acquired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acquired
}

// Close releases the session and closes /dev/tty if Open opened it.
func (s *Session) Close() error {
	err := s.Release()
	if s.tty != nil {
		if cerr := s.tty.Close(); cerr != nil && err == nil {
			err = cerr
		}
		s.tty = nil
	}
	return err
}

func (s *Session) Screen() *Screen {
	return s.screen
}

// ReadEvent blocks for the next key.
func (s *Session) ReadEvent() (Event, error) {
	return s.reader.ReadEvent()
}

// Size returns the terminal width and height, or the configured size for a
// virtual session.
func (s *Session) Size() (width, height int) {
	width, height = s.width, s.height
	if s.fd >= 0 {
		w, h, err := termGetSize(s.fd)
		if err == nil && w > 0 && h > 0 {
			width, height = w, h
		} else if err != nil {
			debuglog.Debugf("terminal size: %v", err)
		}
	}
	s.screen.SetWidth(width)
	return width, height
}

// Drain discards input that arrived before the caller was ready for it.
func (s *Session) Drain() error {
	s.reader.Discard()
	if s.fd < 0 {
		return nil
	}

	buf := make([]byte, 256)
	for {
		ready, err := pollReadable(s.fd, 0)
		if err != nil {
			return fmt.Errorf("polling input: %w", err)
		}
		if !ready {
			return nil
		}
		if _, err := s.in.Read(buf); err != nil {
			return fmt.Errorf("draining input: %w", err)
		}
	}
}

// CursorRow asks the terminal where the cursor is and returns its 0-based row.
func (s *Session) CursorRow() (int, error) {
	s.screen.write(seqCursorReport)
	if err := s.screen.Flush(); err != nil {
		return 0, fmt.Errorf("requesting cursor position: %w", err)
	}

	var ready ReadyFunc
	if s.fd >= 0 {
		ready = func(timeout time.Duration) (bool, error) {
			return pollReadable(s.fd, timeout)
		}
	}

	row, _, err := s.reader.ReadCursorPosition(cursorReportTimeout, ready)
	if err != nil {
		return 0, err
	}
	return row, nil
}
