package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrNoCursorReport is returned when the terminal does not answer a cursor
// position request.
var ErrNoCursorReport = errors.New("terminal did not report cursor position")

// maxSequence bounds how many bytes of an unknown CSI sequence are consumed.
const maxSequence = 16

// Reader decodes raw terminal bytes into key events.
//
// An ESC byte with nothing buffered behind it is reported as KeyEscape; the
// bytes of an escape sequence arrive from the terminal in a single write, so
// they are already buffered when the ESC is read.
type Reader struct {
	r *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Buffered returns the number of undecoded bytes held in memory.
func (r *Reader) Buffered() int {
	return r.r.Buffered()
}

// Discard drops everything buffered.
func (r *Reader) Discard() {
	_, _ = r.r.Discard(r.r.Buffered())
}

// ReadEvent blocks until one complete key event is decoded.
func (r *Reader) ReadEvent() (Event, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return Event{}, err
	}

	switch {
	case b == 0x1b:
		return r.parseEscape()
	case b < utf8.RuneSelf:
		return parseControl(b), nil
	}

	if err := r.r.UnreadByte(); err != nil {
		return Event{}, err
	}
	ch, _, err := r.r.ReadRune()
	if err != nil {
		return Event{}, err
	}
	return Event{Key: KeyRune, Rune: ch}, nil
}

func parseControl(b byte) Event {
	switch b {
	case '\r', '\n':
		return Event{Key: KeyEnter}
	case '\t':
		return Event{Key: KeyTab}
	case 0x08, 0x7f:
		return Event{Key: KeyBackspace}
	case 0x00:
		return Event{Key: KeyRune, Rune: ' ', Mod: ModCtrl}
	}
	if b >= 0x01 && b <= 0x1a {
		return Ctrl(rune('a' + b - 1))
	}
	if b < 0x20 {
		return Event{Key: KeyNone}
	}
	return Event{Key: KeyRune, Rune: rune(b)}
}

func (r *Reader) parseEscape() (Event, error) {
	if r.r.Buffered() == 0 {
		return Event{Key: KeyEscape}, nil
	}

	next, err := r.r.ReadByte()
	if err != nil {
		return Event{Key: KeyEscape}, nil
	}

	switch next {
	case '[':
		return r.parseCSI()
	case 'O':
		return r.parseSS3()
	case 0x1b:
		if err := r.r.UnreadByte(); err != nil {
			return Event{}, err
		}
		return Event{Key: KeyEscape}, nil
	}

	// ESC followed by a key is Alt+key.
	if err := r.r.UnreadByte(); err != nil {
		return Event{}, err
	}
	ev, err := r.ReadEvent()
	if err != nil {
		return Event{Key: KeyEscape}, nil
	}
	ev.Mod |= ModAlt
	return ev, nil
}

func (r *Reader) parseSS3() (Event, error) {
	if r.r.Buffered() == 0 {
		return Event{Key: KeyRune, Rune: 'O', Mod: ModAlt}, nil
	}
	final, err := r.r.ReadByte()
	if err != nil {
		return Event{Key: KeyEscape}, nil
	}
	if key, ok := finalKeys[final]; ok {
		return Event{Key: key}, nil
	}
	return Event{Key: KeyNone}, nil
}

var finalKeys = map[byte]Key{
	'A': KeyUp,
	'B': KeyDown,
	'C': KeyRight,
	'D': KeyLeft,
	'H': KeyHome,
	'F': KeyEnd,
	'Z': KeyBacktab,
}

var tildeKeys = map[string]Key{
	"1": KeyHome,
	"2": KeyInsert,
	"3": KeyDelete,
	"4": KeyEnd,
	"5": KeyPageUp,
	"6": KeyPageDown,
	"7": KeyHome,
	"8": KeyEnd,
}

// readCSI consumes parameter bytes up to and including the final byte.
func readCSI(next func() (byte, error)) (params string, final byte, err error) {
	var seq []byte
	for len(seq) < maxSequence {
		b, err := next()
		if err != nil {
			return "", 0, err
		}
		if b >= 0x40 && b <= 0x7e {
			return string(seq), b, nil
		}
		seq = append(seq, b)
	}
	return string(seq), 0, nil
}

func (r *Reader) parseCSI() (Event, error) {
	params, final, err := readCSI(r.r.ReadByte)
	if err != nil {
		return Event{Key: KeyEscape}, nil
	}

	base, mod := params, ModNone
	if i := strings.IndexByte(params, ';'); i >= 0 {
		base = params[:i]
		mod = xtermModifier(params[i+1:])
	}

	if final == '~' {
		if key, ok := tildeKeys[base]; ok {
			return Event{Key: key, Mod: mod}, nil
		}
		return Event{Key: KeyNone}, nil
	}
	if key, ok := finalKeys[final]; ok {
		if key == KeyBacktab {
			mod |= ModShift
		}
		return Event{Key: key, Mod: mod}, nil
	}
	return Event{Key: KeyNone}, nil
}

// xtermModifier decodes the "1 + bitmask" modifier parameter of xterm keys.
func xtermModifier(param string) Modifier {
	n, err := strconv.Atoi(param)
	if err != nil || n < 2 {
		return ModNone
	}
	n--
	var mod Modifier
	if n&1 != 0 {
		mod |= ModShift
	}
	if n&2 != 0 {
		mod |= ModAlt
	}
	if n&4 != 0 {
		mod |= ModCtrl
	}
	return mod
}

// ReadyFunc reports whether input becomes readable within timeout.
type ReadyFunc func(timeout time.Duration) (bool, error)

// ReadCursorPosition consumes input up to a cursor position report
// (ESC [ row ; col R) and returns the 0-based row and column. Keys typed before
// the report arrives are dropped.
//
// When ready is non-nil the whole report must arrive within timeout; ready is
// consulted before every read that would block, and ErrNoCursorReport is
// returned once the time is up. A nil ready reads without a deadline.
func (r *Reader) ReadCursorPosition(timeout time.Duration, ready ReadyFunc) (row, col int, err error) {
	deadline := time.Now().Add(timeout)
	next := func() (byte, error) {
		if ready != nil && r.r.Buffered() == 0 {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return 0, ErrNoCursorReport
			}
			ok, err := ready(remaining)
			if err != nil {
				return 0, err
			}
			if !ok {
				return 0, ErrNoCursorReport
			}
		}
		return r.r.ReadByte()
	}

	for {
		b, err := next()
		if err != nil {
			return 0, 0, fmt.Errorf("reading cursor report: %w", err)
		}
		if b != 0x1b {
			continue
		}
		b, err = next()
		if err != nil {
			return 0, 0, fmt.Errorf("reading cursor report: %w", err)
		}
		if b != '[' {
			// The byte may be the ESC that starts the report.
			if err := r.r.UnreadByte(); err != nil {
				return 0, 0, fmt.Errorf("reading cursor report: %w", err)
			}
			continue
		}
		params, final, err := readCSI(next)
		if err != nil {
			return 0, 0, fmt.Errorf("reading cursor report: %w", err)
		}
		if final != 'R' {
			continue
		}
		rowStr, colStr, ok := strings.Cut(params, ";")
		if !ok {
			continue
		}
		row, rowErr := strconv.Atoi(rowStr)
		col, colErr := strconv.Atoi(colStr)
		if rowErr != nil || colErr != nil || row < 1 || col < 1 {
			continue
		}
		return row - 1, col - 1, nil
	}
}
