package terminal

import (
	"bufio"
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"
)

const (
	selectedPrefix   = "> "
	unselectedPrefix = "  "
)

// Screen buffers control sequences and text for one terminal. Nothing reaches
// the terminal until Flush. Rows and columns are 0-based.
type Screen struct {
	w     *bufio.Writer
	width int
}

func NewScreen(w io.Writer) *Screen {
	return &Screen{w: bufio.NewWriter(w)}
}

// SetWidth bounds the width of lines drawn by DrawLine. Zero disables
// truncation.
func (s *Screen) SetWidth(width int) {
	if width < 0 {
		width = 0
	}
	s.width = width
}

func (s *Screen) Width() int {
	return s.width
}

func (s *Screen) write(str string) {
	_, _ = s.w.WriteString(str)
}

// Print writes text at the cursor.
func (s *Screen) Print(text string) {
	s.write(text)
}

func (s *Screen) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.w, format, args...)
}

// Clear erases the whole screen and homes the cursor.
func (s *Screen) Clear() {
	s.write(seqClearScreen)
}

func (s *Screen) MoveTo(row, col int) {
	s.Printf("%s%d;%dH", csi, row+1, col+1)
}

// ClearBelow erases from the cursor to the end of the screen.
func (s *Screen) ClearBelow() {
	s.write(seqClearBelow)
}

func (s *Screen) ClearLine() {
	s.write(seqClearLine)
}

func (s *Screen) SaveCursor() {
	s.write(seqSaveCursor)
}

func (s *Screen) RestoreCursor() {
	s.write(seqRestoreCursor)
}

func (s *Screen) HideCursor() {
	s.write(seqHideCursor)
}

func (s *Screen) ShowCursor() {
	s.write(seqShowCursor)
}

// Newline moves to the start of the next line. Raw mode disables output
// post-processing, so a bare "\n" would keep the column.
func (s *Screen) Newline() {
	s.write("\r\n")
}

// DrawLine replaces row with text. A selected line gets the "> " marker and is
// shown in reverse video; other lines are indented to the same column.
func (s *Screen) DrawLine(row int, text string, selected bool) {
	prefix := unselectedPrefix
	if selected {
		prefix = selectedPrefix
	}
	if s.width > len(prefix) {
		text = runewidth.Truncate(text, s.width-len(prefix), "…")
	}

	s.MoveTo(row, 0)
	s.ClearLine()
	if selected {
		s.write(seqReverse + prefix + text + seqReset)
		return
	}
	s.write(prefix + text)
}

// Flush sends everything buffered to the terminal.
func (s *Screen) Flush() error {
	return s.w.Flush()
}
