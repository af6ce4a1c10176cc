package tui

import (
	"strings"

	"github.com/pders01/kn/internal/debuglog"
)

// viewport is the window of lines the pager shows, starting at screen row
// startRow. top is kept within [0, maxTop()].
type viewport struct {
	lines    []string
	top      int
	startRow int
	height   int
}

func newViewport(lines []string, startRow, termHeight int) *viewport {
	if startRow < 0 {
		startRow = 0
	}
	height := termHeight - startRow
	if height < 1 {
		height = 1
	}
	return &viewport{lines: lines, startRow: startRow, height: height}
}

func (v *viewport) maxTop() int {
	return max(0, len(v.lines)-v.height)
}

// scroll moves top by delta lines, clamped to the document.
func (v *viewport) scroll(delta int) {
	v.top = min(max(v.top+delta, 0), v.maxTop())
}

// visible returns the lines currently on screen.
func (v *viewport) visible() []string {
	end := min(v.top+v.height, len(v.lines))
	return v.lines[v.top:end]
}

func (v *viewport) apply(action PagerAction) {
	switch action {
	case PagerScrollUp:
		v.scroll(-1)
	case PagerScrollDown:
		v.scroll(1)
	case PagerPageUp:
		v.scroll(-v.height)
	case PagerPageDown:
		v.scroll(v.height)
	}
}

// splitLines breaks content into display lines, dropping the empty line
// after a trailing newline.
func splitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

// RunPager shows content below the current cursor position and scrolls it
// until the user quits. On return the cursor sits on a fresh line below the
// last line shown.
func RunPager(con Console, content string) error {
	if err := con.Acquire(); err != nil {
		return err
	}
	defer func() { _ = con.Release() }()

	startRow, err := con.CursorRow()
	if err != nil {
		debuglog.Debugf("pager: cursor position unavailable, starting at top: %v", err)
		startRow = 0
	}
	_, height := con.Size()

	v := newViewport(splitLines(content), startRow, height)
	if err := renderViewport(con, v); err != nil {
		return err
	}

	for {
		ev, err := con.ReadEvent()
		if err != nil {
			return wrapErr("reading key", err)
		}

		action := PagerActionFor(ev)
		if action == PagerQuit {
			break
		}
		if action == PagerNone {
			continue
		}

		before := v.top
		v.apply(action)
		if v.top == before {
			continue
		}
		if err := renderViewport(con, v); err != nil {
			return err
		}
	}

	if err := renderViewport(con, v); err != nil {
		return err
	}
	scr := con.Screen()
	scr.MoveTo(v.startRow+len(v.visible()), 0)
	scr.Newline()
	return wrapErr("leaving pager", scr.Flush())
}

func renderViewport(con Console, v *viewport) error {
	scr := con.Screen()
	scr.SaveCursor()
	scr.MoveTo(v.startRow, 0)
	scr.ClearBelow()
	for i, line := range v.visible() {
		scr.MoveTo(v.startRow+i, 0)
		scr.Print(line)
	}
	scr.RestoreCursor()
	return wrapErr("drawing pager", scr.Flush())
}
