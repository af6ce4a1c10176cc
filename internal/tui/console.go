package tui

import "github.com/pders01/kn/internal/terminal"

// Console is the terminal surface the interactive loops run on.
// *terminal.Session implements it.
type Console interface {
	Acquire() error
	Release() error
	ReadEvent() (terminal.Event, error)
	Drain() error
	Size() (width, height int)
	CursorRow() (int, error)
	Screen() *terminal.Screen
}

var _ Console = (*terminal.Session)(nil)
