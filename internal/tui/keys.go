package tui

import (
	"time"

	"github.com/pders01/kn/internal/terminal"
)

// ListAction is what a key means to the list navigator.
type ListAction int

const (
	ListNone ListAction = iota
	ListMoveUp
	ListMoveDown
	ListPrevPage
	ListNextPage
	ListSelect
	ListCancel
)

func (a ListAction) String() string {
	switch a {
	case ListMoveUp:
		return "move-up"
	case ListMoveDown:
		return "move-down"
	case ListPrevPage:
		return "prev-page"
	case ListNextPage:
		return "next-page"
	case ListSelect:
		return "select"
	case ListCancel:
		return "cancel"
	default:
		return "none"
	}
}

// PagerAction is what a key means to the pager.
type PagerAction int

const (
	PagerNone PagerAction = iota
	PagerScrollUp
	PagerScrollDown
	PagerPageUp
	PagerPageDown
	PagerQuit
)

func (a PagerAction) String() string {
	switch a {
	case PagerScrollUp:
		return "scroll-up"
	case PagerScrollDown:
		return "scroll-down"
	case PagerPageUp:
		return "page-up"
	case PagerPageDown:
		return "page-down"
	case PagerQuit:
		return "quit"
	default:
		return "none"
	}
}

// isQuit matches Esc, q and Ctrl+C, which leave every screen.
func isQuit(ev terminal.Event) bool {
	switch {
	case ev.Key == terminal.KeyEscape && ev.Mod == terminal.ModNone:
		return true
	case ev.Key != terminal.KeyRune:
		return false
	case ev.Mod == terminal.ModCtrl:
		return ev.Rune == 'c'
	case ev.Mod == terminal.ModNone:
		return ev.Rune == 'q'
	}
	return false
}

// plainRune returns the typed character when ev is an unmodified rune.
func plainRune(ev terminal.Event) (rune, bool) {
	if ev.Key != terminal.KeyRune || ev.Mod != terminal.ModNone {
		return 0, false
	}
	return ev.Rune, true
}

// ListActionFor maps a key to a list action. Unbound keys map to ListNone.
func ListActionFor(ev terminal.Event) ListAction {
	if isQuit(ev) {
		return ListCancel
	}
	if ev.Mod != terminal.ModNone {
		return ListNone
	}

	switch ev.Key {
	case terminal.KeyUp:
		return ListMoveUp
	case terminal.KeyDown:
		return ListMoveDown
	case terminal.KeyLeft:
		return ListPrevPage
	case terminal.KeyRight:
		return ListNextPage
	case terminal.KeyEnter:
		return ListSelect
	}

	r, ok := plainRune(ev)
	if !ok {
		return ListNone
	}
	switch r {
	case 'f':
		return ListMoveUp
	case 'd':
		return ListMoveDown
	case 'k':
		return ListPrevPage
	case 'j':
		return ListNextPage
	}
	return ListNone
}

// PagerActionFor maps a key to a pager action. Unbound keys map to PagerNone.
func PagerActionFor(ev terminal.Event) PagerAction {
	if isQuit(ev) {
		return PagerQuit
	}
	if ev.Mod != terminal.ModNone {
		return PagerNone
	}

	switch ev.Key {
	case terminal.KeyUp:
		return PagerScrollUp
	case terminal.KeyDown:
		return PagerScrollDown
	case terminal.KeyPageUp:
		return PagerPageUp
	case terminal.KeyPageDown:
		return PagerPageDown
	}

	r, ok := plainRune(ev)
	if !ok {
		return PagerNone
	}
	switch r {
	case 'k':
		return PagerScrollUp
	case 'j':
		return PagerScrollDown
	case 'b':
		return PagerPageUp
	case ' ':
		return PagerPageDown
	}
	return PagerNone
}

// debouncer drops events that arrive within interval of the last accepted
// one. A zero interval accepts everything.
type debouncer struct {
	interval time.Duration
	last     time.Time
}

// reset starts a new quiet period at t.
func (d *debouncer) reset(t time.Time) {
	d.last = t
}

func (d *debouncer) allow(t time.Time) bool {
	if t.Sub(d.last) < d.interval {
		return false
	}
	d.last = t
	return true
}
