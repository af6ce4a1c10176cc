package terminal

import (
	"fmt"
	"strings"
)

// Key identifies a decoded keypress.
type Key uint16

const (
	KeyNone Key = iota
	KeyRune     // printable character, see Event.Rune

	KeyEscape
	KeyEnter
	KeyTab
	KeyBacktab
	KeyBackspace
	KeyDelete
	KeyInsert

	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
)

var keyNames = map[Key]string{
	KeyNone:      "none",
	KeyRune:      "rune",
	KeyEscape:    "esc",
	KeyEnter:     "enter",
	KeyTab:       "tab",
	KeyBacktab:   "backtab",
	KeyBackspace: "backspace",
	KeyDelete:    "delete",
	KeyInsert:    "insert",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyHome:      "home",
	KeyEnd:       "end",
	KeyPageUp:    "pgup",
	KeyPageDown:  "pgdown",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("key(%d)", uint16(k))
}

// Modifier flags
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModShift Modifier = 1 << 0
	ModAlt   Modifier = 1 << 1
	ModCtrl  Modifier = 1 << 2
)

// Has reports whether all bits of m are set.
func (mod Modifier) Has(m Modifier) bool {
	return mod&m == m
}

// Event is a single keypress. Ctrl+letter arrives as KeyRune with the lower
// case letter in Rune and ModCtrl set.
type Event struct {
	Key  Key
	Rune rune
	Mod  Modifier
}

// Ctrl builds the event produced by Ctrl+r.
func Ctrl(r rune) Event {
	return Event{Key: KeyRune, Rune: r, Mod: ModCtrl}
}

// Rune builds the event produced by typing r.
func Rune(r rune) Event {
	return Event{Key: KeyRune, Rune: r}
}

func (e Event) String() string {
	var b strings.Builder
	if e.Mod.Has(ModCtrl) {
		b.WriteString("ctrl+")
	}
	if e.Mod.Has(ModAlt) {
		b.WriteString("alt+")
	}
	if e.Mod.Has(ModShift) {
		b.WriteString("shift+")
	}
	if e.Key == KeyRune {
		if e.Rune == ' ' {
			b.WriteString("space")
		} else {
			b.WriteRune(e.Rune)
		}
	} else {
		b.WriteString(e.Key.String())
	}
	return b.String()
}
