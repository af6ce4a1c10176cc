package tui

import (
	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer turns statement markdown into ANSI text sized for the
// terminal. The glamour renderer is rebuilt only when the wrap width moves
// noticeably.
type MarkdownRenderer struct {
	minWidth, maxWidth int

	renderer *glamour.TermRenderer
	width    int
}

func NewMarkdownRenderer(minWidth, maxWidth int) *MarkdownRenderer {
	if minWidth < 1 {
		minWidth = 40
	}
	if maxWidth < minWidth {
		maxWidth = minWidth
	}
	return &MarkdownRenderer{minWidth: minWidth, maxWidth: maxWidth}
}

// wrapWidth picks a readable column count for a terminal termWidth wide.
func (m *MarkdownRenderer) wrapWidth(termWidth int) int {
	if termWidth < m.minWidth+10 {
		return max(termWidth-4, 20)
	}
	return min(max(termWidth*9/10, m.minWidth), m.maxWidth)
}

func (m *MarkdownRenderer) Render(markdown string, termWidth int) (string, error) {
	width := m.wrapWidth(termWidth)
	if m.renderer == nil || abs(m.width-width) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", wrapErr("creating markdown renderer", err)
		}
		m.renderer = r
		m.width = width
	}

	out, err := m.renderer.Render(markdown)
	if err != nil {
		return "", wrapErr("rendering markdown", err)
	}
	return out, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
