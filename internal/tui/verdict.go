package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Verdict classifies a submission score for display.
type Verdict int

const (
	VerdictPartial Verdict = iota
	VerdictAccepted
	VerdictFailed
)

// VerdictFor maps a score out of 100: a full score is accepted, half or less
// failed, anything between partial.
func VerdictFor(score int) Verdict {
	switch {
	case score >= 100:
		return VerdictAccepted
	case score <= 50:
		return VerdictFailed
	default:
		return VerdictPartial
	}
}

func (v Verdict) String() string {
	switch v {
	case VerdictAccepted:
		return "accepted"
	case VerdictFailed:
		return "failed"
	default:
		return "partial"
	}
}

// Style returns the style a score with this verdict is printed in.
func (v Verdict) Style() lipgloss.Style {
	switch v {
	case VerdictAccepted:
		return StatusSuccessStyle
	case VerdictFailed:
		return StatusErrorStyle
	default:
		return StatusWarnStyle
	}
}

// RenderScore formats a score in its verdict colour.
func RenderScore(score int) string {
	return VerdictFor(score).Style().Render(fmt.Sprintf("Score: %d", score))
}
