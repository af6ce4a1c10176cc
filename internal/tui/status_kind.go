package tui

// StatusKind indicates severity for status lines printed after a command.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarn
	StatusError
)

// Status renders msg in the style for kind.
func Status(kind StatusKind, msg string) string {
	switch kind {
	case StatusSuccess:
		return StatusSuccessStyle.Render(msg)
	case StatusWarn:
		return StatusWarnStyle.Render(msg)
	case StatusError:
		return StatusErrorStyle.Render(msg)
	default:
		return StatusInfoStyle.Render(msg)
	}
}
