package terminal

// Control sequences written by Screen and Session. Rows and columns in CSI
// sequences are 1-based.
const (
	csi = "\x1b["

	seqHideCursor    = csi + "?25l"
	seqShowCursor    = csi + "?25h"
	seqClearScreen   = csi + "2J" + csi + "H"
	seqClearBelow    = csi + "J"
	seqClearLine     = csi + "2K"
	seqSaveCursor    = "\x1b7"
	seqRestoreCursor = "\x1b8"
	seqCursorReport  = csi + "6n"
	seqReverse       = csi + "7m"
	seqReset         = csi + "0m"
)
