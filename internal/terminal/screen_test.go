package terminal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenBuffersUntilFlush(t *testing.T) {
	var out bytes.Buffer
	s := NewScreen(&out)

	s.Clear()
	assert.Zero(t, out.Len())

	require.NoError(t, s.Flush())
	assert.Equal(t, "\x1b[2J\x1b[H", out.String())
}

func TestScreenMoveToIsOneBased(t *testing.T) {
	var out bytes.Buffer
	s := NewScreen(&out)

	s.MoveTo(0, 0)
	s.MoveTo(4, 2)
	require.NoError(t, s.Flush())
	assert.Equal(t, "\x1b[1;1H\x1b[5;3H", out.String())
}

func TestDrawLine(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		text     string
		selected bool
		want     string
	}{
		{
			name: "unselected",
			text: "#1 A+B",
			want: "\x1b[3;1H\x1b[2K  #1 A+B",
		},
		{
			name:     "selected",
			text:     "#1 A+B",
			selected: true,
			want:     "\x1b[3;1H\x1b[2K\x1b[7m> #1 A+B\x1b[0m",
		},
		{
			name:  "truncated to width",
			width: 8,
			text:  "#1234 Long name",
			want:  "\x1b[3;1H\x1b[2K  #1234…",
		},
		{
			name:  "fits exactly",
			width: 8,
			text:  "#12 ab",
			want:  "\x1b[3;1H\x1b[2K  #12 ab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			s := NewScreen(&out)
			s.SetWidth(tt.width)
			s.DrawLine(2, tt.text, tt.selected)
			require.NoError(t, s.Flush())
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestScreenCursorSequences(t *testing.T) {
	var out bytes.Buffer
	s := NewScreen(&out)

	s.SaveCursor()
	s.ClearBelow()
	s.RestoreCursor()
	s.HideCursor()
	s.ShowCursor()
	s.Newline()
	require.NoError(t, s.Flush())

	assert.Equal(t, "\x1b7\x1b[J\x1b8\x1b[?25l\x1b[?25h\r\n", out.String())
}
