package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerdictFor(t *testing.T) {
	tests := []struct {
		score int
		want  Verdict
	}{
		{100, VerdictAccepted},
		{99, VerdictPartial},
		{51, VerdictPartial},
		{50, VerdictFailed},
		{0, VerdictFailed},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, VerdictFor(tt.score), "score %d", tt.score)
	}
}

func TestVerdictStyle(t *testing.T) {
	assert.Equal(t, SuccessColor, VerdictAccepted.Style().GetForeground())
	assert.Equal(t, WarnColor, VerdictPartial.Style().GetForeground())
	assert.Equal(t, ErrorColor, VerdictFailed.Style().GetForeground())
	assert.Equal(t, "partial", VerdictPartial.String())
}

func TestRenderScore(t *testing.T) {
	assert.Contains(t, RenderScore(73), "Score: 73")
}
