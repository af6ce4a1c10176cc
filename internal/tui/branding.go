package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/kn/internal/config"
)

const AppName = "kn"

// LogoLines is the banner logo.
var LogoLines = []string{
	"██  ▄█▀ ██▄   ██",
	"██▄█▀   ███▄  ██",
	"████    ██ ▀█▄██",
	"██ ▀█▄  ██   ▀██",
	"██   ▀█ ██    ██",
}

var BannerColors = []lipgloss.Color{
	lipgloss.Color("#4ECDC4"),
	lipgloss.Color("#5FB7D4"),
	lipgloss.Color("#95E1D3"),
	lipgloss.Color("#4ECDC4"),
	lipgloss.Color("#5FB7D4"),
}

var (
	AccentColor  = lipgloss.Color("#4ECDC4")
	MutedColor   = lipgloss.Color("#94A3B8")
	SuccessColor = lipgloss.Color("#4ADE80")
	WarnColor    = lipgloss.Color("#FACC15")
	ErrorColor   = lipgloss.Color("#F87171")
)

var (
	HeaderStyle        lipgloss.Style
	HelpStyle          lipgloss.Style
	SeparatorStyle     lipgloss.Style
	StatusInfoStyle    lipgloss.Style
	StatusSuccessStyle lipgloss.Style
	StatusWarnStyle    lipgloss.Style
	StatusErrorStyle   lipgloss.Style
)

func init() {
	buildStyles()
}

func buildStyles() {
	HeaderStyle = lipgloss.NewStyle().
		Foreground(AccentColor).
		Bold(true)

	HelpStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	SeparatorStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusInfoStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusSuccessStyle = lipgloss.NewStyle().
		Foreground(SuccessColor).
		Bold(true)

	StatusWarnStyle = lipgloss.NewStyle().
		Foreground(WarnColor).
		Bold(true)

	StatusErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)
}

// ApplyColors replaces the palette with configured colours. Empty entries keep
// the built-in colour.
func ApplyColors(c config.UIColors) {
	set := func(dst *lipgloss.Color, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&AccentColor, c.Accent)
	set(&MutedColor, c.Muted)
	set(&SuccessColor, c.Success)
	set(&WarnColor, c.Warn)
	set(&ErrorColor, c.Error)
	buildStyles()
}

// StatementHeader is printed above a statement before the pager takes over.
func StatementHeader(id uint64, name string, width int) string {
	title := truncateEnd(fmt.Sprintf("#%d %s", id, name), max(width-2, 10))
	rule := SeparatorStyle.Render(strings.Repeat("─", max(min(width, 60), 10)))
	return HeaderStyle.Render(title) + "\n" + rule
}

// ShowBanner writes the logo with a version tagline.
func ShowBanner(w io.Writer, version string) {
	lines := make([]string, len(LogoLines)+1)
	copy(lines, LogoLines)

	tagline := "kilonova.ro from the terminal"
	if version != "" && version != "dev" {
		if version[0] != 'v' && version[0] != 'V' {
			version = "v" + version
		}
		tagline += " " + version
	}
	lines = append(lines, tagline)

	colored := make([]string, 0, len(lines))
	for i, line := range lines {
		if line == "" {
			colored = append(colored, line)
			continue
		}
		style := lipgloss.NewStyle().
			Foreground(BannerColors[i%len(BannerColors)]).
			Bold(i < len(LogoLines))
		colored = append(colored, style.Render(line))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(AccentColor).
		Padding(1, 3).
		Render(lipgloss.JoinVertical(lipgloss.Center, colored...))

	fmt.Fprintln(w, box)
}
