// Package prompt asks for login credentials.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrAborted is returned when the user leaves the prompt with Esc or Ctrl+C.
var ErrAborted = errors.New("prompt aborted")

var labelStyle = lipgloss.NewStyle().Bold(true)

type model struct {
	inputs  []textinput.Model
	focus   int
	aborted bool
	done    bool
}

func newModel() model {
	user := textinput.New()
	user.Prompt = labelStyle.Render("Username: ")
	user.CharLimit = 64
	user.Focus()

	pass := textinput.New()
	pass.Prompt = labelStyle.Render("Password: ")
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '*'
	pass.CharLimit = 128

	return model{inputs: []textinput.Model{user, pass}}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			m.aborted = true
			return m, tea.Quit
		case tea.KeyEnter:
			if strings.TrimSpace(m.inputs[m.focus].Value()) == "" {
				return m, nil
			}
			if m.focus == len(m.inputs)-1 {
				m.done = true
				return m, tea.Quit
			}
			return m, m.setFocus(m.focus + 1)
		case tea.KeyTab, tea.KeyDown:
			return m, m.setFocus((m.focus + 1) % len(m.inputs))
		case tea.KeyShiftTab, tea.KeyUp:
			return m, m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *model) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[m.focus].Focus()
}

func (m model) View() string {
	if m.done || m.aborted {
		return ""
	}
	var b strings.Builder
	for _, in := range m.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) credentials() (string, string) {
	return strings.TrimSpace(m.inputs[0].Value()), m.inputs[1].Value()
}

// Credentials reads a username and a masked password from in.
func Credentials(in io.Reader, out io.Writer) (string, string, error) {
	p := tea.NewProgram(newModel(), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return "", "", fmt.Errorf("reading credentials: %w", err)
	}

	m := final.(model)
	if m.aborted || !m.done {
		return "", "", ErrAborted
	}
	user, pass := m.credentials()
	return user, pass, nil
}
