// Package waiter shows a spinner while a blocking network call runs.
package waiter

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/pders01/kn/internal/debuglog"
)

type stopMsg struct{}

type model struct {
	spinner spinner.Model
	message string
	done    bool
}

func newModel(message string, style lipgloss.Style) model {
	s := spinner.New()
	s.Spinner = spinner.Moon
	s.Style = style
	return model{spinner: s, message: message}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stopMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	if m.done {
		return ""
	}
	return m.message + "   " + m.spinner.View()
}

// Waiter is a running spinner. The zero value is inert.
type Waiter struct {
	program *tea.Program
	done    chan struct{}
	once    sync.Once
}

// Style colours the spinner glyph.
var Style = lipgloss.NewStyle()

// Start shows message followed by a spinner on out. Nothing is drawn when out
// is not a terminal.
func Start(out io.Writer, message string) *Waiter {
	if f, ok := out.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		return &Waiter{}
	}
	return start(out, message)
}

func start(out io.Writer, message string) *Waiter {
	w := &Waiter{
		program: tea.NewProgram(
			newModel(message, Style),
			tea.WithOutput(out),
			tea.WithInput(nil),
			tea.WithoutSignalHandler(),
		),
		done: make(chan struct{}),
	}
	go func() {
		defer close(w.done)
		if _, err := w.program.Run(); err != nil {
			debuglog.Warnf("spinner: %v", err)
		}
	}()
	return w
}

// Stop clears the spinner and waits until the terminal is restored. It is
// safe to call more than once.
func (w *Waiter) Stop() {
	if w == nil || w.program == nil {
		return
	}
	w.once.Do(func() {
		w.program.Send(stopMsg{})
		<-w.done
	})
}
