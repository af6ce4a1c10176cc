// Package opener opens problem pages in the user's browser.
package opener

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/pders01/kn/internal/debuglog"
)

// ErrNoOpener is returned when no opener command can be found.
var ErrNoOpener = errors.New("no application found to open URL")

var fallbacks = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open", "wslview", "sensible-browser", "x-www-browser"},
	"windows": {"start"},
}

// startCommand launches cmd without waiting for it.
var startCommand = func(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

type Opener struct {
	command string
	goos    string
}

// New picks preferred when it is installed, otherwise the first installed
// fallback for the running OS.
func New(preferred string) *Opener {
	return newForOS(preferred, runtime.GOOS)
}

func newForOS(preferred, goos string) *Opener {
	candidates := append([]string{}, preferred)
	candidates = append(candidates, fallbacks[goos]...)
	return &Opener{command: findCommand(goos, candidates...), goos: goos}
}

// Command reports the opener that will be used, or "" when none was found.
func (o *Opener) Command() string {
	return o.command
}

func (o *Opener) Open(url string) error {
	if o.command == "" {
		return ErrNoOpener
	}
	cmd := commandFor(o.goos, o.command, url)
	debuglog.Debugf("opening %s with %s", url, o.command)
	if err := startCommand(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", o.command, err)
	}
	return nil
}

// commandFor builds the invocation. start is a cmd.exe builtin, and its first
// quoted argument is the window title.
func commandFor(goos, name, url string) *exec.Cmd {
	if goos == "windows" && name == "start" {
		return exec.Command("cmd", "/c", "start", "", url)
	}
	return exec.Command(name, url)
}

func findCommand(goos string, commands ...string) string {
	for _, cmd := range commands {
		if cmd == "" {
			continue
		}
		if goos == "windows" && cmd == "start" {
			return cmd
		}
		if _, err := exec.LookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}
