// Package app implements the kn commands on top of the API client, the local
// store and the interactive terminal loops.
package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pders01/kn/internal/config"
	"github.com/pders01/kn/internal/kilonova"
	"github.com/pders01/kn/internal/opener"
	"github.com/pders01/kn/internal/prompt"
	"github.com/pders01/kn/internal/search"
	"github.com/pders01/kn/internal/storage"
	"github.com/pders01/kn/internal/terminal"
	"github.com/pders01/kn/internal/tui"
	"github.com/pders01/kn/internal/validation"
)

var (
	ErrNotLoggedIn         = errors.New("not logged in, use `kn login` first")
	ErrNoLastProblem       = errors.New("no problem viewed yet, use `kn search` first")
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// Console is a terminal the interactive loops can own and that is closed
// when the command is done with it.
type Console interface {
	tui.Console
	Close() error
}

// Opener opens a URL outside the terminal.
type Opener interface {
	Open(url string) error
}

type App struct {
	cfg    *config.Config
	store  *storage.Store
	client *kilonova.Client
	index  search.Searcher
	out    io.Writer

	openConsole func() (Console, error)
	credentials func() (string, string, error)
	opener      Opener
	renderer    *tui.MarkdownRenderer
	sources     *validation.FilePathValidator
}

type Option func(*App)

// WithConsole replaces the controlling terminal.
func WithConsole(open func() (Console, error)) Option {
	return func(a *App) {
		a.openConsole = open
	}
}

// WithCredentials replaces the interactive username/password prompt.
func WithCredentials(ask func() (string, string, error)) Option {
	return func(a *App) {
		a.credentials = ask
	}
}

func WithOpener(o Opener) Option {
	return func(a *App) {
		a.opener = o
	}
}

func New(cfg *config.Config, store *storage.Store, client *kilonova.Client, index search.Searcher, out io.Writer, opts ...Option) *App {
	a := &App{
		cfg:    cfg,
		store:  store,
		client: client,
		index:  index,
		out:    out,
		openConsole: func() (Console, error) {
			return terminal.Open()
		},
		credentials: func() (string, string, error) {
			return prompt.Credentials(os.Stdin, out)
		},
		renderer: tui.NewMarkdownRenderer(cfg.UI.WordWrapMinWidth, cfg.UI.WordWrapMaxWidth),
		sources:  validation.NewSourceFileValidator(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.opener == nil {
		a.opener = opener.New(cfg.Open.DefaultOpener)
	}
	if a.index == nil {
		a.index = search.NewEngine(store)
	}
	return a
}

func (a *App) println(kind tui.StatusKind, msg string) {
	fmt.Fprintln(a.out, tui.Status(kind, msg))
}

// token returns the stored session token or ErrNotLoggedIn.
func (a *App) token() (string, error) {
	token, err := a.store.Token()
	if errors.Is(err, storage.ErrNotSet) {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return token, nil
}

// lastProblem returns the last viewed problem or ErrNoLastProblem.
func (a *App) lastProblem() (*storage.LastProblem, error) {
	last, err := a.store.LastProblem()
	if errors.Is(err, storage.ErrNotSet) {
		return nil, ErrNoLastProblem
	}
	if err != nil {
		return nil, fmt.Errorf("reading last problem: %w", err)
	}
	return last, nil
}

// authError turns a rejected token into ErrNotLoggedIn.
func authError(err error) error {
	if errors.Is(err, kilonova.ErrUnauthorized) {
		return fmt.Errorf("%w (session expired)", ErrNotLoggedIn)
	}
	return err
}
