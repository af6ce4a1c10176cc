package app

import (
	"fmt"
	"strings"

	"github.com/pders01/kn/internal/languages"
	"github.com/pders01/kn/internal/storage"
	"github.com/pders01/kn/internal/tui"
)

// SetLanguage stores the default submission language.
func (a *App) SetLanguage(name string) error {
	if _, ok := languages.Lookup(name); !ok {
		return fmt.Errorf("%w %q, allowed values are: %s",
			ErrUnsupportedLanguage, name, strings.Join(languages.Names(), ", "))
	}
	if err := a.store.Set(storage.SettingLanguage, name); err != nil {
		return fmt.Errorf("saving language: %w", err)
	}
	a.println(tui.StatusSuccess, tui.MsgLanguageSet("Submission", name))
	return nil
}

// SetStatementLanguage stores the language statements are fetched in first.
func (a *App) SetStatementLanguage(name string) error {
	if !languages.IsStatementLanguage(name) {
		return fmt.Errorf("%w %q, allowed values are: %s",
			ErrUnsupportedLanguage, name, strings.Join(languages.StatementLanguages, ", "))
	}
	if err := a.store.Set(storage.SettingStatementLanguage, name); err != nil {
		return fmt.Errorf("saving statement language: %w", err)
	}
	a.println(tui.StatusSuccess, tui.MsgLanguageSet("Statement", name))
	return nil
}

// Open shows the last viewed problem in the browser.
func (a *App) Open() error {
	last, err := a.lastProblem()
	if err != nil {
		return err
	}
	url := a.client.ProblemURL(last.ID)
	if err := a.opener.Open(url); err != nil {
		return err
	}
	a.println(tui.StatusInfo, tui.MsgOpened(url))
	return nil
}
