package app

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/pders01/kn/internal/debuglog"
	"github.com/pders01/kn/internal/kilonova"
	"github.com/pders01/kn/internal/storage"
	"github.com/pders01/kn/internal/tui"
	"github.com/pders01/kn/internal/waiter"
)

// statementLanguages is the stored statement language followed by the
// configured fallbacks.
func (a *App) statementLanguages() []string {
	var langs []string
	if preferred, err := a.store.String(storage.SettingStatementLanguage); err == nil && preferred != "" {
		langs = append(langs, preferred)
	}
	for _, l := range a.cfg.Statement.Languages {
		if !slices.Contains(langs, l) {
			langs = append(langs, l)
		}
	}
	return langs
}

// fetchStatement downloads a statement and caches it. When the server cannot
// be reached a cached copy is returned with offline set.
func (a *App) fetchStatement(ctx context.Context, id uint64, name string) (st *storage.Statement, offline bool, err error) {
	w := waiter.Start(a.out, tui.MsgLoadingStatement)
	text, lang, err := a.client.FindStatement(ctx, id, a.statementLanguages())
	w.Stop()

	if err != nil {
		if errors.Is(err, kilonova.ErrStatementNotFound) || ctx.Err() != nil {
			return nil, false, err
		}
		cached, cacheErr := a.store.GetStatement(id)
		if cacheErr != nil {
			return nil, false, err
		}
		debuglog.Infof("problem %d: using cached statement: %v", id, err)
		return cached, true, nil
	}

	st = &storage.Statement{ProblemID: id, Name: name, Language: lang, Content: text}
	if err := a.store.SaveStatement(st); err != nil {
		debuglog.Warnf("caching statement %d: %v", id, err)
	}
	if err := a.index.Index(st); err != nil {
		debuglog.Warnf("indexing statement %d: %v", id, err)
	}
	return st, false, nil
}

// showStatement remembers id as the last viewed problem, fetches its
// statement and pages it on con.
func (a *App) showStatement(ctx context.Context, con Console, id uint64, name string) error {
	if err := a.store.SetLastProblem(id, name); err != nil {
		return fmt.Errorf("remembering problem %d: %w", id, err)
	}

	st, offline, err := a.fetchStatement(ctx, id, name)
	if errors.Is(err, kilonova.ErrStatementNotFound) {
		a.println(tui.StatusError, tui.MsgStatementNotFound)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading statement %d: %w", id, err)
	}
	if offline {
		a.println(tui.StatusWarn, tui.MsgOfflineCopy)
	}
	if st.Name == "" {
		st.Name = name
	}
	return a.display(con, st)
}

// display clears the screen, prints a header and pages the rendered
// statement below it.
func (a *App) display(con Console, st *storage.Statement) error {
	width, _ := con.Size()
	rendered, err := a.renderer.Render(st.Content, width)
	if err != nil {
		debuglog.Warnf("rendering statement %d: %v", st.ProblemID, err)
		rendered = st.Content
	}

	scr := con.Screen()
	scr.Clear()
	scr.Print(tui.StatementHeader(st.ProblemID, st.Name, width))
	scr.Newline()
	if err := scr.Flush(); err != nil {
		return fmt.Errorf("drawing header: %w", err)
	}
	return tui.RunPager(con, rendered)
}

// View shows the statement of the last viewed problem again.
func (a *App) View(ctx context.Context) error {
	last, err := a.lastProblem()
	if err != nil {
		return err
	}

	con, err := a.openConsole()
	if err != nil {
		return err
	}
	defer con.Close()

	return a.showStatement(ctx, con, last.ID, last.Name)
}
