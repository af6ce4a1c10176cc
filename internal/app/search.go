package app

import (
	"context"
	"fmt"

	"github.com/pders01/kn/internal/search"
	"github.com/pders01/kn/internal/tui"
)

func (a *App) navigatorOptions() []tui.NavigatorOption {
	return []tui.NavigatorOption{
		tui.WithDebounce(a.cfg.UI.Debounce),
		tui.WithMaxFetchFailures(a.cfg.UI.MaxFetchFailures),
	}
}

// Search lets the user pick a problem matching query and shows its statement.
func (a *App) Search(ctx context.Context, query string) error {
	con, err := a.openConsole()
	if err != nil {
		return err
	}
	defer con.Close()

	fetch := func(ctx context.Context, query string, page int) ([]tui.Item, error) {
		problems, err := a.client.SearchProblems(ctx, query, page)
		if err != nil {
			return nil, err
		}
		items := make([]tui.Item, len(problems))
		for i, p := range problems {
			items[i] = tui.Item{ID: p.ID, Label: p.Name}
		}
		return items, nil
	}

	outcome, err := tui.RunSearch(ctx, con, query, fetch, a.navigatorOptions()...)
	if err != nil {
		return fmt.Errorf("searching %q: %w", query, err)
	}
	if outcome.Cancelled() {
		a.println(tui.StatusInfo, tui.MsgSearchCancelled)
		return nil
	}
	return a.showStatement(ctx, con, outcome.Item.ID, outcome.Item.Label)
}

// History pages through statements viewed before, filtered by query, and
// shows the cached copy of the one selected.
func (a *App) History(ctx context.Context, query string) error {
	first, err := a.index.Search(query, 1, search.DefaultPageSize)
	if err != nil {
		return fmt.Errorf("searching history: %w", err)
	}
	if len(first) == 0 {
		a.println(tui.StatusInfo, tui.MsgHistoryEmpty)
		return nil
	}

	con, err := a.openConsole()
	if err != nil {
		return err
	}
	defer con.Close()

	fetch := func(_ context.Context, query string, page int) ([]tui.Item, error) {
		results, err := a.index.Search(query, page, search.DefaultPageSize)
		if err != nil {
			return nil, err
		}
		items := make([]tui.Item, len(results))
		for i, r := range results {
			items[i] = tui.Item{ID: r.ProblemID, Label: fmt.Sprintf("%s  #%d", r.Name, r.ProblemID)}
		}
		return items, nil
	}

	outcome, err := tui.RunSearch(ctx, con, query, fetch, a.navigatorOptions()...)
	if err != nil {
		return fmt.Errorf("searching history: %w", err)
	}
	if outcome.Cancelled() {
		a.println(tui.StatusInfo, tui.MsgSearchCancelled)
		return nil
	}

	st, err := a.store.GetStatement(outcome.Item.ID)
	if err != nil {
		return fmt.Errorf("loading cached statement: %w", err)
	}
	if err := a.store.SetLastProblem(st.ProblemID, st.Name); err != nil {
		return fmt.Errorf("remembering problem %d: %w", st.ProblemID, err)
	}
	return a.display(con, st)
}
