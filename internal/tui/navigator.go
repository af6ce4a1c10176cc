package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pders01/kn/internal/debuglog"
	"github.com/pders01/kn/internal/terminal"
)

// ErrFetchExhausted is returned by RunSearch when the page fetcher keeps
// failing. It wraps the last fetch error.
var ErrFetchExhausted = errors.New("giving up after repeated fetch failures")

const (
	DefaultDebounce         = 100 * time.Millisecond
	DefaultMaxFetchFailures = 5
)

// Item is one search result.
type Item struct {
	ID    uint64
	Label string
}

// PageFetcher returns the items on a 1-based page of results for query. An
// empty slice means the page has no results.
type PageFetcher func(ctx context.Context, query string, page int) ([]Item, error)

// Outcome is how a search ended: with a selected item, or cancelled.
type Outcome struct {
	Item     Item
	Selected bool
}

// Cancelled reports whether the user left without choosing an item.
func (o Outcome) Cancelled() bool {
	return !o.Selected
}

// pageState is the visible page. selected indexes items and is 0 for a fresh
// or empty page. top is the first item on screen when the page is taller than
// the terminal.
type pageState struct {
	query    string
	page     int
	items    []Item
	selected int
	top      int
}

// scrollTo moves top so the selection fits in height rows and reports whether
// it changed.
func (p *pageState) scrollTo(height int) bool {
	top := p.top
	switch {
	case p.selected < top:
		top = p.selected
	case p.selected >= top+height:
		top = p.selected - height + 1
	}
	if top == p.top {
		return false
	}
	p.top = top
	return true
}

// visible returns the index range of items on screen.
func (p *pageState) visible(height int) (from, to int) {
	return p.top, min(len(p.items), p.top+height)
}

func (p *pageState) moveUp() bool {
	if p.selected == 0 {
		return false
	}
	p.selected--
	return true
}

func (p *pageState) moveDown() bool {
	if p.selected >= len(p.items)-1 {
		return false
	}
	p.selected++
	return true
}

// rollback returns the page to retry after page could not be shown.
func rollback(page int) int {
	if page > 1 {
		return page - 1
	}
	return 1
}

type navigator struct {
	fetch       PageFetcher
	now         func() time.Time
	debounce    debouncer
	maxFailures int
}

type NavigatorOption func(*navigator)

// WithDebounce sets the minimum interval between accepted keys.
func WithDebounce(d time.Duration) NavigatorOption {
	return func(n *navigator) {
		if d >= 0 {
			n.debounce.interval = d
		}
	}
}

// WithMaxFetchFailures caps consecutive fetch failures before RunSearch gives up.
func WithMaxFetchFailures(max int) NavigatorOption {
	return func(n *navigator) {
		if max > 0 {
			n.maxFailures = max
		}
	}
}

// WithClock replaces time.Now for debouncing.
func WithClock(now func() time.Time) NavigatorOption {
	return func(n *navigator) {
		n.now = now
	}
}

// navResult is what one page's input loop decided.
type navResult struct {
	nextPage int
	outcome  Outcome
	done     bool
}

// RunSearch shows pages of results for query until the user selects an item
// or cancels. It owns the console for the duration of the call and leaves the
// screen cleared.
func RunSearch(ctx context.Context, con Console, query string, fetch PageFetcher, opts ...NavigatorOption) (Outcome, error) {
	n := &navigator{
		fetch:       fetch,
		now:         time.Now,
		debounce:    debouncer{interval: DefaultDebounce},
		maxFailures: DefaultMaxFetchFailures,
	}
	for _, opt := range opts {
		opt(n)
	}

	if err := con.Acquire(); err != nil {
		return Outcome{}, err
	}
	defer func() {
		scr := con.Screen()
		scr.Clear()
		if err := scr.Flush(); err != nil {
			debuglog.Warnf("clear screen on exit: %v", err)
		}
		_ = con.Release()
	}()

	return n.run(ctx, con, query)
}

func (n *navigator) run(ctx context.Context, con Console, query string) (Outcome, error) {
	page := 1
	failures := 0
	log := debuglog.WithFields(debuglog.Fields{"query": query})

	for {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}

		items, err := n.fetch(ctx, query, page)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Outcome{}, ctxErr
			}
			failures++
			log.Debugf("fetch page %d failed (%d/%d): %v", page, failures, n.maxFailures, err)
			if failures >= n.maxFailures {
				return Outcome{}, fmt.Errorf("%w: %w", ErrFetchExhausted, err)
			}
			page = rollback(page)
			continue
		}
		failures = 0

		if len(items) == 0 && page > 1 {
			log.Debugf("page %d is empty, going back", page)
			page = rollback(page)
			continue
		}

		res, err := n.showPage(ctx, con, &pageState{query: query, page: page, items: items})
		if err != nil {
			return Outcome{}, err
		}
		if res.done {
			return res.outcome, nil
		}
		page = res.nextPage
	}
}

func (n *navigator) showPage(ctx context.Context, con Console, ps *pageState) (navResult, error) {
	if err := con.Drain(); err != nil {
		return navResult{}, wrapErr("draining input", err)
	}

	width, height := con.Size()
	height = max(height, 1)
	scr := con.Screen()
	scr.SetWidth(width)
	scr.Clear()
	if len(ps.items) == 0 {
		drawEmptyPage(scr)
	} else {
		drawItems(scr, ps, height)
	}
	if err := scr.Flush(); err != nil {
		return navResult{}, wrapErr("drawing page", err)
	}
	n.debounce.reset(n.now())

	for {
		if err := ctx.Err(); err != nil {
			return navResult{}, err
		}

		ev, err := con.ReadEvent()
		if err != nil {
			return navResult{}, wrapErr("reading key", err)
		}
		if !n.debounce.allow(n.now()) {
			continue
		}

		action := ListActionFor(ev)
		if len(ps.items) == 0 {
			switch action {
			case ListCancel:
				return navResult{done: true}, nil
			case ListPrevPage:
				return navResult{nextPage: 1}, nil
			}
			continue
		}

		switch action {
		case ListMoveUp, ListMoveDown:
			prev := ps.selected
			moved := ps.moveUp
			if action == ListMoveDown {
				moved = ps.moveDown
			}
			if !moved() {
				continue
			}
			if ps.scrollTo(height) {
				scr.Clear()
				drawItems(scr, ps, height)
			} else {
				scr.DrawLine(prev-ps.top, ps.items[prev].Label, false)
				scr.DrawLine(ps.selected-ps.top, ps.items[ps.selected].Label, true)
			}
			if err := scr.Flush(); err != nil {
				return navResult{}, wrapErr("drawing selection", err)
			}
		case ListPrevPage:
			if ps.page > 1 {
				return navResult{nextPage: ps.page - 1}, nil
			}
		case ListNextPage:
			return navResult{nextPage: ps.page + 1}, nil
		case ListSelect:
			return navResult{done: true, outcome: Outcome{Item: ps.items[ps.selected], Selected: true}}, nil
		case ListCancel:
			return navResult{done: true}, nil
		}
	}
}

func drawItems(scr *terminal.Screen, ps *pageState, height int) {
	from, to := ps.visible(height)
	for i := from; i < to; i++ {
		scr.DrawLine(i-ps.top, ps.items[i].Label, i == ps.selected)
	}
}

func drawEmptyPage(scr *terminal.Screen) {
	scr.MoveTo(0, 0)
	scr.Print(MsgNoResultsOnPage)
	scr.MoveTo(2, 0)
	scr.Print(MsgEmptyPageHint)
}
