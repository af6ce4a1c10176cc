package search

import (
	"github.com/pders01/kn/internal/debuglog"
	"github.com/pders01/kn/internal/storage"
)

// DefaultPageSize is the number of results per page when none is given.
const DefaultPageSize = 20

// Searcher indexes viewed statements and pages through matches.
type Searcher interface {
	Index(st *storage.Statement) error
	Search(query string, page, size int) ([]*Result, error)
	Close() error
}

// DebugStatser provides lightweight stats for visibility/debugging.
type DebugStatser interface {
	DocCount() (int, error)
}

// Result is one statement matching a history query.
type Result struct {
	ProblemID uint64
	Name      string
	Language  string
	Score     float64
}

// Open returns a bleve engine at indexPath, or the store-backed engine when
// indexPath is empty or the index cannot be opened.
func Open(store *storage.Store, indexPath string) Searcher {
	if indexPath == "" {
		return NewEngine(store)
	}
	eng, err := NewBleveEngine(store, indexPath)
	if err != nil {
		debuglog.Warnf("search index %s unavailable, using store scan: %v", indexPath, err)
		return NewEngine(store)
	}
	return eng
}

// pageBounds converts a 1-based page into slice bounds over n results.
func pageBounds(n, page, size int) (int, int) {
	page, size = normalizePage(page, size)
	from := min((page-1)*size, n)
	to := min(from+size, n)
	return from, to
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	return page, size
}
