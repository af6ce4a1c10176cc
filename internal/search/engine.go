package search

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/pders01/kn/internal/storage"
)

// Engine scans the statement cache directly. It needs no index and serves
// as the fallback when bleve is unavailable.
type Engine struct {
	store *storage.Store
}

func NewEngine(store *storage.Store) *Engine {
	return &Engine{store: store}
}

// Index is a no-op: the store is the index.
func (e *Engine) Index(*storage.Statement) error {
	return nil
}

func (e *Engine) Close() error {
	return nil
}

// Search ranks cached statements by relevance. An empty query lists every
// cached statement, most recently fetched first.
func (e *Engine) Search(query string, page, size int) ([]*Result, error) {
	statements, err := e.store.ListStatements(0)
	if err != nil {
		return nil, err
	}

	terms := tokenize(query)
	var results []*Result
	if strings.TrimSpace(query) == "" {
		for _, st := range statements {
			results = append(results, resultFor(st, 0))
		}
	} else {
		if len(terms) == 0 {
			return []*Result{}, nil
		}
		for _, st := range statements {
			if r := e.scoreStatement(st, terms); r != nil {
				results = append(results, r)
			}
		}
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score > results[j].Score
		})
	}

	from, to := pageBounds(len(results), page, size)
	return results[from:to], nil
}

func resultFor(st *storage.Statement, score float64) *Result {
	return &Result{
		ProblemID: st.ProblemID,
		Name:      st.Name,
		Language:  st.Language,
		Score:     score,
	}
}

func (e *Engine) scoreStatement(st *storage.Statement, terms []string) *Result {
	score := e.scoreField(st.Name, terms, 4.0)
	score += e.scoreField(st.Content, terms, 1.0)
	if score <= 0 {
		return nil
	}
	return resultFor(st, score)
}

// scoreField calculates relevance score for a field
func (e *Engine) scoreField(text string, terms []string, weight float64) float64 {
	if text == "" {
		return 0
	}

	lower := strings.ToLower(text)
	words := tokenize(text)
	if len(words) == 0 {
		return 0
	}

	var score float64
	matchedTerms := 0

	for _, term := range terms {
		if strings.Contains(lower, term) {
			score += 2.0
			matchedTerms++
		}

		for _, word := range words {
			switch {
			case word == term:
				score += 1.5
				matchedTerms++
			case strings.HasPrefix(word, term) || strings.HasSuffix(word, term):
				score += 1.0
				matchedTerms++
			case strings.Contains(word, term):
				score += 0.5
				matchedTerms++
			}
		}
	}

	if len(terms) > 1 && matchedTerms > 1 {
		score *= 1.0 + float64(matchedTerms)/float64(len(terms))
	}

	tf := float64(matchedTerms) / float64(len(words))
	score *= 1.0 + math.Log(1.0+tf)

	return score * weight
}

// tokenize breaks text into lower-case searchable terms, dropping single
// characters.
func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			if term := current.String(); len([]rune(term)) > 1 {
				terms = append(terms, term)
			}
			current.Reset()
		}
	}

	if len([]rune(current.String())) > 1 {
		terms = append(terms, current.String())
	}

	return terms
}
