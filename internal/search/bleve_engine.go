package search

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/kn/internal/storage"
)

type bleveEngine struct {
	store *storage.Store
	idx   bleve.Index
}

// NewBleveEngine creates or opens a Bleve index at indexPath and indexes the
// statements already cached in store.
func NewBleveEngine(store *storage.Store, indexPath string) (Searcher, error) {
	if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	idx, err := bleve.Open(indexPath)
	if err != nil {
		idx, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("creating index: %w", err)
		}
	}

	be := &bleveEngine{store: store, idx: idx}
	if err := be.reindexAll(); err != nil {
		idx.Close()
		return nil, err
	}
	return be, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	name := bleve.NewTextFieldMapping()
	name.Analyzer = standard.Name
	name.Store = true
	name.IncludeTermVectors = true

	content := bleve.NewTextFieldMapping()
	content.Analyzer = standard.Name
	content.Store = false
	content.IncludeTermVectors = false

	lang := bleve.NewKeywordFieldMapping()
	lang.Store = true

	fetched := bleve.NewDateTimeFieldMapping()
	fetched.Store = false
	fetched.DocValues = true

	dm.AddFieldMappingsAt("name", name)
	dm.AddFieldMappingsAt("content", content)
	dm.AddFieldMappingsAt("language", lang)
	dm.AddFieldMappingsAt("fetched_at", fetched)

	im.DefaultMapping = dm
	return im
}

func docFor(st *storage.Statement) map[string]any {
	return map[string]any{
		"name":       st.Name,
		"content":    st.Content,
		"language":   st.Language,
		"fetched_at": st.FetchedAt,
	}
}

func (b *bleveEngine) reindexAll() error {
	statements, err := b.store.ListStatements(0)
	if err != nil {
		return err
	}

	batch := b.idx.NewBatch()
	for _, st := range statements {
		if err := batch.Index(docID(st.ProblemID), docFor(st)); err != nil {
			return fmt.Errorf("indexing problem %d: %w", st.ProblemID, err)
		}
	}
	return b.idx.Batch(batch)
}

func (b *bleveEngine) Index(st *storage.Statement) error {
	return b.idx.Index(docID(st.ProblemID), docFor(st))
}

func (b *bleveEngine) Search(query string, page, size int) ([]*Result, error) {
	page, size = normalizePage(page, size)

	var q bleveQuery.Query
	if strings.TrimSpace(query) == "" {
		q = bleve.NewMatchAllQuery()
	} else {
		var qs []bleveQuery.Query
		for _, tok := range tokenize(query) {
			qn := bleve.NewMatchQuery(tok)
			qn.SetField("name")
			qn.SetBoost(4.0)
			qs = append(qs, qn)
			qnp := bleve.NewPrefixQuery(tok)
			qnp.SetField("name")
			qnp.SetBoost(3.5)
			qs = append(qs, qnp)
			qc := bleve.NewMatchQuery(tok)
			qc.SetField("content")
			qc.SetBoost(1.0)
			qs = append(qs, qc)
			qcp := bleve.NewPrefixQuery(tok)
			qcp.SetField("content")
			qcp.SetBoost(0.8)
			qs = append(qs, qcp)
		}
		if len(qs) == 0 {
			return []*Result{}, nil
		}
		q = bleve.NewDisjunctionQuery(qs...)
	}

	req := bleve.NewSearchRequestOptions(q, size, (page-1)*size, false)
	req.Fields = []string{"name", "language"}
	if strings.TrimSpace(query) == "" {
		req.SortBy([]string{"-fetched_at", "_id"})
	}
	res, err := b.idx.Search(req)
	if err != nil {
		return nil, err
	}

	out := make([]*Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		id, ok := problemID(h.ID)
		if !ok {
			continue
		}
		r := &Result{ProblemID: id, Score: h.Score}
		if n, ok := h.Fields["name"].(string); ok {
			r.Name = n
		}
		if l, ok := h.Fields["language"].(string); ok {
			r.Language = l
		}
		out = append(out, r)
	}
	return out, nil
}

// DocCount reports total documents in the index.
func (b *bleveEngine) DocCount() (int, error) {
	n, err := b.idx.DocCount()
	return int(n), err
}

func (b *bleveEngine) Close() error {
	return b.idx.Close()
}

func docID(id uint64) string { return "problem:" + strconv.FormatUint(id, 10) }

func problemID(doc string) (uint64, bool) {
	raw, ok := strings.CutPrefix(doc, "problem:")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	return id, err == nil
}
