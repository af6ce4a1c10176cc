//go:build bleve

package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/kn/internal/storage"
)

func TestBleveEngineIndexesAndSearches(t *testing.T) {
	store := seededStore(t)
	idxPath := filepath.Join(t.TempDir(), "index.bleve")

	eng, err := NewBleveEngine(store, idxPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	res, err := eng.Search("knapsack", 1, 10)
	require.NoError(t, err)
	require.NotEmpty(t, res)
	assert.Equal(t, uint64(3), res[0].ProblemID)
	assert.Equal(t, "Knapsack", res[0].Name)

	res, err = eng.Search("dynamic", 1, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{2, 3}, ids(res))

	all, err := eng.Search("", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 2, 1}, ids(all))

	fi, err := os.Stat(idxPath)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
}

func TestBleveEngineIndexNewStatement(t *testing.T) {
	store := seededStore(t)
	eng, err := NewBleveEngine(store, filepath.Join(t.TempDir(), "index.bleve"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	require.NoError(t, eng.Index(&storage.Statement{ProblemID: 42, Name: "Segment Tree", Content: "range queries"}))

	res, err := eng.Search("segment", 1, 10)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, uint64(42), res[0].ProblemID)

	count, err := eng.(DebugStatser).DocCount()
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestBleveEnginePaging(t *testing.T) {
	eng, err := NewBleveEngine(seededStore(t), filepath.Join(t.TempDir(), "index.bleve"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	second, err := eng.Search("", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, ids(second))
}
