package sheet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStoreUpdateAndRead(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	require.NoError(t, store.UpdateCell(ctx, "sheet1", "a1", "1+2"))
	require.NoError(t, store.UpdateCell(ctx, "sheet1", "b1", "a1*2"))

	entries, err := store.ReadFormulas(ctx, "sheet1")
	require.NoError(t, err)
	assert.Equal(t, []FormulaEntry{
		{Id: "a1", Formula: "1+2"},
		{Id: "b1", Formula: "a1*2"},
	}, entries)
}

func TestMemStoreUpdateWithEmptyFormulaDeletes(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	require.NoError(t, store.UpdateCell(ctx, "s", "a1", "1"))
	require.NoError(t, store.UpdateCell(ctx, "s", "a1", ""))

	entries, err := store.ReadFormulas(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMemStoreDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	require.NoError(t, store.UpdateCell(ctx, "s", "a1", "1"))
	require.NoError(t, store.UpdateCell(ctx, "s", "b1", "2"))

	require.NoError(t, store.Delete(ctx, "s", "a1"))
	entries, err := store.ReadFormulas(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, []FormulaEntry{{Id: "b1", Formula: "2"}}, entries)

	require.NoError(t, store.Clear(ctx, "s"))
	entries, err = store.ReadFormulas(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMemStoreSheetsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	require.NoError(t, store.UpdateCell(ctx, "s1", "a1", "1"))
	require.NoError(t, store.UpdateCell(ctx, "s2", "a1", "2"))

	e1, err := store.ReadFormulas(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []FormulaEntry{{Id: "a1", Formula: "1"}}, e1)

	e2, err := store.ReadFormulas(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, []FormulaEntry{{Id: "a1", Formula: "2"}}, e2)
}
