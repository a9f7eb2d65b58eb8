package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "data", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndRecent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, input := range []string{"lofi", "xyzzy", "drake"} {
		id, err := db.RecordLookup(ctx, LookupRecord{
			Kind:       "query",
			Input:      input,
			VideoID:    "vid-" + input,
			Title:      input,
			Fallback:   input == "xyzzy",
			ResolvedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, id)
	}

	records, err := db.RecentLookups(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "drake", records[0].Input)
	assert.Equal(t, "xyzzy", records[1].Input)
	assert.True(t, records[1].Fallback)
	assert.Equal(t, base.Add(time.Minute), records[1].ResolvedAt)
}

func TestRecentLookupsEmpty(t *testing.T) {
	records, err := newTestDB(t).RecentLookups(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestCountByVideoID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := db.RecordLookup(ctx, LookupRecord{Kind: "id", Input: "abc", VideoID: "abc", ResolvedAt: time.Now()})
		require.NoError(t, err)
	}

	count, err := db.CountByVideoID(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = db.CountByVideoID(ctx, "missing")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestInMemory(t *testing.T) {
	db, err := New(":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.RecordLookup(context.Background(), LookupRecord{Kind: "id", Input: "a", VideoID: "a", ResolvedAt: time.Now()})
	require.NoError(t, err)

	records, err := db.RecentLookups(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
