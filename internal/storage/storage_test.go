package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Version int    `json:"version"`
	Value   string `json:"value"`
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load(ctx, "missing.json")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, SaveJSON(ctx, store, "a.json", doc{Version: 2, Value: "one"}))

	var got doc
	require.NoError(t, LoadJSON(ctx, store, "a.json", &got))
	assert.Equal(t, "one", got.Value)
}

func TestFileStoreKeepsBackup(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, SaveJSON(ctx, store, "a.json", doc{Version: 2, Value: "one"}))
	require.NoError(t, SaveJSON(ctx, store, "a.json", doc{Version: 2, Value: "two"}))

	bak, err := os.ReadFile(filepath.Join(dir, "a.json.bak"))
	require.NoError(t, err)
	assert.Contains(t, string(bak), "one")

	names, err := store.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json"}, names)
}

func TestFileStoreRecoversFromCorruptPrimary(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, SaveJSON(ctx, store, "a.json", doc{Version: 2, Value: "one"}))
	require.NoError(t, SaveJSON(ctx, store, "a.json", doc{Version: 2, Value: "two"}))

	// simulate a torn write
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{"version": 2, "val`), 0o644))

	var got doc
	require.NoError(t, LoadJSON(ctx, store, "a.json", &got))
	assert.Equal(t, "one", got.Value)
}

func TestLoadJSONDetectsLegacySchema(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, "invites.json", []byte(`{"inviters": {}, "members": {}}`)))

	var got doc
	err := LoadJSON(ctx, store, "invites.json", &got)
	assert.True(t, errors.Is(err, ErrLegacySchema))
}

func TestDebouncedWriteThrough(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	d := NewDebounced(inner, 0)

	require.NoError(t, d.Save(ctx, "a.json", []byte(`{}`)))
	assert.Equal(t, 1, inner.SaveCount())
}

func TestDebouncedCoalescesAndFlushes(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	d := NewDebounced(inner, time.Hour)

	for i := 0; i < 5; i++ {
		require.NoError(t, d.Save(ctx, "a.json", []byte(`{"n":`+string(rune('0'+i))+`}`)))
	}
	assert.Equal(t, 0, inner.SaveCount())

	data, err := d.Load(ctx, "a.json")
	require.NoError(t, err)
	assert.Equal(t, `{"n":4}`, string(data))

	names, err := d.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json"}, names)

	require.NoError(t, d.Flush(ctx))
	assert.Equal(t, 1, inner.SaveCount())

	stored, err := inner.Load(ctx, "a.json")
	require.NoError(t, err)
	assert.Equal(t, `{"n":4}`, string(stored))
}

func TestDebouncedTimerFires(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	d := NewDebounced(inner, 10*time.Millisecond)

	require.NoError(t, d.Save(ctx, "a.json", []byte(`{}`)))
	assert.Eventually(t, func() bool { return inner.SaveCount() == 1 }, time.Second, 5*time.Millisecond)
}
