package blobstore

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"productivity-pal-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	got, err := s.Get(ctx, KeyWebsiteStats)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.Set(ctx, map[string][]byte{
		KeyWebsiteStats:      []byte(`[["a.com",{"totalTime":5000,"visits":1,"category":"neutral"}]]`),
		KeyWebsiteCategories: []byte(`{"a.com":"productive"}`),
	}))
	require.NoError(t, s.Set(ctx, map[string][]byte{
		KeyWebsiteCategories: []byte(`{"a.com":"unproductive"}`),
	}))

	got, err = s.Get(ctx, KeyWebsiteStats, KeyWebsiteCategories, KeyBreakSettings)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.JSONEq(t, `{"a.com":"unproductive"}`, string(got[KeyWebsiteCategories]))
	assert.Contains(t, string(got[KeyWebsiteStats]), "a.com")
	_, present := got[KeyBreakSettings]
	assert.False(t, present)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	s := NewMemoryStore()
	buf := []byte("v1")
	require.NoError(t, s.Set(context.Background(), map[string][]byte{"k": buf}))
	buf[0] = 'x'

	got, _ := s.Get(context.Background(), "k")
	assert.Equal(t, "v1", string(got["k"]))
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "blobs.db"))
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blobs.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), map[string][]byte{KeyBreakSettings: []byte(`{"breakInterval":30,"breakDuration":5}`)}))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(context.Background(), KeyBreakSettings)
	require.NoError(t, err)
	assert.JSONEq(t, `{"breakInterval":30,"breakDuration":5}`, string(got[KeyBreakSettings]))
}

type flakyStore struct {
	*MemoryStore
	mu    sync.Mutex
	fail  bool
	calls int
}

func (f *flakyStore) Set(ctx context.Context, items map[string][]byte) error {
	f.mu.Lock()
	f.calls++
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return f.MemoryStore.Set(ctx, items)
}

func TestAsyncWriterFlushAndOverlay(t *testing.T) {
	inner := &flakyStore{MemoryStore: NewMemoryStore(), fail: true}
	w := NewAsyncWriter(inner, logger.NewNopLogger())
	ctx := context.Background()

	require.NoError(t, w.Set(ctx, map[string][]byte{"k": []byte("v1")}))
	assert.Error(t, w.Flush(ctx))

	// the failed value is still visible and is retried
	got, err := w.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got["k"]))

	inner.mu.Lock()
	inner.fail = false
	inner.mu.Unlock()

	require.NoError(t, w.Set(ctx, map[string][]byte{"k": []byte("v2")}))
	require.NoError(t, w.Flush(ctx))

	stored, _ := inner.MemoryStore.Get(ctx, "k")
	assert.Equal(t, "v2", string(stored["k"]))

	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Set(ctx, map[string][]byte{"k": []byte("v3")}), ErrClosed)
}

func TestAsyncWriterCloseWritesPending(t *testing.T) {
	inner := NewMemoryStore()
	w := NewAsyncWriter(inner, logger.NewNopLogger())

	require.NoError(t, w.Set(context.Background(), map[string][]byte{"a": []byte("1"), "b": []byte("2")}))
	require.NoError(t, w.Close())

	got, _ := inner.Get(context.Background(), "a", "b")
	assert.Len(t, got, 2)
}
