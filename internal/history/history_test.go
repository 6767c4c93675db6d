// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenNilConfig(t *testing.T) {
	_, err := Open(nil)
	assert.Error(t, err)
}

func TestGetUnknownTopic(t *testing.T) {
	store := openTestStore(t)

	_, ok, err := store.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMarkReadAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.MarkRead(ctx, 42, 7))

	m, ok, err := store.Get(ctx, 42)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(42), m.TopicID)
	assert.Equal(t, 7, m.LastReply)
	assert.WithinDuration(t, time.Now(), m.ReadAt, 5*time.Second)
}

func TestMarkReadNeverRegresses(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.MarkRead(ctx, 1, 10))
	require.NoError(t, store.MarkRead(ctx, 1, 4)) // scrolled back up

	m, ok, err := store.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 10, m.LastReply)
}

func TestMarkReadAdvances(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.MarkRead(ctx, 1, 3))
	require.NoError(t, store.MarkRead(ctx, 1, 9))

	m, _, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 9, m.LastReply)
}

func TestMarkReadClampsNegative(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.MarkRead(ctx, 1, -3))

	m, _, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, m.LastReply)
}

func TestGetAll(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.MarkRead(ctx, 1, 2))
	require.NoError(t, store.MarkRead(ctx, 3, 5))

	marks, err := store.GetAll(ctx, []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, marks, 2)
	assert.Equal(t, 2, marks[1].LastReply)
	assert.Equal(t, 5, marks[3].LastReply)
	_, present := marks[2]
	assert.False(t, present)
}

func TestGetAllEmpty(t *testing.T) {
	store := openTestStore(t)

	marks, err := store.GetAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, marks)
}

func TestPrune(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.MarkRead(ctx, 1, 1))
	require.NoError(t, store.MarkRead(ctx, 2, 1))

	// Nothing is older than an hour yet.
	n, err := store.Prune(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// Everything is older than a negative cutoff in the future.
	n, err = store.Prune(ctx, -time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	marks, err := store.GetAll(ctx, []int64{1, 2})
	require.NoError(t, err)
	assert.Empty(t, marks)
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	ctx := context.Background()

	store, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, store.MarkRead(ctx, 7, 12))
	require.NoError(t, store.Close())

	store, err = Open(cfg)
	require.NoError(t, err)
	defer store.Close()

	m, ok, err := store.Get(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 12, m.LastReply)
}

func TestClosedStore(t *testing.T) {
	store, err := Open(DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	require.NoError(t, store.Close())
	ctx := context.Background()

	assert.ErrorIs(t, store.MarkRead(ctx, 1, 1), ErrClosed)
	_, _, err = store.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = store.GetAll(ctx, []int64{1})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = store.Prune(ctx, time.Hour)
	assert.ErrorIs(t, err, ErrClosed)

	// Closing twice is fine.
	assert.NoError(t, store.Close())
}

func TestDefaultConfigPath(t *testing.T) {
	cfg := DefaultConfig("/home/u/.parley")
	assert.Equal(t, filepath.Join("/home/u/.parley", "history.db"), cfg.DatabasePath)
}
