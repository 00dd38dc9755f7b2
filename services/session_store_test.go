package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreLifecycle(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewSessionStore(rdb, time.Hour)
	ctx := context.Background()

	sid, err := store.Open(ctx, "6523f1c2a1b2c3d4e5f60718")
	require.NoError(t, err)

	userID, err := store.Lookup(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, "6523f1c2a1b2c3d4e5f60718", userID)

	require.NoError(t, store.Close(ctx, sid))
	_, err = store.Lookup(ctx, sid)
	assert.ErrorIs(t, err, ErrNoSession)

	sid, err = store.Open(ctx, "6523f1c2a1b2c3d4e5f60718")
	require.NoError(t, err)
	mr.FastForward(time.Hour + time.Second)
	_, err = store.Lookup(ctx, sid)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionStoreWithoutRedis(t *testing.T) {
	store := NewSessionStore(nil, time.Hour)
	assert.False(t, store.Enabled())
	_, err := store.Open(context.Background(), "x")
	assert.Error(t, err)
	_, err = store.Lookup(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNoSession)
	assert.NoError(t, store.Close(context.Background(), "x"))
}
