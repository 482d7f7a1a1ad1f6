package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type coords struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func TestInProcessStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewInProcess()

	var out coords
	assert.False(t, store.Get(ctx, "venue:sanford stadium", &out), "Empty store should miss")

	store.Set(ctx, "venue:sanford stadium", coords{Lat: 33.95, Lon: -83.37})

	require.True(t, store.Get(ctx, "venue:sanford stadium", &out), "Set value should hit")
	assert.Equal(t, 33.95, out.Lat)
	assert.Equal(t, -83.37, out.Lon)
}

func TestInProcessStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	store := NewInProcess()

	store.Set(ctx, "k", coords{Lat: 1})
	store.Set(ctx, "k", coords{Lat: 2})

	var out coords
	require.True(t, store.Get(ctx, "k", &out))
	assert.Equal(t, 2.0, out.Lat, "Later writes should win")
}

func TestInProcessStore_CorruptEntryDropped(t *testing.T) {
	ctx := context.Background()
	store := NewInProcess()

	store.mu.Lock()
	store.local["bad"] = []byte(`{not json`)
	store.mu.Unlock()

	var out coords
	assert.False(t, store.Get(ctx, "bad", &out), "Corrupt entries should read as misses")
	assert.False(t, store.Get(ctx, "bad", &out), "Corrupt entries should be evicted")
}

func TestNew_UnreachableRedisStillCaches(t *testing.T) {
	ctx := context.Background()

	store, err := New(ctx, Config{Addr: "127.0.0.1:1"})
	require.Error(t, err, "Unreachable Redis should report the error")
	require.NotNil(t, store, "The store should still work in-process")

	store.Set(ctx, "k", coords{Lat: 5})
	var out coords
	assert.True(t, store.Get(ctx, "k", &out), "In-process level should work without Redis")
}
