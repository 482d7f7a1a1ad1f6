package resolver

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTeamStore struct {
	mu    sync.Mutex
	ids   map[string]int
	next  int
	calls int
	err   error
}

func newFakeTeamStore() *fakeTeamStore {
	return &fakeTeamStore{ids: make(map[string]int)}
}

func (f *fakeTeamStore) FindOrCreate(ctx context.Context, name, conference string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	key := models.NormalizeName(name)
	if id, ok := f.ids[key]; ok {
		return id, nil
	}
	f.next++
	f.ids[key] = f.next
	return f.next, nil
}

func TestResolve_CaseInsensitive(t *testing.T) {
	store := newFakeTeamStore()
	r := New(store)
	ctx := context.Background()

	id1, err := r.Resolve(ctx, "Georgia", "SEC")
	require.NoError(t, err)

	id2, err := r.Resolve(ctx, "GEORGIA", "SEC")
	require.NoError(t, err)

	id3, err := r.Resolve(ctx, "  georgia ", "SEC")
	require.NoError(t, err)

	assert.Equal(t, id1, id2, "Casing should not change the resolved id")
	assert.Equal(t, id1, id3, "Whitespace should not change the resolved id")
	assert.Equal(t, 1, store.calls, "Repeat lookups should be served from the cache")
}

func TestResolve_DistinctNames(t *testing.T) {
	r := New(newFakeTeamStore())
	ctx := context.Background()

	id1, err := r.Resolve(ctx, "Georgia", "SEC")
	require.NoError(t, err)
	id2, err := r.Resolve(ctx, "Georgia Tech", "ACC")
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2, "Different names should resolve to different teams")
}

func TestResolve_EmptyName(t *testing.T) {
	r := New(newFakeTeamStore())

	_, err := r.Resolve(context.Background(), "", "SEC")
	assert.Error(t, err, "Empty names should be rejected")
}

func TestResolve_StoreErrorNotCached(t *testing.T) {
	store := newFakeTeamStore()
	store.err = fmt.Errorf("db down")
	r := New(store)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "Auburn", "SEC")
	require.Error(t, err, "Storage errors should propagate")

	store.err = nil
	id, err := r.Resolve(ctx, "Auburn", "SEC")
	require.NoError(t, err, "Recovery should resolve normally")
	assert.Equal(t, 1, id)
}

func TestReset_DropsCache(t *testing.T) {
	store := newFakeTeamStore()
	r := New(store)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "Michigan", "Big Ten")
	require.NoError(t, err)

	r.Reset()

	id, err := r.Resolve(ctx, "Michigan", "Big Ten")
	require.NoError(t, err)
	assert.Equal(t, 1, id, "The store remains the source of truth across resets")
	assert.Equal(t, 2, store.calls, "Reset should force a store round trip")
}

func TestResolve_ConcurrentSameName(t *testing.T) {
	store := newFakeTeamStore()
	r := New(store)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]int, 16)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := r.Resolve(ctx, "Notre Dame", "")
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id, "Concurrent resolutions should agree on one id")
	}
}
