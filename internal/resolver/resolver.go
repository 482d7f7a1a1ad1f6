// Package resolver maps external team names to stable internal team ids,
// creating team records on first sight.
package resolver

import (
	"context"
	"fmt"
	"sync"

	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/models"

	"github.com/rs/zerolog/log"
)

// TeamStore is the persistence surface the resolver needs. The store's
// find-or-create must be atomic; the resolver's cache is only a
// performance layer, never the source of truth.
type TeamStore interface {
	FindOrCreate(ctx context.Context, name, conference string) (int, error)
}

// Resolver resolves external team names case-insensitively against the
// persisted store, with a process-local cache for repeated lookups
// within one sync run. Not safe to share across processes.
type Resolver struct {
	store TeamStore

	mu    sync.Mutex
	cache map[string]int
}

// New creates a resolver over the given store.
func New(store TeamStore) *Resolver {
	return &Resolver{
		store: store,
		cache: make(map[string]int),
	}
}

// Resolve returns the stable team id for an external name, creating the
// team with placeholder metadata on a true miss. Storage errors
// propagate so the caller can skip the single record.
func (r *Resolver) Resolve(ctx context.Context, name, conference string) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("empty team name")
	}

	key := models.NormalizeName(name)

	r.mu.Lock()
	id, ok := r.cache[key]
	r.mu.Unlock()
	if ok {
		return id, nil
	}

	// Cache miss: the store re-checks and creates atomically, so two
	// misses for the same name cannot produce duplicate teams.
	id, err := r.store.FindOrCreate(ctx, name, conference)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	r.cache[key] = id
	r.mu.Unlock()

	log.Debug().Str("name", name).Int("team_id", id).Msg("Team name resolved")
	return id, nil
}

// Reset clears the process-local cache. Called between sync runs so a
// long-lived worker does not serve stale ids after manual data fixes.
func (r *Resolver) Reset() {
	r.mu.Lock()
	r.cache = make(map[string]int)
	r.mu.Unlock()
}
