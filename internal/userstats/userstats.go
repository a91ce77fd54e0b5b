// Package userstats implements UserStatsIndex (spec.md §2's "Secondary map
// from authority → aggregated user stats", consulted only by TopMakers'
// includeUserStats path). Lazy-loaded and optionally Redis-backed, grounded
// on the teacher's internal/cache.L2Cache tiered-cache shape, collapsing to
// a local-only map when no Redis address is configured.
package userstats

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/litebittech/cex/services/dlob/internal/pubkey"
)

// Stats is the aggregated per-authority record TopMakers surfaces when
// includeUserStats is requested. The field set is deliberately small: this
// service reconstructs the book, it does not compute trading statistics —
// StatsAccount is the only field the distilled spec actually asks for, the
// remainder is what a lazy-loaded stats lookup would plausibly carry.
type Stats struct {
	Authority    pubkey.PublicKey `json:"authority"`
	StatsAccount pubkey.PublicKey `json:"statsAccount"`
	TakerVolume  string           `json:"takerVolume30D"`
	MakerVolume  string           `json:"makerVolume30D"`
}

// Loader fetches a fresh Stats record on a cache miss — the account
// stream's actual stats-account decoder, wired in by cmd/dlob. Index never
// calls this concurrently for the same authority twice (guarded by mu).
type Loader func(ctx context.Context, authority pubkey.PublicKey) (Stats, error)

// Index is UserStatsIndex: a lazy-loaded, optionally Redis-tiered cache
// keyed by authority pubkey.
type Index struct {
	load  Loader
	ttl   time.Duration
	redis redis.UniversalClient // nil when REDIS_ADDR is unset

	mu    sync.Mutex
	local map[pubkey.PublicKey]Stats
}

// New builds a UserStatsIndex. rdb may be nil, in which case the index is
// local-map-only.
func New(load Loader, rdb redis.UniversalClient, ttl time.Duration) *Index {
	return &Index{
		load:  load,
		ttl:   ttl,
		redis: rdb,
		local: make(map[pubkey.PublicKey]Stats),
	}
}

func cacheKey(authority pubkey.PublicKey) string {
	return "dlob:userstats:" + authority.String()
}

// Get returns the cached stats for authority, lazy-loading (and populating
// both tiers) on a miss.
func (idx *Index) Get(ctx context.Context, authority pubkey.PublicKey) (Stats, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if s, ok := idx.local[authority]; ok {
		return s, nil
	}
	if idx.redis != nil {
		if raw, err := idx.redis.Get(ctx, cacheKey(authority)).Bytes(); err == nil {
			var s Stats
			if jsonErr := json.Unmarshal(raw, &s); jsonErr == nil {
				idx.local[authority] = s
				return s, nil
			}
		}
	}

	s, err := idx.load(ctx, authority)
	if err != nil {
		return Stats{}, err
	}
	idx.local[authority] = s
	if idx.redis != nil {
		if raw, err := json.Marshal(s); err == nil {
			idx.redis.Set(ctx, cacheKey(authority), raw, idx.ttl)
		}
	}
	return s, nil
}

// Size reports the number of entries resident in the local tier — used by
// the /startup readiness check (spec.md §6).
func (idx *Index) Size() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.local)
}
