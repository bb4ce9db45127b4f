// Package cache memoizes the expensive halves of an announcement: the
// synthesized audio (two-level memory/disk cache) and the LLM-simplified
// text (a small JSON key-value store). Announcing the same track twice
// must never hit a remote API twice.
package cache

import (
	"errors"
	"time"
)

// Errors returned by cache operations.
var (
	// ErrItemTooLarge is returned when a value exceeds the cache capacity.
	ErrItemTooLarge = errors.New("item too large for cache")
)

// Stats provides cache performance counters.
type Stats struct {
	Hits       int64     // Number of cache hits
	Misses     int64     // Number of cache misses
	Evictions  int64     // Number of evictions
	Size       int64     // Current cache size in bytes
	Capacity   int64     // Maximum cache capacity in bytes
	ItemCount  int64     // Number of cached items
	HitRate    float64   // Hits / (Hits + Misses)
	LastAccess time.Time // Time of the most recent hit
}

// merge combines level stats for reporting.
func (s Stats) merge(other Stats) Stats {
	out := Stats{
		Hits:      s.Hits + other.Hits,
		Misses:    s.Misses + other.Misses,
		Evictions: s.Evictions + other.Evictions,
		Size:      s.Size + other.Size,
		Capacity:  s.Capacity + other.Capacity,
		ItemCount: s.ItemCount + other.ItemCount,
	}
	if out.Hits+out.Misses > 0 {
		out.HitRate = float64(out.Hits) / float64(out.Hits+out.Misses)
	}
	if other.LastAccess.After(s.LastAccess) {
		out.LastAccess = other.LastAccess
	} else {
		out.LastAccess = s.LastAccess
	}
	return out
}
