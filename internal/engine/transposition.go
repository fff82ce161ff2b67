package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto/v2"

	"github.com/hailam/chester/internal/board"
)

// TranspositionTable caches exact negamax scores keyed by position, side
// to move and remaining depth. Entries are never bounds, so a hit can be
// returned as is. It is safe for concurrent use by parallel root workers.
//
// A nil *TranspositionTable is a valid, always-empty table.
type TranspositionTable struct {
	cache *ristretto.Cache[uint64, int]

	// Statistics
	hits   atomic.Uint64
	probes atomic.Uint64
}

// NewTranspositionTable creates a table holding roughly maxEntries scores.
// maxEntries <= 0 returns a nil table, which disables caching.
func NewTranspositionTable(maxEntries int) (*TranspositionTable, error) {
	if maxEntries <= 0 {
		return nil, nil
	}

	cache, err := ristretto.NewCache(&ristretto.Config[uint64, int]{
		NumCounters: int64(maxEntries) * 10, // ristretto recommends 10x the item count
		MaxCost:     int64(maxEntries),
		BufferItems: 64,
		// Every entry costs 1; MaxCost is an entry count.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create score cache: %w", err)
	}
	return &TranspositionTable{cache: cache}, nil
}

// Key returns the table key of b with color to move and depth plies left.
func Key(b *board.Board, color board.Color, depth int) uint64 {
	var buf [board.NumCells + 2]byte
	key := b.AppendBinary(buf[:0])
	key = append(key, byte(color), byte(depth))
	return xxhash.Sum64(key)
}

// Probe returns the cached score for key.
func (tt *TranspositionTable) Probe(key uint64) (int, bool) {
	if tt == nil {
		return 0, false
	}
	tt.probes.Add(1)

	score, ok := tt.cache.Get(key)
	if ok {
		tt.hits.Add(1)
	}
	return score, ok
}

// Store records an exact score for key. The write becomes visible
// asynchronously and may be dropped under memory pressure; callers only
// lose a future hit.
func (tt *TranspositionTable) Store(key uint64, score int) {
	if tt == nil {
		return
	}
	tt.cache.Set(key, score, 1)
}

// Wait blocks until pending stores are visible to Probe.
func (tt *TranspositionTable) Wait() {
	if tt == nil {
		return
	}
	tt.cache.Wait()
}

// Hits returns the number of successful probes.
func (tt *TranspositionTable) Hits() uint64 {
	if tt == nil {
		return 0
	}
	return tt.hits.Load()
}

// HitRate returns the cache hit rate as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	if tt == nil {
		return 0
	}
	probes := tt.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(tt.hits.Load()) / float64(probes) * 100
}

// Clear drops every entry and resets the statistics.
func (tt *TranspositionTable) Clear() {
	if tt == nil {
		return
	}
	tt.cache.Clear()
	tt.hits.Store(0)
	tt.probes.Store(0)
}

// Close releases the cache's background goroutines.
func (tt *TranspositionTable) Close() {
	if tt == nil {
		return
	}
	tt.cache.Close()
}
