package server

import (
	"math"
	"slices"
	"sync"

	"github.com/bastiangx/letterserve/pkg/letters"
	"github.com/charmbracelet/log"
)

// cacheEntry is one remembered solve.
type cacheEntry struct {
	words  []string
	length int
}

// ResultCache remembers recent solve results. Queries that are permutations
// of each other share an entry, since the answer depends only on the letter
// multiset. The index is immutable, so entries never go stale.
type ResultCache struct {
	entries     map[string]cacheEntry
	accessTime  map[string]int64
	accessCount int64
	hits        int64
	maxEntries  int
	mu          sync.Mutex
}

// NewResultCache creates a cache of at most maxEntries results. A
// non-positive size returns nil, which is a valid cache that never hits.
func NewResultCache(maxEntries int) *ResultCache {
	if maxEntries <= 0 {
		return nil
	}
	return &ResultCache{
		entries:    make(map[string]cacheEntry, maxEntries),
		accessTime: make(map[string]int64, maxEntries),
		maxEntries: maxEntries,
	}
}

// cacheKey is the mode plus the query letters in sorted order.
func cacheKey(mode letters.Mode, query string) string {
	rs := []rune(query)
	slices.Sort(rs)
	return mode.String() + ":" + string(rs)
}

// Get returns the cached words and length for query, if present. Callers
// must not modify the returned slice.
func (rc *ResultCache) Get(mode letters.Mode, query string) ([]string, int, bool) {
	if rc == nil {
		return nil, 0, false
	}
	key := cacheKey(mode, query)

	rc.mu.Lock()
	defer rc.mu.Unlock()
	e, ok := rc.entries[key]
	if !ok {
		return nil, 0, false
	}
	rc.hits++
	rc.markAccessed(key)
	return e.words, e.length, true
}

// Put stores a result, evicting the least recently used entry when full.
func (rc *ResultCache) Put(mode letters.Mode, query string, words []string, length int) {
	if rc == nil {
		return
	}
	key := cacheKey(mode, query)

	rc.mu.Lock()
	defer rc.mu.Unlock()
	if _, ok := rc.entries[key]; !ok && len(rc.entries) >= rc.maxEntries {
		rc.evictLRU()
	}
	rc.entries[key] = cacheEntry{words: words, length: length}
	rc.markAccessed(key)
}

// Stats returns cache counters.
func (rc *ResultCache) Stats() map[string]int {
	if rc == nil {
		return map[string]int{"cachedResults": 0, "maxResults": 0, "cacheHits": 0}
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return map[string]int{
		"cachedResults": len(rc.entries),
		"maxResults":    rc.maxEntries,
		"cacheHits":     int(rc.hits),
	}
}

func (rc *ResultCache) markAccessed(key string) {
	rc.accessCount++
	rc.accessTime[key] = rc.accessCount
}

func (rc *ResultCache) evictLRU() {
	var oldestKey string
	var oldestTime int64 = math.MaxInt64

	for key, t := range rc.accessTime {
		if t < oldestTime {
			oldestTime = t
			oldestKey = key
		}
	}
	if oldestKey != "" {
		delete(rc.entries, oldestKey)
		delete(rc.accessTime, oldestKey)
		log.Debugf("Evicted %q from result cache", oldestKey)
	}
}
