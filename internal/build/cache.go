package build

import (
	"hash/crc32"
	"sync"
	"sync/atomic"

	"github.com/conneroisu/unidom/internal/compiler"
	"github.com/conneroisu/unidom/internal/errors"
)

// ComponentCache keeps compiled components across the builds of one
// pipeline. Entries are keyed by file path and valid while the file content
// hashes the same, so a watch rebuild only recompiles what changed.
type ComponentCache struct {
	entries  map[string]*cacheEntry
	crcTable *crc32.Table
	mutex    sync.RWMutex

	hits   int64
	misses int64
}

type cacheEntry struct {
	hash        uint32
	result      *compiler.Result
	diagnostics []errors.Diagnostic
}

// CacheStats is a point-in-time view of cache usage.
type CacheStats struct {
	Entries int
	Hits    int64
	Misses  int64
}

// NewComponentCache creates an empty cache.
func NewComponentCache() *ComponentCache {
	return &ComponentCache{
		entries:  make(map[string]*cacheEntry),
		crcTable: crc32.MakeTable(crc32.Castagnoli),
	}
}

// Hash returns the content hash used to validate entries.
func (c *ComponentCache) Hash(content []byte) uint32 {
	return crc32.Checksum(content, c.crcTable)
}

// Get returns the compiled result for path and the diagnostics its
// compilation raised, provided the content hash still matches.
func (c *ComponentCache) Get(path string, hash uint32) (*compiler.Result, []errors.Diagnostic, bool) {
	c.mutex.RLock()
	entry, ok := c.entries[path]
	c.mutex.RUnlock()

	if !ok || entry.hash != hash {
		atomic.AddInt64(&c.misses, 1)
		return nil, nil, false
	}
	atomic.AddInt64(&c.hits, 1)
	return entry.result, entry.diagnostics, true
}

// Set stores a compiled result.
func (c *ComponentCache) Set(path string, hash uint32, result *compiler.Result, diagnostics []errors.Diagnostic) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries[path] = &cacheEntry{hash: hash, result: result, diagnostics: diagnostics}
}

// Retain drops every entry whose path is not in keep.
func (c *ComponentCache) Retain(keep map[string]bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for path := range c.entries {
		if !keep[path] {
			delete(c.entries, path)
		}
	}
}

// Clear removes all entries and resets the counters.
func (c *ComponentCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = make(map[string]*cacheEntry)
	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
}

// Stats returns current usage.
func (c *ComponentCache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return CacheStats{
		Entries: len(c.entries),
		Hits:    atomic.LoadInt64(&c.hits),
		Misses:  atomic.LoadInt64(&c.misses),
	}
}
