package delwaq

import (
	"container/list"
	"fmt"
	"os"
	"sync"
	"time"
)

// MetaDataCache keeps the metadata of recently used files with LRU
// eviction. Entries are keyed by path and format, since the same file can be
// read by more than one decoder.
//
// An entry is only reused while the file's size and modification time are
// unchanged, since a running simulation keeps appending timesteps. Empty
// metadata is never cached.
//
// Example:
//
//	cache := delwaq.NewMetaDataCache(64)
//	meta, err := cache.Get("model.map", reader.Format(), func() (*delwaq.MetaData, error) {
//	    return reader.ReadMetaData("model.map")
//	})
type MetaDataCache struct {
	maxEntries int
	entries    map[cacheKey]*cacheEntry
	lru        *list.List // most recent at front
	hits       int
	misses     int
	mu         sync.Mutex
}

type cacheKey struct {
	path   string
	format Format
}

// cacheEntry tracks cached metadata and the file state it was read from
type cacheEntry struct {
	key          cacheKey
	meta         *MetaData
	size         int64
	modTime      time.Time
	element      *list.Element
	lastAccessed time.Time
	accessCount  int
}

// NewMetaDataCache creates a cache holding at most maxEntries files. Zero
// means unlimited.
func NewMetaDataCache(maxEntries int) *MetaDataCache {
	return &MetaDataCache{
		maxEntries: maxEntries,
		entries:    make(map[cacheKey]*cacheEntry),
		lru:        list.New(),
	}
}

// Get returns cached metadata for path as decoded in format, or calls loader
// and caches the result. The loader is called when the file changed since it
// was cached.
func (c *MetaDataCache) Get(path string, format Format, loader func() (*MetaData, error)) (*MetaData, error) {
	key := cacheKey{path: path, format: format}
	size, modTime, statErr := fileState(path)

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok {
		if statErr == nil && entry.size == size && entry.modTime.Equal(modTime) {
			entry.lastAccessed = time.Now()
			entry.accessCount++
			c.lru.MoveToFront(entry.element)
			c.hits++
			c.mu.Unlock()
			return entry.meta, nil
		}
		c.removeLocked(entry)
	}
	c.misses++
	c.mu.Unlock()

	meta, err := loader()
	if err != nil {
		return nil, fmt.Errorf("load metadata: %w", err)
	}
	if statErr != nil || meta.Empty() {
		return meta, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.addLocked(key, meta, size, modTime)
	return meta, nil
}

func (c *MetaDataCache) addLocked(key cacheKey, meta *MetaData, size int64, modTime time.Time) {
	if entry, ok := c.entries[key]; ok {
		c.removeLocked(entry)
	}
	if c.maxEntries > 0 {
		for c.lru.Len() >= c.maxEntries {
			c.evictLRU()
		}
	}

	entry := &cacheEntry{
		key:          key,
		meta:         meta,
		size:         size,
		modTime:      modTime,
		lastAccessed: time.Now(),
		accessCount:  1,
	}
	entry.element = c.lru.PushFront(entry)
	c.entries[key] = entry
}

// evictLRU removes the least recently used entry.
// Must be called with c.mu locked.
func (c *MetaDataCache) evictLRU() {
	elem := c.lru.Back()
	if elem == nil {
		return
	}
	c.removeLocked(elem.Value.(*cacheEntry))
}

func (c *MetaDataCache) removeLocked(entry *cacheEntry) {
	c.lru.Remove(entry.element)
	delete(c.entries, entry.key)
}

// Remove explicitly removes a file from the cache, in every format.
func (c *MetaDataCache) Remove(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if key.path == path {
			c.removeLocked(entry)
		}
	}
}

// Clear removes all entries from the cache.
func (c *MetaDataCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[cacheKey]*cacheEntry)
	c.lru.Init()
}

// Stats returns cache statistics.
func (c *MetaDataCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		Entries:    len(c.entries),
		MaxEntries: c.maxEntries,
		Hits:       c.hits,
		Misses:     c.misses,
	}
}

// CacheStats holds cache performance metrics.
type CacheStats struct {
	Entries    int // Number of files currently cached
	MaxEntries int // Maximum number of files, 0 for unlimited
	Hits       int // Lookups served from the cache
	Misses     int // Lookups that called the loader
}

func fileState(path string) (int64, time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, time.Time{}, err
	}
	return info.Size(), info.ModTime(), nil
}
