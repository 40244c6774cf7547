package query

import (
	"sync"
	"time"

	"github.com/paulmach/orb/geojson"
)

// snapshotCache is a thread-safe LRU cache of enriched month snapshots.
// Entries remember the table's modtime at build time, so a pipeline re-run
// (which replaces the table file) invalidates them on the next lookup.
type snapshotCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key     string
	fc      *geojson.FeatureCollection
	modTime time.Time
	prev    *entry
	next    *entry
}

func newSnapshotCache(maxEntries int) *snapshotCache {
	return &snapshotCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *snapshotCache) get(key string, modTime time.Time) (*geojson.FeatureCollection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !e.modTime.Equal(modTime) {
		delete(c.entries, key)
		c.remove(e)
		return nil, false
	}
	c.moveToFront(e)
	return e.fc, true
}

func (c *snapshotCache) put(key string, modTime time.Time, fc *geojson.FeatureCollection) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.fc = fc
		e.modTime = modTime
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, fc: fc, modTime: modTime}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *snapshotCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *snapshotCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *snapshotCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *snapshotCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
