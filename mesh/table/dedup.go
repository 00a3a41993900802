package table

import "github.com/zhmesh/zhmesh/mesh/frame"

// DedupCapacity is the number of recent (id, origin) pairs remembered.
const DedupCapacity = 10

type recentMessage struct {
	id     uint16
	origin frame.Address
}

// DedupCache remembers the most recently accepted frames, newest first.
//
// Only a count of records bounds it, not time: a burst of DedupCapacity distinct
// frames evicts older records, and a late duplicate of an evicted frame is
// accepted again.
type DedupCache struct {
	records []recentMessage
	size    int
}

func NewDedupCache(capacity int) *DedupCache {
	if capacity < 1 {
		capacity = DedupCapacity
	}
	return &DedupCache{records: make([]recentMessage, capacity)}
}

func (c *DedupCache) String() string {
	return "dedup-cache"
}

// Len returns the number of records held.
func (c *DedupCache) Len() int {
	return c.size
}

// ShouldAccept returns false if (id, origin) was recently seen. Otherwise the pair
// is recorded as the most recent one, evicting the oldest, and true is returned.
func (c *DedupCache) ShouldAccept(id uint16, origin frame.Address) bool {
	for _, r := range c.records[:c.size] {
		if r.id == id && r.origin == origin {
			return false
		}
	}

	if c.size < len(c.records) {
		c.size++
	}
	copy(c.records[1:c.size], c.records[:c.size-1])
	c.records[0] = recentMessage{id: id, origin: origin}
	return true
}

// Reset forgets all records.
func (c *DedupCache) Reset() {
	clear(c.records)
	c.size = 0
}
