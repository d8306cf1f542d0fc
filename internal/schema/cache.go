package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// DomainSchema separates schema-text hashes from other hashed content.
const DomainSchema = "sparqlconn/schema/v1"

// Cache lazily builds one Index per distinct schema text.
//
// Entries are keyed by a hash of the text, so editing the schema produces a
// new entry instead of serving a stale index. Reset drops every entry.
//
// Thread-safety: Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Index
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Index)}
}

// Index returns the index for text, parsing and building it on first use.
func (c *Cache) Index(text string) (*Index, error) {
	key := Key(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	if idx, ok := c.entries[key]; ok {
		return idx, nil
	}
	cols, err := Parse(text)
	if err != nil {
		return nil, err
	}
	idx := NewIndex(cols)
	c.entries[key] = idx
	return idx, nil
}

// Reset discards all cached indexes.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Index)
}

// Len returns the number of cached indexes.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Key computes the cache key for a schema text.
// Format: hex(SHA256(domain + 0x00 + text))
func Key(text string) string {
	h := sha256.New()
	h.Write([]byte(DomainSchema))
	h.Write([]byte{0x00})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
