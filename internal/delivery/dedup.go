package delivery

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultDeduplicatorSize is the number of recent message IDs remembered by default
const DefaultDeduplicatorSize = 1024

// Deduplicator remembers the IDs of recently-handled messages, since Twitch may
// deliver the same message more than once
type Deduplicator struct {
	cache *lru.Cache[string, struct{}]
}

// NewDeduplicator creates a new Deduplicator with the given cache size
func NewDeduplicator(size int) (*Deduplicator, error) {
	cache, err := lru.New[string, struct{}](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	return &Deduplicator{cache: cache}, nil
}

// IsDuplicate records the given message ID, returning true if it had already been seen.
// Messages without an ID are never considered duplicates.
func (d *Deduplicator) IsDuplicate(messageID string) bool {
	if messageID == "" {
		return false
	}
	seen, _ := d.cache.ContainsOrAdd(messageID, struct{}{})
	return seen
}

// Forget removes a message ID, so that a redelivery of a message we failed to handle
// is not discarded
func (d *Deduplicator) Forget(messageID string) {
	d.cache.Remove(messageID)
}
