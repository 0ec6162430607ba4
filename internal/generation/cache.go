package generation

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// CacheKey identifies a story request independently of word order and case.
func CacheKey(req Request) string {
	words := make([]string, len(req.Words))
	for i, w := range req.Words {
		words[i] = strings.ToLower(w)
	}
	sort.Strings(words)

	sum := sha256.Sum256([]byte(fmt.Sprintf("%s_%d_%s_%d",
		strings.Join(words, ","), req.Difficulty, req.StoryType, req.MaxLength)))
	return hex.EncodeToString(sum[:])
}

type cacheEntry struct {
	story     Story
	expiresAt time.Time
}

// Cache keeps generated stories for a fixed time. When full, expired
// entries are dropped first, then the entry closest to expiry.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	size    int
	now     func() time.Time
}

// NewCache creates a Cache. A ttl or size of zero disables caching.
func NewCache(ttl time.Duration, size int, clock func() time.Time) *Cache {
	if clock == nil {
		clock = time.Now
	}
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		size:    size,
		now:     clock,
	}
}

func (c *Cache) disabled() bool {
	return c == nil || c.ttl <= 0 || c.size <= 0
}

// Get returns a copy of the cached story for key.
func (c *Cache) Get(key string) (*Story, bool) {
	if c.disabled() {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}

	story := entry.story
	story.VocabularyUsed = append([]string(nil), entry.story.VocabularyUsed...)
	return &story, true
}

// Put stores a copy of story under key.
func (c *Cache) Put(key string, story *Story) {
	if c.disabled() || story == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.size {
		c.evict(now)
	}

	stored := *story
	stored.VocabularyUsed = append([]string(nil), story.VocabularyUsed...)
	c.entries[key] = cacheEntry{story: stored, expiresAt: now.Add(c.ttl)}
}

// Len returns the number of entries, including expired ones not yet dropped.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) evict(now time.Time) {
	var oldestKey string
	var oldest time.Time
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
			continue
		}
		if oldestKey == "" || entry.expiresAt.Before(oldest) {
			oldestKey, oldest = key, entry.expiresAt
		}
	}
	if len(c.entries) >= c.size && oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
