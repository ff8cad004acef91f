package rango

import (
	"sync"
	"time"
)

// topN is how many categories and pages the index page lists.
const topN = 5

// CategoryCache is an in-memory TTL cache of the index page's most liked
// categories and most viewed pages.
type CategoryCache struct {
	mu         sync.RWMutex
	categories []Category
	pages      []Page
	loaded     bool
	fetched    time.Time
	ttl        time.Duration
	store      *Store
}

// NewCategoryCache creates a CategoryCache backed by the given Store.
func NewCategoryCache(s *Store, ttl time.Duration) *CategoryCache {
	return &CategoryCache{store: s, ttl: ttl}
}

func (c *CategoryCache) valid() bool {
	return c.loaded && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *CategoryCache) Invalidate() {
	c.mu.Lock()
	c.categories = nil
	c.pages = nil
	c.loaded = false
	c.mu.Unlock()
}

func (c *CategoryCache) load() error {
	if c.valid() {
		return nil
	}
	cats, err := c.store.TopCategories(topN)
	if err != nil {
		return err
	}
	pages, err := c.store.TopPages(topN)
	if err != nil {
		return err
	}
	c.categories = cats
	c.pages = pages
	c.loaded = true
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns the cached lists after making sure they are fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *CategoryCache) ensureLoaded() ([]Category, []Page, error) {
	c.mu.RLock()
	if c.valid() {
		cats, pages := c.categories, c.pages
		c.mu.RUnlock()
		return cats, pages, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, err
	}
	return c.categories, c.pages, nil
}

// TopCategories returns the most liked categories.
func (c *CategoryCache) TopCategories() ([]Category, error) {
	cats, _, err := c.ensureLoaded()
	return cats, err
}

// TopPages returns the most viewed pages.
func (c *CategoryCache) TopPages() ([]Page, error) {
	_, pages, err := c.ensureLoaded()
	return pages, err
}
