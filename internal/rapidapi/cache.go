package rapidapi

import (
	"sync"
	"time"
)

// Cache is a small TTL cache for API lookups that rarely change.
// It is safe for concurrent use.
type Cache struct {
	mu sync.RWMutex

	imageTTL time.Duration
	titleTTL time.Duration

	images map[string]cachedItem[string]       // key: search text
	titles map[string]cachedItem[*ReleaseDate] // key: title id

	janitorStop chan struct{}
}

// cachedItem wraps a cached value with an expiration time.
type cachedItem[T any] struct {
	value     T
	expiresAt time.Time
}

// NewCache creates a Cache. TTLs <= 0 use the defaults: 6 hours for images and
// 24 hours for release dates.
func NewCache(imageTTL, titleTTL time.Duration) *Cache {
	if imageTTL <= 0 {
		imageTTL = 6 * time.Hour
	}
	if titleTTL <= 0 {
		titleTTL = 24 * time.Hour
	}

	return &Cache{
		imageTTL: imageTTL,
		titleTTL: titleTTL,
		images:   make(map[string]cachedItem[string]),
		titles:   make(map[string]cachedItem[*ReleaseDate]),
	}
}

// NewDefaultCache creates a Cache with default TTLs.
func NewDefaultCache() *Cache {
	return NewCache(0, 0)
}

func (c *Cache) SetImage(query, url string) {
	if c == nil || query == "" || url == "" {
		return
	}
	c.mu.Lock()
	c.images[query] = cachedItem[string]{value: url, expiresAt: time.Now().Add(c.imageTTL)}
	c.mu.Unlock()
}

func (c *Cache) GetImage(query string) (string, bool) {
	if c == nil {
		return "", false
	}
	return get(c, c.images, query)
}

func (c *Cache) SetReleaseDate(titleID string, date *ReleaseDate) {
	if c == nil || titleID == "" || date == nil {
		return
	}
	copied := *date
	c.mu.Lock()
	c.titles[titleID] = cachedItem[*ReleaseDate]{value: &copied, expiresAt: time.Now().Add(c.titleTTL)}
	c.mu.Unlock()
}

func (c *Cache) GetReleaseDate(titleID string) (*ReleaseDate, bool) {
	if c == nil {
		return nil, false
	}
	date, ok := get(c, c.titles, titleID)
	if !ok {
		return nil, false
	}
	copied := *date
	return &copied, true
}

// get reads key from m, evicting it eagerly if expired.
func get[T any](c *Cache, m map[string]cachedItem[T], key string) (T, bool) {
	var zero T
	if key == "" {
		return zero, false
	}

	c.mu.RLock()
	item, ok := m[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}

	if time.Now().After(item.expiresAt) {
		evictExpired(c, m, key)
		return zero, false
	}

	return item.value, true
}

// evictExpired deletes key if it is still expired once the write lock is held,
// so a value stored after the read is kept.
func evictExpired[T any](c *Cache, m map[string]cachedItem[T], key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if item, ok := m[key]; ok && time.Now().After(item.expiresAt) {
		delete(m, key)
	}
}

// PurgeExpired removes expired entries.
func (c *Cache) PurgeExpired() {
	if c == nil {
		return
	}
	now := time.Now()

	c.mu.Lock()
	for k, v := range c.images {
		if now.After(v.expiresAt) {
			delete(c.images, k)
		}
	}
	for k, v := range c.titles {
		if now.After(v.expiresAt) {
			delete(c.titles, k)
		}
	}
	c.mu.Unlock()
}

// StartJanitor purges expired entries every interval (default 30 minutes) until the
// returned stop function is called.
func (c *Cache) StartJanitor(interval time.Duration) func() {
	if c == nil {
		return func() {}
	}
	if interval <= 0 {
		interval = 30 * time.Minute
	}

	c.mu.Lock()
	if c.janitorStop != nil {
		close(c.janitorStop)
	}
	stop := make(chan struct{})
	c.janitorStop = stop
	c.mu.Unlock()

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.PurgeExpired()
			case <-stop:
				return
			}
		}
	}()

	return func() {
		c.mu.Lock()
		if c.janitorStop == stop {
			close(c.janitorStop)
			c.janitorStop = nil
		}
		c.mu.Unlock()
	}
}

// Stats returns the number of live entries.
func (c *Cache) Stats() (images int, titles int) {
	if c == nil {
		return 0, 0
	}
	c.PurgeExpired()

	c.mu.RLock()
	images = len(c.images)
	titles = len(c.titles)
	c.mu.RUnlock()
	return
}
