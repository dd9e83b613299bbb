package app

import (
	"fmt"
	"time"

	"logicdoc/internal/shared/observability"

	lru "github.com/hashicorp/golang-lru/v2"
)

// contentKey ties cached text to the file version it was read from, so a
// rewritten file misses the cache without explicit invalidation.
type contentKey struct {
	path    string
	size    int64
	modTime int64
}

// cachedContent keeps the bytes as read next to their UTF-8 text.
type cachedContent struct {
	text string
	raw  []byte
}

type contentCache struct {
	entries *lru.Cache[contentKey, cachedContent]
}

func newContentCache(size int) (*contentCache, error) {
	if size <= 0 {
		return &contentCache{}, nil
	}
	entries, err := lru.New[contentKey, cachedContent](size)
	if err != nil {
		return nil, fmt.Errorf("create content cache: %w", err)
	}
	return &contentCache{entries: entries}, nil
}

func keyFor(path string, size int64, modTime time.Time) contentKey {
	return contentKey{path: path, size: size, modTime: modTime.UnixNano()}
}

func (c *contentCache) get(key contentKey) (cachedContent, bool) {
	if c == nil || c.entries == nil {
		return cachedContent{}, false
	}
	content, ok := c.entries.Get(key)
	if ok {
		observability.SourceCacheTotal.WithLabelValues("hit").Inc()
	} else {
		observability.SourceCacheTotal.WithLabelValues("miss").Inc()
	}
	return content, ok
}

func (c *contentCache) put(key contentKey, content cachedContent) {
	if c == nil || c.entries == nil {
		return
	}
	c.entries.Add(key, content)
}

func (c *contentCache) len() int {
	if c == nil || c.entries == nil {
		return 0
	}
	return c.entries.Len()
}
