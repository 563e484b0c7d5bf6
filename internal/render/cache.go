package render

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"go.uber.org/atomic"

	"github.com/vovakirdan/mnac/internal/games/mnac"
)

// DefaultCacheSize is used when NewCache is given a non-positive size.
const DefaultCacheSize = 256

// Backing is a persistent second level behind the in-memory cache.
type Backing interface {
	LoadRender(ctx context.Context, fp mnac.Fingerprint) (string, bool, error)
	SaveRender(ctx context.Context, fp mnac.Fingerprint, text string) error
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Hits    int64
	Misses  int64
	Entries int
}

// Cache memoises rendered boards by fingerprint. The in-memory level is a
// bounded FIFO; entries evicted from it may still be found in the backing.
type Cache struct {
	mu      sync.Mutex
	size    int
	entries map[mnac.Fingerprint]string
	order   []mnac.Fingerprint

	backing Backing
	logger  *log.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates a cache holding up to size boards. backing and logger
// may be nil.
func NewCache(size int, backing Backing, logger *log.Logger) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Cache{
		size:    size,
		entries: make(map[mnac.Fingerprint]string, size),
		backing: backing,
		logger:  logger,
	}
}

// Render returns the text of v, drawing it only on a miss at every level.
// Backing failures are logged and never fail the render.
func (c *Cache) Render(ctx context.Context, v View) string {
	c.mu.Lock()
	text, ok := c.entries[v.Fingerprint]
	c.mu.Unlock()
	if ok {
		c.hits.Inc()
		return text
	}

	if c.backing != nil {
		text, ok, err := c.backing.LoadRender(ctx, v.Fingerprint)
		if err != nil {
			c.logger.Warn("render cache load failed", "fingerprint", v.Fingerprint, "err", err)
		}
		if ok {
			c.hits.Inc()
			c.remember(v.Fingerprint, text)
			return text
		}
	}

	c.misses.Inc()
	text = Text(v)
	c.remember(v.Fingerprint, text)

	if c.backing != nil {
		if err := c.backing.SaveRender(ctx, v.Fingerprint, text); err != nil {
			c.logger.Warn("render cache save failed", "fingerprint", v.Fingerprint, "err", err)
		}
	}
	return text
}

func (c *Cache) remember(fp mnac.Fingerprint, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[fp]; ok {
		return
	}
	if len(c.order) >= c.size {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[fp] = text
	c.order = append(c.order, fp)
}

// Stats returns the current counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	n := len(c.entries)
	c.mu.Unlock()

	return CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: n,
	}
}
