package render

import (
	"context"
	"errors"
	"testing"

	"github.com/vovakirdan/mnac/internal/games/mnac"
)

type memBacking struct {
	data   map[mnac.Fingerprint]string
	loads  int
	saves  int
	broken bool
}

func newMemBacking() *memBacking {
	return &memBacking{data: make(map[mnac.Fingerprint]string)}
}

func (b *memBacking) LoadRender(_ context.Context, fp mnac.Fingerprint) (string, bool, error) {
	b.loads++
	if b.broken {
		return "", false, errors.New("disk on fire")
	}
	text, ok := b.data[fp]
	return text, ok, nil
}

func (b *memBacking) SaveRender(_ context.Context, fp mnac.Fingerprint, text string) error {
	b.saves++
	if b.broken {
		return errors.New("disk on fire")
	}
	b.data[fp] = text
	return nil
}

func TestCacheHitsOnEqualFingerprint(t *testing.T) {
	ctx := context.Background()
	c := NewCache(8, nil, nil)

	a := mnac.New(mnac.Config{StartGrid: 3}, nil)
	b := mnac.New(mnac.Config{StartGrid: 3}, nil)

	first := c.Render(ctx, NewView(a))
	second := c.Render(ctx, NewView(b))
	if first != second {
		t.Error("equal games rendered differently")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Entries != 1 {
		t.Errorf("Stats() = %+v, want 1 hit, 1 miss, 1 entry", stats)
	}

	play(t, b, 5)
	if c.Render(ctx, NewView(b)) == first {
		t.Error("render did not change after a move")
	}
	if c.Stats().Misses != 2 {
		t.Errorf("Misses = %d, want 2", c.Stats().Misses)
	}
}

func TestCacheEvictsOldest(t *testing.T) {
	ctx := context.Background()
	c := NewCache(2, nil, nil)

	views := make([]View, 3)
	for i := range views {
		views[i] = NewView(mnac.New(mnac.Config{StartGrid: i}, nil))
		c.Render(ctx, views[i])
	}
	if c.Stats().Entries != 2 {
		t.Fatalf("Entries = %d, want 2", c.Stats().Entries)
	}

	c.Render(ctx, views[0])
	if c.Stats().Misses != 4 {
		t.Errorf("Misses = %d, want 4 after re-rendering an evicted board", c.Stats().Misses)
	}
}

func TestCacheBacking(t *testing.T) {
	ctx := context.Background()
	backing := newMemBacking()
	v := NewView(mnac.New(mnac.DefaultConfig(), nil))

	NewCache(4, backing, nil).Render(ctx, v)
	if backing.saves != 1 {
		t.Fatalf("saves = %d, want 1", backing.saves)
	}

	// A fresh cache finds the board in the backing without drawing it.
	c := NewCache(4, backing, nil)
	if got := c.Render(ctx, v); got != Text(v) {
		t.Errorf("backing returned %q", got)
	}
	if stats := c.Stats(); stats.Hits != 1 || stats.Misses != 0 {
		t.Errorf("Stats() = %+v, want a backing hit", stats)
	}
	if backing.saves != 1 {
		t.Errorf("saves = %d, a backing hit should not save again", backing.saves)
	}
}

func TestCacheBrokenBacking(t *testing.T) {
	backing := newMemBacking()
	backing.broken = true
	v := NewView(mnac.New(mnac.DefaultConfig(), nil))

	if got := NewCache(4, backing, nil).Render(context.Background(), v); got != Text(v) {
		t.Error("broken backing changed the render")
	}
}
