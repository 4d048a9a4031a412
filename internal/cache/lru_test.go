package cache

import (
	"context"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestLRUCacheEvictsOldest(t *testing.T) {
	c := NewLRUCache[int](2, 0)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted as least recently used")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("a = %v %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("size = %d", c.Size())
	}
}

func TestLRUCacheTTL(t *testing.T) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](10, time.Minute)
	c.now = clk.now

	c.Set("k", "v")
	c.Set("other", "w")
	clk.t = clk.t.Add(30 * time.Second)
	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Fatalf("entry should still be fresh")
	}

	clk.t = clk.t.Add(time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("entry should have expired")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired removed %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Errorf("size = %d", c.Size())
	}
}

func TestLRUCacheDeleteAndPurge(t *testing.T) {
	c := NewLRUCache[int](5, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("a should be deleted")
	}
	c.Purge()
	if c.Size() != 0 {
		t.Errorf("size after purge = %d", c.Size())
	}
	c.Set("c", 3)
	if v, _ := c.Get("c"); v != 3 {
		t.Error("cache unusable after purge")
	}
}

func TestJanitorSweepAndRun(t *testing.T) {
	clk := &clock{t: time.Now()}
	c := NewLRUCache[int](5, time.Second)
	c.now = clk.now
	c.Set("a", 1)
	clk.t = clk.t.Add(2 * time.Second)

	j := NewJanitor(nil, c)
	if n := j.Sweep(); n != 1 {
		t.Errorf("sweep removed %d", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- j.Run(ctx, time.Millisecond) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
