package cache

import (
	"testing"
	"time"
)

func TestLRUCacheGetSet(t *testing.T) {
	c := NewLRUCache[int](3, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache reported a hit")
	}

	c.Set("a", 1)
	c.Set("a", 2)
	if v, ok := c.Get("a"); !ok || v != 2 {
		t.Errorf("Get(a) = %d, %v, want 2, true", v, ok)
	}
	if c.Size() != 1 {
		t.Errorf("Size = %d after overwrite, want 1", c.Size())
	}
}

func TestLRUCacheEvictsOldest(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	// Touching a makes b the eviction candidate.
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("least recently used key survived eviction")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("recently used key was evicted")
	}
	if c.Size() != 2 {
		t.Errorf("Size = %d, want 2", c.Size())
	}
}

func TestLRUCacheTTLExpiry(t *testing.T) {
	c := NewLRUCache[string](10, 10*time.Millisecond)
	c.Set("a", "x")
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expired entry returned on Get")
	}
	if c.Size() != 0 {
		t.Errorf("Size = %d after expired Get, want 0", c.Size())
	}

	c.Set("b", "y")
	time.Sleep(20 * time.Millisecond)
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired = %d, want 1", n)
	}
}

func TestLRUCacheDeletePrefix(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("user-1:w:2024-03-10", 1)
	c.Set("user-1:m:2024-3", 2)
	c.Set("user-2:w:2024-03-10", 3)

	if n := c.DeletePrefix("user-1:"); n != 2 {
		t.Errorf("DeletePrefix = %d, want 2", n)
	}
	if _, ok := c.Get("user-2:w:2024-03-10"); !ok {
		t.Error("unrelated key removed by DeletePrefix")
	}
	if c.Size() != 1 {
		t.Errorf("Size = %d, want 1", c.Size())
	}

	if n := c.DeletePrefix("user-1:"); n != 0 {
		t.Errorf("repeat DeletePrefix = %d, want 0", n)
	}
}
