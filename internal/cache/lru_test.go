package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl)
	c.now = clock.Now
	return c, clock
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)
	c.Set("2024-01", "jan")
	c.Set("2024-02", "feb")
	c.Get("2024-01")
	c.Set("2024-03", "mar")

	if _, ok := c.Get("2024-02"); ok {
		t.Error("2024-02 should have been evicted")
	}
	if v, ok := c.Get("2024-01"); !ok || v != "jan" {
		t.Errorf("Get(2024-01) = %q, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUCache_TTL(t *testing.T) {
	c, clock := newTestCache(4, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	clock.Advance(30 * time.Second)
	c.Set("b", "2b")
	clock.Advance(45 * time.Second)

	if _, ok := c.Get("a"); ok {
		t.Error("a should have expired")
	}
	if n := c.CleanExpired(); n != 0 {
		t.Errorf("CleanExpired() = %d, want 0 after Get dropped a", n)
	}
	if v, ok := c.Get("b"); !ok || v != "2b" {
		t.Errorf("Get(b) = %q, %v; Set should refresh the deadline", v, ok)
	}

	clock.Advance(time.Minute)
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
}

func TestLRUCache_DeleteAndPurge(t *testing.T) {
	c, _ := newTestCache(4, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Delete("a")
	c.Delete("missing")
	if _, ok := c.Get("a"); ok {
		t.Error("a should be deleted")
	}
	c.Purge()
	if c.Size() != 0 {
		t.Errorf("Size() after Purge = %d", c.Size())
	}
	c.Set("c", "3")
	if v, ok := c.Get("c"); !ok || v != "3" {
		t.Error("cache should be usable after Purge")
	}
}

func TestLRUCache_Stats(t *testing.T) {
	c, _ := newTestCache(4, time.Minute)
	c.Set("a", "1")
	c.Get("a")
	c.Get("a")
	c.Get("b")

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 || s.Size != 1 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestLRUCache_GetOrLoad(t *testing.T) {
	c, _ := newTestCache(4, time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})

	load := func() (string, error) {
		calls.Add(1)
		<-release
		return "report", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.GetOrLoad("2024-03", load)
			if err != nil {
				t.Errorf("GetOrLoad: %v", err)
			}
			results[i] = v
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("load called %d times, want 1", n)
	}
	for i, v := range results {
		if v != "report" {
			t.Errorf("results[%d] = %q", i, v)
		}
	}
	if v, ok := c.Get("2024-03"); !ok || v != "report" {
		t.Error("loaded value should be cached")
	}
}

func TestLRUCache_GetOrLoadErrorNotCached(t *testing.T) {
	c, _ := newTestCache(4, time.Minute)
	boom := errors.New("boom")

	if _, err := c.GetOrLoad("k", func() (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if c.Size() != 0 {
		t.Error("failed load must not be cached")
	}
	v, err := c.GetOrLoad("k", func() (string, error) { return "ok", nil })
	if err != nil || v != "ok" {
		t.Fatalf("second GetOrLoad = %q, %v", v, err)
	}
}

func TestLRUCache_DeleteDuringLoadDropsResult(t *testing.T) {
	c, _ := newTestCache(4, time.Minute)

	v, err := c.GetOrLoad("k", func() (string, error) {
		c.Delete("k")
		return "stale", nil
	})
	if err != nil || v != "stale" {
		t.Fatalf("GetOrLoad = %q, %v", v, err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("a value loaded across an invalidation must not be cached")
	}
}

func TestManager_CleanAllAndRun(t *testing.T) {
	c, clock := newTestCache(4, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	clock.Advance(2 * time.Minute)

	m := NewManager()
	m.Register("reports", c)
	if n := m.CleanAll(); n != 2 {
		t.Fatalf("CleanAll() = %d, want 2", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, 5*time.Millisecond) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
