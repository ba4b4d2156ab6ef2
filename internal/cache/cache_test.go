package cache

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pep299/company-summarizer/internal/config"
	"github.com/pep299/company-summarizer/internal/logging"
	"github.com/pep299/company-summarizer/internal/model"
)

type clock struct {
	current time.Time
}

func (c *clock) now() time.Time {
	return c.current
}

func (c *clock) advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func testSummary(name string) model.SummaryResultResponse {
	result, _ := model.NewSummaryResult(name, "Widgets",
		[]string{"a", "b", "c", "d", "e"},
		[]string{"p1", "p2", "p3", "p4", "p5"})
	return model.NewSummaryResultResponse(result, "full "+name)
}

// backends returns every locally testable cache with a controllable clock
func backends() map[string]func(t *testing.T) (Cache, *clock) {
	return map[string]func(t *testing.T) (Cache, *clock){
		"memory": func(t *testing.T) (Cache, *clock) {
			c := NewMemoryCache(time.Hour)
			clk := &clock{current: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
			c.now = clk.now
			return c, clk
		},
		"sqlite": func(t *testing.T) (Cache, *clock) {
			c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.sqlite"), time.Hour)
			if err != nil {
				t.Fatalf("Failed to open sqlite cache: %v", err)
			}
			clk := &clock{current: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
			c.now = clk.now
			return c, clk
		},
	}
}

func TestCacheSetGet(t *testing.T) {
	for name, newCache := range backends() {
		t.Run(name, func(t *testing.T) {
			cache, _ := newCache(t)
			defer cache.Close()
			ctx := context.Background()

			entry := &CacheEntry{URL: "https://acme.test", Summary: testSummary("Acme")}
			if err := cache.Set(ctx, "test-key", entry); err != nil {
				t.Fatalf("Failed to set cache entry: %v", err)
			}

			retrieved, err := cache.Get(ctx, "test-key")
			if err != nil {
				t.Fatalf("Failed to get cache entry: %v", err)
			}

			if retrieved.URL != entry.URL {
				t.Errorf("Expected URL '%s', got '%s'", entry.URL, retrieved.URL)
			}
			if retrieved.Summary.Name != "Acme" || retrieved.Summary.FullSummary != "full Acme" {
				t.Errorf("Unexpected summary: %+v", retrieved.Summary)
			}
			if len(retrieved.Summary.ProofPoints) != model.PointsCount {
				t.Errorf("Expected %d proof points, got %d", model.PointsCount, len(retrieved.Summary.ProofPoints))
			}
			if retrieved.AccessCount != 1 {
				t.Errorf("Expected access count 1, got %d", retrieved.AccessCount)
			}

			exists, err := cache.Exists(ctx, "test-key")
			if err != nil {
				t.Fatalf("Failed to check existence: %v", err)
			}
			if !exists {
				t.Error("Expected key to exist")
			}

			if _, err := cache.Get(ctx, "non-existent"); !errors.Is(err, ErrCacheMiss) {
				t.Errorf("Expected ErrCacheMiss, got %v", err)
			}
		})
	}
}

func TestCacheEntriesAreIsolated(t *testing.T) {
	for name, newCache := range backends() {
		t.Run(name, func(t *testing.T) {
			cache, _ := newCache(t)
			defer cache.Close()
			ctx := context.Background()

			entry := &CacheEntry{URL: "https://acme.test", Summary: testSummary("Acme")}
			if err := cache.Set(ctx, "test-key", entry); err != nil {
				t.Fatalf("Failed to set cache entry: %v", err)
			}
			entry.Summary.ProofPoints[0] = "changed after set"

			first, err := cache.Get(ctx, "test-key")
			if err != nil {
				t.Fatalf("Failed to get cache entry: %v", err)
			}
			first.Summary.PainPoints[0] = "changed after get"

			second, err := cache.Get(ctx, "test-key")
			if err != nil {
				t.Fatalf("Failed to get cache entry: %v", err)
			}

			if second.Summary.ProofPoints[0] != "a" {
				t.Errorf("Expected proof point 'a', got '%s'", second.Summary.ProofPoints[0])
			}
			if second.Summary.PainPoints[0] != "p1" {
				t.Errorf("Expected pain point 'p1', got '%s'", second.Summary.PainPoints[0])
			}
		})
	}
}

func TestCacheExpiration(t *testing.T) {
	for name, newCache := range backends() {
		t.Run(name, func(t *testing.T) {
			cache, clk := newCache(t)
			defer cache.Close()
			ctx := context.Background()

			if err := cache.Set(ctx, "test-key", &CacheEntry{Summary: testSummary("Acme")}); err != nil {
				t.Fatalf("Failed to set cache entry: %v", err)
			}

			clk.advance(2 * time.Hour)

			exists, err := cache.Exists(ctx, "test-key")
			if err != nil {
				t.Fatalf("Failed to check existence: %v", err)
			}
			if exists {
				t.Error("Expected expired key to not exist")
			}

			if _, err := cache.Get(ctx, "test-key"); !errors.Is(err, ErrCacheMiss) {
				t.Errorf("Expected ErrCacheMiss for expired entry, got %v", err)
			}
		})
	}
}

func TestCacheCleanup(t *testing.T) {
	for name, newCache := range backends() {
		t.Run(name, func(t *testing.T) {
			cache, clk := newCache(t)
			defer cache.Close()
			ctx := context.Background()

			if err := cache.Set(ctx, "old", &CacheEntry{Summary: testSummary("Old")}); err != nil {
				t.Fatalf("Failed to set cache entry: %v", err)
			}
			clk.advance(90 * time.Minute)
			if err := cache.Set(ctx, "new", &CacheEntry{Summary: testSummary("New")}); err != nil {
				t.Fatalf("Failed to set cache entry: %v", err)
			}

			stats, err := cache.GetStats(ctx)
			if err != nil {
				t.Fatalf("Failed to get stats: %v", err)
			}
			if stats.TotalEntries != 2 || stats.ExpiredEntries != 1 {
				t.Errorf("Expected 2 entries with 1 expired, got %d/%d", stats.TotalEntries, stats.ExpiredEntries)
			}

			removed, err := cache.Cleanup(ctx)
			if err != nil {
				t.Fatalf("Failed to clean up: %v", err)
			}
			if removed != 1 {
				t.Errorf("Expected 1 removed entry, got %d", removed)
			}

			if _, err := cache.Get(ctx, "new"); err != nil {
				t.Errorf("Expected live entry to survive cleanup, got %v", err)
			}
		})
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	for name, newCache := range backends() {
		t.Run(name, func(t *testing.T) {
			cache, _ := newCache(t)
			defer cache.Close()
			ctx := context.Background()

			for _, key := range []string{"a", "b", "c"} {
				if err := cache.Set(ctx, key, &CacheEntry{Summary: testSummary(key)}); err != nil {
					t.Fatalf("Failed to set cache entry: %v", err)
				}
			}

			if err := cache.Delete(ctx, "a"); err != nil {
				t.Fatalf("Failed to delete: %v", err)
			}
			if exists, _ := cache.Exists(ctx, "a"); exists {
				t.Error("Expected deleted key to not exist")
			}

			if err := cache.Clear(ctx); err != nil {
				t.Fatalf("Failed to clear: %v", err)
			}

			stats, err := cache.GetStats(ctx)
			if err != nil {
				t.Fatalf("Failed to get stats: %v", err)
			}
			if stats.TotalEntries != 0 {
				t.Errorf("Expected 0 entries after clear, got %d", stats.TotalEntries)
			}
		})
	}
}

func TestCacheStats(t *testing.T) {
	for name, newCache := range backends() {
		t.Run(name, func(t *testing.T) {
			cache, _ := newCache(t)
			defer cache.Close()
			ctx := context.Background()

			if err := cache.Set(ctx, "key1", &CacheEntry{Summary: testSummary("Acme")}); err != nil {
				t.Fatalf("Failed to set cache entry: %v", err)
			}

			cache.Get(ctx, "key1")
			cache.Get(ctx, "key1")
			cache.Get(ctx, "missing")

			stats, err := cache.GetStats(ctx)
			if err != nil {
				t.Fatalf("Failed to get stats: %v", err)
			}

			if stats.HitCount != 2 {
				t.Errorf("Expected 2 hits, got %d", stats.HitCount)
			}
			if stats.MissCount != 1 {
				t.Errorf("Expected 1 miss, got %d", stats.MissCount)
			}
			if stats.HitRate < 0.66 || stats.HitRate > 0.67 {
				t.Errorf("Expected hit rate ~0.667, got %f", stats.HitRate)
			}
			if stats.MemoryUsage <= 0 {
				t.Errorf("Expected positive memory usage, got %d", stats.MemoryUsage)
			}
		})
	}
}

func TestSQLiteCacheReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.sqlite")
	ctx := context.Background()

	first, err := NewSQLiteCache(path, time.Hour)
	if err != nil {
		t.Fatalf("Failed to open sqlite cache: %v", err)
	}
	if err := first.Set(ctx, "key", &CacheEntry{Summary: testSummary("Acme")}); err != nil {
		t.Fatalf("Failed to set cache entry: %v", err)
	}
	first.Close()

	second, err := NewSQLiteCache(path, time.Hour)
	if err != nil {
		t.Fatalf("Failed to reopen sqlite cache: %v", err)
	}
	defer second.Close()

	entry, err := second.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Expected entry to persist, got %v", err)
	}
	if entry.Summary.Name != "Acme" {
		t.Errorf("Expected name 'Acme', got '%s'", entry.Summary.Name)
	}
}

func TestGenerateKey(t *testing.T) {
	key1 := GenerateKey("https://acme.test")
	key2 := GenerateKey("  https://acme.test \n")
	key3 := GenerateKey("https://other.test")

	if key1 != key2 {
		t.Errorf("Expected surrounding whitespace to be ignored, got '%s' and '%s'", key1, key2)
	}
	if key1 == key3 {
		t.Error("Expected different URLs to produce different keys")
	}
	if !strings.HasPrefix(key1, "summary:") || len(key1) != len("summary:")+32 {
		t.Errorf("Unexpected key format '%s'", key1)
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	memory, err := New(ctx, &config.Config{CacheType: config.CacheMemory, CacheDuration: 1})
	if err != nil {
		t.Fatalf("Failed to create memory cache: %v", err)
	}
	if _, ok := memory.(*MemoryCache); !ok {
		t.Errorf("Expected *MemoryCache, got %T", memory)
	}

	sqlite, err := New(ctx, &config.Config{
		CacheType:       config.CacheSQLite,
		CacheDuration:   1,
		CacheSQLitePath: filepath.Join(t.TempDir(), "c.sqlite"),
	})
	if err != nil {
		t.Fatalf("Failed to create sqlite cache: %v", err)
	}
	sqlite.Close()

	if _, err := New(ctx, &config.Config{CacheType: config.CacheNone}); !errors.Is(err, ErrDisabled) {
		t.Errorf("Expected ErrDisabled, got %v", err)
	}
	if _, err := New(ctx, &config.Config{CacheType: "redis"}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Expected ErrUnsupported, got %v", err)
	}
}

func TestJanitorSweep(t *testing.T) {
	memory := NewMemoryCache(time.Hour)
	clk := &clock{current: time.Now()}
	memory.now = clk.now

	ctx := context.Background()
	manager := NewManager(memory)
	if err := manager.SetSummary(ctx, "https://acme.test", testSummary("Acme")); err != nil {
		t.Fatalf("Failed to set summary: %v", err)
	}
	clk.advance(2 * time.Hour)

	var logs bytes.Buffer
	janitor := NewJanitor(ctx, manager, "@every 10m", logging.NewWriter(&logs, "INFO"))
	janitor.sweep()

	stats, _ := manager.GetStats(ctx)
	if stats.TotalEntries != 0 {
		t.Errorf("Expected sweep to remove expired entry, got %d entries", stats.TotalEntries)
	}
	if !strings.Contains(logs.String(), "Removed 1 expired cache entries") {
		t.Errorf("Expected sweep log line, got %q", logs.String())
	}
}

func TestJanitorInvalidSpec(t *testing.T) {
	janitor := NewJanitor(context.Background(), NewManager(NewMemoryCache(time.Hour)), "not a spec", logging.Discard())
	if err := janitor.Start(); err == nil {
		t.Error("Expected error for invalid cron spec")
	}
}

func TestJanitorStartStop(t *testing.T) {
	janitor := NewJanitor(context.Background(), NewManager(NewMemoryCache(time.Hour)), "@every 10m", logging.Discard())
	if err := janitor.Start(); err != nil {
		t.Fatalf("Failed to start janitor: %v", err)
	}
	janitor.Stop()
}
