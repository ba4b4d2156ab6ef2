package cache

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pep299/company-summarizer/internal/config"
	"github.com/pep299/company-summarizer/internal/model"
)

// Cache interface defines cache operations
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
	GetStats(ctx context.Context) (*Stats, error)
	// Cleanup removes expired entries and reports how many were removed
	Cleanup(ctx context.Context) (int, error)
	Close() error
}

// CacheEntry represents a cached summary
type CacheEntry struct {
	Key         string                      `json:"key"`
	URL         string                      `json:"url"`
	Summary     model.SummaryResultResponse `json:"summary"`
	CreatedAt   time.Time                   `json:"created_at"`
	ExpiresAt   time.Time                   `json:"expires_at"`
	AccessedAt  time.Time                   `json:"accessed_at"`
	AccessCount int                         `json:"access_count"`
}

// Stats represents cache statistics
type Stats struct {
	TotalEntries   int           `json:"total_entries"`
	HitCount       int64         `json:"hit_count"`
	MissCount      int64         `json:"miss_count"`
	HitRate        float64       `json:"hit_rate"`
	MemoryUsage    int64         `json:"memory_usage_bytes"`
	OldestEntry    time.Time     `json:"oldest_entry"`
	AverageAge     time.Duration `json:"average_age"`
	ExpiredEntries int           `json:"expired_entries"`
}

// Common cache errors
var (
	ErrCacheMiss   = errors.New("cache miss")
	ErrDisabled    = errors.New("cache disabled")
	ErrUnsupported = errors.New("unsupported cache type")
)

// New creates the backend selected by CACHE_TYPE
func New(ctx context.Context, cfg *config.Config) (Cache, error) {
	duration := time.Duration(cfg.CacheDuration) * time.Hour

	switch cfg.CacheType {
	case config.CacheMemory:
		return NewMemoryCache(duration), nil
	case config.CacheSQLite:
		c, err := NewSQLiteCache(cfg.CacheSQLitePath, duration)
		if err != nil {
			return nil, fmt.Errorf("creating sqlite cache: %w", err)
		}
		return c, nil
	case config.CacheGCS:
		c, err := NewGCSCache(ctx, cfg.GCSBucket, cfg.GCSPrefix, duration, gcsOptions(cfg)...)
		if err != nil {
			return nil, fmt.Errorf("creating cloud storage cache: %w", err)
		}
		return c, nil
	case config.CacheNone, "":
		return nil, ErrDisabled
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, cfg.CacheType)
	}
}

// GenerateKey generates a cache key for a company URL
func GenerateKey(url string) string {
	// Create MD5 hash for consistent key length
	hash := md5.Sum([]byte(strings.TrimSpace(url)))
	return fmt.Sprintf("summary:%x", hash)
}

func hitRate(hits, misses int64) float64 {
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}

// estimateMemoryUsage estimates memory usage of a cache entry without JSON marshaling
func estimateMemoryUsage(entry *CacheEntry) int64 {
	size := int64(len(entry.Key) + len(entry.URL))
	size += int64(len(entry.Summary.Name) + len(entry.Summary.Description) + len(entry.Summary.FullSummary))
	for _, point := range entry.Summary.ProofPoints {
		size += int64(len(point))
	}
	for _, point := range entry.Summary.PainPoints {
		size += int64(len(point))
	}

	// Add estimated overhead for time.Time fields and slices
	size += 128

	return size
}
