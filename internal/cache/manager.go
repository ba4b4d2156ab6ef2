package cache

import (
	"context"

	"github.com/pep299/company-summarizer/internal/model"
)

// Manager handles cache operations with convenience methods
type Manager struct {
	cache Cache
}

// NewManager creates a new cache manager
func NewManager(cache Cache) *Manager {
	return &Manager{cache: cache}
}

// GetSummary retrieves a cached summary for a URL
func (m *Manager) GetSummary(ctx context.Context, url string) (*model.SummaryResultResponse, error) {
	entry, err := m.cache.Get(ctx, GenerateKey(url))
	if err != nil {
		return nil, err
	}

	return &entry.Summary, nil
}

// SetSummary caches a summary for a URL
func (m *Manager) SetSummary(ctx context.Context, url string, summary model.SummaryResultResponse) error {
	entry := &CacheEntry{
		URL:     url,
		Summary: summary,
	}

	return m.cache.Set(ctx, GenerateKey(url), entry)
}

// IsCached checks if a URL already has a live summary
func (m *Manager) IsCached(ctx context.Context, url string) (bool, error) {
	return m.cache.Exists(ctx, GenerateKey(url))
}

// Forget drops the cached summary for a URL
func (m *Manager) Forget(ctx context.Context, url string) error {
	return m.cache.Delete(ctx, GenerateKey(url))
}

// GetStats returns cache statistics
func (m *Manager) GetStats(ctx context.Context) (*Stats, error) {
	return m.cache.GetStats(ctx)
}

// Clear clears all cached entries
func (m *Manager) Clear(ctx context.Context) error {
	return m.cache.Clear(ctx)
}

// Cleanup removes expired entries
func (m *Manager) Cleanup(ctx context.Context) (int, error) {
	return m.cache.Cleanup(ctx)
}

// Close closes the underlying cache
func (m *Manager) Close() error {
	return m.cache.Close()
}
