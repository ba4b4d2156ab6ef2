package cache

import (
	"context"
	"errors"

	"github.com/pep299/company-summarizer/internal/logging"
	"github.com/pep299/company-summarizer/internal/model"
	"github.com/pep299/company-summarizer/internal/summarizer"
)

// CachedSummarizer serves repeated URLs from the cache and stores fresh summaries
type CachedSummarizer struct {
	next    summarizer.Summarizer
	manager *Manager
	logger  logging.Logger
}

// NewCachedSummarizer wraps next with a cache lookup
func NewCachedSummarizer(next summarizer.Summarizer, manager *Manager, logger logging.Logger) *CachedSummarizer {
	return &CachedSummarizer{next: next, manager: manager, logger: logger}
}

// GetSummary returns the cached summary for url or delegates and caches the result.
// Cache failures are logged and never fail the request.
func (s *CachedSummarizer) GetSummary(ctx context.Context, url string) (*model.SummaryResultResponse, error) {
	cached, err := s.manager.GetSummary(ctx, url)
	if err == nil {
		s.logger.Debugf("Cache hit for URL: %s", url)
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.logger.Warnf("Cache lookup failed for URL: %s - %v", url, err)
	}

	result, err := s.next.GetSummary(ctx, url)
	if err != nil {
		return nil, err
	}

	if err := s.manager.SetSummary(ctx, url, *result); err != nil {
		s.logger.Warnf("Caching summary failed for URL: %s - %v", url, err)
	}

	return result, nil
}
