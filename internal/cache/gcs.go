package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/pep299/company-summarizer/internal/config"
)

// expiresAtKey is the object metadata key holding the entry expiry
const expiresAtKey = "expires-at"

// GCSCache implements cache using Google Cloud Storage with one JSON object per entry
type GCSCache struct {
	client     *storage.Client
	bucketName string
	duration   time.Duration
	prefix     string
	now        func() time.Time
}

// NewGCSCache creates a new Cloud Storage cache
func NewGCSCache(ctx context.Context, bucketName, prefix string, duration time.Duration, opts ...option.ClientOption) (*GCSCache, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	return &GCSCache{
		client:     client,
		bucketName: bucketName,
		duration:   duration,
		prefix:     prefix,
		now:        time.Now,
	}, nil
}

func gcsOptions(cfg *config.Config) []option.ClientOption {
	if cfg.GCSCredentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(cfg.GCSCredentialsFile)}
}

func (c *GCSCache) objectName(key string) string {
	return c.prefix + key + ".json"
}

// Get retrieves an entry from Cloud Storage
func (c *GCSCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	obj := c.client.Bucket(c.bucketName).Object(c.objectName(key))

	reader, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("opening object reader: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading object data: %w", err)
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshaling cache entry: %w", err)
	}

	// Check if expired
	if c.now().After(entry.ExpiresAt) {
		if err := c.Delete(ctx, key); err != nil {
			return nil, err
		}
		return nil, ErrCacheMiss
	}

	entry.AccessedAt = c.now()
	entry.AccessCount++

	return &entry, nil
}

// Set stores an entry in Cloud Storage
func (c *GCSCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	now := c.now()
	stored := *entry
	stored.Key = key
	stored.CreatedAt = now
	stored.ExpiresAt = now.Add(c.duration)
	stored.AccessedAt = now
	stored.AccessCount = 0

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}

	writer := c.client.Bucket(c.bucketName).Object(c.objectName(key)).NewWriter(ctx)
	writer.ContentType = "application/json"
	writer.Metadata = map[string]string{expiresAtKey: stored.ExpiresAt.Format(time.RFC3339Nano)}

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return fmt.Errorf("writing object data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing object writer: %w", err)
	}

	return nil
}

// Delete removes an entry from Cloud Storage
func (c *GCSCache) Delete(ctx context.Context, key string) error {
	err := c.client.Bucket(c.bucketName).Object(c.objectName(key)).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("deleting object: %w", err)
	}
	return nil
}

// Exists checks if an unexpired entry exists in Cloud Storage
func (c *GCSCache) Exists(ctx context.Context, key string) (bool, error) {
	attrs, err := c.client.Bucket(c.bucketName).Object(c.objectName(key)).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("getting object attributes: %w", err)
	}

	return !c.expired(attrs), nil
}

// Clear removes all entries with the cache prefix
func (c *GCSCache) Clear(ctx context.Context) error {
	_, err := c.deleteWhere(ctx, func(*storage.ObjectAttrs) bool { return true })
	return err
}

// GetStats returns cache statistics for Cloud Storage.
// Hit and miss counts are not tracked for this backend.
func (c *GCSCache) GetStats(ctx context.Context) (*Stats, error) {
	it := c.client.Bucket(c.bucketName).Objects(ctx, &storage.Query{Prefix: c.prefix})

	stats := &Stats{}
	var totalAge time.Duration
	now := c.now()

	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing objects: %w", err)
		}

		stats.TotalEntries++
		stats.MemoryUsage += attrs.Size

		if stats.OldestEntry.IsZero() || attrs.Created.Before(stats.OldestEntry) {
			stats.OldestEntry = attrs.Created
		}
		totalAge += now.Sub(attrs.Created)

		if c.expired(attrs) {
			stats.ExpiredEntries++
		}
	}

	if stats.TotalEntries > 0 {
		stats.AverageAge = totalAge / time.Duration(stats.TotalEntries)
	}

	return stats, nil
}

// Cleanup removes objects whose expiry metadata has passed
func (c *GCSCache) Cleanup(ctx context.Context) (int, error) {
	return c.deleteWhere(ctx, c.expired)
}

// Close closes the Cloud Storage client
func (c *GCSCache) Close() error {
	return c.client.Close()
}

func (c *GCSCache) deleteWhere(ctx context.Context, match func(*storage.ObjectAttrs) bool) (int, error) {
	bucket := c.client.Bucket(c.bucketName)
	it := bucket.Objects(ctx, &storage.Query{Prefix: c.prefix})

	removed := 0
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return removed, fmt.Errorf("listing objects: %w", err)
		}

		if !match(attrs) {
			continue
		}

		if err := bucket.Object(attrs.Name).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			return removed, fmt.Errorf("deleting object %s: %w", attrs.Name, err)
		}
		removed++
	}

	return removed, nil
}

// expired reports whether the object's expiry metadata is in the past.
// Objects without readable metadata are treated as live.
func (c *GCSCache) expired(attrs *storage.ObjectAttrs) bool {
	value, ok := attrs.Metadata[expiresAtKey]
	if !ok {
		return false
	}
	expiresAt, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return false
	}
	return c.now().After(expiresAt)
}
