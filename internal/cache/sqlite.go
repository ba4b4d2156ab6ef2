package cache

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3" // Required by the library implementation.
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteCache implements cache on a local SQLite database
type SQLiteCache struct {
	db        *sql.DB
	duration  time.Duration
	hitCount  atomic.Int64
	missCount atomic.Int64
	now       func() time.Time
}

// NewSQLiteCache opens the database at path and applies pending migrations
func NewSQLiteCache(path string, duration time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open DB file: %w", err)
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteCache{db: db, duration: duration, now: time.Now}, nil
}

func migrateUp(db *sql.DB) error {
	dbInstance, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("create DB instance: %w", err)
	}

	srcInstance, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create source instance: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", srcInstance, "sqlite3", dbInstance)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Get retrieves an entry from the database
func (c *SQLiteCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	var (
		entry                            CacheEntry
		summary                          []byte
		createdAt, expiresAt, accessedAt int64
	)

	err := c.db.QueryRowContext(ctx,
		`SELECT key, url, summary, created_at, expires_at, accessed_at, access_count FROM summaries WHERE key = ?`,
		key,
	).Scan(&entry.Key, &entry.URL, &summary, &createdAt, &expiresAt, &accessedAt, &entry.AccessCount)
	if errors.Is(err, sql.ErrNoRows) {
		c.missCount.Add(1)
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("querying entry: %w", err)
	}

	now := c.now()
	if now.UnixNano() > expiresAt {
		if err := c.Delete(ctx, key); err != nil {
			return nil, err
		}
		c.missCount.Add(1)
		return nil, ErrCacheMiss
	}

	if err := json.Unmarshal(summary, &entry.Summary); err != nil {
		return nil, fmt.Errorf("unmarshaling cache entry: %w", err)
	}

	entry.CreatedAt = time.Unix(0, createdAt)
	entry.ExpiresAt = time.Unix(0, expiresAt)
	entry.AccessedAt = now
	entry.AccessCount++

	if _, err := c.db.ExecContext(ctx,
		`UPDATE summaries SET accessed_at = ?, access_count = ? WHERE key = ?`,
		now.UnixNano(), entry.AccessCount, key,
	); err != nil {
		return nil, fmt.Errorf("updating access info: %w", err)
	}

	c.hitCount.Add(1)
	return &entry, nil
}

// Set stores an entry in the database, replacing any previous one
func (c *SQLiteCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	summary, err := json.Marshal(entry.Summary)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}

	now := c.now()
	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO summaries (key, url, summary, created_at, expires_at, accessed_at, access_count)
		 VALUES (?, ?, ?, ?, ?, ?, 0)`,
		key, entry.URL, summary, now.UnixNano(), now.Add(c.duration).UnixNano(), now.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("inserting entry: %w", err)
	}
	return nil
}

// Delete removes an entry from the database
func (c *SQLiteCache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM summaries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	return nil
}

// Exists checks if an unexpired entry exists in the database
func (c *SQLiteCache) Exists(ctx context.Context, key string) (bool, error) {
	var count int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM summaries WHERE key = ? AND expires_at >= ?`,
		key, c.now().UnixNano(),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking entry: %w", err)
	}
	return count > 0, nil
}

// Clear removes all entries and resets the counters
func (c *SQLiteCache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM summaries`); err != nil {
		return fmt.Errorf("clearing entries: %w", err)
	}
	c.hitCount.Store(0)
	c.missCount.Store(0)
	return nil
}

// GetStats returns cache statistics
func (c *SQLiteCache) GetStats(ctx context.Context) (*Stats, error) {
	now := c.now()

	var (
		total, expired int
		size, oldest   sql.NullInt64
		avgCreated     sql.NullFloat64
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN expires_at < ? THEN 1 ELSE 0 END), 0),
		        SUM(LENGTH(summary)),
		        MIN(created_at),
		        AVG(created_at)
		 FROM summaries`,
		now.UnixNano(),
	).Scan(&total, &expired, &size, &oldest, &avgCreated)
	if err != nil {
		return nil, fmt.Errorf("querying stats: %w", err)
	}

	hits, misses := c.hitCount.Load(), c.missCount.Load()
	stats := &Stats{
		TotalEntries:   total,
		HitCount:       hits,
		MissCount:      misses,
		HitRate:        hitRate(hits, misses),
		MemoryUsage:    size.Int64,
		ExpiredEntries: expired,
	}

	if oldest.Valid {
		stats.OldestEntry = time.Unix(0, oldest.Int64)
	}
	if avgCreated.Valid {
		stats.AverageAge = now.Sub(time.Unix(0, int64(avgCreated.Float64)))
	}

	return stats, nil
}

// Cleanup removes expired entries
func (c *SQLiteCache) Cleanup(ctx context.Context) (int, error) {
	result, err := c.db.ExecContext(ctx, `DELETE FROM summaries WHERE expires_at < ?`, c.now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("deleting expired entries: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting removed entries: %w", err)
	}
	return int(removed), nil
}

// Close closes the database
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
