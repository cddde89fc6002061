package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mikey/phishing-detector/internal/core"
)

const selectEntry = `
	SELECT cache_key, is_phishing, confidence, explanation, model_used, last_seen, expires_at
	FROM verdict_cache
	WHERE cache_key = ? AND expires_at > ?`

// sqlCache implements VerdictCache over any sqlx database. The dialects differ only
// in schema and upsert statement.
type sqlCache struct {
	db          *sqlx.DB
	logger      *zap.Logger
	name        string
	upsert      string
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
}

func newSQLCache(db *sqlx.DB, name string, schema []string, upsert string, logger *zap.Logger, cleanupFreq time.Duration) (*sqlCache, error) {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create %s schema: %w", name, err)
		}
	}

	cache := &sqlCache{
		db:          db,
		logger:      logger,
		name:        name,
		upsert:      upsert,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	if cleanupFreq > 0 {
		go runCleanup(cache, cleanupFreq, cache.stopCh, logger)
	}

	return cache, nil
}

// Get retrieves a live entry
func (c *sqlCache) Get(ctx context.Context, key string) (*core.VerdictEntry, error) {
	var entry core.VerdictEntry
	err := c.db.GetContext(ctx, &entry, c.db.Rebind(selectEntry), key, time.Now().UTC())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s cache: %w", c.name, err)
	}
	return &entry, nil
}

// Set stores an entry, replacing any entry with the same key
func (c *sqlCache) Set(ctx context.Context, entry *core.VerdictEntry) error {
	row := *entry
	row.LastSeen = row.LastSeen.UTC()
	row.ExpiresAt = row.ExpiresAt.UTC()

	if _, err := c.db.NamedExecContext(ctx, c.upsert, &row); err != nil {
		return fmt.Errorf("failed to store %s cache entry: %w", c.name, err)
	}
	return nil
}

// Delete removes an entry
func (c *sqlCache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, c.db.Rebind(`DELETE FROM verdict_cache WHERE cache_key = ?`), key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *sqlCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, c.db.Rebind(`DELETE FROM verdict_cache WHERE expires_at <= ?`), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries",
			zap.String("cache", c.name),
			zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// Stop stops the background cleanup task and closes the database connection
func (c *sqlCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close cache database", zap.String("cache", c.name), zap.Error(err))
		}
	})
}
