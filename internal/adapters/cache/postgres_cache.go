package cache

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS verdict_cache (
		cache_key TEXT PRIMARY KEY,
		is_phishing BOOLEAN NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		explanation TEXT NOT NULL DEFAULT '',
		model_used TEXT NOT NULL DEFAULT '',
		last_seen TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_verdict_expires_at ON verdict_cache(expires_at)`,
}

const postgresUpsert = `
	INSERT INTO verdict_cache (cache_key, is_phishing, confidence, explanation, model_used, last_seen, expires_at)
	VALUES (:cache_key, :is_phishing, :confidence, :explanation, :model_used, :last_seen, :expires_at)
	ON CONFLICT (cache_key) DO UPDATE SET
		is_phishing = EXCLUDED.is_phishing,
		confidence = EXCLUDED.confidence,
		explanation = EXCLUDED.explanation,
		model_used = EXCLUDED.model_used,
		last_seen = EXCLUDED.last_seen,
		expires_at = EXCLUDED.expires_at`

// PostgresCache is a PostgreSQL implementation of the VerdictCache interface
type PostgresCache struct {
	*sqlCache
}

// NewPostgresCache connects to PostgreSQL and creates the cache table if needed
func NewPostgresCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*PostgresCache, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	base, err := newSQLCache(db, "postgres", postgresSchema, postgresUpsert, logger, cleanupFreq)
	if err != nil {
		return nil, err
	}

	return &PostgresCache{sqlCache: base}, nil
}
