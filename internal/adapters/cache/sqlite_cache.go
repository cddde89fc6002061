package cache

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS verdict_cache (
		cache_key TEXT PRIMARY KEY,
		is_phishing BOOLEAN NOT NULL,
		confidence REAL NOT NULL,
		explanation TEXT NOT NULL DEFAULT '',
		model_used TEXT NOT NULL DEFAULT '',
		last_seen TIMESTAMP NOT NULL,
		expires_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_verdict_expires_at ON verdict_cache(expires_at)`,
}

const sqliteUpsert = `
	INSERT OR REPLACE INTO verdict_cache (cache_key, is_phishing, confidence, explanation, model_used, last_seen, expires_at)
	VALUES (:cache_key, :is_phishing, :confidence, :explanation, :model_used, :last_seen, :expires_at)`

// SQLiteCache is a SQLite implementation of the VerdictCache interface
type SQLiteCache struct {
	*sqlCache
}

// NewSQLiteCache opens or creates the SQLite cache database at dbPath
func NewSQLiteCache(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteCache, error) {
	db, err := sqlx.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// a single connection serialises writers
	db.SetMaxOpenConns(1)

	base, err := newSQLCache(db, "sqlite", sqliteSchema, sqliteUpsert, logger, cleanupFreq)
	if err != nil {
		return nil, err
	}

	return &SQLiteCache{sqlCache: base}, nil
}
