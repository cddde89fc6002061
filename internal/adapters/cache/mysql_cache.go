package cache

import (
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS verdict_cache (
		cache_key CHAR(64) PRIMARY KEY,
		is_phishing BOOLEAN NOT NULL,
		confidence DOUBLE NOT NULL,
		explanation TEXT NOT NULL,
		model_used VARCHAR(255) NOT NULL DEFAULT '',
		last_seen DATETIME(6) NOT NULL,
		expires_at DATETIME(6) NOT NULL,
		INDEX idx_verdict_expires_at (expires_at)
	)`,
}

const mysqlUpsert = `
	INSERT INTO verdict_cache (cache_key, is_phishing, confidence, explanation, model_used, last_seen, expires_at)
	VALUES (:cache_key, :is_phishing, :confidence, :explanation, :model_used, :last_seen, :expires_at)
	ON DUPLICATE KEY UPDATE
		is_phishing = VALUES(is_phishing),
		confidence = VALUES(confidence),
		explanation = VALUES(explanation),
		model_used = VALUES(model_used),
		last_seen = VALUES(last_seen),
		expires_at = VALUES(expires_at)`

// MySQLCache is a MySQL implementation of the VerdictCache interface
type MySQLCache struct {
	*sqlCache
}

// NewMySQLCache connects to MySQL and creates the cache table if needed.
// Timestamps are parsed and stored in UTC regardless of the DSN.
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid MySQL DSN: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	db, err := sqlx.Connect("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	base, err := newSQLCache(db, "mysql", mysqlSchema, mysqlUpsert, logger, cleanupFreq)
	if err != nil {
		return nil, err
	}

	return &MySQLCache{sqlCache: base}, nil
}
