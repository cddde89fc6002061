package core

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by a VerdictCache when no live entry exists for a key
var ErrCacheMiss = errors.New("verdict cache miss")

// Classifier is the external phishing model. It is treated as an opaque oracle.
type Classifier interface {
	// Classify returns the model verdict for an email
	Classify(ctx context.Context, email *EmailRecord) (*Verdict, error)
}

// VerdictCache stores classifier verdicts keyed by email fingerprint
type VerdictCache interface {
	// Get retrieves a live entry, or ErrCacheMiss
	Get(ctx context.Context, key string) (*VerdictEntry, error)

	// Set stores an entry
	Set(ctx context.Context, entry *VerdictEntry) error

	// Delete removes an entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
