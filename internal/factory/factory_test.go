package factory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/phishing-detector/internal/adapters/cache"
	"github.com/mikey/phishing-detector/internal/adapters/filter"
	"github.com/mikey/phishing-detector/internal/adapters/openai"
	"github.com/mikey/phishing-detector/internal/adapters/static"
	"github.com/mikey/phishing-detector/internal/config"
	"github.com/mikey/phishing-detector/internal/core"
	"github.com/mikey/phishing-detector/internal/utils"
)

func newConfig(values map[string]any) *config.Config {
	v := config.NewEmptyViper()
	for k, val := range values {
		v.Set(k, val)
	}
	return config.NewFromViper(v)
}

func TestClassifierFactory(t *testing.T) {
	tp := utils.NewTextProcessor(zap.NewNop())

	t.Run("static", func(t *testing.T) {
		cfg := newConfig(map[string]any{
			"classifier.provider": "static",
			"static.is_phishing":  true,
			"static.confidence":   0.9,
		})
		classifier, err := NewClassifierFactory(cfg, zap.NewNop(), tp).CreateClassifier()
		require.NoError(t, err)
		require.IsType(t, &static.Classifier{}, classifier)

		verdict, err := classifier.Classify(context.Background(), &core.EmailRecord{})
		require.NoError(t, err)
		assert.True(t, verdict.IsPhishing)
		assert.Equal(t, 0.9, verdict.Confidence)
	})

	t.Run("openai", func(t *testing.T) {
		cfg := newConfig(map[string]any{
			"classifier.provider": "openai",
			"openai.api_key":      "sk-test",
			"openai.base_url":     "http://localhost:11434/v1",
		})
		classifier, err := NewClassifierFactory(cfg, zap.NewNop(), tp).CreateClassifier()
		require.NoError(t, err)
		assert.IsType(t, &openai.Classifier{}, classifier)
	})

	errorCases := []struct {
		name   string
		values map[string]any
	}{
		{"unknown provider", map[string]any{"classifier.provider": "oracle"}},
		{"openai without key", map[string]any{"classifier.provider": "openai"}},
		{"gemini without key", map[string]any{"classifier.provider": "gemini"}},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewClassifierFactory(newConfig(tc.values), zap.NewNop(), tp).CreateClassifier()
			assert.Error(t, err)
		})
	}
}

func TestCacheFactory(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		c, err := NewCacheFactory(newConfig(nil), zap.NewNop()).CreateCache()
		require.NoError(t, err)
		require.IsType(t, &cache.MemoryCache{}, c)
		c.(*cache.MemoryCache).Stop()
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := newConfig(map[string]any{
			"cache.type":        "sqlite",
			"cache.sqlite_path": filepath.Join(t.TempDir(), "nested", "cache.db"),
		})
		c, err := NewCacheFactory(cfg, zap.NewNop()).CreateCache()
		require.NoError(t, err)
		require.IsType(t, &cache.SQLiteCache{}, c)
		c.(*cache.SQLiteCache).Stop()
	})

	t.Run("disabled", func(t *testing.T) {
		c, err := NewCacheFactory(newConfig(map[string]any{"cache.enabled": false}), zap.NewNop()).CreateCache()
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewCacheFactory(newConfig(map[string]any{"cache.type": "redis"}), zap.NewNop()).CreateCache()
		assert.Error(t, err)
	})

	t.Run("service options", func(t *testing.T) {
		cfg := newConfig(map[string]any{
			"cache.ttl":           "2h",
			"detection.threshold": 0.6,
			"detection.workers":   3,
		})
		opts, err := NewCacheFactory(cfg, zap.NewNop()).ServiceOptions()
		require.NoError(t, err)
		assert.True(t, opts.CacheEnabled)
		assert.Equal(t, 2*time.Hour, opts.CacheTTL)
		assert.Equal(t, 0.6, opts.Threshold)
		assert.Equal(t, 3, opts.Workers)
	})
}

func TestFilterFactory(t *testing.T) {
	service := core.NewDetectionService(static.NewClassifier(false, 0, ""), nil, nil, zap.NewNop(), core.ServiceOptions{})

	f, err := NewFilterFactory(newConfig(nil), zap.NewNop(), service).CreateEmailFilter()
	require.NoError(t, err)
	assert.IsType(t, &filter.PostfixFilter{}, f)

	f, err = NewFilterFactory(newConfig(map[string]any{"server.filter_type": "cli"}), zap.NewNop(), service).CreateEmailFilter()
	require.NoError(t, err)
	assert.IsType(t, &filter.CliFilter{}, f)

	_, err = NewFilterFactory(newConfig(map[string]any{"server.filter_type": "milter"}), zap.NewNop(), service).CreateEmailFilter()
	assert.Error(t, err)
}
