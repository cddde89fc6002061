package di

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/phishing-detector/internal/adapters/filter"
	"github.com/mikey/phishing-detector/internal/config"
	"github.com/mikey/phishing-detector/internal/core"
	"github.com/mikey/phishing-detector/internal/ports"
)

func TestParseFlagsFrom(t *testing.T) {
	fs := flag.NewFlagSet("phish-scan", flag.ContinueOnError)
	flags, err := ParseFlagsFrom(fs, []string{
		"-provider", "static",
		"-static-phishing",
		"-static-confidence", "0.8",
		"-input", "emails.json",
		"-pretty",
		"-workers", "4",
		"-whitelist", "example.com, trusted.org",
	})
	require.NoError(t, err)

	assert.Equal(t, "static", flags.Provider)
	assert.True(t, flags.StaticPhishing)
	assert.Equal(t, 0.8, flags.StaticConfidence)
	assert.Equal(t, "emails.json", flags.InputFile)
	assert.True(t, flags.Pretty)
	assert.Equal(t, 4, flags.Workers)
	assert.Equal(t, 0.5, flags.Threshold)
}

func TestCreateConfigFromFlags(t *testing.T) {
	cfg := createConfigFromFlags(&CLIFlags{
		Provider:      "openai",
		OpenAIAPIKey:  "sk-test",
		OpenAIBaseURL: "http://localhost:8080/v1",
		MaxTokens:     256,
		Threshold:     0.7,
		Workers:       2,
		Whitelist:     "example.com, ,trusted.org",
	})

	assert.Equal(t, "openai", cfg.GetClassifier().Provider)
	assert.Equal(t, "http://localhost:8080/v1", cfg.GetOpenAI().BaseURL)
	assert.Equal(t, 256, cfg.GetOpenAI().MaxTokens)
	assert.Equal(t, []string{"example.com", "trusted.org"}, cfg.GetDetection().WhitelistedDomains)
	assert.Equal(t, 2, cfg.GetDetection().Workers)
	assert.Equal(t, "cli", cfg.GetString("server.filter_type"))
}

func TestBuildCLIContainer(t *testing.T) {
	container, err := BuildCLIContainer(&CLIFlags{
		Provider:         "static",
		StaticPhishing:   true,
		StaticConfidence: 0.99,
		Threshold:        0.5,
		Workers:          1,
		Whitelist:        "example.com",
	})
	require.NoError(t, err)

	err = container.Invoke(func(service *core.DetectionService, emailFilter ports.EmailFilter) {
		assert.IsType(t, &filter.CliFilter{}, emailFilter)

		result, err := service.AnalyzeEmail(context.Background(), &core.EmailRecord{
			ID:     "msg-1",
			Sender: "alice@example.com",
		})
		require.NoError(t, err)
		assert.False(t, result.Prediction.IsPhishing)
		assert.Equal(t, core.SourceWhitelist, result.AnalysisMetadata.VerdictSource)

		result, err = service.AnalyzeEmail(context.Background(), &core.EmailRecord{
			ID:     "msg-2",
			Sender: "alerts@examp1e-bank.com",
		})
		require.NoError(t, err)
		assert.True(t, result.Prediction.IsPhishing)
	})
	require.NoError(t, err)
}

func TestBuildContainer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
classifier:
  provider: static
static:
  is_phishing: true
  confidence: 0.97
cache:
  type: memory
  cleanup_frequency: 0s
logging:
  level: error
`), 0o600))

	container, err := buildContainer(func() (*config.Config, error) {
		return config.NewFromFile(path)
	})
	require.NoError(t, err)

	err = container.Invoke(func(service *core.DetectionService, emailFilter ports.EmailFilter, cache core.VerdictCache) {
		assert.IsType(t, &filter.PostfixFilter{}, emailFilter)
		assert.NotNil(t, cache)

		email := &core.EmailRecord{ID: "msg-1", Sender: "alerts@examp1e-bank.com", Body: "Verify your account"}
		first, err := service.AnalyzeEmail(context.Background(), email)
		require.NoError(t, err)
		assert.Equal(t, core.SourceModel, first.AnalysisMetadata.VerdictSource)

		second, err := service.AnalyzeEmail(context.Background(), email)
		require.NoError(t, err)
		assert.Equal(t, core.SourceCache, second.AnalysisMetadata.VerdictSource)
		assert.Equal(t, first.Prediction, second.Prediction)
	})
	require.NoError(t, err)
}
