package config

import (
	"fmt"
	"time"

	"github.com/mikey/phishing-detector/internal/core"
)

// ClassifierConfig selects the classifier provider
type ClassifierConfig struct {
	Provider string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// StaticConfig is the verdict returned by the static classifier
type StaticConfig struct {
	IsPhishing  bool
	Confidence  float64
	Explanation string
}

// DetectionConfig tunes the detection service
type DetectionConfig struct {
	Threshold          float64
	Workers            int
	WhitelistedDomains []string
}

// CacheConfig represents the verdict cache configuration
type CacheConfig struct {
	Enabled          bool
	Type             string
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
	PostgresDSN      string
}

// HeaderConfig names the headers added by the content filter
type HeaderConfig struct {
	Verdict     string
	ThreatLevel string
	RiskScore   string
	RedFlags    string
	Error       string
}

// PostfixConfig is where filtered mail is re-injected
type PostfixConfig struct {
	Address string
	Port    int
	Enabled bool
}

// ServerConfig represents the content filter configuration
type ServerConfig struct {
	FilterType      string
	ListenAddress   string
	AnalysisTimeout time.Duration
	BlockEnabled    bool
	BlockLevel      core.Level
	ModifySubject   bool
	SubjectPrefix   string
	Headers         HeaderConfig
	Postfix         PostfixConfig
}

// GetClassifier returns the classifier configuration
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		Provider: c.GetString("classifier.provider"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		BaseURL:     c.GetString("openai.base_url"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetStatic returns the static classifier configuration
func (c *Config) GetStatic() StaticConfig {
	return StaticConfig{
		IsPhishing:  c.GetBool("static.is_phishing"),
		Confidence:  c.GetFloat64("static.confidence"),
		Explanation: c.GetString("static.explanation"),
	}
}

// GetDetection returns the detection service configuration
func (c *Config) GetDetection() DetectionConfig {
	return DetectionConfig{
		Threshold:          c.GetFloat64("detection.threshold"),
		Workers:            c.GetInt("detection.workers"),
		WhitelistedDomains: c.GetStringSlice("detection.whitelisted_domains"),
	}
}

// GetCache returns the verdict cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, err
	}
	cleanup, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, err
	}

	return CacheConfig{
		Enabled:          c.GetBool("cache.enabled"),
		Type:             c.GetString("cache.type"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
		PostgresDSN:      c.GetString("cache.postgres_dsn"),
	}, nil
}

// GetServer returns the content filter configuration
func (c *Config) GetServer() (ServerConfig, error) {
	timeout, err := c.GetDuration("server.analysis_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	blockLevel, err := core.ParseLevel(c.GetString("server.block_level"))
	if err != nil {
		return ServerConfig{}, fmt.Errorf("invalid server.block_level: %w", err)
	}

	return ServerConfig{
		FilterType:      c.GetString("server.filter_type"),
		ListenAddress:   c.GetString("server.listen_address"),
		AnalysisTimeout: timeout,
		BlockEnabled:    c.GetBool("server.block_enabled"),
		BlockLevel:      blockLevel,
		ModifySubject:   c.GetBool("server.modify_subject"),
		SubjectPrefix:   c.GetString("server.subject_prefix"),
		Headers: HeaderConfig{
			Verdict:     c.GetString("server.headers.verdict"),
			ThreatLevel: c.GetString("server.headers.threat_level"),
			RiskScore:   c.GetString("server.headers.risk_score"),
			RedFlags:    c.GetString("server.headers.red_flags"),
			Error:       c.GetString("server.headers.error"),
		},
		Postfix: PostfixConfig{
			Address: c.GetString("server.postfix.address"),
			Port:    c.GetInt("server.postfix.port"),
			Enabled: c.GetBool("server.postfix.enabled"),
		},
	}, nil
}
