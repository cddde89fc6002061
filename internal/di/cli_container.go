package di

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/phishing-detector/internal/config"
	"github.com/mikey/phishing-detector/internal/core"
	"github.com/mikey/phishing-detector/internal/factory"
	"github.com/mikey/phishing-detector/internal/logging"
	"github.com/mikey/phishing-detector/internal/ports"
	"github.com/mikey/phishing-detector/internal/whitelist"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Classifier flags
	Provider    string
	MaxTokens   int
	Temperature float64
	TopP        float64
	MaxBodySize int

	// Bedrock flags
	BedrockRegion  string
	BedrockModelID string

	// Gemini flags
	GeminiAPIKey    string
	GeminiModelName string

	// OpenAI flags
	OpenAIAPIKey    string
	OpenAIModelName string
	OpenAIBaseURL   string

	// Static flags
	StaticPhishing   bool
	StaticConfidence float64

	// Detection flags
	Threshold float64
	Workers   int
	Whitelist string

	// Input and output flags
	InputFile  string
	OutputFile string
	Pretty     bool
	EMLFile    string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses the process command line
func ParseFlags() *CLIFlags {
	flags, _ := ParseFlagsFrom(flag.CommandLine, os.Args[1:])
	return flags
}

// ParseFlagsFrom registers the CLI flags on fs and parses args
func ParseFlagsFrom(fs *flag.FlagSet, args []string) (*CLIFlags, error) {
	flags := &CLIFlags{}

	// Classifier flags
	fs.StringVar(&flags.Provider, "provider", "bedrock", "Classifier provider (bedrock, gemini, openai, static)")
	fs.IntVar(&flags.MaxTokens, "max-tokens", 1000, "Maximum tokens for LLM response")
	fs.Float64Var(&flags.Temperature, "temperature", 0.1, "Temperature for LLM generation")
	fs.Float64Var(&flags.TopP, "top-p", 0.9, "Top-p for LLM generation")
	fs.IntVar(&flags.MaxBodySize, "max-body-size", 4096, "Maximum email body size to send to LLM")

	// Bedrock flags
	fs.StringVar(&flags.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	fs.StringVar(&flags.BedrockModelID, "bedrock-model", "anthropic.claude-3-haiku-20240307-v1:0", "Bedrock model ID")

	// Gemini flags
	fs.StringVar(&flags.GeminiAPIKey, "gemini-api-key", "", "API key for Google Gemini")
	fs.StringVar(&flags.GeminiModelName, "gemini-model", "gemini-1.5-flash", "Gemini model name")

	// OpenAI flags
	fs.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "API key for OpenAI")
	fs.StringVar(&flags.OpenAIModelName, "openai-model", "gpt-4o-mini", "OpenAI model name")
	fs.StringVar(&flags.OpenAIBaseURL, "openai-base-url", "", "OpenAI-compatible API base URL")

	// Static flags
	fs.BoolVar(&flags.StaticPhishing, "static-phishing", false, "Verdict of the static classifier")
	fs.Float64Var(&flags.StaticConfidence, "static-confidence", 0, "Confidence of the static classifier")

	// Detection flags
	fs.Float64Var(&flags.Threshold, "threshold", 0.5, "Confidence threshold for a phishing verdict")
	fs.IntVar(&flags.Workers, "workers", 1, "Number of emails analyzed concurrently")
	fs.StringVar(&flags.Whitelist, "whitelist", "", "Comma-separated trusted sender domains")

	// Input and output flags
	fs.StringVar(&flags.InputFile, "input", "", "JSON file of email records (use stdin if not specified)")
	fs.StringVar(&flags.OutputFile, "output", "", "Output file for the batch report (stdout if not specified)")
	fs.BoolVar(&flags.Pretty, "pretty", false, "Pretty-print the JSON report")
	fs.StringVar(&flags.EMLFile, "eml", "", "Analyze a single RFC 5322 message file instead of a batch")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	if err := fs.Parse(args); err != nil {
		return flags, err
	}
	return flags, nil
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			cfg.GetViper().Set("server.filter_type", "cli")
			cfg.GetViper().Set("cli.verbose", flags.Verbose)
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	if err := provideDetection(container); err != nil {
		return nil, err
	}

	// Register trusted sender domains
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.SenderPolicy {
		return whitelist.NewChecker(cfg.GetDetection().WhitelistedDomains, logger)
	}); err != nil {
		return nil, err
	}

	// Register detection service without a verdict cache
	if err := container.Provide(func(
		classifier core.Classifier,
		senders core.SenderPolicy,
		cfg *config.Config,
		logger *zap.Logger,
	) *core.DetectionService {
		detection := cfg.GetDetection()
		return core.NewDetectionService(classifier, nil, senders, logger, core.ServiceOptions{
			Threshold: detection.Threshold,
			Workers:   detection.Workers,
		})
	}); err != nil {
		return nil, err
	}

	// Register email filter
	if err := container.Provide(func(f *factory.FilterFactory) (ports.EmailFilter, error) {
		return f.CreateEmailFilter()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	v.Set("server.filter_type", "cli")
	v.Set("cli.verbose", flags.Verbose)
	v.Set("cache.enabled", false)

	v.Set("classifier.provider", flags.Provider)

	switch flags.Provider {
	case "bedrock":
		v.Set("bedrock.region", flags.BedrockRegion)
		v.Set("bedrock.model_id", flags.BedrockModelID)
		setModelLimits(v.Set, "bedrock", flags)
	case "gemini":
		v.Set("gemini.api_key", flags.GeminiAPIKey)
		v.Set("gemini.model_name", flags.GeminiModelName)
		setModelLimits(v.Set, "gemini", flags)
	case "openai":
		v.Set("openai.api_key", flags.OpenAIAPIKey)
		v.Set("openai.model_name", flags.OpenAIModelName)
		v.Set("openai.base_url", flags.OpenAIBaseURL)
		setModelLimits(v.Set, "openai", flags)
	case "static":
		v.Set("static.is_phishing", flags.StaticPhishing)
		v.Set("static.confidence", flags.StaticConfidence)
	}

	v.Set("detection.threshold", flags.Threshold)
	v.Set("detection.workers", flags.Workers)
	v.Set("detection.whitelisted_domains", splitList(flags.Whitelist))

	return config.NewFromViper(v)
}

func setModelLimits(set func(string, any), provider string, flags *CLIFlags) {
	set(fmt.Sprintf("%s.max_tokens", provider), flags.MaxTokens)
	set(fmt.Sprintf("%s.temperature", provider), flags.Temperature)
	set(fmt.Sprintf("%s.top_p", provider), flags.TopP)
	set(fmt.Sprintf("%s.max_body_size", provider), flags.MaxBodySize)
}

func splitList(s string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
