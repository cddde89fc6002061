package filter

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/phishing-detector/internal/core"
)

const bodyPreviewLength = 500

// CliFilter prints a human-readable analysis of single emails
type CliFilter struct {
	service *core.DetectionService
	logger  *zap.Logger
	verbose bool
	out     io.Writer
}

// NewCliFilter creates a new CLI filter writing to out, or stdout when out is nil
func NewCliFilter(service *core.DetectionService, logger *zap.Logger, verbose bool, out io.Writer) *CliFilter {
	if out == nil {
		out = os.Stdout
	}
	return &CliFilter{
		service: service,
		logger:  logger,
		verbose: verbose,
		out:     out,
	}
}

// ProcessEmail analyzes an email and displays the report
func (f *CliFilter) ProcessEmail(ctx context.Context, email *core.EmailRecord) (*core.AnalysisResult, error) {
	f.logger.Debug("Processing email", zap.String("sender", email.Sender))

	fmt.Fprintf(f.out, "\n=== Email Summary ===\n")
	fmt.Fprintf(f.out, "ID: %s\n", email.ID)
	fmt.Fprintf(f.out, "From: %s\n", email.Sender)
	fmt.Fprintf(f.out, "Subject: %s\n", email.Subject)
	fmt.Fprintf(f.out, "Body length: %d characters\n", len([]rune(email.Body)))
	fmt.Fprintf(f.out, "URLs: %d\n", len(email.URLs))

	if f.verbose {
		preview := []rune(email.Body)
		if len(preview) > bodyPreviewLength {
			preview = append(preview[:bodyPreviewLength], []rune("...")...)
		}
		fmt.Fprintf(f.out, "\nBody preview:\n%s\n", string(preview))
	}

	startTime := time.Now()
	result, err := f.service.AnalyzeEmail(ctx, email)
	if err != nil {
		f.logger.Error("Failed to analyze email", zap.Error(err))
		fmt.Fprintf(f.out, "Error: %v\n", err)
		return nil, err
	}
	duration := time.Since(startTime)

	p := result.Prediction
	fmt.Fprintf(f.out, "\n=== Results ===\n")
	fmt.Fprintf(f.out, "Verdict: %s\n", p.Verdict)
	fmt.Fprintf(f.out, "Confidence: %.2f%%\n", p.ConfidencePercentage)
	fmt.Fprintf(f.out, "Threat level: %s\n", p.ThreatLevel)
	fmt.Fprintf(f.out, "Risk score: %d/100\n", p.RiskScore)
	fmt.Fprintf(f.out, "Model used: %s (%s)\n", result.AnalysisMetadata.ModelUsed, result.AnalysisMetadata.VerdictSource)

	if flags := result.SecurityIndicators.RedFlags; len(flags) > 0 {
		fmt.Fprintf(f.out, "\n=== Red Flags (%d) ===\n", len(flags))
		for _, flag := range flags {
			fmt.Fprintf(f.out, "[%s] %s: %s\n", flag.Severity, flag.Flag, flag.Description)
		}
	}

	if suspicious := suspiciousURLs(result.URLAnalysis.URLsFound); len(suspicious) > 0 {
		fmt.Fprintf(f.out, "\n=== Suspicious URLs ===\n")
		for _, a := range suspicious {
			fmt.Fprintf(f.out, "[%s %d] %s (%s)\n", a.RiskLevel, a.RiskScore, a.URL, strings.Join(a.RiskFactors, ", "))
		}
	}

	fmt.Fprintf(f.out, "\n=== Recommendations ===\n")
	for _, rec := range result.Recommendations {
		fmt.Fprintf(f.out, "[%s] %s: %s\n", rec.Priority, rec.Action, rec.Description)
	}

	if f.verbose {
		fmt.Fprintf(f.out, "\nProcessing time: %v\n", duration)
	}

	return result, nil
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}

func suspiciousURLs(assessments []core.URLRiskAssessment) []core.URLRiskAssessment {
	var out []core.URLRiskAssessment
	for _, a := range assessments {
		if a.RiskLevel >= core.LevelMedium {
			out = append(out, a)
		}
	}
	return out
}
