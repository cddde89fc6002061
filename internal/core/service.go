package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SenderPolicy decides whether a sender bypasses the classifier
type SenderPolicy interface {
	IsWhitelisted(sender string) bool
}

// ServiceOptions tunes the detection service
type ServiceOptions struct {
	CacheEnabled bool
	CacheTTL     time.Duration
	// Threshold re-derives the phishing verdict from the confidence when > 0
	Threshold float64
	// Workers bounds batch parallelism; values below 2 mean sequential
	Workers int

	Clock func() time.Time
	NewID func() string
}

// DetectionService runs the classifier and the rule engine for each email
type DetectionService struct {
	classifier Classifier
	cache      VerdictCache
	senders    SenderPolicy
	logger     *zap.Logger
	opts       ServiceOptions
}

// NewDetectionService creates a new detection service. cache and senders may be nil.
func NewDetectionService(
	classifier Classifier,
	cache VerdictCache,
	senders SenderPolicy,
	logger *zap.Logger,
	opts ServiceOptions,
) *DetectionService {
	if opts.Clock == nil {
		opts.Clock = utcNow
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if cache == nil {
		opts.CacheEnabled = false
	}

	return &DetectionService{
		classifier: classifier,
		cache:      cache,
		senders:    senders,
		logger:     logger,
		opts:       opts,
	}
}

// Fingerprint returns the verdict cache key of an email
func Fingerprint(email *EmailRecord) string {
	h := sha256.New()
	h.Write([]byte(email.Sender))
	h.Write([]byte{0})
	h.Write([]byte(email.Subject))
	h.Write([]byte{0})
	h.Write([]byte(email.Body))
	return hex.EncodeToString(h.Sum(nil))
}

// AnalyzeEmail produces the full analysis report of an email
func (s *DetectionService) AnalyzeEmail(ctx context.Context, email *EmailRecord) (*AnalysisResult, error) {
	if email.LoadErr != nil {
		return nil, fmt.Errorf("invalid email record %q: %w", email.ID, email.LoadErr)
	}

	verdict, err := s.verdict(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to classify email %q: %w", email.ID, err)
	}

	analysis := Analyze(email, verdict.IsPhishing, verdict.Confidence)

	s.logger.Debug("Email analyzed",
		zap.String("email_id", email.ID),
		zap.Bool("is_phishing", verdict.IsPhishing),
		zap.Float64("confidence", verdict.Confidence),
		zap.Stringer("threat_level", analysis.ThreatLevel),
		zap.Int("risk_score", analysis.RiskScore),
		zap.Int("red_flags", len(analysis.RedFlags)),
		zap.String("source", verdict.Source))

	return BuildReport(email, verdict, analysis, AnalysisMetadata{
		AnalysisID:    s.opts.NewID(),
		AnalyzedAt:    s.opts.Clock(),
		ModelUsed:     verdict.ModelUsed,
		VerdictSource: verdict.Source,
	}), nil
}

// AnalyzeBatch analyzes every email. Failures become FAILED entries and never stop
// the batch; entries keep the input order.
func (s *DetectionService) AnalyzeBatch(ctx context.Context, emails []EmailRecord) *BatchReport {
	entries := make([]BatchEntry, len(emails))

	var g errgroup.Group
	g.SetLimit(max(1, s.opts.Workers))

	for i := range emails {
		email := &emails[i]
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("Recovered from panic while analyzing email",
						zap.String("email_id", email.ID),
						zap.Any("panic", r))
					entries[i] = FailedEntry(email.ID, fmt.Errorf("panic while analyzing email: %v", r))
				}
			}()

			result, err := s.AnalyzeEmail(ctx, email)
			if err != nil {
				s.logger.Warn("Email analysis failed",
					zap.String("email_id", email.ID),
					zap.Error(err))
				entries[i] = FailedEntry(email.ID, err)
				return nil
			}
			entries[i] = BatchEntry{Result: result}
			return nil
		})
	}
	_ = g.Wait()

	report := &BatchReport{
		Summary:    Summarize(entries),
		Results:    entries,
		AnalyzedAt: s.opts.Clock(),
	}

	s.logger.Info("Batch analyzed",
		zap.Int("total", report.Summary.TotalEmails),
		zap.Int("failed", report.Summary.Failed),
		zap.Int("phishing", report.Summary.PhishingDetected))

	return report
}

// verdict resolves the model verdict through the whitelist, the cache and the classifier
func (s *DetectionService) verdict(ctx context.Context, email *EmailRecord) (*Verdict, error) {
	if s.senders != nil && s.senders.IsWhitelisted(email.Sender) {
		s.logger.Info("Skipping classifier for whitelisted sender",
			zap.String("sender", email.Sender),
			zap.String("action", "whitelist_bypass"))

		return &Verdict{
			IsPhishing:  false,
			Confidence:  0,
			Explanation: "Sender domain is whitelisted",
			ModelUsed:   SourceWhitelist,
			Source:      SourceWhitelist,
		}, nil
	}

	key := Fingerprint(email)

	if s.opts.CacheEnabled {
		if entry, err := s.cache.Get(ctx, key); err == nil {
			s.logger.Debug("Cache hit for email", zap.String("email_id", email.ID))
			return &Verdict{
				IsPhishing:  entry.IsPhishing,
				Confidence:  entry.Confidence,
				Explanation: entry.Explanation,
				ModelUsed:   entry.ModelUsed,
				Source:      SourceCache,
			}, nil
		}
	}

	verdict, err := s.classifier.Classify(ctx, email)
	if err != nil {
		return nil, err
	}
	if verdict == nil {
		return nil, fmt.Errorf("classifier returned no verdict for email %q", email.ID)
	}

	verdict.Confidence = clamp01(verdict.Confidence)
	if s.opts.Threshold > 0 {
		verdict.IsPhishing = verdict.Confidence >= s.opts.Threshold
	}
	verdict.Source = SourceModel

	if s.opts.CacheEnabled {
		now := s.opts.Clock()
		entry := &VerdictEntry{
			Key:         key,
			IsPhishing:  verdict.IsPhishing,
			Confidence:  verdict.Confidence,
			Explanation: verdict.Explanation,
			ModelUsed:   verdict.ModelUsed,
			LastSeen:    now,
			ExpiresAt:   now.Add(s.opts.CacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	return verdict, nil
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
