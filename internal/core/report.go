package core

import (
	"math"
	"time"
)

// Verdict labels
const (
	VerdictPhishing   = "PHISHING"
	VerdictLegitimate = "LEGITIMATE"
)

// Analysis is the rule-engine output for one email, before it is shaped into a report
type Analysis struct {
	Features        FeatureSet
	URLAssessments  []URLRiskAssessment
	RedFlags        []RedFlag
	ThreatLevel     Level
	RiskScore       int
	Recommendations []Recommendation
}

// Analyze runs the rule engine over an email and an external verdict. It is a pure
// function of its inputs.
func Analyze(email *EmailRecord, isPhishing bool, confidence float64) Analysis {
	features := ExtractFeatures(email.Subject, email.Body, email.Sender)
	assessments := AssessURLs(email.URLs)
	flags := DetectRedFlags(email.Body, features, assessments)
	threat := ThreatLevel(isPhishing, confidence, flags)

	return Analysis{
		Features:        features,
		URLAssessments:  assessments,
		RedFlags:        flags,
		ThreatLevel:     threat,
		RiskScore:       RiskScore(isPhishing, confidence, flags),
		Recommendations: Recommendations(threat, flags),
	}
}

// BuildReport assembles the analysis of an email into an AnalysisResult
func BuildReport(email *EmailRecord, verdict *Verdict, analysis Analysis, meta AnalysisMetadata) *AnalysisResult {
	label := VerdictLegitimate
	if verdict.IsPhishing {
		label = VerdictPhishing
	}

	totalURLs := email.URLCount
	if totalURLs == 0 {
		totalURLs = len(email.URLs)
	}

	suspicious := false
	for _, a := range analysis.URLAssessments {
		if a.RiskLevel == LevelHigh || a.RiskLevel == LevelCritical {
			suspicious = true
			break
		}
	}

	f := analysis.Features

	return &AnalysisResult{
		EmailID:      email.ID,
		Sender:       email.Sender,
		SenderDomain: email.SenderDomain,
		Subject:      email.Subject,
		DateReceived: email.DateReceived,
		Prediction: Prediction{
			IsPhishing:           verdict.IsPhishing,
			Confidence:           roundTo(verdict.Confidence, 4),
			ConfidencePercentage: roundTo(verdict.Confidence*100, 2),
			ThreatLevel:          analysis.ThreatLevel,
			Verdict:              label,
			RiskScore:            analysis.RiskScore,
		},
		URLAnalysis: URLAnalysis{
			TotalURLs:         totalURLs,
			URLsFound:         analysis.URLAssessments,
			HasSuspiciousURLs: suspicious,
			URLFeatures: URLFeatureSummary{
				NumURLs:             f.URL.NumURLs,
				NumUniqueDomains:    f.URL.NumUniqueDomains,
				HasIPAddress:        f.URL.HasIP,
				HasPhishingKeywords: f.URL.HasPhishingKeywordsInURL,
				AvgURLLength:        roundTo(f.URL.AvgURLLength, 2),
			},
		},
		ContentAnalysis: ContentAnalysis{
			TextFeatures: TextFeatureSummary{
				SubjectLength:       f.Text.SubjectLen,
				BodyLength:          f.Text.BodyLen,
				UppercaseRatio:      roundTo(f.Text.RatioUppercase, 4),
				DigitCount:          f.Text.NumDigits,
				ExclamationCount:    f.Text.NumExclamation,
				QuestionCount:       f.Text.NumQuestion,
				HasMoneySymbols:     f.Text.HasMoneySymbol,
				HasPhishingKeywords: f.Text.HasPhishingKeywords,
			},
			SenderFeatures: SenderFeatureSummary{
				SenderLength:     f.Sender.SenderLength,
				SenderHasNumbers: f.Sender.SenderHasNumbers,
				DomainMismatch:   f.Sender.SenderDomainMismatch,
			},
		},
		SecurityIndicators: SecurityIndicators{
			RedFlags:     analysis.RedFlags,
			RedFlagCount: len(analysis.RedFlags),
		},
		Recommendations:  analysis.Recommendations,
		AnalysisMetadata: meta,
		Features:         f,
	}
}

// roundTo rounds half to even to the given number of decimal places
func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.RoundToEven(v*scale) / scale
}

// utcNow is the default clock
func utcNow() time.Time {
	return time.Now().UTC()
}
