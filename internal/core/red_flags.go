package core

import (
	"fmt"
	"strings"
)

// DetectRedFlags aggregates features and URL assessments into red flags.
// The evaluation order is fixed and is the output order.
func DetectRedFlags(body string, features FeatureSet, assessments []URLRiskAssessment) []RedFlag {
	flags := make([]RedFlag, 0)
	add := func(category Category, severity Level, flag, description string) {
		flags = append(flags, RedFlag{
			Category:    category,
			Severity:    severity,
			Flag:        flag,
			Description: description,
		})
	}

	// URL features
	if features.URL.HasIP {
		add(CategoryURL, LevelCritical, "IP address in URL", "URLs with IP addresses are highly suspicious")
	}
	if features.URL.HasPhishingKeywordsInURL {
		add(CategoryURL, LevelHigh, "Phishing keywords in URL", "URL contains common phishing terms")
	}

	// Malicious file references, one flag per matching extension
	lowerBody := strings.ToLower(body)
	for _, ext := range malwareExtensions {
		if strings.Contains(lowerBody, ext) {
			add(CategoryMalware, LevelCritical,
				fmt.Sprintf("Malicious file extension: %s", ext),
				fmt.Sprintf("%s files can execute malicious code", ext))
		}
	}

	// Sender
	if features.Sender.SenderDomainMismatch {
		add(CategorySender, LevelHigh, "Domain mismatch", "Sender domain does not match URLs in email")
	}

	// Content
	if features.Text.NumExclamation > exclamationLimit {
		add(CategoryContent, LevelMedium, "Excessive exclamation marks",
			fmt.Sprintf("%d exclamation marks detected", features.Text.NumExclamation))
	}
	if features.Text.RatioUppercase > uppercaseRatioLimit {
		add(CategoryContent, LevelMedium, "Excessive uppercase",
			fmt.Sprintf("%.1f%% uppercase text", features.Text.RatioUppercase*100))
	}
	if features.Text.HasPhishingKeywords {
		add(CategoryContent, LevelHigh, "Phishing keywords detected", "Contains common phishing terminology")
	}

	// Dangerous URLs, in input order
	for _, a := range assessments {
		if a.RiskLevel == LevelHigh || a.RiskLevel == LevelCritical {
			add(CategoryURL, a.RiskLevel, "Dangerous URL detected",
				fmt.Sprintf("%s... - %s", truncateRunes(a.URL, urlPreviewLength), strings.Join(a.RiskFactors, ", ")))
		}
	}

	return flags
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
