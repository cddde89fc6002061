package core

import "math"

// ThreatLevel derives the overall threat level from the model verdict and red flags
func ThreatLevel(isPhishing bool, confidence float64, flags []RedFlag) Level {
	if !isPhishing {
		return LevelSafe
	}

	switch {
	case confidence >= criticalConfidence:
		if hasSeverity(flags, LevelCritical) {
			return LevelCritical
		}
		return LevelHigh
	case confidence >= mediumConfidence:
		return LevelMedium
	default:
		return LevelLow
	}
}

// RiskScore combines the model confidence with per-flag points, capped at 100.
// It is 0 for emails the model does not consider phishing.
func RiskScore(isPhishing bool, confidence float64, flags []RedFlag) int {
	if !isPhishing {
		return 0
	}

	total := confidence * confidenceWeight
	for _, f := range flags {
		total += float64(flagPoints(f.Severity))
	}

	return int(math.Floor(math.Min(maxRiskScore, total)))
}

// Recommendations builds the action list for a threat level
func Recommendations(threat Level, flags []RedFlag) []Recommendation {
	if threat == LevelSafe {
		return []Recommendation{{
			Priority:    PriorityInfo,
			Action:      "Email appears legitimate",
			Description: "No immediate action required, but always verify sender before clicking links",
		}}
	}

	recs := make([]Recommendation, 0, 5)

	if threat == LevelCritical || threat == LevelHigh {
		recs = append(recs,
			Recommendation{
				Priority:    PriorityCritical,
				Action:      "DELETE IMMEDIATELY",
				Description: "This email contains dangerous elements. Do not interact with it.",
			},
			Recommendation{
				Priority:    PriorityCritical,
				Action:      "DO NOT CLICK ANY LINKS",
				Description: "Links in this email may lead to malware or credential theft",
			},
		)
	}

	if hasCategory(flags, CategoryMalware) {
		recs = append(recs, Recommendation{
			Priority:    PriorityCritical,
			Action:      "MALWARE DETECTED",
			Description: "This email contains links to potentially malicious files",
		})
	}

	recs = append(recs,
		Recommendation{
			Priority:    PriorityHigh,
			Action:      "Report as phishing/spam",
			Description: "Help improve email security by reporting this email",
		},
		Recommendation{
			Priority:    PriorityMedium,
			Action:      "Block sender",
			Description: "Prevent future emails from this sender",
		},
	)

	return recs
}

func hasSeverity(flags []RedFlag, severity Level) bool {
	for _, f := range flags {
		if f.Severity == severity {
			return true
		}
	}
	return false
}

func hasCategory(flags []RedFlag, category Category) bool {
	for _, f := range flags {
		if f.Category == category {
			return true
		}
	}
	return false
}
