package core

import (
	"strings"
	"unicode/utf8"
)

// ScoreURL applies the additive URL rule table and returns the total score with the
// triggered factors in table order
func ScoreURL(rawURL string) (int, []string) {
	lower := strings.ToLower(rawURL)
	score := 0
	factors := make([]string, 0)

	apply := func(rule urlRule, matched bool) {
		if matched {
			score += rule.score
			factors = append(factors, rule.factor)
		}
	}

	apply(dangerousExtensionRule, containsAny(lower, dangerousExtensionRule.patterns))
	apply(ipLiteralRule, ipPattern.MatchString(rawURL))
	apply(suspiciousTLDRule, containsAny(lower, suspiciousTLDRule.patterns))
	apply(urlKeywordRule, containsAny(lower, urlKeywordRule.patterns))
	apply(shortenerRule, containsAny(lower, shortenerRule.patterns))
	apply(longURLRule, utf8.RuneCountInString(rawURL) > maxURLLength)

	return score, factors
}

// RiskLevelForScore maps a URL score to its risk level
func RiskLevelForScore(score int) Level {
	for _, band := range riskBands {
		if score >= band.floor {
			return band.level
		}
	}
	return LevelSafe
}

// AssessURL scores a single URL
func AssessURL(rawURL string) URLRiskAssessment {
	score, factors := ScoreURL(rawURL)
	return URLRiskAssessment{
		URL:         rawURL,
		RiskLevel:   RiskLevelForScore(score),
		RiskScore:   score,
		RiskFactors: factors,
	}
}

// AssessURLs scores every URL, preserving input order
func AssessURLs(urls []string) []URLRiskAssessment {
	assessments := make([]URLRiskAssessment, 0, len(urls))
	for _, u := range urls {
		assessments = append(assessments, AssessURL(u))
	}
	return assessments
}
