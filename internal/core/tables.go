package core

import "regexp"

var (
	urlPattern = regexp.MustCompile(`https?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*(),]|%[0-9a-fA-F]{2})+`)
	ipPattern  = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
)

// phishingKeywords drive the URL and text keyword features
var phishingKeywords = []string{
	"login", "reset", "verify", "confirm", "account", "suspended",
	"urgent", "click", "update", "password", "security", "expire",
}

var moneySymbols = []string{"$", "€", "₹", "£", "¥"}

// urlRule is one row of the additive URL scoring table
type urlRule struct {
	factor   string
	score    int
	patterns []string
}

// URL rules are evaluated in declaration order; every matching rule adds its score.
// The IP literal and length rules carry no patterns and are matched by ScoreURL.
var (
	dangerousExtensionRule = urlRule{
		factor:   "Dangerous file extension detected",
		score:    40,
		patterns: []string{".sh", ".exe", ".bat", ".cmd", ".scr", ".vbs", ".ps1"},
	}
	ipLiteralRule = urlRule{
		factor: "Contains IP address",
		score:  30,
	}
	suspiciousTLDRule = urlRule{
		factor:   "Suspicious top-level domain",
		score:    20,
		patterns: []string{".tk", ".ml", ".ga", ".cf", ".gq", ".xyz", ".online", ".top", ".club"},
	}
	urlKeywordRule = urlRule{
		factor:   "Contains phishing keywords",
		score:    15,
		patterns: []string{"login", "verify", "account", "secure", "update", "confirm", "suspend"},
	}
	shortenerRule = urlRule{
		factor:   "URL shortener detected",
		score:    10,
		patterns: []string{"bit.ly", "tinyurl", "goo.gl", "t.co", "ow.ly", "is.gd"},
	}
	longURLRule = urlRule{
		factor: "Unusually long URL",
		score:  10,
	}
)

const maxURLLength = 100

// riskBands maps a URL score to a level; the first band whose floor is reached wins
var riskBands = []struct {
	floor int
	level Level
}{
	{50, LevelCritical},
	{30, LevelHigh},
	{15, LevelMedium},
	{1, LevelLow},
}

// malwareExtensions raise a MALWARE flag when found anywhere in the body
var malwareExtensions = []string{".sh", ".exe", ".bat", ".scr", ".vbs"}

// Red-flag thresholds
const (
	exclamationLimit    = 3
	uppercaseRatioLimit = 0.3
	urlPreviewLength    = 50
)

// Threat-level and risk-score constants
const (
	criticalConfidence = 0.95
	mediumConfidence   = 0.75
	confidenceWeight   = 60.0
	maxRiskScore       = 100
)

// flagPoints is the risk-score contribution of a red flag by severity
func flagPoints(severity Level) int {
	switch severity {
	case LevelCritical:
		return 15
	case LevelHigh:
		return 10
	default:
		return 5
	}
}
