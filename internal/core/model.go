package core

import (
	"fmt"
	"strings"
	"time"
)

// Level is an ordered risk level shared by URL assessments, red flags and threat levels
type Level int

const (
	LevelSafe Level = iota
	LevelLow
	LevelMedium
	LevelHigh
	LevelCritical
)

var levelNames = [...]string{"SAFE", "LOW", "MEDIUM", "HIGH", "CRITICAL"}

// Levels lists every level in ascending order
var Levels = []Level{LevelSafe, LevelLow, LevelMedium, LevelHigh, LevelCritical}

// String returns the upper-case name of the level
func (l Level) String() string {
	if l < LevelSafe || l > LevelCritical {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// MarshalText implements encoding.TextMarshaler
func (l Level) MarshalText() ([]byte, error) {
	if l < LevelSafe || l > LevelCritical {
		return nil, fmt.Errorf("invalid level %d", int(l))
	}
	return []byte(levelNames[l]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLevel parses a level name, case-insensitively
func ParseLevel(s string) (Level, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return LevelSafe, fmt.Errorf("unknown level: %q", s)
}

// Category groups red flags by the part of the email they were found in
type Category string

const (
	CategoryURL     Category = "URL"
	CategoryMalware Category = "MALWARE"
	CategorySender  Category = "SENDER"
	CategoryContent Category = "CONTENT"
)

// Priority orders recommendations
type Priority string

const (
	PriorityInfo     Priority = "INFO"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// EmailRecord is an email as delivered by the ingestion side. It is never mutated by the analysis.
type EmailRecord struct {
	ID           string   `json:"email_id"`
	Sender       string   `json:"sender"`
	SenderName   string   `json:"sender_name"`
	SenderDomain string   `json:"sender_domain"`
	Subject      string   `json:"subject"`
	Body         string   `json:"body_full"`
	URLs         []string `json:"urls_found"`
	URLCount     int      `json:"url_count"`
	DateReceived string   `json:"date_received"`

	// LoadErr is set when the record could not be decoded at all
	LoadErr error `json:"-"`
}

// Verdict is the opinion of the external classifier about one email
type Verdict struct {
	IsPhishing  bool
	Confidence  float64
	Explanation string
	ModelUsed   string
	Source      string
}

// Verdict sources
const (
	SourceModel     = "model"
	SourceCache     = "cache"
	SourceWhitelist = "whitelist"
)

// URLFeatures are derived from the URLs found in the body text
type URLFeatures struct {
	NumURLs                  int
	NumUniqueDomains         int
	HasIP                    bool
	AvgURLLength             float64
	HasPhishingKeywordsInURL bool
	NumDotsInURL             float64
	NumDigitsInURL           float64
}

// TextFeatures are derived from the subject and body
type TextFeatures struct {
	SubjectLen          int
	BodyLen             int
	NumUppercase        int
	NumDigits           int
	NumSpecialChars     int
	HasMoneySymbol      bool
	NumExclamation      int
	NumQuestion         int
	HasPhishingKeywords bool
	RatioUppercase      float64
	RatioDigits         float64
}

// SenderFeatures are derived from the sender address and the body URLs
type SenderFeatures struct {
	SenderDomainMismatch bool
	SenderHasNumbers     bool
	SenderLength         int
}

// FeatureSet holds every feature extracted from one email
type FeatureSet struct {
	URL    URLFeatures
	Text   TextFeatures
	Sender SenderFeatures
}

// URLRiskAssessment is the heuristic risk of a single URL
type URLRiskAssessment struct {
	URL         string   `json:"url"`
	RiskLevel   Level    `json:"risk_level"`
	RiskScore   int      `json:"risk_score"`
	RiskFactors []string `json:"risk_factors"`
}

// RedFlag is one categorized warning surfaced to the user
type RedFlag struct {
	Category    Category `json:"category"`
	Severity    Level    `json:"severity"`
	Flag        string   `json:"flag"`
	Description string   `json:"description"`
}

// Recommendation is an action suggested to the user
type Recommendation struct {
	Priority    Priority `json:"priority"`
	Action      string   `json:"action"`
	Description string   `json:"description"`
}

// Prediction is the model verdict together with the derived threat level and risk score
type Prediction struct {
	IsPhishing           bool    `json:"is_phishing"`
	Confidence           float64 `json:"confidence"`
	ConfidencePercentage float64 `json:"confidence_percentage"`
	ThreatLevel          Level   `json:"threat_level"`
	Verdict              string  `json:"verdict"`
	RiskScore            int     `json:"risk_score"`
}

// URLFeatureSummary is the reported view of URLFeatures
type URLFeatureSummary struct {
	NumURLs             int     `json:"num_urls"`
	NumUniqueDomains    int     `json:"num_unique_domains"`
	HasIPAddress        bool    `json:"has_ip_address"`
	HasPhishingKeywords bool    `json:"has_phishing_keywords"`
	AvgURLLength        float64 `json:"avg_url_length"`
}

// URLAnalysis groups the per-URL assessments and URL features
type URLAnalysis struct {
	TotalURLs         int                 `json:"total_urls"`
	URLsFound         []URLRiskAssessment `json:"urls_found"`
	HasSuspiciousURLs bool                `json:"has_suspicious_urls"`
	URLFeatures       URLFeatureSummary   `json:"url_features"`
}

// TextFeatureSummary is the reported view of TextFeatures
type TextFeatureSummary struct {
	SubjectLength       int     `json:"subject_length"`
	BodyLength          int     `json:"body_length"`
	UppercaseRatio      float64 `json:"uppercase_ratio"`
	DigitCount          int     `json:"digit_count"`
	ExclamationCount    int     `json:"exclamation_count"`
	QuestionCount       int     `json:"question_count"`
	HasMoneySymbols     bool    `json:"has_money_symbols"`
	HasPhishingKeywords bool    `json:"has_phishing_keywords"`
}

// SenderFeatureSummary is the reported view of SenderFeatures
type SenderFeatureSummary struct {
	SenderLength     int  `json:"sender_length"`
	SenderHasNumbers bool `json:"sender_has_numbers"`
	DomainMismatch   bool `json:"domain_mismatch"`
}

// ContentAnalysis groups the text and sender features
type ContentAnalysis struct {
	TextFeatures   TextFeatureSummary   `json:"text_features"`
	SenderFeatures SenderFeatureSummary `json:"sender_features"`
}

// SecurityIndicators lists the red flags raised for an email
type SecurityIndicators struct {
	RedFlags     []RedFlag `json:"red_flags"`
	RedFlagCount int       `json:"red_flag_count"`
}

// AnalysisMetadata describes the analysis run itself
type AnalysisMetadata struct {
	AnalysisID    string    `json:"analysis_id"`
	AnalyzedAt    time.Time `json:"analyzed_at"`
	ModelUsed     string    `json:"model_used"`
	VerdictSource string    `json:"verdict_source"`
}

// AnalysisResult is the complete report for one email
type AnalysisResult struct {
	EmailID      string `json:"email_id"`
	Sender       string `json:"sender"`
	SenderDomain string `json:"sender_domain"`
	Subject      string `json:"subject"`
	DateReceived string `json:"date_received"`

	Prediction         Prediction         `json:"prediction"`
	URLAnalysis        URLAnalysis        `json:"url_analysis"`
	ContentAnalysis    ContentAnalysis    `json:"content_analysis"`
	SecurityIndicators SecurityIndicators `json:"security_indicators"`
	Recommendations    []Recommendation   `json:"recommendations"`
	AnalysisMetadata   AnalysisMetadata   `json:"analysis_metadata"`

	// Features is the raw feature set the report was built from
	Features FeatureSet `json:"-"`
}

// VerdictEntry is a cached classifier verdict
type VerdictEntry struct {
	Key         string    `db:"cache_key"`
	IsPhishing  bool      `db:"is_phishing"`
	Confidence  float64   `db:"confidence"`
	Explanation string    `db:"explanation"`
	ModelUsed   string    `db:"model_used"`
	LastSeen    time.Time `db:"last_seen"`
	ExpiresAt   time.Time `db:"expires_at"`
}
