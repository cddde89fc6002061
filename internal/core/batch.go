package core

import (
	"encoding/json"
	"time"
)

// StatusFailed marks a batch entry whose analysis failed
const StatusFailed = "FAILED"

// BatchEntry is either a successful analysis or a per-record failure
type BatchEntry struct {
	Result  *AnalysisResult
	Failure *BatchFailure
}

// BatchFailure records why one email could not be analyzed
type BatchFailure struct {
	EmailID string `json:"email_id"`
	Error   string `json:"error"`
	Status  string `json:"status"`
}

// MarshalJSON renders the entry flat, as either the result or the failure object
func (e BatchEntry) MarshalJSON() ([]byte, error) {
	if e.Failure != nil {
		return json.Marshal(e.Failure)
	}
	return json.Marshal(e.Result)
}

// Failed reports whether the entry is a failure
func (e BatchEntry) Failed() bool {
	return e.Failure != nil
}

// BatchSummary aggregates the entries of a batch
type BatchSummary struct {
	TotalEmails          int           `json:"total_emails"`
	AnalyzedSuccessfully int           `json:"analyzed_successfully"`
	Failed               int           `json:"failed"`
	PhishingDetected     int           `json:"phishing_detected"`
	Legitimate           int           `json:"legitimate"`
	PhishingPercentage   float64       `json:"phishing_percentage"`
	ThreatDistribution   map[Level]int `json:"threat_distribution"`
}

// BatchReport is the output of a batch run
type BatchReport struct {
	Summary    BatchSummary `json:"batch_summary"`
	Results    []BatchEntry `json:"results"`
	AnalyzedAt time.Time    `json:"analyzed_at"`
}

// FailedEntry builds the failure entry for an email
func FailedEntry(emailID string, err error) BatchEntry {
	return BatchEntry{Failure: &BatchFailure{
		EmailID: emailID,
		Error:   err.Error(),
		Status:  StatusFailed,
	}}
}

// Summarize computes the batch summary of entries. Every threat level is present in
// the distribution, with zero counts where no result reached it.
func Summarize(entries []BatchEntry) BatchSummary {
	summary := BatchSummary{
		TotalEmails:        len(entries),
		ThreatDistribution: make(map[Level]int, len(Levels)),
	}
	for _, level := range Levels {
		summary.ThreatDistribution[level] = 0
	}

	for _, e := range entries {
		if e.Failed() || e.Result == nil {
			summary.Failed++
			continue
		}
		summary.AnalyzedSuccessfully++
		if e.Result.Prediction.IsPhishing {
			summary.PhishingDetected++
		} else {
			summary.Legitimate++
		}
		summary.ThreatDistribution[e.Result.Prediction.ThreatLevel]++
	}

	if summary.AnalyzedSuccessfully > 0 {
		summary.PhishingPercentage = roundTo(
			float64(summary.PhishingDetected)/float64(summary.AnalyzedSuccessfully)*100, 2)
	}

	return summary
}
