package utils

import (
	"fmt"

	"github.com/mikey/phishing-detector/internal/core"
)

// SystemPrompt is sent as the system message to chat-style models
const SystemPrompt = "You are a phishing detection system. Respond only with JSON."

const promptFormat = `You are a phishing detection system. Analyze the following email and determine if it's a phishing attempt.
Respond with a JSON object containing:
- is_phishing: boolean (true if phishing, false if not)
- confidence: number between 0 and 1 (probability that the email is phishing)
- explanation: string (brief explanation of your assessment)

Email:
From: %s
Subject: %s
URLs: %d
Body:
%s

Respond only with the JSON object and nothing else.`

// PhishingResponse is the JSON object a model is asked to reply with
type PhishingResponse struct {
	IsPhishing  bool    `json:"is_phishing"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
}

// BuildPrompt formats the classification prompt for an email. The body is truncated
// and sanitized to maxBodySize bytes.
func (tp *TextProcessor) BuildPrompt(email *core.EmailRecord, maxBodySize int) string {
	urlCount := email.URLCount
	if urlCount == 0 {
		urlCount = len(email.URLs)
	}
	return fmt.Sprintf(promptFormat, email.Sender, email.Subject, urlCount, tp.ProcessText(email.Body, maxBodySize))
}

// ParseVerdict decodes a model reply into a verdict
func ParseVerdict(reply, model string) (*core.Verdict, error) {
	var resp PhishingResponse
	if err := DecodeJSONReply(reply, &resp); err != nil {
		return nil, err
	}
	return &core.Verdict{
		IsPhishing:  resp.IsPhishing,
		Confidence:  resp.Confidence,
		Explanation: resp.Explanation,
		ModelUsed:   model,
	}, nil
}
