package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSONObject is returned when a model reply contains no JSON object
var ErrNoJSONObject = errors.New("no JSON object in response")

// ExtractJSON returns the outermost {...} span of a model reply, tolerating prose
// and markdown fences around it
func ExtractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", ErrNoJSONObject
	}
	return text[start : end+1], nil
}

// DecodeJSONReply unmarshals a model reply into v, first as-is and then from the
// extracted JSON object
func DecodeJSONReply(text string, v any) error {
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), v); err == nil {
		return nil
	}

	object, err := ExtractJSON(text)
	if err != nil {
		return fmt.Errorf("failed to extract JSON from LLM response: %w", err)
	}
	if err := json.Unmarshal([]byte(object), v); err != nil {
		return fmt.Errorf("failed to parse LLM response as JSON: %w", err)
	}
	return nil
}
