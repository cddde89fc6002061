package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/phishing-detector/internal/core"
)

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "short", tp.TruncateText("short", 10))
	assert.Equal(t, "unbounded", tp.TruncateText("unbounded", 0))
	assert.Equal(t, "abc"+TruncationMarker, tp.TruncateText("abcdef", 3))

	// "é" is two bytes; cutting inside it drops the partial rune
	assert.Equal(t, "caf"+TruncationMarker, tp.TruncateText("café au lait", 4))
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "valid ✓", tp.SanitizeUTF8("valid ✓"))
	assert.Equal(t, "ab", tp.SanitizeUTF8("a\xffb"))
}

func TestProcessText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "line one\nline two", tp.ProcessText("line one\r\nline two", 0))
	// the invalid byte is dropped before the limit applies
	assert.Equal(t, "abcd"+TruncationMarker, tp.ProcessText("ab\xffcdef", 4))
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{"bare", `{"a":1}`, `{"a":1}`, false},
		{"prose", "Here you go: {\"a\":1} hope it helps", `{"a":1}`, false},
		{"fenced", "```json\n{\"a\":{\"b\":2}}\n```", `{"a":{"b":2}}`, false},
		{"none", "no json here", "", true},
		{"reversed", "} {", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoJSONObject)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseVerdict(t *testing.T) {
	verdict, err := ParseVerdict("Sure!\n```json\n{\"is_phishing\": true, \"confidence\": 0.93, \"explanation\": \"spoofed bank\"}\n```", "test-model")
	require.NoError(t, err)

	assert.True(t, verdict.IsPhishing)
	assert.Equal(t, 0.93, verdict.Confidence)
	assert.Equal(t, "spoofed bank", verdict.Explanation)
	assert.Equal(t, "test-model", verdict.ModelUsed)

	_, err = ParseVerdict("I cannot help with that", "test-model")
	assert.Error(t, err)

	_, err = ParseVerdict("{not json}", "test-model")
	assert.Error(t, err)
}

func TestBuildPrompt(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())
	email := &core.EmailRecord{
		Sender:  "alerts@bank.tk",
		Subject: "Urgent",
		Body:    strings.Repeat("x", 50),
		URLs:    []string{"http://bank.tk/login"},
	}

	prompt := tp.BuildPrompt(email, 10)

	assert.Contains(t, prompt, "From: alerts@bank.tk")
	assert.Contains(t, prompt, "Subject: Urgent")
	assert.Contains(t, prompt, "URLs: 1")
	assert.Contains(t, prompt, strings.Repeat("x", 10)+TruncationMarker)
	assert.NotContains(t, prompt, strings.Repeat("x", 11))
}
