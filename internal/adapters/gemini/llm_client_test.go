package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/phishing-detector/internal/core"
	"github.com/mikey/phishing-detector/internal/utils"
)

type fakeModel struct {
	prompt string
	resp   *genai.GenerateContentResponse
	err    error
}

func (f *fakeModel) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	if len(parts) > 0 {
		if text, ok := parts[0].(genai.Text); ok {
			f.prompt = string(text)
		}
	}
	return f.resp, f.err
}

func reply(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func newTestClassifier(model *fakeModel) *Classifier {
	logger := zap.NewNop()
	return NewClassifierWithModel(model, "gemini-1.5-flash", 4096, logger, utils.NewTextProcessor(logger))
}

func TestClassify(t *testing.T) {
	model := &fakeModel{resp: reply(genai.Text(`{"is_phishing":true,`), genai.Text(`"confidence":0.88,"explanation":"fake invoice"}`))}

	verdict, err := newTestClassifier(model).Classify(context.Background(), &core.EmailRecord{
		Sender:  "billing@invoices.top",
		Subject: "Invoice overdue",
	})
	require.NoError(t, err)

	assert.True(t, verdict.IsPhishing)
	assert.Equal(t, 0.88, verdict.Confidence)
	assert.Equal(t, "gemini-1.5-flash", verdict.ModelUsed)
	assert.Contains(t, model.prompt, "billing@invoices.top")
}

func TestClassifyErrors(t *testing.T) {
	tests := map[string]*fakeModel{
		"api error":     {err: errors.New("quota exceeded")},
		"no candidates": {resp: &genai.GenerateContentResponse{}},
		"nil content":   {resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}},
		"not json":      {resp: reply(genai.Text("cannot classify"))},
	}

	for name, model := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := newTestClassifier(model).Classify(context.Background(), &core.EmailRecord{})
			assert.Error(t, err)
		})
	}
}

func TestCloseWithoutClient(t *testing.T) {
	assert.NoError(t, newTestClassifier(&fakeModel{}).Close())
}
