package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/phishing-detector/internal/core"
	"github.com/mikey/phishing-detector/internal/utils"
)

type fakeRuntime struct {
	request  *bedrockruntime.InvokeModelInput
	response []byte
	err      error
}

func (f *fakeRuntime) InvokeModel(_ context.Context, params *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.request = params
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: f.response}, nil
}

func newTestClassifier(runtime *fakeRuntime, modelID string) *Classifier {
	logger := zap.NewNop()
	return NewClassifier(runtime, modelID, 256, 0.1, 0.9, 4096, logger, utils.NewTextProcessor(logger))
}

var testEmail = &core.EmailRecord{
	ID:      "msg-1",
	Sender:  "support@paypal-verify.tk",
	Subject: "Verify your account",
	Body:    "Click http://paypal-verify.tk/login",
}

func TestClassifyClaudeMessages(t *testing.T) {
	runtime := &fakeRuntime{response: []byte(`{"content":[{"type":"text","text":"{\"is_phishing\":true,\"confidence\":0.96,\"explanation\":\"credential lure\"}"}]}`)}
	classifier := newTestClassifier(runtime, "anthropic.claude-3-haiku-20240307-v1:0")

	verdict, err := classifier.Classify(context.Background(), testEmail)
	require.NoError(t, err)

	assert.True(t, verdict.IsPhishing)
	assert.Equal(t, 0.96, verdict.Confidence)
	assert.Equal(t, "anthropic.claude-3-haiku-20240307-v1:0", verdict.ModelUsed)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(runtime.request.Body, &payload))
	assert.Equal(t, "bedrock-2023-05-31", payload["anthropic_version"])
	assert.Contains(t, payload, "messages")
}

func TestClassifyTitan(t *testing.T) {
	runtime := &fakeRuntime{response: []byte(`{"results":[{"outputText":"Answer: {\"is_phishing\":false,\"confidence\":0.12,\"explanation\":\"newsletter\"}"}]}`)}
	classifier := newTestClassifier(runtime, "amazon.titan-text-express-v1")

	verdict, err := classifier.Classify(context.Background(), testEmail)
	require.NoError(t, err)

	assert.False(t, verdict.IsPhishing)
	assert.Equal(t, 0.12, verdict.Confidence)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(runtime.request.Body, &payload))
	assert.Contains(t, payload["inputText"], "support@paypal-verify.tk")
}

func TestClassifyErrors(t *testing.T) {
	t.Run("invoke failure", func(t *testing.T) {
		runtime := &fakeRuntime{err: errors.New("throttled")}
		_, err := newTestClassifier(runtime, "amazon.titan-text-express-v1").Classify(context.Background(), testEmail)
		assert.ErrorContains(t, err, "throttled")
	})

	t.Run("empty titan results", func(t *testing.T) {
		runtime := &fakeRuntime{response: []byte(`{"results":[]}`)}
		_, err := newTestClassifier(runtime, "amazon.titan-text-express-v1").Classify(context.Background(), testEmail)
		assert.Error(t, err)
	})

	t.Run("no json in reply", func(t *testing.T) {
		runtime := &fakeRuntime{response: []byte(`{"completion":"I am not sure"}`)}
		_, err := newTestClassifier(runtime, "anthropic.claude-v2").Classify(context.Background(), testEmail)
		assert.Error(t, err)
	})
}
