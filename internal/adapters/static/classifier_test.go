package static

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/phishing-detector/internal/core"
)

func TestClassify(t *testing.T) {
	classifier := NewClassifier(true, 0.97, "fixed")

	verdict, err := classifier.Classify(context.Background(), &core.EmailRecord{ID: "x"})
	require.NoError(t, err)

	assert.Equal(t, &core.Verdict{IsPhishing: true, Confidence: 0.97, Explanation: "fixed", ModelUsed: ModelName}, verdict)
}

func TestClassifyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClassifier(false, 0, "").Classify(ctx, &core.EmailRecord{})
	assert.ErrorIs(t, err, context.Canceled)
}
