package static

import (
	"context"

	"github.com/mikey/phishing-detector/internal/core"
)

// ModelName is reported as the model of static verdicts
const ModelName = "static"

// Classifier returns the same verdict for every email. It runs the rule engine
// without a model, offline or in tests.
type Classifier struct {
	isPhishing  bool
	confidence  float64
	explanation string
}

// NewClassifier creates a fixed-verdict classifier
func NewClassifier(isPhishing bool, confidence float64, explanation string) *Classifier {
	return &Classifier{
		isPhishing:  isPhishing,
		confidence:  confidence,
		explanation: explanation,
	}
}

// Classify returns the configured verdict
func (c *Classifier) Classify(ctx context.Context, _ *core.EmailRecord) (*core.Verdict, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &core.Verdict{
		IsPhishing:  c.isPhishing,
		Confidence:  c.confidence,
		Explanation: c.explanation,
		ModelUsed:   ModelName,
	}, nil
}
