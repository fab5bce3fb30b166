package stats

import (
	"context"

	"text-annotation-be/internal/domain"
)

// Calculator scores a user's annotations against the current model
// predictions. The concrete scoring lives with the AI service; this boundary
// only carries the result into the marking flow.
type Calculator interface {
	Calculate(ctx context.Context, doc *domain.Document) (domain.AiStats, error)
}

// NoopCalculator reports the "no prediction" sentinel for every document.
// Used until a real scorer is wired in.
type NoopCalculator struct{}

func NewNoopCalculator() *NoopCalculator {
	return &NoopCalculator{}
}

func (NoopCalculator) Calculate(_ context.Context, _ *domain.Document) (domain.AiStats, error) {
	return domain.NoAiStats(), nil
}
