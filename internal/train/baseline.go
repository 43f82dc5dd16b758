package train

import (
	"errors"

	"equity-intraday-lab/internal/domain"
)

// ErrEmptyFrame is returned when a trainer receives an empty train or test
// frame.
var ErrEmptyFrame = errors.New("empty frame")

// Baseline predicts the mean of the test-set closes as a constant. It is the
// sanity floor every other family must beat.
type Baseline struct{}

// NewBaseline creates the baseline trainer.
func NewBaseline() *Baseline {
	return &Baseline{}
}

// Name implements Trainer.
func (b *Baseline) Name() string {
	return FamilyBaseline
}

// TrainAndScore implements Trainer.
func (b *Baseline) TrainAndScore(train, test []domain.SilverRow) (domain.EvalMetrics, map[string]any, error) {
	if len(train) == 0 || len(test) == 0 {
		return domain.EvalMetrics{}, nil, ErrEmptyFrame
	}

	actuals := targets(test)
	mean := 0.0
	for _, v := range actuals {
		mean += v
	}
	mean /= float64(len(actuals))

	preds := make([]float64, len(actuals))
	for i := range preds {
		preds[i] = mean
	}

	meta := map[string]any{"constant": mean}
	return Evaluate(preds, actuals), meta, nil
}
