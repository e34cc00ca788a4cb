package evaluator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/speedwagon-io/labelscore/internal/model"
)

// ThresholdProvider resolves the thresholds configured for a key. Lookups for
// keys without configuration should return an error wrapping
// model.ErrThresholdsNotFound.
type ThresholdProvider interface {
	GetThresholds(ctx context.Context, key model.ThresholdKey) (model.Thresholds, error)
}

type Evaluator struct {
	log      *slog.Logger
	provider ThresholdProvider
}

func New(log *slog.Logger, provider ThresholdProvider) *Evaluator {
	return &Evaluator{
		log:      log,
		provider: provider,
	}
}

// Evaluate scores every tracked nutrient of the label. Thresholds are looked
// up once per nutrient for the given unit; the first lookup error aborts the
// whole evaluation.
func (e *Evaluator) Evaluate(ctx context.Context, label model.Label, unit model.MeasurementUnit) (model.EvaluationResult, error) {
	scores := make(map[model.Nutrient]model.Score, len(model.Nutrients()))

	for _, n := range model.Nutrients() {
		value, _ := label.Value(n)
		key := model.NewThresholdKey(n, unit)

		thresholds, err := e.provider.GetThresholds(ctx, key)
		if err != nil {
			return model.EvaluationResult{}, fmt.Errorf("failed to get thresholds for %s: %w", key, err)
		}

		score := Classify(value, thresholds)
		scores[n] = score

		e.log.Debug("nutrient classified",
			slog.String("nutrient", n.String()),
			slog.String("unit", unit.String()),
			slog.Float64("value", value),
			slog.Float64("lower", thresholds.Lower),
			slog.Float64("upper", thresholds.Upper),
			slog.String("score", score.String()),
		)
	}

	return model.NewEvaluationResult(scores), nil
}

// Classify places value against the two cut points. Both bounds belong to the
// moderate band. Thresholds are used as given, even when Lower > Upper.
func Classify(value float64, t model.Thresholds) model.Score {
	switch {
	case value < t.Lower:
		return model.ScoreFavorable
	case value > t.Upper:
		return model.ScoreUnfavorable
	default:
		return model.ScoreModerate
	}
}
