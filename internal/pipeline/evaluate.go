package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/alejandrodnm/fuelpricer/internal/domain"
	"github.com/alejandrodnm/fuelpricer/internal/ports"
	"gonum.org/v1/gonum/stat"
)

// Metrics resume la calidad de un predictor sobre un dataset procesado.
type Metrics struct {
	Rows       int
	MAE        float64
	MeanVolume float64
}

// Evaluate predice el volumen de cada fila en una única llamada y calcula el MAE
// contra el volumen observado.
func Evaluate(ctx context.Context, rows []ProcessedRow, predictor ports.Predictor) (Metrics, error) {
	if len(rows) == 0 {
		return Metrics{}, errors.New("pipeline.Evaluate: no rows to evaluate")
	}

	features := make([]domain.FeatureVector, len(rows))
	actual := make([]float64, len(rows))
	for i, r := range rows {
		features[i] = r.Features
		actual[i] = r.Volume
	}

	preds, err := predictor.Predict(ctx, features)
	if err != nil {
		return Metrics{}, fmt.Errorf("pipeline.Evaluate: %w: %w", domain.ErrEmptyModelOutput, err)
	}
	if len(preds) != len(rows) {
		return Metrics{}, fmt.Errorf("pipeline.Evaluate: %w: got %d predictions for %d rows",
			domain.ErrEmptyModelOutput, len(preds), len(rows))
	}

	absErr := make([]float64, len(rows))
	for i, p := range preds {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return Metrics{}, fmt.Errorf("pipeline.Evaluate: %w: row %d is not finite", domain.ErrEmptyModelOutput, i)
		}
		absErr[i] = math.Abs(p - actual[i])
	}

	return Metrics{
		Rows:       len(rows),
		MAE:        stat.Mean(absErr, nil),
		MeanVolume: stat.Mean(actual, nil),
	}, nil
}

// Holdout devuelve la fracción final (cronológica) del dataset para evaluar.
// fraction fuera de (0, 1] devuelve el dataset completo.
func Holdout(rows []ProcessedRow, fraction float64) []ProcessedRow {
	if fraction <= 0 || fraction >= 1 || len(rows) == 0 {
		return rows
	}
	n := int(math.Ceil(float64(len(rows)) * fraction))
	return rows[len(rows)-n:]
}
