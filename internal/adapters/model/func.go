package model

import (
	"context"
	"fmt"

	"github.com/alejandrodnm/fuelpricer/internal/domain"
)

// Func adapta una función fila-a-fila a ports.Predictor.
// Útil para modelos sintéticos y dobles de test.
type Func func(domain.FeatureVector) (float64, error)

// Predict llama a la función una vez por fila y corta en el primer error.
func (f Func) Predict(ctx context.Context, rows []domain.FeatureVector) ([]float64, error) {
	out := make([]float64, 0, len(rows))
	for i, r := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := f(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
