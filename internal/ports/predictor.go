package ports

import (
	"context"

	"github.com/alejandrodnm/fuelpricer/internal/domain"
)

// Predictor es el modelo de demanda, opaco para el núcleo.
type Predictor interface {
	// Predict devuelve un volumen predicho por fila, en el mismo orden que rows.
	// Cada fila se serializa en el orden de domain.FeatureColumns.
	Predict(ctx context.Context, rows []domain.FeatureVector) ([]float64, error)
}
