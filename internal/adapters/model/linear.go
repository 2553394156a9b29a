package model

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/alejandrodnm/fuelpricer/internal/domain"
)

// LinearArtifact es el formato en disco de un modelo lineal de demanda:
//
//	{"intercept": 61000, "coefficients": {"price": -500, "cost": 0, ...}}
//
// Debe traer un coeficiente para cada columna de domain.FeatureColumns y ninguna más.
type LinearArtifact struct {
	Name         string             `json:"name,omitempty"`
	Intercept    float64            `json:"intercept"`
	Coefficients map[string]float64 `json:"coefficients"`
}

// Linear implementa ports.Predictor: volume = intercept + Σ wᵢ·xᵢ.
type Linear struct {
	name      string
	intercept float64
	weights   []float64 // alineados con domain.FeatureColumns
}

// NewLinear valida el artefacto contra el esquema de features y alinea los pesos.
func NewLinear(a LinearArtifact) (*Linear, error) {
	var missing []string
	weights := make([]float64, len(domain.FeatureColumns))
	known := make(map[string]bool, len(domain.FeatureColumns))
	for i, col := range domain.FeatureColumns {
		known[col] = true
		w, ok := a.Coefficients[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		weights[i] = w
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("model.NewLinear: %w", &domain.SchemaError{Missing: missing})
	}

	var unknown []string
	for col := range a.Coefficients {
		if !known[col] {
			unknown = append(unknown, col)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("model.NewLinear: unknown feature columns %v: %w", unknown, domain.ErrSchemaValidation)
	}

	return &Linear{name: a.Name, intercept: a.Intercept, weights: weights}, nil
}

// LoadLinear lee y valida un artefacto lineal desde disco. Se llama una vez por sesión.
func LoadLinear(path string) (*Linear, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model.LoadLinear: read %q: %w", path, err)
	}

	var a LinearArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("model.LoadLinear: parse %q: %w", path, err)
	}
	return NewLinear(a)
}

// Name devuelve el nombre declarado en el artefacto.
func (l *Linear) Name() string {
	return l.name
}

// Predict evalúa el modelo sobre cada fila.
func (l *Linear) Predict(_ context.Context, rows []domain.FeatureVector) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, r := range rows {
		v := l.intercept
		for j, x := range r.Values() {
			v += l.weights[j] * x
		}
		out[i] = v
	}
	return out, nil
}
