package pricing

import (
	"math"

	"github.com/alejandrodnm/fuelpricer/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	defaultGridRadius = 2.0
	defaultGridStep   = 0.1
)

// GridConfig define la rejilla de precios candidatos alrededor del precio base.
type GridConfig struct {
	Radius float64 // distancia máxima al precio base, a cada lado
	Step   float64 // separación entre candidatos
}

// DefaultGridConfig devuelve la rejilla ±2.0 con paso 0.1 (41 candidatos).
func DefaultGridConfig() GridConfig {
	return GridConfig{Radius: defaultGridRadius, Step: defaultGridStep}
}

// Size devuelve el número de candidatos que genera la rejilla.
func (g GridConfig) Size() int {
	if g.Step <= 0 || g.Radius < 0 {
		return 1
	}
	return int(math.Round(2*g.Radius/g.Step)) + 1
}

// CandidateGrid genera los candidatos en orden ascendente, de base-Radius a
// base+Radius inclusive, redondeados a céntimos.
// La aritmética es decimal: 93.5 + 10×0.1 es exactamente 94.5, sin residuos.
func CandidateGrid(base float64, cfg GridConfig) []float64 {
	n := cfg.Size()
	if n == 1 {
		return []float64{domain.Round2(base)}
	}

	start := decimal.NewFromFloat(base).Sub(decimal.NewFromFloat(cfg.Radius))
	step := decimal.NewFromFloat(cfg.Step)

	grid := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		v := start.Add(step.Mul(decimal.NewFromInt(int64(i))))
		grid = append(grid, v.Round(domain.PricePrecision).InexactFloat64())
	}
	return grid
}
