package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/alejandrodnm/fuelpricer/internal/domain"
	"github.com/alejandrodnm/fuelpricer/internal/ports"
)

// Config contiene la configuración de la búsqueda de precio.
type Config struct {
	Grid   GridConfig
	Filter FilterConfig
	// Now fija la fecha por defecto de las observaciones sin date. nil = time.Now.
	Now func() time.Time
}

// DefaultConfig devuelve la rejilla ±2.0/0.1 con los guardarraíles ±1.5 y +1.0.
func DefaultConfig() Config {
	return Config{
		Grid:   DefaultGridConfig(),
		Filter: DefaultFilterConfig(),
	}
}

// Optimizer busca el precio candidato que maximiza el beneficio esperado.
type Optimizer struct {
	cfg       Config
	predictor ports.Predictor
	filter    *Filter
}

// NewOptimizer crea un Optimizer. El predictor debe venir ya cargado: no se
// recarga por candidato.
func NewOptimizer(cfg Config, predictor ports.Predictor) *Optimizer {
	if cfg.Grid.Step <= 0 {
		cfg.Grid = DefaultGridConfig()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Optimizer{
		cfg:       cfg,
		predictor: predictor,
		filter:    NewFilter(cfg.Filter),
	}
}

// Optimize devuelve la recomendación para la observación.
func (o *Optimizer) Optimize(ctx context.Context, obs domain.MarketObservation) (domain.Recommendation, error) {
	report, err := o.Evaluate(ctx, obs)
	if err != nil {
		return domain.Recommendation{}, err
	}
	return report.Recommendation, nil
}

// Evaluate ejecuta la búsqueda completa y devuelve la recomendación con el detalle
// de cada candidato evaluado.
//
// Flujo: resolver observación → rejilla → reglas → una predicción por lotes →
// beneficio por candidato → argmax. El argmax solo se reemplaza con un beneficio
// estrictamente mayor, así que en empate gana el candidato más barato.
func (o *Optimizer) Evaluate(ctx context.Context, obs domain.MarketObservation) (domain.Report, error) {
	cond, err := obs.Resolve(o.cfg.Now())
	if err != nil {
		return domain.Report{}, fmt.Errorf("pricing.Evaluate: %w: %w", domain.ErrInvalidInput, err)
	}
	if cond.CompFallback {
		slog.Debug("competitor price missing, slot defaulted to 0",
			"comp_prices", cond.CompPrices,
			"avg_comp_price", cond.AvgCompPrice(),
		)
	}

	grid := CandidateGrid(cond.Price, o.cfg.Grid)
	filtered := o.filter.Apply(grid, cond.Price, cond.AvgCompPrice())

	rows := make([]domain.FeatureVector, len(filtered.Candidates))
	for i, p := range filtered.Candidates {
		rows[i] = cond.FeaturesAt(p)
	}

	volumes, err := o.predictor.Predict(ctx, rows)
	if err != nil {
		return domain.Report{}, fmt.Errorf("pricing.Evaluate: predict: %w: %w", domain.ErrEmptyModelOutput, err)
	}
	if len(volumes) != len(rows) {
		return domain.Report{}, fmt.Errorf("pricing.Evaluate: predictor returned %d values for %d candidates: %w",
			len(volumes), len(rows), domain.ErrEmptyModelOutput)
	}

	candidates := make([]domain.Candidate, 0, len(rows))
	best := -1
	for i, p := range filtered.Candidates {
		vol := volumes[i]
		if math.IsNaN(vol) || math.IsInf(vol, 0) {
			return domain.Report{}, fmt.Errorf("pricing.Evaluate: candidate %.2f: non-finite volume: %w", p, domain.ErrEmptyModelOutput)
		}

		profit := domain.Profit(p, cond.Cost, vol)
		candidates = append(candidates, domain.Candidate{Price: p, Volume: vol, Profit: profit})

		if best < 0 || profit > candidates[best].Profit {
			best = i
		}
	}

	winner := candidates[best]
	rec := domain.NewRecommendation(winner.Price, cond.Cost, winner.Volume)

	slog.Debug("price search complete",
		"base_price", cond.Price,
		"grid", len(grid),
		"evaluated", len(candidates),
		"fallback", filtered.Fallback,
		"recommended_price", rec.RecommendedPrice,
		"expected_profit", rec.ExpectedProfit,
	)

	return domain.Report{
		Conditions:     cond,
		Recommendation: rec,
		Candidates:     candidates,
		GridSize:       len(grid),
		FilterFallback: filtered.Fallback,
	}, nil
}
