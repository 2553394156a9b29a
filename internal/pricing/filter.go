package pricing

import (
	"log/slog"
	"math"
)

// priceEpsilon absorbe el ruido de coma flotante al comparar contra los límites.
const priceEpsilon = 1e-9

// FilterConfig contiene los guardarraíles de negocio.
type FilterConfig struct {
	// MaxDelta es el movimiento máximo permitido respecto al precio base (regla A).
	MaxDelta float64
	// MaxGapOverComp es cuánto se puede superar la media de competidores (regla B).
	MaxGapOverComp float64
}

// DefaultFilterConfig devuelve los guardarraíles fijos del optimizador: ±1.5 y +1.0.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MaxDelta:       1.5,
		MaxGapOverComp: 1.0,
	}
}

// FilterResult es la salida del filtro.
type FilterResult struct {
	Candidates []float64
	// Fallback es true si las reglas vaciaron la rejilla y se devolvió completa.
	Fallback bool
}

// Filter aplica las reglas de negocio sobre la rejilla de candidatos.
// No hay reglas de margen mínimo, stock ni boost de fin de semana.
type Filter struct {
	cfg FilterConfig
}

// NewFilter crea un Filter con la configuración dada.
func NewFilter(cfg FilterConfig) *Filter {
	return &Filter{cfg: cfg}
}

// Apply aplica la regla A y luego la regla B sobre los supervivientes, conservando el orden.
// Si no sobrevive ningún candidato, descarta el filtrado y devuelve la rejilla original:
// el optimizador nunca recibe un conjunto vacío, a costa de saltarse los guardarraíles.
// Nunca devuelve error.
func (f *Filter) Apply(candidates []float64, basePrice, avgCompPrice float64) FilterResult {
	moved := make([]float64, 0, len(candidates))
	for _, p := range candidates {
		if f.withinMove(p, basePrice) {
			moved = append(moved, p)
		}
	}

	kept := make([]float64, 0, len(moved))
	for _, p := range moved {
		if f.withinGap(p, avgCompPrice) {
			kept = append(kept, p)
		}
	}

	if len(kept) == 0 {
		slog.Debug("business rules rejected every candidate, using full grid",
			"base_price", basePrice,
			"avg_comp_price", avgCompPrice,
			"max_delta", f.cfg.MaxDelta,
			"max_gap_over_comp", f.cfg.MaxGapOverComp,
		)
		all := make([]float64, len(candidates))
		copy(all, candidates)
		return FilterResult{Candidates: all, Fallback: true}
	}
	return FilterResult{Candidates: kept}
}

// withinMove: regla A, |p - base| <= MaxDelta.
func (f *Filter) withinMove(p, base float64) bool {
	return math.Abs(p-base) <= f.cfg.MaxDelta+priceEpsilon
}

// withinGap: regla B, p <= media competidores + MaxGapOverComp.
func (f *Filter) withinGap(p, avgComp float64) bool {
	return p <= avgComp+f.cfg.MaxGapOverComp+priceEpsilon
}
