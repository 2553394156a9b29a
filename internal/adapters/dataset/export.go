package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/alejandrodnm/fuelpricer/internal/domain"
)

// HistoryColumns es la cabecera del CSV exportado.
var HistoryColumns = []string{
	"id", "created_at", "fuel_type",
	"base_price", "cost", "avg_comp_price",
	"recommended_price", "expected_volume", "expected_profit",
	"filter_fallback",
}

// WriteHistoryCSV exporta el histórico de recomendaciones.
func WriteHistoryCSV(w io.Writer, entries []domain.HistoryEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(HistoryColumns); err != nil {
		return fmt.Errorf("dataset.WriteHistoryCSV: write header: %w", err)
	}

	for _, e := range entries {
		rec := []string{
			e.ID,
			e.CreatedAt.UTC().Format(time.RFC3339),
			e.FuelType,
			money(e.BasePrice),
			money(e.Cost),
			money(e.AvgCompPrice),
			money(e.RecommendedPrice),
			money(e.ExpectedVolume),
			money(e.ExpectedProfit),
			strconv.FormatBool(e.FilterFallback),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("dataset.WriteHistoryCSV: write %s: %w", e.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("dataset.WriteHistoryCSV: flush: %w", err)
	}
	return nil
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', domain.PricePrecision, 64)
}
