// Package pipeline construye el dataset de entrenamiento a partir del histórico
// de la estación: lags reales, medias móviles de volumen y calendario.
//
// Es el homólogo "verdadero" de las aproximaciones que usa domain.Conditions en
// inferencia; el esquema de salida es el mismo FeatureVector más el volumen objetivo.
package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/fuelpricer/internal/domain"
	"gonum.org/v1/gonum/stat"
)

const (
	shortWindow = 7
	longWindow  = 14
)

// RequiredColumns son las columnas obligatorias del CSV histórico.
var RequiredColumns = []string{
	"date", "price", "cost",
	"comp1_price", "comp2_price", "comp3_price",
	"volume",
}

// HistoricalRow es una fila del histórico diario. Un valor ausente es NaN.
type HistoricalRow struct {
	Date       time.Time
	Price      float64
	Cost       float64
	Comp1Price float64
	Comp2Price float64
	Comp3Price float64
	Volume     float64
}

// ProcessedRow es una fila lista para entrenar o evaluar un modelo.
type ProcessedRow struct {
	Date     time.Time
	Features domain.FeatureVector
	Volume   float64
}

// Summary resume una ejecución del pipeline.
type Summary struct {
	RowsRead    int
	RowsWritten int
	Dropped     int
}

// ValidateColumns falla con un *domain.SchemaError que lista exactamente las columnas que faltan.
func ValidateColumns(header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}

	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &domain.SchemaError{Missing: missing}
	}
	return nil
}

// ReadHistorical lee el CSV histórico. Las celdas numéricas vacías se leen como NaN
// y la fila se descarta más tarde en ComputeFeatures.
func ReadHistorical(r io.Reader) ([]HistoricalRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("pipeline.ReadHistorical: %w", &domain.SchemaError{Missing: RequiredColumns})
		}
		return nil, fmt.Errorf("pipeline.ReadHistorical: read header: %w", err)
	}
	if err := ValidateColumns(header); err != nil {
		return nil, fmt.Errorf("pipeline.ReadHistorical: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}

	var rows []HistoricalRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("pipeline.ReadHistorical: line %d: %w", line, err)
		}

		row, err := parseRow(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("pipeline.ReadHistorical: line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(rec []string, idx map[string]int) (HistoricalRow, error) {
	var row HistoricalRow

	dateStr := strings.TrimSpace(rec[idx["date"]])
	if dateStr == "" {
		return row, domain.InvalidField("date", "empty")
	}
	d, err := domain.ParseDate(dateStr, time.Time{})
	if err != nil {
		return row, err
	}
	row.Date = d

	fields := []struct {
		col string
		dst *float64
	}{
		{"price", &row.Price},
		{"cost", &row.Cost},
		{"comp1_price", &row.Comp1Price},
		{"comp2_price", &row.Comp2Price},
		{"comp3_price", &row.Comp3Price},
		{"volume", &row.Volume},
	}
	for _, f := range fields {
		v, err := parseCell(rec[idx[f.col]])
		if err != nil {
			return row, domain.InvalidField(f.col, err.Error())
		}
		*f.dst = v
	}
	return row, nil
}

// parseCell: vacío = NaN; cualquier otro texto no numérico es error.
func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return v, nil
}

// ComputeFeatures ordena por fecha y calcula las features de entrenamiento:
//
//   - lag_price_1, lag_volume_1: valor del día anterior
//   - ma_volume_7, ma_volume_14: media móvil del volumen, ventana que incluye el día actual
//   - dayofweek (lunes = 0), month
//
// Las filas sin historia suficiente (las 13 primeras) o con algún NaN se descartan.
func ComputeFeatures(rows []HistoricalRow) []ProcessedRow {
	sorted := make([]HistoricalRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	volumes := make([]float64, len(sorted))
	for i, r := range sorted {
		volumes[i] = r.Volume
	}

	out := make([]ProcessedRow, 0, len(sorted))
	for i, r := range sorted {
		avg := (r.Comp1Price + r.Comp2Price + r.Comp3Price) / 3

		fv := domain.FeatureVector{
			Price:             r.Price,
			Cost:              r.Cost,
			Comp1Price:        r.Comp1Price,
			Comp2Price:        r.Comp2Price,
			Comp3Price:        r.Comp3Price,
			AvgCompPrice:      avg,
			PriceSpreadVsComp: r.Price - avg,
			LagPrice1:         math.NaN(),
			LagVolume1:        math.NaN(),
			MAVolume7:         rollingMean(volumes, i, shortWindow),
			MAVolume14:        rollingMean(volumes, i, longWindow),
			DayOfWeek:         float64(domain.Weekday(r.Date)),
			Month:             float64(r.Date.Month()),
		}
		if i > 0 {
			fv.LagPrice1 = sorted[i-1].Price
			fv.LagVolume1 = sorted[i-1].Volume
		}

		row := ProcessedRow{Date: r.Date, Features: fv, Volume: r.Volume}
		if hasNaN(row) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// rollingMean devuelve la media de values[i-window+1 : i+1], o NaN si no hay ventana completa.
func rollingMean(values []float64, i, window int) float64 {
	if i+1 < window {
		return math.NaN()
	}
	return stat.Mean(values[i+1-window:i+1], nil)
}

func hasNaN(r ProcessedRow) bool {
	if math.IsNaN(r.Volume) {
		return true
	}
	for _, v := range r.Features.Values() {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// Run lee el CSV histórico, calcula las features y escribe el dataset en Parquet.
func Run(ctx context.Context, inputPath, outputPath string) (Summary, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		return Summary{}, fmt.Errorf("pipeline.Run: open %q: %w", inputPath, err)
	}
	defer f.Close()

	rows, err := ReadHistorical(f)
	if err != nil {
		return Summary{}, err
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	processed := ComputeFeatures(rows)

	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Summary{}, fmt.Errorf("pipeline.Run: create %q: %w", dir, err)
		}
	}
	if err := WriteParquet(outputPath, processed); err != nil {
		return Summary{}, err
	}

	s := Summary{
		RowsRead:    len(rows),
		RowsWritten: len(processed),
		Dropped:     len(rows) - len(processed),
	}
	slog.Info("pipeline completed",
		"input", inputPath,
		"output", outputPath,
		"rows_read", s.RowsRead,
		"rows_written", s.RowsWritten,
		"dropped", s.Dropped,
	)
	return s, nil
}
