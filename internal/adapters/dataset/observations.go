// Package dataset lee observaciones de mercado desde ficheros (JSON y CSV) y
// exporta el histórico de recomendaciones a CSV.
package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/alejandrodnm/fuelpricer/internal/domain"
)

// observationColumns son las columnas reconocidas en un CSV de lote. Todas opcionales;
// las que falten se resuelven con los fallbacks de domain.MarketObservation.Resolve.
var observationColumns = map[string]func(*domain.MarketObservation) **float64{
	"price":                func(o *domain.MarketObservation) **float64 { return &o.Price },
	"last_price":           func(o *domain.MarketObservation) **float64 { return &o.LastPrice },
	"cost":                 func(o *domain.MarketObservation) **float64 { return &o.Cost },
	"comp1_price":          func(o *domain.MarketObservation) **float64 { return &o.Comp1Price },
	"comp2_price":          func(o *domain.MarketObservation) **float64 { return &o.Comp2Price },
	"comp3_price":          func(o *domain.MarketObservation) **float64 { return &o.Comp3Price },
	"competitor_price":     func(o *domain.MarketObservation) **float64 { return &o.CompetitorPrice },
	"comp_price":           func(o *domain.MarketObservation) **float64 { return &o.CompPrice },
	"est_volume_yesterday": func(o *domain.MarketObservation) **float64 { return &o.EstVolumeYesterday },
}

// ReadObservationJSON lee una única observación desde un fichero JSON.
func ReadObservationJSON(path string) (domain.MarketObservation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.MarketObservation{}, fmt.Errorf("dataset.ReadObservationJSON: read %q: %w", path, err)
	}
	return DecodeObservation(data)
}

// DecodeObservation decodifica una observación JSON. Las claves desconocidas
// (demand_index, min_margin, stock, boost del dashboard) se ignoran, igual que
// las columnas desconocidas del CSV.
func DecodeObservation(data []byte) (domain.MarketObservation, error) {
	var obs domain.MarketObservation
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&obs); err != nil {
		return domain.MarketObservation{}, fmt.Errorf("dataset.DecodeObservation: %w: %v", domain.ErrInvalidInput, err)
	}
	if ignored := unknownKeys(data); len(ignored) > 0 {
		slog.Debug("observation keys ignored", "keys", ignored)
	}
	return obs, nil
}

// unknownKeys lista, ordenadas, las claves del objeto que no son campos de la observación.
func unknownKeys(data []byte) []string {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	var keys []string
	for k := range raw {
		if _, ok := observationColumns[k]; ok || k == "date" || k == "fuel_type" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ReadObservationsCSV lee un lote de observaciones, una por fila.
// Columnas desconocidas se ignoran; celdas vacías equivalen a campo ausente.
func ReadObservationsCSV(r io.Reader) ([]domain.MarketObservation, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("dataset.ReadObservationsCSV: read header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	var out []domain.MarketObservation
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset.ReadObservationsCSV: line %d: %w", line, err)
		}

		obs, err := parseObservation(header, rec)
		if err != nil {
			return nil, fmt.Errorf("dataset.ReadObservationsCSV: line %d: %w", line, err)
		}
		out = append(out, obs)
	}
	return out, nil
}

// LoadObservationsCSV abre path y lee el lote.
func LoadObservationsCSV(path string) ([]domain.MarketObservation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset.LoadObservationsCSV: open %q: %w", path, err)
	}
	defer f.Close()
	return ReadObservationsCSV(f)
}

func parseObservation(header, rec []string) (domain.MarketObservation, error) {
	var obs domain.MarketObservation
	for i, col := range header {
		if i >= len(rec) {
			break
		}
		cell := strings.TrimSpace(rec[i])
		if cell == "" {
			continue
		}

		switch col {
		case "date":
			obs.Date = cell
		case "fuel_type":
			obs.FuelType = cell
		default:
			field, ok := observationColumns[col]
			if !ok {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return obs, domain.InvalidField(col, fmt.Sprintf("not a number: %q", cell))
			}
			*field(&obs) = &v
		}
	}
	return obs, nil
}
