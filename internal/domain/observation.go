package domain

import (
	"math"
	"strings"
	"time"
)

// DefaultVolumeYesterday es el volumen asumido cuando la observación no trae
// est_volume_yesterday.
const DefaultVolumeYesterday = 15000.0

// DateLayout es el formato de fecha de las observaciones y del histórico.
const DateLayout = "2006-01-02"

// MarketObservation es una foto del mercado tal como llega del exterior (JSON, CSV, HTTP).
// Todos los campos numéricos son opcionales: nil = ausente. Se resuelve una sola vez
// con Resolve y, a partir de ahí, el resto del sistema trabaja sobre Conditions.
type MarketObservation struct {
	Date      string   `json:"date,omitempty"`
	FuelType  string   `json:"fuel_type,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	LastPrice *float64 `json:"last_price,omitempty"`
	Cost      *float64 `json:"cost,omitempty"`

	Comp1Price *float64 `json:"comp1_price,omitempty"`
	Comp2Price *float64 `json:"comp2_price,omitempty"`
	Comp3Price *float64 `json:"comp3_price,omitempty"`

	// Alias genéricos: se usan para cualquier slot de competidor sin valor explícito.
	CompetitorPrice *float64 `json:"competitor_price,omitempty"`
	CompPrice       *float64 `json:"comp_price,omitempty"`

	EstVolumeYesterday *float64 `json:"est_volume_yesterday,omitempty"`
}

// Conditions es la observación resuelta: todos los campos poblados, sin punteros.
type Conditions struct {
	Date            time.Time
	Price           float64
	Cost            float64
	CompPrices      [3]float64
	VolumeYesterday float64

	// CompFallback indica que al menos un slot de competidor quedó en 0 por falta de datos.
	CompFallback bool
}

// Float devuelve un puntero al valor; útil para construir observaciones en código.
func Float(v float64) *float64 {
	return &v
}

// Resolve aplica las reglas de fallback y valida los campos obligatorios.
//
//   - price: price, si no last_price; si no, ErrMissingField
//   - cost: obligatorio, sin fallback
//   - competidor i: compN_price, si no competitor_price, si no comp_price, si no 0
//   - volumen de ayer: est_volume_yesterday, si no DefaultVolumeYesterday
//   - fecha: date (YYYY-MM-DD o RFC3339), si no now
func (o MarketObservation) Resolve(now time.Time) (Conditions, error) {
	var c Conditions

	price, err := resolvePrice(o)
	if err != nil {
		return Conditions{}, err
	}
	c.Price = price

	if o.Cost == nil {
		return Conditions{}, MissingField("cost")
	}
	if err := checkAmount("cost", *o.Cost); err != nil {
		return Conditions{}, err
	}
	c.Cost = *o.Cost

	for i, explicit := range []*float64{o.Comp1Price, o.Comp2Price, o.Comp3Price} {
		v, ok := firstPresent(explicit, o.CompetitorPrice, o.CompPrice)
		if !ok {
			c.CompFallback = true
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Conditions{}, InvalidField(compField(i), "not a finite number")
		}
		c.CompPrices[i] = v
	}

	c.VolumeYesterday = DefaultVolumeYesterday
	if o.EstVolumeYesterday != nil {
		if math.IsNaN(*o.EstVolumeYesterday) || math.IsInf(*o.EstVolumeYesterday, 0) {
			return Conditions{}, InvalidField("est_volume_yesterday", "not a finite number")
		}
		c.VolumeYesterday = *o.EstVolumeYesterday
	}

	date, err := ParseDate(o.Date, now)
	if err != nil {
		return Conditions{}, err
	}
	c.Date = date

	return c, nil
}

// AvgCompPrice devuelve la media aritmética de los tres slots de competidor.
func (c Conditions) AvgCompPrice() float64 {
	return (c.CompPrices[0] + c.CompPrices[1] + c.CompPrices[2]) / 3
}

// ParseDate interpreta la fecha de una observación. Vacía = now (truncado al día).
func ParseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, InvalidField("date", "unparseable date "+quote(s))
}

func resolvePrice(o MarketObservation) (float64, error) {
	field := "price"
	p := o.Price
	if p == nil {
		field = "last_price"
		p = o.LastPrice
	}
	if p == nil {
		return 0, MissingField("price")
	}
	if err := checkAmount(field, *p); err != nil {
		return 0, err
	}
	return *p, nil
}

// checkAmount exige un importe finito y no negativo.
func checkAmount(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return InvalidField(field, "not a finite number")
	}
	if v < 0 {
		return InvalidField(field, "must be non-negative")
	}
	return nil
}

func firstPresent(vals ...*float64) (float64, bool) {
	for _, v := range vals {
		if v != nil {
			return *v, true
		}
	}
	return 0, false
}

func compField(i int) string {
	return [...]string{"comp1_price", "comp2_price", "comp3_price"}[i]
}

func quote(s string) string {
	return `"` + s + `"`
}
