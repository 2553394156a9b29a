package domain

import "github.com/shopspring/decimal"

// PricePrecision es la precisión (decimales) de precios, volúmenes y beneficios publicados.
const PricePrecision = 2

// Round2 redondea a céntimos con aritmética decimal (half away from zero),
// evitando candidatos casi duplicados por errores de coma flotante.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(PricePrecision).InexactFloat64()
}

// Profit calcula el beneficio esperado: (price - cost) × volume.
func Profit(price, cost, volume float64) float64 {
	return (price - cost) * volume
}
