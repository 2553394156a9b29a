package domain

import "time"

// FeatureColumns es el orden exacto de columnas con el que se entrenó el modelo.
// Cambiar el orden produce predicciones erróneas sin ningún error visible.
var FeatureColumns = []string{
	"price", "cost",
	"comp1_price", "comp2_price", "comp3_price",
	"avg_comp_price", "price_spread_vs_comp",
	"lag_price_1", "lag_volume_1",
	"ma_volume_7", "ma_volume_14",
	"dayofweek", "month",
}

// FeatureVector es la entrada del modelo de demanda.
type FeatureVector struct {
	Price             float64
	Cost              float64
	Comp1Price        float64
	Comp2Price        float64
	Comp3Price        float64
	AvgCompPrice      float64
	PriceSpreadVsComp float64
	LagPrice1         float64
	LagVolume1        float64
	MAVolume7         float64
	MAVolume14        float64
	DayOfWeek         float64 // 0 = lunes … 6 = domingo
	Month             float64 // 1 … 12
}

// Values devuelve el vector en el orden de FeatureColumns.
func (f FeatureVector) Values() []float64 {
	return []float64{
		f.Price, f.Cost,
		f.Comp1Price, f.Comp2Price, f.Comp3Price,
		f.AvgCompPrice, f.PriceSpreadVsComp,
		f.LagPrice1, f.LagVolume1,
		f.MAVolume7, f.MAVolume14,
		f.DayOfWeek, f.Month,
	}
}

// Assemble resuelve la observación y construye el vector de features al precio base.
func Assemble(obs MarketObservation, now time.Time) (FeatureVector, error) {
	c, err := obs.Resolve(now)
	if err != nil {
		return FeatureVector{}, err
	}
	return c.Features(), nil
}

// Features construye el vector al precio base de las condiciones.
func (c Conditions) Features() FeatureVector {
	return c.FeaturesAt(c.Price)
}

// FeaturesAt construye el vector para un precio candidato. Solo price y
// price_spread_vs_comp dependen del candidato; el resto queda fijo.
//
// En inferencia no hay histórico real: lag_price_1 es el precio base y las medias
// móviles de volumen repiten el volumen de ayer. Es la misma aproximación con la que
// se sirve el modelo hoy, aunque difiera del pipeline de entrenamiento.
func (c Conditions) FeaturesAt(price float64) FeatureVector {
	avg := c.AvgCompPrice()
	return FeatureVector{
		Price:             price,
		Cost:              c.Cost,
		Comp1Price:        c.CompPrices[0],
		Comp2Price:        c.CompPrices[1],
		Comp3Price:        c.CompPrices[2],
		AvgCompPrice:      avg,
		PriceSpreadVsComp: price - avg,
		LagPrice1:         c.Price,
		LagVolume1:        c.VolumeYesterday,
		MAVolume7:         c.VolumeYesterday,
		MAVolume14:        c.VolumeYesterday,
		DayOfWeek:         float64(Weekday(c.Date)),
		Month:             float64(c.Date.Month()),
	}
}

// Weekday devuelve el día de la semana con lunes = 0 y domingo = 6.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
