package domain

// Recommendation es el resultado publicado: precio, volumen y beneficio esperados,
// todos redondeados a céntimos.
type Recommendation struct {
	RecommendedPrice float64 `json:"recommended_price"`
	ExpectedVolume   float64 `json:"expected_volume"`
	ExpectedProfit   float64 `json:"expected_profit"`
}

// NewRecommendation redondea el mejor candidato. El beneficio se recalcula a partir
// del precio y volumen ya redondeados para que el triple publicado sea coherente.
func NewRecommendation(price, cost, volume float64) Recommendation {
	p := Round2(price)
	v := Round2(volume)
	return Recommendation{
		RecommendedPrice: p,
		ExpectedVolume:   v,
		ExpectedProfit:   Round2(Profit(p, cost, v)),
	}
}

// Candidate es un precio evaluado durante la búsqueda.
type Candidate struct {
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
	Profit float64 `json:"profit"`
}

// Report agrupa la recomendación con el detalle de la búsqueda, para consola y API.
type Report struct {
	Conditions     Conditions     `json:"-"`
	Recommendation Recommendation `json:"recommendation"`
	Candidates     []Candidate    `json:"candidates"`
	GridSize       int            `json:"grid_size"`
	// FilterFallback indica que las reglas vaciaron la rejilla y se usó la rejilla completa.
	FilterFallback bool `json:"filter_fallback"`
}

// Margin devuelve el margen unitario del precio recomendado.
func (r Report) Margin() float64 {
	return Round2(r.Recommendation.RecommendedPrice - r.Conditions.Cost)
}
