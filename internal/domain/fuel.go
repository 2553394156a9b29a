package domain

import (
	"fmt"
	"strings"
)

// FuelType es el tipo de combustible de la estación.
type FuelType string

const (
	FuelPetrol  FuelType = "Petrol"
	FuelDiesel  FuelType = "Diesel"
	FuelCNG     FuelType = "CNG"
	FuelPremium FuelType = "Premium (XP95)"
)

// defaultCosts es el coste de compra por defecto de cada combustible (por litro).
var defaultCosts = map[FuelType]float64{
	FuelPetrol:  84.5,
	FuelDiesel:  78.2,
	FuelCNG:     67.3,
	FuelPremium: 89.6,
}

// ParseFuelType acepta el nombre del combustible sin distinguir mayúsculas.
// "premium" y "xp95" son alias de FuelPremium.
func ParseFuelType(s string) (FuelType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "petrol":
		return FuelPetrol, nil
	case "diesel":
		return FuelDiesel, nil
	case "cng":
		return FuelCNG, nil
	case "premium", "xp95", "premium (xp95)":
		return FuelPremium, nil
	}
	return "", fmt.Errorf("%w: unknown fuel type %q", ErrInvalidInput, s)
}

// DefaultCost devuelve el coste preconfigurado del combustible.
func (f FuelType) DefaultCost() (float64, bool) {
	c, ok := defaultCosts[f]
	return c, ok
}

// WithFuelDefaults completa cost con el coste preconfigurado del combustible
// cuando la observación no lo trae. Un fuel_type desconocido es un error;
// uno vacío deja la observación intacta.
func (o MarketObservation) WithFuelDefaults() (MarketObservation, error) {
	if strings.TrimSpace(o.FuelType) == "" {
		return o, nil
	}
	fuel, err := ParseFuelType(o.FuelType)
	if err != nil {
		return o, err
	}
	o.FuelType = string(fuel)
	if o.Cost == nil {
		if c, ok := fuel.DefaultCost(); ok {
			o.Cost = Float(c)
		}
	}
	return o, nil
}
