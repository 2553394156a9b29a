package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alejandrodnm/fuelpricer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptFloat(t *testing.T) {
	var o optFloat
	assert.Equal(t, "", o.String())

	require.NoError(t, o.Set("0"))
	require.NotNil(t, o.v)
	assert.Equal(t, 0.0, *o.v)
	assert.Equal(t, "0", o.String())

	assert.Error(t, o.Set("cheap"))
}

func TestObservationFromFlags_FlagsOverrideInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"price":95.5,"cost":84.5,"comp_price":96}`), 0o644))

	f := &flags{input: path}
	require.NoError(t, f.price.Set("97.1"))
	require.NoError(t, f.comp1.Set("95"))

	obs, err := observationFromFlags(f)
	require.NoError(t, err)
	assert.Equal(t, 97.1, *obs.Price)
	assert.Equal(t, 84.5, *obs.Cost)
	assert.Equal(t, 95.0, *obs.Comp1Price)
	assert.Equal(t, 96.0, *obs.CompPrice)
}

func TestObservationFromFlags_FuelPresetCost(t *testing.T) {
	f := &flags{fuel: "diesel"}
	require.NoError(t, f.price.Set("90"))

	obs, err := observationFromFlags(f)
	require.NoError(t, err)
	assert.Equal(t, string(domain.FuelDiesel), obs.FuelType)
	require.NotNil(t, obs.Cost)
	assert.Equal(t, 78.2, *obs.Cost)
}

func TestObservationFromFlags_UnknownFuel(t *testing.T) {
	_, err := observationFromFlags(&flags{fuel: "kerosene"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
