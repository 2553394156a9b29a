package dataset_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alejandrodnm/fuelpricer/internal/adapters/dataset"
	"github.com/alejandrodnm/fuelpricer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadObservationJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obs.json")
	body := `{"date":"2024-06-03","fuel_type":"Petrol","price":95.5,"cost":84.5,"competitor_price":96}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	obs, err := dataset.ReadObservationJSON(path)
	require.NoError(t, err)

	assert.Equal(t, "2024-06-03", obs.Date)
	assert.Equal(t, "Petrol", obs.FuelType)
	require.NotNil(t, obs.Price)
	assert.Equal(t, 95.5, *obs.Price)
	require.NotNil(t, obs.CompetitorPrice)
	assert.Equal(t, 96.0, *obs.CompetitorPrice)
	assert.Nil(t, obs.Comp1Price)
	assert.Nil(t, obs.EstVolumeYesterday)
}

func TestDecodeObservation_IgnoresDashboardKeys(t *testing.T) {
	plain := `{"fuel_type":"Petrol","price":95.5,"cost":84.5,"comp1_price":96,"comp2_price":96,"comp3_price":96}`
	dashboard := `{"fuel_type":"Petrol","price":95.5,"cost":84.5,"comp1_price":96,"comp2_price":96,"comp3_price":96,` +
		`"demand_index":0.75,"min_margin":3.0,"stock":12000,"boost":true}`

	want, err := dataset.DecodeObservation([]byte(plain))
	require.NoError(t, err)
	got, err := dataset.DecodeObservation([]byte(dashboard))
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestDecodeObservation_WrongType(t *testing.T) {
	_, err := dataset.DecodeObservation([]byte(`{"price":"cheap"}`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReadObservationsCSV(t *testing.T) {
	in := strings.Join([]string{
		"date,fuel_type,price,last_price,cost,comp1_price,comp_price,notes",
		"2024-06-03,Petrol,95.5,,84.5,96,,first",
		"2024-06-04,Diesel,,90.1,78.2,,91,",
	}, "\n")

	obs, err := dataset.ReadObservationsCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, obs, 2)

	assert.Equal(t, 95.5, *obs[0].Price)
	assert.Nil(t, obs[0].LastPrice)
	assert.Equal(t, 96.0, *obs[0].Comp1Price)
	assert.Nil(t, obs[0].CompPrice)

	assert.Equal(t, "Diesel", obs[1].FuelType)
	assert.Nil(t, obs[1].Price)
	assert.Equal(t, 90.1, *obs[1].LastPrice)
	assert.Equal(t, 91.0, *obs[1].CompPrice)
}

func TestReadObservationsCSV_NonNumeric(t *testing.T) {
	in := "price,cost\n95.5,84.5\n95.5,n/a\n"
	_, err := dataset.ReadObservationsCSV(strings.NewReader(in))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), "cost")
}

func TestReadObservationsCSV_Empty(t *testing.T) {
	obs, err := dataset.ReadObservationsCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, obs)
}

func TestWriteHistoryCSV(t *testing.T) {
	var buf bytes.Buffer
	err := dataset.WriteHistoryCSV(&buf, []domain.HistoryEntry{
		{
			ID:             "abc",
			CreatedAt:      time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC),
			FuelType:       "Petrol",
			BasePrice:      95.5,
			Cost:           84.5,
			AvgCompPrice:   96,
			FilterFallback: true,
			Recommendation: domain.Recommendation{RecommendedPrice: 97, ExpectedVolume: 19500, ExpectedProfit: 243750},
		},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(dataset.HistoryColumns, ","), lines[0])
	assert.Equal(t, "abc,2024-06-03T09:30:00Z,Petrol,95.50,84.50,96.00,97.00,19500.00,243750.00,true", lines[1])
}
