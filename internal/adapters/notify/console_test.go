package notify_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alejandrodnm/fuelpricer/internal/adapters/notify"
	"github.com/alejandrodnm/fuelpricer/internal/domain"
	"github.com/alejandrodnm/fuelpricer/internal/pipeline"
	"github.com/alejandrodnm/fuelpricer/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeReport(fallback bool) domain.Report {
	return domain.Report{
		Conditions: domain.Conditions{Price: 95.50, Cost: 84.50, CompPrices: [3]float64{96, 96, 96}},
		Recommendation: domain.Recommendation{
			RecommendedPrice: 96.00,
			ExpectedVolume:   20000,
			ExpectedProfit:   230000,
		},
		Candidates: []domain.Candidate{
			{Price: 95.90, Volume: 20050, Profit: 228570},
			{Price: 96.00, Volume: 20000, Profit: 230000},
		},
		GridSize:       41,
		FilterFallback: fallback,
	}
}

func TestConsole_Notify_Compact(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	require.NoError(t, n.Notify(context.Background(), makeReport(false)))

	out := buf.String()
	assert.Contains(t, out, "95.50 → 96.00")
	assert.Contains(t, out, "margin 11.50")
	assert.Contains(t, out, "profit 230000.00")
	assert.Contains(t, out, "(2/41 candidates)")
	assert.NotContains(t, out, "guardrails bypassed")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestConsole_Notify_FallbackWarning(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	require.NoError(t, n.Notify(context.Background(), makeReport(true)))
	assert.Contains(t, buf.String(), "guardrails bypassed")
}

func TestConsole_Notify_Table(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true)

	require.NoError(t, n.Notify(context.Background(), makeReport(false)))

	out := buf.String()
	assert.Contains(t, out, "95.90")
	assert.Contains(t, out, "228570.00")
	assert.Contains(t, out, "★")
	assert.Contains(t, out, "+0.50")
}

func TestConsole_PrintHistory(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	n.PrintHistory([]domain.HistoryEntry{
		{
			CreatedAt:      time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
			FuelType:       "Diesel",
			BasePrice:      90.10,
			Cost:           78.20,
			Recommendation: domain.Recommendation{RecommendedPrice: 91.30, ExpectedVolume: 15000, ExpectedProfit: 196500},
		},
		{FilterFallback: true},
	})

	out := buf.String()
	assert.Contains(t, out, "Diesel")
	assert.Contains(t, out, "91.30")
	assert.Contains(t, out, "bypassed")
	assert.Contains(t, out, "2 recommendations")
}

func TestConsole_PrintHistory_Empty(t *testing.T) {
	var buf bytes.Buffer
	notify.NewConsoleWriter(&buf, false).PrintHistory(nil)
	assert.Contains(t, buf.String(), "No recommendations recorded yet.")
}

func TestConsole_PrintBatch(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	n.PrintBatch([]pricing.BatchItem{
		{Row: 1, Result: pricing.Result{Entry: domain.HistoryEntry{
			FuelType:       "CNG",
			BasePrice:      70,
			Recommendation: domain.Recommendation{RecommendedPrice: 71.5},
		}}},
		{Row: 2, Err: errors.New("missing required field: cost")},
	})

	out := buf.String()
	assert.Contains(t, out, "71.50")
	assert.Contains(t, out, "missing required field: cost")
	assert.Contains(t, out, "2 rows, 1 rejected")
}

func TestConsole_PrintEvaluation(t *testing.T) {
	var buf bytes.Buffer
	notify.NewConsoleWriter(&buf, false).PrintEvaluation(pipeline.Metrics{Rows: 10, MAE: 250, MeanVolume: 10000})
	assert.Contains(t, buf.String(), "MAE = 250.00")
	assert.Contains(t, buf.String(), "2.5%")
}
