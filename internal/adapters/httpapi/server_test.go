package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alejandrodnm/fuelpricer/internal/adapters/httpapi"
	"github.com/alejandrodnm/fuelpricer/internal/adapters/model"
	"github.com/alejandrodnm/fuelpricer/internal/adapters/storage"
	"github.com/alejandrodnm/fuelpricer/internal/domain"
	"github.com/alejandrodnm/fuelpricer/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

// linearDemand: volumen = 20000 - 500·price + 500·avg_comp_price.
var linearDemand = model.Func(func(f domain.FeatureVector) (float64, error) {
	return 20000 - 500*f.Price + 500*f.AvgCompPrice, nil
})

func newServer(t *testing.T, predictor model.Func, withStorage bool) *httpapi.Server {
	t.Helper()

	cfg := pricing.DefaultConfig()
	cfg.Now = func() time.Time { return time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC) }

	sc := httpapi.Config{Addr: ":0", ModelName: "test"}
	if withStorage {
		db, err := storage.NewSQLiteStorage(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		sc.Storage = db
	}
	sc.Service = pricing.NewService(pricing.NewOptimizer(cfg, predictor), domain.NewHistory(), sc.Storage, nil)
	return httpapi.New(sc)
}

func do(t *testing.T, s *httpapi.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

const stationBody = `{"date":"2024-06-03","price":95.5,"cost":84.5,"comp1_price":96,"comp2_price":96,"comp3_price":96}`

// --- tests ---

func TestRecommend_OK(t *testing.T) {
	s := newServer(t, linearDemand, false)

	rec := do(t, s, http.MethodPost, "/api/recommendations", stationBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 97.0, resp["recommended_price"])
	assert.Equal(t, 19500.0, resp["expected_volume"])
	assert.Equal(t, 243750.0, resp["expected_profit"])
	assert.Equal(t, false, resp["filter_fallback"])
	assert.Equal(t, 31.0, resp["candidates_considered"])
	assert.Equal(t, 41.0, resp["grid_size"])
	assert.NotEmpty(t, resp["id"])
}

func TestRecommend_FuelPresetCost(t *testing.T) {
	s := newServer(t, linearDemand, false)

	rec := do(t, s, http.MethodPost, "/api/recommendations",
		`{"fuel_type":"petrol","price":95.5,"competitor_price":96}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRecommend_DashboardKeysDoNotChangeResult(t *testing.T) {
	dashboardBody := strings.TrimSuffix(stationBody, "}") +
		`,"demand_index":0.75,"min_margin":3.0,"stock":12000,"boost":true}`

	decode := func(rec *httptest.ResponseRecorder) map[string]any {
		t.Helper()
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp
	}

	plain := decode(do(t, newServer(t, linearDemand, false), http.MethodPost, "/api/recommendations", stationBody))
	dashboard := decode(do(t, newServer(t, linearDemand, false), http.MethodPost, "/api/recommendations", dashboardBody))

	for _, k := range []string{"recommended_price", "expected_volume", "expected_profit", "candidates_considered"} {
		assert.Equal(t, plain[k], dashboard[k], k)
	}
	assert.Equal(t, 97.0, dashboard["recommended_price"])
}

func TestRecommend_ErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		predictor model.Func
		body      string
		status    int
	}{
		{"missing cost", linearDemand, `{"price":95.5,"comp_price":96}`, http.StatusBadRequest},
		{"missing price", linearDemand, `{"cost":84.5}`, http.StatusBadRequest},
		{"bad json", linearDemand, `{"price":`, http.StatusBadRequest},
		{"unknown fuel", linearDemand, `{"fuel_type":"kerosene","price":95.5}`, http.StatusBadRequest},
		{"bad date", linearDemand, `{"date":"yesterday","price":95.5,"cost":84.5}`, http.StatusBadRequest},
		{
			"model failure",
			model.Func(func(domain.FeatureVector) (float64, error) { return 0, assert.AnError }),
			stationBody,
			http.StatusBadGateway,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer(t, tt.predictor, false)
			rec := do(t, s, http.MethodPost, "/api/recommendations", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestHistory_Session(t *testing.T) {
	s := newServer(t, linearDemand, false)

	rec := do(t, s, http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":0`)
	assert.Contains(t, rec.Body.String(), `"entries":[]`)

	do(t, s, http.MethodPost, "/api/recommendations", stationBody)
	do(t, s, http.MethodPost, "/api/recommendations", stationBody)

	rec = do(t, s, http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Source  string                `json:"source"`
		Count   int                   `json:"count"`
		Entries []domain.HistoryEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "session", resp.Source)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, 97.0, resp.Entries[0].RecommendedPrice)
}

func TestHistory_StorageRange(t *testing.T) {
	s := newServer(t, linearDemand, true)
	do(t, s, http.MethodPost, "/api/recommendations", stationBody)

	today := time.Now().UTC().Format("2006-01-02")
	rec := do(t, s, http.MethodGet, "/api/history?from="+today+"&to="+today, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"source":"storage"`)
	assert.Contains(t, rec.Body.String(), `"count":1`)
}

func TestHistory_RangeWithoutStorage(t *testing.T) {
	s := newServer(t, linearDemand, false)
	rec := do(t, s, http.MethodGet, "/api/history?from=2024-01-01", "")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestHistoryCSV(t *testing.T) {
	s := newServer(t, linearDemand, false)
	do(t, s, http.MethodPost, "/api/recommendations", stationBody)

	rec := do(t, s, http.MethodGet, "/api/history.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id,created_at"))
	assert.Contains(t, lines[1], "97.00,19500.00,243750.00,false")
}

func TestHealth(t *testing.T) {
	s := newServer(t, linearDemand, false)
	rec := do(t, s, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"model":"test"`)
}

func TestShutdownWithoutStart(t *testing.T) {
	s := newServer(t, linearDemand, false)
	assert.NoError(t, s.Shutdown(context.Background()))
}
