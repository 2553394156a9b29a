package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/alejandrodnm/fuelpricer/internal/domain"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout    = 5 * time.Second
	defaultRatePerSec = 20

	maxRetries    = 2
	baseRetryWait = 200 * time.Millisecond
)

// predictRequest es el cuerpo enviado al servicio de modelo.
type predictRequest struct {
	Columns []string    `json:"columns"`
	Rows    [][]float64 `json:"rows"`
}

type predictResponse struct {
	Predictions []float64 `json:"predictions"`
}

// HTTPPredictor implementa ports.Predictor contra un servicio de modelo remoto
// (POST {base}/predict). Todas las filas van en una sola petición.
type HTTPPredictor struct {
	http    *http.Client
	url     string
	limiter *rate.Limiter
}

// NewHTTPPredictor crea el cliente. timeout <= 0 y ratePerSec <= 0 usan los defaults.
func NewHTTPPredictor(baseURL string, timeout time.Duration, ratePerSec float64) *HTTPPredictor {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if ratePerSec <= 0 {
		ratePerSec = defaultRatePerSec
	}
	return &HTTPPredictor{
		http:    &http.Client{Timeout: timeout},
		url:     strings.TrimRight(baseURL, "/") + "/predict",
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), 1),
	}
}

// Predict envía las filas en el orden de domain.FeatureColumns.
func (p *HTTPPredictor) Predict(ctx context.Context, rows []domain.FeatureVector) ([]float64, error) {
	body := predictRequest{
		Columns: domain.FeatureColumns,
		Rows:    make([][]float64, len(rows)),
	}
	for i, r := range rows {
		body.Rows[i] = r.Values()
	}

	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("model.HTTPPredictor: marshal body: %w", err)
	}

	var out predictResponse
	if err := p.doWithRetry(ctx, b, &out); err != nil {
		return nil, fmt.Errorf("model.HTTPPredictor: %w", err)
	}
	return out.Predictions, nil
}

// doWithRetry reintenta solo errores de transporte, 429 y 5xx.
func (p *HTTPPredictor) doWithRetry(ctx context.Context, body []byte, out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := p.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := p.http.Do(req)
		if err != nil {
			if attempt == maxRetries || ctx.Err() != nil {
				return fmt.Errorf("request failed on attempt %d of %d: %w", attempt+1, maxRetries+1, err)
			}
			p.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			slog.Warn("model service unavailable, retrying", "status", resp.StatusCode, "attempt", attempt+1)
			p.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		}

		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (p *HTTPPredictor) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
