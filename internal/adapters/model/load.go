package model

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/fuelpricer/internal/ports"
)

// Tipos de predictor soportados.
const (
	KindLinear = "linear"
	KindHTTP   = "http"
)

// Config selecciona y configura el predictor de demanda.
type Config struct {
	Kind       string        // linear | http
	Path       string        // artefacto para KindLinear
	URL        string        // base URL para KindHTTP
	Timeout    time.Duration // KindHTTP
	RatePerSec float64       // KindHTTP
}

// Load construye el predictor una sola vez; el resultado se reutiliza en toda la sesión.
func Load(cfg Config) (ports.Predictor, error) {
	switch cfg.Kind {
	case KindLinear, "":
		m, err := LoadLinear(cfg.Path)
		if err != nil {
			return nil, err
		}
		slog.Info("demand model loaded", "kind", KindLinear, "path", cfg.Path, "name", m.Name())
		return m, nil
	case KindHTTP:
		if cfg.URL == "" {
			return nil, fmt.Errorf("model.Load: kind %q requires a url", KindHTTP)
		}
		slog.Info("demand model configured", "kind", KindHTTP, "url", cfg.URL)
		return NewHTTPPredictor(cfg.URL, cfg.Timeout, cfg.RatePerSec), nil
	}
	return nil, fmt.Errorf("model.Load: unknown model kind %q", cfg.Kind)
}
