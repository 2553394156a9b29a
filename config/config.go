package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del recomendador.
type Config struct {
	Pricing PricingConfig `yaml:"pricing"`
	Model   ModelConfig   `yaml:"model"`
	Storage StorageConfig `yaml:"storage"`
	HTTP    HTTPConfig    `yaml:"http"`
	Log     LogConfig     `yaml:"log"`
}

// PricingConfig controla la rejilla de candidatos y las reglas de negocio.
type PricingConfig struct {
	GridRadius     float64 `yaml:"grid_radius" default:"2.0" validate:"gt=0"`
	GridStep       float64 `yaml:"grid_step" default:"0.1" validate:"gt=0,ltefield=GridRadius"`
	MaxDelta       float64 `yaml:"max_delta" default:"1.5" validate:"gt=0"`          // regla A: |p - base|
	MaxGapOverComp float64 `yaml:"max_gap_over_comp" default:"1.0" validate:"gte=0"` // regla B: p - avg_comp
	BatchWorkers   int     `yaml:"batch_workers" validate:"gte=0"`                   // 0 = NumCPU × 2
}

// ModelConfig selecciona el predictor de demanda.
type ModelConfig struct {
	Kind       string        `yaml:"kind" default:"linear" validate:"oneof=linear http"`
	Path       string        `yaml:"path" default:"models/linear_model.json"`
	URL        string        `yaml:"url" validate:"omitempty,url"`
	Timeout    time.Duration `yaml:"timeout" default:"10s"`
	RatePerSec float64       `yaml:"rate_per_sec" default:"5" validate:"gt=0"`
}

// StorageConfig controla dónde se persiste el histórico.
type StorageConfig struct {
	DSN string `yaml:"dsn" default:"fuelpricer.db"` // ruta al archivo SQLite, o ":memory:"
}

// HTTPConfig controla el modo servidor.
type HTTPConfig struct {
	Addr           string   `yaml:"addr" default:":8080" validate:"required"`
	AllowedOrigins []string `yaml:"allowed_origins" default:"[\"*\"]"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"text" validate:"oneof=text json"`
}

var validate = validator.New()

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Orden: defaults de los tags, YAML, entorno. Un 0 explícito en el YAML se respeta. Un path inexistente no es
// error: se usan los defaults.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// sin archivo: defaults + entorno
	default:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return &cfg, nil
}

// Validate comprueba rangos y combinaciones de campos.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Model.Kind == "http" && c.Model.URL == "" {
		return errors.New("invalid config: model.url is required when model.kind is http")
	}
	return nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("MODEL_PATH"); v != "" {
		cfg.Model.Path = v
	}
	if v := os.Getenv("MODEL_KIND"); v != "" {
		cfg.Model.Kind = v
	}
	if v := os.Getenv("MODEL_URL"); v != "" {
		cfg.Model.URL = v
	}
	if v := os.Getenv("STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
}
