package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/fuelpricer/config"
	"github.com/alejandrodnm/fuelpricer/internal/adapters/model"
	"github.com/alejandrodnm/fuelpricer/internal/adapters/notify"
	"github.com/alejandrodnm/fuelpricer/internal/adapters/storage"
	"github.com/alejandrodnm/fuelpricer/internal/domain"
	"github.com/alejandrodnm/fuelpricer/internal/ports"
	"github.com/alejandrodnm/fuelpricer/internal/pricing"
)

// Modos de ejecución.
const (
	modeRecommend = "recommend"
	modeBatch     = "batch"
	modePipeline  = "pipeline"
	modeEvaluate  = "evaluate"
	modeHistory   = "history"
	modeServe     = "serve"
)

// flags agrupa las opciones de línea de comandos de todos los modos.
type flags struct {
	configPath string
	mode       string
	verbose    bool
	logFormat  string
	table      bool
	noStore    bool

	// recommend / batch / pipeline / evaluate
	input   string
	output  string
	holdout float64

	// recommend: observación por flags
	fuel      string
	date      string
	price     optFloat
	lastPrice optFloat
	cost      optFloat
	comp      optFloat
	comp1     optFloat
	comp2     optFloat
	comp3     optFloat
	volume    optFloat

	// history
	days   int
	export string
}

func parseFlags() *flags {
	f := &flags{}
	flag.StringVar(&f.configPath, "config", "config/config.yaml", "path to config file")
	flag.StringVar(&f.mode, "mode", modeRecommend, "recommend|batch|pipeline|evaluate|history|serve")
	flag.BoolVar(&f.verbose, "verbose", false, "set log level to debug")
	flag.StringVar(&f.logFormat, "format", "", "log format: text|json (overrides config)")
	flag.BoolVar(&f.table, "table", false, "print every evaluated candidate (default: compact 1-line)")
	flag.BoolVar(&f.noStore, "no-store", false, "do not persist recommendations")

	flag.StringVar(&f.input, "input", "", "observation JSON (recommend), observations CSV (batch), history CSV (pipeline), parquet dataset (evaluate)")
	flag.StringVar(&f.output, "output", "data/processed/features.parquet", "parquet output (pipeline)")
	flag.Float64Var(&f.holdout, "holdout", 0.2, "evaluate on the last fraction of the dataset; 0 or 1 = all rows")

	flag.StringVar(&f.fuel, "fuel", "", "fuel type: Petrol|Diesel|CNG|Premium; fills cost when -cost is not set")
	flag.StringVar(&f.date, "date", "", "observation date YYYY-MM-DD (default today)")
	flag.Var(&f.price, "price", "today's price")
	flag.Var(&f.lastPrice, "last-price", "fallback when -price is not set")
	flag.Var(&f.cost, "cost", "purchase cost per unit")
	flag.Var(&f.comp, "comp", "competitor price applied to every slot without its own value")
	flag.Var(&f.comp1, "comp1", "competitor 1 price")
	flag.Var(&f.comp2, "comp2", "competitor 2 price")
	flag.Var(&f.comp3, "comp3", "competitor 3 price")
	flag.Var(&f.volume, "volume", "estimated volume yesterday (default 15000)")

	flag.IntVar(&f.days, "days", 30, "history window in days")
	flag.StringVar(&f.export, "export", "", "write history to this CSV file instead of printing it")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()

	cfg, err := config.Load(f.configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", f.configPath)
		os.Exit(1)
	}

	if f.verbose {
		cfg.Log.Level = "debug"
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	setupLogger(cfg.Log)

	slog.Debug("fuelpricer starting",
		"config", f.configPath,
		"mode", f.mode,
		"model", cfg.Model.Kind,
		"storage", cfg.Storage.DSN,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, f, cfg); err != nil {
		slog.Error("fuelpricer failed", "mode", f.mode, "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f *flags, cfg *config.Config) error {
	// Modos que no necesitan el optimizador.
	switch f.mode {
	case modePipeline:
		return runPipeline(ctx, f)
	case modeHistory:
		return runHistory(ctx, f, cfg)
	}

	predictor, err := model.Load(model.Config{
		Kind:       cfg.Model.Kind,
		Path:       cfg.Model.Path,
		URL:        cfg.Model.URL,
		Timeout:    cfg.Model.Timeout,
		RatePerSec: cfg.Model.RatePerSec,
	})
	if err != nil {
		return err
	}

	if f.mode == modeEvaluate {
		return runEvaluate(ctx, f, predictor)
	}

	var store *storage.SQLiteStorage
	if !f.noStore {
		store, err = storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			return fmt.Errorf("open storage %q: %w", cfg.Storage.DSN, err)
		}
		defer store.Close()
	}

	console := notify.NewConsole(f.table)
	svc := newService(cfg, predictor, store, console, f.mode == modeRecommend)

	switch f.mode {
	case modeRecommend:
		return runRecommend(ctx, f, svc)
	case modeBatch:
		return runBatch(ctx, f, svc, console)
	case modeServe:
		return runServe(ctx, cfg, svc, store, modelName(cfg))
	}
	return fmt.Errorf("unknown mode %q", f.mode)
}

// newService conecta optimizador, histórico de sesión, persistencia y consola.
// Solo el modo recommend imprime cada recomendación; batch imprime un resumen al final.
func newService(cfg *config.Config, predictor ports.Predictor, store *storage.SQLiteStorage, console *notify.Console, notifyEach bool) *pricing.Service {
	pcfg := pricing.Config{
		Grid: pricing.GridConfig{
			Radius: cfg.Pricing.GridRadius,
			Step:   cfg.Pricing.GridStep,
		},
		Filter: pricing.FilterConfig{
			MaxDelta:       cfg.Pricing.MaxDelta,
			MaxGapOverComp: cfg.Pricing.MaxGapOverComp,
		},
	}

	var hs ports.HistoryStorage
	if store != nil {
		hs = store
	}
	var n ports.Notifier
	if notifyEach {
		n = console
	}
	return pricing.NewService(pricing.NewOptimizer(pcfg, predictor), domain.NewHistory(), hs, n).
		WithBatchWorkers(cfg.Pricing.BatchWorkers)
}

func modelName(cfg *config.Config) string {
	if cfg.Model.Kind == model.KindHTTP {
		return model.KindHTTP + ":" + cfg.Model.URL
	}
	return model.KindLinear + ":" + cfg.Model.Path
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
