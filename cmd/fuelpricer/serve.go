package main

import (
	"context"
	"time"

	"github.com/alejandrodnm/fuelpricer/config"
	"github.com/alejandrodnm/fuelpricer/internal/adapters/httpapi"
	"github.com/alejandrodnm/fuelpricer/internal/adapters/storage"
	"github.com/alejandrodnm/fuelpricer/internal/ports"
	"github.com/alejandrodnm/fuelpricer/internal/pricing"
)

const shutdownTimeout = 10 * time.Second

// runServe sirve la API hasta SIGINT/SIGTERM y apaga el servidor ordenadamente.
func runServe(ctx context.Context, cfg *config.Config, svc *pricing.Service, store *storage.SQLiteStorage, modelName string) error {
	var hs ports.HistoryStorage
	if store != nil {
		hs = store
	}

	srv := httpapi.New(httpapi.Config{
		Addr:           cfg.HTTP.Addr,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		ModelName:      modelName,
		Service:        svc,
		Storage:        hs,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
