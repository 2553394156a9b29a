package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alejandrodnm/fuelpricer/config"
	"github.com/alejandrodnm/fuelpricer/internal/adapters/dataset"
	"github.com/alejandrodnm/fuelpricer/internal/adapters/notify"
	"github.com/alejandrodnm/fuelpricer/internal/adapters/storage"
)

// runHistory lista (o exporta a CSV) las recomendaciones persistidas de los últimos -days días.
func runHistory(ctx context.Context, f *flags, cfg *config.Config) error {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		return fmt.Errorf("open storage %q: %w", cfg.Storage.DSN, err)
	}
	defer store.Close()

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -f.days)
	entries, err := store.GetHistory(ctx, from, to)
	if err != nil {
		return err
	}

	if f.export == "" {
		notify.NewConsole(false).PrintHistory(entries)
		return nil
	}

	out, err := os.Create(f.export)
	if err != nil {
		return fmt.Errorf("create %q: %w", f.export, err)
	}
	defer out.Close()

	if err := dataset.WriteHistoryCSV(out, entries); err != nil {
		return err
	}
	fmt.Printf("Exported %d recommendations to %s\n", len(entries), f.export)
	return nil
}
