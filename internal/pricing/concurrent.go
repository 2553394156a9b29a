package pricing

// concurrent.go — worker pool para evaluar un lote de observaciones en paralelo.
//
// Con un predictor remoto cada fila es una llamada HTTP; el pool las solapa.
// El orden de los resultados es el del lote, no el de finalización.

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/alejandrodnm/fuelpricer/internal/domain"
)

type evaluation struct {
	report domain.Report
	err    error
}

// evaluateConcurrent evalúa cada observación del lote con un pool de workers.
// Las filas que no llegan a evaluarse porque ctx se canceló quedan con ctx.Err().
//
// Si workers <= 0 usa runtime.NumCPU() × 2.
func evaluateConcurrent(
	ctx context.Context,
	optimizer *Optimizer,
	batch []domain.MarketObservation,
	workers int,
) []evaluation {
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	if workers > len(batch) {
		workers = len(batch)
	}

	results := make([]evaluation, len(batch))
	workCh := make(chan int, len(batch))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range workCh {
				if err := ctx.Err(); err != nil {
					results[idx] = evaluation{err: err}
					continue
				}
				report, err := optimizer.Evaluate(ctx, batch[idx])
				results[idx] = evaluation{report: report, err: err}
			}
		}()
	}

	for i := range batch {
		workCh <- i
	}
	close(workCh)
	wg.Wait()

	slog.Debug("concurrent evaluation complete",
		"rows", len(batch),
		"workers", workers,
	)
	return results
}
