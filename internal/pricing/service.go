package pricing

import (
	"context"
	"log/slog"
	"time"

	"github.com/alejandrodnm/fuelpricer/internal/domain"
	"github.com/alejandrodnm/fuelpricer/internal/ports"
	"github.com/google/uuid"
)

// Result es una recomendación ya registrada en el histórico.
type Result struct {
	Entry  domain.HistoryEntry
	Report domain.Report
}

// BatchItem es el resultado de una fila de un lote. Err != nil si la fila fue rechazada.
type BatchItem struct {
	Row    int
	Result Result
	Err    error
}

// Service orquesta optimizador, histórico de sesión, notificador y persistencia.
type Service struct {
	optimizer *Optimizer
	history   *domain.History
	storage   ports.HistoryStorage
	notifier  ports.Notifier
	workers   int
	now       func() time.Time
}

// NewService crea un Service. history, storage y notifier son opcionales (nil).
func NewService(
	optimizer *Optimizer,
	history *domain.History,
	storage ports.HistoryStorage,
	notifier ports.Notifier,
) *Service {
	return &Service{
		optimizer: optimizer,
		history:   history,
		storage:   storage,
		notifier:  notifier,
		now:       time.Now,
	}
}

// Recommend calcula la recomendación, la añade al histórico y la notifica/persiste.
// Los fallos de notificación o persistencia no invalidan la recomendación.
func (s *Service) Recommend(ctx context.Context, obs domain.MarketObservation) (Result, error) {
	start := time.Now()

	report, err := s.optimizer.Evaluate(ctx, obs)
	if err != nil {
		return Result{}, err
	}
	return s.record(ctx, obs, report, time.Since(start)), nil
}

// record registra una recomendación ya calculada: histórico, notificación y persistencia.
func (s *Service) record(ctx context.Context, obs domain.MarketObservation, report domain.Report, took time.Duration) Result {
	entry := domain.HistoryEntry{
		ID:             uuid.NewString(),
		CreatedAt:      s.now().UTC(),
		FuelType:       obs.FuelType,
		BasePrice:      report.Conditions.Price,
		Cost:           report.Conditions.Cost,
		AvgCompPrice:   domain.Round2(report.Conditions.AvgCompPrice()),
		FilterFallback: report.FilterFallback,
		Recommendation: report.Recommendation,
	}

	if s.history != nil {
		s.history.Append(entry)
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, report); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	if s.storage != nil {
		if err := s.storage.SaveRecommendation(ctx, entry); err != nil {
			slog.Warn("storage error", "err", err, "id", entry.ID)
		}
	}

	slog.Info("recommendation issued",
		"id", entry.ID,
		"fuel_type", entry.FuelType,
		"base_price", entry.BasePrice,
		"recommended_price", entry.RecommendedPrice,
		"expected_profit", entry.ExpectedProfit,
		"fallback", entry.FilterFallback,
		"duration", took.Round(time.Microsecond),
	)

	return Result{Entry: entry, Report: report}
}

// RecommendBatch procesa un lote de observaciones. Las filas se evalúan en paralelo
// y se registran en el orden del lote. Una fila rechazada no detiene el lote;
// su error queda en BatchItem.Err. Solo un contexto cancelado corta el lote.
func (s *Service) RecommendBatch(ctx context.Context, batch []domain.MarketObservation) ([]BatchItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	evals := evaluateConcurrent(ctx, s.optimizer, batch, s.workers)
	took := time.Since(start)

	items := make([]BatchItem, 0, len(batch))
	for i, ev := range evals {
		if err := ctx.Err(); err != nil {
			return items, err
		}

		item := BatchItem{Row: i + 1, Err: ev.err}
		if ev.err != nil {
			slog.Warn("batch row rejected", "row", i+1, "err", ev.err)
		} else {
			item.Result = s.record(ctx, batch[i], ev.report, took)
		}
		items = append(items, item)
	}
	return items, nil
}

// WithBatchWorkers fija el tamaño del pool de RecommendBatch. n <= 0 = NumCPU × 2.
func (s *Service) WithBatchWorkers(n int) *Service {
	s.workers = n
	return s
}

// History devuelve el histórico de sesión (puede ser nil).
func (s *Service) History() *domain.History {
	return s.history
}
