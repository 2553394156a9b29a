package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/fuelpricer/internal/domain"
)

// HistoryStorage persiste las recomendaciones emitidas.
type HistoryStorage interface {
	// SaveRecommendation añade una entrada al histórico. Nunca sobreescribe.
	SaveRecommendation(ctx context.Context, entry domain.HistoryEntry) error

	// GetHistory devuelve las entradas creadas en el rango dado, de la más antigua a la más reciente.
	GetHistory(ctx context.Context, from, to time.Time) ([]domain.HistoryEntry, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
