package ports

import (
	"context"

	"github.com/alejandrodnm/fuelpricer/internal/domain"
)

// Notifier presenta la recomendación al operador.
type Notifier interface {
	// Notify muestra la recomendación y, según la implementación, el detalle de candidatos.
	Notify(ctx context.Context, report domain.Report) error
}
