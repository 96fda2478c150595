package ports

import (
	"context"

	"github.com/alejandrodnm/meanrev/internal/domain"
)

// Notifier presenta los resultados al usuario.
type Notifier interface {
	// NotifyAnalysis muestra el resumen de un par (o ticker) y las últimas filas.
	NotifyAnalysis(ctx context.Context, a domain.Analysis) error

	// NotifyScreen muestra el ranking de pares y las correlaciones más altas.
	NotifyScreen(ctx context.Context, scores []domain.PairScore, corr domain.CorrelationMatrix) error
}
