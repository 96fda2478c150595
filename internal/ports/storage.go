package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/meanrev/internal/domain"
)

// Storage persiste el cache de precios y el historial de análisis.
type Storage interface {
	// SavePrices guarda (o reemplaza) los cierres de la serie.
	SavePrices(ctx context.Context, series domain.PriceSeries) error

	// LoadPrices devuelve los cierres cacheados de ticker en [from, to].
	// Una serie vacía no es error: significa que no hay cache.
	LoadPrices(ctx context.Context, ticker string, from, to time.Time) (domain.PriceSeries, error)

	// SaveRun persiste el resumen de un análisis.
	SaveRun(ctx context.Context, run domain.Run) error

	// GetRuns devuelve los últimos limit análisis, el más reciente primero.
	GetRuns(ctx context.Context, limit int) ([]domain.Run, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
