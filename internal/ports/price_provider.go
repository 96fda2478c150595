package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/meanrev/internal/domain"
)

// PriceProvider obtiene cierres ajustados diarios de una fuente externa.
type PriceProvider interface {
	// FetchHistory devuelve los cierres de ticker entre from y to (ambos incluidos).
	// Un cero en from o to deja ese extremo abierto.
	FetchHistory(ctx context.Context, ticker string, from, to time.Time) (domain.PriceSeries, error)
}
