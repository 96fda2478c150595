package engine

import (
	"math"

	"github.com/alejandrodnm/meanrev/internal/domain"
)

// Signals mapea cada z-score a una posición, índice por índice y sin estado.
func Signals(z []float64, nStd float64) []domain.Signal {
	out := make([]domain.Signal, len(z))
	for t, v := range z {
		out[t] = SignalAt(v, nStd)
	}
	return out
}

// SignalAt aplica la regla de umbral a un z-score:
//
//	z < -nStd → Long  (se espera que la desviación suba)
//	z >  nStd → Short (se espera que baje)
//	otro      → Flat
//
// Las comparaciones son estrictas: z == ±nStd queda dentro de la banda.
// Un z-score indefinido nunca abre exposición.
func SignalAt(z, nStd float64) domain.Signal {
	if math.IsNaN(z) {
		return domain.Flat
	}
	switch {
	case z < -nStd:
		return domain.Long
	case z > nStd:
		return domain.Short
	default:
		return domain.Flat
	}
}
