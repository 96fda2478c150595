package engine

import (
	"fmt"
	"math"

	"github.com/alejandrodnm/meanrev/internal/domain"
)

// BacktestResult contiene el retorno diario de la estrategia y la curva acumulada,
// ambos alineados al eje de fechas. Los índices descartados son NaN.
type BacktestResult struct {
	StrategyReturns []float64
	Cumulative      []float64
}

// Returns calcula el retorno simple p[t]/p[t-1] - 1.
// t=0 y los días con p[t-1] == 0 quedan NaN.
func Returns(prices []float64) []float64 {
	out := nanSlice(len(prices))
	for t := 1; t < len(prices); t++ {
		q, err := quotient(prices[t], prices[t-1])
		if err != nil {
			continue
		}
		out[t] = q - 1
	}
	return out
}

// Backtest aplica la señal del día anterior al retorno del día:
//
//	par:    strategy[t] = signal[t-1] · (rA[t] - rB[t])
//	simple: strategy[t] = signal[t-1] · r[t]        (b == nil)
//
// y compone (1 + strategy) empezando en 1. Los índices con entradas
// indefinidas se descartan: quedan NaN y no mueven el producto.
func Backtest(a, b []float64, signals []domain.Signal) (BacktestResult, error) {
	if len(signals) != len(a) || (b != nil && len(b) != len(a)) {
		return BacktestResult{}, fmt.Errorf("engine.Backtest: %w: len(a)=%d len(b)=%d len(signals)=%d",
			domain.ErrMisalignedSeries, len(a), len(b), len(signals))
	}

	diff := Returns(a)
	if b != nil {
		rb := Returns(b)
		for t := range diff {
			diff[t] -= rb[t] // NaN - x sigue siendo NaN
		}
	}

	n := len(a)
	res := BacktestResult{
		StrategyReturns: nanSlice(n),
		Cumulative:      nanSlice(n),
	}

	equity := 1.0
	for t := 1; t < n; t++ {
		if math.IsNaN(diff[t]) {
			continue
		}
		r := float64(signals[t-1]) * diff[t]
		equity *= 1 + r
		res.StrategyReturns[t] = r
		res.Cumulative[t] = equity
	}
	return res, nil
}
