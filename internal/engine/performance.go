package engine

import (
	"math"

	"github.com/alejandrodnm/meanrev/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// tradingDays anualiza el Sharpe de retornos diarios.
const tradingDays = 252

// Summarize calcula retorno total, drawdown máximo, Sharpe anualizado y días
// de exposición a partir del resultado del backtest.
func Summarize(bt BacktestResult, signals []domain.Signal) domain.Performance {
	var perf domain.Performance

	valid := make([]float64, 0, len(bt.StrategyReturns))
	for t, r := range bt.StrategyReturns {
		if math.IsNaN(r) {
			continue
		}
		valid = append(valid, r)
		if t > 0 && t-1 < len(signals) && signals[t-1] != domain.Flat {
			perf.ExposureDays++
		}
	}
	perf.ValidDays = len(valid)

	peak := 1.0
	last := 1.0
	for _, c := range bt.Cumulative {
		if math.IsNaN(c) {
			continue
		}
		last = c
		if c > peak {
			peak = c
		}
		if dd := (peak - c) / peak; dd > perf.MaxDrawdown {
			perf.MaxDrawdown = dd
		}
	}
	perf.TotalReturn = last - 1

	perf.Sharpe = math.NaN()
	if len(valid) >= 2 {
		mean, std := stat.MeanStdDev(valid, nil)
		if std > zeroTolerance {
			perf.Sharpe = mean / std * math.Sqrt(tradingDays)
		}
	}
	return perf
}
