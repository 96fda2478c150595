package scanner

// concurrent.go: worker pool para el screening de pares.
//
// Con el universo por defecto (24 tickers) son 276 pares; cada uno corre un
// backtest y dos ADF con selección de lags, que es CPU puro.

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/alejandrodnm/meanrev/internal/domain"
	"github.com/alejandrodnm/meanrev/internal/engine"
	"github.com/alejandrodnm/meanrev/internal/metrics"
)

// screenPairsConcurrent analiza todos los pares de la tabla en paralelo.
// Los pares sin diagnóstico (datos insuficientes, serie degenerada) se descartan:
// el ranking se hace por p-value.
//
// Si workers <= 0 usa runtime.NumCPU() × 2.
func screenPairsConcurrent(
	ctx context.Context,
	table domain.PriceTable,
	corr domain.CorrelationMatrix,
	p domain.Params,
	workers int,
) []domain.PairScore {
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}

	type work struct {
		a, b int // índices en corr.Tickers
	}

	n := len(corr.Tickers)
	total := n * (n - 1) / 2
	workCh := make(chan work, total)
	resultCh := make(chan domain.PairScore, total)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for w := range workCh {
				if ctx.Err() != nil {
					continue
				}
				tickerA, tickerB := corr.Tickers[w.a], corr.Tickers[w.b]
				res, err := engine.Analyze(table, tickerA, tickerB, p)
				if err == nil && res.DiagnosticErr != nil {
					err = res.DiagnosticErr
				}
				if err != nil {
					metrics.PairsScreened.WithLabelValues("error").Inc()
					slog.Debug("pair analysis failed",
						"pair", tickerA+"/"+tickerB,
						"err", err,
					)
					continue
				}
				score := domain.PairScore{
					TickerA:     tickerA,
					TickerB:     tickerB,
					Correlation: corr.Values[w.a][w.b],
					Diagnostic:  *res.Diagnostic,
					Performance: res.Performance,
					LastSignal:  res.LastSignal(),
				}
				metrics.PairsScreened.WithLabelValues(verdictLabel(score.Diagnostic)).Inc()
				resultCh <- score
			}
		}()
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			workCh <- work{a: i, b: j}
		}
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	scores := make([]domain.PairScore, 0, total)
	for s := range resultCh {
		scores = append(scores, s)
	}

	slog.Debug("concurrent screen complete",
		"pairs_queued", total,
		"scored", len(scores),
		"workers", workers,
	)
	return scores
}

func verdictLabel(d domain.Diagnostic) string {
	switch {
	case d.Cointegrated(0.05):
		return "cointegrated"
	case d.CointPValue < 0.10:
		return "weak"
	default:
		return "reject"
	}
}
