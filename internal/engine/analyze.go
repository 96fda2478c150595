package engine

import (
	"fmt"

	"github.com/alejandrodnm/meanrev/internal/domain"
)

// Analyze corre el pipeline completo sobre una tabla ya alineada:
// desviación → baseline → z-score → bandas → señales → backtest → métricas,
// y el diagnóstico de cointegración en los modos de par.
// En ModePrice tickerB se ignora.
//
// Un fallo del diagnóstico no descarta las señales: queda en
// Analysis.DiagnosticErr con Diagnostic en nil.
func Analyze(table domain.PriceTable, tickerA, tickerB string, p domain.Params) (domain.Analysis, error) {
	if err := p.Validate(); err != nil {
		return domain.Analysis{}, fmt.Errorf("engine.Analyze: %w", err)
	}

	a, ok := table.Column(tickerA)
	if !ok {
		return domain.Analysis{}, fmt.Errorf("engine.Analyze: %w: %s not in table", domain.ErrMisalignedSeries, tickerA)
	}

	var b []float64
	if p.Mode.Pair() {
		if b, ok = table.Column(tickerB); !ok {
			return domain.Analysis{}, fmt.Errorf("engine.Analyze: %w: %s not in table", domain.ErrMisalignedSeries, tickerB)
		}
	} else {
		tickerB = ""
	}

	n := table.Len()
	if n < p.Window {
		return domain.Analysis{}, fmt.Errorf("engine.Analyze: %w: %d observations for window %d",
			domain.ErrInsufficientData, n, p.Window)
	}

	dev, err := Deviation(a, b, p.Mode)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("engine.Analyze: %w", err)
	}

	baseline, err := newBaseline(dev, p)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("engine.Analyze: %w", err)
	}

	res := domain.Analysis{
		TickerA:   tickerA,
		TickerB:   tickerB,
		Params:    p,
		Dates:     table.Dates(),
		PricesA:   a,
		PricesB:   b,
		Deviation: dev,
		Mean:      make([]float64, n),
		Std:       make([]float64, n),
	}
	for t := 0; t < n; t++ {
		res.Mean[t], res.Std[t] = baseline.At(t)
	}
	res.ZScore = ZScore(dev, baseline)
	res.Upper, res.Lower = Bands(baseline, n, p.NStd)
	res.Signals = Signals(res.ZScore, p.NStd)

	bt, err := Backtest(a, b, res.Signals)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("engine.Analyze: %w", err)
	}
	res.StrategyReturns = bt.StrategyReturns
	res.Cumulative = bt.Cumulative
	res.Performance = Summarize(bt, res.Signals)

	if p.Mode.Pair() {
		diag, err := Cointegration(a, b)
		if err != nil {
			res.DiagnosticErr = fmt.Errorf("engine.Analyze: %w", err)
		} else {
			res.Diagnostic = &diag
		}
	}

	return res, nil
}

func newBaseline(dev []float64, p domain.Params) (Baseline, error) {
	if p.Baseline == domain.BaselineStatic {
		return Static(dev), nil
	}
	return Rolling(dev, p.Window)
}
