package notify

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/alejandrodnm/meanrev/internal/domain"
	"github.com/olekukonko/tablewriter"
)

const (
	// alpha es el nivel usado solo para etiquetar resultados en consola.
	alpha     = 0.05
	weakAlpha = 0.10
	topCorr   = 5
)

// Console implementa ports.Notifier.
type Console struct {
	out  io.Writer
	tail int
}

// NewConsole crea un notificador que escribe a stdout y muestra las
// últimas tail filas de cada análisis.
func NewConsole(tail int) *Console {
	return &Console{out: os.Stdout, tail: tail}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, tail int) *Console {
	return &Console{out: w, tail: tail}
}

// NotifyAnalysis imprime el resumen del análisis y la cola de la serie.
func (c *Console) NotifyAnalysis(_ context.Context, a domain.Analysis) error {
	now := time.Now().Format("15:04:05")
	fmt.Fprintf(c.out, "\n[%s] %s  %s\n", now, a.Label(), a.Params)

	if a.Len() == 0 {
		fmt.Fprintln(c.out, "  no observations")
		return nil
	}
	fmt.Fprintf(c.out, "  %s → %s (%d obs)\n",
		a.Dates[0].Format(domain.DateLayout), a.Dates[a.Len()-1].Format(domain.DateLayout), a.Len())

	if d := a.Diagnostic; d != nil {
		fmt.Fprintf(c.out, "  coint p=%s (stat %s, lag %d) | spread ADF p=%s (lag %d) | hedge β=%s → %s\n",
			fmtP(d.CointPValue), fmtNum(d.CointStat, 2), d.CointLag,
			fmtP(d.ADFPValue), d.ADFLag, fmtNum(d.HedgeRatio, 4), verdict(*d))
	} else if a.DiagnosticErr != nil {
		fmt.Fprintf(c.out, "  cointegration diagnostic unavailable: %v\n", a.DiagnosticErr)
	}

	p := a.Performance
	fmt.Fprintf(c.out, "  return %s | max DD %s | sharpe %s | exposure %d/%d days\n",
		fmtPct(p.TotalReturn, true), fmtPct(p.MaxDrawdown, false), fmtNum(p.Sharpe, 2),
		p.ExposureDays, p.ValidDays)

	z, _ := a.LastZScore()
	fmt.Fprintf(c.out, "  signal for next session: %s (z=%s)\n", a.LastSignal(), fmtSigned(z, 2))

	if c.tail > 0 {
		c.printTail(a)
	}
	return nil
}

// printTail imprime las últimas c.tail filas de la serie.
func (c *Console) printTail(a domain.Analysis) {
	table := tablewriter.NewWriter(c.out)
	if a.TickerB != "" {
		table.Header("Date", a.TickerA, a.TickerB, "Dev", "Mean", "Z", "Signal", "Equity")
	} else {
		table.Header("Date", a.TickerA, "Mean", "Z", "Signal", "Equity")
	}

	start := a.Len() - c.tail
	if start < 0 {
		start = 0
	}
	for t := start; t < a.Len(); t++ {
		row := []string{a.Dates[t].Format(domain.DateLayout), fmtNum(a.PricesA[t], 2)}
		if a.TickerB != "" {
			row = append(row, fmtNum(a.PricesB[t], 2), fmtNum(a.Deviation[t], 4))
		}
		row = append(row,
			fmtNum(a.Mean[t], 4),
			fmtSigned(a.ZScore[t], 2),
			a.Signals[t].String(),
			fmtNum(a.Cumulative[t], 4),
		)
		table.Append(row)
	}
	table.Render()
}

// NotifyScreen imprime el ranking de pares y las correlaciones más altas.
func (c *Console) NotifyScreen(_ context.Context, scores []domain.PairScore, corr domain.CorrelationMatrix) error {
	now := time.Now().Format("15:04:05")
	if len(scores) == 0 {
		fmt.Fprintf(c.out, "[%s] no pairs passed the screen (%d tickers)\n", now, len(corr.Tickers))
	} else {
		coint := 0
		for _, s := range scores {
			if s.Diagnostic.Cointegrated(alpha) {
				coint++
			}
		}
		fmt.Fprintf(c.out, "\n[%s] %d pairs ranked | %d cointegrated at %.0f%%\n",
			now, len(scores), coint, alpha*100)
		c.printScores(scores)
	}

	c.printTopCorrelations(corr)
	return nil
}

func (c *Console) printScores(scores []domain.PairScore) {
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Pair", "Corr", "Coint p", "ADF p", "Hedge", "Return", "Sharpe", "Signal", "Verdict")

	for i, s := range scores {
		table.Append(
			fmt.Sprintf("%d", i+1),
			s.Label(),
			fmtNum(s.Correlation, 3),
			fmtP(s.Diagnostic.CointPValue),
			fmtP(s.Diagnostic.ADFPValue),
			fmtNum(s.Diagnostic.HedgeRatio, 3),
			fmtPct(s.Performance.TotalReturn, true),
			fmtNum(s.Performance.Sharpe, 2),
			s.LastSignal.String(),
			verdict(s.Diagnostic),
		)
	}
	table.Render()
	fmt.Fprintf(c.out, "  Verdict: COINTEGRATED (both p < %.2f) > WEAK (coint p < %.2f) > REJECT\n", alpha, weakAlpha)
}

type corrPair struct {
	a, b string
	rho  float64
}

func (c *Console) printTopCorrelations(m domain.CorrelationMatrix) {
	var pairs []corrPair
	for i := range m.Tickers {
		for j := i + 1; j < len(m.Tickers); j++ {
			if v := m.Values[i][j]; !math.IsNaN(v) {
				pairs = append(pairs, corrPair{m.Tickers[i], m.Tickers[j], v})
			}
		}
	}
	if len(pairs) == 0 {
		return
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].rho > pairs[j].rho })
	if len(pairs) > topCorr {
		pairs = pairs[:topCorr]
	}

	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%s/%s %.3f", p.a, p.b, p.rho)
	}
	fmt.Fprintf(c.out, "  most correlated: %s\n", strings.Join(parts, " | "))
}

// PrintRuns imprime el historial de análisis guardados.
func (c *Console) PrintRuns(runs []domain.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "no runs recorded")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("ID", "When", "Pair", "Mode", "Window", "Obs", "Coint p", "ADF p", "Return", "Signal", "Z")
	for _, r := range runs {
		pair := r.TickerA
		if r.TickerB != "" {
			pair += "/" + r.TickerB
		}
		cointP, adfP := "-", "-"
		if r.Diagnostic != nil {
			cointP, adfP = fmtP(r.Diagnostic.CointPValue), fmtP(r.Diagnostic.ADFPValue)
		}
		table.Append(
			shortID(r.ID),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			pair,
			fmt.Sprintf("%s/%s", r.Params.Mode, r.Params.Baseline),
			fmt.Sprintf("%d", r.Params.Window),
			fmt.Sprintf("%d", r.Observations),
			cointP,
			adfP,
			fmtPct(r.Performance.TotalReturn, true),
			r.LastSignal.String(),
			fmtSigned(r.LastZScore, 2),
		)
	}
	table.Render()
}

// --- helpers ---

func verdict(d domain.Diagnostic) string {
	switch {
	case d.Cointegrated(alpha):
		return "COINTEGRATED"
	case d.CointPValue < weakAlpha:
		return "WEAK"
	default:
		return "REJECT"
	}
}

func fmtNum(v float64, prec int) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	if math.IsInf(v, 0) {
		if v < 0 {
			return "-inf"
		}
		return "+inf"
	}
	return fmt.Sprintf("%.*f", prec, v)
}

func fmtSigned(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmtNum(v, prec)
	}
	return fmt.Sprintf("%+.*f", prec, v)
}

func fmtP(p float64) string {
	if !math.IsNaN(p) && p < 1e-4 {
		return "<0.0001"
	}
	return fmtNum(p, 4)
}

func fmtPct(v float64, signed bool) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	if signed {
		return fmt.Sprintf("%+.2f%%", v*100)
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
