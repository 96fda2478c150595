package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/alejandrodnm/meanrev/internal/domain"
	"github.com/alejandrodnm/meanrev/internal/engine"
	"github.com/alejandrodnm/meanrev/internal/metrics"
	"github.com/alejandrodnm/meanrev/internal/ports"
	"github.com/google/uuid"
)

// cacheSlackDays tolera fines de semana y festivos al decidir si el cache
// cubre el rango pedido.
const cacheSlackDays = 4

// Config contiene la configuración del scanner.
type Config struct {
	Params  domain.Params
	From    time.Time // cero = desde el primer dato disponible
	To      time.Time // cero = hasta hoy
	Refresh bool      // ignora el cache de precios y vuelve a descargar
	Workers int       // goroutines para el screening (0 = NumCPU*2)
	Filter  FilterConfig
	Top     int // máximo de pares en el ranking (0 = todos)
}

// DefaultConfig devuelve una configuración sensata para uso interactivo.
func DefaultConfig() Config {
	return Config{
		Params: domain.DefaultParams(),
		Filter: DefaultFilterConfig(),
		Top:    20,
	}
}

// Scanner orquesta carga de precios → alineación → engine → notificación → persistencia.
type Scanner struct {
	cfg      Config
	prices   ports.PriceProvider
	storage  ports.Storage
	notifier ports.Notifier
	filter   *Filter
}

// New crea un Scanner con todas las dependencias inyectadas.
// storage puede ser nil: sin cache ni historial.
func New(
	cfg Config,
	prices ports.PriceProvider,
	storage ports.Storage,
	notifier ports.Notifier,
) *Scanner {
	return &Scanner{
		cfg:      cfg,
		prices:   prices,
		storage:  storage,
		notifier: notifier,
		filter:   NewFilter(cfg.Filter),
	}
}

// AnalyzePair analiza el par (a, b) con los parámetros configurados.
func (s *Scanner) AnalyzePair(ctx context.Context, tickerA, tickerB string) (domain.Analysis, error) {
	p := s.cfg.Params
	if !p.Mode.Pair() {
		return domain.Analysis{}, fmt.Errorf("scanner.AnalyzePair: %w: mode %q needs a single ticker",
			domain.ErrInvalidParams, p.Mode)
	}
	return s.analyze(ctx, p, tickerA, tickerB)
}

// AnalyzeTicker analiza un solo instrumento contra su propia media.
func (s *Scanner) AnalyzeTicker(ctx context.Context, ticker string) (domain.Analysis, error) {
	p := s.cfg.Params
	p.Mode = domain.ModePrice
	return s.analyze(ctx, p, ticker)
}

func (s *Scanner) analyze(ctx context.Context, p domain.Params, tickers ...string) (res domain.Analysis, err error) {
	start := time.Now()
	defer func() {
		metrics.AnalysesTotal.WithLabelValues(string(p.Mode), string(p.Baseline), outcome(err)).Inc()
		metrics.AnalysisSeconds.WithLabelValues(string(p.Mode)).Observe(time.Since(start).Seconds())
	}()

	if err := p.Validate(); err != nil {
		return domain.Analysis{}, fmt.Errorf("scanner.analyze: %w", err)
	}

	series := make([]domain.PriceSeries, 0, len(tickers))
	for _, t := range tickers {
		ps, err := s.loadSeries(ctx, t)
		if err != nil {
			return domain.Analysis{}, fmt.Errorf("scanner.analyze: %w", err)
		}
		series = append(series, ps)
	}

	table, err := domain.Align(p.Align, series...)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("scanner.analyze: %w", err)
	}

	tickerB := ""
	if len(tickers) > 1 {
		tickerB = tickers[1]
	}
	res, err = engine.Analyze(table, tickers[0], tickerB, p)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("scanner.analyze: %s: %w", labelOf(tickers), err)
	}

	if res.DiagnosticErr != nil {
		slog.Warn("cointegration diagnostic unavailable", "pair", res.Label(), "err", res.DiagnosticErr)
	}

	z, _ := res.LastZScore()
	slog.Info("analysis complete",
		"pair", res.Label(),
		"observations", res.Len(),
		"signal", res.LastSignal().String(),
		"z", z,
		"total_return", res.Performance.TotalReturn,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	if err := s.notifier.NotifyAnalysis(ctx, res); err != nil {
		slog.Warn("notifier error", "err", err)
	}
	s.saveRun(ctx, res)
	return res, nil
}

// Screen correlaciona todos los tickers, diagnostica cada par en paralelo,
// filtra y devuelve el ranking por p-value de cointegración.
// Los tickers que no se pueden cargar se omiten con un warning.
func (s *Scanner) Screen(ctx context.Context, tickers []string) ([]domain.PairScore, error) {
	start := time.Now()

	p := s.cfg.Params
	if !p.Mode.Pair() {
		p.Mode = domain.ModeSpread
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("scanner.Screen: %w", err)
	}

	series := make([]domain.PriceSeries, 0, len(tickers))
	for _, t := range tickers {
		ps, err := s.loadSeries(ctx, t)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("scanner.Screen: %w", ctx.Err())
			}
			slog.Warn("skipping ticker", "ticker", t, "err", err)
			continue
		}
		series = append(series, ps)
	}
	if len(series) < 2 {
		return nil, fmt.Errorf("scanner.Screen: %w: need at least 2 tickers with data, got %d",
			domain.ErrInvalidParams, len(series))
	}

	table, err := domain.Align(p.Align, series...)
	if err != nil {
		return nil, fmt.Errorf("scanner.Screen: %w", err)
	}

	corr := engine.Correlations(table)
	if a, b, rho, ok := engine.MostCorrelated(corr); ok {
		slog.Debug("most correlated pair", "a", a, "b", b, "rho", rho)
	}
	scores := screenPairsConcurrent(ctx, table, corr, p, s.cfg.Workers)

	filtered := s.filter.Apply(scores)
	ranked := rankByCointegration(filtered)
	if s.cfg.Top > 0 && len(ranked) > s.cfg.Top {
		ranked = ranked[:s.cfg.Top]
	}

	if err := s.notifier.NotifyScreen(ctx, ranked, corr); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	slog.Info("screen complete",
		"tickers", len(series),
		"observations", table.Len(),
		"pairs", len(scores),
		"passed", len(filtered),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return ranked, nil
}

// loadSeries devuelve la serie del ticker desde el cache si lo cubre;
// si no, la descarga y la guarda.
func (s *Scanner) loadSeries(ctx context.Context, ticker string) (domain.PriceSeries, error) {
	if s.storage != nil && !s.cfg.Refresh {
		cached, err := s.storage.LoadPrices(ctx, ticker, s.cfg.From, s.cfg.To)
		if err != nil {
			slog.Warn("price cache read failed", "ticker", ticker, "err", err)
		} else if covers(cached, s.cfg.From, s.cfg.To) {
			metrics.PriceCache.WithLabelValues("hit").Inc()
			slog.Debug("price cache hit", "ticker", ticker, "points", cached.Len())
			return cached, nil
		}
	}
	metrics.PriceCache.WithLabelValues("miss").Inc()

	series, err := s.prices.FetchHistory(ctx, ticker, s.cfg.From, s.cfg.To)
	if err != nil {
		return domain.PriceSeries{}, fmt.Errorf("load %s: %w", ticker, err)
	}

	if s.storage != nil {
		if err := s.storage.SavePrices(ctx, series); err != nil {
			slog.Warn("price cache write failed", "ticker", ticker, "err", err)
		}
	}
	return series, nil
}

// saveRun persiste el resumen del análisis. Un fallo de storage no invalida el resultado.
func (s *Scanner) saveRun(ctx context.Context, a domain.Analysis) {
	if s.storage == nil || a.Len() == 0 {
		return
	}

	z, _ := a.LastZScore()
	run := domain.Run{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		TickerA:      a.TickerA,
		TickerB:      a.TickerB,
		Params:       a.Params,
		From:         a.Dates[0],
		To:           a.Dates[a.Len()-1],
		Observations: a.Len(),
		Diagnostic:   a.Diagnostic,
		Performance:  a.Performance,
		LastSignal:   a.LastSignal(),
		LastZScore:   z,
	}
	if err := s.storage.SaveRun(ctx, run); err != nil {
		slog.Warn("storage error", "err", err)
	}
}

// covers devuelve true si la serie cacheada llega a ambos extremos del rango.
func covers(series domain.PriceSeries, from, to time.Time) bool {
	first, ok := series.First()
	if !ok {
		return false
	}
	last, _ := series.Last()

	if !from.IsZero() && first.Date.After(domain.TruncateDay(from).AddDate(0, 0, cacheSlackDays)) {
		return false
	}
	if to.IsZero() {
		to = time.Now()
	}
	return !last.Date.Before(domain.TruncateDay(to).AddDate(0, 0, -cacheSlackDays))
}

// rankByCointegration ordena por p-value de cointegración ascendente y, a
// igualdad, por p-value del ADF. Los NaN van al final.
func rankByCointegration(scores []domain.PairScore) []domain.PairScore {
	sort.SliceStable(scores, func(i, j int) bool {
		a, b := scores[i].Diagnostic, scores[j].Diagnostic
		if lessNaNLast(a.CointPValue, b.CointPValue) {
			return true
		}
		if lessNaNLast(b.CointPValue, a.CointPValue) {
			return false
		}
		return lessNaNLast(a.ADFPValue, b.ADFPValue)
	})
	return scores
}

func lessNaNLast(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a < b
}

// outcome etiqueta el resultado de un análisis para métricas.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, domain.ErrMisalignedSeries):
		return "misaligned"
	case errors.Is(err, domain.ErrDegenerateSeries):
		return "degenerate"
	case errors.Is(err, domain.ErrInvalidParams):
		return "invalid_params"
	default:
		return "error"
	}
}

func labelOf(tickers []string) string {
	if len(tickers) == 1 {
		return tickers[0]
	}
	return tickers[0] + "/" + tickers[1]
}
