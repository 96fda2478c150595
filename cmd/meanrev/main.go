package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alejandrodnm/meanrev/config"
	"github.com/alejandrodnm/meanrev/internal/adapters/notify"
	"github.com/alejandrodnm/meanrev/internal/adapters/quotes"
	"github.com/alejandrodnm/meanrev/internal/adapters/storage"
	"github.com/alejandrodnm/meanrev/internal/metrics"
	"github.com/alejandrodnm/meanrev/internal/ports"
	"github.com/alejandrodnm/meanrev/internal/scanner"
)

const defaultConfigPath = "config.yaml"

func main() {
	os.Exit(run(os.Args[1:]))
}

// run ejecuta el CLI y devuelve el código de salida del proceso.
func run(args []string) int {
	fs := flag.NewFlagSet("meanrev", flag.ContinueOnError)
	configPath := fs.String("config", defaultConfigPath, "path to config file")
	pair := fs.String("pair", "", "analyze a pair: A,B")
	ticker := fs.String("ticker", "", "analyze a single instrument against its own mean")
	screen := fs.Bool("screen", false, "screen every pair of the configured universe")
	tickers := fs.String("tickers", "", "comma-separated universe for -screen (overrides config)")
	history := fs.Bool("history", false, "print the last recorded runs and exit")
	limit := fs.Int("limit", 20, "rows for -history")
	window := fs.Int("window", 0, "rolling window in days (overrides config)")
	nStd := fs.Float64("nstd", 0, "entry band in standard deviations (overrides config)")
	mode := fs.String("mode", "", "deviation: spread|ratio|price (overrides config)")
	baseline := fs.String("baseline", "", "baseline: static|rolling (overrides config)")
	align := fs.String("align", "", "date alignment: intersection|ffill (overrides config)")
	start := fs.String("start", "", "first date YYYY-MM-DD (overrides config)")
	end := fs.String("end", "", "last date YYYY-MM-DD (overrides config)")
	refresh := fs.Bool("refresh", false, "ignore the price cache and download again")
	tail := fs.Int("tail", 10, "rows of the series printed after each analysis")
	verbose := fs.Bool("verbose", false, "set log level to debug")
	logFormat := fs.String("format", "", "log format: text|json (overrides config)")
	metricsAddr := fs.String("metrics-addr", "", "serve Prometheus /metrics on this address (overrides config)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(*configPath)
	usingDefaults := false
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) || *configPath != defaultConfigPath {
			slog.Error("failed to load config", "err", err, "path", *configPath)
			return 1
		}
		cfg = config.Default()
		usingDefaults = true
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	applyFlags(cfg, *window, *nStd, *mode, *baseline, *align, *start, *end, *metricsAddr)
	if *refresh {
		cfg.Data.Refresh = true
	}
	if *tickers != "" {
		cfg.Screen.Tickers = splitTickers(*tickers)
	}
	setupLogger(cfg.Log)
	if usingDefaults {
		slog.Warn("config file not found, using defaults", "path", *configPath)
	}

	params, err := cfg.Params()
	if err != nil {
		slog.Error("invalid engine parameters", "err", err)
		return 2
	}
	from, to, err := cfg.Period()
	if err != nil {
		slog.Error("invalid period", "err", err)
		return 2
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		return 1
	}
	defer store.Close()

	notifier := notify.NewConsole(*tail)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *history {
		return runHistory(ctx, store, notifier, *limit)
	}

	if cfg.Metrics.Addr != "" {
		srv := metrics.Serve(cfg.Metrics.Addr)
		defer srv.Close()
		slog.Info("metrics endpoint listening", "addr", cfg.Metrics.Addr)
	}

	scanCfg := scanner.DefaultConfig()
	scanCfg.Params = params
	scanCfg.From = from
	scanCfg.To = to
	scanCfg.Refresh = cfg.Data.Refresh
	scanCfg.Workers = cfg.Screen.Workers
	scanCfg.Top = cfg.Screen.Top
	scanCfg.Filter = scanner.FilterConfig{
		MaxCointPValue: cfg.Screen.MaxCointP,
		MaxADFPValue:   cfg.Screen.MaxADFP,
		MinCorrelation: cfg.Screen.MinCorrelation,
	}

	s := scanner.New(scanCfg, newPriceProvider(cfg.Data), store, notifier)

	slog.Info("meanrev starting",
		"config", *configPath,
		"params", params.String(),
		"source", cfg.Data.Source,
		"from", cfg.Data.Start,
		"to", cfg.Data.End,
	)

	switch {
	case *pair != "":
		return runPair(ctx, s, *pair)
	case *ticker != "":
		return runTicker(ctx, s, *ticker)
	case *screen:
		return runScreen(ctx, s, cfg.Screen.Tickers)
	default:
		fmt.Fprintln(os.Stderr, "nothing to do: use -pair A,B, -ticker T, -screen or -history")
		fs.Usage()
		return 2
	}
}

// applyFlags sobreescribe la configuración con los flags que tienen valor.
func applyFlags(cfg *config.Config, window int, nStd float64, mode, baseline, align, start, end, metricsAddr string) {
	if window != 0 {
		cfg.Engine.Window = window
	}
	if nStd != 0 {
		cfg.Engine.NStd = nStd
	}
	if mode != "" {
		cfg.Engine.Mode = mode
	}
	if baseline != "" {
		cfg.Engine.Baseline = baseline
	}
	if align != "" {
		cfg.Engine.Align = align
	}
	if start != "" {
		cfg.Data.Start = start
	}
	if end != "" {
		cfg.Data.End = end
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}
}

func newPriceProvider(cfg config.DataConfig) ports.PriceProvider {
	if cfg.Source == "file" {
		return quotes.NewFileProvider(cfg.Dir)
	}
	return quotes.NewClient(cfg.QuotesBase)
}

func splitTickers(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
