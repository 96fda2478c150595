package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alejandrodnm/meanrev/internal/scanner"
)

func runPair(ctx context.Context, s *scanner.Scanner, pair string) int {
	a, b, err := parsePair(pair)
	if err != nil {
		slog.Error("invalid -pair", "err", err)
		return 2
	}

	if _, err := s.AnalyzePair(ctx, a, b); err != nil {
		slog.Error("pair analysis failed", "pair", pair, "err", err)
		return 1
	}
	return 0
}

func runTicker(ctx context.Context, s *scanner.Scanner, ticker string) int {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	if _, err := s.AnalyzeTicker(ctx, ticker); err != nil {
		slog.Error("ticker analysis failed", "ticker", ticker, "err", err)
		return 1
	}
	return 0
}

func parsePair(s string) (string, string, error) {
	parts := splitTickers(s)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("want two tickers A,B, got %q", s)
	}
	if parts[0] == parts[1] {
		return "", "", fmt.Errorf("pair needs two different tickers, got %q", s)
	}
	return parts[0], parts[1], nil
}
