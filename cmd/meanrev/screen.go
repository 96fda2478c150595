package main

import (
	"context"
	"log/slog"

	"github.com/alejandrodnm/meanrev/internal/scanner"
)

func runScreen(ctx context.Context, s *scanner.Scanner, tickers []string) int {
	slog.Info("=== SCREEN MODE: every pair of the universe ===", "tickers", len(tickers))

	scores, err := s.Screen(ctx, tickers)
	if err != nil {
		slog.Error("screen failed", "err", err)
		return 1
	}

	if len(scores) == 0 {
		slog.Warn("no pair passed the filters")
		return 0
	}
	best := scores[0]
	slog.Info("best pair", "pair", best.Label(), "coint_p", best.Diagnostic.CointPValue, "ranked", len(scores))
	return 0
}
