package main

import (
	"context"
	"log/slog"

	"github.com/alejandrodnm/meanrev/internal/adapters/notify"
	"github.com/alejandrodnm/meanrev/internal/ports"
)

func runHistory(ctx context.Context, store ports.Storage, notifier *notify.Console, limit int) int {
	runs, err := store.GetRuns(ctx, limit)
	if err != nil {
		slog.Error("failed to read history", "err", err)
		return 1
	}
	if len(runs) == 0 {
		slog.Warn("no runs recorded yet")
		return 0
	}
	notifier.PrintRuns(runs)
	return 0
}
