package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alejandrodnm/meanrev/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Full(t *testing.T) {
	path := writeConfig(t, `
engine:
  window: 30
  n_std: 2
  mode: ratio
  baseline: static
  align: ffill
data:
  source: file
  dir: prices
  start: "2022-01-03"
  end: "2023-12-29"
screen:
  tickers: [KO, PEP, XOM, CVX]
  workers: 4
  max_coint_p: 0.01
  min_correlation: 0.7
  top: 5
storage:
  dsn: ":memory:"
log:
  level: debug
  format: json
metrics:
  addr: ":9108"
`)
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("MEANREV_DB", "")
	t.Setenv("MEANREV_DATA_DIR", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	p, err := cfg.Params()
	require.NoError(t, err)
	assert.Equal(t, domain.Params{
		Window:   30,
		NStd:     2,
		Mode:     domain.ModeRatio,
		Baseline: domain.BaselineStatic,
		Align:    domain.AlignForwardFill,
	}, p)

	from, to, err := cfg.Period()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2022, time.January, 3, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2023, time.December, 29, 0, 0, 0, 0, time.UTC), to)

	assert.Equal(t, []string{"KO", "PEP", "XOM", "CVX"}, cfg.Screen.Tickers)
	assert.Equal(t, 0.01, cfg.Screen.MaxCointP)
	assert.Equal(t, 5, cfg.Screen.Top)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":9108", cfg.Metrics.Addr)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("MEANREV_DB", "")
	t.Setenv("MEANREV_DATA_DIR", "")

	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	p, err := cfg.Params()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultParams(), p)
	assert.Equal(t, DefaultUniverse, cfg.Screen.Tickers)
	assert.Equal(t, "http", cfg.Data.Source)
	assert.Equal(t, "meanrev.db", cfg.Storage.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Metrics.Addr)

	from, to, err := cfg.Period()
	require.NoError(t, err)
	assert.True(t, from.IsZero())
	assert.True(t, to.IsZero())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("MEANREV_DB", "/tmp/other.db")
	t.Setenv("MEANREV_DATA_DIR", "/srv/prices")

	cfg, err := Load(writeConfig(t, "log:\n  level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "/tmp/other.db", cfg.Storage.DSN)
	assert.Equal(t, "/srv/prices", cfg.Data.Dir)
	assert.Equal(t, "file", cfg.Data.Source)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "engine: [not, a, map]\n"))
	assert.Error(t, err)
}

func TestParams_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		engine EngineConfig
	}{
		{"window too small", EngineConfig{Window: 1, NStd: 1, Mode: "spread", Baseline: "rolling", Align: "intersection"}},
		{"negative n_std", EngineConfig{Window: 20, NStd: -1, Mode: "spread", Baseline: "rolling", Align: "intersection"}},
		{"unknown mode", EngineConfig{Window: 20, NStd: 1, Mode: "diff", Baseline: "rolling", Align: "intersection"}},
		{"unknown baseline", EngineConfig{Window: 20, NStd: 1, Mode: "spread", Baseline: "ewm", Align: "intersection"}},
		{"unknown align", EngineConfig{Window: 20, NStd: 1, Mode: "spread", Baseline: "rolling", Align: "outer"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Engine: tt.engine}
			_, err := cfg.Params()
			assert.ErrorIs(t, err, domain.ErrInvalidParams)
		})
	}
}

func TestPeriod_Invalid(t *testing.T) {
	cfg := &Config{Data: DataConfig{Start: "2024-02-01", End: "2024-01-01"}}
	_, _, err := cfg.Period()
	assert.ErrorIs(t, err, domain.ErrInvalidParams)

	cfg = &Config{Data: DataConfig{Start: "01/02/2024"}}
	_, _, err = cfg.Period()
	assert.ErrorIs(t, err, domain.ErrInvalidParams)
}

func TestParams_CaseInsensitive(t *testing.T) {
	cfg := &Config{Engine: EngineConfig{Window: 5, NStd: 1, Mode: "SPREAD", Baseline: "Rolling", Align: "FFILL"}}
	p, err := cfg.Params()
	require.NoError(t, err)
	assert.Equal(t, domain.ModeSpread, p.Mode)
}
