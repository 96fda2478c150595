package storage

// sqlite.go: cache de precios y registro de análisis.
//
//   - `prices`: un cierre ajustado por (ticker, fecha), UPSERT. Evita volver a
//     descargar históricos que ya tenemos.
//   - `runs`: una fila por análisis con parámetros, p-values y métricas.
//     Los valores indefinidos (NaN, ±Inf) se guardan como NULL.
//   - Prune automático al arrancar: runs > 180d.

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/alejandrodnm/meanrev/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
-- Cierres ajustados diarios, una fila por ticker y día
CREATE TABLE IF NOT EXISTS prices (
    ticker     TEXT NOT NULL,
    date       TEXT NOT NULL,
    adj_close  REAL NOT NULL,
    fetched_at TEXT NOT NULL,
    PRIMARY KEY (ticker, date)
);

-- Un resumen por análisis
CREATE TABLE IF NOT EXISTS runs (
    id            TEXT PRIMARY KEY,
    created_at    TEXT    NOT NULL,
    ticker_a      TEXT    NOT NULL,
    ticker_b      TEXT    NOT NULL DEFAULT '',
    mode          TEXT    NOT NULL,
    baseline      TEXT    NOT NULL,
    align         TEXT    NOT NULL,
    win           INTEGER NOT NULL,
    n_std         REAL    NOT NULL,
    from_date     TEXT    NOT NULL,
    to_date       TEXT    NOT NULL,
    observations  INTEGER NOT NULL DEFAULT 0,
    has_diag      INTEGER NOT NULL DEFAULT 0,
    coint_p       REAL,
    adf_p         REAL,
    coint_stat    REAL,
    adf_stat      REAL,
    hedge_ratio   REAL,
    coint_lag     INTEGER NOT NULL DEFAULT 0,
    adf_lag       INTEGER NOT NULL DEFAULT 0,
    total_return  REAL,
    max_drawdown  REAL,
    sharpe        REAL,
    exposure_days INTEGER NOT NULL DEFAULT 0,
    valid_days    INTEGER NOT NULL DEFAULT 0,
    last_signal   INTEGER NOT NULL DEFAULT 0,
    last_z        REAL
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_pair    ON runs(ticker_a, ticker_b);
`

const (
	retentionRuns = 180 * 24 * time.Hour
	timeLayout    = "2006-01-02T15:04:05.000000000Z07:00" // ancho fijo: ordena como texto
	minDate       = "0001-01-01"
	maxDate       = "9999-12-31"
)

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia runs antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SavePrices hace upsert de todos los puntos de la serie en una transacción.
func (s *SQLiteStorage) SavePrices(ctx context.Context, series domain.PriceSeries) error {
	if series.Len() == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SavePrices: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO prices (ticker, date, adj_close, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(ticker, date) DO UPDATE SET
			adj_close  = excluded.adj_close,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return fmt.Errorf("storage.SavePrices: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(timeLayout)
	for _, p := range series.Points() {
		if _, err := stmt.ExecContext(ctx, series.Ticker(), p.Date.Format(domain.DateLayout), p.Close, now); err != nil {
			return fmt.Errorf("storage.SavePrices: upsert %s %s: %w",
				series.Ticker(), p.Date.Format(domain.DateLayout), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SavePrices: commit: %w", err)
	}
	return nil
}

// LoadPrices devuelve los cierres cacheados de ticker en [from, to].
// Un cero en from o to deja ese extremo abierto.
func (s *SQLiteStorage) LoadPrices(ctx context.Context, ticker string, from, to time.Time) (domain.PriceSeries, error) {
	lo, hi := minDate, maxDate
	if !from.IsZero() {
		lo = from.UTC().Format(domain.DateLayout)
	}
	if !to.IsZero() {
		hi = to.UTC().Format(domain.DateLayout)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, adj_close FROM prices
		WHERE ticker = ? AND date BETWEEN ? AND ?
		ORDER BY date
	`, ticker, lo, hi)
	if err != nil {
		return domain.PriceSeries{}, fmt.Errorf("storage.LoadPrices: query: %w", err)
	}
	defer rows.Close()

	var points []domain.PricePoint
	for rows.Next() {
		var ds string
		var px float64
		if err := rows.Scan(&ds, &px); err != nil {
			return domain.PriceSeries{}, fmt.Errorf("storage.LoadPrices: scan row: %w", err)
		}
		d, err := time.Parse(domain.DateLayout, ds)
		if err != nil {
			return domain.PriceSeries{}, fmt.Errorf("storage.LoadPrices: date %q: %w", ds, err)
		}
		points = append(points, domain.PricePoint{Date: d, Close: px})
	}
	if err := rows.Err(); err != nil {
		return domain.PriceSeries{}, fmt.Errorf("storage.LoadPrices: %w", err)
	}

	return domain.NewPriceSeries(ticker, points)
}

// SaveRun inserta el resumen de un análisis. Un ID repetido es un error.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run domain.Run) error {
	var (
		hasDiag                                 int
		cointP, adfP, cointStat, adfStat, hedge any
		cointLag, adfLag                        int
	)
	if d := run.Diagnostic; d != nil {
		hasDiag = 1
		cointP, adfP = nullable(d.CointPValue), nullable(d.ADFPValue)
		cointStat, adfStat = nullable(d.CointStat), nullable(d.ADFStat)
		hedge = nullable(d.HedgeRatio)
		cointLag, adfLag = d.CointLag, d.ADFLag
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
			(id, created_at, ticker_a, ticker_b, mode, baseline, align, win, n_std,
			 from_date, to_date, observations, has_diag, coint_p, adf_p, coint_stat,
			 adf_stat, hedge_ratio, coint_lag, adf_lag, total_return, max_drawdown,
			 sharpe, exposure_days, valid_days, last_signal, last_z)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.CreatedAt.UTC().Format(timeLayout),
		run.TickerA,
		run.TickerB,
		string(run.Params.Mode),
		string(run.Params.Baseline),
		string(run.Params.Align),
		run.Params.Window,
		run.Params.NStd,
		run.From.UTC().Format(domain.DateLayout),
		run.To.UTC().Format(domain.DateLayout),
		run.Observations,
		hasDiag,
		cointP, adfP, cointStat, adfStat, hedge,
		cointLag, adfLag,
		nullable(run.Performance.TotalReturn),
		nullable(run.Performance.MaxDrawdown),
		nullable(run.Performance.Sharpe),
		run.Performance.ExposureDays,
		run.Performance.ValidDays,
		int(run.LastSignal),
		nullable(run.LastZScore),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: insert %s: %w", run.ID, err)
	}
	return nil
}

// GetRuns devuelve los últimos limit runs, el más reciente primero.
// limit <= 0 devuelve todos.
func (s *SQLiteStorage) GetRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = -1 // SQLite: sin límite
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, ticker_a, ticker_b, mode, baseline, align, win, n_std,
		       from_date, to_date, observations, has_diag, coint_p, adf_p, coint_stat,
		       adf_stat, hedge_ratio, coint_lag, adf_lag, total_return, max_drawdown,
		       sharpe, exposure_days, valid_days, last_signal, last_z
		FROM runs
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.GetRuns: query: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		var (
			run                                     domain.Run
			createdAt, mode, baseline, align        string
			fromDate, toDate                        string
			hasDiag, cointLag, adfLag, lastSignal   int
			cointP, adfP, cointStat, adfStat, hedge sql.NullFloat64
			totalRet, maxDD, sharpe, lastZ          sql.NullFloat64
		)
		if err := rows.Scan(
			&run.ID, &createdAt, &run.TickerA, &run.TickerB, &mode, &baseline, &align,
			&run.Params.Window, &run.Params.NStd, &fromDate, &toDate, &run.Observations,
			&hasDiag, &cointP, &adfP, &cointStat, &adfStat, &hedge, &cointLag, &adfLag,
			&totalRet, &maxDD, &sharpe, &run.Performance.ExposureDays,
			&run.Performance.ValidDays, &lastSignal, &lastZ,
		); err != nil {
			return nil, fmt.Errorf("storage.GetRuns: scan row: %w", err)
		}

		run.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		run.From, _ = time.Parse(domain.DateLayout, fromDate)
		run.To, _ = time.Parse(domain.DateLayout, toDate)
		run.Params.Mode = domain.Mode(mode)
		run.Params.Baseline = domain.Baseline(baseline)
		run.Params.Align = domain.AlignPolicy(align)
		run.Performance.TotalReturn = orNaN(totalRet)
		run.Performance.MaxDrawdown = orNaN(maxDD)
		run.Performance.Sharpe = orNaN(sharpe)
		run.LastSignal = domain.Signal(lastSignal)
		run.LastZScore = orNaN(lastZ)

		if hasDiag == 1 {
			run.Diagnostic = &domain.Diagnostic{
				CointPValue:  orNaN(cointP),
				ADFPValue:    orNaN(adfP),
				CointStat:    orNaN(cointStat),
				ADFStat:      orNaN(adfStat),
				HedgeRatio:   orNaN(hedge),
				CointLag:     cointLag,
				ADFLag:       adfLag,
				Observations: run.Observations,
			}
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

// pruneOld elimina runs antiguos para mantener la DB ligera.
// El cache de precios no caduca: un cierre ajustado ya publicado no cambia
// salvo por dividendos, y un refresh explícito lo reescribe.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionRuns).Format(timeLayout)
	s.db.ExecContext(ctx, `DELETE FROM runs WHERE created_at < ?`, cutoff)
}

// nullable convierte NaN/±Inf en NULL.
func nullable(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
