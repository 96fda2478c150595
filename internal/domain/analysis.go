package domain

import (
	"math"
	"time"
)

// Signal es la posición discreta derivada del z-score.
type Signal int8

const (
	Short Signal = -1
	Flat  Signal = 0
	Long  Signal = 1
)

// String devuelve la etiqueta usada en consola.
func (s Signal) String() string {
	switch s {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	default:
		return "FLAT"
	}
}

// Diagnostic es el resultado del test de cointegración (Engle-Granger)
// y del ADF sobre el spread. No decide nada: solo reporta.
type Diagnostic struct {
	CointPValue  float64
	ADFPValue    float64
	CointStat    float64
	ADFStat      float64
	HedgeRatio   float64 // β de la regresión A = α + β·B
	CointLag     int     // lags usados en el ADF de los residuos
	ADFLag       int     // lags usados en el ADF del spread
	Observations int
}

// Cointegrated devuelve true si ambos p-values están por debajo de alpha.
// Helper para presentación; el engine nunca lo usa.
func (d Diagnostic) Cointegrated(alpha float64) bool {
	return d.CointPValue < alpha && d.ADFPValue < alpha
}

// Performance resume la curva de retorno acumulado.
type Performance struct {
	TotalReturn  float64 // último acumulado - 1
	MaxDrawdown  float64 // caída máxima desde pico, en fracción (0.25 = -25%)
	Sharpe       float64 // anualizado sobre 252 días, NaN si no hay varianza
	ExposureDays int     // días con posición (señal del día anterior != 0)
	ValidDays    int     // días con retorno de estrategia definido
}

// Analysis agrupa todas las series de un run, indexadas por Dates.
// Los puntos no definidos son NaN.
type Analysis struct {
	TickerA string
	TickerB string // vacío en ModePrice
	Params  Params

	Dates   []time.Time
	PricesA []float64
	PricesB []float64

	Deviation []float64
	Mean      []float64
	Std       []float64
	ZScore    []float64
	Upper     []float64
	Lower     []float64

	Signals         []Signal
	StrategyReturns []float64
	Cumulative      []float64

	Diagnostic  *Diagnostic // nil en ModePrice o si el diagnóstico falla
	Performance Performance

	// DiagnosticErr es el error del diagnóstico de cointegración (datos
	// insuficientes, serie degenerada). Las series siguen siendo válidas.
	DiagnosticErr error
}

// Len devuelve el número de fechas del análisis.
func (a Analysis) Len() int { return len(a.Dates) }

// Label devuelve "A/B" o "A" según el modo.
func (a Analysis) Label() string {
	if a.TickerB == "" {
		return a.TickerA
	}
	return a.TickerA + "/" + a.TickerB
}

// LastSignal devuelve la señal del último día, la que decide la exposición de mañana.
func (a Analysis) LastSignal() Signal {
	if len(a.Signals) == 0 {
		return Flat
	}
	return a.Signals[len(a.Signals)-1]
}

// LastZScore devuelve el último z-score definido y su índice (-1 si no hay).
func (a Analysis) LastZScore() (float64, int) {
	for i := len(a.ZScore) - 1; i >= 0; i-- {
		if !math.IsNaN(a.ZScore[i]) {
			return a.ZScore[i], i
		}
	}
	return math.NaN(), -1
}

// PairScore es el resultado del screening de un par.
type PairScore struct {
	TickerA     string
	TickerB     string
	Correlation float64
	Diagnostic  Diagnostic
	Performance Performance
	LastSignal  Signal
}

// Label devuelve "A/B".
func (p PairScore) Label() string { return p.TickerA + "/" + p.TickerB }

// CorrelationMatrix es la matriz de Pearson sobre precios alineados.
type CorrelationMatrix struct {
	Tickers []string
	Values  [][]float64
}

// Run es el registro persistido de un análisis.
type Run struct {
	ID           string
	CreatedAt    time.Time
	TickerA      string
	TickerB      string
	Params       Params
	From         time.Time
	To           time.Time
	Observations int
	Diagnostic   *Diagnostic
	Performance  Performance
	LastSignal   Signal
	LastZScore   float64
}
