package engine

import (
	"fmt"
	"math"

	"github.com/alejandrodnm/meanrev/internal/domain"
)

// ADFResult es el resultado del test Augmented Dickey-Fuller.
type ADFResult struct {
	Stat    float64
	PValue  float64
	UsedLag int
	NObs    int // observaciones de la regresión final
}

// ADF ejecuta el test con constante y selección de lags por AIC.
// p-value de MacKinnon con N=1.
func ADF(x []float64) (ADFResult, error) {
	res, err := adfStat(x, TrendConstant)
	if err != nil {
		return ADFResult{}, err
	}
	res.PValue = MacKinnonP(res.Stat, TrendConstant, 1)
	return res, nil
}

// adfStat calcula el estadístico tau sin p-value:
//
//	Δx[t] = [c] + γ·x[t-1] + Σ_{j=1..p} φ_j·Δx[t-j] + ε
//
// p se elige minimizando AIC entre 0 y maxlag sobre la misma muestra
// (la que deja maxlag), y luego se reajusta con la muestra completa de p.
func adfStat(x []float64, trend Trend) (ADFResult, error) {
	n := len(x)
	ntrend := 0
	if trend == TrendConstant {
		ntrend = 1
	}

	maxlag := int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	if limit := n/2 - ntrend - 1; limit < maxlag {
		maxlag = limit
	}
	// La regresión más ancha necesita al menos un grado de libertad.
	for maxlag >= 0 && n-1-maxlag <= ntrend+1+maxlag {
		maxlag--
	}
	if maxlag < 0 {
		return ADFResult{}, fmt.Errorf("engine.ADF: %w: %d observations", domain.ErrInsufficientData, n)
	}

	diff := make([]float64, n-1)
	for i := range diff {
		diff[i] = x[i+1] - x[i]
	}

	bestLag, bestAIC := 0, math.Inf(1)
	for lag := 0; lag <= maxlag; lag++ {
		y, cols := adfDesign(x, diff, maxlag, lag, trend)
		fit, err := ols(y, cols...)
		if err != nil {
			return ADFResult{}, fmt.Errorf("engine.ADF: lag %d: %w", lag, err)
		}
		if aic := fit.aic(); aic < bestAIC {
			bestAIC, bestLag = aic, lag
		}
	}

	y, cols := adfDesign(x, diff, bestLag, bestLag, trend)
	fit, err := ols(y, cols...)
	if err != nil {
		return ADFResult{}, fmt.Errorf("engine.ADF: %w", err)
	}

	stat := fit.tvalue(0)
	if math.IsNaN(stat) {
		return ADFResult{}, fmt.Errorf("engine.ADF: %w: undefined t-statistic", domain.ErrDegenerateSeries)
	}
	return ADFResult{Stat: stat, UsedLag: bestLag, NObs: fit.nobs}, nil
}

// adfDesign arma la regresión con lag diferencias retardadas sobre la muestra
// que empieza en start (start >= lag). Columna 0 = nivel x[t-1].
func adfDesign(x, diff []float64, start, lag int, trend Trend) ([]float64, [][]float64) {
	rows := len(diff) - start
	y := make([]float64, rows)
	level := make([]float64, rows)
	lags := make([][]float64, lag)
	for j := range lags {
		lags[j] = make([]float64, rows)
	}

	for i := 0; i < rows; i++ {
		t := start + i
		y[i] = diff[t]
		level[i] = x[t]
		for j := 1; j <= lag; j++ {
			lags[j-1][i] = diff[t-j]
		}
	}

	cols := make([][]float64, 0, lag+2)
	cols = append(cols, level)
	cols = append(cols, lags...)
	if trend == TrendConstant {
		cols = append(cols, constant(rows))
	}
	return y, cols
}
