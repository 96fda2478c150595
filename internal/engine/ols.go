package engine

import (
	"fmt"
	"math"

	"github.com/alejandrodnm/meanrev/internal/domain"
	"gonum.org/v1/gonum/mat"
)

// maxCondition: por encima de este número de condición X'X se trata como singular.
const maxCondition = 1e15

// olsFit es el resultado de una regresión por mínimos cuadrados.
type olsFit struct {
	coef   []float64
	stderr []float64
	resid  []float64
	ssr    float64
	nobs   int
	k      int
}

// ols ajusta y = X·β con las columnas dadas (sin añadir constante).
// Resuelve las ecuaciones normales con Cholesky sobre X'X.
func ols(y []float64, cols ...[]float64) (olsFit, error) {
	n, k := len(y), len(cols)
	if n <= k {
		return olsFit{}, fmt.Errorf("engine.ols: %w: %d observations for %d regressors",
			domain.ErrInsufficientData, n, k)
	}

	x := mat.NewDense(n, k, nil)
	for j, c := range cols {
		if len(c) != n {
			return olsFit{}, fmt.Errorf("engine.ols: %w: column %d has %d rows, want %d",
				domain.ErrMisalignedSeries, j, len(c), n)
		}
		for i := 0; i < n; i++ {
			x.Set(i, j, c[i])
		}
	}

	var xtx mat.SymDense
	xtx.SymOuterK(1, x.T())

	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok || chol.Cond() > maxCondition {
		return olsFit{}, fmt.Errorf("engine.ols: %w: singular design matrix", domain.ErrDegenerateSeries)
	}

	yv := mat.NewVecDense(n, y)
	var xty mat.VecDense
	xty.MulVec(x.T(), yv)

	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &xty); err != nil {
		return olsFit{}, fmt.Errorf("engine.ols: %w: %v", domain.ErrDegenerateSeries, err)
	}

	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return olsFit{}, fmt.Errorf("engine.ols: %w: %v", domain.ErrDegenerateSeries, err)
	}

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)

	fit := olsFit{
		coef:   make([]float64, k),
		stderr: make([]float64, k),
		resid:  make([]float64, n),
		nobs:   n,
		k:      k,
	}
	for i := 0; i < n; i++ {
		e := y[i] - fitted.AtVec(i)
		fit.resid[i] = e
		fit.ssr += e * e
	}

	sigma2 := fit.ssr / float64(n-k)
	for j := 0; j < k; j++ {
		fit.coef[j] = beta.AtVec(j)
		fit.stderr[j] = math.Sqrt(sigma2 * inv.At(j, j))
	}
	return fit, nil
}

// tvalue devuelve el estadístico t del coeficiente j.
func (f olsFit) tvalue(j int) float64 {
	return f.coef[j] / f.stderr[j]
}

// aic usa la log-verosimilitud gaussiana, igual que los paquetes estadísticos
// de referencia: n·(ln 2π + ln(ssr/n) + 1) + 2k.
func (f olsFit) aic() float64 {
	n := float64(f.nobs)
	return n*(math.Log(2*math.Pi)+math.Log(f.ssr/n)+1) + 2*float64(f.k)
}

// rsquared calcula R² centrado.
func (f olsFit) rsquared(y []float64) float64 {
	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))

	tss := 0.0
	for _, v := range y {
		d := v - mean
		tss += d * d
	}
	if tss == 0 {
		return math.NaN()
	}
	return 1 - f.ssr/tss
}

func constant(n int) []float64 {
	c := make([]float64, n)
	for i := range c {
		c[i] = 1
	}
	return c
}
