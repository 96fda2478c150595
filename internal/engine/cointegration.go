package engine

import (
	"fmt"
	"math"

	"github.com/alejandrodnm/meanrev/internal/domain"
)

// collinearR2: con R² por encima de esto la regresión de cointegración es
// perfecta y el residuo se considera estacionario sin correr el ADF.
var collinearR2 = 1 - 100*math.Sqrt(2.220446049250313e-16)

// Cointegration ejecuta Engle-Granger en dos pasos sobre (a, b) y un ADF
// sobre el spread a - b. Devuelve ambos p-values sin decidir nada.
//
//  1. OLS a = α + β·b → residuos (β es el hedge ratio)
//  2. ADF sin constante sobre los residuos, p-value MacKinnon con N=2
//  3. ADF con constante sobre a - b, p-value MacKinnon con N=1
//
// Los índices donde alguna serie es NaN se descartan antes de empezar.
func Cointegration(a, b []float64) (domain.Diagnostic, error) {
	if len(a) != len(b) {
		return domain.Diagnostic{}, fmt.Errorf("engine.Cointegration: %w: len(a)=%d len(b)=%d",
			domain.ErrMisalignedSeries, len(a), len(b))
	}

	xa, xb := dropUndefined(a, b)
	n := len(xa)
	if n < 3 {
		return domain.Diagnostic{}, fmt.Errorf("engine.Cointegration: %w: %d paired observations",
			domain.ErrInsufficientData, n)
	}

	fit, err := ols(xa, xb, constant(n))
	if err != nil {
		return domain.Diagnostic{}, fmt.Errorf("engine.Cointegration: hedge regression: %w", err)
	}

	diag := domain.Diagnostic{
		HedgeRatio:   fit.coef[0],
		Observations: n,
	}

	if r2 := fit.rsquared(xa); r2 >= collinearR2 {
		diag.CointStat = math.Inf(-1)
		diag.CointPValue = 0
	} else {
		res, err := adfStat(fit.resid, TrendNone)
		if err != nil {
			return domain.Diagnostic{}, fmt.Errorf("engine.Cointegration: residual ADF: %w", err)
		}
		diag.CointStat = res.Stat
		diag.CointLag = res.UsedLag
		diag.CointPValue = MacKinnonP(res.Stat, TrendConstant, 2)
	}

	spread := make([]float64, n)
	for i := range spread {
		spread[i] = xa[i] - xb[i]
	}
	adf, err := ADF(spread)
	if err != nil {
		return domain.Diagnostic{}, fmt.Errorf("engine.Cointegration: spread ADF: %w", err)
	}
	diag.ADFStat = adf.Stat
	diag.ADFLag = adf.UsedLag
	diag.ADFPValue = adf.PValue

	return diag, nil
}

func dropUndefined(a, b []float64) ([]float64, []float64) {
	xa := make([]float64, 0, len(a))
	xb := make([]float64, 0, len(b))
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		xa = append(xa, a[i])
		xb = append(xb, b[i])
	}
	return xa, xb
}
