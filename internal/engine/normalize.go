package engine

import (
	"fmt"
	"math"

	"github.com/alejandrodnm/meanrev/internal/domain"
)

// Deviation calcula la medida de desviación entre dos series alineadas.
//   - ModeSpread: a[t] - b[t]
//   - ModeRatio:  a[t] / b[t], NaN donde b[t] == 0
//   - ModePrice:  copia de a (b se ignora)
func Deviation(a, b []float64, mode domain.Mode) ([]float64, error) {
	if mode == domain.ModePrice {
		out := make([]float64, len(a))
		copy(out, a)
		return out, nil
	}
	if len(a) != len(b) {
		return nil, fmt.Errorf("engine.Deviation: %w: len(a)=%d len(b)=%d",
			domain.ErrMisalignedSeries, len(a), len(b))
	}

	out := make([]float64, len(a))
	switch mode {
	case domain.ModeSpread:
		for t := range a {
			out[t] = a[t] - b[t]
		}
	case domain.ModeRatio:
		for t := range a {
			q, err := quotient(a[t], b[t])
			if err != nil {
				q = math.NaN()
			}
			out[t] = q
		}
	default:
		return nil, fmt.Errorf("engine.Deviation: %w: unknown mode %q", domain.ErrInvalidParams, mode)
	}
	return out, nil
}

// ZScore normaliza la desviación contra la baseline.
// El resultado es NaN donde la std es cero o no está definida.
func ZScore(dev []float64, baseline Baseline) []float64 {
	out := make([]float64, len(dev))
	for t, v := range dev {
		mean, std := baseline.At(t)
		q, err := quotient(v-mean, std)
		if err != nil {
			q = math.NaN()
		}
		out[t] = q
	}
	return out
}

// Bands devuelve las bandas mean ± nStd·std para los n índices.
func Bands(baseline Baseline, n int, nStd float64) (upper, lower []float64) {
	upper = make([]float64, n)
	lower = make([]float64, n)
	for t := 0; t < n; t++ {
		mean, std := baseline.At(t)
		upper[t] = mean + nStd*std
		lower[t] = mean - nStd*std
	}
	return upper, lower
}

// zeroTolerance: por debajo de esto un denominador se considera cero
// (una std de valores idénticos puede salir ~1e-17 por redondeo).
const zeroTolerance = 1e-12

// quotient divide num/den. Denominador cero o indefinido es ErrDivisionUndefined;
// los callers lo convierten en un punto NaN.
func quotient(num, den float64) (float64, error) {
	if math.IsNaN(den) || math.Abs(den) < zeroTolerance || math.IsNaN(num) {
		return math.NaN(), domain.ErrDivisionUndefined
	}
	return num / den, nil
}
