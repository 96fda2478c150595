package engine

import (
	"math"

	"github.com/alejandrodnm/meanrev/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// Correlations calcula la matriz de Pearson sobre los precios alineados de la tabla.
// Pares sin varianza quedan NaN fuera de la diagonal.
func Correlations(table domain.PriceTable) domain.CorrelationMatrix {
	tickers := table.Tickers()
	cols := make([][]float64, len(tickers))
	for i, t := range tickers {
		cols[i], _ = table.Column(t)
	}

	m := domain.CorrelationMatrix{
		Tickers: tickers,
		Values:  make([][]float64, len(tickers)),
	}
	for i := range tickers {
		m.Values[i] = make([]float64, len(tickers))
		m.Values[i][i] = 1
	}
	for i := range tickers {
		for j := i + 1; j < len(tickers); j++ {
			rho := Correlation(cols[i], cols[j])
			m.Values[i][j] = rho
			m.Values[j][i] = rho
		}
	}
	return m
}

// Correlation es el Pearson de dos series alineadas; NaN si alguna no varía
// o tienen menos de dos puntos.
func Correlation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return math.NaN()
	}
	rho := stat.Correlation(x, y, nil)
	if math.IsInf(rho, 0) {
		return math.NaN()
	}
	return rho
}

// MostCorrelated devuelve el par con mayor correlación fuera de la diagonal.
// Los pares con correlación 1 (series idénticas) se ignoran.
// ok=false si la matriz tiene menos de dos tickers o todo es NaN.
func MostCorrelated(m domain.CorrelationMatrix) (a, b string, rho float64, ok bool) {
	rho = math.Inf(-1)
	for i := range m.Tickers {
		for j := i + 1; j < len(m.Tickers); j++ {
			v := m.Values[i][j]
			if math.IsNaN(v) || v >= 1 || v <= rho {
				continue
			}
			a, b, rho, ok = m.Tickers[i], m.Tickers[j], v, true
		}
	}
	if !ok {
		return "", "", math.NaN(), false
	}
	return a, b, rho, true
}
