package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/alejandrodnm/meanrev/internal/domain"
	"github.com/stretchr/testify/require"
)

// randomWalk genera un paseo aleatorio gaussiano que empieza en start.
func randomWalk(rng *rand.Rand, n int, start float64) []float64 {
	out := make([]float64, n)
	v := start
	for i := range out {
		v += rng.NormFloat64()
		out[i] = v
	}
	return out
}

// cointegratedPair devuelve b (paseo aleatorio) y a = beta·b + alpha + ruido blanco.
func cointegratedPair(rng *rand.Rand, n int, beta, alpha float64) (a, b []float64) {
	b = randomWalk(rng, n, 100)
	a = make([]float64, n)
	for i := range a {
		a[i] = beta*b[i] + alpha + rng.NormFloat64()
	}
	return a, b
}

// tableOf arma una PriceTable con fechas consecutivas.
func tableOf(t *testing.T, cols map[string][]float64, order ...string) domain.PriceTable {
	t.Helper()
	start := time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC)

	series := make([]domain.PriceSeries, 0, len(order))
	for _, ticker := range order {
		closes := cols[ticker]
		pts := make([]domain.PricePoint, len(closes))
		for i, c := range closes {
			pts[i] = domain.PricePoint{Date: start.AddDate(0, 0, i), Close: c}
		}
		s, err := domain.NewPriceSeries(ticker, pts)
		require.NoError(t, err)
		series = append(series, s)
	}

	table, err := domain.Align(domain.AlignIntersection, series...)
	require.NoError(t, err)
	return table
}
