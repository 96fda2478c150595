package engine

import (
	"math"
	"testing"

	"github.com/alejandrodnm/meanrev/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestCorrelation(t *testing.T) {
	assert.InDelta(t, 1.0, Correlation([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-12)
	assert.InDelta(t, -1.0, Correlation([]float64{1, 2, 3}, []float64{3, 2, 1}), 1e-12)
	assert.True(t, math.IsNaN(Correlation([]float64{1, 2, 3}, []float64{5, 5, 5})))
	assert.True(t, math.IsNaN(Correlation([]float64{1}, []float64{1})))
	assert.True(t, math.IsNaN(Correlation([]float64{1, 2}, []float64{1, 2, 3})))
}

func TestCorrelations_Matrix(t *testing.T) {
	table := tableOf(t, map[string][]float64{
		"AAA": {1, 2, 3, 4, 5},
		"BBB": {2, 4, 6, 9, 10},
		"CCC": {5, 3, 4, 1, 2},
	}, "AAA", "BBB", "CCC")

	m := Correlations(table)
	assert.Equal(t, []string{"AAA", "BBB", "CCC"}, m.Tickers)
	for i := range m.Tickers {
		assert.Equal(t, 1.0, m.Values[i][i])
		for j := range m.Tickers {
			assert.Equal(t, m.Values[i][j], m.Values[j][i])
		}
	}

	a, b, rho, ok := MostCorrelated(m)
	assert.True(t, ok)
	assert.Equal(t, "AAA", a)
	assert.Equal(t, "BBB", b)
	assert.Greater(t, rho, 0.9)
}

func TestMostCorrelated_NoPairs(t *testing.T) {
	table := tableOf(t, map[string][]float64{"AAA": {1, 2, 3}}, "AAA")

	_, _, rho, ok := MostCorrelated(Correlations(table))
	assert.False(t, ok)
	assert.True(t, math.IsNaN(rho))
}

func TestMostCorrelated_SkipsIdenticalSeries(t *testing.T) {
	m := domain.CorrelationMatrix{
		Tickers: []string{"AAA", "AAA2", "BBB"},
		Values: [][]float64{
			{1, 1, 0.8},
			{1, 1, 0.7},
			{0.8, 0.7, 1},
		},
	}

	a, b, rho, ok := MostCorrelated(m)
	assert.True(t, ok)
	assert.Equal(t, "AAA", a)
	assert.Equal(t, "BBB", b)
	assert.Equal(t, 0.8, rho)
}
