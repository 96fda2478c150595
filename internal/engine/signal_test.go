package engine

import (
	"math"
	"testing"

	"github.com/alejandrodnm/meanrev/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestSignalAt_Thresholds(t *testing.T) {
	tests := []struct {
		name string
		z    float64
		want domain.Signal
	}{
		{"far below band", -3, domain.Long},
		{"just below band", -1.5000001, domain.Long},
		{"lower edge is inside", -1.5, domain.Flat},
		{"center", 0, domain.Flat},
		{"upper edge is inside", 1.5, domain.Flat},
		{"just above band", 1.5000001, domain.Short},
		{"far above band", 4, domain.Short},
		{"undefined is flat", math.NaN(), domain.Flat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SignalAt(tt.z, 1.5))
		})
	}
}

func TestSignals_BoundaryEpsilon(t *testing.T) {
	nStd := 1.0
	eps := 1e-9
	got := Signals([]float64{nStd, nStd + eps, -nStd, -nStd - eps}, nStd)
	assert.Equal(t, []domain.Signal{domain.Flat, domain.Short, domain.Flat, domain.Long}, got)
}

func TestSignals_PureAndBounded(t *testing.T) {
	z := []float64{-2.1, math.NaN(), 0.3, 1.9, -0.5, math.Inf(1), math.Inf(-1)}

	first := Signals(z, 1)
	second := Signals(z, 1)
	assert.Equal(t, first, second)

	for _, s := range first {
		assert.Contains(t, []domain.Signal{domain.Short, domain.Flat, domain.Long}, s)
	}
	assert.Len(t, first, len(z))
}

func TestSignals_NoStateAcrossIndices(t *testing.T) {
	// Un Long en t no se mantiene en t+1 si el z-score vuelve a la banda.
	got := Signals([]float64{-3, 0, -3}, 1)
	assert.Equal(t, []domain.Signal{domain.Long, domain.Flat, domain.Long}, got)
}
