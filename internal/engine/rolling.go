// Package engine implementa el cálculo de señales de reversión a la media:
// estadísticas móviles, z-score, señales por umbral, backtest con lag de un
// día y el diagnóstico de cointegración. Todas las funciones son puras.
package engine

import (
	"fmt"
	"math"

	"github.com/alejandrodnm/meanrev/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// Baseline devuelve la media y la desviación contra las que se normaliza el índice t.
type Baseline interface {
	At(t int) (mean, std float64)
}

// RollingWindow es la media y std muestral (N-1) de la ventana que termina en cada índice.
// Los primeros Window-1 puntos son NaN.
type RollingWindow struct {
	Window int
	Mean   []float64
	Std    []float64
}

// Rolling calcula media y desviación estándar muestral sobre ventanas de tamaño window.
// Si window > len(series) todo el resultado queda indefinido.
func Rolling(series []float64, window int) (RollingWindow, error) {
	if window < 2 {
		return RollingWindow{}, fmt.Errorf("engine.Rolling: %w: window must be >= 2, got %d",
			domain.ErrInvalidParams, window)
	}

	n := len(series)
	r := RollingWindow{
		Window: window,
		Mean:   nanSlice(n),
		Std:    nanSlice(n),
	}

	for t := window - 1; t < n; t++ {
		// stat.MeanStdDev usa el estimador insesgado (N-1).
		// Un NaN dentro de la ventana propaga NaN a ambos valores.
		r.Mean[t], r.Std[t] = stat.MeanStdDev(series[t-window+1:t+1], nil)
	}
	return r, nil
}

// At implementa Baseline.
func (r RollingWindow) At(t int) (float64, float64) {
	if t < 0 || t >= len(r.Mean) {
		return math.NaN(), math.NaN()
	}
	return r.Mean[t], r.Std[t]
}

// Defined devuelve cuántos puntos tienen media y std definidas.
func (r RollingWindow) Defined() int {
	n := 0
	for i := range r.Mean {
		if !math.IsNaN(r.Mean[i]) && !math.IsNaN(r.Std[i]) {
			n++
		}
	}
	return n
}

// StaticBaseline es la media y std muestral de toda la serie.
type StaticBaseline struct {
	Mean float64
	Std  float64
}

// Static calcula la baseline de muestra completa ignorando los NaN.
// Con menos de dos valores definidos ambos quedan NaN.
func Static(series []float64) StaticBaseline {
	defined := make([]float64, 0, len(series))
	for _, v := range series {
		if !math.IsNaN(v) {
			defined = append(defined, v)
		}
	}
	if len(defined) < 2 {
		return StaticBaseline{Mean: math.NaN(), Std: math.NaN()}
	}
	mean, std := stat.MeanStdDev(defined, nil)
	return StaticBaseline{Mean: mean, Std: std}
}

// At implementa Baseline: el mismo valor para todo t.
func (b StaticBaseline) At(int) (float64, float64) {
	return b.Mean, b.Std
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
