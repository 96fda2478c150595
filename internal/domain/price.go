package domain

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// PricePoint es un cierre ajustado diario.
type PricePoint struct {
	Date  time.Time
	Close float64
}

// PriceSeries es la serie diaria de un ticker. Inmutable una vez construida:
// los accessors devuelven copias.
type PriceSeries struct {
	ticker string
	points []PricePoint
}

// NewPriceSeries valida y ordena los puntos por fecha.
// Las fechas se normalizan a medianoche UTC; fechas duplicadas, precios
// negativos o no finitos son un error.
func NewPriceSeries(ticker string, points []PricePoint) (PriceSeries, error) {
	if ticker == "" {
		return PriceSeries{}, fmt.Errorf("domain.NewPriceSeries: empty ticker")
	}

	sorted := make([]PricePoint, len(points))
	for i, p := range points {
		if math.IsNaN(p.Close) || math.IsInf(p.Close, 0) || p.Close < 0 {
			return PriceSeries{}, fmt.Errorf("domain.NewPriceSeries: %s: invalid close %v at %s",
				ticker, p.Close, p.Date.Format(DateLayout))
		}
		sorted[i] = PricePoint{Date: TruncateDay(p.Date), Close: p.Close}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Date.Equal(sorted[i-1].Date) {
			return PriceSeries{}, fmt.Errorf("domain.NewPriceSeries: %s: duplicate date %s",
				ticker, sorted[i].Date.Format(DateLayout))
		}
	}

	return PriceSeries{ticker: ticker, points: sorted}, nil
}

// DateLayout es el formato de fecha usado en CSV, SQLite y consola.
const DateLayout = "2006-01-02"

// TruncateDay devuelve la fecha a medianoche UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Ticker devuelve el símbolo de la serie.
func (s PriceSeries) Ticker() string { return s.ticker }

// Len devuelve el número de observaciones.
func (s PriceSeries) Len() int { return len(s.points) }

// Points devuelve una copia de los puntos, ordenados por fecha.
func (s PriceSeries) Points() []PricePoint {
	out := make([]PricePoint, len(s.points))
	copy(out, s.points)
	return out
}

// First y Last devuelven los extremos del rango; ok=false si la serie está vacía.
func (s PriceSeries) First() (PricePoint, bool) {
	if len(s.points) == 0 {
		return PricePoint{}, false
	}
	return s.points[0], true
}

func (s PriceSeries) Last() (PricePoint, bool) {
	if len(s.points) == 0 {
		return PricePoint{}, false
	}
	return s.points[len(s.points)-1], true
}

// Between devuelve la sub-serie con fechas en [from, to]. Un extremo cero no acota.
func (s PriceSeries) Between(from, to time.Time) PriceSeries {
	out := make([]PricePoint, 0, len(s.points))
	for _, p := range s.points {
		if !from.IsZero() && p.Date.Before(TruncateDay(from)) {
			continue
		}
		if !to.IsZero() && p.Date.After(TruncateDay(to)) {
			continue
		}
		out = append(out, p)
	}
	return PriceSeries{ticker: s.ticker, points: out}
}
