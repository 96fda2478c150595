package domain

import (
	"fmt"
	"sort"
	"time"
)

// AlignPolicy decide cómo se cruzan las fechas de varios tickers.
type AlignPolicy string

const (
	// AlignIntersection conserva solo las fechas presentes en todas las series.
	AlignIntersection AlignPolicy = "intersection"
	// AlignForwardFill une todas las fechas, rellena huecos con el último
	// precio conocido y descarta las fechas iniciales donde algún ticker
	// todavía no tiene observación.
	AlignForwardFill AlignPolicy = "ffill"
)

// Valid devuelve true si la política es reconocida.
func (p AlignPolicy) Valid() bool {
	return p == AlignIntersection || p == AlignForwardFill
}

// PriceTable es la matriz fechas × tickers ya alineada.
type PriceTable struct {
	dates   []time.Time
	tickers []string
	columns map[string][]float64
}

// Align construye la PriceTable a partir de series independientes.
// Devuelve ErrMisalignedSeries si no hay series, hay tickers repetidos o
// el resultado no tiene ninguna fecha.
func Align(policy AlignPolicy, series ...PriceSeries) (PriceTable, error) {
	if len(series) == 0 {
		return PriceTable{}, fmt.Errorf("domain.Align: %w: no series", ErrMisalignedSeries)
	}

	seen := make(map[string]bool, len(series))
	for _, s := range series {
		if seen[s.ticker] {
			return PriceTable{}, fmt.Errorf("domain.Align: %w: duplicate ticker %s", ErrMisalignedSeries, s.ticker)
		}
		seen[s.ticker] = true
	}

	var table PriceTable
	switch policy {
	case AlignIntersection, "":
		table = alignIntersection(series)
	case AlignForwardFill:
		table = alignForwardFill(series)
	default:
		return PriceTable{}, fmt.Errorf("domain.Align: %w: unknown align policy %q", ErrInvalidParams, policy)
	}

	if len(table.dates) == 0 {
		return PriceTable{}, fmt.Errorf("domain.Align: %w: %s share no common dates",
			ErrMisalignedSeries, tickerList(series))
	}
	return table, nil
}

func alignIntersection(series []PriceSeries) PriceTable {
	counts := make(map[time.Time]int)
	for _, s := range series {
		for _, p := range s.points {
			counts[p.Date]++
		}
	}

	var dates []time.Time
	for d, n := range counts {
		if n == len(series) {
			dates = append(dates, d)
		}
	}
	sortDates(dates)

	index := dateIndex(dates)
	t := newTable(dates, series)
	for _, s := range series {
		col := t.columns[s.ticker]
		for _, p := range s.points {
			if i, ok := index[p.Date]; ok {
				col[i] = p.Close
			}
		}
	}
	return t
}

func alignForwardFill(series []PriceSeries) PriceTable {
	union := make(map[time.Time]bool)
	start := time.Time{}
	for _, s := range series {
		first, ok := s.First()
		if !ok {
			return PriceTable{}
		}
		// Fechas anteriores a la primera observación de cualquier ticker se descartan.
		if first.Date.After(start) {
			start = first.Date
		}
		for _, p := range s.points {
			union[p.Date] = true
		}
	}

	var dates []time.Time
	for d := range union {
		if !d.Before(start) {
			dates = append(dates, d)
		}
	}
	sortDates(dates)

	t := newTable(dates, series)
	for _, s := range series {
		col := t.columns[s.ticker]
		j := 0
		last := 0.0
		for i, d := range dates {
			for j < len(s.points) && !s.points[j].Date.After(d) {
				last = s.points[j].Close
				j++
			}
			col[i] = last
		}
	}
	return t
}

func newTable(dates []time.Time, series []PriceSeries) PriceTable {
	t := PriceTable{
		dates:   dates,
		tickers: make([]string, 0, len(series)),
		columns: make(map[string][]float64, len(series)),
	}
	for _, s := range series {
		t.tickers = append(t.tickers, s.ticker)
		t.columns[s.ticker] = make([]float64, len(dates))
	}
	return t
}

// Len devuelve el número de fechas alineadas.
func (t PriceTable) Len() int { return len(t.dates) }

// Dates devuelve una copia del eje de fechas.
func (t PriceTable) Dates() []time.Time {
	out := make([]time.Time, len(t.dates))
	copy(out, t.dates)
	return out
}

// Tickers devuelve los tickers en el orden de entrada.
func (t PriceTable) Tickers() []string {
	out := make([]string, len(t.tickers))
	copy(out, t.tickers)
	return out
}

// Column devuelve una copia de los precios de un ticker.
func (t PriceTable) Column(ticker string) ([]float64, bool) {
	col, ok := t.columns[ticker]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(col))
	copy(out, col)
	return out, true
}

func dateIndex(dates []time.Time) map[time.Time]int {
	idx := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		idx[d] = i
	}
	return idx
}

func sortDates(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
}

func tickerList(series []PriceSeries) string {
	names := make([]string, len(series))
	for i, s := range series {
		names[i] = s.ticker
	}
	return fmt.Sprint(names)
}
