package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSeries(t *testing.T, ticker string, days []int, closes []float64) PriceSeries {
	t.Helper()
	require.Equal(t, len(days), len(closes))
	pts := make([]PricePoint, len(days))
	for i := range days {
		pts[i] = PricePoint{Date: day(days[i]), Close: closes[i]}
	}
	s, err := NewPriceSeries(ticker, pts)
	require.NoError(t, err)
	return s
}

func TestAlign_IntersectionKeepsCommonDates(t *testing.T) {
	a := mustSeries(t, "A", []int{1, 2, 3, 5}, []float64{10, 11, 12, 14})
	b := mustSeries(t, "B", []int{2, 3, 4, 5}, []float64{20, 21, 22, 23})

	table, err := Align(AlignIntersection, a, b)
	require.NoError(t, err)

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, day(2), table.Dates()[0])
	assert.Equal(t, day(5), table.Dates()[2])

	colA, ok := table.Column("A")
	require.True(t, ok)
	assert.Equal(t, []float64{11, 12, 14}, colA)

	colB, _ := table.Column("B")
	assert.Equal(t, []float64{20, 21, 23}, colB)
	assert.Equal(t, []string{"A", "B"}, table.Tickers())
}

func TestAlign_ForwardFillFillsGapsAndDropsLeadingDates(t *testing.T) {
	a := mustSeries(t, "A", []int{1, 2, 3, 5}, []float64{10, 11, 12, 14})
	b := mustSeries(t, "B", []int{2, 4, 5}, []float64{20, 22, 23})

	table, err := Align(AlignForwardFill, a, b)
	require.NoError(t, err)

	// Día 1 se descarta: B todavía no tiene precio.
	require.Equal(t, 4, table.Len())
	assert.Equal(t, day(2), table.Dates()[0])

	colA, _ := table.Column("A")
	assert.Equal(t, []float64{11, 12, 12, 14}, colA) // día 4 rellenado con 12

	colB, _ := table.Column("B")
	assert.Equal(t, []float64{20, 20, 22, 23}, colB) // día 3 rellenado con 20
}

func TestAlign_PoliciesChangeWindowBoundaries(t *testing.T) {
	a := mustSeries(t, "A", []int{1, 2, 3, 4}, []float64{1, 2, 3, 4})
	b := mustSeries(t, "B", []int{1, 3, 4}, []float64{5, 6, 7})

	inter, err := Align(AlignIntersection, a, b)
	require.NoError(t, err)
	ffill, err := Align(AlignForwardFill, a, b)
	require.NoError(t, err)

	assert.Equal(t, 3, inter.Len())
	assert.Equal(t, 4, ffill.Len())
}

func TestAlign_NoCommonDates(t *testing.T) {
	a := mustSeries(t, "A", []int{1, 2}, []float64{10, 11})
	b := mustSeries(t, "B", []int{3, 4}, []float64{20, 21})

	_, err := Align(AlignIntersection, a, b)
	assert.ErrorIs(t, err, ErrMisalignedSeries)
}

func TestAlign_EmptySeriesIsMisaligned(t *testing.T) {
	a := mustSeries(t, "A", []int{1, 2}, []float64{10, 11})
	empty, err := NewPriceSeries("B", nil)
	require.NoError(t, err)

	_, err = Align(AlignIntersection, a, empty)
	assert.ErrorIs(t, err, ErrMisalignedSeries)

	_, err = Align(AlignForwardFill, a, empty)
	assert.ErrorIs(t, err, ErrMisalignedSeries)
}

func TestAlign_DuplicateTicker(t *testing.T) {
	a := mustSeries(t, "A", []int{1}, []float64{10})
	_, err := Align(AlignIntersection, a, a)
	assert.ErrorIs(t, err, ErrMisalignedSeries)
}

func TestAlign_NoSeries(t *testing.T) {
	_, err := Align(AlignIntersection)
	assert.ErrorIs(t, err, ErrMisalignedSeries)
}

func TestAlign_UnknownPolicy(t *testing.T) {
	a := mustSeries(t, "A", []int{1}, []float64{10})
	_, err := Align("outer", a)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestPriceTable_UnknownColumn(t *testing.T) {
	a := mustSeries(t, "A", []int{1}, []float64{10})
	table, err := Align(AlignIntersection, a)
	require.NoError(t, err)

	_, ok := table.Column("ZZZ")
	assert.False(t, ok)
}
