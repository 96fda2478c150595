package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func TestNewPriceSeries_SortsByDate(t *testing.T) {
	s, err := NewPriceSeries("AAPL", []PricePoint{
		{Date: day(3), Close: 12},
		{Date: day(1), Close: 10},
		{Date: day(2), Close: 11},
	})
	require.NoError(t, err)

	pts := s.Points()
	require.Len(t, pts, 3)
	assert.Equal(t, day(1), pts[0].Date)
	assert.Equal(t, 12.0, pts[2].Close)
	assert.Equal(t, "AAPL", s.Ticker())
}

func TestNewPriceSeries_NormalizesToMidnightUTC(t *testing.T) {
	ny := time.FixedZone("NY", -5*3600)
	s, err := NewPriceSeries("MSFT", []PricePoint{
		{Date: time.Date(2024, 1, 5, 9, 30, 0, 0, ny), Close: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, day(5), s.Points()[0].Date)
}

func TestNewPriceSeries_RejectsDuplicateDates(t *testing.T) {
	_, err := NewPriceSeries("AAPL", []PricePoint{
		{Date: day(1), Close: 10},
		{Date: day(1).Add(3 * time.Hour), Close: 11},
	})
	assert.Error(t, err)
}

func TestNewPriceSeries_RejectsInvalidPrices(t *testing.T) {
	for _, v := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := NewPriceSeries("AAPL", []PricePoint{{Date: day(1), Close: v}})
		assert.Error(t, err, "close=%v", v)
	}
}

func TestNewPriceSeries_EmptyTicker(t *testing.T) {
	_, err := NewPriceSeries("", nil)
	assert.Error(t, err)
}

func TestPriceSeries_PointsIsACopy(t *testing.T) {
	s, err := NewPriceSeries("AAPL", []PricePoint{{Date: day(1), Close: 10}})
	require.NoError(t, err)

	pts := s.Points()
	pts[0].Close = 999
	assert.Equal(t, 10.0, s.Points()[0].Close)
}

func TestPriceSeries_Between(t *testing.T) {
	s, err := NewPriceSeries("AAPL", []PricePoint{
		{Date: day(1), Close: 10},
		{Date: day(2), Close: 11},
		{Date: day(3), Close: 12},
		{Date: day(4), Close: 13},
	})
	require.NoError(t, err)

	sub := s.Between(day(2), day(3))
	assert.Equal(t, 2, sub.Len())

	open := s.Between(time.Time{}, day(2))
	assert.Equal(t, 2, open.Len())

	last, ok := s.Between(day(3), time.Time{}).Last()
	require.True(t, ok)
	assert.Equal(t, 13.0, last.Close)
}
