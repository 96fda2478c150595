package quotes

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alejandrodnm/meanrev/internal/domain"
	"github.com/shopspring/decimal"
)

// Formato de descarga: Date,Open,High,Low,Close,Adj Close,Volume
// Los días sin cotización vienen como "null" y se omiten.
const (
	colDate     = "Date"
	colAdjClose = "Adj Close"
	colClose    = "Close"
)

// ParseCSV lee un histórico diario y devuelve la serie de cierres ajustados.
// Si no hay columna "Adj Close" usa "Close".
func ParseCSV(ticker string, r io.Reader) (domain.PriceSeries, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return domain.PriceSeries{}, fmt.Errorf("quotes.ParseCSV: %s: read header: %w", ticker, err)
	}
	dateIdx, closeIdx, err := columns(header)
	if err != nil {
		return domain.PriceSeries{}, fmt.Errorf("quotes.ParseCSV: %s: %w", ticker, err)
	}

	var points []domain.PricePoint
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.PriceSeries{}, fmt.Errorf("quotes.ParseCSV: %s: line %d: %w", ticker, line, err)
		}
		if len(rec) <= dateIdx || len(rec) <= closeIdx {
			continue
		}

		raw := strings.TrimSpace(rec[closeIdx])
		if raw == "" || strings.EqualFold(raw, "null") {
			continue
		}
		date, err := time.Parse(domain.DateLayout, strings.TrimSpace(rec[dateIdx]))
		if err != nil {
			return domain.PriceSeries{}, fmt.Errorf("quotes.ParseCSV: %s: line %d: date: %w", ticker, line, err)
		}
		px, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.PriceSeries{}, fmt.Errorf("quotes.ParseCSV: %s: line %d: close %q: %w", ticker, line, raw, err)
		}

		points = append(points, domain.PricePoint{Date: date, Close: px.InexactFloat64()})
	}

	if len(points) == 0 {
		return domain.PriceSeries{}, fmt.Errorf("quotes.ParseCSV: %s: %w: no price rows", ticker, domain.ErrInsufficientData)
	}
	return domain.NewPriceSeries(ticker, points)
}

func parseCSV(ticker string, body []byte) (domain.PriceSeries, error) {
	return ParseCSV(ticker, bytes.NewReader(body))
}

func columns(header []string) (dateIdx, closeIdx int, err error) {
	dateIdx, closeIdx = -1, -1
	plainClose := -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case colDate:
			dateIdx = i
		case colAdjClose:
			closeIdx = i
		case colClose:
			plainClose = i
		}
	}
	if closeIdx < 0 {
		closeIdx = plainClose
	}
	if dateIdx < 0 || closeIdx < 0 {
		return 0, 0, fmt.Errorf("missing %q or close column in header %v", colDate, header)
	}
	return dateIdx, closeIdx, nil
}
