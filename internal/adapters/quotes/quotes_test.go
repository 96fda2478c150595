package quotes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alejandrodnm/meanrev/internal/adapters/quotes"
	"github.com/alejandrodnm/meanrev/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturesDir = "../../../testdata/fixtures/quotes"

func date(s string) time.Time {
	d, _ := time.Parse(domain.DateLayout, s)
	return d
}

func TestParseCSV_UsesAdjustedClose(t *testing.T) {
	f, err := os.Open(fixturesDir + "/KO.csv")
	require.NoError(t, err)
	defer f.Close()

	series, err := quotes.ParseCSV("KO", f)
	require.NoError(t, err)

	assert.Equal(t, "KO", series.Ticker())
	assert.Equal(t, 6, series.Len())
	first, ok := series.First()
	require.True(t, ok)
	assert.Equal(t, date("2024-01-02"), first.Date)
	assert.InDelta(t, 57.41, first.Close, 1e-9)
}

func TestParseCSV_SkipsNullRows(t *testing.T) {
	f, err := os.Open(fixturesDir + "/PEP.csv")
	require.NoError(t, err)
	defer f.Close()

	series, err := quotes.ParseCSV("PEP", f)
	require.NoError(t, err)
	assert.Equal(t, 5, series.Len())
}

func TestParseCSV_FallsBackToClose(t *testing.T) {
	body := "Date,Close\n2024-01-03,10.5\n2024-01-02,10.25\n"
	series, err := quotes.ParseCSV("XYZ", strings.NewReader(body))
	require.NoError(t, err)

	pts := series.Points()
	require.Len(t, pts, 2)
	assert.Equal(t, date("2024-01-02"), pts[0].Date, "points are sorted by date")
	assert.InDelta(t, 10.25, pts[0].Close, 1e-12)
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"empty body", "", nil},
		{"missing close column", "Date,Open\n2024-01-02,1\n", nil},
		{"header only", "Date,Adj Close\n", domain.ErrInsufficientData},
		{"bad number", "Date,Adj Close\n2024-01-02,abc\n", nil},
		{"bad date", "Date,Adj Close\n02/01/2024,1\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := quotes.ParseCSV("XYZ", strings.NewReader(tt.body))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestClient_FetchHistory(t *testing.T) {
	data, err := os.ReadFile(fixturesDir + "/KO.csv")
	require.NoError(t, err)

	from, to := date("2024-01-03"), date("2024-01-08")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/KO", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, strconv.FormatInt(from.Unix(), 10), r.URL.Query().Get("period1"))
		assert.Equal(t, strconv.FormatInt(to.AddDate(0, 0, 1).Unix(), 10), r.URL.Query().Get("period2"))
		w.Header().Set("Content-Type", "text/csv")
		w.Write(data)
	}))
	defer srv.Close()

	series, err := quotes.NewClient(srv.URL).FetchHistory(context.Background(), "KO", from, to)
	require.NoError(t, err)

	// El servidor devuelve de más; el cliente recorta al rango pedido.
	assert.Equal(t, 4, series.Len())
	last, _ := series.Last()
	assert.Equal(t, to, last.Date)
}

func TestClient_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "No data found, symbol may be delisted", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := quotes.NewClient(srv.URL).FetchHistory(context.Background(), "NOPE", time.Time{}, time.Time{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_RetriesServerError(t *testing.T) {
	data, err := os.ReadFile(fixturesDir + "/PEP.csv")
	require.NoError(t, err)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write(data)
	}))
	defer srv.Close()

	series, err := quotes.NewClient(srv.URL).FetchHistory(context.Background(), "PEP", time.Time{}, date("2024-12-31"))
	require.NoError(t, err)
	assert.Equal(t, 5, series.Len())
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := quotes.NewClient(srv.URL).FetchHistory(ctx, "KO", time.Time{}, time.Time{})
	assert.Error(t, err)
}

func TestFileProvider_FetchHistory(t *testing.T) {
	p := quotes.NewFileProvider(fixturesDir)

	series, err := p.FetchHistory(context.Background(), "ko", date("2024-01-04"), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "ko", series.Ticker())
	assert.Equal(t, 4, series.Len())
}

func TestFileProvider_MissingTicker(t *testing.T) {
	_, err := quotes.NewFileProvider(t.TempDir()).FetchHistory(context.Background(), "KO", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
