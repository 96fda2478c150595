package quotes

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alejandrodnm/meanrev/internal/domain"
	"github.com/alejandrodnm/meanrev/internal/metrics"
	"golang.org/x/time/rate"
)

const (
	defaultBase = "https://query1.finance.yahoo.com/v7/finance/download"

	// La descarga de históricos tolera pocas peticiones por segundo.
	requestsPerSec = 2
	burst          = 2

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client descarga históricos diarios en CSV con rate limiting y retries.
// Implementa ports.PriceProvider.
type Client struct {
	http    *http.Client
	base    string
	limiter *rate.Limiter
}

// NewClient crea un Client contra base. Si base está vacío usa el endpoint público.
func NewClient(base string) *Client {
	if base == "" {
		base = defaultBase
	}
	return &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		base:    base,
		limiter: rate.NewLimiter(requestsPerSec, burst),
	}
}

// FetchHistory descarga los cierres ajustados de ticker en [from, to].
// El extremo to es inclusivo: se pide hasta el día siguiente.
func (c *Client) FetchHistory(ctx context.Context, ticker string, from, to time.Time) (domain.PriceSeries, error) {
	body, err := c.get(ctx, c.historyURL(ticker, from, to))
	if err != nil {
		return domain.PriceSeries{}, fmt.Errorf("quotes.FetchHistory: %s: %w", ticker, err)
	}

	series, err := parseCSV(ticker, body)
	if err != nil {
		return domain.PriceSeries{}, fmt.Errorf("quotes.FetchHistory: %w", err)
	}
	slog.Debug("history downloaded", "ticker", ticker, "points", series.Len())
	return series.Between(from, to), nil
}

func (c *Client) historyURL(ticker string, from, to time.Time) string {
	var period1, period2 int64
	if !from.IsZero() {
		period1 = domain.TruncateDay(from).Unix()
	}
	if to.IsZero() {
		to = time.Now()
	}
	period2 = domain.TruncateDay(to).AddDate(0, 0, 1).Unix()

	q := url.Values{}
	q.Set("period1", strconv.FormatInt(period1, 10))
	q.Set("period2", strconv.FormatInt(period2, 10))
	q.Set("interval", "1d")
	q.Set("events", "history")
	q.Set("includeAdjustedClose", "true")
	return fmt.Sprintf("%s/%s?%s", c.base, url.PathEscape(ticker), q.Encode())
}

// get hace un GET con rate limiting y retries, y devuelve el body.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/csv")

		resp, err := c.http.Do(req)
		if err != nil {
			metrics.QuoteRequests.WithLabelValues("error").Inc()
			if attempt == maxRetries {
				return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}
		metrics.QuoteRequests.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			slog.Warn("rate limited by quotes source", "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return nil, fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return nil, fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		return body, nil
	}
	return nil, fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
