package quotes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alejandrodnm/meanrev/internal/domain"
)

// FileProvider lee históricos de <dir>/<TICKER>.csv con el mismo formato que
// la descarga HTTP. Implementa ports.PriceProvider.
type FileProvider struct {
	dir string
}

// NewFileProvider crea un FileProvider sobre dir.
func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{dir: dir}
}

// FetchHistory lee el CSV del ticker y lo recorta a [from, to].
func (p *FileProvider) FetchHistory(ctx context.Context, ticker string, from, to time.Time) (domain.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return domain.PriceSeries{}, err
	}

	path := filepath.Join(p.dir, strings.ToUpper(ticker)+".csv")
	f, err := os.Open(path)
	if err != nil {
		return domain.PriceSeries{}, fmt.Errorf("quotes.FileProvider: %s: %w", ticker, err)
	}
	defer f.Close()

	series, err := ParseCSV(ticker, f)
	if err != nil {
		return domain.PriceSeries{}, fmt.Errorf("quotes.FileProvider: %w", err)
	}
	return series.Between(from, to), nil
}
