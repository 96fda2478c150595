package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alejandrodnm/meanrev/internal/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultUniverse son los tickers que se correlacionan cuando no se configuran otros.
var DefaultUniverse = []string{
	"AAPL", "MSFT", "AMZN", "NVDA", "GOOGL", "META", "TSLA", "BRK-B",
	"AVGO", "UNH", "JPM", "LLY", "V", "XOM", "JNJ", "HD",
	"MA", "PG", "COST", "ABBV", "MRK", "ADBE", "CVX", "CRM",
}

// Config es la configuración completa del motor.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Data    DataConfig    `yaml:"data"`
	Screen  ScreenConfig  `yaml:"screen"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// EngineConfig son los parámetros del cálculo de señales.
type EngineConfig struct {
	Window   int     `yaml:"window"`
	NStd     float64 `yaml:"n_std"`
	Mode     string  `yaml:"mode"`     // spread | ratio | price
	Baseline string  `yaml:"baseline"` // static | rolling
	Align    string  `yaml:"align"`    // intersection | ffill
}

// DataConfig controla de dónde salen los precios.
type DataConfig struct {
	Source     string `yaml:"source"`      // http | file
	Dir        string `yaml:"dir"`         // directorio con <TICKER>.csv si source=file
	QuotesBase string `yaml:"quotes_base"` // base URL de la descarga CSV
	Start      string `yaml:"start"`       // YYYY-MM-DD, vacío = sin límite
	End        string `yaml:"end"`         // YYYY-MM-DD, vacío = hoy
	Refresh    bool   `yaml:"refresh"`     // ignora el cache de precios
}

// ScreenConfig controla el screening de pares.
type ScreenConfig struct {
	Tickers        []string `yaml:"tickers"`
	Workers        int      `yaml:"workers"` // 0 = NumCPU*2
	MaxCointP      float64  `yaml:"max_coint_p"`
	MaxADFP        float64  `yaml:"max_adf_p"` // 0 = sin filtro
	MinCorrelation float64  `yaml:"min_correlation"`
	Top            int      `yaml:"top"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// MetricsConfig controla el endpoint Prometheus. Vacío = deshabilitado.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// Default devuelve la configuración por defecto con los overrides de entorno aplicados.
func Default() *Config {
	_ = godotenv.Load()

	var cfg Config
	applyEnvOverrides(&cfg)
	setDefaults(&cfg)
	return &cfg
}

// Params convierte la sección engine en domain.Params y la valida.
func (c *Config) Params() (domain.Params, error) {
	p := domain.Params{
		Window:   c.Engine.Window,
		NStd:     c.Engine.NStd,
		Mode:     domain.Mode(strings.ToLower(c.Engine.Mode)),
		Baseline: domain.Baseline(strings.ToLower(c.Engine.Baseline)),
		Align:    domain.AlignPolicy(strings.ToLower(c.Engine.Align)),
	}
	if err := p.Validate(); err != nil {
		return domain.Params{}, fmt.Errorf("config.Params: %w", err)
	}
	return p, nil
}

// Period devuelve el rango de fechas configurado. Un extremo vacío queda en cero.
func (c *Config) Period() (from, to time.Time, err error) {
	if c.Data.Start != "" {
		if from, err = time.Parse(domain.DateLayout, c.Data.Start); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("config.Period: %w: start %q", domain.ErrInvalidParams, c.Data.Start)
		}
	}
	if c.Data.End != "" {
		if to, err = time.Parse(domain.DateLayout, c.Data.End); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("config.Period: %w: end %q", domain.ErrInvalidParams, c.Data.End)
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("config.Period: %w: end %s before start %s",
			domain.ErrInvalidParams, c.Data.End, c.Data.Start)
	}
	return from, to, nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("MEANREV_DB"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("MEANREV_QUOTES_BASE"); v != "" {
		cfg.Data.QuotesBase = v
	}
	if v := os.Getenv("MEANREV_DATA_DIR"); v != "" {
		cfg.Data.Dir = v
		cfg.Data.Source = "file"
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
// Los valores inválidos explícitos (n_std negativo, mode desconocido) se
// respetan para que Params() los rechace.
func setDefaults(cfg *Config) {
	def := domain.DefaultParams()
	if cfg.Engine.Window == 0 {
		cfg.Engine.Window = def.Window
	}
	if cfg.Engine.NStd == 0 {
		cfg.Engine.NStd = def.NStd
	}
	if cfg.Engine.Mode == "" {
		cfg.Engine.Mode = string(def.Mode)
	}
	if cfg.Engine.Baseline == "" {
		cfg.Engine.Baseline = string(def.Baseline)
	}
	if cfg.Engine.Align == "" {
		cfg.Engine.Align = string(def.Align)
	}
	if cfg.Data.Source == "" {
		cfg.Data.Source = "http"
	}
	if cfg.Data.Dir == "" {
		cfg.Data.Dir = "data"
	}
	if len(cfg.Screen.Tickers) == 0 {
		cfg.Screen.Tickers = append([]string(nil), DefaultUniverse...)
	}
	if cfg.Screen.MaxCointP <= 0 {
		cfg.Screen.MaxCointP = 0.05
	}
	if cfg.Screen.Top <= 0 {
		cfg.Screen.Top = 20
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "meanrev.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
