package scanner

import (
	"github.com/alejandrodnm/meanrev/internal/domain"
)

// FilterConfig contiene los umbrales del screening. Un cero desactiva el filtro.
type FilterConfig struct {
	// MaxCointPValue descarta pares cuyo p-value de Engle-Granger supera esto.
	MaxCointPValue float64
	// MaxADFPValue descarta pares cuyo spread no es estacionario a este nivel.
	MaxADFPValue float64
	// MinCorrelation descarta pares con correlación de precios menor.
	MinCorrelation float64
}

// DefaultFilterConfig devuelve el filtro por defecto: solo cointegración al 5%.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MaxCointPValue: 0.05,
	}
}

// Filter aplica los filtros configurados sobre una lista de pares.
type Filter struct {
	cfg FilterConfig
}

// NewFilter crea un Filter con la configuración dada.
func NewFilter(cfg FilterConfig) *Filter {
	return &Filter{cfg: cfg}
}

// Apply devuelve los pares que pasan todos los filtros.
func (f *Filter) Apply(scores []domain.PairScore) []domain.PairScore {
	result := make([]domain.PairScore, 0, len(scores))
	for _, s := range scores {
		if f.passes(s) {
			result = append(result, s)
		}
	}
	return result
}

// passes devuelve true si el par supera todos los criterios.
// Un valor NaN nunca pasa un filtro activo.
func (f *Filter) passes(s domain.PairScore) bool {
	if f.cfg.MaxCointPValue > 0 && !(s.Diagnostic.CointPValue <= f.cfg.MaxCointPValue) {
		return false
	}
	if f.cfg.MaxADFPValue > 0 && !(s.Diagnostic.ADFPValue <= f.cfg.MaxADFPValue) {
		return false
	}
	if f.cfg.MinCorrelation > 0 && !(s.Correlation >= f.cfg.MinCorrelation) {
		return false
	}
	return true
}
