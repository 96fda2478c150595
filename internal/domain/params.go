package domain

import (
	"fmt"
	"math"
)

// Mode selecciona la medida de desviación.
type Mode string

const (
	ModeSpread Mode = "spread" // A - B
	ModeRatio  Mode = "ratio"  // A / B
	ModePrice  Mode = "price"  // un solo instrumento: el precio mismo
)

// Pair devuelve true si el modo necesita dos instrumentos.
func (m Mode) Pair() bool { return m == ModeSpread || m == ModeRatio }

// Baseline selecciona contra qué media/desviación se normaliza.
type Baseline string

const (
	BaselineStatic  Baseline = "static"  // media y std de toda la muestra
	BaselineRolling Baseline = "rolling" // media y std de la ventana móvil
)

// Params es el registro de configuración del engine. Se valida en la frontera
// (config / CLI) antes de llegar al cálculo.
type Params struct {
	Window   int
	NStd     float64
	Mode     Mode
	Baseline Baseline
	Align    AlignPolicy
}

// DefaultParams devuelve los valores por defecto: ventana de 20 días,
// banda de 1.5 desviaciones, spread contra baseline móvil.
func DefaultParams() Params {
	return Params{
		Window:   20,
		NStd:     1.5,
		Mode:     ModeSpread,
		Baseline: BaselineRolling,
		Align:    AlignIntersection,
	}
}

// Validate comprueba rangos y enumerados.
func (p Params) Validate() error {
	if p.Window < 2 {
		return fmt.Errorf("%w: window must be >= 2, got %d", ErrInvalidParams, p.Window)
	}
	if !(p.NStd > 0) || math.IsInf(p.NStd, 0) {
		return fmt.Errorf("%w: n_std must be a positive finite number, got %v", ErrInvalidParams, p.NStd)
	}
	switch p.Mode {
	case ModeSpread, ModeRatio, ModePrice:
	default:
		return fmt.Errorf("%w: unknown mode %q (spread|ratio|price)", ErrInvalidParams, p.Mode)
	}
	switch p.Baseline {
	case BaselineStatic, BaselineRolling:
	default:
		return fmt.Errorf("%w: unknown baseline %q (static|rolling)", ErrInvalidParams, p.Baseline)
	}
	if !p.Align.Valid() {
		return fmt.Errorf("%w: unknown align policy %q (intersection|ffill)", ErrInvalidParams, p.Align)
	}
	return nil
}

// String resume los parámetros para logs y consola.
func (p Params) String() string {
	return fmt.Sprintf("mode=%s baseline=%s window=%d n_std=%.2f align=%s",
		p.Mode, p.Baseline, p.Window, p.NStd, p.Align)
}
