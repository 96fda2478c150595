package domain

import "errors"

// Errores del engine. Se comparan con errors.Is; los paquetes los envuelven
// con contexto usando %w.
var (
	// ErrInsufficientData: menos observaciones que la ventana o que el mínimo
	// que exige el test de diagnóstico. Se devuelve al caller, no se reintenta.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrMisalignedSeries: las series no comparten fechas (o el ticker pedido
	// no está en la tabla). Fatal.
	ErrMisalignedSeries = errors.New("misaligned series")

	// ErrDivisionUndefined: denominador cero en ratio o z-score.
	// Es un error a nivel de valor: el punto queda NaN y el cálculo sigue.
	ErrDivisionUndefined = errors.New("division undefined")

	// ErrInvalidParams: configuración fuera de rango (window < 2, n_std <= 0, ...).
	ErrInvalidParams = errors.New("invalid params")

	// ErrDegenerateSeries: la regresión es singular (serie sin variación).
	ErrDegenerateSeries = errors.New("degenerate series")
)
