package indicator

import (
	"fmt"

	"github.com/mohamedkhairy/stock-analytics/internal/models"
)

// Engine computes a full indicator set over bar sequences. It holds no
// per-call state and is safe for concurrent use.
type Engine struct {
	windows  WindowSet
	registry *Registry
}

// NewEngine creates an engine for the given windows
func NewEngine(ws WindowSet) (*Engine, error) {
	registry, err := NewRegistryFromWindows(ws)
	if err != nil {
		return nil, err
	}
	return &Engine{windows: ws, registry: registry}, nil
}

// NewEngineWithRegistry creates an engine over a caller-built registry
func NewEngineWithRegistry(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// Windows returns the window parameters the engine was built with
func (e *Engine) Windows() WindowSet {
	return e.windows
}

// Columns returns the indicator columns CalculateAll produces
func (e *Engine) Columns() []string {
	return e.registry.Columns()
}

// CalculateAll validates bars and returns them merged with every indicator.
// The returned frame owns a copy of bars; the input is never modified.
func (e *Engine) CalculateAll(bars []models.PriceBar) (*models.Frame, error) {
	if err := ValidateBars(bars); err != nil {
		return nil, err
	}

	owned := make([]models.PriceBar, len(bars))
	copy(owned, bars)

	frame := &models.Frame{
		Bars:       owned,
		Indicators: make(models.IndicatorSet),
	}

	for _, calc := range e.registry.GetAll() {
		set, err := calc.Compute(owned)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", calc.Name(), err)
		}
		for _, column := range calc.Columns() {
			s, ok := set[column]
			if !ok {
				return nil, fmt.Errorf("%s: %w: %s", calc.Name(), models.ErrMissingColumn, column)
			}
			if len(s) != len(owned) {
				return nil, fmt.Errorf("%s: %w: %s", calc.Name(), models.ErrMisalignedColumn, column)
			}
			if _, dup := frame.Indicators[column]; dup {
				return nil, fmt.Errorf("%s: column %q already computed", calc.Name(), column)
			}
			frame.Indicators[column] = s
			frame.Columns = append(frame.Columns, column)
		}
	}

	return frame, nil
}

// CalculateAll is a convenience wrapper building an engine for ws
func CalculateAll(bars []models.PriceBar, ws WindowSet) (*models.Frame, error) {
	e, err := NewEngine(ws)
	if err != nil {
		return nil, err
	}
	return e.CalculateAll(bars)
}
