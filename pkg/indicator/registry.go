package indicator

import (
	"fmt"
	"sync"
)

// Registry manages indicator calculators in registration order
type Registry struct {
	mu          sync.RWMutex
	calculators map[string]Calculator
	ordered     []Calculator
}

// NewRegistry creates a new, empty indicator registry
func NewRegistry() *Registry {
	return &Registry{
		calculators: make(map[string]Calculator),
	}
}

// NewRegistryFromWindows registers one calculator per indicator family in
// WindowSet, in the canonical column order
func NewRegistryFromWindows(ws WindowSet) (*Registry, error) {
	if err := ws.Validate(); err != nil {
		return nil, err
	}

	r := NewRegistry()
	for _, period := range ws.MA {
		calc, err := NewSMACalculator(period)
		if err != nil {
			return nil, err
		}
		if err := r.Register(calc); err != nil {
			return nil, err
		}
	}
	for _, period := range ws.EMA {
		calc, err := NewEMACalculator(period)
		if err != nil {
			return nil, err
		}
		if err := r.Register(calc); err != nil {
			return nil, err
		}
	}

	for _, calc := range []Calculator{
		NewMACDCalculator(ws.MACD),
		NewRSICalculator(ws.RSI),
		NewBollingerCalculator(ws.Bollinger),
		NewKDJCalculator(ws.KDJ),
		NewATRCalculator(ws.ATR),
		NewWilliamsRCalculator(ws.WilliamsR),
		NewCCICalculator(ws.CCI),
	} {
		if err := r.Register(calc); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register registers a calculator with the registry
func (r *Registry) Register(calc Calculator) error {
	if calc == nil {
		return fmt.Errorf("calculator cannot be nil")
	}

	name := calc.Name()
	if name == "" {
		return fmt.Errorf("calculator name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.calculators[name]; exists {
		return fmt.Errorf("calculator with name %q already registered", name)
	}

	r.calculators[name] = calc
	r.ordered = append(r.ordered, calc)
	return nil
}

// Get retrieves a calculator by name
func (r *Registry) Get(name string) (Calculator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	calc, exists := r.calculators[name]
	if !exists {
		return nil, fmt.Errorf("calculator %q not found", name)
	}

	return calc, nil
}

// GetAll returns all registered calculators in registration order
func (r *Registry) GetAll() []Calculator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Calculator, len(r.ordered))
	copy(result, r.ordered)
	return result
}

// List returns the names of all registered calculators in registration order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.ordered))
	for _, calc := range r.ordered {
		names = append(names, calc.Name())
	}

	return names
}

// Columns returns every output column in registration order
func (r *Registry) Columns() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var columns []string
	for _, calc := range r.ordered {
		columns = append(columns, calc.Columns()...)
	}
	return columns
}

// Unregister removes a calculator from the registry
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.calculators[name]; !exists {
		return fmt.Errorf("calculator %q not found", name)
	}

	delete(r.calculators, name)
	for i, calc := range r.ordered {
		if calc.Name() == name {
			r.ordered = append(r.ordered[:i], r.ordered[i+1:]...)
			break
		}
	}
	return nil
}

// Clear removes all calculators from the registry
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calculators = make(map[string]Calculator)
	r.ordered = nil
}
