package data

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mohamedkhairy/stock-analytics/internal/models"
)

var (
	// ErrInvalidSymbol is returned when an invalid symbol is provided
	ErrInvalidSymbol = errors.New("invalid symbol")
	// ErrSymbolNotFound is returned when the provider does not know a symbol
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrInvalidDateRange is returned when start is after end
	ErrInvalidDateRange = errors.New("invalid date range")
	// ErrUnknownProvider is returned by the factory for unregistered names
	ErrUnknownProvider = errors.New("unknown provider type")
	// ErrProvider wraps every failure talking to the upstream API
	ErrProvider = errors.New("market data provider error")
)

// Provider defines the interface for market data providers
type Provider interface {
	// Name returns the name/type of the provider (e.g., "tushare", "mock")
	Name() string

	// ListSymbols returns the listed symbols with their static attributes
	ListSymbols(ctx context.Context) ([]models.StaticAttributes, error)

	// GetPriceBars returns daily bars for symbol within [start, end], ascending
	// by date. No data in range is an empty slice, not an error.
	GetPriceBars(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceBar, error)

	// GetStaticAttributes returns the listing metadata of one symbol
	GetStaticAttributes(ctx context.Context, symbol string) (models.StaticAttributes, error)
}

// ProviderConfig holds configuration for a provider
type ProviderConfig struct {
	Token   string
	BaseURL string
	Timeout time.Duration

	// RetryTimes is the total number of attempts per call. The wait before
	// attempt n (counting from 0) is RetryBackoff * 2^n.
	RetryTimes   int
	RetryBackoff time.Duration

	// Mock provider settings
	Symbols []string
	Seed    int64
}

// ProviderFactory creates provider instances
type ProviderFactory interface {
	// CreateProvider creates a new provider instance based on the provider type
	CreateProvider(providerType string, config ProviderConfig) (Provider, error)

	// RegisterProvider registers a custom provider factory function
	RegisterProvider(providerType string, factoryFunc func(ProviderConfig) (Provider, error)) error

	// ListProviders returns a list of available provider types
	ListProviders() []string
}

// DefaultProviderFactory is the default implementation of ProviderFactory
type DefaultProviderFactory struct {
	mu        sync.RWMutex
	factories map[string]func(ProviderConfig) (Provider, error)
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory() *DefaultProviderFactory {
	factory := &DefaultProviderFactory{
		factories: make(map[string]func(ProviderConfig) (Provider, error)),
	}

	// Register built-in providers
	_ = factory.RegisterProvider("mock", NewMockProvider)
	_ = factory.RegisterProvider("tushare", NewTushareProvider)

	return factory
}

// CreateProvider creates a new provider instance
func (f *DefaultProviderFactory) CreateProvider(providerType string, config ProviderConfig) (Provider, error) {
	f.mu.RLock()
	factoryFunc, exists := f.factories[providerType]
	f.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, providerType)
	}

	return factoryFunc(config)
}

// RegisterProvider registers a custom provider factory function
func (f *DefaultProviderFactory) RegisterProvider(providerType string, factoryFunc func(ProviderConfig) (Provider, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.factories[providerType]; exists {
		return errors.New("provider type already registered: " + providerType)
	}
	f.factories[providerType] = factoryFunc
	return nil
}

// ListProviders returns the available provider types in lexical order
func (f *DefaultProviderFactory) ListProviders() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	providers := make([]string, 0, len(f.factories))
	for providerType := range f.factories {
		providers = append(providers, providerType)
	}
	sort.Strings(providers)
	return providers
}

// NewProvider creates a built-in provider by name
func NewProvider(providerType string, config ProviderConfig) (Provider, error) {
	return NewProviderFactory().CreateProvider(providerType, config)
}

func checkRange(symbol string, start, end time.Time) error {
	if symbol == "" {
		return ErrInvalidSymbol
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return fmt.Errorf("%w: %s after %s", ErrInvalidDateRange, start.Format(DateLayout), end.Format(DateLayout))
	}
	return nil
}
