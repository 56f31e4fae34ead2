package data

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/mohamedkhairy/stock-analytics/internal/models"
)

// mockEpoch is the first trading day of every synthetic series, so a symbol's
// bars are identical whatever range is requested
var mockEpoch = time.Date(2015, 1, 5, 0, 0, 0, 0, time.UTC)

func listed(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// defaultUniverse is the fixed symbol universe of the mock provider
var defaultUniverse = []models.StaticAttributes{
	{Symbol: "000001.SZ", Name: "Ping An Bank", Industry: "Bank", Area: "Shenzhen", Market: "Main", ListDate: listed(1991, 4, 3)},
	{Symbol: "600000.SH", Name: "SPD Bank", Industry: "Bank", Area: "Shanghai", Market: "Main", ListDate: listed(1999, 11, 10)},
	{Symbol: "600519.SH", Name: "Kweichow Moutai", Industry: "Liquor", Area: "Guizhou", Market: "Main", ListDate: listed(2001, 8, 27)},
	{Symbol: "000858.SZ", Name: "Wuliangye", Industry: "Liquor", Area: "Sichuan", Market: "Main", ListDate: listed(1998, 4, 27)},
	{Symbol: "601318.SH", Name: "Ping An Insurance", Industry: "Insurance", Area: "Shenzhen", Market: "Main", ListDate: listed(2007, 3, 1)},
	{Symbol: "600036.SH", Name: "China Merchants Bank", Industry: "Bank", Area: "Shenzhen", Market: "Main", ListDate: listed(2002, 4, 9)},
	{Symbol: "300750.SZ", Name: "CATL", Industry: "Battery", Area: "Fujian", Market: "ChiNext", ListDate: listed(2018, 6, 11)},
	{Symbol: "688981.SH", Name: "SMIC", Industry: "Semiconductor", Area: "Shanghai", Market: "STAR", ListDate: listed(2020, 7, 16)},
	{Symbol: "600276.SH", Name: "Hengrui Medicine", Industry: "Pharma", Area: "Jiangsu", Market: "Main", ListDate: listed(2000, 10, 18)},
	{Symbol: "000615.SZ", Name: "ST Meiya", Industry: "Real Estate", Area: "Hubei", Market: "Main", ListDate: listed(1996, 8, 28)},
}

// MockProvider serves a deterministic synthetic random walk per symbol
type MockProvider struct {
	name     string
	config   ProviderConfig
	universe []models.StaticAttributes
	now      func() time.Time

	mu     sync.RWMutex
	errors map[string]error
	calls  int
}

// NewMockProvider creates a new mock provider. config.Symbols restricts the
// universe; unknown symbols get generic attributes.
func NewMockProvider(config ProviderConfig) (Provider, error) {
	return NewMock(config), nil
}

// NewMock is NewMockProvider returning the concrete type for tests
func NewMock(config ProviderConfig) *MockProvider {
	universe := defaultUniverse
	if len(config.Symbols) > 0 {
		byCode := make(map[string]models.StaticAttributes, len(defaultUniverse))
		for _, a := range defaultUniverse {
			byCode[a.Symbol] = a
		}
		universe = make([]models.StaticAttributes, 0, len(config.Symbols))
		for _, symbol := range config.Symbols {
			symbol = strings.ToUpper(strings.TrimSpace(symbol))
			if a, ok := byCode[symbol]; ok {
				universe = append(universe, a)
				continue
			}
			universe = append(universe, models.StaticAttributes{
				Symbol:   symbol,
				Name:     symbol,
				Industry: "Unknown",
				ListDate: listed(2010, 1, 4),
			})
		}
	}

	return &MockProvider{
		name:     "mock",
		config:   config,
		universe: universe,
		now:      time.Now,
		errors:   make(map[string]error),
	}
}

// Name returns the provider name
func (m *MockProvider) Name() string {
	return m.name
}

// ListSymbols returns the mock universe
func (m *MockProvider) ListSymbols(ctx context.Context) ([]models.StaticAttributes, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.record()
	out := make([]models.StaticAttributes, len(m.universe))
	copy(out, m.universe)
	return out, nil
}

// GetStaticAttributes returns the attributes of one universe member
func (m *MockProvider) GetStaticAttributes(ctx context.Context, symbol string) (models.StaticAttributes, error) {
	if err := ctx.Err(); err != nil {
		return models.StaticAttributes{}, err
	}
	if symbol == "" {
		return models.StaticAttributes{}, ErrInvalidSymbol
	}
	m.record()
	for _, a := range m.universe {
		if strings.EqualFold(a.Symbol, symbol) {
			return a, nil
		}
	}
	return models.StaticAttributes{}, ErrSymbolNotFound
}

// GetPriceBars returns weekday bars in [start, end]; a zero end means today
func (m *MockProvider) GetPriceBars(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceBar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkRange(symbol, start, end); err != nil {
		return nil, err
	}
	m.record()

	m.mu.RLock()
	injected := m.errors[strings.ToUpper(symbol)]
	m.mu.RUnlock()
	if injected != nil {
		return nil, injected
	}

	if end.IsZero() {
		end = m.now()
	}
	start = truncateDay(start)
	end = truncateDay(end)

	series := generateWalk(m.seed(symbol), end)
	out := make([]models.PriceBar, 0)
	for _, bar := range series {
		if bar.Date.Before(start) || bar.Date.After(end) {
			continue
		}
		out = append(out, bar)
	}
	return out, nil
}

// SetError makes GetPriceBars fail for symbol (for testing)
func (m *MockProvider) SetError(symbol string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[strings.ToUpper(symbol)] = err
}

// SetClock overrides the provider's notion of today (for testing)
func (m *MockProvider) SetClock(now func() time.Time) {
	m.now = now
}

// Calls returns the number of provider calls served (for testing)
func (m *MockProvider) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

func (m *MockProvider) record() {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
}

func (m *MockProvider) seed(symbol string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToUpper(symbol)))
	return int64(h.Sum64()) ^ m.config.Seed
}

func truncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// generateWalk builds weekday bars from mockEpoch through end
func generateWalk(seed int64, end time.Time) []models.PriceBar {
	rng := rand.New(rand.NewSource(seed))
	price := 10 + rng.Float64()*90
	drift := (rng.Float64() - 0.45) * 0.002

	var bars []models.PriceBar
	for day := mockEpoch; !day.After(end); day = day.AddDate(0, 0, 1) {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}

		open := price * (1 + rng.NormFloat64()*0.005)
		closePrice := math.Max(price*(1+drift+rng.NormFloat64()*0.02), 0.5)
		high := math.Max(open, closePrice) * (1 + rng.Float64()*0.01)
		low := math.Min(open, closePrice) * (1 - rng.Float64()*0.01)

		bars = append(bars, models.PriceBar{
			Date:   day,
			Open:   round2(open),
			High:   round2(high),
			Low:    round2(low),
			Close:  round2(closePrice),
			Volume: math.Round(100_000 + rng.Float64()*900_000),
		})
		price = closePrice
	}
	return bars
}
