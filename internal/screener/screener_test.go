package screener

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/mohamedkhairy/stock-analytics/internal/data"
	"github.com/mohamedkhairy/stock-analytics/internal/models"
	"github.com/mohamedkhairy/stock-analytics/pkg/indicator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func looseConfig() Config {
	cfg := DefaultConfig()
	cfg.Technical = TechnicalCriteria{
		MinBars: 20,
		RSIMin:  0,
		RSIMax:  100,
		MATrend: TrendAny,
	}
	return cfg
}

func newTestScreener(t *testing.T, cfg Config, provider data.Provider) *Screener {
	t.Helper()
	engine, err := indicator.NewEngine(indicator.DefaultWindowSet())
	require.NoError(t, err)

	s, err := NewScreener(cfg, provider, engine)
	require.NoError(t, err)
	s.SetClock(func() time.Time { return asOf })
	return s
}

func TestScreener_Run(t *testing.T) {
	mock := data.NewMock(data.ProviderConfig{Seed: 3})
	s := newTestScreener(t, looseConfig(), mock)

	report, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, asOf, report.AsOf)
	assert.Equal(t, 10, report.Universe)
	assert.Equal(t, 9, report.BasicPassed, "the ST name is excluded")
	require.Len(t, report.Outcomes, 9)

	universe, err := mock.ListSymbols(context.Background())
	require.NoError(t, err)
	expected := FilterBasic(universe, DefaultBasicCriteria(), asOf)
	for i, o := range report.Outcomes {
		assert.Equal(t, expected[i].Symbol, o.Symbol, "outcomes keep input order")
		assert.Equal(t, StatusCandidate, o.Status, o.Reason)
		assert.Greater(t, o.Bars, 50)
	}

	require.Len(t, report.Ranking.Ranked, 9)
	assert.Empty(t, report.Ranking.Skipped)
	assert.True(t, sort.SliceIsSorted(report.Ranking.Ranked, func(i, j int) bool {
		return report.Ranking.Ranked[i].Score > report.Ranking.Ranked[j].Score
	}))
	for _, r := range report.Ranking.Ranked {
		assert.Contains(t, r.Breakdown, "base:1.0")
		assert.GreaterOrEqual(t, r.Score, 1.0)
		assert.LessOrEqual(t, r.Score, 6.0)
	}
	assert.Len(t, report.Top, 9)
}

func TestScreener_Deterministic(t *testing.T) {
	cfg := looseConfig()
	cfg.Workers = 8

	first, err := newTestScreener(t, cfg, data.NewMock(data.ProviderConfig{Seed: 11})).Run(context.Background())
	require.NoError(t, err)
	second, err := newTestScreener(t, cfg, data.NewMock(data.ProviderConfig{Seed: 11})).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Outcomes, second.Outcomes)
	assert.Equal(t, first.Ranking.Ranked, second.Ranking.Ranked)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestScreener_SymbolFailureDoesNotAbort(t *testing.T) {
	mock := data.NewMock(data.ProviderConfig{})
	mock.SetError("600519.SH", errors.New("upstream timeout"))

	cfg := looseConfig()
	cfg.TopN = 3
	report, err := newTestScreener(t, cfg, mock).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Count(StatusFailed))
	assert.Equal(t, 8, report.Count(StatusCandidate))
	for _, o := range report.Outcomes {
		if o.Symbol == "600519.SH" {
			assert.Equal(t, StatusFailed, o.Status)
			assert.Contains(t, o.Reason, "upstream timeout")
		}
	}
	assert.Len(t, report.Ranking.Ranked, 8)
	assert.Len(t, report.Top, 3)
}

func TestScreener_DefaultCriteriaAccountsForEverySymbol(t *testing.T) {
	report, err := newTestScreener(t, DefaultConfig(), data.NewMock(data.ProviderConfig{})).Run(context.Background())
	require.NoError(t, err)

	total := report.Count(StatusCandidate) + report.Count(StatusSkipped) + report.Count(StatusFiltered) +
		report.Count(StatusNoData) + report.Count(StatusFailed)
	assert.Equal(t, len(report.Outcomes), total)
	assert.Equal(t, report.Count(StatusCandidate), len(report.Ranking.Ranked))
	assert.Equal(t, report.Count(StatusSkipped), len(report.Ranking.Skipped))
	assert.Zero(t, report.Count(StatusFailed))
}

func TestScreener_MaxCandidates(t *testing.T) {
	cfg := looseConfig()
	cfg.MaxCandidates = 4

	report, err := newTestScreener(t, cfg, data.NewMock(data.ProviderConfig{})).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, report.BasicPassed)
	assert.Len(t, report.Outcomes, 4)
}

func TestScreener_NoDataOutsideHistory(t *testing.T) {
	mock := data.NewMock(data.ProviderConfig{Symbols: []string{"000001.SZ"}})
	s := newTestScreener(t, looseConfig(), mock)
	// before the synthetic history begins
	s.SetClock(func() time.Time { return time.Date(2014, 6, 30, 0, 0, 0, 0, time.UTC) })

	report, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, StatusNoData, report.Outcomes[0].Status)
	assert.Empty(t, report.Ranking.Ranked)
}

type failingProvider struct {
	data.Provider
}

func (failingProvider) ListSymbols(context.Context) ([]models.StaticAttributes, error) {
	return nil, data.ErrProvider
}

// blankSymbolProvider lists an extra unnamed listing served with another
// symbol's bars, which passes filtering but cannot be scored
type blankSymbolProvider struct {
	data.Provider
}

func (p blankSymbolProvider) ListSymbols(ctx context.Context) ([]models.StaticAttributes, error) {
	attrs, err := p.Provider.ListSymbols(ctx)
	if err != nil {
		return nil, err
	}
	blank := models.StaticAttributes{Name: "Unnamed", Industry: "Bank", ListDate: time.Date(2000, 1, 4, 0, 0, 0, 0, time.UTC)}
	return append([]models.StaticAttributes{blank}, attrs...), nil
}

func (p blankSymbolProvider) GetPriceBars(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceBar, error) {
	if symbol == "" {
		symbol = "000001.SZ"
	}
	return p.Provider.GetPriceBars(ctx, symbol, start, end)
}

func TestScreener_ScoringSkipUpdatesOutcome(t *testing.T) {
	mock := data.NewMock(data.ProviderConfig{Symbols: []string{"000001.SZ", "600000.SH"}})
	s := newTestScreener(t, looseConfig(), blankSymbolProvider{mock})

	report, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 3)

	blank := report.Outcomes[0]
	assert.Equal(t, StatusSkipped, blank.Status)
	assert.Contains(t, blank.Reason, ErrScoringSkip.Error())

	require.Len(t, report.Ranking.Skipped, 1)
	assert.Equal(t, 1, report.Count(StatusSkipped))
	assert.Equal(t, 2, report.Count(StatusCandidate))
	assert.Len(t, report.Ranking.Ranked, 2)
}

func TestScreener_ListFailureFailsRun(t *testing.T) {
	s := newTestScreener(t, looseConfig(), failingProvider{})

	_, err := s.Run(context.Background())
	assert.ErrorIs(t, err, data.ErrProvider)
}

func TestScreener_Cancelled(t *testing.T) {
	s := newTestScreener(t, looseConfig(), data.NewMock(data.ProviderConfig{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewScreener_Validation(t *testing.T) {
	engine, err := indicator.NewEngine(indicator.DefaultWindowSet())
	require.NoError(t, err)
	mock := data.NewMock(data.ProviderConfig{})

	_, err = NewScreener(DefaultConfig(), nil, engine)
	assert.Error(t, err)
	_, err = NewScreener(DefaultConfig(), mock, nil)
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.Workers = 0
	_, err = NewScreener(cfg, mock, engine)
	assert.Error(t, err)
}
