package signal

import (
	"testing"
	"time"

	"github.com/mohamedkhairy/stock-analytics/internal/models"
	"github.com/mohamedkhairy/stock-analytics/pkg/indicator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameOf(closes []float64, indicators models.IndicatorSet) *models.Frame {
	bars := make([]models.PriceBar, len(closes))
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = models.PriceBar{Date: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 100}
	}
	return &models.Frame{Bars: bars, Indicators: indicators}
}

func TestGenerate_AllRules(t *testing.T) {
	closes := []float64{10, 10, 12, 8}
	frame := frameOf(closes, models.IndicatorSet{
		models.ColumnMACD:       models.SeriesOf(-1, 1, 1, -1),
		models.ColumnMACDSignal: models.SeriesOf(0, 0, 0, 0),
		models.ColumnRSI:        models.Series{models.Undefined(), models.Some(75), models.Some(50), models.Some(25)},
		models.ColumnBBUpper:    models.SeriesOf(11, 11, 11, 11),
		models.ColumnBBLower:    models.SeriesOf(9, 9, 9, 9),
		models.ColumnKDJK:       models.SeriesOf(20, 30, 50, 40),
		models.ColumnKDJD:       models.SeriesOf(25, 25, 45, 45),
		"MA20":                  models.Series{models.Undefined(), models.Some(11), models.Some(11), models.Some(11)},
	})

	set, err := Generate(frame, DefaultConfig())
	require.NoError(t, err)
	assert.Len(t, set, 10)

	assert.Equal(t, []bool{false, true, false, false}, set[MACDGoldenCross])
	assert.Equal(t, []bool{false, false, false, true}, set[MACDDeathCross])
	assert.Equal(t, []bool{false, true, false, false}, set[RSIOverbought])
	assert.Equal(t, []bool{false, false, false, true}, set[RSIOversold])
	assert.Equal(t, []bool{false, false, true, false}, set[BBUpperBreak])
	assert.Equal(t, []bool{false, false, false, true}, set[BBLowerBreak])
	assert.Equal(t, []bool{false, true, false, false}, set[KDJGoldenCross])
	assert.Equal(t, []bool{false, false, false, true}, set[KDJDeathCross])
	// MA20 undefined at bar 0, so bar 1 cannot cross
	assert.Equal(t, []bool{false, false, true, false}, set[MAGoldenCross])
	assert.Equal(t, []bool{false, false, false, true}, set[MADeathCross])

	for _, flags := range set {
		assert.Len(t, flags, len(closes))
	}
}

func TestGenerate_ConfigurableLevels(t *testing.T) {
	frame := frameOf([]float64{1, 1}, models.IndicatorSet{
		models.ColumnRSI: models.SeriesOf(65, 35),
	})

	cfg := DefaultConfig()
	cfg.RSIOverbought = 60
	cfg.RSIOversold = 40

	set, err := Generate(frame, cfg)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, set[RSIOverbought])
	assert.Equal(t, []bool{false, true}, set[RSIOversold])
}

func TestGenerate_SkipsRulesWithoutInputs(t *testing.T) {
	frame := frameOf([]float64{1, 2, 3}, models.IndicatorSet{
		models.ColumnRSI: models.SeriesOf(50, 50, 50),
	})

	set, err := Generate(frame, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{RSIOverbought, RSIOversold}, set.Names())
}

func TestGenerate_MisalignedColumn(t *testing.T) {
	frame := frameOf([]float64{1, 2, 3}, models.IndicatorSet{
		models.ColumnRSI: models.SeriesOf(50, 50),
	})

	_, err := Generate(frame, DefaultConfig())
	assert.ErrorIs(t, err, models.ErrMisalignedColumn)
}

func TestGenerate_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RSIOversold = 80

	_, err := Generate(frameOf([]float64{1}, models.IndicatorSet{}), cfg)
	assert.Error(t, err)

	_, err = Generate(nil, DefaultConfig())
	assert.Error(t, err)
}

func TestGenerate_EngineFrame(t *testing.T) {
	bars := make([]models.PriceBar, 120)
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	price := 50.0
	for i := range bars {
		// slow oscillation so crosses occur
		if (i/15)%2 == 0 {
			price += 0.8
		} else {
			price -= 0.8
		}
		bars[i] = models.PriceBar{Date: start.AddDate(0, 0, i), Open: price, High: price + 1, Low: price - 1, Close: price, Volume: 1000}
	}

	frame, err := indicator.CalculateAll(bars, indicator.DefaultWindowSet())
	require.NoError(t, err)

	set, err := Generate(frame, DefaultConfig())
	require.NoError(t, err)
	assert.Len(t, set, 10)
	assert.Positive(t, set.Count(MACDGoldenCross))
	assert.Positive(t, set.Count(MACDDeathCross))

	for _, pair := range [][2]string{
		{MACDGoldenCross, MACDDeathCross},
		{KDJGoldenCross, KDJDeathCross},
		{MAGoldenCross, MADeathCross},
	} {
		for i := range bars {
			assert.False(t, set[pair[0]][i] && set[pair[1]][i], "%s/%s at %d", pair[0], pair[1], i)
		}
	}
}

func TestGenerate_FlatSeriesHasNoBreakouts(t *testing.T) {
	for _, price := range []float64{3.3, 0.1, 0.7, 12.34} {
		bars := frameOf(make([]float64, 40), nil).Bars
		for i := range bars {
			bars[i].Open, bars[i].High, bars[i].Low, bars[i].Close = price, price, price, price
		}

		frame, err := indicator.CalculateAll(bars, indicator.DefaultWindowSet())
		require.NoError(t, err)

		set, err := Generate(frame, DefaultConfig())
		require.NoError(t, err)
		for _, name := range []string{BBUpperBreak, BBLowerBreak, MAGoldenCross, MADeathCross} {
			assert.Zero(t, set.Count(name), "%s on flat %v", name, price)
		}
	}
}
