package indicator

import (
	"testing"

	"github.com/mohamedkhairy/stock-analytics/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEMA_WindowOneIsIdentity(t *testing.T) {
	closes := []float64{10.1, 9.7, 11.3, 12.9, 8.25}

	ema, err := EMA(closes, 1)
	require.NoError(t, err)
	assert.Equal(t, models.SeriesOf(closes...), ema)
}

func TestEMA_AdjustedWeights(t *testing.T) {
	// span 3 => alpha 0.5, weights 1, 0.5, 0.25 from newest to oldest
	ema, err := EMA([]float64{1, 2, 3}, 3)
	require.NoError(t, err)

	require.True(t, ema[0].Valid)
	assert.Equal(t, 1.0, ema[0].Float64)
	assert.InDelta(t, 2.5/1.5, ema[1].Float64, 1e-12)
	assert.InDelta(t, 4.25/1.75, ema[2].Float64, 1e-12)
}

func TestEMA_DefinedFromFirstBar(t *testing.T) {
	ema, err := EMA([]float64{5, 6, 7, 8}, 26)
	require.NoError(t, err)
	assert.Equal(t, 4, ema.DefinedCount())
}

func TestEMA_ConstantSeries(t *testing.T) {
	ema, err := EMA([]float64{7.3, 7.3, 7.3, 7.3, 7.3}, 12)
	require.NoError(t, err)
	for i, v := range ema {
		assert.Equal(t, models.Some(7.3), v, "index %d", i)
	}
}

func TestEMA_InvalidWindow(t *testing.T) {
	_, err := EMA([]float64{1}, 0)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestEWM_UndefinedEntries(t *testing.T) {
	s := models.Series{models.Undefined(), models.Some(2), models.Undefined(), models.Some(4)}

	out, err := EWM(s, 0.5)
	require.NoError(t, err)

	assert.False(t, out[0].Valid)
	assert.Equal(t, models.Some(2), out[1])
	assert.False(t, out[2].Valid)
	// The gap ages the first observation twice: (0.25*2 + 4) / 1.25
	assert.InDelta(t, 3.6, out[3].Float64, 1e-12)
}

func TestEWM_InvalidAlpha(t *testing.T) {
	for _, alpha := range []float64{0, -0.5, 1.5} {
		_, err := EWM(models.SeriesOf(1, 2), alpha)
		assert.ErrorIs(t, err, ErrInvalidWindow, "alpha %v", alpha)
	}
}

func TestSmoothingFactors(t *testing.T) {
	assert.InDelta(t, 2.0/13.0, SpanAlpha(12), 1e-15)
	assert.InDelta(t, 1.0/3.0, ComAlpha(2), 1e-15)
	assert.Equal(t, 1.0, ComAlpha(0))
}
