package indicator

import (
	"math"

	"github.com/mohamedkhairy/stock-analytics/internal/models"
)

// TrueRange returns max(high-low, |high-prevClose|, |low-prevClose|).
// The first bar has no previous close and is undefined.
func TrueRange(high, low, close []float64) (models.Series, error) {
	if err := checkAligned(len(high), len(low), len(close)); err != nil {
		return nil, err
	}

	out := models.NewSeries(len(close))
	for i := 1; i < len(close); i++ {
		prev := close[i-1]
		tr := math.Max(high[i]-low[i], math.Max(math.Abs(high[i]-prev), math.Abs(low[i]-prev)))
		out[i] = models.Some(tr)
	}
	return out, nil
}

// ATR calculates the Average True Range as the simple mean of the last
// window true ranges. The first value is at index window.
func ATR(high, low, close []float64, window int) (models.Series, error) {
	if err := checkWindow("ATR", window, 1); err != nil {
		return nil, err
	}
	tr, err := TrueRange(high, low, close)
	if err != nil {
		return nil, err
	}
	return rolling(tr, window, rollingMean), nil
}
