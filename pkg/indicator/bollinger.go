package indicator

import (
	"fmt"

	"github.com/mohamedkhairy/stock-analytics/internal/models"
)

// BollingerResult holds the three aligned band series
type BollingerResult struct {
	Upper  models.Series
	Middle models.Series
	Lower  models.Series
}

// BollingerBands calculates Bollinger Bands
// Middle = SMA(window), Upper/Lower = Middle +/- numStd * population standard deviation
func BollingerBands(closes []float64, window int, numStd float64) (*BollingerResult, error) {
	if err := checkWindow("Bollinger", window, 1); err != nil {
		return nil, err
	}
	if numStd < 0 {
		return nil, fmt.Errorf("%w: Bollinger band width must be non-negative, got %v", ErrInvalidWindow, numStd)
	}

	s := models.SeriesOf(closes...)
	middle := rolling(s, window, rollingMean)
	std := rolling(s, window, rollingStdDev)

	upper := combine(middle, std, func(m, sd float64) models.Value { return models.Some(m + numStd*sd) })
	lower := combine(middle, std, func(m, sd float64) models.Value { return models.Some(m - numStd*sd) })

	return &BollingerResult{
		Upper:  upper,
		Middle: middle,
		Lower:  lower,
	}, nil
}
