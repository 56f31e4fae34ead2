package indicator

import (
	"github.com/mohamedkhairy/stock-analytics/internal/models"
)

// WilliamsR calculates Williams %R
// %R = -100 * (HHV(high) - close) / (HHV(high) - LLV(low)), undefined for a zero range
func WilliamsR(high, low, close []float64, window int) (models.Series, error) {
	if err := checkAligned(len(high), len(low), len(close)); err != nil {
		return nil, err
	}
	if err := checkWindow("Williams %R", window, 1); err != nil {
		return nil, err
	}

	hh := rolling(models.SeriesOf(high...), window, rollingMax)
	ll := rolling(models.SeriesOf(low...), window, rollingMin)

	out := models.NewSeries(len(close))
	for i := range close {
		h, okH := hh[i].Get()
		l, okL := ll[i].Get()
		if !okH || !okL || h == l {
			continue
		}
		out[i] = models.Some(-100 * (h - close[i]) / (h - l))
	}
	return out, nil
}
