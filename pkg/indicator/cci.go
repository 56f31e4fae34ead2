package indicator

import (
	"github.com/mohamedkhairy/stock-analytics/internal/models"
)

// cciConstant scales CCI so most readings fall within +/-100
const cciConstant = 0.015

// TypicalPrice returns (high + low + close) / 3 per bar
func TypicalPrice(high, low, close []float64) ([]float64, error) {
	if err := checkAligned(len(high), len(low), len(close)); err != nil {
		return nil, err
	}
	out := make([]float64, len(close))
	for i := range close {
		out[i] = (high[i] + low[i] + close[i]) / 3
	}
	return out, nil
}

// CCI calculates the Commodity Channel Index
// CCI = (TP - SMA(TP)) / (0.015 * MAD(TP)); a zero mean absolute deviation is undefined
func CCI(high, low, close []float64, window int) (models.Series, error) {
	if err := checkWindow("CCI", window, 1); err != nil {
		return nil, err
	}
	tp, err := TypicalPrice(high, low, close)
	if err != nil {
		return nil, err
	}

	s := models.SeriesOf(tp...)
	mean := rolling(s, window, rollingMean)
	mad := rolling(s, window, rollingMeanAbsDev)

	out := models.NewSeries(len(tp))
	for i := range tp {
		m, okM := mean[i].Get()
		d, okD := mad[i].Get()
		if !okM || !okD || d == 0 {
			continue
		}
		out[i] = models.Some((tp[i] - m) / (cciConstant * d))
	}
	return out, nil
}
