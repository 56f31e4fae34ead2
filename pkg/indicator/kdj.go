package indicator

import (
	"github.com/mohamedkhairy/stock-analytics/internal/models"
)

// KDJResult holds the K, D and J series
type KDJResult struct {
	K models.Series
	D models.Series
	J models.Series
}

// KDJ calculates the KDJ stochastic oscillator
//
//	RSV = 100 * (close - LLV(low, kPeriod)) / (HHV(high, kPeriod) - LLV(low, kPeriod))
//	K   = EWM(RSV, com = dPeriod - 1)
//	D   = EWM(K, com = jPeriod - 1)
//	J   = 3K - 2D
//
// When the window's high equals its low RSV is undefined, and so are K, D
// and J on that bar.
func KDJ(high, low, close []float64, kPeriod, dPeriod, jPeriod int) (*KDJResult, error) {
	if err := checkAligned(len(high), len(low), len(close)); err != nil {
		return nil, err
	}
	if err := checkWindow("KDJ k", kPeriod, 1); err != nil {
		return nil, err
	}
	if err := checkWindow("KDJ d", dPeriod, 1); err != nil {
		return nil, err
	}
	if err := checkWindow("KDJ j", jPeriod, 1); err != nil {
		return nil, err
	}

	hh := rolling(models.SeriesOf(high...), kPeriod, rollingMax)
	ll := rolling(models.SeriesOf(low...), kPeriod, rollingMin)

	rsv := models.NewSeries(len(close))
	for i := range close {
		h, okH := hh[i].Get()
		l, okL := ll[i].Get()
		if !okH || !okL || h == l {
			continue
		}
		rsv[i] = models.Some(100 * (close[i] - l) / (h - l))
	}

	k, err := EWM(rsv, ComAlpha(float64(dPeriod-1)))
	if err != nil {
		return nil, err
	}
	d, err := EWM(k, ComAlpha(float64(jPeriod-1)))
	if err != nil {
		return nil, err
	}
	j := combine(k, d, func(kv, dv float64) models.Value { return models.Some(3*kv - 2*dv) })

	return &KDJResult{K: k, D: d, J: j}, nil
}
