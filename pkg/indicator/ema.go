package indicator

import (
	"fmt"

	"github.com/mohamedkhairy/stock-analytics/internal/models"
)

// EMA calculates the Exponential Moving Average with alpha = 2 / (window + 1).
//
// Weights are adjusted rather than seeded from an SMA: the value at t is
// sum((1-alpha)^i * x[t-i]) / sum((1-alpha)^i) over all observations so far,
// so the series is defined from the first bar and EMA(1) equals its input.
func EMA(values []float64, window int) (models.Series, error) {
	if err := checkWindow("EMA", window, 1); err != nil {
		return nil, err
	}
	return EWM(models.SeriesOf(values...), SpanAlpha(window))
}

// SpanAlpha converts a span (window) to a smoothing factor
func SpanAlpha(span int) float64 {
	return 2.0 / (float64(span) + 1.0)
}

// ComAlpha converts a center of mass to a smoothing factor
func ComAlpha(com float64) float64 {
	return 1.0 / (1.0 + com)
}

// EWM calculates an adjusted exponentially weighted mean over s.
//
// Leading undefined entries stay undefined. An undefined entry after the
// first observation is undefined in the output too, but still ages the
// weights of earlier observations by one step (decay follows absolute
// position, not observation count).
func EWM(s models.Series, alpha float64) (models.Series, error) {
	if !(alpha > 0 && alpha <= 1) {
		return nil, fmt.Errorf("%w: smoothing factor must be in (0, 1], got %v", ErrInvalidWindow, alpha)
	}

	out := models.NewSeries(len(s))
	decay := 1 - alpha

	var (
		avg     float64
		weight  float64
		started bool
	)
	for i, v := range s {
		x, ok := v.Get()
		if !started {
			if ok {
				avg, weight, started = x, 1, true
				out[i] = models.Some(avg)
			}
			continue
		}

		weight *= decay
		if !ok {
			continue
		}
		if avg != x {
			avg = (weight*avg + x) / (weight + 1)
		}
		weight++
		out[i] = models.Some(avg)
	}

	return out, nil
}
