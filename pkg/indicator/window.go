package indicator

import (
	"math"

	"github.com/markcheno/go-talib"
	"github.com/mohamedkhairy/stock-analytics/internal/models"
)

// rollingFunc computes a trailing-window statistic over a gap-free slice.
// Output index i must hold the statistic of values[i-window+1 : i+1] for
// every i >= window-1; earlier entries are ignored.
type rollingFunc func(values []float64, window int) []float64

// rolling applies fn over every maximal run of defined values in s. A window
// that touches an undefined value yields undefined, matching a rolling
// computation that requires a full window of observations.
func rolling(s models.Series, window int, fn rollingFunc) models.Series {
	out := models.NewSeries(len(s))
	start := -1
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i].Valid {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && i-start >= window {
			run := make([]float64, i-start)
			for j := range run {
				run[j] = s[start+j].Float64
			}
			stats := fn(run, window)
			for j := window - 1; j < len(run); j++ {
				out[start+j] = models.Some(stats[j])
			}
		}
		start = -1
	}
	return out
}

// rollingMean averages each window on its own. A flat window returns its
// value unchanged so constant prices keep every moving average equal to them.
func rollingMean(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := window - 1; i < len(values); i++ {
		w := values[i-window+1 : i+1]
		if isFlat(w) {
			out[i] = w[0]
			continue
		}
		out[i] = meanOf(w)
	}
	return out
}

func rollingMax(values []float64, window int) []float64 {
	if window < 2 {
		return values
	}
	return talib.Max(values, window)
}

func rollingMin(values []float64, window int) []float64 {
	if window < 2 {
		return values
	}
	return talib.Min(values, window)
}

// rollingSum sums each window directly so no residue survives once non-zero
// values leave the window.
func rollingSum(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := window - 1; i < len(values); i++ {
		var sum float64
		for _, v := range values[i-window+1 : i+1] {
			sum += v
		}
		out[i] = sum
	}
	return out
}

// rollingStdDev is the population standard deviation. It is computed with
// two passes per window so a flat window yields exactly zero.
func rollingStdDev(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := window - 1; i < len(values); i++ {
		w := values[i-window+1 : i+1]
		if isFlat(w) {
			continue
		}
		mean := meanOf(w)
		var sq float64
		for _, v := range w {
			d := v - mean
			sq += d * d
		}
		out[i] = math.Sqrt(sq / float64(window))
	}
	return out
}

// rollingMeanAbsDev is the mean absolute deviation around the window mean
func rollingMeanAbsDev(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := window - 1; i < len(values); i++ {
		w := values[i-window+1 : i+1]
		if isFlat(w) {
			continue
		}
		mean := meanOf(w)
		var dev float64
		for _, v := range w {
			dev += math.Abs(v - mean)
		}
		out[i] = dev / float64(window)
	}
	return out
}

// isFlat reports whether all values are equal; such windows have exactly
// zero dispersion even where summing them would round
func isFlat(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

func meanOf(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// combine applies fn element-wise where both inputs are defined
func combine(a, b models.Series, fn func(x, y float64) models.Value) models.Series {
	out := models.NewSeries(len(a))
	for i := range a {
		x, okA := a[i].Get()
		y, okB := b.At(i).Get()
		if okA && okB {
			out[i] = fn(x, y)
		}
	}
	return out
}

func subtract(a, b models.Series) models.Series {
	return combine(a, b, func(x, y float64) models.Value { return models.Some(x - y) })
}
