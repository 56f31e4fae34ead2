package indicator

import (
	"github.com/mohamedkhairy/stock-analytics/internal/models"
)

// RSI calculates the Relative Strength Index
// RSI = 100 - (100 / (1 + RS)), RS = mean gain / mean loss over the last
// window close-to-close changes.
//
// The first value is at index window (window changes need window+1 closes).
// A zero mean loss saturates RSI at 100, including for flat prices.
func RSI(closes []float64, window int) (models.Series, error) {
	if err := checkWindow("RSI", window, 1); err != nil {
		return nil, err
	}

	n := len(closes)
	out := models.NewSeries(n)
	if n <= window {
		return out, nil
	}

	gains := models.NewSeries(n)
	losses := models.NewSeries(n)
	for i := 1; i < n; i++ {
		change := closes[i] - closes[i-1]
		var gain, loss float64
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		gains[i] = models.Some(gain)
		losses[i] = models.Some(loss)
	}

	sumGain := rolling(gains, window, rollingSum)
	sumLoss := rolling(losses, window, rollingSum)

	for i := window; i < n; i++ {
		g, okG := sumGain[i].Get()
		l, okL := sumLoss[i].Get()
		if !okG || !okL {
			continue
		}
		out[i] = models.Some(rsiValue(g/float64(window), l/float64(window)))
	}

	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}
