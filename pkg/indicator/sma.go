package indicator

import (
	"github.com/mohamedkhairy/stock-analytics/internal/models"
)

// SMA calculates the Simple Moving Average
// SMA[t] = mean(values[t-window+1 .. t]), undefined for the first window-1 entries
func SMA(values []float64, window int) (models.Series, error) {
	return SMAOf(models.SeriesOf(values...), window)
}

// SMAOf is SMA over a series that may contain undefined entries. Any window
// touching an undefined entry is undefined.
func SMAOf(s models.Series, window int) (models.Series, error) {
	if err := checkWindow("SMA", window, 1); err != nil {
		return nil, err
	}
	return rolling(s, window, rollingMean), nil
}
