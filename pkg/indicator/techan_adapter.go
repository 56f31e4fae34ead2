package indicator

import (
	"time"

	"github.com/mohamedkhairy/stock-analytics/internal/models"
	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"
)

// barPeriod is the candle width handed to techan. Daily bars are stamped at
// midnight so any width below one day keeps candles from overlapping.
const barPeriod = time.Hour

// ToTimeSeries converts bars to a techan time series so callers can use
// techan's indicator catalogue alongside the engine. Bars techan rejects
// (not after the previous candle) are skipped, so validate first.
func ToTimeSeries(bars []models.PriceBar) *techan.TimeSeries {
	series := techan.NewTimeSeries()
	for _, bar := range bars {
		candle := techan.NewCandle(techan.NewTimePeriod(bar.Date, barPeriod))
		candle.OpenPrice = big.NewDecimal(bar.Open)
		candle.MaxPrice = big.NewDecimal(bar.High)
		candle.MinPrice = big.NewDecimal(bar.Low)
		candle.ClosePrice = big.NewDecimal(bar.Close)
		candle.Volume = big.NewDecimal(bar.Volume)
		series.AddCandle(candle)
	}
	return series
}

// FromTechan reads a techan indicator into a series of length n, leaving
// the first warmup entries undefined
func FromTechan(ind techan.Indicator, n, warmup int) models.Series {
	out := models.NewSeries(n)
	for i := warmup; i < n; i++ {
		out[i] = models.Some(ind.Calculate(i).Float())
	}
	return out
}
