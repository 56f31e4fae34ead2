package indicator

import (
	"math/rand"
	"time"

	"github.com/mohamedkhairy/stock-analytics/internal/models"
)

var baseDate = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// barsFromCloses builds daily bars around each close
func barsFromCloses(closes ...float64) []models.PriceBar {
	bars := make([]models.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = models.PriceBar{
			Date:   baseDate.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

// flatBars builds n bars with open=high=low=close=price
func flatBars(n int, price float64) []models.PriceBar {
	bars := make([]models.PriceBar, n)
	for i := range bars {
		bars[i] = models.PriceBar{
			Date:   baseDate.AddDate(0, 0, i),
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
			Volume: 500,
		}
	}
	return bars
}

// randomWalkBars builds a reproducible random walk
func randomWalkBars(n int, seed int64) []models.PriceBar {
	rng := rand.New(rand.NewSource(seed))
	bars := make([]models.PriceBar, n)
	price := 100.0
	for i := range bars {
		price += rng.NormFloat64() * 0.5
		if price < 1 {
			price = 1
		}
		high := price + rng.Float64()*2
		low := price - rng.Float64()*2
		if low <= 0 {
			low = price / 2
		}
		bars[i] = models.PriceBar{
			Date:   baseDate.AddDate(0, 0, i),
			Open:   price + (rng.Float64()*2-1)*0.5,
			High:   high,
			Low:    low,
			Close:  price,
			Volume: 1_000_000 + rng.Float64()*4_000_000,
		}
		if bars[i].Open > high {
			bars[i].Open = high
		}
		if bars[i].Open < low {
			bars[i].Open = low
		}
	}
	return bars
}

func assertAllUndefined(s models.Series) bool {
	return s.DefinedCount() == 0
}
