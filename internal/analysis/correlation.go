package analysis

import (
	"sort"
	"time"

	"github.com/mohamedkhairy/stock-analytics/internal/models"
	"github.com/montanaflynn/stats"
)

// CorrelationMatrix holds pairwise close-price correlations. Matrix[i][j]
// pairs Symbols[i] with Symbols[j].
type CorrelationMatrix struct {
	Symbols []string         `json:"symbols"`
	Matrix  [][]models.Value `json:"matrix"`
}

// Get returns the correlation between two symbols
func (c *CorrelationMatrix) Get(a, b string) models.Value {
	i, j := c.index(a), c.index(b)
	if i < 0 || j < 0 {
		return models.Value{}
	}
	return c.Matrix[i][j]
}

func (c *CorrelationMatrix) index(symbol string) int {
	for i, s := range c.Symbols {
		if s == symbol {
			return i
		}
	}
	return -1
}

// Correlation computes the Pearson correlation of closes for every pair of
// symbols over the dates both have. A pair with fewer than two common dates
// or a flat price on either side is undefined.
func Correlation(bars map[string][]models.PriceBar) CorrelationMatrix {
	symbols := make([]string, 0, len(bars))
	closes := make(map[string]map[time.Time]float64, len(bars))
	for symbol, series := range bars {
		if len(series) == 0 {
			continue
		}
		symbols = append(symbols, symbol)
		byDate := make(map[time.Time]float64, len(series))
		for _, bar := range series {
			byDate[bar.Date] = bar.Close
		}
		closes[symbol] = byDate
	}
	sort.Strings(symbols)

	matrix := make([][]models.Value, len(symbols))
	for i := range matrix {
		matrix[i] = make([]models.Value, len(symbols))
	}
	for i := range symbols {
		for j := i; j < len(symbols); j++ {
			v := pairCorrelation(closes[symbols[i]], closes[symbols[j]])
			matrix[i][j] = v
			matrix[j][i] = v
		}
	}
	return CorrelationMatrix{Symbols: symbols, Matrix: matrix}
}

func pairCorrelation(a, b map[time.Time]float64) models.Value {
	var xs, ys []float64
	for date, x := range a {
		if y, ok := b[date]; ok {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 {
		return models.Value{}
	}
	sx, _ := stats.StandardDeviationPopulation(xs)
	sy, _ := stats.StandardDeviationPopulation(ys)
	if sx == 0 || sy == 0 {
		return models.Value{}
	}
	r, err := stats.Correlation(xs, ys)
	if err != nil {
		return models.Value{}
	}
	return models.Some(r)
}
