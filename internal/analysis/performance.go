package analysis

import (
	"math"

	"github.com/mohamedkhairy/stock-analytics/internal/models"
	"github.com/mohamedkhairy/stock-analytics/pkg/indicator"
	"github.com/montanaflynn/stats"
)

const (
	// TradingDaysPerYear annualises daily figures
	TradingDaysPerYear = 252
	// RiskFreeRate is the annual rate subtracted in the Sharpe ratio
	RiskFreeRate = 0.03
)

// PerformanceMetrics summarises the return profile of a bar sequence
type PerformanceMetrics struct {
	StartPrice     float64 `json:"start_price"`
	EndPrice       float64 `json:"end_price"`
	MaxPrice       float64 `json:"max_price"`
	MinPrice       float64 `json:"min_price"`
	TotalReturnPct float64 `json:"total_return_pct"`
	VolatilityPct  float64 `json:"volatility_pct"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	AverageVolume  float64 `json:"average_volume"`
}

// Performance computes return, risk and volume figures over bars.
// Volatility and Sharpe need at least two daily returns and are zero below that.
func Performance(bars []models.PriceBar) (PerformanceMetrics, error) {
	if err := indicator.ValidateBars(bars); err != nil {
		return PerformanceMetrics{}, err
	}

	first, last := bars[0], bars[len(bars)-1]
	m := PerformanceMetrics{
		StartPrice:     first.Close,
		EndPrice:       last.Close,
		TotalReturnPct: (last.Close - first.Close) / first.Close * 100,
	}

	var err error
	if m.MaxPrice, err = stats.Max(models.Highs(bars)); err != nil {
		return PerformanceMetrics{}, err
	}
	if m.MinPrice, err = stats.Min(models.Lows(bars)); err != nil {
		return PerformanceMetrics{}, err
	}
	if m.AverageVolume, err = stats.Mean(models.Volumes(bars)); err != nil {
		return PerformanceMetrics{}, err
	}

	returns := DailyReturns(bars)
	m.MaxDrawdownPct = MaxDrawdown(returns) * 100

	if len(returns) < 2 {
		return m, nil
	}
	sd, err := stats.StandardDeviationSample(returns)
	if err != nil {
		return PerformanceMetrics{}, err
	}
	mean, err := stats.Mean(returns)
	if err != nil {
		return PerformanceMetrics{}, err
	}
	annualSD := sd * math.Sqrt(TradingDaysPerYear)
	m.VolatilityPct = annualSD * 100
	if sd > 0 {
		m.SharpeRatio = (mean*TradingDaysPerYear - RiskFreeRate) / annualSD
	}
	return m, nil
}

// DailyReturns returns the close-to-close percentage changes, one fewer
// than the bars
func DailyReturns(bars []models.PriceBar) []float64 {
	if len(bars) < 2 {
		return nil
	}
	out := make([]float64, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		out[i-1] = bars[i].Close/bars[i-1].Close - 1
	}
	return out
}

// MaxDrawdown is the deepest fall of the compounded return curve below its
// running peak, as a non-positive fraction
func MaxDrawdown(returns []float64) float64 {
	var (
		wealth = 1.0
		peak   = math.Inf(-1)
		worst  = 0.0
	)
	for _, r := range returns {
		wealth *= 1 + r
		if wealth > peak {
			peak = wealth
		}
		if dd := (wealth - peak) / peak; dd < worst {
			worst = dd
		}
	}
	return worst
}
