package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/mohamedkhairy/stock-analytics/internal/analysis"
	"github.com/mohamedkhairy/stock-analytics/internal/models"
	"github.com/mohamedkhairy/stock-analytics/internal/signal"
	"github.com/mohamedkhairy/stock-analytics/pkg/indicator"
	"github.com/mohamedkhairy/stock-analytics/pkg/logger"
)

func main() {
	n := flag.Int("bars", 100, "number of synthetic daily bars")
	seed := flag.Int64("seed", 42, "random walk seed")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	if err := logger.Init(*level, "development"); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	bars := syntheticBars(*n, *seed)

	frame, err := indicator.CalculateAll(bars, indicator.DefaultWindowSet())
	if err != nil {
		logger.Fatal("Indicator calculation failed", logger.ErrorField(err))
	}
	signals, err := signal.Generate(frame, signal.DefaultConfig())
	if err != nil {
		logger.Fatal("Signal generation failed", logger.ErrorField(err))
	}

	logger.Info("Indicators calculated",
		logger.Int("bars", frame.Len()),
		logger.Int("columns", len(frame.Columns)),
	)

	last := frame.Bars[frame.Len()-1]
	fmt.Printf("Latest bar %s  close %.2f\n\n", last.Date.Format("2006-01-02"), last.Close)
	fmt.Println("Indicators:")
	for _, column := range frame.Columns {
		fmt.Printf("  %-16s %s\n", column, format(frame.Latest(column)))
	}

	fmt.Println("\nSignals (bars raised):")
	for _, rule := range signal.Rules(signal.DefaultConfig()) {
		if _, ok := signals[rule.Name]; !ok {
			continue
		}
		fmt.Printf("  %-18s %d\n", rule.Name, signals.Count(rule.Name))
	}
	if active := signals.Active(frame.Len() - 1); len(active) > 0 {
		fmt.Printf("  raised on latest bar: %v\n", active)
	}

	trend, err := analysis.Trend(frame)
	if err != nil {
		logger.Fatal("Trend analysis failed", logger.ErrorField(err))
	}
	perf, err := analysis.Performance(frame.Bars)
	if err != nil {
		logger.Fatal("Performance analysis failed", logger.ErrorField(err))
	}

	fmt.Println("\nTrend:")
	fmt.Printf("  change %.2f (%.2f%%), range %.2f - %.2f\n", trend.PriceChange, trend.PriceChangePc, trend.LowestPrice, trend.HighestPrice)
	fmt.Printf("  RSI %s, MACD %s\n", trend.RSIStatus, trend.MACDTrend)
	for _, p := range trend.MAPositions {
		fmt.Printf("  close %s %s\n", p.Position, p.Column)
	}
	fmt.Println("\nPerformance:")
	fmt.Printf("  return %.2f%%, volatility %.2f%%, max drawdown %.2f%%, Sharpe %.2f\n",
		perf.TotalReturnPct, perf.VolatilityPct, perf.MaxDrawdownPct, perf.SharpeRatio)
}

// syntheticBars builds a seeded random walk of n weekday bars ending today
func syntheticBars(n int, seed int64) []models.PriceBar {
	rng := rand.New(rand.NewSource(seed))
	bars := make([]models.PriceBar, 0, n)

	date := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -n*7/5-7)
	price := 100.0
	for len(bars) < n {
		date = date.AddDate(0, 0, 1)
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		open := price
		price = math.Max(1, price*(1+rng.NormFloat64()*0.02))
		high := math.Max(open, price) * (1 + rng.Float64()*0.01)
		low := math.Min(open, price) * (1 - rng.Float64()*0.01)
		bars = append(bars, models.PriceBar{
			Date:   date,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  price,
			Volume: 1_000_000 + rng.Float64()*9_000_000,
		})
	}
	return bars
}

func format(v models.Value) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v.Float64)
}
