package indicator

import (
	"github.com/mohamedkhairy/stock-analytics/internal/models"
)

// MACDResult holds the three aligned MACD series
type MACDResult struct {
	MACD      models.Series
	Signal    models.Series
	Histogram models.Series
}

// MACD calculates Moving Average Convergence Divergence
// MACD = EMA(fast) - EMA(slow), Signal = EMA(signal) of MACD, Histogram = MACD - Signal
func MACD(closes []float64, fast, slow, signal int) (*MACDResult, error) {
	if err := checkWindow("MACD fast", fast, 1); err != nil {
		return nil, err
	}
	if err := checkWindow("MACD slow", slow, 1); err != nil {
		return nil, err
	}
	if err := checkWindow("MACD signal", signal, 1); err != nil {
		return nil, err
	}

	emaFast, err := EMA(closes, fast)
	if err != nil {
		return nil, err
	}
	emaSlow, err := EMA(closes, slow)
	if err != nil {
		return nil, err
	}

	line := subtract(emaFast, emaSlow)
	signalLine, err := EWM(line, SpanAlpha(signal))
	if err != nil {
		return nil, err
	}

	return &MACDResult{
		MACD:      line,
		Signal:    signalLine,
		Histogram: subtract(line, signalLine),
	}, nil
}
