package indicator

import (
	"fmt"

	"github.com/mohamedkhairy/stock-analytics/internal/models"
)

// Calculator is the interface for computing one indicator family over a bar
// sequence. Each family may produce several aligned columns (e.g. MACD).
type Calculator interface {
	// Name returns the unique name of this calculator (e.g., "rsi_14", "macd_12_26_9")
	Name() string

	// Columns returns the indicator columns Compute produces, in order
	Columns() []string

	// Compute returns one series per column, each as long as bars
	Compute(bars []models.PriceBar) (models.IndicatorSet, error)
}

type calculatorFunc struct {
	name    string
	columns []string
	compute func(bars []models.PriceBar) (models.IndicatorSet, error)
}

func (c *calculatorFunc) Name() string {
	return c.name
}

func (c *calculatorFunc) Columns() []string {
	return c.columns
}

func (c *calculatorFunc) Compute(bars []models.PriceBar) (models.IndicatorSet, error) {
	return c.compute(bars)
}

// NewSMACalculator computes the MA<period> column
func NewSMACalculator(period int) (Calculator, error) {
	if err := checkWindow("SMA", period, 1); err != nil {
		return nil, err
	}
	column := models.MAColumn(period)
	return &calculatorFunc{
		name:    fmt.Sprintf("sma_%d", period),
		columns: []string{column},
		compute: func(bars []models.PriceBar) (models.IndicatorSet, error) {
			s, err := SMA(models.Closes(bars), period)
			if err != nil {
				return nil, err
			}
			return models.IndicatorSet{column: s}, nil
		},
	}, nil
}

// NewEMACalculator computes the EMA<period> column
func NewEMACalculator(period int) (Calculator, error) {
	if err := checkWindow("EMA", period, 1); err != nil {
		return nil, err
	}
	column := models.EMAColumn(period)
	return &calculatorFunc{
		name:    fmt.Sprintf("ema_%d", period),
		columns: []string{column},
		compute: func(bars []models.PriceBar) (models.IndicatorSet, error) {
			s, err := EMA(models.Closes(bars), period)
			if err != nil {
				return nil, err
			}
			return models.IndicatorSet{column: s}, nil
		},
	}, nil
}

// NewMACDCalculator computes MACD, MACD_Signal and MACD_Histogram
func NewMACDCalculator(w MACDWindows) Calculator {
	return &calculatorFunc{
		name:    fmt.Sprintf("macd_%d_%d_%d", w.Fast, w.Slow, w.Signal),
		columns: []string{models.ColumnMACD, models.ColumnMACDSignal, models.ColumnMACDHistogram},
		compute: func(bars []models.PriceBar) (models.IndicatorSet, error) {
			r, err := MACD(models.Closes(bars), w.Fast, w.Slow, w.Signal)
			if err != nil {
				return nil, err
			}
			return models.IndicatorSet{
				models.ColumnMACD:          r.MACD,
				models.ColumnMACDSignal:    r.Signal,
				models.ColumnMACDHistogram: r.Histogram,
			}, nil
		},
	}
}

// NewRSICalculator computes the RSI column
func NewRSICalculator(window int) Calculator {
	return &calculatorFunc{
		name:    fmt.Sprintf("rsi_%d", window),
		columns: []string{models.ColumnRSI},
		compute: func(bars []models.PriceBar) (models.IndicatorSet, error) {
			s, err := RSI(models.Closes(bars), window)
			if err != nil {
				return nil, err
			}
			return models.IndicatorSet{models.ColumnRSI: s}, nil
		},
	}
}

// NewBollingerCalculator computes BB_Upper, BB_Middle and BB_Lower
func NewBollingerCalculator(w BollingerWindows) Calculator {
	return &calculatorFunc{
		name:    fmt.Sprintf("bb_%d_%.1f", w.Window, w.NumStd),
		columns: []string{models.ColumnBBUpper, models.ColumnBBMiddle, models.ColumnBBLower},
		compute: func(bars []models.PriceBar) (models.IndicatorSet, error) {
			r, err := BollingerBands(models.Closes(bars), w.Window, w.NumStd)
			if err != nil {
				return nil, err
			}
			return models.IndicatorSet{
				models.ColumnBBUpper:  r.Upper,
				models.ColumnBBMiddle: r.Middle,
				models.ColumnBBLower:  r.Lower,
			}, nil
		},
	}
}

// NewKDJCalculator computes KDJ_K, KDJ_D and KDJ_J
func NewKDJCalculator(w KDJWindows) Calculator {
	return &calculatorFunc{
		name:    fmt.Sprintf("kdj_%d_%d_%d", w.K, w.D, w.J),
		columns: []string{models.ColumnKDJK, models.ColumnKDJD, models.ColumnKDJJ},
		compute: func(bars []models.PriceBar) (models.IndicatorSet, error) {
			r, err := KDJ(models.Highs(bars), models.Lows(bars), models.Closes(bars), w.K, w.D, w.J)
			if err != nil {
				return nil, err
			}
			return models.IndicatorSet{
				models.ColumnKDJK: r.K,
				models.ColumnKDJD: r.D,
				models.ColumnKDJJ: r.J,
			}, nil
		},
	}
}

// NewATRCalculator computes the ATR column
func NewATRCalculator(window int) Calculator {
	return &calculatorFunc{
		name:    fmt.Sprintf("atr_%d", window),
		columns: []string{models.ColumnATR},
		compute: func(bars []models.PriceBar) (models.IndicatorSet, error) {
			s, err := ATR(models.Highs(bars), models.Lows(bars), models.Closes(bars), window)
			if err != nil {
				return nil, err
			}
			return models.IndicatorSet{models.ColumnATR: s}, nil
		},
	}
}

// NewWilliamsRCalculator computes the Williams_R column
func NewWilliamsRCalculator(window int) Calculator {
	return &calculatorFunc{
		name:    fmt.Sprintf("williams_r_%d", window),
		columns: []string{models.ColumnWilliamsR},
		compute: func(bars []models.PriceBar) (models.IndicatorSet, error) {
			s, err := WilliamsR(models.Highs(bars), models.Lows(bars), models.Closes(bars), window)
			if err != nil {
				return nil, err
			}
			return models.IndicatorSet{models.ColumnWilliamsR: s}, nil
		},
	}
}

// NewCCICalculator computes the CCI column
func NewCCICalculator(window int) Calculator {
	return &calculatorFunc{
		name:    fmt.Sprintf("cci_%d", window),
		columns: []string{models.ColumnCCI},
		compute: func(bars []models.PriceBar) (models.IndicatorSet, error) {
			s, err := CCI(models.Highs(bars), models.Lows(bars), models.Closes(bars), window)
			if err != nil {
				return nil, err
			}
			return models.IndicatorSet{models.ColumnCCI: s}, nil
		},
	}
}
