package signal

import (
	"fmt"

	"github.com/mohamedkhairy/stock-analytics/internal/models"
	"github.com/mohamedkhairy/stock-analytics/pkg/logger"
)

// Signal names
const (
	MACDGoldenCross = "MACD_Golden_Cross"
	MACDDeathCross  = "MACD_Death_Cross"
	RSIOverbought   = "RSI_Overbought"
	RSIOversold     = "RSI_Oversold"
	BBUpperBreak    = "BB_Upper_Break"
	BBLowerBreak    = "BB_Lower_Break"
	KDJGoldenCross  = "KDJ_Golden_Cross"
	KDJDeathCross   = "KDJ_Death_Cross"
	MAGoldenCross   = "MA_Golden_Cross"
	MADeathCross    = "MA_Death_Cross"
)

// ColumnClose names the close price as a rule input
const ColumnClose = "close"

// Config holds the tunable levels of the signal rules
type Config struct {
	RSIOverbought float64 `yaml:"rsi_overbought" json:"rsi_overbought"`
	RSIOversold   float64 `yaml:"rsi_oversold" json:"rsi_oversold"`
	// MAColumn is the moving average the close is crossed against
	MAColumn string `yaml:"ma_column" json:"ma_column"`
}

// DefaultConfig returns RSI levels 70/30 and the MA20 cross
func DefaultConfig() Config {
	return Config{
		RSIOverbought: 70,
		RSIOversold:   30,
		MAColumn:      models.MAColumn(20),
	}
}

// Validate checks the thresholds are ordered
func (c Config) Validate() error {
	if c.RSIOversold >= c.RSIOverbought {
		return fmt.Errorf("RSI oversold level %v must be below overbought level %v", c.RSIOversold, c.RSIOverbought)
	}
	if c.MAColumn == "" {
		return fmt.Errorf("MA column cannot be empty")
	}
	return nil
}

// Rule derives one boolean series from its input columns
type Rule struct {
	Name   string
	Inputs []string
	Eval   func(in []models.Series) []bool
}

// Rules returns the rule set for cfg in canonical order
func Rules(cfg Config) []Rule {
	pair := func(fn func(a, b models.Series) []bool) func([]models.Series) []bool {
		return func(in []models.Series) []bool { return fn(in[0], in[1]) }
	}

	return []Rule{
		{Name: MACDGoldenCross, Inputs: []string{models.ColumnMACD, models.ColumnMACDSignal}, Eval: pair(CrossOver)},
		{Name: MACDDeathCross, Inputs: []string{models.ColumnMACD, models.ColumnMACDSignal}, Eval: pair(CrossUnder)},
		{Name: RSIOverbought, Inputs: []string{models.ColumnRSI}, Eval: func(in []models.Series) []bool {
			return Above(in[0], cfg.RSIOverbought)
		}},
		{Name: RSIOversold, Inputs: []string{models.ColumnRSI}, Eval: func(in []models.Series) []bool {
			return Below(in[0], cfg.RSIOversold)
		}},
		{Name: BBUpperBreak, Inputs: []string{ColumnClose, models.ColumnBBUpper}, Eval: pair(Exceeds)},
		{Name: BBLowerBreak, Inputs: []string{ColumnClose, models.ColumnBBLower}, Eval: pair(Undercuts)},
		{Name: KDJGoldenCross, Inputs: []string{models.ColumnKDJK, models.ColumnKDJD}, Eval: pair(CrossOver)},
		{Name: KDJDeathCross, Inputs: []string{models.ColumnKDJK, models.ColumnKDJD}, Eval: pair(CrossUnder)},
		{Name: MAGoldenCross, Inputs: []string{ColumnClose, cfg.MAColumn}, Eval: pair(CrossOver)},
		{Name: MADeathCross, Inputs: []string{ColumnClose, cfg.MAColumn}, Eval: pair(CrossUnder)},
	}
}

// Generate evaluates every rule over frame. A rule whose input column the
// frame does not carry is left out of the result; a column whose length
// differs from the bars is an error.
func Generate(frame *models.Frame, cfg Config) (models.SignalSet, error) {
	if frame == nil {
		return nil, fmt.Errorf("frame cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid signal config: %w", err)
	}

	set := make(models.SignalSet)
	for _, rule := range Rules(cfg) {
		inputs, ok, err := resolve(frame, rule.Inputs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rule.Name, err)
		}
		if !ok {
			logger.Debug("Skipping signal rule, input column absent",
				logger.String("signal", rule.Name),
				logger.Any("inputs", rule.Inputs),
			)
			continue
		}
		set[rule.Name] = rule.Eval(inputs)
	}

	return set, nil
}

func resolve(frame *models.Frame, names []string) ([]models.Series, bool, error) {
	inputs := make([]models.Series, len(names))
	for i, name := range names {
		if name == ColumnClose {
			inputs[i] = frame.CloseSeries()
			continue
		}
		if _, present := frame.Indicators[name]; !present {
			return nil, false, nil
		}
		s, err := frame.Column(name)
		if err != nil {
			return nil, false, err
		}
		inputs[i] = s
	}
	return inputs, true, nil
}
