package indicator

import (
	"fmt"
)

// MACDWindows configures MACD
type MACDWindows struct {
	Fast   int `yaml:"fast" json:"fast"`
	Slow   int `yaml:"slow" json:"slow"`
	Signal int `yaml:"signal" json:"signal"`
}

// BollingerWindows configures Bollinger Bands
type BollingerWindows struct {
	Window int     `yaml:"window" json:"window"`
	NumStd float64 `yaml:"num_std" json:"num_std"`
}

// KDJWindows configures KDJ
type KDJWindows struct {
	K int `yaml:"k" json:"k"`
	D int `yaml:"d" json:"d"`
	J int `yaml:"j" json:"j"`
}

// WindowSet holds the window parameters CalculateAll applies
type WindowSet struct {
	MA        []int            `yaml:"ma" json:"ma"`
	EMA       []int            `yaml:"ema" json:"ema"`
	MACD      MACDWindows      `yaml:"macd" json:"macd"`
	RSI       int              `yaml:"rsi" json:"rsi"`
	Bollinger BollingerWindows `yaml:"bollinger" json:"bollinger"`
	KDJ       KDJWindows       `yaml:"kdj" json:"kdj"`
	ATR       int              `yaml:"atr" json:"atr"`
	WilliamsR int              `yaml:"williams_r" json:"williams_r"`
	CCI       int              `yaml:"cci" json:"cci"`
}

// DefaultWindowSet returns the conventional windows
func DefaultWindowSet() WindowSet {
	return WindowSet{
		MA:        []int{5, 10, 20, 60},
		EMA:       []int{12, 26},
		MACD:      MACDWindows{Fast: 12, Slow: 26, Signal: 9},
		RSI:       14,
		Bollinger: BollingerWindows{Window: 20, NumStd: 2},
		KDJ:       KDJWindows{K: 9, D: 3, J: 3},
		ATR:       14,
		WilliamsR: 14,
		CCI:       20,
	}
}

// Validate checks every window is usable and no column would be produced twice
func (w WindowSet) Validate() error {
	seenMA := make(map[int]bool, len(w.MA))
	for _, p := range w.MA {
		if err := checkWindow("MA", p, 1); err != nil {
			return err
		}
		if seenMA[p] {
			return fmt.Errorf("%w: duplicate MA window %d", ErrInvalidWindow, p)
		}
		seenMA[p] = true
	}
	seenEMA := make(map[int]bool, len(w.EMA))
	for _, p := range w.EMA {
		if err := checkWindow("EMA", p, 1); err != nil {
			return err
		}
		if seenEMA[p] {
			return fmt.Errorf("%w: duplicate EMA window %d", ErrInvalidWindow, p)
		}
		seenEMA[p] = true
	}

	checks := []struct {
		name   string
		window int
	}{
		{"MACD fast", w.MACD.Fast},
		{"MACD slow", w.MACD.Slow},
		{"MACD signal", w.MACD.Signal},
		{"RSI", w.RSI},
		{"Bollinger", w.Bollinger.Window},
		{"KDJ k", w.KDJ.K},
		{"KDJ d", w.KDJ.D},
		{"KDJ j", w.KDJ.J},
		{"ATR", w.ATR},
		{"Williams %R", w.WilliamsR},
		{"CCI", w.CCI},
	}
	for _, c := range checks {
		if err := checkWindow(c.name, c.window, 1); err != nil {
			return err
		}
	}
	if w.Bollinger.NumStd < 0 {
		return fmt.Errorf("%w: Bollinger band width must be non-negative, got %v", ErrInvalidWindow, w.Bollinger.NumStd)
	}
	return nil
}
