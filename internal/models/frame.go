package models

import (
	"fmt"
	"sort"
	"time"
)

// Indicator column names produced by the engine
const (
	ColumnMACD          = "MACD"
	ColumnMACDSignal    = "MACD_Signal"
	ColumnMACDHistogram = "MACD_Histogram"
	ColumnRSI           = "RSI"
	ColumnBBUpper       = "BB_Upper"
	ColumnBBMiddle      = "BB_Middle"
	ColumnBBLower       = "BB_Lower"
	ColumnKDJK          = "KDJ_K"
	ColumnKDJD          = "KDJ_D"
	ColumnKDJJ          = "KDJ_J"
	ColumnATR           = "ATR"
	ColumnWilliamsR     = "Williams_R"
	ColumnCCI           = "CCI"
)

// MAColumn returns the column name of an n-period simple moving average
func MAColumn(period int) string {
	return fmt.Sprintf("MA%d", period)
}

// EMAColumn returns the column name of an n-period exponential moving average
func EMAColumn(period int) string {
	return fmt.Sprintf("EMA%d", period)
}

// IndicatorSet maps indicator names to series aligned with one bar sequence
type IndicatorSet map[string]Series

// Names returns the indicator names in lexical order
func (s IndicatorSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Frame is a bar sequence merged with its indicators
type Frame struct {
	Bars       []PriceBar   `json:"bars"`
	Indicators IndicatorSet `json:"indicators"`
	// Columns lists indicator names in computation order
	Columns []string `json:"columns"`
}

// Len returns the number of bars
func (f *Frame) Len() int {
	return len(f.Bars)
}

// Column returns an indicator series, checking it is aligned with the bars
func (f *Frame) Column(name string) (Series, error) {
	s, ok := f.Indicators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}
	if len(s) != len(f.Bars) {
		return nil, fmt.Errorf("%w: %s has %d values for %d bars", ErrMisalignedColumn, name, len(s), len(f.Bars))
	}
	return s, nil
}

// CloseSeries returns the closes as a fully defined series
func (f *Frame) CloseSeries() Series {
	return SeriesOf(Closes(f.Bars)...)
}

// Latest returns the last value of the named column
func (f *Frame) Latest(name string) Value {
	s, ok := f.Indicators[name]
	if !ok {
		return Value{}
	}
	return s.Last()
}

// Row is one date of a frame, as handed to reporting collaborators
type Row struct {
	Date       time.Time        `json:"date"`
	Open       float64          `json:"open"`
	High       float64          `json:"high"`
	Low        float64          `json:"low"`
	Close      float64          `json:"close"`
	Volume     float64          `json:"volume"`
	Indicators map[string]Value `json:"indicators"`
}

// Rows flattens the frame into per-date rows
func (f *Frame) Rows() []Row {
	rows := make([]Row, len(f.Bars))
	for i, bar := range f.Bars {
		values := make(map[string]Value, len(f.Indicators))
		for name, s := range f.Indicators {
			values[name] = s.At(i)
		}
		rows[i] = Row{
			Date:       bar.Date,
			Open:       bar.Open,
			High:       bar.High,
			Low:        bar.Low,
			Close:      bar.Close,
			Volume:     bar.Volume,
			Indicators: values,
		}
	}
	return rows
}

// SignalSet maps signal names to per-bar flags
type SignalSet map[string][]bool

// Count returns how many bars raised the named signal
func (s SignalSet) Count(name string) int {
	n := 0
	for _, on := range s[name] {
		if on {
			n++
		}
	}
	return n
}

// Counts returns the number of raised bars per signal
func (s SignalSet) Counts() map[string]int {
	out := make(map[string]int, len(s))
	for name := range s {
		out[name] = s.Count(name)
	}
	return out
}

// Names returns the signal names in lexical order
func (s SignalSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Active returns the signals raised on bar i
func (s SignalSet) Active(i int) []string {
	var active []string
	for _, name := range s.Names() {
		flags := s[name]
		if i >= 0 && i < len(flags) && flags[i] {
			active = append(active, name)
		}
	}
	return active
}
