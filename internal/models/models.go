package models

import (
	"strings"
	"time"
)

// PriceBar represents one trading-period OHLCV record
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Validate validates a single PriceBar. Ordering across bars is checked by
// the indicator engine.
func (b *PriceBar) Validate() error {
	if b.Date.IsZero() {
		return ErrInvalidTimestamp
	}
	if !(b.Open > 0) || !(b.High > 0) || !(b.Low > 0) || !(b.Close > 0) {
		return ErrInvalidPrice
	}
	if b.High < b.Low {
		return ErrInvalidBar
	}
	if !(b.Volume >= 0) {
		return ErrInvalidVolume
	}
	return nil
}

// Closes extracts the close column
func Closes(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i := range bars {
		out[i] = bars[i].Close
	}
	return out
}

// Highs extracts the high column
func Highs(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i := range bars {
		out[i] = bars[i].High
	}
	return out
}

// Lows extracts the low column
func Lows(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i := range bars {
		out[i] = bars[i].Low
	}
	return out
}

// Volumes extracts the volume column
func Volumes(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i := range bars {
		out[i] = bars[i].Volume
	}
	return out
}

// StaticAttributes holds the listing metadata of a symbol
type StaticAttributes struct {
	Symbol   string    `json:"symbol"`
	Name     string    `json:"name"`
	Industry string    `json:"industry"`
	Area     string    `json:"area,omitempty"`
	Market   string    `json:"market,omitempty"`
	ListDate time.Time `json:"list_date"`
}

// YearsListed returns the number of calendar years between the listing date
// and asOf. Unknown listing dates count as zero years.
func (a *StaticAttributes) YearsListed(asOf time.Time) int {
	if a.ListDate.IsZero() || asOf.Before(a.ListDate) {
		return 0
	}
	return asOf.Year() - a.ListDate.Year()
}

// IsSpecialTreatment reports whether the name carries an ST marker
func (a *StaticAttributes) IsSpecialTreatment() bool {
	return strings.Contains(a.Name, "ST")
}

// Candidate is one screening candidate: latest indicator readings plus
// static attributes
type Candidate struct {
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name,omitempty"`
	Industry    string  `json:"industry,omitempty"`
	Close       Value   `json:"close"`
	RSI         Value   `json:"rsi"`
	MA5         Value   `json:"ma5"`
	MA20        Value   `json:"ma20"`
	YearsListed float64 `json:"years_listed"`
}

// ScoreComponent is one additive contribution to a composite score
type ScoreComponent struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// ScoredCandidate is a candidate with its composite score
type ScoredCandidate struct {
	Symbol     string           `json:"symbol"`
	Name       string           `json:"name,omitempty"`
	Industry   string           `json:"industry,omitempty"`
	Close      Value            `json:"close"`
	Score      float64          `json:"score"`
	Components []ScoreComponent `json:"components"`
	Breakdown  string           `json:"breakdown"`
}

// Component returns the named component score, if present
func (s *ScoredCandidate) Component(name string) (float64, bool) {
	for _, c := range s.Components {
		if c.Name == name {
			return c.Score, true
		}
	}
	return 0, false
}
