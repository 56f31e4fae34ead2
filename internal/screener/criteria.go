package screener

import (
	"errors"
	"fmt"
	"time"

	"github.com/mohamedkhairy/stock-analytics/internal/models"
)

// ErrFiltered marks a symbol rejected by a screening criterion
var ErrFiltered = errors.New("filtered out")

// MA trend requirements
const (
	TrendBullish = "bullish"
	TrendBearish = "bearish"
	TrendAny     = "any"
)

// BasicCriteria filters the listed universe on static attributes
type BasicCriteria struct {
	MinYearsListed int      `yaml:"min_years_listed" json:"min_years_listed"`
	Industries     []string `yaml:"industries" json:"industries"`
	ExcludeST      bool     `yaml:"exclude_st" json:"exclude_st"`
}

// DefaultBasicCriteria requires three listed years and excludes ST names
func DefaultBasicCriteria() BasicCriteria {
	return BasicCriteria{
		MinYearsListed: 3,
		ExcludeST:      true,
	}
}

// FilterBasic returns the attributes passing c, in input order
func FilterBasic(attrs []models.StaticAttributes, c BasicCriteria, asOf time.Time) []models.StaticAttributes {
	industries := make(map[string]bool, len(c.Industries))
	for _, ind := range c.Industries {
		industries[ind] = true
	}

	out := make([]models.StaticAttributes, 0, len(attrs))
	for i := range attrs {
		a := &attrs[i]
		if a.YearsListed(asOf) < c.MinYearsListed {
			continue
		}
		if len(industries) > 0 && !industries[a.Industry] {
			continue
		}
		if c.ExcludeST && a.IsSpecialTreatment() {
			continue
		}
		out = append(out, *a)
	}
	return out
}

// TechnicalCriteria filters symbols on their latest indicator readings
type TechnicalCriteria struct {
	MinBars        int     `yaml:"min_bars" json:"min_bars"`
	RSIMin         float64 `yaml:"rsi_min" json:"rsi_min"`
	RSIMax         float64 `yaml:"rsi_max" json:"rsi_max"`
	MATrend        string  `yaml:"ma_trend" json:"ma_trend"`
	VolumeIncrease bool    `yaml:"volume_increase" json:"volume_increase"`
	VolumeRatio    float64 `yaml:"volume_ratio" json:"volume_ratio"`
}

// DefaultTechnicalCriteria returns RSI 30-70, a bullish MA trend and a 20%
// volume expansion
func DefaultTechnicalCriteria() TechnicalCriteria {
	return TechnicalCriteria{
		MinBars:        20,
		RSIMin:         30,
		RSIMax:         70,
		MATrend:        TrendBullish,
		VolumeIncrease: true,
		VolumeRatio:    1.2,
	}
}

// Validate checks the criteria are consistent
func (c TechnicalCriteria) Validate() error {
	switch c.MATrend {
	case TrendBullish, TrendBearish, TrendAny:
	default:
		return fmt.Errorf("unknown MA trend %q (want %s, %s or %s)", c.MATrend, TrendBullish, TrendBearish, TrendAny)
	}
	if c.RSIMin > c.RSIMax {
		return fmt.Errorf("RSI range [%v, %v] is empty", c.RSIMin, c.RSIMax)
	}
	if c.MinBars < 0 {
		return fmt.Errorf("min bars must be non-negative, got %d", c.MinBars)
	}
	if c.VolumeIncrease && c.VolumeRatio <= 0 {
		return fmt.Errorf("volume ratio must be positive, got %v", c.VolumeRatio)
	}
	return nil
}

// CheckTechnical returns nil when frame passes c, or an ErrFiltered error
// naming the failed rule. RSI and MA rules apply only when the frame carries
// their columns; an undefined latest reading fails the rule.
func CheckTechnical(frame *models.Frame, c TechnicalCriteria) error {
	n := frame.Len()
	if n == 0 || n < c.MinBars {
		return fmt.Errorf("%w: %d bars, need %d", ErrFiltered, n, c.MinBars)
	}

	if _, ok := frame.Indicators[models.ColumnRSI]; ok {
		rsi, defined := frame.Latest(models.ColumnRSI).Get()
		if !defined || rsi < c.RSIMin || rsi > c.RSIMax {
			return fmt.Errorf("%w: RSI %s outside [%v, %v]", ErrFiltered, frame.Latest(models.ColumnRSI), c.RSIMin, c.RSIMax)
		}
	}

	ma5Col, ma20Col := models.MAColumn(5), models.MAColumn(20)
	_, has5 := frame.Indicators[ma5Col]
	_, has20 := frame.Indicators[ma20Col]
	if c.MATrend != TrendAny && has5 && has20 {
		closePrice := frame.Bars[n-1].Close
		ma5, ok5 := frame.Latest(ma5Col).Get()
		ma20, ok20 := frame.Latest(ma20Col).Get()
		var pass bool
		switch c.MATrend {
		case TrendBullish:
			pass = ok5 && ok20 && closePrice > ma5 && ma5 > ma20
		case TrendBearish:
			pass = ok5 && ok20 && closePrice < ma5 && ma5 < ma20
		}
		if !pass {
			return fmt.Errorf("%w: MA trend is not %s", ErrFiltered, c.MATrend)
		}
	}

	if c.VolumeIncrease && n >= 5 {
		vols := models.Volumes(frame.Bars)
		recent := mean(vols[n-5:])
		previous := vols[max(0, n-10) : n-5]
		if len(previous) > 0 && recent <= mean(previous)*c.VolumeRatio {
			return fmt.Errorf("%w: recent volume %.0f not above %.2fx prior %.0f", ErrFiltered, recent, c.VolumeRatio, mean(previous))
		}
	}

	return nil
}

// NewCandidate collects the latest readings of frame into a scoring candidate
func NewCandidate(attrs models.StaticAttributes, frame *models.Frame, asOf time.Time) models.Candidate {
	c := models.Candidate{
		Symbol:      attrs.Symbol,
		Name:        attrs.Name,
		Industry:    attrs.Industry,
		RSI:         frame.Latest(models.ColumnRSI),
		MA5:         frame.Latest(models.MAColumn(5)),
		MA20:        frame.Latest(models.MAColumn(20)),
		YearsListed: float64(attrs.YearsListed(asOf)),
	}
	if n := frame.Len(); n > 0 {
		c.Close = models.Some(frame.Bars[n-1].Close)
	}
	return c
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
