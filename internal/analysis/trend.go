package analysis

import (
	"errors"
	"regexp"
	"strconv"

	"github.com/mohamedkhairy/stock-analytics/internal/models"
	"github.com/mohamedkhairy/stock-analytics/pkg/indicator"
	"github.com/sdcoffey/techan"
)

// ErrNoBars is returned when there is nothing to analyse
var ErrNoBars = errors.New("no bars to analyse")

// Status labels
const (
	StatusOverbought = "overbought"
	StatusOversold   = "oversold"
	StatusNormal     = "normal"
	StatusUnknown    = "unknown"

	TrendBullish = "bullish"
	TrendBearish = "bearish"

	PositionAbove = "above"
	PositionBelow = "below"
)

// RSI bands used for the status label
const (
	RSIOverbought = 70.0
	RSIOversold   = 30.0
)

var maColumnPattern = regexp.MustCompile(`^MA(\d+)$`)

// MAPosition is where the latest close sits relative to one moving average
type MAPosition struct {
	Column   string       `json:"column"`
	Period   int          `json:"period"`
	Value    models.Value `json:"value"`
	Position string       `json:"position"`
}

// TrendReport summarises a frame as of its latest bar
type TrendReport struct {
	LatestPrice   float64      `json:"latest_price"`
	PriceChange   float64      `json:"price_change"`
	PriceChangePc float64      `json:"price_change_pct"`
	HighestPrice  float64      `json:"highest_price"`
	LowestPrice   float64      `json:"lowest_price"`
	AverageVolume float64      `json:"average_volume"`
	RSI           models.Value `json:"rsi"`
	RSIStatus     string       `json:"rsi_status"`
	MACDTrend     string       `json:"macd_trend"`
	MAPositions   []MAPosition `json:"ma_positions"`
}

// Trend reports price movement over the frame and where the latest bar
// stands on RSI, MACD and every MA column present
func Trend(frame *models.Frame) (TrendReport, error) {
	if frame == nil || frame.Len() == 0 {
		return TrendReport{}, ErrNoBars
	}

	bars := frame.Bars
	first, latest := bars[0], bars[len(bars)-1]

	report := TrendReport{
		LatestPrice:   latest.Close,
		PriceChange:   latest.Close - first.Close,
		HighestPrice:  first.High,
		LowestPrice:   first.Low,
		AverageVolume: averageVolume(bars),
		RSIStatus:     StatusUnknown,
		MACDTrend:     StatusUnknown,
	}
	if first.Close != 0 {
		report.PriceChangePc = report.PriceChange / first.Close * 100
	}
	for _, bar := range bars[1:] {
		if bar.High > report.HighestPrice {
			report.HighestPrice = bar.High
		}
		if bar.Low < report.LowestPrice {
			report.LowestPrice = bar.Low
		}
	}

	report.RSI = frame.Latest(models.ColumnRSI)
	report.RSIStatus = RSIStatus(report.RSI)

	macd := frame.Latest(models.ColumnMACD)
	signal := frame.Latest(models.ColumnMACDSignal)
	if macd.Valid && signal.Valid {
		if macd.Float64 > signal.Float64 {
			report.MACDTrend = TrendBullish
		} else {
			report.MACDTrend = TrendBearish
		}
	}

	report.MAPositions = maPositions(frame, latest.Close)
	return report, nil
}

// RSIStatus labels an RSI reading
func RSIStatus(rsi models.Value) string {
	switch {
	case !rsi.Valid:
		return StatusUnknown
	case rsi.Float64 > RSIOverbought:
		return StatusOverbought
	case rsi.Float64 < RSIOversold:
		return StatusOversold
	default:
		return StatusNormal
	}
}

func maPositions(frame *models.Frame, close float64) []MAPosition {
	var positions []MAPosition
	for _, column := range frame.Columns {
		m := maColumnPattern.FindStringSubmatch(column)
		if m == nil {
			continue
		}
		period, _ := strconv.Atoi(m[1])
		value := frame.Latest(column)
		position := StatusUnknown
		if value.Valid {
			position = PositionBelow
			if close > value.Float64 {
				position = PositionAbove
			}
		}
		positions = append(positions, MAPosition{
			Column:   column,
			Period:   period,
			Value:    value,
			Position: position,
		})
	}
	return positions
}

// averageVolume is the full-length simple average of volume, read from
// techan so the figure matches the candle series other tools see
func averageVolume(bars []models.PriceBar) float64 {
	series := indicator.ToTimeSeries(bars)
	n := len(series.Candles)
	if n == 0 {
		return 0
	}
	avg := techan.NewSimpleMovingAverage(techan.NewVolumeIndicator(series), n)
	return avg.Calculate(n - 1).Float()
}
