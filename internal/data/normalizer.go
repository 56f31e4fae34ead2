package data

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mohamedkhairy/stock-analytics/internal/models"
	"github.com/mohamedkhairy/stock-analytics/pkg/logger"
)

// DateLayout is the YYYYMMDD date format used by the upstream API
const DateLayout = "20060102"

var (
	// ErrInvalidMessage is returned when a response table cannot be parsed
	ErrInvalidMessage = errors.New("invalid message")
)

// Table is the column-oriented payload of an API response
type Table struct {
	Fields  []string        `json:"fields"`
	Items   [][]interface{} `json:"items"`
	HasMore bool            `json:"has_more"`
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Items)
}

// index maps field names to column positions
func (t *Table) index() map[string]int {
	idx := make(map[string]int, len(t.Fields))
	for i, f := range t.Fields {
		idx[f] = i
	}
	return idx
}

// row wraps one item with its field index
type row struct {
	idx  map[string]int
	item []interface{}
}

func (r row) raw(field string) (interface{}, bool) {
	i, ok := r.idx[field]
	if !ok || i >= len(r.item) || r.item[i] == nil {
		return nil, false
	}
	return r.item[i], true
}

func (r row) str(field string) string {
	v, ok := r.raw(field)
	if !ok {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func (r row) float(field string) (float64, error) {
	v, ok := r.raw(field)
	if !ok {
		return 0, fmt.Errorf("%w: missing %s", ErrInvalidMessage, field)
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: invalid %s: %v", ErrInvalidMessage, field, err)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid %s: %v", ErrInvalidMessage, field, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: unexpected type %T for %s", ErrInvalidMessage, v, field)
	}
}

func (r row) date(field string) (time.Time, error) {
	s := r.str(field)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: missing %s", ErrInvalidMessage, field)
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid %s %q: %v", ErrInvalidMessage, field, s, err)
	}
	return d, nil
}

// NormalizeBars converts a daily/weekly/monthly table to bars sorted
// ascending by date. The API returns newest first and names volume "vol".
func NormalizeBars(t *Table) ([]models.PriceBar, error) {
	if t.Len() == 0 {
		return []models.PriceBar{}, nil
	}

	idx := t.index()
	for _, field := range []string{"trade_date", "open", "high", "low", "close", "vol"} {
		if _, ok := idx[field]; !ok {
			return nil, fmt.Errorf("%w: response lacks field %s", ErrInvalidMessage, field)
		}
	}

	bars := make([]models.PriceBar, 0, len(t.Items))
	for i, item := range t.Items {
		r := row{idx: idx, item: item}
		bar, err := normalizeBar(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		bars = append(bars, bar)
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})

	// Duplicate dates would break strict ordering downstream; keep the last
	deduped := bars[:0]
	for _, bar := range bars {
		if n := len(deduped); n > 0 && deduped[n-1].Date.Equal(bar.Date) {
			logger.Warn("Duplicate trade date in response",
				logger.Time("date", bar.Date),
			)
			deduped[n-1] = bar
			continue
		}
		deduped = append(deduped, bar)
	}

	return deduped, nil
}

func normalizeBar(r row) (models.PriceBar, error) {
	var (
		bar models.PriceBar
		err error
	)
	if bar.Date, err = r.date("trade_date"); err != nil {
		return bar, err
	}
	if bar.Open, err = r.float("open"); err != nil {
		return bar, err
	}
	if bar.High, err = r.float("high"); err != nil {
		return bar, err
	}
	if bar.Low, err = r.float("low"); err != nil {
		return bar, err
	}
	if bar.Close, err = r.float("close"); err != nil {
		return bar, err
	}
	if bar.Volume, err = r.float("vol"); err != nil {
		return bar, err
	}
	return bar, nil
}

// NormalizeStockBasics converts a stock_basic table to static attributes.
// Rows without a code are dropped; an unparseable list date is left zero.
func NormalizeStockBasics(t *Table) ([]models.StaticAttributes, error) {
	if t.Len() == 0 {
		return []models.StaticAttributes{}, nil
	}

	idx := t.index()
	if _, ok := idx["ts_code"]; !ok {
		return nil, fmt.Errorf("%w: response lacks field ts_code", ErrInvalidMessage)
	}

	out := make([]models.StaticAttributes, 0, len(t.Items))
	for _, item := range t.Items {
		r := row{idx: idx, item: item}
		attrs := models.StaticAttributes{
			Symbol:   strings.ToUpper(r.str("ts_code")),
			Name:     r.str("name"),
			Industry: r.str("industry"),
			Area:     r.str("area"),
			Market:   r.str("market"),
		}
		if attrs.Symbol == "" {
			continue
		}
		if r.str("list_date") != "" {
			listDate, err := r.date("list_date")
			if err != nil {
				logger.Debug("Ignoring unparseable list date",
					logger.Symbol(attrs.Symbol),
					logger.ErrorField(err),
				)
			} else {
				attrs.ListDate = listDate
			}
		}
		out = append(out, attrs)
	}
	return out, nil
}
