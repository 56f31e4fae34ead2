package data

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mohamedkhairy/stock-analytics/internal/models"
	"github.com/mohamedkhairy/stock-analytics/pkg/logger"
)

const (
	// DefaultTushareURL is the Tushare Pro HTTP endpoint
	DefaultTushareURL = "http://api.tushare.pro"

	barFields   = "ts_code,trade_date,open,high,low,close,vol"
	basicFields = "ts_code,symbol,name,area,industry,market,list_date"

	// MaxRetryDelay caps the backoff between attempts
	MaxRetryDelay = 30 * time.Second
)

// Frequency selects the bar interval API
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// APIError is a non-zero response code from the API
type APIError struct {
	API  string
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s returned code %d: %s", e.API, e.Code, e.Msg)
}

type tushareRequest struct {
	APIName string            `json:"api_name"`
	Token   string            `json:"token"`
	Params  map[string]string `json:"params"`
	Fields  string            `json:"fields"`
}

type tushareResponse struct {
	RequestID string `json:"request_id"`
	Code      int    `json:"code"`
	Msg       string `json:"msg"`
	Data      *Table `json:"data"`
}

// TushareProvider fetches bars and listings from the Tushare Pro HTTP API
type TushareProvider struct {
	config ProviderConfig
	client *http.Client
}

// NewTushareProvider creates a Tushare provider; a token is required
func NewTushareProvider(config ProviderConfig) (Provider, error) {
	return NewTushareClient(config)
}

// NewTushareClient is NewTushareProvider returning the concrete type, for
// callers that need weekly or monthly bars
func NewTushareClient(config ProviderConfig) (*TushareProvider, error) {
	if config.Token == "" {
		return nil, fmt.Errorf("tushare provider requires a token")
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultTushareURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RetryTimes < 1 {
		config.RetryTimes = 1
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = time.Second
	}

	return &TushareProvider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}, nil
}

// Name returns the provider name
func (p *TushareProvider) Name() string {
	return "tushare"
}

// ListSymbols returns every currently listed stock
func (p *TushareProvider) ListSymbols(ctx context.Context) ([]models.StaticAttributes, error) {
	table, err := p.call(ctx, "stock_basic", map[string]string{"list_status": "L"}, basicFields)
	if err != nil {
		return nil, err
	}
	attrs, err := NormalizeStockBasics(table)
	if err != nil {
		return nil, fmt.Errorf("%w: stock_basic: %w", ErrProvider, err)
	}
	return attrs, nil
}

// GetStaticAttributes returns the listing metadata of symbol
func (p *TushareProvider) GetStaticAttributes(ctx context.Context, symbol string) (models.StaticAttributes, error) {
	if symbol == "" {
		return models.StaticAttributes{}, ErrInvalidSymbol
	}
	table, err := p.call(ctx, "stock_basic", map[string]string{"ts_code": symbol}, basicFields)
	if err != nil {
		return models.StaticAttributes{}, err
	}
	attrs, err := NormalizeStockBasics(table)
	if err != nil {
		return models.StaticAttributes{}, fmt.Errorf("%w: stock_basic: %w", ErrProvider, err)
	}
	for _, a := range attrs {
		if strings.EqualFold(a.Symbol, symbol) {
			return a, nil
		}
	}
	return models.StaticAttributes{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
}

// GetPriceBars returns daily bars for symbol
func (p *TushareProvider) GetPriceBars(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceBar, error) {
	return p.GetBars(ctx, Daily, symbol, start, end)
}

// GetBars returns bars of the given frequency; zero start or end leaves that
// side of the range open
func (p *TushareProvider) GetBars(ctx context.Context, freq Frequency, symbol string, start, end time.Time) ([]models.PriceBar, error) {
	if err := checkRange(symbol, start, end); err != nil {
		return nil, err
	}
	switch freq {
	case Daily, Weekly, Monthly:
	default:
		return nil, fmt.Errorf("unsupported bar frequency %q", freq)
	}

	params := map[string]string{"ts_code": symbol}
	if !start.IsZero() {
		params["start_date"] = start.Format(DateLayout)
	}
	if !end.IsZero() {
		params["end_date"] = end.Format(DateLayout)
	}

	table, err := p.call(ctx, string(freq), params, barFields)
	if err != nil {
		return nil, err
	}
	bars, err := NormalizeBars(table)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrProvider, freq, symbol, err)
	}
	return bars, nil
}

// retryDelay is the wait before the given retry (1-based): base, 2*base,
// 4*base ... capped at MaxRetryDelay.
func retryDelay(base time.Duration, retry int) time.Duration {
	if base <= 0 || retry < 1 {
		return 0
	}
	delay := base
	for i := 1; i < retry; i++ {
		if delay >= MaxRetryDelay/2 {
			return MaxRetryDelay
		}
		delay *= 2
	}
	if delay > MaxRetryDelay {
		return MaxRetryDelay
	}
	return delay
}

// call posts one API request, retrying failures with exponential backoff
func (p *TushareProvider) call(ctx context.Context, api string, params map[string]string, fields string) (*Table, error) {
	log := logger.WithContext(ctx)

	var lastErr error
	for attempt := 0; attempt < p.config.RetryTimes; attempt++ {
		if attempt > 0 {
			delay := retryDelay(p.config.RetryBackoff, attempt)
			logger.ProviderRetriesTotal.WithLabelValues(p.Name(), api).Inc()
			log.Warn("Retrying provider call",
				logger.String("api", api),
				logger.Int("attempt", attempt+1),
				logger.Duration("delay", delay),
				logger.ErrorField(lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %s: %w", ErrProvider, api, ctx.Err())
			case <-time.After(delay):
			}
		}

		start := time.Now()
		table, err := p.do(ctx, api, params, fields)
		status := "ok"
		if err != nil {
			status = "error"
		}
		logger.ProviderRequestDuration.WithLabelValues(p.Name(), api, status).Observe(time.Since(start).Seconds())

		if err == nil {
			if table.Len() == 0 {
				log.Warn("Provider returned no data", logger.String("api", api), logger.Any("params", params))
			} else {
				log.Debug("Provider call succeeded", logger.String("api", api), logger.Int("rows", table.Len()))
			}
			return table, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s: %w", ErrProvider, api, err)
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w: %s failed after %d attempts: %w", ErrProvider, api, p.config.RetryTimes, lastErr)
}

func (p *TushareProvider) do(ctx context.Context, api string, params map[string]string, fields string) (*Table, error) {
	body, err := json.Marshal(tushareRequest{
		APIName: api,
		Token:   p.config.Token,
		Params:  params,
		Fields:  fields,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected HTTP status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var out tushareResponse
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if out.Code != 0 {
		return nil, &APIError{API: api, Code: out.Code, Msg: out.Msg}
	}
	if out.Data == nil {
		return &Table{}, nil
	}
	return out.Data, nil
}
