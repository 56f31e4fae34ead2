package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/mohamedkhairy/stock-analytics/internal/analysis"
	"github.com/mohamedkhairy/stock-analytics/internal/data"
	"github.com/mohamedkhairy/stock-analytics/internal/models"
	"github.com/mohamedkhairy/stock-analytics/internal/screener"
	"github.com/mohamedkhairy/stock-analytics/internal/signal"
	"github.com/mohamedkhairy/stock-analytics/pkg/indicator"
	"github.com/mohamedkhairy/stock-analytics/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// maxCorrelationSymbols bounds the fan-out of one correlation request
const maxCorrelationSymbols = 20

// AnalysisHandler serves the indicator, signal, score and analysis endpoints
type AnalysisHandler struct {
	engine       *indicator.Engine
	signals      signal.Config
	provider     data.Provider
	lookbackDays int
	now          func() time.Time
}

// NewAnalysisHandler creates a handler. provider may be nil, in which case
// the symbol endpoints answer 503.
func NewAnalysisHandler(engine *indicator.Engine, signals signal.Config, provider data.Provider, lookbackDays int) *AnalysisHandler {
	return &AnalysisHandler{
		engine:       engine,
		signals:      signals,
		provider:     provider,
		lookbackDays: lookbackDays,
		now:          time.Now,
	}
}

// IndicatorsRequest is the body of POST /api/v1/indicators
type IndicatorsRequest struct {
	Bars    []models.PriceBar    `json:"bars"`
	Windows *indicator.WindowSet `json:"windows,omitempty"`
}

// IndicatorsResponse lists the computed columns and one row per bar
type IndicatorsResponse struct {
	Columns []string     `json:"columns"`
	Rows    []models.Row `json:"rows"`
}

// SignalsRequest is the body of POST /api/v1/signals
type SignalsRequest struct {
	Bars    []models.PriceBar    `json:"bars"`
	Windows *indicator.WindowSet `json:"windows,omitempty"`
	Config  *signal.Config       `json:"config,omitempty"`
}

// SignalsResponse carries the per-bar flags with their totals
type SignalsResponse struct {
	Signals models.SignalSet `json:"signals"`
	Counts  map[string]int   `json:"counts"`
	// Latest lists the signals raised on the final bar
	Latest []string `json:"latest"`
}

// ScoreRequest is the body of POST /api/v1/score
type ScoreRequest struct {
	Candidates []models.Candidate `json:"candidates"`
	TopN       int                `json:"top_n,omitempty"`
}

// AnalysisResponse is the body of GET /api/v1/symbols/{symbol}/analysis
type AnalysisResponse struct {
	Symbol      string                      `json:"symbol"`
	Attributes  *models.StaticAttributes    `json:"attributes,omitempty"`
	Start       string                      `json:"start"`
	End         string                      `json:"end"`
	Bars        int                         `json:"bars"`
	Trend       analysis.TrendReport        `json:"trend"`
	Performance analysis.PerformanceMetrics `json:"performance"`
	Signals     SignalsSummary              `json:"signals"`
}

// SignalsSummary condenses a signal set for reports
type SignalsSummary struct {
	Counts map[string]int `json:"counts"`
	Latest []string       `json:"latest"`
}

// Indicators handles POST /api/v1/indicators
func (h *AnalysisHandler) Indicators(w http.ResponseWriter, r *http.Request) {
	var req IndicatorsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	frame, err := h.calculate(req.Bars, req.Windows)
	if err != nil {
		h.respondWithComputeError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, IndicatorsResponse{
		Columns: frame.Columns,
		Rows:    frame.Rows(),
	})
}

// Signals handles POST /api/v1/signals
func (h *AnalysisHandler) Signals(w http.ResponseWriter, r *http.Request) {
	// A partial config in the body overrides only the levels it names
	cfg := h.signals
	req := SignalsRequest{Config: &cfg}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Config == nil {
		cfg = h.signals
	}
	if err := cfg.Validate(); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	frame, err := h.calculate(req.Bars, req.Windows)
	if err != nil {
		h.respondWithComputeError(w, r, err)
		return
	}
	set, err := signal.Generate(frame, cfg)
	if err != nil {
		h.respondWithComputeError(w, r, err)
		return
	}

	counts := set.Counts()
	for name, n := range counts {
		logger.SignalsTotal.WithLabelValues(name).Add(float64(n))
	}

	respondWithJSON(w, http.StatusOK, SignalsResponse{
		Signals: set,
		Counts:  counts,
		Latest:  nonNil(set.Active(frame.Len() - 1)),
	})
}

// Score handles POST /api/v1/score
func (h *AnalysisHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ranking := screener.ScoreCandidates(req.Candidates)
	if req.TopN > 0 {
		ranking.Ranked = ranking.Top(req.TopN)
	}

	respondWithJSON(w, http.StatusOK, ranking)
}

// Analysis handles GET /api/v1/symbols/{symbol}/analysis
func (h *AnalysisHandler) Analysis(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		respondWithError(w, http.StatusServiceUnavailable, "No market data provider configured")
		return
	}

	symbol := mux.Vars(r)["symbol"]
	start, end, err := h.dateRange(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	bars, err := h.provider.GetPriceBars(ctx, symbol, start, end)
	if err != nil {
		h.respondWithProviderError(w, r, err)
		return
	}
	if len(bars) == 0 {
		respondWithError(w, http.StatusNotFound, fmt.Sprintf("No bars for %s between %s and %s", symbol, start.Format(data.DateLayout), end.Format(data.DateLayout)))
		return
	}

	frame, err := h.engine.CalculateAll(bars)
	if err != nil {
		h.respondWithComputeError(w, r, err)
		return
	}
	trend, err := analysis.Trend(frame)
	if err != nil {
		h.respondWithComputeError(w, r, err)
		return
	}
	perf, err := analysis.Performance(frame.Bars)
	if err != nil {
		h.respondWithComputeError(w, r, err)
		return
	}
	set, err := signal.Generate(frame, h.signals)
	if err != nil {
		h.respondWithComputeError(w, r, err)
		return
	}

	resp := AnalysisResponse{
		Symbol:      symbol,
		Start:       start.Format(data.DateLayout),
		End:         end.Format(data.DateLayout),
		Bars:        frame.Len(),
		Trend:       trend,
		Performance: perf,
		Signals: SignalsSummary{
			Counts: set.Counts(),
			Latest: nonNil(set.Active(frame.Len() - 1)),
		},
	}

	// Attributes are decoration; the analysis stands without them
	if attrs, err := h.provider.GetStaticAttributes(ctx, symbol); err == nil {
		resp.Attributes = &attrs
	} else {
		logger.WithContext(ctx).Warn("Static attributes unavailable",
			logger.Symbol(symbol),
			logger.ErrorField(err),
		)
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// Correlation handles GET /api/v1/correlation?symbols=A,B,...
func (h *AnalysisHandler) Correlation(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		respondWithError(w, http.StatusServiceUnavailable, "No market data provider configured")
		return
	}

	var symbols []string
	for _, s := range strings.Split(r.URL.Query().Get("symbols"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) < 2 {
		respondWithError(w, http.StatusBadRequest, "At least two symbols are required")
		return
	}
	if len(symbols) > maxCorrelationSymbols {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("At most %d symbols are allowed", maxCorrelationSymbols))
		return
	}

	start, end, err := h.dateRange(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	series := make([][]models.PriceBar, len(symbols))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(4)
	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			bars, err := h.provider.GetPriceBars(ctx, symbol, start, end)
			if err != nil {
				return fmt.Errorf("%s: %w", symbol, err)
			}
			series[i] = bars
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		h.respondWithProviderError(w, r, err)
		return
	}

	bySymbol := make(map[string][]models.PriceBar, len(symbols))
	for i, symbol := range symbols {
		bySymbol[symbol] = series[i]
	}
	respondWithJSON(w, http.StatusOK, analysis.Correlation(bySymbol))
}

// Health handles GET /health
func (h *AnalysisHandler) Health(w http.ResponseWriter, r *http.Request) {
	provider := ""
	if h.provider != nil {
		provider = h.provider.Name()
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "healthy",
		"provider": provider,
		"columns":  h.engine.Columns(),
	})
}

func (h *AnalysisHandler) calculate(bars []models.PriceBar, windows *indicator.WindowSet) (*models.Frame, error) {
	engine := h.engine
	if windows != nil {
		var err error
		if engine, err = indicator.NewEngine(*windows); err != nil {
			return nil, err
		}
	}
	return engine.CalculateAll(bars)
}

// dateRange reads start and end (YYYYMMDD). end defaults to today and
// start to the configured lookback before end.
func (h *AnalysisHandler) dateRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	now := h.now()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if v := q.Get("end"); v != "" {
		t, err := time.Parse(data.DateLayout, v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q, want YYYYMMDD", v)
		}
		end = t
	}
	start := end.AddDate(0, 0, -h.lookbackDays)
	if v := q.Get("start"); v != "" {
		t, err := time.Parse(data.DateLayout, v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q, want YYYYMMDD", v)
		}
		start = t
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start %s is after end %s", start.Format(data.DateLayout), end.Format(data.DateLayout))
	}
	return start, end, nil
}

func (h *AnalysisHandler) respondWithComputeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, indicator.ErrInvalidInput) || errors.Is(err, indicator.ErrInvalidWindow) {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	logger.WithContext(r.Context()).Error("Computation failed", logger.ErrorField(err))
	logger.ErrorsTotal.WithLabelValues("api", "compute").Inc()
	respondWithError(w, http.StatusInternalServerError, "Computation failed")
}

func (h *AnalysisHandler) respondWithProviderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, data.ErrInvalidSymbol), errors.Is(err, data.ErrInvalidDateRange):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, data.ErrSymbolNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	default:
		logger.WithContext(r.Context()).Error("Market data request failed", logger.ErrorField(err))
		logger.ErrorsTotal.WithLabelValues("api", "provider").Inc()
		respondWithError(w, http.StatusBadGateway, "Market data provider error")
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
