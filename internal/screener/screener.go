package screener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mohamedkhairy/stock-analytics/internal/data"
	"github.com/mohamedkhairy/stock-analytics/internal/models"
	"github.com/mohamedkhairy/stock-analytics/pkg/indicator"
	"github.com/mohamedkhairy/stock-analytics/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Config holds configuration for a screening run
type Config struct {
	Basic     BasicCriteria     `yaml:"basic" json:"basic"`
	Technical TechnicalCriteria `yaml:"technical" json:"technical"`

	MaxCandidates int `yaml:"max_candidates" json:"max_candidates"` // symbols kept after the basic filter
	LookbackDays  int `yaml:"lookback_days" json:"lookback_days"`   // calendar days of bars fetched per symbol
	Workers       int `yaml:"workers" json:"workers"`               // concurrent symbol evaluations
	TopN          int `yaml:"top_n" json:"top_n"`
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Basic:         DefaultBasicCriteria(),
		Technical:     DefaultTechnicalCriteria(),
		MaxCandidates: 100,
		LookbackDays:  90,
		Workers:       4,
		TopN:          20,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if err := c.Technical.Validate(); err != nil {
		return err
	}
	if c.LookbackDays <= 0 {
		return fmt.Errorf("lookback days must be positive, got %d", c.LookbackDays)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	return nil
}

// Status is the stage a symbol reached in a run
type Status string

const (
	StatusCandidate Status = "candidate"
	StatusSkipped   Status = "skipped"
	StatusFiltered  Status = "filtered"
	StatusNoData    Status = "no_data"
	StatusFailed    Status = "failed"
)

// Outcome records what happened to one symbol that passed the basic filter
type Outcome struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Status Status `json:"status"`
	Bars   int    `json:"bars"`
	Reason string `json:"reason,omitempty"`
}

// Report is the result of one screening run
type Report struct {
	RunID       string                   `json:"run_id"`
	AsOf        time.Time                `json:"as_of"`
	StartedAt   time.Time                `json:"started_at"`
	FinishedAt  time.Time                `json:"finished_at"`
	Universe    int                      `json:"universe"`
	BasicPassed int                      `json:"basic_passed"`
	Outcomes    []Outcome                `json:"outcomes"`
	Ranking     Ranking                  `json:"ranking"`
	Top         []models.ScoredCandidate `json:"top"`
}

// Count returns the number of outcomes with status s
func (r *Report) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Screener runs the basic filter, technical filter and scoring pipeline over
// a provider's universe
type Screener struct {
	config   Config
	provider data.Provider
	engine   *indicator.Engine
	now      func() time.Time
}

// NewScreener creates a new screener
func NewScreener(config Config, provider data.Provider, engine *indicator.Engine) (*Screener, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid screener config: %w", err)
	}
	return &Screener{
		config:   config,
		provider: provider,
		engine:   engine,
		now:      time.Now,
	}, nil
}

// SetClock overrides the run date (for testing)
func (s *Screener) SetClock(now func() time.Time) {
	s.now = now
}

// Run executes one screening pass. Per-symbol failures are recorded in the
// report's outcomes; only a failure to list the universe or a cancelled
// context fails the run.
func (s *Screener) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:     logger.NewID(),
		StartedAt: time.Now(),
	}
	report.AsOf = s.now()
	ctx = logger.WithRunID(ctx, report.RunID)
	log := logger.WithContext(ctx)

	defer func() {
		logger.ScreeningRunDuration.Observe(time.Since(report.StartedAt).Seconds())
	}()

	universe, err := s.provider.ListSymbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list symbols: %w", err)
	}
	report.Universe = len(universe)

	basic := FilterBasic(universe, s.config.Basic, report.AsOf)
	report.BasicPassed = len(basic)
	if s.config.MaxCandidates > 0 && len(basic) > s.config.MaxCandidates {
		basic = basic[:s.config.MaxCandidates]
	}
	log.Info("Basic screening complete",
		logger.Int("universe", report.Universe),
		logger.Int("passed", report.BasicPassed),
		logger.Int("evaluating", len(basic)),
	)

	start := report.AsOf.AddDate(0, 0, -s.config.LookbackDays)
	outcomes := make([]Outcome, len(basic))
	candidates := make([]*models.Candidate, len(basic))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i := range basic {
		i := i
		g.Go(func() error {
			outcomes[i], candidates[i] = s.evaluate(gctx, basic[i], start, report.AsOf)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("screening run cancelled: %w", err)
	}

	cands := make([]models.Candidate, 0, len(candidates))
	origin := make([]int, 0, len(candidates))
	for i, c := range candidates {
		if c != nil {
			cands = append(cands, *c)
			origin = append(origin, i)
		} else {
			logger.CandidatesTotal.WithLabelValues(string(outcomes[i].Status)).Inc()
		}
	}

	report.Ranking = ScoreCandidates(cands)
	for _, res := range report.Ranking.Skipped {
		o := &outcomes[origin[res.Index]]
		o.Status = StatusSkipped
		if res.Err != nil {
			o.Reason = res.Err.Error()
		}
	}
	report.Outcomes = outcomes
	report.Top = report.Ranking.Top(s.config.TopN)
	report.FinishedAt = time.Now()

	log.Info("Screening run complete",
		logger.Int("candidates", len(cands)),
		logger.Int("ranked", len(report.Ranking.Ranked)),
		logger.Int("skipped", report.Count(StatusSkipped)),
		logger.Int("filtered", report.Count(StatusFiltered)),
		logger.Int("failed", report.Count(StatusFailed)),
		logger.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)

	return report, nil
}

// evaluate fetches one symbol's bars and applies the technical filter
func (s *Screener) evaluate(ctx context.Context, attrs models.StaticAttributes, start, end time.Time) (Outcome, *models.Candidate) {
	outcome := Outcome{Symbol: attrs.Symbol, Name: attrs.Name}
	log := logger.WithContext(ctx).With(logger.Symbol(attrs.Symbol))

	bars, err := s.provider.GetPriceBars(ctx, attrs.Symbol, start, end)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Reason = err.Error()
		if !errors.Is(err, context.Canceled) {
			log.Warn("Failed to fetch bars", logger.ErrorField(err))
		}
		return outcome, nil
	}
	outcome.Bars = len(bars)
	if len(bars) == 0 {
		outcome.Status = StatusNoData
		outcome.Reason = "no bars in range"
		return outcome, nil
	}

	frame, err := s.engine.CalculateAll(bars)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Reason = err.Error()
		log.Warn("Failed to calculate indicators", logger.ErrorField(err))
		return outcome, nil
	}

	if err := CheckTechnical(frame, s.config.Technical); err != nil {
		outcome.Status = StatusFiltered
		outcome.Reason = err.Error()
		log.Debug("Symbol filtered", logger.ErrorField(err))
		return outcome, nil
	}

	outcome.Status = StatusCandidate
	candidate := NewCandidate(attrs, frame, end)
	return outcome, &candidate
}
