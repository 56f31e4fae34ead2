package screener

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/mohamedkhairy/stock-analytics/internal/models"
	"github.com/mohamedkhairy/stock-analytics/pkg/logger"
)

// ErrScoringSkip marks a candidate that cannot be scored. It never aborts a
// batch; the candidate is reported in Ranking.Skipped instead.
var ErrScoringSkip = errors.New("candidate skipped")

// Score component names, in breakdown order
const (
	ComponentBase    = "base"
	ComponentRSI     = "RSI"
	ComponentMA      = "MA"
	ComponentListing = "listing"
)

// Score computes the composite score of one candidate:
//
//	base     1.0 always
//	RSI      2.0 in [40,60], 1.0 in [30,70], else 0; omitted when undefined
//	MA       2.0 if close > MA5 > MA20, 1.0 if close > MA20, else 0;
//	         omitted when MA5 or MA20 is undefined
//	listing  1.0 from 10 years, 0.5 from 5 years, else 0
func Score(c models.Candidate) (models.ScoredCandidate, error) {
	if strings.TrimSpace(c.Symbol) == "" {
		return models.ScoredCandidate{}, fmt.Errorf("%w: empty symbol", ErrScoringSkip)
	}
	if c.YearsListed < 0 || math.IsNaN(c.YearsListed) {
		return models.ScoredCandidate{}, fmt.Errorf("%w: %s: invalid years listed %v", ErrScoringSkip, c.Symbol, c.YearsListed)
	}

	components := []models.ScoreComponent{{Name: ComponentBase, Score: 1.0}}

	if rsi, ok := c.RSI.Get(); ok {
		components = append(components, models.ScoreComponent{Name: ComponentRSI, Score: rsiScore(rsi)})
	}

	ma5, ok5 := c.MA5.Get()
	ma20, ok20 := c.MA20.Get()
	if ok5 && ok20 {
		closePrice, ok := c.Close.Get()
		if !ok || closePrice <= 0 {
			return models.ScoredCandidate{}, fmt.Errorf("%w: %s: moving averages present without a valid close", ErrScoringSkip, c.Symbol)
		}
		components = append(components, models.ScoreComponent{Name: ComponentMA, Score: maScore(closePrice, ma5, ma20)})
	}

	components = append(components, models.ScoreComponent{Name: ComponentListing, Score: listingScore(c.YearsListed)})

	var total float64
	parts := make([]string, len(components))
	for i, comp := range components {
		total += comp.Score
		parts[i] = comp.Name + ":" + formatScore(comp.Score)
	}

	return models.ScoredCandidate{
		Symbol:     c.Symbol,
		Name:       c.Name,
		Industry:   c.Industry,
		Close:      c.Close,
		Score:      total,
		Components: components,
		Breakdown:  strings.Join(parts, ", "),
	}, nil
}

func rsiScore(rsi float64) float64 {
	switch {
	case rsi >= 40 && rsi <= 60:
		return 2.0
	case rsi >= 30 && rsi <= 70:
		return 1.0
	default:
		return 0.0
	}
}

func maScore(closePrice, ma5, ma20 float64) float64 {
	switch {
	case closePrice > ma5 && ma5 > ma20:
		return 2.0
	case closePrice > ma20:
		return 1.0
	default:
		return 0.0
	}
}

func listingScore(years float64) float64 {
	switch {
	case years >= 10:
		return 1.0
	case years >= 5:
		return 0.5
	default:
		return 0.0
	}
}

// formatScore renders whole scores with one decimal ("2.0") and others as is ("0.5")
func formatScore(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Result is the scoring outcome of one input candidate
type Result struct {
	Index  int                     `json:"index"`
	Symbol string                  `json:"symbol"`
	Scored *models.ScoredCandidate `json:"scored,omitempty"`
	Err    error                   `json:"-"`
}

// Skipped reports whether the candidate was not scored
func (r Result) Skipped() bool {
	return r.Err != nil
}

// Reason returns the skip reason, empty for scored candidates
func (r Result) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// MarshalJSON includes the skip reason
func (r Result) MarshalJSON() ([]byte, error) {
	type alias Result
	return json.Marshal(struct {
		alias
		Reason string `json:"reason,omitempty"`
	}{alias: alias(r), Reason: r.Reason()})
}

// ScoreEach scores every candidate, returning one Result per input in order
func ScoreEach(cands []models.Candidate) []Result {
	results := make([]Result, len(cands))
	for i, c := range cands {
		results[i] = Result{Index: i, Symbol: c.Symbol}
		scored, err := Score(c)
		if err != nil {
			results[i].Err = err
			continue
		}
		results[i].Scored = &scored
	}
	return results
}

// Ranking is the ordered output of ScoreCandidates
type Ranking struct {
	// Ranked is sorted by descending score; equal scores keep input order
	Ranked []models.ScoredCandidate `json:"ranked"`
	// Skipped lists the candidates that could not be scored, in input order
	Skipped []Result `json:"skipped"`
}

// Top returns the first n ranked candidates, or all when n <= 0
func (r Ranking) Top(n int) []models.ScoredCandidate {
	if n <= 0 || n > len(r.Ranked) {
		n = len(r.Ranked)
	}
	out := make([]models.ScoredCandidate, n)
	copy(out, r.Ranked[:n])
	return out
}

// ScoreCandidates scores and ranks candidates. Unscorable candidates are
// logged and reported in Skipped; they never abort the batch.
func ScoreCandidates(cands []models.Candidate) Ranking {
	ranking := Ranking{
		Ranked:  make([]models.ScoredCandidate, 0, len(cands)),
		Skipped: make([]Result, 0),
	}

	for _, res := range ScoreEach(cands) {
		if res.Skipped() {
			logger.Warn("Skipping candidate",
				logger.Int("index", res.Index),
				logger.Symbol(res.Symbol),
				logger.ErrorField(res.Err),
			)
			logger.CandidatesTotal.WithLabelValues("skipped").Inc()
			ranking.Skipped = append(ranking.Skipped, res)
			continue
		}
		logger.CandidatesTotal.WithLabelValues("scored").Inc()
		ranking.Ranked = append(ranking.Ranked, *res.Scored)
	}

	sort.SliceStable(ranking.Ranked, func(i, j int) bool {
		return ranking.Ranked[i].Score > ranking.Ranked[j].Score
	})

	return ranking
}
