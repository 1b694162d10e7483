// Package quality implements the quality-lane filter: credit, return and
// liquidity floors a candidate must clear before it may take a larger
// allocation.
package quality

import (
	"fmt"

	"github.com/odtelabs/riskgate/internal/session"
	"github.com/odtelabs/riskgate/internal/trade"
)

// FilterConfig contains the hard thresholds for quality-lane entry.
type FilterConfig struct {
	MinCreditWidthRatio float64 `yaml:"min_credit_width_ratio"` // credit / width
	MinReturnOnCapital  float64 `yaml:"min_return_on_capital"`
	MinLiquidityScore   float64 `yaml:"min_liquidity_score"`
}

// DefaultFilterConfig returns production thresholds.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MinCreditWidthRatio: 0.18,
		MinReturnOnCapital:  0.20,
		MinLiquidityScore:   0.60,
	}
}

// Check is one threshold evaluation, kept for the decision log.
type Check struct {
	Name      string  `json:"name"`
	Passed    bool    `json:"passed"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
}

// Result is the full filter outcome for one candidate.
type Result struct {
	Passed  bool     `json:"passed"`
	Checks  []Check  `json:"checks"`
	Reasons []string `json:"reasons,omitempty"`
}

type Filter struct {
	cfg FilterConfig
}

func NewFilter(cfg FilterConfig) *Filter {
	return &Filter{cfg: cfg}
}

// Evaluate runs every check and reports which failed. All must pass.
func (f *Filter) Evaluate(cand trade.CandidateOrder, stats session.Stats) Result {
	ratio := 0.0
	if cand.WidthPoints > 0 {
		ratio = cand.ExpectedCredit / cand.WidthPoints
	}

	checks := []Check{
		{Name: "credit_width_ratio", Value: ratio, Threshold: f.cfg.MinCreditWidthRatio, Passed: ratio >= f.cfg.MinCreditWidthRatio},
		{Name: "return_on_capital", Value: cand.ReturnOnCapital, Threshold: f.cfg.MinReturnOnCapital, Passed: cand.ReturnOnCapital >= f.cfg.MinReturnOnCapital},
		{Name: "liquidity_score", Value: stats.LiquidityScore, Threshold: f.cfg.MinLiquidityScore, Passed: stats.LiquidityScore >= f.cfg.MinLiquidityScore},
	}

	result := Result{Passed: true, Checks: checks}
	for _, c := range checks {
		if !c.Passed {
			result.Passed = false
			result.Reasons = append(result.Reasons,
				fmt.Sprintf("%s %.3f below threshold %.3f", c.Name, c.Value, c.Threshold))
		}
	}
	return result
}

// Accept is the boolean collaborator surface the admission gate consumes.
func (f *Filter) Accept(cand trade.CandidateOrder, stats session.Stats) bool {
	return f.Evaluate(cand, stats).Passed
}
