// Package sizing converts remaining budget, lane and escalation level into
// a contract count. Results are never negative; zero means "do not trade".
package sizing

import (
	"math"

	"github.com/odtelabs/riskgate/internal/escalation"
	"github.com/odtelabs/riskgate/internal/trade"
)

// Config is the per-lane/level capital fraction table plus the hard cap.
type Config struct {
	ProbeFraction     float64
	QualityFractionL1 float64
	QualityFractionL2 float64
	HardContractCap   int
}

// Inputs is everything one sizing decision depends on.
type Inputs struct {
	Lane            trade.Lane
	Level           escalation.Level
	RemainingBudget float64
	PerContractLoss float64
	RealizedDayPnL  float64
}

// Result carries the contract count plus the figures that produced it, for
// the structured decision log.
type Result struct {
	Contracts   int     `json:"contracts"`
	Fraction    float64 `json:"fraction"`
	PerTradeCap float64 `json:"per_trade_cap"`
	OneLotFloor bool    `json:"one_lot_floor"` // probe override engaged
}

type Calculator struct {
	cfg Config
}

func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Contracts sizes one candidate. Quality-lane risk is additionally capped
// at half the day's banked profit, so escalation never risks capital that
// has not already been earned.
func (c *Calculator) Contracts(in Inputs) Result {
	if in.PerContractLoss <= 0 || in.RemainingBudget <= 0 {
		return Result{}
	}

	fraction := c.fractionFor(in.Lane, in.Level)
	perTradeCap := fraction * in.RemainingBudget

	if in.Lane == trade.LaneQuality {
		banked := 0.5 * math.Max(0, in.RealizedDayPnL)
		perTradeCap = math.Min(perTradeCap, banked)
	}

	contracts := int(math.Floor(perTradeCap / in.PerContractLoss))
	if contracts > c.cfg.HardContractCap {
		contracts = c.cfg.HardContractCap
	}

	res := Result{
		Contracts:   contracts,
		Fraction:    fraction,
		PerTradeCap: perTradeCap,
	}

	// Probe one-lot floor: the sampling lane always gets one attempt when
	// the day's budget can absorb the whole loss outright.
	if contracts < 1 && in.Lane == trade.LaneProbe && in.PerContractLoss <= in.RemainingBudget {
		res.Contracts = 1
		res.OneLotFloor = true
	}

	if res.Contracts < 0 {
		res.Contracts = 0
	}
	return res
}

func (c *Calculator) fractionFor(lane trade.Lane, level escalation.Level) float64 {
	if lane == trade.LaneProbe {
		return c.cfg.ProbeFraction
	}
	switch level {
	case escalation.Level2:
		return c.cfg.QualityFractionL2
	case escalation.Level1:
		return c.cfg.QualityFractionL1
	default:
		// Quality at L0 falls back to the probe fraction.
		return c.cfg.ProbeFraction
	}
}
