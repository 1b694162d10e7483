// Package admission decides, for every candidate order, whether it may
// execute, at what size, and under which capital-allocation lane. The gate
// is a short-circuiting pipeline: each stage either continues or ends the
// cycle with a terminal reject and a reason code.
package admission

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/odtelabs/riskgate/internal/clock"
	"github.com/odtelabs/riskgate/internal/config"
	"github.com/odtelabs/riskgate/internal/escalation"
	"github.com/odtelabs/riskgate/internal/rfib"
	"github.com/odtelabs/riskgate/internal/session"
	"github.com/odtelabs/riskgate/internal/sizing"
	"github.com/odtelabs/riskgate/internal/trade"
)

// Deps bundles everything the gate needs. Every field is required except
// Metrics, which may be nil.
type Deps struct {
	Config      *config.ScalingConfig
	Ladder      *rfib.Ladder
	Controller  *escalation.Controller
	Sizer       *sizing.Calculator
	Weekly      WeeklyLimitChecker
	Blackout    BlackoutChecker
	Probe       ProbeDetector
	Correlation CorrelationCalculator
	Quality     QualityFilter
	Clock       clock.Clock
	Logger      zerolog.Logger
	Metrics     *Metrics
}

// Gate orchestrates one admission cycle at a time. Single-writer per
// account: one candidate is fully evaluated before the next is considered.
type Gate struct {
	deps   Deps
	logger zerolog.Logger
}

// NewGate validates the dependency set. A missing collaborator or a
// malformed configuration is fatal here, distinct from per-trade rejects.
func NewGate(deps Deps) (*Gate, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("admission: config is required")
	}
	if err := deps.Config.Validate(); err != nil {
		return nil, fmt.Errorf("admission: %w", err)
	}

	missing := ""
	switch {
	case deps.Ladder == nil:
		missing = "budget ladder"
	case deps.Controller == nil:
		missing = "escalation controller"
	case deps.Sizer == nil:
		missing = "position size calculator"
	case deps.Weekly == nil:
		missing = "weekly limit checker"
	case deps.Blackout == nil:
		missing = "blackout checker"
	case deps.Probe == nil:
		missing = "probe detector"
	case deps.Correlation == nil:
		missing = "correlation calculator"
	case deps.Quality == nil:
		missing = "quality filter"
	case deps.Clock == nil:
		missing = "clock"
	}
	if missing != "" {
		return nil, fmt.Errorf("admission: missing collaborator: %s", missing)
	}

	return &Gate{
		deps:   deps,
		logger: deps.Logger.With().Str("component", "admission").Logger(),
	}, nil
}

// Evaluate runs the full pipeline for one candidate and returns a Decision.
// The stats snapshot must be built once for this cycle and not refreshed
// between stages. The gate never mutates ladder state; recording executions
// is the caller's explicit follow-up.
func (g *Gate) Evaluate(ctx context.Context, cand trade.CandidateOrder, stats session.Stats, open []trade.Position) Decision {
	_ = ctx // collaborators are synchronous pure computations today

	now := g.deps.Clock.Now()
	d := Decision{
		ID:        uuid.NewString(),
		Timestamp: now,
		Lane:      trade.LaneProbe,
	}

	validation := g.deps.Ladder.ValidateOrder(cand.MaxPotentialLoss)
	d.Log = DecisionLog{
		DailyLimit: validation.DailyLimit,
		Used:       validation.CurrentUsage,
		Remaining:  validation.RemainingCapacity,
		CapWarning: validation.Warning,
	}

	// Stage 1: absolute constraints.
	if !validation.Allowed {
		return g.reject(d, ReasonRFIBCapHit)
	}
	if g.deps.Weekly.Violated(cand.MaxPotentialLoss) {
		return g.reject(d, ReasonWeeklyRFIBHit)
	}
	if in, name := g.deps.Blackout.InBlackout(now); in || stats.InBlackout {
		d.Log.Blackout = name
		return g.reject(d, ReasonEventBlackout)
	}

	// Stage 2: lane selection. Probe unless escalation is on, the spread is
	// wide enough to matter, and the probe lane has earned the greenlight.
	greenlight := g.deps.Probe.Greenlight(stats)
	lane := trade.LaneProbe
	if g.deps.Config.EscalationEnabled &&
		cand.WidthPoints > g.deps.Config.MinQualityWidthPoints &&
		greenlight {
		lane = trade.LaneQuality
	}
	d.Lane = lane
	d.Log.Lane = lane.String()

	// Stage 3: escalation level, evaluated exactly once per cycle.
	bookExposure := g.deps.Correlation.CurrentExposure(open)
	level := g.deps.Controller.Evaluate(stats, bookExposure, greenlight)
	d.Level = level
	d.Log.Level = level.String()

	// Stage 4: position sizing.
	sized := g.deps.Sizer.Contracts(sizing.Inputs{
		Lane:            lane,
		Level:           level,
		RemainingBudget: g.deps.Ladder.RemainingCapacity(),
		PerContractLoss: cand.MaxPotentialLoss,
		RealizedDayPnL:  stats.RealizedDayPnL,
	})
	d.Contracts = sized.Contracts
	d.Log.Contracts = sized.Contracts
	d.Log.Fraction = sized.Fraction
	d.Log.PerTradeCap = sized.PerTradeCap

	// Stage 5: a zero size means the budget cannot carry this trade.
	if sized.Contracts <= 0 {
		return g.reject(d, ReasonInsufficientSize)
	}

	// Stage 6: correlation budget with the candidate included.
	if g.deps.Config.CorrelationBudgetEnabled {
		exposure := g.deps.Correlation.Exposure(open, cand, sized.Contracts)
		d.Log.RhoExposure = exposure
		if exposure > g.deps.Config.MaxRhoWeightedExposure {
			return g.reject(d, ReasonRhoBudgetExceeded)
		}
	}

	// Stage 7: quality filter, quality lane only.
	if lane == trade.LaneQuality && !g.deps.Quality.Accept(cand, stats) {
		return g.reject(d, ReasonQualityFail)
	}

	d.Action = ActionExecute
	d.Reason = ReasonExecute
	d.Log.Reason = ReasonExecute
	d.ExpectedCredit = cand.ExpectedCredit * float64(sized.Contracts)
	d.MaxLoss = cand.MaxPotentialLoss * float64(sized.Contracts)

	g.logger.Info().
		Str("decision_id", d.ID).
		Str("lane", lane.String()).
		Str("level", level.String()).
		Int("contracts", sized.Contracts).
		Float64("max_loss", d.MaxLoss).
		Float64("expected_credit", d.ExpectedCredit).
		Bool("cap_warning", validation.Warning).
		Msg("candidate admitted")

	g.deps.Metrics.ObserveDecision(d)
	g.deps.Metrics.ObserveBudget(g.deps.Ladder.Status())
	g.deps.Metrics.ObserveLevel(level)
	return d
}

func (g *Gate) reject(d Decision, reason ReasonCode) Decision {
	d.Action = ActionReject
	d.Reason = reason
	d.Log.Reason = reason

	g.logger.Info().
		Str("decision_id", d.ID).
		Str("reason", string(reason)).
		Float64("daily_limit", d.Log.DailyLimit).
		Float64("used", d.Log.Used).
		Float64("remaining", d.Log.Remaining).
		Str("lane", d.Log.Lane).
		Msg("candidate rejected")

	g.deps.Metrics.ObserveDecision(d)
	g.deps.Metrics.ObserveBudget(g.deps.Ladder.Status())
	return d
}
