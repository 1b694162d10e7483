// Package escalation implements the three-level risk escalation state
// machine. Larger quality-lane allocations are only permitted after the
// session has banked enough P&L cushion, and any sign of trouble steps the
// machine back down.
package escalation

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/odtelabs/riskgate/internal/clock"
	"github.com/odtelabs/riskgate/internal/session"
)

// Level is the escalation level, always in {0, 1, 2}.
type Level int

const (
	Level0 Level = iota // baseline
	Level1              // cushion cleared
	Level2              // high cushion plus recent lane profitability
)

func (l Level) String() string {
	switch l {
	case Level0:
		return "L0"
	case Level1:
		return "L1"
	case Level2:
		return "L2"
	default:
		return "unknown"
	}
}

// Config carries the thresholds the controller evaluates against.
type Config struct {
	Enabled                bool
	L1Fraction             float64       // of daily cap, promotion to L1
	L2Fraction             float64       // of daily cap, promotion to L2
	Cooldown               time.Duration // forced L0 window after hard resets
	MaxRhoWeightedExposure float64
	MaxConsecutivePunch    int // punch losses that force a hard reset
}

// State is the mutable controller state. TriggerPnL remembers the dollar
// threshold that earned the current level so cushion decay can be measured
// against it.
type State struct {
	Level         Level     `json:"level"`
	CooldownUntil time.Time `json:"cooldown_until"`
	TriggerPnL    float64   `json:"trigger_pnl"`
}

// Controller recomputes the level once per admission cycle from a session
// snapshot and the injected clock. It is single-writer per account.
type Controller struct {
	cfg    Config
	clock  clock.Clock
	logger zerolog.Logger
	state  State
}

func NewController(cfg Config, clk clock.Clock, logger zerolog.Logger) *Controller {
	if cfg.MaxConsecutivePunch <= 0 {
		cfg.MaxConsecutivePunch = 2
	}
	return &Controller{
		cfg:    cfg,
		clock:  clk,
		logger: logger.With().Str("component", "escalation").Logger(),
	}
}

// Level returns the level as of the last Evaluate call, with the cooldown
// override applied.
func (c *Controller) Level() Level {
	if c.clock.Now().Before(c.state.CooldownUntil) {
		return Level0
	}
	return c.state.Level
}

// State returns a copy of the controller state.
func (c *Controller) State() State { return c.state }

// Reset forces the controller back to baseline with no cooldown. Used when
// the configured de-escalation phase boundary replaces the whole config.
func (c *Controller) Reset() {
	c.state = State{}
}

// Evaluate runs one cycle of the state machine: de-escalation triggers in
// order, then the cooldown override, then promotions. The stats snapshot
// must be taken once per cycle; do not rebuild it between stages.
func (c *Controller) Evaluate(stats session.Stats, rhoExposure float64, probeGreenlight bool) Level {
	now := c.clock.Now()

	// Trigger 1: cushion decayed below half of what earned this level.
	// Steps down exactly one level, no cooldown.
	if c.state.Level > Level0 && stats.RealizedDayPnL < 0.5*c.state.TriggerPnL {
		from := c.state.Level
		c.state.Level--
		if c.state.Level == Level1 {
			c.state.TriggerPnL = c.cfg.L1Fraction * stats.DailyCap
		} else {
			c.state.TriggerPnL = 0
		}
		c.logger.Info().
			Str("from", from.String()).
			Str("to", c.state.Level.String()).
			Float64("realized_pnl", stats.RealizedDayPnL).
			Msg("escalation step-down: cushion decay")
	}

	// Trigger 2: consecutive quality-lane losses. Hard reset with cooldown.
	if stats.ConsecutivePunchLosses >= c.cfg.MaxConsecutivePunch {
		c.hardReset(now, "consecutive punch losses")
	}

	// Trigger 3: correlation exposure over budget. Hard reset with cooldown.
	if c.cfg.MaxRhoWeightedExposure > 0 && rhoExposure > c.cfg.MaxRhoWeightedExposure {
		c.hardReset(now, "rho-weighted exposure over budget")
	}

	if now.Before(c.state.CooldownUntil) {
		return Level0
	}

	if !c.cfg.Enabled || !probeGreenlight {
		return c.state.Level
	}

	// Promotions, top-down, first match wins. Levels only ratchet up here;
	// coming down is the triggers' job.
	target, threshold := c.promotionTarget(stats)
	if target > c.state.Level {
		c.logger.Info().
			Str("from", c.state.Level.String()).
			Str("to", target.String()).
			Float64("realized_pnl", stats.RealizedDayPnL).
			Float64("threshold", threshold).
			Msg("escalation promoted")
		c.state.Level = target
		c.state.TriggerPnL = threshold
	}

	return c.state.Level
}

func (c *Controller) promotionTarget(stats session.Stats) (Level, float64) {
	l2 := c.cfg.L2Fraction * stats.DailyCap
	if stats.RealizedDayPnL >= l2 && stats.LastPunchTotal() >= 0 {
		return Level2, l2
	}
	l1 := c.cfg.L1Fraction * stats.DailyCap
	if stats.RealizedDayPnL >= l1 {
		return Level1, l1
	}
	return Level0, 0
}

func (c *Controller) hardReset(now time.Time, reason string) {
	c.state.Level = Level0
	c.state.TriggerPnL = 0
	c.state.CooldownUntil = now.Add(c.cfg.Cooldown)
	c.logger.Warn().
		Str("reason", reason).
		Time("cooldown_until", c.state.CooldownUntil).
		Msg("escalation hard reset")
}
