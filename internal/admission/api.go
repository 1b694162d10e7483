package admission

import (
	"time"

	"github.com/odtelabs/riskgate/internal/session"
	"github.com/odtelabs/riskgate/internal/trade"
)

// Collaborator interfaces consumed by the gate. All are invoked
// synchronously inside one admission cycle.

// WeeklyLimitChecker enforces the rolling weekly loss budget.
type WeeklyLimitChecker interface {
	Violated(candidateLoss float64) bool
}

// WeeklyFunc adapts a closure to WeeklyLimitChecker.
type WeeklyFunc func(candidateLoss float64) bool

func (f WeeklyFunc) Violated(candidateLoss float64) bool { return f(candidateLoss) }

// BlackoutChecker answers whether now is inside an event blackout window.
type BlackoutChecker interface {
	InBlackout(now time.Time) (bool, string)
}

// ProbeDetector greenlights the session for larger allocations once the
// probe lane has sampled well enough.
type ProbeDetector interface {
	Greenlight(stats session.Stats) bool
}

// CorrelationCalculator measures rho-weighted exposure of the open book,
// with and without the candidate at its computed size.
type CorrelationCalculator interface {
	Exposure(open []trade.Position, cand trade.CandidateOrder, contracts int) float64
	CurrentExposure(open []trade.Position) float64
}

// QualityFilter vets quality-lane candidates. Probe-lane orders skip it.
type QualityFilter interface {
	Accept(cand trade.CandidateOrder, stats session.Stats) bool
}
