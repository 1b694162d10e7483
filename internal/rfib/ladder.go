// Package rfib implements the Reverse-Fibonacci budget ladder: a per-day
// loss ceiling that tightens after consecutive losing days and relaxes back
// to the base ceiling after a winning day.
package rfib

import (
	"fmt"
	"math"
	"time"
)

// warnUtilization is the post-order utilization at which an allowed order
// still carries a warning flag.
const warnUtilization = 0.90

// DayKey normalizes a timestamp to the trading-day marker the ladder keys on.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Ladder owns the budget state for one trading account. It is single-writer:
// admission reads and explicit RecordExecution/StartNewTradingDay calls must
// come from the same goroutine.
type Ladder struct {
	state State
}

// NewLadder builds a ladder with the given descending ceilings, starting on
// the given day with a clean slate.
func NewLadder(ceilings []float64, day time.Time) (*Ladder, error) {
	if len(ceilings) == 0 {
		return nil, fmt.Errorf("rfib: ladder requires at least one ceiling")
	}
	for i, v := range ceilings {
		if v <= 0 {
			return nil, fmt.Errorf("rfib: ceiling[%d] = %.2f must be positive", i, v)
		}
		if i > 0 && v > ceilings[i-1] {
			return nil, fmt.Errorf("rfib: ceiling[%d] = %.2f exceeds ceiling[%d]; ladder must be non-increasing", i, v, i-1)
		}
	}

	ladder := make([]float64, len(ceilings))
	copy(ladder, ceilings)

	return &Ladder{state: State{
		Ladder:     ladder,
		CurrentDay: DayKey(day),
	}}, nil
}

// Restore rebuilds a ladder from a persisted state snapshot.
func Restore(st State) (*Ladder, error) {
	l, err := NewLadder(st.Ladder, time.Now())
	if err != nil {
		return nil, err
	}
	l.state = st
	return l, nil
}

// State returns a copy of the current ladder state for snapshotting.
func (l *Ladder) State() State {
	st := l.state
	st.Ladder = append([]float64(nil), l.state.Ladder...)
	st.History = append([]DayRecord(nil), l.state.History...)
	return st
}

// CurrentDailyLimit returns the ceiling for the current loss-day streak.
// Streaks past the end of the ladder clamp to the last (tightest) rung.
func (l *Ladder) CurrentDailyLimit() float64 {
	return ceilingFor(l.state.Ladder, l.state.LossDays)
}

func ceilingFor(ladder []float64, lossDays int) float64 {
	idx := lossDays
	if idx >= len(ladder) {
		idx = len(ladder) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return ladder[idx]
}

// RemainingCapacity returns how much risk the current day can still absorb.
func (l *Ladder) RemainingCapacity() float64 {
	return math.Max(0, l.CurrentDailyLimit()-l.state.DayRiskUsed)
}

// ValidateOrder checks whether committing the candidate's max potential loss
// would keep the day inside its ceiling. It always returns a decision value.
func (l *Ladder) ValidateOrder(maxPotentialLoss float64) OrderValidation {
	limit := l.CurrentDailyLimit()
	used := l.state.DayRiskUsed
	after := used + maxPotentialLoss
	utilization := after / limit

	v := OrderValidation{
		DailyLimit:            limit,
		CurrentUsage:          used,
		RemainingCapacity:     math.Max(0, limit-used),
		UtilizationAfterOrder: utilization,
	}

	if after > limit {
		v.Allowed = false
		v.Reason = fmt.Sprintf("order risk $%.2f would push daily usage to $%.2f over ceiling $%.2f", maxPotentialLoss, after, limit)
		return v
	}

	v.Allowed = true
	v.Reason = fmt.Sprintf("order risk $%.2f fits; usage $%.2f of $%.2f", maxPotentialLoss, after, limit)
	if utilization >= warnUtilization {
		v.Warning = true
	}
	return v
}

// RecordExecution applies an executed event to the day's books. Entries
// commit their max potential loss as risk usage; exits and day-end marks
// only move realized P&L. Usage injected above the ceiling is kept as-is so
// Status can surface the breach rather than hide it.
func (l *Ladder) RecordExecution(res ExecutionResult) {
	if res.Kind == ExecutionEntry && res.MaxPotentialLoss > 0 {
		l.state.DayRiskUsed += res.MaxPotentialLoss
	}
	l.state.DayPnL += res.RealizedPnL
}

// StartNewTradingDay rolls the books to the given date. Calling it again
// with the same date is a no-op. The outgoing day is appended to history
// only if it saw activity, and the loss-day streak moves by the sign of the
// day's P&L: up on a loss, reset on a win, frozen on exactly zero.
func (l *Ladder) StartNewTradingDay(day time.Time) {
	key := DayKey(day)
	if key == l.state.CurrentDay {
		return
	}

	hadActivity := l.state.DayPnL != 0 || l.state.DayRiskUsed != 0
	if hadActivity {
		l.state.History = append(l.state.History, DayRecord{
			Date:     l.state.CurrentDay,
			PnL:      l.state.DayPnL,
			RiskUsed: l.state.DayRiskUsed,
			Ceiling:  l.CurrentDailyLimit(),
			LossDays: l.state.LossDays,
		})

		switch {
		case l.state.DayPnL < 0:
			l.state.LossDays++
		case l.state.DayPnL > 0:
			l.state.LossDays = 0
		default:
			// Zero-P&L day freezes the streak. Documented policy pending
			// product clarification; do not "fix" without a ruling.
		}
	}

	l.state.DayRiskUsed = 0
	l.state.DayPnL = 0
	l.state.CurrentDay = key
}

// MaxContractsFor returns how many contracts of the given per-contract loss
// fit in the remaining capacity. Non-positive input sizes to zero.
func (l *Ladder) MaxContractsFor(perContractLoss float64) int {
	if perContractLoss <= 0 {
		return 0
	}
	return int(math.Floor(l.RemainingCapacity() / perContractLoss))
}

// History returns the closed-day records, oldest first.
func (l *Ladder) History() []DayRecord {
	return append([]DayRecord(nil), l.state.History...)
}

// Status reports the ladder's current view for logging and ops endpoints.
func (l *Ladder) Status() Status {
	limit := l.CurrentDailyLimit()
	return Status{
		DailyLimit:  limit,
		Used:        l.state.DayRiskUsed,
		Remaining:   l.RemainingCapacity(),
		Utilization: l.state.DayRiskUsed / limit,
		DayPnL:      l.state.DayPnL,
		LossDays:    l.state.LossDays,
		CurrentDay:  l.state.CurrentDay,
		OverCeiling: l.state.DayRiskUsed > limit,
	}
}
