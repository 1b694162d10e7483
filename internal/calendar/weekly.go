package calendar

import (
	"github.com/odtelabs/riskgate/internal/rfib"
)

// weeklySessions is the trailing closed-day window the weekly limit sums.
const weeklySessions = 5

// WeeklyLimit rejects new risk once the trailing week has bled a configured
// multiple of the base (loss-day zero) daily ceiling.
type WeeklyLimit struct {
	BaseCeiling float64
	Multiple    float64
}

// Budget returns the weekly loss budget in dollars.
func (w WeeklyLimit) Budget() float64 {
	return w.BaseCeiling * w.Multiple
}

// Violated reports whether adding candidateLoss on top of the trailing
// week's realized losses and today's running P&L would breach the budget.
// Winning days offset losing ones inside the window.
func (w WeeklyLimit) Violated(history []rfib.DayRecord, dayPnL, candidateLoss float64) bool {
	if w.Budget() <= 0 {
		return false
	}

	start := len(history) - weeklySessions
	if start < 0 {
		start = 0
	}

	net := dayPnL
	for _, rec := range history[start:] {
		net += rec.PnL
	}

	// net < 0 is the week's drawdown so far.
	drawdown := 0.0
	if net < 0 {
		drawdown = -net
	}
	return drawdown+candidateLoss > w.Budget()
}
