// Package portfolio tracks open positions and computes the rho-weighted
// exposure that bounds concurrent risk beyond simple dollar caps.
package portfolio

import (
	"github.com/odtelabs/riskgate/internal/trade"
)

// Tracker owns the open-position set for one account. The admission engine
// only reads the aggregate exposure derived from it.
type Tracker struct {
	positions []trade.Position
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Open adds a position to the book.
func (t *Tracker) Open(p trade.Position) {
	t.positions = append(t.positions, p)
}

// Close removes the first position matching the symbol and lane.
func (t *Tracker) Close(symbol string, lane trade.Lane) bool {
	for i, p := range t.positions {
		if p.Symbol == symbol && p.Lane == lane {
			t.positions = append(t.positions[:i], t.positions[i+1:]...)
			return true
		}
	}
	return false
}

// Positions returns a copy of the open set.
func (t *Tracker) Positions() []trade.Position {
	return append([]trade.Position(nil), t.positions...)
}

// Count returns the number of open positions.
func (t *Tracker) Count() int { return len(t.positions) }

// Calculator is the correlation-exposure collaborator consumed by the
// admission gate.
type Calculator struct{}

// Exposure returns the beta-weighted dollar exposure of the open book plus
// the candidate at its computed size. Positions with no beta attribute
// count at full weight rather than dropping out of the sum.
func (Calculator) Exposure(open []trade.Position, cand trade.CandidateOrder, contracts int) float64 {
	total := 0.0
	for _, p := range open {
		total += p.MaxLoss * betaOrFull(p.Beta)
	}
	total += cand.MaxPotentialLoss * float64(contracts) * betaOrFull(cand.Beta)
	return total
}

// CurrentExposure returns the beta-weighted exposure of the open book only.
func (Calculator) CurrentExposure(open []trade.Position) float64 {
	total := 0.0
	for _, p := range open {
		total += p.MaxLoss * betaOrFull(p.Beta)
	}
	return total
}

func betaOrFull(beta float64) float64 {
	if beta == 0 {
		return 1.0
	}
	return beta
}
