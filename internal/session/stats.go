// Package session computes the per-cycle snapshot of intraday state. The
// snapshot is recomputed from the trade ledger on every admission cycle;
// it is a view, never a store of record.
package session

import (
	"time"

	"github.com/odtelabs/riskgate/internal/ledger"
	"github.com/odtelabs/riskgate/internal/trade"
)

// punchWindow is how many recent quality-lane closes feed the escalation
// profitability check.
const punchWindow = 3

// Stats is the read-mostly snapshot consumed by the escalation controller
// and the admission gate. Build one per cycle and pass it by value so every
// stage of the cycle sees the same numbers.
type Stats struct {
	DailyCap               float64   `json:"daily_cap"`
	RealizedDayPnL         float64   `json:"realized_day_pnl"`
	ProbeCount             int       `json:"probe_count"`
	ProbeWinRate           float64   `json:"probe_win_rate"`
	LiquidityScore         float64   `json:"liquidity_score"`
	LastPunchPnLs          []float64 `json:"last_punch_pnls"` // most recent last
	ConsecutivePunchLosses int       `json:"consecutive_punch_losses"`
	InBlackout             bool      `json:"in_blackout"`
}

// LastPunchTotal sums the recent quality-lane closes in the window.
func (s Stats) LastPunchTotal() float64 {
	var total float64
	for _, p := range s.LastPunchPnLs {
		total += p
	}
	return total
}

// Builder derives Stats from the ledger for the current trading day.
type Builder struct {
	ledger ledger.Reader
}

func NewBuilder(l ledger.Reader) *Builder {
	return &Builder{ledger: l}
}

// Snapshot computes the stats for the trading day containing now. DailyCap,
// liquidity and the blackout flag come from collaborators the builder does
// not own, so the caller supplies them.
func (b *Builder) Snapshot(now time.Time, dailyCap, liquidityScore float64, inBlackout bool) Stats {
	day := now.Format("2006-01-02")
	records := b.ledger.RecordsOn(day)

	stats := Stats{
		DailyCap:       dailyCap,
		LiquidityScore: liquidityScore,
		InBlackout:     inBlackout,
	}

	var probeWins int
	var punchCloses []float64

	for _, r := range records {
		if r.Kind != trade.RecordClose {
			continue
		}
		stats.RealizedDayPnL += r.RealizedPnL

		switch r.Lane {
		case trade.LaneProbe:
			stats.ProbeCount++
			if r.RealizedPnL > 0 {
				probeWins++
			}
		case trade.LaneQuality:
			punchCloses = append(punchCloses, r.RealizedPnL)
		}
	}

	if stats.ProbeCount > 0 {
		stats.ProbeWinRate = float64(probeWins) / float64(stats.ProbeCount)
	}

	if n := len(punchCloses); n > punchWindow {
		stats.LastPunchPnLs = punchCloses[n-punchWindow:]
	} else {
		stats.LastPunchPnLs = punchCloses
	}

	// Losses counted back from the most recent quality close.
	for i := len(punchCloses) - 1; i >= 0; i-- {
		if punchCloses[i] >= 0 {
			break
		}
		stats.ConsecutivePunchLosses++
	}

	return stats
}

// ProbeDetector is the positive-probe greenlight: the session has sampled
// enough probes, profitably enough, to justify larger allocations.
type ProbeDetector struct {
	MinProbeCount int
	MinWinRate    float64
}

func (d ProbeDetector) Greenlight(s Stats) bool {
	return s.ProbeCount >= d.MinProbeCount && s.ProbeWinRate >= d.MinWinRate
}
