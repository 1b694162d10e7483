package trade

import (
	"fmt"
	"time"
)

// Lane is the capital-allocation lane an order executes under.
type Lane int

const (
	LaneProbe Lane = iota // small, always-sampled risk
	LaneQuality           // larger risk, gated by escalation and quality checks
)

func (l Lane) String() string {
	switch l {
	case LaneProbe:
		return "probe"
	case LaneQuality:
		return "quality"
	default:
		return "unknown"
	}
}

// ParseLane converts a stored lane label back into a Lane.
func ParseLane(s string) (Lane, error) {
	switch s {
	case "probe":
		return LaneProbe, nil
	case "quality":
		return LaneQuality, nil
	default:
		return LaneProbe, fmt.Errorf("unknown lane %q", s)
	}
}

// Shape is the closed set of strategy shapes the order builder produces.
// Dispatch is always on the tag, never on free-form strings.
type Shape int

const (
	ShapeIronCondor Shape = iota
	ShapeIronButterfly
	ShapeCreditBWB
	ShapeVerticalSpread
)

func (s Shape) String() string {
	switch s {
	case ShapeIronCondor:
		return "iron_condor"
	case ShapeIronButterfly:
		return "iron_butterfly"
	case ShapeCreditBWB:
		return "credit_bwb"
	case ShapeVerticalSpread:
		return "vertical_spread"
	default:
		return "unknown"
	}
}

// ParseShape converts a stored shape label back into a Shape.
func ParseShape(s string) (Shape, error) {
	switch s {
	case "iron_condor":
		return ShapeIronCondor, nil
	case "iron_butterfly":
		return ShapeIronButterfly, nil
	case "credit_bwb":
		return ShapeCreditBWB, nil
	case "vertical_spread":
		return ShapeVerticalSpread, nil
	default:
		return ShapeIronCondor, fmt.Errorf("unknown shape %q", s)
	}
}

// CandidateOrder is an already-built spread proposed for execution.
// It is immutable once constructed by the order builder.
type CandidateOrder struct {
	Symbol           string  `json:"symbol"`
	Shape            Shape   `json:"shape"`
	WidthPoints      float64 `json:"width_points"`
	ExpectedCredit   float64 `json:"expected_credit"`    // per contract
	MaxPotentialLoss float64 `json:"max_potential_loss"` // per contract, width minus credit
	ReturnOnCapital  float64 `json:"return_on_capital"`
	Beta             float64 `json:"beta"` // correlation weight vs the book
}

// Position is an open position as seen by the portfolio tracker.
type Position struct {
	Symbol    string    `json:"symbol"`
	Lane      Lane      `json:"lane"`
	MaxLoss   float64   `json:"max_loss"` // total across contracts
	Beta      float64   `json:"beta"`
	EntryTime time.Time `json:"entry_time"`
}

// RecordKind distinguishes ledger entries.
type RecordKind int

const (
	RecordOpen RecordKind = iota
	RecordClose
)

func (k RecordKind) String() string {
	switch k {
	case RecordOpen:
		return "open"
	case RecordClose:
		return "close"
	default:
		return "unknown"
	}
}

// Record is one append-only ledger entry. Opens carry the committed max
// loss; closes carry the realized P&L of the position they reference.
type Record struct {
	ID          string     `json:"id"`
	RefID       string     `json:"ref_id,omitempty"` // close -> open linkage
	Timestamp   time.Time  `json:"timestamp"`
	Symbol      string     `json:"symbol"`
	Lane        Lane       `json:"lane"`
	Shape       Shape      `json:"shape"`
	Kind        RecordKind `json:"kind"`
	MaxLoss     float64    `json:"max_loss"`
	RealizedPnL float64    `json:"realized_pnl"`
}
