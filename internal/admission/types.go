package admission

import (
	"time"

	"github.com/odtelabs/riskgate/internal/escalation"
	"github.com/odtelabs/riskgate/internal/trade"
)

// Action is the terminal outcome of an admission cycle.
type Action int

const (
	ActionReject Action = iota
	ActionExecute
)

func (a Action) String() string {
	switch a {
	case ActionExecute:
		return "execute"
	case ActionReject:
		return "reject"
	default:
		return "unknown"
	}
}

// ReasonCode is the closed taxonomy of decision reasons. Rejections are
// values drawn from this set, never errors.
type ReasonCode string

const (
	ReasonExecute           ReasonCode = "EXECUTE"
	ReasonRFIBCapHit        ReasonCode = "RFIB_CAP_HIT"
	ReasonWeeklyRFIBHit     ReasonCode = "WEEKLY_RFIB_HIT"
	ReasonEventBlackout     ReasonCode = "EVENT_BLACKOUT"
	ReasonInsufficientSize  ReasonCode = "INSUFFICIENT_SIZE"
	ReasonRhoBudgetExceeded ReasonCode = "RHO_BUDGET_EXCEEDED"
	ReasonQualityFail       ReasonCode = "QUALITY_FAIL"
)

// Decision is the per-cycle output value. It has no retained identity
// beyond logging; callers may discard it freely.
type Decision struct {
	ID             string            `json:"id"`
	Timestamp      time.Time         `json:"timestamp"`
	Action         Action            `json:"action"`
	Reason         ReasonCode        `json:"reason"`
	Lane           trade.Lane        `json:"lane"`
	Contracts      int               `json:"contracts"`
	Level          escalation.Level  `json:"level"`
	ExpectedCredit float64           `json:"expected_credit"` // total across contracts
	MaxLoss        float64           `json:"max_loss"`        // total across contracts
	Log            DecisionLog       `json:"log"`
}

// DecisionLog is the structured per-decision record handed to downstream
// observability. The core fixes the field set, not the wire format.
type DecisionLog struct {
	Reason      ReasonCode `json:"reason"`
	DailyLimit  float64    `json:"daily_limit"`
	Used        float64    `json:"used"`
	Remaining   float64    `json:"remaining"`
	Fraction    float64    `json:"fraction"`
	PerTradeCap float64    `json:"per_trade_cap"`
	Contracts   int        `json:"contracts"`
	Lane        string     `json:"lane"`
	Level       string     `json:"level"`
	RhoExposure float64    `json:"rho_exposure"`
	Blackout    string     `json:"blackout,omitempty"`
	CapWarning  bool       `json:"cap_warning"` // >=90% utilization after order
}
