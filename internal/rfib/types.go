package rfib

// DayRecord is one closed trading day in the append-only ladder history.
type DayRecord struct {
	Date     string  `json:"date"` // YYYY-MM-DD
	PnL      float64 `json:"pnl"`
	RiskUsed float64 `json:"risk_used"`
	Ceiling  float64 `json:"ceiling"`
	LossDays int     `json:"loss_days"` // streak in effect that day
}

// State is the full budget-ladder state for one trading account. It is a
// plain value so it can be snapshotted, persisted, and replayed.
type State struct {
	Ladder       []float64   `json:"ladder"`
	LossDays     int         `json:"loss_days"`
	DayRiskUsed  float64     `json:"day_risk_used"`
	DayPnL       float64     `json:"day_pnl"`
	CurrentDay   string      `json:"current_day"` // YYYY-MM-DD
	History      []DayRecord `json:"history"`
}

// OrderValidation is the decision value returned by ValidateOrder.
// It is always returned, never an error.
type OrderValidation struct {
	Allowed               bool    `json:"allowed"`
	Reason                string  `json:"reason"`
	DailyLimit            float64 `json:"daily_limit"`
	CurrentUsage          float64 `json:"current_usage"`
	RemainingCapacity     float64 `json:"remaining_capacity"`
	UtilizationAfterOrder float64 `json:"utilization_after_order"`
	Warning               bool    `json:"warning"` // post-order utilization >= 0.90
}

// ExecutionKind distinguishes what RecordExecution is being told about.
type ExecutionKind int

const (
	ExecutionEntry ExecutionKind = iota
	ExecutionExit
	ExecutionDayEnd
)

// ExecutionResult reports one executed event to the ladder. Only entries
// commit risk capacity; every kind accumulates realized P&L.
type ExecutionResult struct {
	Kind             ExecutionKind
	MaxPotentialLoss float64 // total across contracts, entries only
	RealizedPnL      float64
}

// Status is a read-only view of the ladder for logs and the ops surface.
type Status struct {
	DailyLimit  float64 `json:"daily_limit"`
	Used        float64 `json:"used"`
	Remaining   float64 `json:"remaining"`
	Utilization float64 `json:"utilization"`
	DayPnL      float64 `json:"day_pnl"`
	LossDays    int     `json:"loss_days"`
	CurrentDay  string  `json:"current_day"`
	OverCeiling bool    `json:"over_ceiling"` // usage injected from outside exceeded the ceiling
}
