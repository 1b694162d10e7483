package app

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odtelabs/riskgate/internal/admission"
	"github.com/odtelabs/riskgate/internal/calendar"
	"github.com/odtelabs/riskgate/internal/clock"
	"github.com/odtelabs/riskgate/internal/config"
	"github.com/odtelabs/riskgate/internal/escalation"
	"github.com/odtelabs/riskgate/internal/rfib"
	"github.com/odtelabs/riskgate/internal/trade"
)

func newTestEngine(t *testing.T, windows []calendar.Window, initial *rfib.State) (*Engine, *clock.Fake) {
	t.Helper()

	cfg, err := config.ForPhase(config.PhaseEscalation)
	require.NoError(t, err)

	cal, err := calendar.NewCalendar(windows)
	require.NoError(t, err)

	clk := clock.NewFake(time.Date(2026, 8, 3, 14, 30, 0, 0, time.UTC))
	eng, err := NewEngine(Options{
		Account:      "acct-1",
		Config:       cfg,
		Clock:        clk,
		Blackout:     cal,
		Logger:       zerolog.Nop(),
		InitialState: initial,
	})
	require.NoError(t, err)
	return eng, clk
}

func probeOrder() trade.CandidateOrder {
	return trade.CandidateOrder{
		Symbol:           "SPX",
		Shape:            trade.ShapeIronCondor,
		WidthPoints:      1.0,
		ExpectedCredit:   22,
		MaxPotentialLoss: 78,
		ReturnOnCapital:  0.28,
		Beta:             1.0,
	}
}

func TestNewEngine_RequiresConfigAndCalendar(t *testing.T) {
	cal, err := calendar.NewCalendar(nil)
	require.NoError(t, err)

	_, err = NewEngine(Options{Blackout: cal, Logger: zerolog.Nop()})
	assert.Error(t, err)

	cfg, err := config.ForPhase(config.PhaseEscalation)
	require.NoError(t, err)
	_, err = NewEngine(Options{Config: cfg, Logger: zerolog.Nop()})
	assert.Error(t, err)
}

func TestEngine_FullTradeCycle(t *testing.T) {
	eng, clk := newTestEngine(t, nil, nil)
	ctx := context.Background()

	d := eng.EvaluateCandidate(ctx, probeOrder())
	require.Equal(t, admission.ActionExecute, d.Action)
	assert.Equal(t, trade.LaneProbe, d.Lane)
	// 500 remaining × 0.40 = 200; floor(200/78) = 2 contracts.
	assert.Equal(t, 2, d.Contracts)

	require.NoError(t, eng.CommitExecution(probeOrder(), d))
	st := eng.RiskStatus()
	assert.Equal(t, 1, st.OpenPositions)
	assert.Equal(t, 156.0, st.Budget.Used)

	clk.Advance(20 * time.Minute)
	require.NoError(t, eng.ClosePosition("SPX", trade.LaneProbe, trade.ShapeIronCondor, 36))

	st = eng.RiskStatus()
	assert.Equal(t, 0, st.OpenPositions)
	assert.Equal(t, 36.0, st.Budget.DayPnL)
	assert.Equal(t, 156.0, st.Budget.Used, "risk usage never refunds on exit")
}

func TestEngine_CommitAndCloseGuards(t *testing.T) {
	eng, _ := newTestEngine(t, nil, nil)

	reject := admission.Decision{Action: admission.ActionReject, Reason: admission.ReasonRFIBCapHit}
	assert.Error(t, eng.CommitExecution(probeOrder(), reject))

	err := eng.ClosePosition("SPX", trade.LaneProbe, trade.ShapeIronCondor, 10)
	assert.Error(t, err, "no open record to reference")
}

func TestEngine_EscalatesAfterProfitableProbes(t *testing.T) {
	eng, clk := newTestEngine(t, nil, nil)
	ctx := context.Background()

	// Three profitable probes earn the greenlight and bank cushion.
	for i := 0; i < 3; i++ {
		d := eng.EvaluateCandidate(ctx, probeOrder())
		require.Equal(t, admission.ActionExecute, d.Action, "probe %d", i)
		require.NoError(t, eng.CommitExecution(probeOrder(), d))
		clk.Advance(15 * time.Minute)
		require.NoError(t, eng.ClosePosition("SPX", trade.LaneProbe, trade.ShapeIronCondor, 60))
	}

	punch := trade.CandidateOrder{
		Symbol:           "SPX",
		Shape:            trade.ShapeCreditBWB,
		WidthPoints:      2.0,
		ExpectedCredit:   30,
		MaxPotentialLoss: 70,
		ReturnOnCapital:  0.30,
		Beta:             1.0,
	}
	d := eng.EvaluateCandidate(ctx, punch)
	require.Equal(t, admission.ActionExecute, d.Action)
	assert.Equal(t, trade.LaneQuality, d.Lane)
	assert.Equal(t, escalation.Level1, d.Level, "180 banked is past the 150 line")
	// Banked-profit cap: 0.5 × 180 = 90; floor(90/70) = 1.
	assert.Equal(t, 1, d.Contracts)
}

func TestEngine_BlackoutWindowBlocksAdmission(t *testing.T) {
	start := time.Date(2026, 8, 3, 14, 0, 0, 0, time.UTC)
	eng, _ := newTestEngine(t, []calendar.Window{
		{Name: "FOMC statement", Start: start, End: start.Add(2 * time.Hour)},
	}, nil)

	d := eng.EvaluateCandidate(context.Background(), probeOrder())
	assert.Equal(t, admission.ActionReject, d.Action)
	assert.Equal(t, admission.ReasonEventBlackout, d.Reason)
}

func TestEngine_RollDayAndSnapshotRoundTrip(t *testing.T) {
	eng, clk := newTestEngine(t, nil, nil)
	ctx := context.Background()

	d := eng.EvaluateCandidate(ctx, probeOrder())
	require.Equal(t, admission.ActionExecute, d.Action)
	require.NoError(t, eng.CommitExecution(probeOrder(), d))
	require.NoError(t, eng.ClosePosition("SPX", trade.LaneProbe, trade.ShapeIronCondor, -40))

	clk.Advance(24 * time.Hour)
	eng.RollDay()

	st := eng.RiskStatus()
	assert.Equal(t, 1, st.Budget.LossDays)
	assert.Equal(t, 300.0, st.Budget.DailyLimit, "losing day steps the ceiling down")

	// Restore a fresh engine from the snapshot: same budget view.
	snap := eng.LadderState()
	restored, _ := newTestEngine(t, nil, &snap)
	assert.Equal(t, st.Budget, restored.RiskStatus().Budget)
}
