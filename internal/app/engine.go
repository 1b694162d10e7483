// Package app wires one trading account's engine together: budget ladder,
// escalation controller, ledger, portfolio tracker and the admission gate.
// Each account owns an independent engine; engines share nothing mutable,
// so accounts may run in parallel while each engine stays single-writer.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/odtelabs/riskgate/internal/admission"
	"github.com/odtelabs/riskgate/internal/calendar"
	"github.com/odtelabs/riskgate/internal/clock"
	"github.com/odtelabs/riskgate/internal/config"
	"github.com/odtelabs/riskgate/internal/escalation"
	"github.com/odtelabs/riskgate/internal/ledger"
	"github.com/odtelabs/riskgate/internal/portfolio"
	"github.com/odtelabs/riskgate/internal/quality"
	"github.com/odtelabs/riskgate/internal/rfib"
	"github.com/odtelabs/riskgate/internal/session"
	"github.com/odtelabs/riskgate/internal/sizing"
	"github.com/odtelabs/riskgate/internal/trade"
)

// Options configures a new engine. Config, Blackout and Logger are
// required; InitialState restores a persisted ladder snapshot.
type Options struct {
	Account      string
	Config       *config.ScalingConfig
	Clock        clock.Clock
	Blackout     *calendar.Calendar
	Metrics      *admission.Metrics
	Logger       zerolog.Logger
	InitialState *rfib.State
}

// Engine is the per-account decision stack.
type Engine struct {
	account    string
	cfg        *config.ScalingConfig
	clock      clock.Clock
	ladder     *rfib.Ladder
	controller *escalation.Controller
	book       *ledger.Ledger
	tracker    *portfolio.Tracker
	sessions   *session.Builder
	gate       *admission.Gate
	corr       portfolio.Calculator
	blackout   *calendar.Calendar
	logger     zerolog.Logger

	liquidityScore float64
	openRecords    map[string]string // symbol/lane -> open record ID
}

// NewEngine builds and validates the full stack for one account.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("app: scaling config is required")
	}
	if opts.Blackout == nil {
		return nil, fmt.Errorf("app: blackout calendar is required")
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}

	var (
		lad *rfib.Ladder
		err error
	)
	if opts.InitialState != nil {
		lad, err = rfib.Restore(*opts.InitialState)
	} else {
		lad, err = rfib.NewLadder(opts.Config.Ladder, opts.Clock.Now())
	}
	if err != nil {
		return nil, err
	}

	controller := escalation.NewController(escalation.Config{
		Enabled:                opts.Config.EscalationEnabled,
		L1Fraction:             opts.Config.EscalationL1Frac,
		L2Fraction:             opts.Config.EscalationL2Frac,
		Cooldown:               opts.Config.Cooldown(),
		MaxRhoWeightedExposure: opts.Config.MaxRhoWeightedExposure,
	}, opts.Clock, opts.Logger)

	book := ledger.New()

	eng := &Engine{
		account:        opts.Account,
		cfg:            opts.Config,
		clock:          opts.Clock,
		ladder:         lad,
		controller:     controller,
		book:           book,
		tracker:        portfolio.NewTracker(),
		sessions:       session.NewBuilder(book),
		blackout:       opts.Blackout,
		logger:         opts.Logger.With().Str("account", opts.Account).Logger(),
		liquidityScore: 1.0,
		openRecords:    make(map[string]string),
	}

	weekly := calendar.WeeklyLimit{
		BaseCeiling: opts.Config.Ladder[0],
		Multiple:    opts.Config.WeeklyLossMultiple,
	}

	gate, err := admission.NewGate(admission.Deps{
		Config:     opts.Config,
		Ladder:     lad,
		Controller: controller,
		Sizer: sizing.NewCalculator(sizing.Config{
			ProbeFraction:     opts.Config.ProbeCapitalFraction,
			QualityFractionL1: opts.Config.QualityCapitalFractionL1,
			QualityFractionL2: opts.Config.QualityCapitalFractionL2,
			HardContractCap:   opts.Config.HardContractCap,
		}),
		Weekly: admission.WeeklyFunc(func(candidateLoss float64) bool {
			st := lad.Status()
			return weekly.Violated(lad.History(), st.DayPnL, candidateLoss)
		}),
		Blackout: opts.Blackout,
		Probe: session.ProbeDetector{
			MinProbeCount: opts.Config.MinProbeCount,
			MinWinRate:    opts.Config.MinProbeWinRate,
		},
		Correlation: eng.corr,
		Quality:     quality.NewFilter(quality.DefaultFilterConfig()),
		Clock:       opts.Clock,
		Logger:      opts.Logger,
		Metrics:     opts.Metrics,
	})
	if err != nil {
		return nil, err
	}
	eng.gate = gate

	return eng, nil
}

// EvaluateCandidate runs one full admission cycle. The day is rolled first
// so overnight restarts cannot leak yesterday's usage into today.
func (e *Engine) EvaluateCandidate(ctx context.Context, cand trade.CandidateOrder) admission.Decision {
	now := e.clock.Now()
	e.ladder.StartNewTradingDay(now)

	inBlackout, _ := e.blackout.InBlackout(now)
	stats := e.sessions.Snapshot(now, e.ladder.CurrentDailyLimit(), e.liquidityScore, inBlackout)
	return e.gate.Evaluate(ctx, cand, stats, e.tracker.Positions())
}

// CommitExecution books an admitted decision: ledger open record, open
// position, and the ladder's risk-usage charge.
func (e *Engine) CommitExecution(cand trade.CandidateOrder, d admission.Decision) error {
	if d.Action != admission.ActionExecute {
		return fmt.Errorf("app: cannot commit a %s decision", d.Action)
	}

	rec, err := e.book.Append(trade.Record{
		Timestamp: d.Timestamp,
		Symbol:    cand.Symbol,
		Lane:      d.Lane,
		Shape:     cand.Shape,
		Kind:      trade.RecordOpen,
		MaxLoss:   d.MaxLoss,
	})
	if err != nil {
		return err
	}
	e.openRecords[positionKey(cand.Symbol, d.Lane)] = rec.ID

	e.tracker.Open(trade.Position{
		Symbol:    cand.Symbol,
		Lane:      d.Lane,
		MaxLoss:   d.MaxLoss,
		Beta:      cand.Beta,
		EntryTime: d.Timestamp,
	})

	e.ladder.RecordExecution(rfib.ExecutionResult{
		Kind:             rfib.ExecutionEntry,
		MaxPotentialLoss: d.MaxLoss,
	})
	return nil
}

// ClosePosition books an exit: close record referencing the open, realized
// P&L into the ladder, position off the book.
func (e *Engine) ClosePosition(symbol string, lane trade.Lane, shape trade.Shape, realizedPnL float64) error {
	key := positionKey(symbol, lane)
	refID, ok := e.openRecords[key]
	if !ok {
		return fmt.Errorf("app: no open record for %s", key)
	}

	_, err := e.book.Append(trade.Record{
		RefID:       refID,
		Timestamp:   e.clock.Now(),
		Symbol:      symbol,
		Lane:        lane,
		Shape:       shape,
		Kind:        trade.RecordClose,
		RealizedPnL: realizedPnL,
	})
	if err != nil {
		return err
	}
	delete(e.openRecords, key)

	e.ladder.RecordExecution(rfib.ExecutionResult{
		Kind:        rfib.ExecutionExit,
		RealizedPnL: realizedPnL,
	})
	e.tracker.Close(symbol, lane)
	return nil
}

// RollDay advances the ladder to the clock's current day. Idempotent.
func (e *Engine) RollDay() {
	e.ladder.StartNewTradingDay(e.clock.Now())
}

// SetLiquidityScore updates the liquidity summary fed into session stats.
func (e *Engine) SetLiquidityScore(score float64) {
	e.liquidityScore = score
}

// LadderState returns a snapshot for persistence.
func (e *Engine) LadderState() rfib.State {
	return e.ladder.State()
}

// LedgerRecords returns the session's full ledger in append order, for
// durable persistence at shutdown.
func (e *Engine) LedgerRecords() []trade.Record {
	return e.book.All()
}

// RiskStatus is the ops-surface view of one account's engine.
type RiskStatus struct {
	Account        string            `json:"account"`
	Phase          config.Phase      `json:"phase"`
	Budget         rfib.Status       `json:"budget"`
	Escalation     escalation.State  `json:"escalation"`
	EffectiveLevel escalation.Level  `json:"effective_level"`
	OpenPositions  int               `json:"open_positions"`
}

func (e *Engine) RiskStatus() RiskStatus {
	return RiskStatus{
		Account:        e.account,
		Phase:          e.cfg.Phase,
		Budget:         e.ladder.Status(),
		Escalation:     e.controller.State(),
		EffectiveLevel: e.controller.Level(),
		OpenPositions:  e.tracker.Count(),
	}
}

func positionKey(symbol string, lane trade.Lane) string {
	return symbol + "/" + lane.String()
}
