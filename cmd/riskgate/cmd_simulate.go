package main

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/odtelabs/riskgate/internal/admission"
	"github.com/odtelabs/riskgate/internal/app"
	"github.com/odtelabs/riskgate/internal/calendar"
	"github.com/odtelabs/riskgate/internal/clock"
	"github.com/odtelabs/riskgate/internal/config"
	"github.com/odtelabs/riskgate/internal/ledger/postgres"
	"github.com/odtelabs/riskgate/internal/store"
	"github.com/odtelabs/riskgate/internal/trade"
)

func runSimulate(cmd *cobra.Command, args []string) error {
	phaseName, _ := cmd.Flags().GetString("phase")
	configPath, _ := cmd.Flags().GetString("config")
	blackoutPath, _ := cmd.Flags().GetString("blackouts")
	days, _ := cmd.Flags().GetInt("days")
	redisAddr, _ := cmd.Flags().GetString("redis")
	postgresDSN, _ := cmd.Flags().GetString("postgres")

	cfg, err := loadScaling(phaseName, configPath)
	if err != nil {
		return err
	}

	cal, err := loadBlackouts(blackoutPath)
	if err != nil {
		return err
	}

	// The simulator drives its own clock so multi-day scenarios replay
	// deterministically.
	clk := clock.NewFake(time.Now().Truncate(time.Hour))

	registry := prometheus.NewRegistry()
	engine, err := app.NewEngine(app.Options{
		Account:  "sim",
		Config:   cfg,
		Clock:    clk,
		Blackout: cal,
		Metrics:  admission.NewMetrics(registry),
		Logger:   log.Logger,
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	for day := 0; day < days; day++ {
		simulateDay(ctx, engine, clk, day)
		clk.Advance(18 * time.Hour) // past midnight
		engine.RollDay()
	}

	status := engine.RiskStatus()
	log.Info().
		Str("phase", string(status.Phase)).
		Float64("daily_limit", status.Budget.DailyLimit).
		Int("loss_days", status.Budget.LossDays).
		Str("level", status.EffectiveLevel.String()).
		Msg("simulation complete")

	if redisAddr != "" {
		client := goredis.NewClient(&goredis.Options{Addr: redisAddr})
		snapshots := store.NewSnapshotStore(client, 7*24*time.Hour, log.Logger)
		if err := snapshots.Save(ctx, "sim", engine.LadderState()); err != nil {
			return fmt.Errorf("snapshot save failed: %w", err)
		}
		log.Info().Str("redis", redisAddr).Msg("ladder snapshot saved")
	}

	if postgresDSN != "" {
		db, err := sqlx.Connect("postgres", postgresDSN)
		if err != nil {
			return fmt.Errorf("postgres connect failed: %w", err)
		}
		defer db.Close()

		fills := postgres.NewFillsRepo(db, 5*time.Second)
		records := engine.LedgerRecords()
		if err := fills.InsertBatch(ctx, "sim", records); err != nil {
			return fmt.Errorf("fill history write failed: %w", err)
		}
		log.Info().Int("fills", len(records)).Msg("fill history persisted")
	}
	return nil
}

// simulateDay pushes a fixed intraday script through the gate: probe
// samples first, then a quality attempt once the probes have banked P&L.
func simulateDay(ctx context.Context, engine *app.Engine, clk *clock.Fake, day int) {
	probe := trade.CandidateOrder{
		Symbol:           "SPX",
		Shape:            ShapeForDay(day),
		WidthPoints:      1.0,
		ExpectedCredit:   22,
		MaxPotentialLoss: 78,
		ReturnOnCapital:  0.28,
		Beta:             1.0,
	}

	// Alternate winning and losing days so the ladder walk is visible in
	// the logs: even days bank profit, odd days bleed.
	probePnL := 18.0
	if day%2 == 1 {
		probePnL = -26.0
	}

	for i := 0; i < 4; i++ {
		clk.Advance(30 * time.Minute)
		decision := engine.EvaluateCandidate(ctx, probe)
		if decision.Action != admission.ActionExecute {
			continue
		}
		if err := engine.CommitExecution(probe, decision); err != nil {
			log.Error().Err(err).Msg("commit failed")
			continue
		}
		clk.Advance(20 * time.Minute)
		if err := engine.ClosePosition(probe.Symbol, decision.Lane, probe.Shape, probePnL); err != nil {
			log.Error().Err(err).Msg("close failed")
		}
	}

	punch := trade.CandidateOrder{
		Symbol:           "SPX",
		Shape:            trade.ShapeCreditBWB,
		WidthPoints:      2.5,
		ExpectedCredit:   55,
		MaxPotentialLoss: 195,
		ReturnOnCapital:  0.28,
		Beta:             1.1,
	}
	clk.Advance(30 * time.Minute)
	decision := engine.EvaluateCandidate(ctx, punch)
	if decision.Action == admission.ActionExecute {
		if err := engine.CommitExecution(punch, decision); err != nil {
			log.Error().Err(err).Msg("commit failed")
			return
		}
		clk.Advance(45 * time.Minute)
		if err := engine.ClosePosition(punch.Symbol, decision.Lane, punch.Shape, probePnL*2); err != nil {
			log.Error().Err(err).Msg("close failed")
		}
	}
}

// ShapeForDay rotates through the strategy shapes so every tag shows up in
// a multi-day run.
func ShapeForDay(day int) trade.Shape {
	switch day % 3 {
	case 0:
		return trade.ShapeIronCondor
	case 1:
		return trade.ShapeIronButterfly
	default:
		return trade.ShapeVerticalSpread
	}
}

func loadScaling(phaseName, configPath string) (*config.ScalingConfig, error) {
	if configPath != "" {
		return config.LoadScalingConfig(configPath)
	}
	return config.ForPhase(config.Phase(phaseName))
}

func loadBlackouts(path string) (*calendar.Calendar, error) {
	if path == "" {
		return calendar.NewCalendar(nil)
	}
	return calendar.LoadCalendar(path)
}
