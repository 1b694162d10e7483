package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	appName = "riskgate"
	version = "v0.4.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Risk-budget admission control for 0DTE options trading",
		Version: version,
		Long: `riskgate decides, per candidate trade, whether it may execute, at what
size, and under which capital lane, given the Reverse-Fibonacci daily loss
ladder, the three-level escalation state machine, and portfolio-level
correlation and quality gates.`,
	}

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay a canned admission scenario",
		Long:  "Runs a scripted sequence of candidates and fills through the full admission stack and logs every decision",
		RunE:  runSimulate,
	}
	simulateCmd.Flags().String("phase", "escalation", "Scaling phase (foundation|escalation|quality|maximum)")
	simulateCmd.Flags().String("config", "", "Optional scaling config YAML (overrides --phase preset)")
	simulateCmd.Flags().String("blackouts", "", "Optional blackout calendar YAML")
	simulateCmd.Flags().Int("days", 3, "Trading days to simulate")
	simulateCmd.Flags().String("redis", "", "Optional redis address for ladder snapshots")
	simulateCmd.Flags().String("postgres", "", "Optional postgres DSN for durable fill history")

	monitorCmd := &cobra.Command{
		Use:   "monitor",
		Short: "Start the ops HTTP server",
		Long:  "Serves /health, /riskz and /metrics for one account's engine",
		RunE:  runMonitor,
	}
	monitorCmd.Flags().String("addr", "0.0.0.0:8090", "Listen address")
	monitorCmd.Flags().String("phase", "escalation", "Scaling phase (foundation|escalation|quality|maximum)")
	monitorCmd.Flags().String("account", "default", "Account name")

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(monitorCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
