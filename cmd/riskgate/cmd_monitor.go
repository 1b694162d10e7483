package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/odtelabs/riskgate/internal/admission"
	"github.com/odtelabs/riskgate/internal/app"
	"github.com/odtelabs/riskgate/internal/calendar"
	"github.com/odtelabs/riskgate/internal/config"
	opshttp "github.com/odtelabs/riskgate/internal/interfaces/http"
)

func runMonitor(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	phaseName, _ := cmd.Flags().GetString("phase")
	account, _ := cmd.Flags().GetString("account")

	cfg, err := config.ForPhase(config.Phase(phaseName))
	if err != nil {
		return err
	}

	cal, err := calendar.NewCalendar(nil)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	engine, err := app.NewEngine(app.Options{
		Account:  account,
		Config:   cfg,
		Blackout: cal,
		Metrics:  admission.NewMetrics(registry),
		Logger:   log.Logger,
	})
	if err != nil {
		return err
	}

	server := opshttp.NewServer(opshttp.StatusFunc(func() interface{} {
		return engine.RiskStatus()
	}), registry, log.Logger)

	return server.ListenAndServe(addr)
}
