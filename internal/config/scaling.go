package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Phase names a capital-allocation preset. Switching phases replaces the
// whole ScalingConfig atomically; fields are never merged across phases.
type Phase string

const (
	PhaseFoundation Phase = "foundation"
	PhaseEscalation Phase = "escalation"
	PhaseQuality    Phase = "quality"
	PhaseMaximum    Phase = "maximum"
)

// ScalingConfig fixes every knob of the admission engine for one phase.
type ScalingConfig struct {
	Phase            Phase   `yaml:"phase"`
	MonthlyTargetUSD float64 `yaml:"monthly_target_usd"`

	// Reverse-Fibonacci daily loss ceilings, indexed by consecutive loss
	// days. Must be positive and non-increasing.
	Ladder []float64 `yaml:"ladder"`

	// Per-lane capital fractions of remaining daily budget.
	ProbeCapitalFraction     float64 `yaml:"probe_capital_fraction"`
	QualityCapitalFractionL1 float64 `yaml:"quality_capital_fraction_l1"`
	QualityCapitalFractionL2 float64 `yaml:"quality_capital_fraction_l2"`

	MaxConcurrentPositions int `yaml:"max_concurrent_positions"`

	EscalationEnabled        bool    `yaml:"escalation_enabled"`
	CorrelationBudgetEnabled bool    `yaml:"correlation_budget_enabled"`
	MaxRhoWeightedExposure   float64 `yaml:"max_rho_weighted_exposure"`

	HardContractCap int `yaml:"hard_contract_cap"`
	CooldownMinutes int `yaml:"cooldown_minutes"`

	// Quality lane is only selectable above this spread width.
	MinQualityWidthPoints float64 `yaml:"min_quality_width_points"`

	// Weekly loss budget as a multiple of the base (loss-day zero) ceiling.
	WeeklyLossMultiple float64 `yaml:"weekly_loss_multiple"`

	// Positive-probe session greenlight floors.
	MinProbeCount    int     `yaml:"min_probe_count"`
	MinProbeWinRate  float64 `yaml:"min_probe_win_rate"`
	EscalationL1Frac float64 `yaml:"escalation_l1_frac"` // of daily cap
	EscalationL2Frac float64 `yaml:"escalation_l2_frac"` // of daily cap
}

// Cooldown returns the configured cooldown as a duration.
func (c *ScalingConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownMinutes) * time.Minute
}

// ForPhase returns the built-in preset for a named phase.
func ForPhase(p Phase) (*ScalingConfig, error) {
	base := ScalingConfig{
		Phase:                    p,
		Ladder:                   []float64{500, 300, 200, 100},
		ProbeCapitalFraction:     0.40,
		QualityCapitalFractionL1: 0.55,
		QualityCapitalFractionL2: 0.65,
		MaxConcurrentPositions:   2,
		MaxRhoWeightedExposure:   1000,
		HardContractCap:          5,
		CooldownMinutes:          45,
		MinQualityWidthPoints:    1.5,
		WeeklyLossMultiple:       3.0,
		MinProbeCount:            3,
		MinProbeWinRate:          0.60,
		EscalationL1Frac:         0.30,
		EscalationL2Frac:         0.60,
	}

	switch p {
	case PhaseFoundation:
		base.MonthlyTargetUSD = 3000
		base.EscalationEnabled = false
		base.CorrelationBudgetEnabled = false
	case PhaseEscalation:
		base.MonthlyTargetUSD = 6000
		base.EscalationEnabled = true
		base.CorrelationBudgetEnabled = true
	case PhaseQuality:
		base.MonthlyTargetUSD = 10000
		base.EscalationEnabled = true
		base.CorrelationBudgetEnabled = true
		base.QualityCapitalFractionL1 = 0.60
		base.QualityCapitalFractionL2 = 0.75
		base.MaxConcurrentPositions = 3
	case PhaseMaximum:
		base.MonthlyTargetUSD = 16000
		base.EscalationEnabled = true
		base.CorrelationBudgetEnabled = true
		base.Ladder = []float64{800, 500, 300, 200}
		base.QualityCapitalFractionL1 = 0.60
		base.QualityCapitalFractionL2 = 0.80
		base.MaxConcurrentPositions = 4
		base.HardContractCap = 8
		base.MaxRhoWeightedExposure = 1600
	default:
		return nil, fmt.Errorf("unknown phase %q", p)
	}

	if err := base.Validate(); err != nil {
		return nil, err
	}
	return &base, nil
}

// LoadScalingConfig reads a phase preset from a YAML file and validates it.
func LoadScalingConfig(path string) (*ScalingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scaling config: %w", err)
	}

	var cfg ScalingConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse scaling YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects malformed configurations. Failures here are fatal at
// construction time, distinct from per-trade rejections.
func (c *ScalingConfig) Validate() error {
	if len(c.Ladder) == 0 {
		return fmt.Errorf("scaling config: ladder is empty")
	}
	for i, v := range c.Ladder {
		if v <= 0 {
			return fmt.Errorf("scaling config: ladder[%d] = %.2f must be positive", i, v)
		}
		if i > 0 && v > c.Ladder[i-1] {
			return fmt.Errorf("scaling config: ladder[%d] = %.2f exceeds ladder[%d] = %.2f; ceilings must be non-increasing", i, v, i-1, c.Ladder[i-1])
		}
	}

	fractions := map[string]float64{
		"probe_capital_fraction":      c.ProbeCapitalFraction,
		"quality_capital_fraction_l1": c.QualityCapitalFractionL1,
		"quality_capital_fraction_l2": c.QualityCapitalFractionL2,
	}
	for name, f := range fractions {
		if f <= 0 || f > 1 {
			return fmt.Errorf("scaling config: %s = %.2f outside (0, 1]", name, f)
		}
	}

	if c.HardContractCap < 1 {
		return fmt.Errorf("scaling config: hard_contract_cap = %d must be at least 1", c.HardContractCap)
	}
	if c.CooldownMinutes <= 0 {
		return fmt.Errorf("scaling config: cooldown_minutes = %d must be positive", c.CooldownMinutes)
	}
	if c.EscalationL1Frac <= 0 || c.EscalationL2Frac <= c.EscalationL1Frac {
		return fmt.Errorf("scaling config: escalation fractions must satisfy 0 < l1 < l2 (got %.2f, %.2f)", c.EscalationL1Frac, c.EscalationL2Frac)
	}
	if c.CorrelationBudgetEnabled && c.MaxRhoWeightedExposure <= 0 {
		return fmt.Errorf("scaling config: max_rho_weighted_exposure must be positive when correlation budget is enabled")
	}
	return nil
}
