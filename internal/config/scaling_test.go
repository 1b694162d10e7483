package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForPhase_AllPresetsValidate(t *testing.T) {
	for _, p := range []Phase{PhaseFoundation, PhaseEscalation, PhaseQuality, PhaseMaximum} {
		cfg, err := ForPhase(p)
		require.NoError(t, err, string(p))
		assert.NoError(t, cfg.Validate(), string(p))
		assert.Equal(t, p, cfg.Phase)
	}

	_, err := ForPhase(Phase("warp-speed"))
	assert.Error(t, err)
}

func TestForPhase_PhaseProgression(t *testing.T) {
	foundation, err := ForPhase(PhaseFoundation)
	require.NoError(t, err)
	assert.False(t, foundation.EscalationEnabled, "foundation trades the probe lane only")
	assert.False(t, foundation.CorrelationBudgetEnabled)

	escalation, err := ForPhase(PhaseEscalation)
	require.NoError(t, err)
	assert.True(t, escalation.EscalationEnabled)
	assert.Equal(t, []float64{500, 300, 200, 100}, escalation.Ladder)

	maximum, err := ForPhase(PhaseMaximum)
	require.NoError(t, err)
	assert.Equal(t, []float64{800, 500, 300, 200}, maximum.Ladder)
	assert.Equal(t, 8, maximum.HardContractCap)
	assert.Greater(t, maximum.MonthlyTargetUSD, escalation.MonthlyTargetUSD)
}

func TestCooldown(t *testing.T) {
	cfg, err := ForPhase(PhaseEscalation)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, cfg.Cooldown())
}

func TestValidate_Rejections(t *testing.T) {
	base := func() *ScalingConfig {
		cfg, err := ForPhase(PhaseEscalation)
		require.NoError(t, err)
		return cfg
	}

	cases := map[string]func(*ScalingConfig){
		"empty ladder":           func(c *ScalingConfig) { c.Ladder = nil },
		"negative rung":          func(c *ScalingConfig) { c.Ladder = []float64{500, -300} },
		"increasing rung":        func(c *ScalingConfig) { c.Ladder = []float64{500, 300, 400} },
		"zero probe fraction":    func(c *ScalingConfig) { c.ProbeCapitalFraction = 0 },
		"fraction above one":     func(c *ScalingConfig) { c.QualityCapitalFractionL2 = 1.2 },
		"zero hard cap":          func(c *ScalingConfig) { c.HardContractCap = 0 },
		"zero cooldown":          func(c *ScalingConfig) { c.CooldownMinutes = 0 },
		"l2 below l1":            func(c *ScalingConfig) { c.EscalationL2Frac = 0.20 },
		"rho cap off while used": func(c *ScalingConfig) { c.MaxRhoWeightedExposure = 0 },
	}
	for name, mutate := range cases {
		cfg := base()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestLoadScalingConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scaling.yaml")
	doc := `phase: escalation
monthly_target_usd: 6000
ladder: [500, 300, 200, 100]
probe_capital_fraction: 0.40
quality_capital_fraction_l1: 0.55
quality_capital_fraction_l2: 0.65
max_concurrent_positions: 2
escalation_enabled: true
correlation_budget_enabled: true
max_rho_weighted_exposure: 1000
hard_contract_cap: 5
cooldown_minutes: 45
min_quality_width_points: 1.5
weekly_loss_multiple: 3.0
min_probe_count: 3
min_probe_win_rate: 0.60
escalation_l1_frac: 0.30
escalation_l2_frac: 0.60
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := LoadScalingConfig(path)
	require.NoError(t, err)
	assert.Equal(t, PhaseEscalation, cfg.Phase)
	assert.Equal(t, []float64{500, 300, 200, 100}, cfg.Ladder)
	assert.Equal(t, 45*time.Minute, cfg.Cooldown())

	// A syntactically valid file that fails validation is still an error.
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("ladder: [100, 500]\n"), 0o644))
	_, err = LoadScalingConfig(bad)
	assert.Error(t, err)

	_, err = LoadScalingConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
