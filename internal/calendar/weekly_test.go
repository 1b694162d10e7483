package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/odtelabs/riskgate/internal/rfib"
)

func histDays(pnls ...float64) []rfib.DayRecord {
	out := make([]rfib.DayRecord, len(pnls))
	for i, p := range pnls {
		out[i] = rfib.DayRecord{PnL: p}
	}
	return out
}

func TestWeeklyLimit_Violated(t *testing.T) {
	w := WeeklyLimit{BaseCeiling: 500, Multiple: 3}
	assert.Equal(t, 1500.0, w.Budget())

	// Trailing week down 1400, candidate risks 150: would breach 1500.
	hist := histDays(-300, -400, -200, -500)
	assert.True(t, w.Violated(hist, 0, 150))
	assert.False(t, w.Violated(hist, 0, 90))

	// Today's running loss counts too.
	assert.True(t, w.Violated(histDays(-600, -500), -350, 100))

	// Winning days offset losses inside the window.
	assert.False(t, w.Violated(histDays(-600, -500, 400), -350, 100))
}

func TestWeeklyLimit_OnlyTrailingFiveSessionsCount(t *testing.T) {
	w := WeeklyLimit{BaseCeiling: 500, Multiple: 3}

	// An old disaster day outside the window is forgotten.
	hist := histDays(-2000, -100, -100, -100, -100, -100)
	assert.False(t, w.Violated(hist, 0, 200))

	// The same day inside the window trips the limit.
	hist = histDays(-2000, -100, -100, -100, -100)
	assert.True(t, w.Violated(hist, 0, 200))
}

func TestWeeklyLimit_ProfitableWeekNeverBlocks(t *testing.T) {
	w := WeeklyLimit{BaseCeiling: 500, Multiple: 3}
	assert.False(t, w.Violated(histDays(200, 300, -100), 50, 1400))
}

func TestWeeklyLimit_DisabledWhenBudgetNonPositive(t *testing.T) {
	w := WeeklyLimit{BaseCeiling: 500, Multiple: 0}
	assert.False(t, w.Violated(histDays(-5000), -500, 1000))
}
