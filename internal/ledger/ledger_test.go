package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odtelabs/riskgate/internal/trade"
)

var stamp = time.Date(2026, 8, 3, 15, 0, 0, 0, time.UTC)

func TestAppend_AssignsIDAndPreservesOrder(t *testing.T) {
	l := New()

	first, err := l.Append(trade.Record{
		Symbol:    "SPX",
		Lane:      trade.LaneProbe,
		Kind:      trade.RecordOpen,
		Timestamp: stamp,
		MaxLoss:   78,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	second, err := l.Append(trade.Record{
		ID:          "my-own-id",
		Symbol:      "SPX",
		Lane:        trade.LaneProbe,
		Kind:        trade.RecordClose,
		RefID:       first.ID,
		Timestamp:   stamp.Add(20 * time.Minute),
		RealizedPnL: 18,
	})
	require.NoError(t, err)
	assert.Equal(t, "my-own-id", second.ID, "caller-supplied ID is kept")

	all := l.All()
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)
	assert.Equal(t, 2, l.Len())
}

func TestAppend_Rejections(t *testing.T) {
	l := New()

	_, err := l.Append(trade.Record{Symbol: "SPX", Kind: trade.RecordOpen})
	assert.Error(t, err, "zero timestamp")

	_, err = l.Append(trade.Record{Symbol: "SPX", Kind: trade.RecordClose, Timestamp: stamp})
	assert.Error(t, err, "close without ref_id")

	assert.Equal(t, 0, l.Len(), "rejected records are not kept")
}

func TestRecordsOn_FiltersByDay(t *testing.T) {
	l := New()
	for i, ts := range []time.Time{stamp, stamp.Add(time.Hour), stamp.AddDate(0, 0, 1)} {
		_, err := l.Append(trade.Record{
			Symbol:    "SPX",
			Kind:      trade.RecordOpen,
			Timestamp: ts,
			MaxLoss:   float64(i),
		})
		require.NoError(t, err)
	}

	assert.Len(t, l.RecordsOn("2026-08-03"), 2)
	assert.Len(t, l.RecordsOn("2026-08-04"), 1)
	assert.Empty(t, l.RecordsOn("2026-08-05"))
}

func TestSince(t *testing.T) {
	l := New()
	for _, ts := range []time.Time{stamp, stamp.Add(time.Hour), stamp.Add(2 * time.Hour)} {
		_, err := l.Append(trade.Record{Symbol: "SPX", Kind: trade.RecordOpen, Timestamp: ts})
		require.NoError(t, err)
	}

	assert.Len(t, l.Since(stamp.Add(time.Hour)), 2, "cut is inclusive")
	assert.Len(t, l.Since(stamp.Add(3*time.Hour)), 0)
}
