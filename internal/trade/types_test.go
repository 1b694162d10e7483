package trade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLane_RoundTrip(t *testing.T) {
	for _, lane := range []Lane{LaneProbe, LaneQuality} {
		got, err := ParseLane(lane.String())
		require.NoError(t, err)
		assert.Equal(t, lane, got)
	}

	_, err := ParseLane("punch")
	assert.Error(t, err)
}

func TestShape_RoundTrip(t *testing.T) {
	for _, shape := range []Shape{ShapeIronCondor, ShapeIronButterfly, ShapeCreditBWB, ShapeVerticalSpread} {
		got, err := ParseShape(shape.String())
		require.NoError(t, err)
		assert.Equal(t, shape, got)
	}

	_, err := ParseShape("calendar")
	assert.Error(t, err)
}
