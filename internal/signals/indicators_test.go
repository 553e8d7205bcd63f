package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMA(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		period   int
		expected float64
	}{
		{name: "simple 3-point SMA", values: []float64{10, 20, 30}, period: 3, expected: 20},
		{name: "uses the newest values", values: []float64{100, 10, 20, 30}, period: 3, expected: 20},
		{name: "insufficient data", values: []float64{10, 20}, period: 5, expected: 0},
		{name: "zero period", values: []float64{10}, period: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, SMA(tt.values, tt.period), 0.0001)
		})
	}
}

func TestRollingSMA(t *testing.T) {
	got := RollingSMA([]float64{10, 20, 30, 40}, 2)
	assert.InDeltaSlice(t, []float64{10, 15, 25, 35}, got, 0.0001)
	assert.Nil(t, RollingSMA([]float64{1}, 0))
}

func TestDistanceToSMA(t *testing.T) {
	assert.InDelta(t, 10.0, DistanceToSMA(110, 100), 0.0001)
	assert.Equal(t, 0.0, DistanceToSMA(110, 0))
}

func TestDetermineTrend(t *testing.T) {
	rising := []float64{100, 110, 120, 130, 140, 150}
	falling := []float64{150, 140, 130, 120, 110, 100}

	assert.Equal(t, TrendUp, DetermineTrend(rising, ShortWindow, LongWindow))
	assert.Equal(t, TrendDown, DetermineTrend(falling, ShortWindow, LongWindow))
	assert.Equal(t, TrendFlat, DetermineTrend([]float64{100, 100, 100, 100, 100, 100}, ShortWindow, LongWindow))
	assert.Equal(t, TrendFlat, DetermineTrend(rising[:3], ShortWindow, LongWindow), "too short")
}

func TestTrendDescription(t *testing.T) {
	assert.Contains(t, TrendDescription(TrendUp), "Rising")
	assert.Contains(t, TrendDescription(TrendDown), "Falling")
	assert.Contains(t, TrendDescription(""), "Flat")
}
