// Package signals provides trend calculations over valuation series
package signals

// Trend classifies the direction of a series.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// Default windows, in points, for the short and long averages.
const (
	ShortWindow = 3
	LongWindow  = 6
)

// SMA calculates the Simple Moving Average of the last period values.
// Values are ordered oldest first.
func SMA(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return 0
	}

	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// RollingSMA returns the moving average ending at every index. Indexes
// before the first full window average what is available.
func RollingSMA(values []float64, period int) []float64 {
	if period <= 0 {
		return nil
	}
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		n := period
		if i+1 < period {
			n = i + 1
		}
		out[i] = sum / float64(n)
	}
	return out
}

// DistanceToSMA calculates the percentage distance from current to sma
func DistanceToSMA(current, sma float64) float64 {
	if sma == 0 {
		return 0
	}
	return ((current - sma) / sma) * 100
}

// DetermineTrend compares the short and long averages of a series.
// Series shorter than the long window are flat.
func DetermineTrend(values []float64, shortPeriod, longPeriod int) Trend {
	if len(values) < longPeriod || shortPeriod >= longPeriod {
		return TrendFlat
	}

	current := values[len(values)-1]
	short := SMA(values, shortPeriod)
	long := SMA(values, longPeriod)

	if current > long && short > long {
		return TrendUp
	}
	if current < long && short < long {
		return TrendDown
	}
	return TrendFlat
}

// TrendDescription returns a human-readable trend description
func TrendDescription(trend Trend) string {
	switch trend {
	case TrendUp:
		return "Rising: net worth is above its longer-run average"
	case TrendDown:
		return "Falling: net worth is below its longer-run average"
	default:
		return "Flat: no clear direction"
	}
}
