package growth

import (
	"fmt"

	"github.com/bobmcallan/tally/internal/models"
	"github.com/shopspring/decimal"
)

// Downsampling granularities.
const (
	IntervalDaily   = "daily"
	IntervalWeekly  = "weekly"
	IntervalMonthly = "monthly"
)

// ParseInterval validates an interval; empty means daily (no downsampling).
func ParseInterval(s string) (string, error) {
	switch s {
	case "", IntervalDaily:
		return IntervalDaily, nil
	case IntervalWeekly, IntervalMonthly:
		return s, nil
	}
	return "", &models.ValidationError{Field: "interval", Message: fmt.Sprintf("invalid interval %q: must be daily, weekly or monthly", s)}
}

// DownsampleToWeekly keeps the last point of each ISO week.
func DownsampleToWeekly[P Dated](points []P) []P {
	if len(points) == 0 {
		return nil
	}

	weekly := make([]P, 0)
	for i, p := range points {
		if i == len(points)-1 {
			weekly = append(weekly, p)
			continue
		}
		y1, w1 := p.PointDate().ISOWeek()
		y2, w2 := points[i+1].PointDate().ISOWeek()
		if w1 != w2 || y1 != y2 {
			weekly = append(weekly, p)
		}
	}

	return weekly
}

// DownsampleToMonthly keeps the last point of each calendar month.
func DownsampleToMonthly[P Dated](points []P) []P {
	if len(points) == 0 {
		return nil
	}

	monthly := make([]P, 0)
	for i, p := range points {
		if i == len(points)-1 {
			monthly = append(monthly, p)
			continue
		}
		y1, m1, _ := p.PointDate().Date()
		y2, m2, _ := points[i+1].PointDate().Date()
		if m1 != m2 || y1 != y2 {
			monthly = append(monthly, p)
		}
	}

	return monthly
}

// downsample applies interval to points. An unknown interval leaves points
// untouched.
func downsample[P Dated](points []P, interval string) []P {
	switch interval {
	case IntervalWeekly:
		return DownsampleToWeekly(points)
	case IntervalMonthly:
		return DownsampleToMonthly(points)
	}
	return points
}

// rechainCombined recomputes period changes over the retained points, so
// the first point of a filtered or downsampled series has no change.
func rechainCombined(points []models.CombinedGrowthPoint) []models.CombinedGrowthPoint {
	out := make([]models.CombinedGrowthPoint, 0, len(points))
	for _, p := range points {
		out = append(out, finishPoint(out, p))
	}
	return out
}

func rechainSource(points []models.GrowthPoint) []models.GrowthPoint {
	out := make([]models.GrowthPoint, 0, len(points))
	for i, p := range points {
		if i == 0 {
			p.PeriodChange, p.PeriodChangePct = decimal.Zero, decimal.Zero
		} else {
			p.PeriodChange, p.PeriodChangePct = periodChange(out[i-1].PortfolioValue, p.PortfolioValue)
		}
		out = append(out, p)
	}
	return out
}
