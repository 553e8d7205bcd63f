package growth

import (
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/tally/internal/models"
)

var rangeMonths = map[models.TimeRange]int{
	models.Range3Months: 3,
	models.Range6Months: 6,
	models.Range1Year:   12,
	models.Range3Years:  36,
	models.Range5Years:  60,
}

var rangeAliases = map[string]models.TimeRange{
	"12m": models.Range1Year,
	"36m": models.Range3Years,
	"60m": models.Range5Years,
}

// ParseTimeRange accepts 3m, 6m, 1y, 3y, 5y and all, plus the month-count
// aliases 12m, 36m and 60m. Empty means all.
func ParseTimeRange(s string) (models.TimeRange, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return models.RangeAll, nil
	}
	if r, ok := rangeAliases[v]; ok {
		return r, nil
	}
	r := models.TimeRange(v)
	if _, ok := rangeMonths[r]; ok || r == models.RangeAll {
		return r, nil
	}
	return "", &models.ValidationError{
		Field:   "range",
		Message: fmt.Sprintf("invalid range %q: must be 3m, 6m, 1y, 3y, 5y or all", s),
	}
}

// Cutoff returns the earliest calendar date kept by r relative to now. The
// zero time is returned for all and for unknown ranges.
func Cutoff(r models.TimeRange, now time.Time) time.Time {
	months, ok := rangeMonths[r]
	if !ok {
		return time.Time{}
	}
	return models.StartOfDay(now).AddDate(0, -months, 0)
}

// Dated is implemented by every series point type.
type Dated interface {
	PointDate() time.Time
}

// FilterByRange keeps points dated on or after Cutoff(r, now), preserving
// order. RangeAll returns the input unchanged.
func FilterByRange[P Dated](points []P, r models.TimeRange, now time.Time) []P {
	cutoff := Cutoff(r, now)
	if cutoff.IsZero() {
		return points
	}
	out := make([]P, 0, len(points))
	for _, p := range points {
		if !models.StartOfDay(p.PointDate()).Before(cutoff) {
			out = append(out, p)
		}
	}
	return out
}
