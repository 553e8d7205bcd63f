package growth

import (
	"sort"
	"time"

	"github.com/bobmcallan/tally/internal/models"
	"github.com/bobmcallan/tally/internal/services/ledger"
	"github.com/shopspring/decimal"
)

// slot is one source's contribution on one date. set distinguishes
// "reported zero" from "did not report".
type slot struct {
	value decimal.Decimal
	book  decimal.Decimal
	gain  decimal.Decimal
	set   bool
}

type dayAccumulator struct {
	date   string
	slots  map[models.Source]*slot
	assets decimal.NullDecimal
	debt   decimal.NullDecimal
	live   bool
}

func (a *dayAccumulator) addPoint(p models.GrowthPoint) {
	s, ok := a.slots[p.Source]
	if !ok {
		s = &slot{}
		a.slots[p.Source] = s
	}
	s.value = s.value.Add(p.PortfolioValue)
	s.book = s.book.Add(p.BookValue)
	s.gain = s.gain.Add(p.GainLoss)
	s.set = true

	// A live point carries the latest balances and wins over point-in-time
	// values for the same day.
	if a.live && !p.Live {
		return
	}
	if p.Live {
		a.live = true
		a.assets, a.debt = p.ExternalAssets, p.ExternalDebt
		return
	}
	if !a.assets.Valid {
		a.assets = p.ExternalAssets
	}
	if !a.debt.Valid {
		a.debt = p.ExternalDebt
	}
}

// MergeSeries merges per-source series into one chronological series keyed
// by calendar date. Points from sources not listed are ignored; an empty
// list means every known source. Values reported by several points on the
// same date add up. Dates where a source did not report carry its last
// known value forward (zero before its first report); external assets and
// debt carry forward the same way.
func MergeSeries(series map[models.Source][]models.GrowthPoint, sources []models.Source) []models.CombinedGrowthPoint {
	sources = normalizeSources(sources)

	// Collect
	days := make(map[string]*dayAccumulator)
	for _, src := range sources {
		for _, p := range series[src] {
			p.Source = src
			key := models.DateKey(p.Date)
			acc, ok := days[key]
			if !ok {
				acc = &dayAccumulator{date: key, slots: make(map[models.Source]*slot)}
				days[key] = acc
			}
			acc.addPoint(p)
		}
	}

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Carry forward
	last := make(map[models.Source]slot, len(sources))
	var assets, debt decimal.Decimal
	out := make([]models.CombinedGrowthPoint, 0, len(keys))
	for _, k := range keys {
		acc := days[k]
		if acc.assets.Valid {
			assets = acc.assets.Decimal
		}
		if acc.debt.Valid {
			debt = acc.debt.Decimal
		}

		p := models.CombinedGrowthPoint{
			Sources:        make(map[models.Source]decimal.Decimal, len(sources)),
			ExternalAssets: assets,
			ExternalDebt:   debt,
		}
		p.Date, _ = parseDateKey(k)
		for _, src := range sources {
			if s, ok := acc.slots[src]; ok && s.set {
				last[src] = *s
			}
			cur := last[src]
			p.Sources[src] = cur.value
			p.TotalPortfolioValue = p.TotalPortfolioValue.Add(cur.value)
			p.BookValue = p.BookValue.Add(cur.book)
			p.GainLoss = p.GainLoss.Add(cur.gain)
		}
		out = append(out, finishPoint(out, p))
	}
	return out
}

// ExternalOnlySeries builds a net-worth series from external balances alone:
// one point per calendar day on which any entry was recorded, valued as of
// that day. Source slots are present and zero.
func ExternalOnlySeries(l *ledger.Ledger, sources []models.Source) []models.CombinedGrowthPoint {
	sources = normalizeSources(sources)
	days := l.EntryDays()
	out := make([]models.CombinedGrowthPoint, 0, len(days))
	for _, day := range days {
		assets, debt := l.Totals(day, false)
		p := models.CombinedGrowthPoint{
			Date:           day,
			Sources:        make(map[models.Source]decimal.Decimal, len(sources)),
			ExternalAssets: assets.Decimal,
			ExternalDebt:   debt.Decimal,
		}
		for _, src := range sources {
			p.Sources[src] = decimal.Zero
		}
		out = append(out, finishPoint(out, p))
	}
	return out
}

// Combine picks the merge strategy: the carry-forward merge when any source
// has points, the external-only series when only ledger entries exist, and
// an empty series otherwise. It never fails.
func Combine(series map[models.Source][]models.GrowthPoint, l *ledger.Ledger, sources []models.Source) []models.CombinedGrowthPoint {
	sources = normalizeSources(sources)
	for _, src := range sources {
		if len(series[src]) > 0 {
			return MergeSeries(series, sources)
		}
	}
	if l.HasEntries() {
		return ExternalOnlySeries(l, sources)
	}
	return []models.CombinedGrowthPoint{}
}

// finishPoint derives combined value, net worth and the change against the
// previous point in out.
func finishPoint(out []models.CombinedGrowthPoint, p models.CombinedGrowthPoint) models.CombinedGrowthPoint {
	p.CombinedValue = p.TotalPortfolioValue.Add(p.ExternalAssets)
	p.NetWorth = p.CombinedValue.Sub(p.ExternalDebt)
	if n := len(out); n > 0 {
		p.PeriodChange, p.PeriodChangePct = periodChange(out[n-1].NetWorth, p.NetWorth)
	} else {
		p.PeriodChange, p.PeriodChangePct = decimal.Zero, decimal.Zero
	}
	return p
}

func normalizeSources(sources []models.Source) []models.Source {
	if len(sources) == 0 {
		return models.KnownSources
	}
	seen := make(map[models.Source]bool, len(sources))
	out := make([]models.Source, 0, len(sources))
	for _, s := range sources {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func parseDateKey(k string) (time.Time, error) {
	return time.Parse("2006-01-02", k)
}
