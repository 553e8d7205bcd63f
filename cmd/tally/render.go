package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
	"github.com/bobmcallan/tally/internal/signals"
)

// printMarkdown renders md for the terminal, falling back to the raw text.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Fprint(os.Stdout, out)
}

func pct(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

func importMarkdown(res *interfaces.ImportResult, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Imported %s\n\n", res.Snapshot.Filename)
	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Snapshot | `%s` |\n", res.Snapshot.ID)
	fmt.Fprintf(&b, "| Source | %s (%s) |\n", res.Snapshot.Source, res.Format)
	fmt.Fprintf(&b, "| Date | %s |\n", models.DateKey(res.Snapshot.SnapshotDate))
	fmt.Fprintf(&b, "| Holdings | %d in %d accounts |\n", res.Metrics.HoldingsCount, res.Metrics.AccountsCount)
	fmt.Fprintf(&b, "| Market value | %s |\n", common.FormatMoney(res.Metrics.TotalMarketValue, currency))
	fmt.Fprintf(&b, "| Book value | %s |\n", common.FormatMoney(res.Metrics.TotalBookValue, currency))
	fmt.Fprintf(&b, "| Gain/loss | %s (%s) |\n", common.FormatMoney(res.Metrics.TotalGainLoss, currency), pct(res.Metrics.TotalGainLossPct))
	return b.String()
}

func snapshotsMarkdown(rows []models.SnapshotWithMetrics, currency string) string {
	var b strings.Builder
	b.WriteString("# Snapshots\n\n")
	if len(rows) == 0 {
		b.WriteString("No snapshots imported yet.\n")
		return b.String()
	}
	b.WriteString("| Date | Source | File | Holdings | Market value | Gain/loss |\n")
	b.WriteString("|---|---|---|---:|---:|---:|\n")
	for _, r := range rows {
		if r.Snapshot == nil || r.Metrics == nil {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %s | %s |\n",
			models.DateKey(r.Snapshot.SnapshotDate),
			r.Snapshot.Source,
			r.Snapshot.Filename,
			r.Metrics.HoldingsCount,
			common.FormatMoney(r.Metrics.TotalMarketValue, currency),
			pct(r.Metrics.TotalGainLossPct),
		)
	}
	return b.String()
}

func growthMarkdown(points []models.CombinedGrowthPoint, currency string) string {
	var b strings.Builder
	b.WriteString("# Net worth over time\n\n")
	if len(points) == 0 {
		b.WriteString("Nothing to report: import a snapshot or record an account value first.\n")
		return b.String()
	}
	b.WriteString("| Date | Portfolio | Assets | Debt | Net worth | Change |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|\n")
	for _, p := range points {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s (%s) |\n",
			models.DateKey(p.Date),
			common.FormatMoney(p.TotalPortfolioValue, currency),
			common.FormatMoney(p.ExternalAssets, currency),
			common.FormatMoney(p.ExternalDebt, currency),
			common.FormatMoney(p.NetWorth, currency),
			common.FormatMoney(p.PeriodChange, currency),
			pct(p.PeriodChangePct),
		)
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.NetWorth.InexactFloat64()
	}
	trend := signals.DetermineTrend(values, signals.ShortWindow, signals.LongWindow)
	fmt.Fprintf(&b, "\n**Trend:** %s", signals.TrendDescription(trend))
	if len(values) >= signals.LongWindow {
		long := signals.SMA(values, signals.LongWindow)
		fmt.Fprintf(&b, " (%.2f%% from the %d-point average)", signals.DistanceToSMA(values[len(values)-1], long), signals.LongWindow)
	}
	b.WriteString("\n")
	return b.String()
}

func netWorthMarkdown(s *models.NetWorthSummary, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Net worth: %s\n\n", common.FormatMoney(s.NetWorth, currency))

	sources := make([]string, 0, len(s.Sources))
	for src := range s.Sources {
		sources = append(sources, string(src))
	}
	sort.Strings(sources)

	b.WriteString("| | |\n|---|---:|\n")
	for _, src := range sources {
		fmt.Fprintf(&b, "| %s | %s |\n", src, common.FormatMoney(s.Sources[models.Source(src)], currency))
	}
	fmt.Fprintf(&b, "| External assets | %s |\n", common.FormatMoney(s.ExternalAssets, currency))
	fmt.Fprintf(&b, "| External debt | -%s |\n", common.FormatMoney(s.ExternalDebt, currency))
	fmt.Fprintf(&b, "\n_As of %s_\n", s.AsOf.Format("2006-01-02 15:04 MST"))
	return b.String()
}

func accountsMarkdown(views []models.ExternalAccountView, currency string) string {
	var b strings.Builder
	b.WriteString("# External accounts\n\n")
	if len(views) == 0 {
		b.WriteString("No accounts yet.\n")
		return b.String()
	}
	b.WriteString("| ID | Institution | Name | Type | Value | Updated |\n")
	b.WriteString("|---|---|---|---|---:|---|\n")
	for _, v := range views {
		value, updated := "-", "never"
		if v.CurrentValue.Valid {
			value = common.FormatMoney(v.CurrentValue.Decimal, currency)
		}
		if v.LastUpdated != nil {
			updated = models.DateKey(*v.LastUpdated)
		}
		name := v.Name
		if !v.Active {
			name += " (inactive)"
		}
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s | %s | %s |\n", v.ID, v.Institution, name, v.Type, value, updated)
	}
	return b.String()
}
