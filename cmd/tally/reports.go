package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
)

// growthCmd holds the flags for the 'growth' subcommand.
type growthCmd struct {
	timeRange string
	interval  string
	sources   string
	png       string
}

func (*growthCmd) Name() string     { return "growth" }
func (*growthCmd) Synopsis() string { return "show net worth over time" }
func (*growthCmd) Usage() string {
	return `tally growth [-r <range>] [-i <interval>] [-s <sources>] [-png <file>]

  Merges every snapshot and external account into one series.
  Ranges: 3m, 6m, 1y, 3y, 5y, all. Intervals: daily, weekly, monthly.
`
}

func (c *growthCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.timeRange, "r", "", "Trailing time range (default from config)")
	f.StringVar(&c.interval, "i", "", "Downsample to weekly or monthly points")
	f.StringVar(&c.sources, "s", "", "Comma separated sources to include (default all)")
	f.StringVar(&c.png, "png", "", "Also write the chart to this PNG file")
}

func (c *growthCmd) options() interfaces.GrowthOptions {
	opts := interfaces.GrowthOptions{
		Range:    models.TimeRange(c.timeRange),
		Interval: c.interval,
	}
	for _, s := range strings.Split(c.sources, ",") {
		if s = strings.TrimSpace(s); s != "" {
			opts.Sources = append(opts.Sources, models.Source(strings.ToLower(s)))
		}
	}
	return opts
}

func (c *growthCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	opts := c.options()
	points, err := a.GrowthService.BuildGrowthSeries(ctx, currentUser(), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building growth series: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(growthMarkdown(points, a.Config.DisplayCurrency))

	if c.png != "" && len(points) > 0 {
		png, err := a.GrowthService.RenderChart(ctx, currentUser(), opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering chart: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := os.WriteFile(c.png, png, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing chart: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Chart written to %s\n", c.png)
	}
	return subcommands.ExitSuccess
}

type networthCmd struct{}

func (*networthCmd) Name() string             { return "networth" }
func (*networthCmd) Synopsis() string         { return "show current net worth" }
func (*networthCmd) Usage() string            { return "tally networth\n\n  Latest snapshot per source plus current account values.\n" }
func (*networthCmd) SetFlags(_ *flag.FlagSet) {}

func (*networthCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	summary, err := a.GrowthService.NetWorthSummary(ctx, currentUser())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing net worth: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(netWorthMarkdown(summary, a.Config.DisplayCurrency))
	return subcommands.ExitSuccess
}

type versionCmd struct{}

func (*versionCmd) Name() string             { return "version" }
func (*versionCmd) Synopsis() string         { return "print build information" }
func (*versionCmd) Usage() string            { return "tally version\n" }
func (*versionCmd) SetFlags(_ *flag.FlagSet) {}

func (*versionCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	common.LoadVersionFromFile()
	fmt.Println("tally " + common.GetFullVersion())
	return subcommands.ExitSuccess
}
