package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"

	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
)

// importCmd holds the flags for the 'import' subcommand.
type importCmd struct {
	date   string
	source string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a brokerage holdings export as a snapshot" }
func (*importCmd) Usage() string {
	return `tally import [-d <date>] [-s <source>] <file.csv>

  Parses a holdings export and stores it as a snapshot dated <date>.
  The source is detected from the header unless -s is given.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Snapshot date (YYYY-MM-DD, default today)")
	f.StringVar(&c.source, "s", "", "Source: primary or secondary (default: detect)")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one file is required")
		return subcommands.ExitUsageError
	}
	day, err := parseDay(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	file, err := os.Open(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening file: %v\n", err)
		return subcommands.ExitFailure
	}
	defer file.Close()

	a, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	res, err := a.ImportService.Import(ctx, interfaces.ImportRequest{
		UserID:       currentUser(),
		Source:       models.Source(c.source),
		SnapshotDate: day,
		Filename:     filepath.Base(f.Arg(0)),
		Body:         file,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(importMarkdown(res, a.Config.DisplayCurrency))
	return subcommands.ExitSuccess
}

// snapshotsCmd holds the flags for the 'snapshots' subcommand.
type snapshotsCmd struct {
	source string
	delete string
}

func (*snapshotsCmd) Name() string     { return "snapshots" }
func (*snapshotsCmd) Synopsis() string { return "list or delete imported snapshots" }
func (*snapshotsCmd) Usage() string {
	return `tally snapshots [-s <source>] [-delete <id>]

  Lists snapshots oldest first, or deletes one with its holdings.
`
}

func (c *snapshotsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.source, "s", "", "Only list this source")
	f.StringVar(&c.delete, "delete", "", "Delete the snapshot with this ID")
}

func (c *snapshotsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var source models.Source
	if c.source != "" {
		src, ok := models.ParseSource(c.source)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: unknown source %q\n", c.source)
			return subcommands.ExitUsageError
		}
		source = src
	}

	a, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if c.delete != "" {
		if err := a.ImportService.DeleteSnapshot(ctx, currentUser(), c.delete); err != nil {
			fmt.Fprintf(os.Stderr, "Delete failed: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Deleted snapshot %s\n", c.delete)
		return subcommands.ExitSuccess
	}

	rows, err := a.ImportService.ListSnapshots(ctx, currentUser(), source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing snapshots: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(snapshotsMarkdown(rows, a.Config.DisplayCurrency))
	return subcommands.ExitSuccess
}
