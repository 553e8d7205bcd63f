package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/tally/internal/app"
	"github.com/bobmcallan/tally/internal/interfaces"
)

// accountsCmd holds the flags for the 'accounts' subcommand.
type accountsCmd struct {
	institution string
	name        string
	accountType string
	deactivate  string
	seedFile    string
}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list, add or seed external accounts" }
func (*accountsCmd) Usage() string {
	return `tally accounts [-i <institution> -n <name> -t <type>] [-deactivate <id>] [-seed <file.json>]

  Without flags, lists external accounts with their current values.
`
}

func (c *accountsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.institution, "i", "", "Institution of the new account")
	f.StringVar(&c.name, "n", "", "Name of the new account")
	f.StringVar(&c.accountType, "t", "", "Type of the new account (Savings, Mortgage, Loan, ...)")
	f.StringVar(&c.deactivate, "deactivate", "", "Mark the account with this ID inactive")
	f.StringVar(&c.seedFile, "seed", "", "Create accounts and balance history from a JSON file")
}

func (c *accountsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	user := currentUser()
	switch {
	case c.seedFile != "":
		imported, skipped, err := app.ImportAccountsFromFile(ctx, a.LedgerService, a.Logger, user, c.seedFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Seed failed: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Imported %d account(s), skipped %d\n", imported, skipped)
	case c.deactivate != "":
		inactive := false
		if _, err := a.LedgerService.UpdateAccount(ctx, user, c.deactivate, interfaces.AccountUpdate{Active: &inactive}); err != nil {
			fmt.Fprintf(os.Stderr, "Update failed: %v\n", err)
			return subcommands.ExitFailure
		}
	case c.institution != "" || c.name != "" || c.accountType != "":
		acct, err := a.LedgerService.CreateAccount(ctx, user, interfaces.AccountInput{
			Institution: c.institution,
			Name:        c.name,
			Type:        c.accountType,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Create failed: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Created account %s\n", acct.ID)
	}

	views, err := a.LedgerService.ListAccounts(ctx, user)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing accounts: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(accountsMarkdown(views, a.Config.DisplayCurrency))
	return subcommands.ExitSuccess
}

// recordCmd holds the flags for the 'record' subcommand.
type recordCmd struct {
	date string
	note string
}

func (*recordCmd) Name() string     { return "record" }
func (*recordCmd) Synopsis() string { return "record the balance of an external account" }
func (*recordCmd) Usage() string {
	return `tally record [-d <date>] [-note <text>] <account-id> <value>

  Appends a balance observation. Debts are recorded as positive amounts.
`
}

func (c *recordCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date the balance applies to (YYYY-MM-DD, default now)")
	f.StringVar(&c.note, "note", "", "Optional note")
}

func (c *recordCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: account ID and value are required")
		return subcommands.ExitUsageError
	}
	value, err := decimal.NewFromString(strings.ReplaceAll(f.Arg(1), ",", ""))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing value: %v\n", err)
		return subcommands.ExitUsageError
	}

	input := interfaces.EntryInput{Value: value, Note: c.note}
	if c.date != "" {
		day, err := parseDay(c.date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
		input.RecordedAt = day
	}

	a, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	entry, err := a.LedgerService.RecordValue(ctx, currentUser(), f.Arg(0), input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Record failed: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Recorded %s on %s\n", entry.Value.StringFixed(2), entry.RecordedAt.Format("2006-01-02"))
	return subcommands.ExitSuccess
}
