// Command tally is the local command line front end: import exports,
// track external accounts and print growth reports without the server.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&versionCmd{}, "")
	register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// register adds the tally subcommands.
func register(c *subcommands.Commander) {
	c.Register(&importCmd{}, "snapshots")
	c.Register(&snapshotsCmd{}, "snapshots")

	c.Register(&accountsCmd{}, "accounts")
	c.Register(&recordCmd{}, "accounts")

	c.Register(&growthCmd{}, "reports")
	c.Register(&networthCmd{}, "reports")
}
