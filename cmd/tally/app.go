package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bobmcallan/tally/internal/app"
)

var configPath = flag.String("config", "", "Path to tally.toml (default: $TALLY_CONFIG, then next to the binary, then config/tally.toml)")
var userFlag = flag.String("user", "", "User the data belongs to (default: $TALLY_USER, then \"local\")")

// openApp initializes storage and services from the configured file.
func openApp() (*app.App, error) {
	a, err := app.NewApp(*configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize app: %w", err)
	}
	return a, nil
}

// currentUser resolves the user every command acts for.
func currentUser() string {
	if u := strings.TrimSpace(*userFlag); u != "" {
		return u
	}
	if u := strings.TrimSpace(os.Getenv("TALLY_USER")); u != "" {
		return u
	}
	return "local"
}

// parseDay parses a YYYY-MM-DD flag value; "" means today.
func parseDay(s string) (time.Time, error) {
	if s == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", s)
}
