package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ternarybob/banner"
)

// storageTarget describes where the configured backend keeps its data.
func storageTarget(cfg StorageConfig) string {
	if cfg.Backend == "surrealdb" {
		return fmt.Sprintf("surrealdb %s (%s/%s)", cfg.Address, cfg.Namespace, cfg.Database)
	}
	if cfg.Backend == "postgres" {
		return "postgres"
	}
	return fmt.Sprintf("%s %s", cfg.Backend, cfg.DSN)
}

// PrintBanner displays the application startup banner to stderr.
func PrintBanner(config *Config, logger *Logger) {
	printBanner(os.Stderr, config)

	logger.Info().
		Str("version", Version).
		Str("build", Build).
		Str("commit", GitCommit).
		Str("environment", config.Environment).
		Str("service_url", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)).
		Str("storage_backend", config.Storage.Backend).
		Msg("Application started")
}

func printBanner(w io.Writer, config *Config) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 56) + banner.ColorReset

	art := []string{
		` 88888888888       888 888`,
		`     888           888 888`,
		`     888           888 888`,
		`     888   8888b.  888 888 888  888`,
		`     888      "88b 888 888 888  888`,
		`     888  .d888888 888 888 888  888`,
		`     888  888  888 888 888 Y88b 888`,
		`     888  "Y888888 888 888  "Y88888`,
		`                                888`,
		`                           Y8b d88P`,
		`                            "Y88P"`,
	}

	fmt.Fprintf(w, "\n%s\n\n", hr)
	for _, line := range art {
		fmt.Fprintf(w, "%s%s%s\n", textColor, line, banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s  Portfolio snapshots & net worth over time%s\n\n", textColor, banner.ColorReset)
	fmt.Fprintf(w, "%s\n\n", hr)

	kvLines := [][2]string{
		{"Version", Version},
		{"Build", Build},
		{"Commit", GitCommit},
		{"Environment", config.Environment},
		{"Service URL", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)},
		{"Storage", storageTarget(config.Storage)},
		{"Currency", config.DisplayCurrency},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(w, "%s  %-14s %s%s\n", textColor, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s\n\n", hr)
}

// PrintShutdownBanner displays the application shutdown banner to stderr.
func PrintShutdownBanner(logger *Logger) {
	hr := banner.ColorCyan + strings.Repeat("═", 32) + banner.ColorReset

	fmt.Fprintf(os.Stderr, "\n%s\n", hr)
	fmt.Fprintf(os.Stderr, "%s  TALLY: SHUTTING DOWN%s\n", banner.ColorBold+banner.ColorWhite, banner.ColorReset)
	fmt.Fprintf(os.Stderr, "%s\n\n", hr)

	logger.Info().Msg("Application shutting down")
}
