package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
)

type importAccountsFile struct {
	Accounts []importAccount `json:"accounts"`
}

type importAccount struct {
	Institution string        `json:"institution"`
	Name        string        `json:"name"`
	Type        string        `json:"type"`
	Entries     []importEntry `json:"entries"`
}

type importEntry struct {
	Value      decimal.Decimal `json:"value"`
	Note       string          `json:"note"`
	RecordedAt string          `json:"recorded_at"` // RFC 3339 or YYYY-MM-DD
}

func parseRecordedAt(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// ImportAccountsFromFile reads an accounts JSON file and records every
// account with its balance history for userID. Accounts whose
// (institution, name) already exist are skipped along with their entries.
// Returns (imported count, skipped count, error).
func ImportAccountsFromFile(ctx context.Context, ledgerService interfaces.LedgerService, logger *common.Logger, userID, filePath string) (int, int, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read accounts file %s: %w", filePath, err)
	}

	var file importAccountsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return 0, 0, fmt.Errorf("failed to parse accounts file %s: %w", filePath, err)
	}

	existing, err := ledgerService.ListAccounts(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	seen := make(map[string]bool, len(existing))
	for _, a := range existing {
		seen[strings.ToLower(a.Institution+"\x00"+a.Name)] = true
	}

	imported, skipped := 0, 0
	for _, a := range file.Accounts {
		key := strings.ToLower(strings.TrimSpace(a.Institution) + "\x00" + strings.TrimSpace(a.Name))
		if seen[key] {
			skipped++
			continue
		}

		acct, err := ledgerService.CreateAccount(ctx, userID, interfaces.AccountInput{
			Institution: a.Institution,
			Name:        a.Name,
			Type:        a.Type,
		})
		if err != nil {
			logger.Warn().Err(err).Str("name", a.Name).Msg("Failed to create account during import")
			skipped++
			continue
		}
		seen[key] = true

		for _, e := range a.Entries {
			at, err := parseRecordedAt(e.RecordedAt)
			if err != nil {
				logger.Warn().Str("account_id", acct.ID).Str("recorded_at", e.RecordedAt).Msg("Skipping entry with unparseable date")
				continue
			}
			if _, err := ledgerService.RecordValue(ctx, userID, acct.ID, interfaces.EntryInput{
				Value:      e.Value,
				Note:       e.Note,
				RecordedAt: at,
			}); err != nil {
				logger.Warn().Err(err).Str("account_id", acct.ID).Msg("Failed to record entry during import")
			}
		}

		logger.Info().Str("account_id", acct.ID).Int("entries", len(a.Entries)).Msg("Account imported")
		imported++
	}
	return imported, skipped, nil
}
