// Package ledger tracks manually entered external account balances and
// answers point-in-time value queries over them.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Compile-time interface check
var _ interfaces.LedgerService = (*Service)(nil)

const (
	maxLabelLength = 200
	maxNoteLength  = 1000
)

var maxEntryValue = decimal.New(1, 15)

// Service implements LedgerService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
	now     func() time.Time
}

// NewService creates a new external account service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// Load reads every account and entry the user owns into a Ledger.
func Load(ctx context.Context, store interfaces.AccountStore, userID string) (*Ledger, error) {
	accounts, err := store.ListAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	entries, err := store.ListUserEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list account entries: %w", err)
	}
	return New(accounts, entries), nil
}

func validateLabel(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &models.ValidationError{Field: field, Message: "is required"}
	}
	if len(value) > maxLabelLength {
		return &models.ValidationError{Field: field, Message: fmt.Sprintf("exceeds maximum length of %d characters", maxLabelLength)}
	}
	return nil
}

// CreateAccount adds an active external account
func (s *Service) CreateAccount(ctx context.Context, userID string, input interfaces.AccountInput) (*models.ExternalAccount, error) {
	for _, f := range [][2]string{{"institution", input.Institution}, {"name", input.Name}, {"type", input.Type}} {
		if err := validateLabel(f[0], f[1]); err != nil {
			return nil, err
		}
	}

	acct := &models.ExternalAccount{
		ID:          uuid.New().String(),
		UserID:      userID,
		Institution: strings.TrimSpace(input.Institution),
		Name:        strings.TrimSpace(input.Name),
		Type:        strings.TrimSpace(input.Type),
		Active:      true,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.storage.AccountStore().SaveAccount(ctx, acct); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("account_id", acct.ID).
		Str("type", acct.Type).
		Bool("liability", acct.IsLiability()).
		Msg("External account created")
	return acct, nil
}

// ListAccounts returns every account with its current value
func (s *Service) ListAccounts(ctx context.Context, userID string) ([]models.ExternalAccountView, error) {
	accounts, err := s.storage.AccountStore().ListAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	entries, err := s.storage.AccountStore().ListUserEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list account entries: %w", err)
	}
	l := New(accounts, entries)

	views := make([]models.ExternalAccountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, view(l, *a))
	}
	return views, nil
}

func view(l *Ledger, a models.ExternalAccount) models.ExternalAccountView {
	v := models.ExternalAccountView{ExternalAccount: a, Liability: a.IsLiability()}
	if e, ok := l.EntryAsOf(a.ID, time.Time{}, true); ok {
		v.CurrentValue = decimal.NewNullDecimal(e.Value)
		at := e.RecordedAt
		v.LastUpdated = &at
	}
	return v
}

// GetAccount returns one account with its current value
func (s *Service) GetAccount(ctx context.Context, userID, accountID string) (*models.ExternalAccountView, error) {
	acct, err := s.storage.AccountStore().GetAccount(ctx, userID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	entries, err := s.storage.AccountStore().ListEntries(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list account entries: %w", err)
	}
	v := view(New([]*models.ExternalAccount{acct}, entries), *acct)
	return &v, nil
}

// UpdateAccount patches an account's labels or active flag
func (s *Service) UpdateAccount(ctx context.Context, userID, accountID string, update interfaces.AccountUpdate) (*models.ExternalAccount, error) {
	acct, err := s.storage.AccountStore().GetAccount(ctx, userID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if update.Institution != nil {
		if err := validateLabel("institution", *update.Institution); err != nil {
			return nil, err
		}
		acct.Institution = strings.TrimSpace(*update.Institution)
	}
	if update.Name != nil {
		if err := validateLabel("name", *update.Name); err != nil {
			return nil, err
		}
		acct.Name = strings.TrimSpace(*update.Name)
	}
	if update.Type != nil {
		if err := validateLabel("type", *update.Type); err != nil {
			return nil, err
		}
		acct.Type = strings.TrimSpace(*update.Type)
	}
	if update.Active != nil {
		acct.Active = *update.Active
	}

	if err := s.storage.AccountStore().SaveAccount(ctx, acct); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}
	s.logger.Info().Str("user_id", userID).Str("account_id", accountID).Bool("active", acct.Active).Msg("External account updated")
	return acct, nil
}

// DeleteAccount removes an account and its whole history
func (s *Service) DeleteAccount(ctx context.Context, userID, accountID string) error {
	if err := s.storage.AccountStore().DeleteAccount(ctx, userID, accountID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	s.logger.Info().Str("user_id", userID).Str("account_id", accountID).Msg("External account deleted")
	return nil
}

// RecordValue appends a balance observation to an account
func (s *Service) RecordValue(ctx context.Context, userID, accountID string, input interfaces.EntryInput) (*models.ExternalAccountEntry, error) {
	if _, err := s.storage.AccountStore().GetAccount(ctx, userID, accountID); err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if input.Value.Abs().GreaterThan(maxEntryValue) {
		return nil, &models.ValidationError{Field: "value", Message: "exceeds maximum (1e15)"}
	}
	if len(input.Note) > maxNoteLength {
		return nil, &models.ValidationError{Field: "note", Message: fmt.Sprintf("exceeds maximum length of %d characters", maxNoteLength)}
	}

	recordedAt := input.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = s.now()
	}

	entry := &models.ExternalAccountEntry{
		ID:         uuid.New().String(),
		AccountID:  accountID,
		Value:      input.Value.Round(models.MoneyPlaces),
		Note:       strings.TrimSpace(input.Note),
		RecordedAt: recordedAt.UTC(),
	}
	if err := s.storage.AccountStore().AppendEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record value: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("account_id", accountID).
		Str("value", entry.Value.StringFixed(models.MoneyPlaces)).
		Time("recorded_at", entry.RecordedAt).
		Msg("External account value recorded")
	return entry, nil
}

// ListEntries returns an account's entries, newest first
func (s *Service) ListEntries(ctx context.Context, userID, accountID string) ([]*models.ExternalAccountEntry, error) {
	if _, err := s.storage.AccountStore().GetAccount(ctx, userID, accountID); err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	entries, err := s.storage.AccountStore().ListEntries(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list account entries: %w", err)
	}
	return entries, nil
}
