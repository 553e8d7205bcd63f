package surrealdb

import (
	"context"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// AccountStore implements interfaces.AccountStore using SurrealDB.
// Entries carry their owner's user ID so a user's whole ledger loads in one
// query.
type AccountStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewAccountStore creates a new AccountStore.
func NewAccountStore(db *surrealdb.DB, logger *common.Logger) *AccountStore {
	return &AccountStore{db: db, logger: logger}
}

var _ interfaces.AccountStore = (*AccountStore)(nil)

func (s *AccountStore) ListAccounts(ctx context.Context, userID string) ([]*models.ExternalAccount, error) {
	sql := "SELECT " + accountSelectFields + " FROM " + tableAccount + " WHERE user_id = $user_id ORDER BY created_at ASC"
	vars := map[string]any{"user_id": userID}

	results, err := surrealdb.Query[[]accountRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, models.NewPersistenceError("list accounts", err)
	}
	rows := firstResult(results)
	out := make([]*models.ExternalAccount, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.account())
	}
	return out, nil
}

func (s *AccountStore) get(ctx context.Context, accountID string) (*models.ExternalAccount, error) {
	sql := "SELECT " + accountSelectFields + " FROM $rid"
	vars := map[string]any{"rid": surrealmodels.NewRecordID(tableAccount, accountID)}

	results, err := surrealdb.Query[[]accountRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, models.NewPersistenceError("get account", err)
	}
	rows := firstResult(results)
	if len(rows) == 0 {
		return nil, models.NewNotFound("account", accountID)
	}
	return rows[0].account(), nil
}

func (s *AccountStore) GetAccount(ctx context.Context, userID, accountID string) (*models.ExternalAccount, error) {
	acct, err := s.get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acct.UserID != userID {
		return nil, models.NewNotFound("account", accountID)
	}
	return acct, nil
}

func (s *AccountStore) SaveAccount(ctx context.Context, account *models.ExternalAccount) error {
	sql := `UPSERT $rid SET
		account_id = $account_id, user_id = $user_id, institution = $institution,
		name = $name, type = $type, active = $active, created_at = $created_at`
	vars := map[string]any{
		"rid":         surrealmodels.NewRecordID(tableAccount, account.ID),
		"account_id":  account.ID,
		"user_id":     account.UserID,
		"institution": account.Institution,
		"name":        account.Name,
		"type":        account.Type,
		"active":      account.Active,
		"created_at":  account.CreatedAt.UTC(),
	}

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return models.NewPersistenceError("save account", err)
	}
	return nil
}

// DeleteAccount removes an account and every entry recorded against it.
func (s *AccountStore) DeleteAccount(ctx context.Context, userID, accountID string) error {
	if _, err := s.GetAccount(ctx, userID, accountID); err != nil {
		return err
	}

	sql := `BEGIN TRANSACTION;
	DELETE ` + tableEntry + ` WHERE account_id = $account_id;
	DELETE $rid;
	COMMIT TRANSACTION;`
	vars := map[string]any{
		"rid":        surrealmodels.NewRecordID(tableAccount, accountID),
		"account_id": accountID,
	}
	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return models.NewPersistenceError("delete account", err)
	}
	return nil
}

func (s *AccountStore) AppendEntry(ctx context.Context, entry *models.ExternalAccountEntry) error {
	acct, err := s.get(ctx, entry.AccountID)
	if err != nil {
		return err
	}

	// CREATE fails on an existing id, keeping entries append-only.
	sql := `CREATE $rid SET
		entry_id = $entry_id, account_id = $account_id, user_id = $user_id,
		value = $value, note = $note, recorded_at = $recorded_at`
	vars := map[string]any{
		"rid":         surrealmodels.NewRecordID(tableEntry, entry.ID),
		"entry_id":    entry.ID,
		"account_id":  entry.AccountID,
		"user_id":     acct.UserID,
		"value":       entry.Value.String(),
		"note":        entry.Note,
		"recorded_at": entry.RecordedAt.UTC(),
	}
	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return models.NewPersistenceError("append entry", err)
	}
	return nil
}

func (s *AccountStore) queryEntries(ctx context.Context, op, field, value string) ([]*models.ExternalAccountEntry, error) {
	sql := "SELECT " + entrySelectFields + " FROM " + tableEntry + " WHERE " + field + " = $value ORDER BY recorded_at DESC"
	vars := map[string]any{"value": value}

	results, err := surrealdb.Query[[]entryRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, models.NewPersistenceError(op, err)
	}
	rows := firstResult(results)
	out := make([]*models.ExternalAccountEntry, 0, len(rows))
	for _, r := range rows {
		e, err := r.entry()
		if err != nil {
			return nil, models.NewPersistenceError(op, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// ListEntries returns an account's entries, newest first.
func (s *AccountStore) ListEntries(ctx context.Context, accountID string) ([]*models.ExternalAccountEntry, error) {
	return s.queryEntries(ctx, "list entries", "account_id", accountID)
}

// ListUserEntries returns the entries of every account the user owns,
// newest first.
func (s *AccountStore) ListUserEntries(ctx context.Context, userID string) ([]*models.ExternalAccountEntry, error) {
	return s.queryEntries(ctx, "list user entries", "user_id", userID)
}
