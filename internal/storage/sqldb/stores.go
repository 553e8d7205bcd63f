package sqldb

import (
	"context"

	"gorm.io/gorm"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
)

// SnapshotStore implements interfaces.SnapshotStore on gorm.
type SnapshotStore struct {
	db     *gorm.DB
	logger *common.Logger
}

var _ interfaces.SnapshotStore = (*SnapshotStore)(nil)

func (s *SnapshotStore) list(ctx context.Context, userID string, source models.Source) ([]snapshotRow, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if source != "" {
		q = q.Where("source = ?", string(source))
	}
	var rows []snapshotRow
	if err := q.Order("snapshot_date ASC").Order("imported_at ASC").Find(&rows).Error; err != nil {
		return nil, models.NewPersistenceError("list snapshots", err)
	}
	return rows, nil
}

func (s *SnapshotStore) ListSnapshots(ctx context.Context, userID string, source models.Source) ([]*models.Snapshot, error) {
	rows, err := s.list(ctx, userID, source)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Snapshot, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.snapshot())
	}
	models.SortSnapshots(out)
	return out, nil
}

func (s *SnapshotStore) ListSnapshotMetrics(ctx context.Context, userID string, source models.Source) ([]models.SnapshotWithMetrics, error) {
	rows, err := s.list(ctx, userID, source)
	if err != nil {
		return nil, err
	}
	out := make([]models.SnapshotWithMetrics, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.SnapshotWithMetrics{Snapshot: r.snapshot(), Metrics: r.metrics()})
	}
	models.SortSnapshotsWithMetrics(out)
	return out, nil
}

func (s *SnapshotStore) GetSnapshot(ctx context.Context, userID, snapshotID string) (*models.Snapshot, error) {
	var row snapshotRow
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", snapshotID, userID).First(&row).Error
	if err != nil {
		return nil, wrap("get snapshot", "snapshot", snapshotID, err)
	}
	return row.snapshot(), nil
}

func (s *SnapshotStore) MetricsFor(ctx context.Context, snapshotID string) (*models.PortfolioMetrics, error) {
	var row snapshotRow
	if err := s.db.WithContext(ctx).Where("id = ?", snapshotID).First(&row).Error; err != nil {
		return nil, wrap("get snapshot metrics", "snapshot metrics", snapshotID, err)
	}
	return row.metrics(), nil
}

func (s *SnapshotStore) HoldingsFor(ctx context.Context, snapshotID string) ([]*models.HoldingRecord, error) {
	var rows []holdingRow
	if err := s.db.WithContext(ctx).Where("snapshot_id = ?", snapshotID).Order("row_num ASC").Find(&rows).Error; err != nil {
		return nil, models.NewPersistenceError("list holdings", err)
	}
	out := make([]*models.HoldingRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.holding())
	}
	return out, nil
}

// CreateSnapshot writes the snapshot, its metrics and every holding in one
// transaction.
func (s *SnapshotStore) CreateSnapshot(ctx context.Context, snapshot *models.Snapshot, holdings []*models.HoldingRecord, metrics *models.PortfolioMetrics) error {
	row := newSnapshotRow(snapshot, metrics)
	hrows := make([]holdingRow, 0, len(holdings))
	for _, h := range holdings {
		hrows = append(hrows, newHoldingRow(snapshot.ID, h))
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if len(hrows) > 0 {
			if err := tx.CreateInBatches(hrows, 500).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.NewPersistenceError("create snapshot", err)
	}
	return nil
}

// DeleteSnapshot removes a snapshot and its holdings.
func (s *SnapshotStore) DeleteSnapshot(ctx context.Context, userID, snapshotID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", snapshotID, userID).Delete(&snapshotRow{})
		if res.Error != nil {
			return models.NewPersistenceError("delete snapshot", res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFound("snapshot", snapshotID)
		}
		if err := tx.Where("snapshot_id = ?", snapshotID).Delete(&holdingRow{}).Error; err != nil {
			return models.NewPersistenceError("delete snapshot holdings", err)
		}
		return nil
	})
}

// AccountStore implements interfaces.AccountStore on gorm.
type AccountStore struct {
	db     *gorm.DB
	logger *common.Logger
}

var _ interfaces.AccountStore = (*AccountStore)(nil)

func (s *AccountStore) ListAccounts(ctx context.Context, userID string) ([]*models.ExternalAccount, error) {
	var rows []accountRow
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, models.NewPersistenceError("list accounts", err)
	}
	out := make([]*models.ExternalAccount, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.account())
	}
	return out, nil
}

func (s *AccountStore) GetAccount(ctx context.Context, userID, accountID string) (*models.ExternalAccount, error) {
	var row accountRow
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", accountID, userID).First(&row).Error; err != nil {
		return nil, wrap("get account", "account", accountID, err)
	}
	return row.account(), nil
}

func (s *AccountStore) SaveAccount(ctx context.Context, account *models.ExternalAccount) error {
	row := newAccountRow(account)
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return models.NewPersistenceError("save account", err)
	}
	return nil
}

// DeleteAccount removes an account and every entry recorded against it.
func (s *AccountStore) DeleteAccount(ctx context.Context, userID, accountID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", accountID, userID).Delete(&accountRow{})
		if res.Error != nil {
			return models.NewPersistenceError("delete account", res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFound("account", accountID)
		}
		if err := tx.Where("account_id = ?", accountID).Delete(&entryRow{}).Error; err != nil {
			return models.NewPersistenceError("delete account entries", err)
		}
		return nil
	})
}

func (s *AccountStore) AppendEntry(ctx context.Context, entry *models.ExternalAccountEntry) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&accountRow{}).Where("id = ?", entry.AccountID).Count(&count).Error; err != nil {
		return models.NewPersistenceError("append entry", err)
	}
	if count == 0 {
		return models.NewNotFound("account", entry.AccountID)
	}

	row := entryRow{
		ID:         entry.ID,
		AccountID:  entry.AccountID,
		Value:      entry.Value,
		Note:       entry.Note,
		RecordedAt: entry.RecordedAt.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.NewPersistenceError("append entry", err)
	}
	return nil
}

func entries(rows []entryRow) []*models.ExternalAccountEntry {
	out := make([]*models.ExternalAccountEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.entry())
	}
	return out
}

// ListEntries returns an account's entries, newest first.
func (s *AccountStore) ListEntries(ctx context.Context, accountID string) ([]*models.ExternalAccountEntry, error) {
	var rows []entryRow
	if err := s.db.WithContext(ctx).Where("account_id = ?", accountID).Order("recorded_at DESC").Find(&rows).Error; err != nil {
		return nil, models.NewPersistenceError("list entries", err)
	}
	return entries(rows), nil
}

// ListUserEntries returns the entries of every account the user owns,
// newest first.
func (s *AccountStore) ListUserEntries(ctx context.Context, userID string) ([]*models.ExternalAccountEntry, error) {
	var rows []entryRow
	err := s.db.WithContext(ctx).
		Joins("JOIN external_accounts ON external_accounts.id = account_entries.account_id").
		Where("external_accounts.user_id = ?", userID).
		Order("account_entries.recorded_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, models.NewPersistenceError("list user entries", err)
	}
	return entries(rows), nil
}
