package surrealdb

import (
	"context"
	"fmt"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// SnapshotStore implements interfaces.SnapshotStore using SurrealDB.
// Metrics live on the snapshot record; holdings in their own table.
type SnapshotStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(db *surrealdb.DB, logger *common.Logger) *SnapshotStore {
	return &SnapshotStore{db: db, logger: logger}
}

var _ interfaces.SnapshotStore = (*SnapshotStore)(nil)

func (s *SnapshotStore) list(ctx context.Context, userID string, source models.Source) ([]snapshotRecord, error) {
	sql := "SELECT " + snapshotSelectFields + " FROM " + tableSnapshot + " WHERE user_id = $user_id"
	vars := map[string]any{"user_id": userID}
	if source != "" {
		sql += " AND source = $source"
		vars["source"] = string(source)
	}
	sql += " ORDER BY snapshot_date ASC, imported_at ASC"

	results, err := surrealdb.Query[[]snapshotRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, models.NewPersistenceError("list snapshots", err)
	}
	return firstResult(results), nil
}

func (s *SnapshotStore) ListSnapshots(ctx context.Context, userID string, source models.Source) ([]*models.Snapshot, error) {
	rows, err := s.list(ctx, userID, source)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Snapshot, 0, len(rows))
	for _, r := range rows {
		snap, err := r.snapshot()
		if err != nil {
			return nil, models.NewPersistenceError("list snapshots", err)
		}
		out = append(out, snap)
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
		snap, err := r.snapshot()
		if err != nil {
			return nil, models.NewPersistenceError("list snapshot metrics", err)
		}
		met, err := r.metrics()
		if err != nil {
			return nil, models.NewPersistenceError("list snapshot metrics", err)
		}
		out = append(out, models.SnapshotWithMetrics{Snapshot: snap, Metrics: met})
	}
	models.SortSnapshotsWithMetrics(out)
	return out, nil
}

func (s *SnapshotStore) get(ctx context.Context, snapshotID string) (*snapshotRecord, error) {
	sql := "SELECT " + snapshotSelectFields + " FROM $rid"
	vars := map[string]any{"rid": surrealmodels.NewRecordID(tableSnapshot, snapshotID)}

	results, err := surrealdb.Query[[]snapshotRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, models.NewPersistenceError("get snapshot", err)
	}
	rows := firstResult(results)
	if len(rows) == 0 {
		return nil, models.NewNotFound("snapshot", snapshotID)
	}
	return &rows[0], nil
}

func (s *SnapshotStore) GetSnapshot(ctx context.Context, userID, snapshotID string) (*models.Snapshot, error) {
	r, err := s.get(ctx, snapshotID)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, models.NewNotFound("snapshot", snapshotID)
	}
	snap, err := r.snapshot()
	if err != nil {
		return nil, models.NewPersistenceError("get snapshot", err)
	}
	return snap, nil
}

func (s *SnapshotStore) MetricsFor(ctx context.Context, snapshotID string) (*models.PortfolioMetrics, error) {
	r, err := s.get(ctx, snapshotID)
	if err != nil {
		return nil, err
	}
	met, err := r.metrics()
	if err != nil {
		return nil, models.NewPersistenceError("get snapshot metrics", err)
	}
	return met, nil
}

func (s *SnapshotStore) HoldingsFor(ctx context.Context, snapshotID string) ([]*models.HoldingRecord, error) {
	sql := "SELECT * FROM " + tableHolding + " WHERE snapshot_id = $snapshot_id ORDER BY row ASC"
	vars := map[string]any{"snapshot_id": snapshotID}

	results, err := surrealdb.Query[[]holdingRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, models.NewPersistenceError("list holdings", err)
	}
	rows := firstResult(results)
	out := make([]*models.HoldingRecord, 0, len(rows))
	for _, r := range rows {
		h, err := r.holding()
		if err != nil {
			return nil, models.NewPersistenceError("list holdings", err)
		}
		out = append(out, h)
	}
	return out, nil
}

// CreateSnapshot writes the snapshot, its metrics and every holding in one
// transaction.
func (s *SnapshotStore) CreateSnapshot(ctx context.Context, snapshot *models.Snapshot, holdings []*models.HoldingRecord, metrics *models.PortfolioMetrics) error {
	rows := make([]holdingRecord, 0, len(holdings))
	for _, h := range holdings {
		rows = append(rows, toHoldingRecord(snapshot.ID, h))
	}

	sql := `BEGIN TRANSACTION;
	UPSERT $rid SET
		snapshot_id = $snapshot_id, user_id = $user_id, source = $source,
		snapshot_date = $snapshot_date, filename = $filename, record_count = $record_count,
		imported_at = $imported_at, total_market_value = $total_market_value,
		total_book_value = $total_book_value, total_gain_loss = $total_gain_loss,
		total_gain_loss_pct = $total_gain_loss_pct, holdings_count = $holdings_count,
		accounts_count = $accounts_count;`
	if len(rows) > 0 {
		sql += "\n\tINSERT INTO " + tableHolding + " $holdings;"
	}
	sql += "\n\tCOMMIT TRANSACTION;"

	vars := map[string]any{
		"rid":                 surrealmodels.NewRecordID(tableSnapshot, snapshot.ID),
		"snapshot_id":         snapshot.ID,
		"user_id":             snapshot.UserID,
		"source":              string(snapshot.Source),
		"snapshot_date":       models.DateKey(snapshot.SnapshotDate),
		"filename":            snapshot.Filename,
		"record_count":        snapshot.RecordCount,
		"imported_at":         snapshot.ImportedAt.UTC(),
		"total_market_value":  metrics.TotalMarketValue.String(),
		"total_book_value":    metrics.TotalBookValue.String(),
		"total_gain_loss":     metrics.TotalGainLoss.String(),
		"total_gain_loss_pct": metrics.TotalGainLossPct.String(),
		"holdings_count":      metrics.HoldingsCount,
		"accounts_count":      metrics.AccountsCount,
		"holdings":            rows,
	}

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return models.NewPersistenceError("create snapshot", err)
	}

	s.logger.Debug().
		Str("snapshot_id", snapshot.ID).
		Int("holdings", len(rows)).
		Msg("Snapshot stored")
	return nil
}

// DeleteSnapshot removes a snapshot and its holdings.
func (s *SnapshotStore) DeleteSnapshot(ctx context.Context, userID, snapshotID string) error {
	if _, err := s.GetSnapshot(ctx, userID, snapshotID); err != nil {
		return err
	}

	sql := `BEGIN TRANSACTION;
	DELETE ` + tableHolding + ` WHERE snapshot_id = $snapshot_id;
	DELETE $rid;
	COMMIT TRANSACTION;`
	vars := map[string]any{
		"rid":         surrealmodels.NewRecordID(tableSnapshot, snapshotID),
		"snapshot_id": snapshotID,
	}
	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return models.NewPersistenceError("delete snapshot", fmt.Errorf("snapshot %s: %w", snapshotID, err))
	}
	return nil
}
