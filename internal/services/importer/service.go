// Package importer turns brokerage CSV exports into stored snapshots.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
	"github.com/google/uuid"
)

// Compile-time interface check
var _ interfaces.ImportService = (*Service)(nil)

// Service implements ImportService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
	now     func() time.Time
}

// NewService creates a new import service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// Import parses, validates and stores one export. The header is checked
// before any row is parsed and every row is parsed before anything is
// written, so a rejected file leaves no trace.
func (s *Service) Import(ctx context.Context, req interfaces.ImportRequest) (*interfaces.ImportResult, error) {
	if req.UserID == "" {
		return nil, &models.ValidationError{Field: "user", Message: "user is required"}
	}
	if req.SnapshotDate.IsZero() {
		return nil, &models.ValidationError{Field: "date", Message: "snapshot date is required"}
	}
	if req.Source != "" {
		if _, ok := models.ParseSource(string(req.Source)); !ok {
			return nil, &models.ValidationError{Field: "source", Message: fmt.Sprintf("unknown source %q", req.Source)}
		}
	}
	if req.Body == nil {
		return nil, &models.ValidationError{Field: "file", Message: "file is required"}
	}

	reader := csv.NewReader(req.Body)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &models.ValidationError{Field: "file", Message: "file is empty"}
	}
	if err != nil {
		return nil, &models.ValidationError{Field: "file", Message: fmt.Sprintf("unreadable CSV header: %v", err)}
	}

	format, err := DetectFormat(header, req.Source)
	if err != nil {
		return nil, err
	}
	labels := format.canonicalHeader(header)

	snapshotID := uuid.New().String()
	var holdings []*models.HoldingRecord

	for row := 1; ; row++ {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &models.ValidationError{Field: "file", Message: fmt.Sprintf("row %d: %v", row, err)}
		}
		if blankRow(cells) {
			continue
		}

		raw := make(map[string]string, len(labels))
		for i, v := range cells {
			if i < len(labels) {
				raw[labels[i]] = v
			}
		}

		h, err := NormalizeRow(raw, format.Source)
		if err != nil {
			var malformed *models.MalformedRowError
			if errors.As(err, &malformed) {
				malformed.Row = row
			}
			s.logger.Warn().
				Str("user_id", req.UserID).
				Str("format", format.Name).
				Int("row", row).
				Msg("Import rejected: malformed row")
			return nil, err
		}
		h.SnapshotID = snapshotID
		h.Row = row
		holdings = append(holdings, h)
	}

	if len(holdings) == 0 {
		return nil, &models.ValidationError{Field: "file", Message: "file contains no holdings"}
	}

	metrics := Aggregate(holdings)
	metrics.SnapshotID = snapshotID

	snap := &models.Snapshot{
		ID:           snapshotID,
		UserID:       req.UserID,
		Source:       format.Source,
		SnapshotDate: models.StartOfDay(req.SnapshotDate),
		Filename:     filepath.Base(strings.ReplaceAll(req.Filename, `\`, "/")),
		RecordCount:  len(holdings),
		ImportedAt:   s.now().UTC(),
	}

	if err := s.storage.SnapshotStore().CreateSnapshot(ctx, snap, holdings, &metrics); err != nil {
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}

	s.logger.Info().
		Str("user_id", req.UserID).
		Str("snapshot_id", snap.ID).
		Str("source", string(snap.Source)).
		Str("date", models.DateKey(snap.SnapshotDate)).
		Int("holdings", snap.RecordCount).
		Str("market_value", metrics.TotalMarketValue.StringFixed(models.MoneyPlaces)).
		Msg("Snapshot imported")

	return &interfaces.ImportResult{Snapshot: snap, Metrics: &metrics, Format: format.Name}, nil
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ListSnapshots returns the user's snapshots with metrics, oldest first
func (s *Service) ListSnapshots(ctx context.Context, userID string, source models.Source) ([]models.SnapshotWithMetrics, error) {
	rows, err := s.storage.SnapshotStore().ListSnapshotMetrics(ctx, userID, source)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return rows, nil
}

// GetSnapshot returns one snapshot with its metrics
func (s *Service) GetSnapshot(ctx context.Context, userID, snapshotID string) (*models.SnapshotWithMetrics, error) {
	snap, err := s.storage.SnapshotStore().GetSnapshot(ctx, userID, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	metrics, err := s.storage.SnapshotStore().MetricsFor(ctx, snap.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot metrics: %w", err)
	}
	return &models.SnapshotWithMetrics{Snapshot: snap, Metrics: metrics}, nil
}

// GetHoldings returns a snapshot's holdings in row order
func (s *Service) GetHoldings(ctx context.Context, userID, snapshotID string) ([]*models.HoldingRecord, error) {
	if _, err := s.storage.SnapshotStore().GetSnapshot(ctx, userID, snapshotID); err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	holdings, err := s.storage.SnapshotStore().HoldingsFor(ctx, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get holdings: %w", err)
	}
	return holdings, nil
}

// GetAllocation returns the snapshot's market value by asset category
func (s *Service) GetAllocation(ctx context.Context, userID, snapshotID string) ([]models.CategoryAllocation, error) {
	holdings, err := s.GetHoldings(ctx, userID, snapshotID)
	if err != nil {
		return nil, err
	}
	return Allocate(holdings), nil
}

// DeleteSnapshot removes a snapshot with its holdings and metrics
func (s *Service) DeleteSnapshot(ctx context.Context, userID, snapshotID string) error {
	if err := s.storage.SnapshotStore().DeleteSnapshot(ctx, userID, snapshotID); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	s.logger.Info().Str("user_id", userID).Str("snapshot_id", snapshotID).Msg("Snapshot deleted")
	return nil
}
