// Package memory is a process-local storage backend for development and tests.
// Data is lost on Close.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
)

// Manager implements interfaces.StorageManager in memory.
type Manager struct {
	mu sync.RWMutex

	snapshots map[string]models.Snapshot
	metrics   map[string]models.PortfolioMetrics
	holdings  map[string][]models.HoldingRecord
	accounts  map[string]models.ExternalAccount
	entries   map[string][]models.ExternalAccountEntry

	snapshotStore *SnapshotStore
	accountStore  *AccountStore
}

// NewManager creates an empty in-memory store.
func NewManager() *Manager {
	m := &Manager{
		snapshots: make(map[string]models.Snapshot),
		metrics:   make(map[string]models.PortfolioMetrics),
		holdings:  make(map[string][]models.HoldingRecord),
		accounts:  make(map[string]models.ExternalAccount),
		entries:   make(map[string][]models.ExternalAccountEntry),
	}
	m.snapshotStore = &SnapshotStore{m: m}
	m.accountStore = &AccountStore{m: m}
	return m
}

func (m *Manager) SnapshotStore() interfaces.SnapshotStore {
	return m.snapshotStore
}

func (m *Manager) AccountStore() interfaces.AccountStore {
	return m.accountStore
}

func (m *Manager) Backend() string {
	return "memory"
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = make(map[string]models.Snapshot)
	m.metrics = make(map[string]models.PortfolioMetrics)
	m.holdings = make(map[string][]models.HoldingRecord)
	m.accounts = make(map[string]models.ExternalAccount)
	m.entries = make(map[string][]models.ExternalAccountEntry)
	return nil
}

// Compile-time checks
var (
	_ interfaces.StorageManager = (*Manager)(nil)
	_ interfaces.SnapshotStore  = (*SnapshotStore)(nil)
	_ interfaces.AccountStore   = (*AccountStore)(nil)
)

// SnapshotStore implements interfaces.SnapshotStore in memory.
type SnapshotStore struct {
	m *Manager
}

func (s *SnapshotStore) ListSnapshots(_ context.Context, userID string, source models.Source) ([]*models.Snapshot, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	var out []*models.Snapshot
	for _, snap := range s.m.snapshots {
		if snap.UserID != userID || (source != "" && snap.Source != source) {
			continue
		}
		cp := snap
		out = append(out, &cp)
	}
	models.SortSnapshots(out)
	return out, nil
}

func (s *SnapshotStore) ListSnapshotMetrics(ctx context.Context, userID string, source models.Source) ([]models.SnapshotWithMetrics, error) {
	snaps, _ := s.ListSnapshots(ctx, userID, source)

	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	out := make([]models.SnapshotWithMetrics, 0, len(snaps))
	for _, snap := range snaps {
		met, ok := s.m.metrics[snap.ID]
		if !ok {
			continue
		}
		out = append(out, models.SnapshotWithMetrics{Snapshot: snap, Metrics: &met})
	}
	return out, nil
}

func (s *SnapshotStore) GetSnapshot(_ context.Context, userID, snapshotID string) (*models.Snapshot, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	snap, ok := s.m.snapshots[snapshotID]
	if !ok || snap.UserID != userID {
		return nil, models.NewNotFound("snapshot", snapshotID)
	}
	return &snap, nil
}

func (s *SnapshotStore) MetricsFor(_ context.Context, snapshotID string) (*models.PortfolioMetrics, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	met, ok := s.m.metrics[snapshotID]
	if !ok {
		return nil, models.NewNotFound("snapshot metrics", snapshotID)
	}
	return &met, nil
}

func (s *SnapshotStore) HoldingsFor(_ context.Context, snapshotID string) ([]*models.HoldingRecord, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	stored := s.m.holdings[snapshotID]
	out := make([]*models.HoldingRecord, len(stored))
	for i := range stored {
		h := stored[i]
		out[i] = &h
	}
	return out, nil
}

func (s *SnapshotStore) CreateSnapshot(_ context.Context, snapshot *models.Snapshot, holdings []*models.HoldingRecord, metrics *models.PortfolioMetrics) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	rows := make([]models.HoldingRecord, len(holdings))
	for i, h := range holdings {
		rows[i] = *h
		rows[i].SnapshotID = snapshot.ID
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Row < rows[j].Row })

	met := *metrics
	met.SnapshotID = snapshot.ID

	s.m.snapshots[snapshot.ID] = *snapshot
	s.m.holdings[snapshot.ID] = rows
	s.m.metrics[snapshot.ID] = met
	return nil
}

func (s *SnapshotStore) DeleteSnapshot(_ context.Context, userID, snapshotID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	snap, ok := s.m.snapshots[snapshotID]
	if !ok || snap.UserID != userID {
		return models.NewNotFound("snapshot", snapshotID)
	}
	delete(s.m.snapshots, snapshotID)
	delete(s.m.holdings, snapshotID)
	delete(s.m.metrics, snapshotID)
	return nil
}

// AccountStore implements interfaces.AccountStore in memory.
type AccountStore struct {
	m *Manager
}

func (s *AccountStore) ListAccounts(_ context.Context, userID string) ([]*models.ExternalAccount, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	var out []*models.ExternalAccount
	for _, a := range s.m.accounts {
		if a.UserID == userID {
			cp := a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *AccountStore) GetAccount(_ context.Context, userID, accountID string) (*models.ExternalAccount, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	a, ok := s.m.accounts[accountID]
	if !ok || a.UserID != userID {
		return nil, models.NewNotFound("account", accountID)
	}
	return &a, nil
}

func (s *AccountStore) SaveAccount(_ context.Context, account *models.ExternalAccount) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.accounts[account.ID] = *account
	return nil
}

func (s *AccountStore) DeleteAccount(_ context.Context, userID, accountID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	a, ok := s.m.accounts[accountID]
	if !ok || a.UserID != userID {
		return models.NewNotFound("account", accountID)
	}
	delete(s.m.accounts, accountID)
	delete(s.m.entries, accountID)
	return nil
}

func (s *AccountStore) AppendEntry(_ context.Context, entry *models.ExternalAccountEntry) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if _, ok := s.m.accounts[entry.AccountID]; !ok {
		return models.NewNotFound("account", entry.AccountID)
	}
	s.m.entries[entry.AccountID] = append(s.m.entries[entry.AccountID], *entry)
	return nil
}

func (s *AccountStore) ListEntries(_ context.Context, accountID string) ([]*models.ExternalAccountEntry, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	return newestFirst(s.m.entries[accountID]), nil
}

func (s *AccountStore) ListUserEntries(_ context.Context, userID string) ([]*models.ExternalAccountEntry, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	var all []models.ExternalAccountEntry
	for id, a := range s.m.accounts {
		if a.UserID == userID {
			all = append(all, s.m.entries[id]...)
		}
	}
	return newestFirst(all), nil
}

// newestFirst copies entries ordered by RecordedAt descending. Entries with
// the same timestamp keep reverse insertion order.
func newestFirst(entries []models.ExternalAccountEntry) []*models.ExternalAccountEntry {
	out := make([]*models.ExternalAccountEntry, len(entries))
	for i := range entries {
		e := entries[len(entries)-1-i]
		out[i] = &e
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RecordedAt.After(out[j].RecordedAt)
	})
	return out
}
