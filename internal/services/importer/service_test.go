package importer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
	"github.com/bobmcallan/tally/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const primaryCSV = `Account Name,Account Number,Symbol,Name,Asset Category,Quantity,Price,Book Value,Market Value,Gain/Loss,Gain/Loss %,Portfolio %
RRSP,12345678,VTI,Vanguard Total Market,Equity,10,$250.00,"$2,000.00","$2,500.00",$500.00,25%,62.5%
TFSA,12345679,XBB,iShares Core Bond,Fixed Income,50,$30.00,"$1,600.00","$1,500.00",($100.00),(6.25%),37.5%
,,,,,,,,,,,
`

func newTestService(t *testing.T) (*Service, *memory.Manager) {
	t.Helper()
	store := memory.NewManager()
	svc := NewService(store, common.NewSilentLogger())
	return svc, store
}

func importPrimary(t *testing.T, svc *Service, userID, date string) *interfaces.ImportResult {
	t.Helper()
	d, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)
	res, err := svc.Import(context.Background(), interfaces.ImportRequest{
		UserID:       userID,
		SnapshotDate: d,
		Filename:     "holdings.csv",
		Body:         strings.NewReader(primaryCSV),
	})
	require.NoError(t, err)
	return res
}

func TestImport_StoresSnapshotHoldingsAndMetrics(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	res := importPrimary(t, svc, "alice", "2024-01-31")

	assert.Equal(t, models.SourcePrimary, res.Snapshot.Source)
	assert.Equal(t, "primary-holdings-v1", res.Format)
	assert.Equal(t, 2, res.Snapshot.RecordCount)
	assert.Equal(t, "2024-01-31", models.DateKey(res.Snapshot.SnapshotDate))
	assert.Equal(t, "4000", res.Metrics.TotalMarketValue.String())
	assert.Equal(t, "3600", res.Metrics.TotalBookValue.String())
	assert.Equal(t, "400", res.Metrics.TotalGainLoss.String())
	assert.Equal(t, "11.1111", res.Metrics.TotalGainLossPct.String())
	assert.Equal(t, 2, res.Metrics.AccountsCount)

	holdings, err := store.SnapshotStore().HoldingsFor(ctx, res.Snapshot.ID)
	require.NoError(t, err)
	require.Len(t, holdings, 2)
	assert.Equal(t, 1, holdings[0].Row)
	assert.Equal(t, "-100", holdings[1].GainLoss.String())
	assert.Equal(t, "-6.25", holdings[1].GainLossPct.String())
}

func TestImport_MalformedRowRejectsWholeFile(t *testing.T) {
	svc, store := newTestService(t)
	bad := strings.Replace(primaryCSV, "$30.00", "thirty", 1)

	_, err := svc.Import(context.Background(), interfaces.ImportRequest{
		UserID:       "alice",
		SnapshotDate: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Filename:     "holdings.csv",
		Body:         strings.NewReader(bad),
	})

	var malformed *models.MalformedRowError
	require.True(t, errors.As(err, &malformed), "got %v", err)
	assert.Equal(t, 2, malformed.Row)
	assert.Equal(t, []string{"Price"}, malformed.Columns)

	snaps, err := store.SnapshotStore().ListSnapshots(context.Background(), "alice", "")
	require.NoError(t, err)
	assert.Empty(t, snaps, "no partial snapshot is persisted")
}

func TestImport_CurrencyBeforeParentheses(t *testing.T) {
	svc, store := newTestService(t)
	body := strings.Replace(primaryCSV, "($100.00)", "$(100.00)", 1)

	res, err := svc.Import(context.Background(), interfaces.ImportRequest{
		UserID:       "alice",
		SnapshotDate: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Filename:     "holdings.csv",
		Body:         strings.NewReader(body),
	})
	require.NoError(t, err)
	assert.Equal(t, "400", res.Metrics.TotalGainLoss.String())

	holdings, err := store.SnapshotStore().HoldingsFor(context.Background(), res.Snapshot.ID)
	require.NoError(t, err)
	require.Len(t, holdings, 2)
	assert.Equal(t, "-100", holdings[1].GainLoss.String())
}

func TestImport_MissingColumnsBeforeRows(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Import(context.Background(), interfaces.ImportRequest{
		UserID:       "alice",
		SnapshotDate: time.Now(),
		Body:         strings.NewReader("Symbol,Name,Quantity,Account Number\nVTI,x,not-a-number,1234\n"),
	})

	var missing *models.MissingColumnsError
	require.True(t, errors.As(err, &missing), "header check runs before row parsing, got %v", err)
}

func TestImport_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	cases := map[string]interfaces.ImportRequest{
		"no user":        {SnapshotDate: now, Body: strings.NewReader(primaryCSV)},
		"no date":        {UserID: "u", Body: strings.NewReader(primaryCSV)},
		"unknown source": {UserID: "u", SnapshotDate: now, Source: "robinhood", Body: strings.NewReader(primaryCSV)},
		"empty file":     {UserID: "u", SnapshotDate: now, Body: strings.NewReader("")},
		"header only":    {UserID: "u", SnapshotDate: now, Body: strings.NewReader(strings.SplitN(primaryCSV, "\n", 2)[0] + "\n")},
	}
	for name, req := range cases {
		_, err := svc.Import(ctx, req)
		var verr *models.ValidationError
		assert.True(t, errors.As(err, &verr), "%s: got %v", name, err)
	}
}

func TestImport_FilenameIsBaseName(t *testing.T) {
	svc, _ := newTestService(t)
	res, err := svc.Import(context.Background(), interfaces.ImportRequest{
		UserID:       "alice",
		SnapshotDate: time.Now(),
		Filename:     `C:\Users\alice\Downloads\export.csv`,
		Body:         strings.NewReader(primaryCSV),
	})
	require.NoError(t, err)
	assert.Equal(t, "export.csv", res.Snapshot.Filename)
}

func TestSnapshots_ScopedToOwner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	res := importPrimary(t, svc, "alice", "2024-01-31")

	_, err := svc.GetSnapshot(ctx, "mallory", res.Snapshot.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.GetHoldings(ctx, "mallory", res.Snapshot.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = svc.DeleteSnapshot(ctx, "mallory", res.Snapshot.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	got, err := svc.GetSnapshot(ctx, "alice", res.Snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Snapshot.ID, got.Snapshot.ID)
	assert.Equal(t, "4000", got.Metrics.TotalMarketValue.String())
}

func TestSnapshots_ListOrderAndDeleteCascade(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	clock := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	later := importPrimary(t, svc, "alice", "2024-03-01")
	sameDayFirst := importPrimary(t, svc, "alice", "2024-01-01")
	sameDaySecond := importPrimary(t, svc, "alice", "2024-01-01")

	list, err := svc.ListSnapshots(ctx, "alice", "")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, sameDayFirst.Snapshot.ID, list[0].Snapshot.ID)
	assert.Equal(t, sameDaySecond.Snapshot.ID, list[1].Snapshot.ID, "same-day ties keep import order")
	assert.Equal(t, later.Snapshot.ID, list[2].Snapshot.ID)

	require.NoError(t, svc.DeleteSnapshot(ctx, "alice", later.Snapshot.ID))
	holdings, err := store.SnapshotStore().HoldingsFor(ctx, later.Snapshot.ID)
	require.NoError(t, err)
	assert.Empty(t, holdings)
	_, err = store.SnapshotStore().MetricsFor(ctx, later.Snapshot.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGetAllocation(t *testing.T) {
	svc, _ := newTestService(t)
	res := importPrimary(t, svc, "alice", "2024-01-31")

	alloc, err := svc.GetAllocation(context.Background(), "alice", res.Snapshot.ID)
	require.NoError(t, err)
	require.Len(t, alloc, 2)
	assert.Equal(t, "Equity", alloc[0].Category)
	assert.Equal(t, "62.5", alloc[0].WeightPct.String())
	assert.Equal(t, "Fixed Income", alloc[1].Category)
}

type failingSnapshotStore struct {
	interfaces.SnapshotStore
}

func (failingSnapshotStore) CreateSnapshot(context.Context, *models.Snapshot, []*models.HoldingRecord, *models.PortfolioMetrics) error {
	return models.NewPersistenceError("create snapshot", errors.New("connection refused"))
}

type failingManager struct {
	*memory.Manager
}

func (m failingManager) SnapshotStore() interfaces.SnapshotStore {
	return failingSnapshotStore{m.Manager.SnapshotStore()}
}

func TestImport_PersistenceErrorPropagates(t *testing.T) {
	svc := NewService(failingManager{memory.NewManager()}, common.NewSilentLogger())

	_, err := svc.Import(context.Background(), interfaces.ImportRequest{
		UserID:       "alice",
		SnapshotDate: time.Now(),
		Body:         strings.NewReader(primaryCSV),
	})

	var perr *models.PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "create snapshot", perr.Op)
}
