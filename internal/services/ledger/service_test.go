package ledger

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
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*Service, *memory.Manager) {
	store := memory.NewManager()
	return NewService(store, common.NewSilentLogger()), store
}

func TestCreateAccount_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, "u", interfaces.AccountInput{Institution: "Bank", Name: "", Type: "Savings"})
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "name", verr.Field)

	_, err = svc.CreateAccount(ctx, "u", interfaces.AccountInput{Institution: strings.Repeat("x", 201), Name: "n", Type: "t"})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "institution", verr.Field)
}

func TestAccountLifecycle(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	clock := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	acct, err := svc.CreateAccount(ctx, "alice", interfaces.AccountInput{Institution: "First Bank", Name: " Home loan ", Type: "Mortgage"})
	require.NoError(t, err)
	assert.True(t, acct.Active)
	assert.True(t, acct.IsLiability())
	assert.Equal(t, "Home loan", acct.Name)

	_, err = svc.RecordValue(ctx, "alice", acct.ID, interfaces.EntryInput{Value: decimal.RequireFromString("250000.005")})
	require.NoError(t, err)

	clock = clock.AddDate(0, 1, 0)
	latest, err := svc.RecordValue(ctx, "alice", acct.ID, interfaces.EntryInput{Value: decimal.RequireFromString("249000"), Note: "payment"})
	require.NoError(t, err)

	backdated, err := svc.RecordValue(ctx, "alice", acct.ID, interfaces.EntryInput{
		Value:      decimal.RequireFromString("251000"),
		RecordedAt: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	entries, err := svc.ListEntries(ctx, "alice", acct.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, latest.ID, entries[0].ID, "newest first")
	assert.Equal(t, "250000.01", entries[1].Value.String(), "rounded to cents half away from zero")
	assert.Equal(t, backdated.ID, entries[2].ID)

	view, err := svc.GetAccount(ctx, "alice", acct.ID)
	require.NoError(t, err)
	require.True(t, view.CurrentValue.Valid)
	assert.Equal(t, "249000", view.CurrentValue.Decimal.String())
	assert.True(t, view.Liability)

	inactive := false
	updated, err := svc.UpdateAccount(ctx, "alice", acct.ID, interfaces.AccountUpdate{Active: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Equal(t, "Home loan", updated.Name, "unset fields unchanged")

	require.NoError(t, svc.DeleteAccount(ctx, "alice", acct.ID))
	left, err := store.AccountStore().ListEntries(ctx, acct.ID)
	require.NoError(t, err)
	assert.Empty(t, left, "entries deleted with the account")
}

func TestAccounts_ScopedToOwner(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	acct, err := svc.CreateAccount(ctx, "alice", interfaces.AccountInput{Institution: "Bank", Name: "Savings", Type: "Savings"})
	require.NoError(t, err)

	_, err = svc.GetAccount(ctx, "mallory", acct.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = svc.RecordValue(ctx, "mallory", acct.ID, interfaces.EntryInput{Value: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = svc.ListEntries(ctx, "mallory", acct.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteAccount(ctx, "mallory", acct.ID), models.ErrNotFound)

	list, err := svc.ListAccounts(ctx, "mallory")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListAccounts_CurrentValues(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	bank, err := svc.CreateAccount(ctx, "alice", interfaces.AccountInput{Institution: "Bank", Name: "Savings", Type: "Savings"})
	require.NoError(t, err)
	_, err = svc.CreateAccount(ctx, "alice", interfaces.AccountInput{Institution: "Bank", Name: "Visa", Type: "Credit Card"})
	require.NoError(t, err)

	_, err = svc.RecordValue(ctx, "alice", bank.ID, interfaces.EntryInput{Value: decimal.NewFromInt(500)})
	require.NoError(t, err)

	views, err := svc.ListAccounts(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, views, 2)

	byName := map[string]models.ExternalAccountView{}
	for _, v := range views {
		byName[v.Name] = v
	}
	assert.Equal(t, "500", byName["Savings"].CurrentValue.Decimal.String())
	assert.False(t, byName["Visa"].CurrentValue.Valid, "no entries means no current value")
	assert.True(t, byName["Visa"].Liability)
}

func TestRecordValue_Limits(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	acct, err := svc.CreateAccount(ctx, "alice", interfaces.AccountInput{Institution: "Bank", Name: "Savings", Type: "Savings"})
	require.NoError(t, err)

	_, err = svc.RecordValue(ctx, "alice", acct.ID, interfaces.EntryInput{Value: decimal.New(2, 15)})
	var verr *models.ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = svc.RecordValue(ctx, "alice", acct.ID, interfaces.EntryInput{Value: decimal.NewFromInt(1), Note: strings.Repeat("n", 1001)})
	assert.True(t, errors.As(err, &verr))
}

func TestLoad(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	acct, err := svc.CreateAccount(ctx, "alice", interfaces.AccountInput{Institution: "Bank", Name: "Savings", Type: "Savings"})
	require.NoError(t, err)
	_, err = svc.RecordValue(ctx, "alice", acct.ID, interfaces.EntryInput{Value: decimal.NewFromInt(42), RecordedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	l, err := Load(ctx, store.AccountStore(), "alice")
	require.NoError(t, err)
	v, ok := l.ValueAsOf(acct.ID, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), false)
	require.True(t, ok)
	assert.Equal(t, "42", v.String())
}
