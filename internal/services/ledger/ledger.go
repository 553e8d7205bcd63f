package ledger

import (
	"sort"
	"time"

	"github.com/bobmcallan/tally/internal/models"
	"github.com/shopspring/decimal"
)

// Ledger is a read-only, request-scoped view of a user's external accounts
// and their balance history. A nil *Ledger behaves as an empty ledger.
type Ledger struct {
	accounts []models.ExternalAccount
	entries  map[string][]models.ExternalAccountEntry // per account, newest first
}

// New builds a ledger. Entries for accounts not in the list are ignored.
func New(accounts []*models.ExternalAccount, entries []*models.ExternalAccountEntry) *Ledger {
	l := &Ledger{entries: make(map[string][]models.ExternalAccountEntry)}

	known := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		l.accounts = append(l.accounts, *a)
		known[a.ID] = true
	}
	sort.SliceStable(l.accounts, func(i, j int) bool { return l.accounts[i].ID < l.accounts[j].ID })

	for _, e := range entries {
		if known[e.AccountID] {
			l.entries[e.AccountID] = append(l.entries[e.AccountID], *e)
		}
	}
	for id := range l.entries {
		list := l.entries[id]
		sort.SliceStable(list, func(i, j int) bool { return list[i].RecordedAt.After(list[j].RecordedAt) })
	}
	return l
}

// endOfDay is the exclusive upper bound for entries known "as of" date:
// midnight UTC at the start of the following calendar day.
func endOfDay(date time.Time) time.Time {
	return models.StartOfDay(date).AddDate(0, 0, 1)
}

// EntryAsOf returns the entry that determines an account's value on date:
// the one with the latest RecordedAt before the end of that UTC day, or the
// latest entry overall when includeFuture is set.
func (l *Ledger) EntryAsOf(accountID string, date time.Time, includeFuture bool) (*models.ExternalAccountEntry, bool) {
	if l == nil {
		return nil, false
	}
	bound := endOfDay(date)

	var best *models.ExternalAccountEntry
	list := l.entries[accountID]
	for i := range list {
		e := &list[i]
		if !includeFuture && !e.RecordedAt.Before(bound) {
			continue
		}
		if best == nil || e.RecordedAt.After(best.RecordedAt) {
			best = e
		}
	}
	if best == nil {
		return nil, false
	}
	cp := *best
	return &cp, true
}

// ValueAsOf returns an account's value on date. The bool is false when no
// entry qualifies; absent is not zero.
func (l *Ledger) ValueAsOf(accountID string, date time.Time, includeFuture bool) (decimal.Decimal, bool) {
	e, ok := l.EntryAsOf(accountID, date, includeFuture)
	if !ok {
		return decimal.Zero, false
	}
	return e.Value, true
}

// CurrentValue returns the account's latest recorded value.
func (l *Ledger) CurrentValue(accountID string) (decimal.Decimal, bool) {
	return l.ValueAsOf(accountID, time.Time{}, true)
}

// Totals sums asset and debt accounts separately as of date. Debt counts by
// magnitude, so a mortgage stored as 2000 or -2000 contributes 2000. Each
// total is invalid (null) when no account of that kind had a value.
func (l *Ledger) Totals(date time.Time, includeFuture bool) (assets, debt decimal.NullDecimal) {
	return l.totals(date, includeFuture, false)
}

// LiveTotals is Totals with every account's latest value, skipping inactive
// accounts.
func (l *Ledger) LiveTotals() (assets, debt decimal.NullDecimal) {
	return l.totals(time.Time{}, true, true)
}

func (l *Ledger) totals(date time.Time, includeFuture, activeOnly bool) (assets, debt decimal.NullDecimal) {
	if l == nil {
		return
	}
	for _, a := range l.accounts {
		if activeOnly && !a.Active {
			continue
		}
		v, ok := l.ValueAsOf(a.ID, date, includeFuture)
		if !ok {
			continue
		}
		if a.IsLiability() {
			debt = decimal.NewNullDecimal(debt.Decimal.Add(v.Abs()))
		} else {
			assets = decimal.NewNullDecimal(assets.Decimal.Add(v))
		}
	}
	return assets, debt
}

// HasEntries reports whether any account has at least one entry.
func (l *Ledger) HasEntries() bool {
	if l == nil {
		return false
	}
	for _, list := range l.entries {
		if len(list) > 0 {
			return true
		}
	}
	return false
}

// EntryDays returns the distinct UTC calendar days on which any entry was
// recorded, ascending.
func (l *Ledger) EntryDays() []time.Time {
	if l == nil {
		return nil
	}
	seen := make(map[string]time.Time)
	for _, list := range l.entries {
		for _, e := range list {
			day := models.StartOfDay(e.RecordedAt)
			seen[models.DateKey(day)] = day
		}
	}
	days := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
