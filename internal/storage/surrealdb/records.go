package surrealdb

import (
	"fmt"
	"time"

	"github.com/bobmcallan/tally/internal/models"
	"github.com/shopspring/decimal"
)

// Decimals are stored as strings so no value passes through float64.

// snapshotRecord is a snapshot row with its metrics inlined.
type snapshotRecord struct {
	SnapshotID       string    `json:"snapshot_id"`
	UserID           string    `json:"user_id"`
	Source           string    `json:"source"`
	SnapshotDate     string    `json:"snapshot_date"`
	Filename         string    `json:"filename"`
	RecordCount      int       `json:"record_count"`
	ImportedAt       time.Time `json:"imported_at"`
	TotalMarketValue string    `json:"total_market_value"`
	TotalBookValue   string    `json:"total_book_value"`
	TotalGainLoss    string    `json:"total_gain_loss"`
	TotalGainLossPct string    `json:"total_gain_loss_pct"`
	HoldingsCount    int       `json:"holdings_count"`
	AccountsCount    int       `json:"accounts_count"`
}

const snapshotSelectFields = `snapshot_id, user_id, source, snapshot_date, filename, record_count,
	imported_at, total_market_value, total_book_value, total_gain_loss, total_gain_loss_pct,
	holdings_count, accounts_count`

func (r snapshotRecord) snapshot() (*models.Snapshot, error) {
	date, err := time.Parse("2006-01-02", r.SnapshotDate)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: bad date %q: %w", r.SnapshotID, r.SnapshotDate, err)
	}
	return &models.Snapshot{
		ID:           r.SnapshotID,
		UserID:       r.UserID,
		Source:       models.Source(r.Source),
		SnapshotDate: date,
		Filename:     r.Filename,
		RecordCount:  r.RecordCount,
		ImportedAt:   r.ImportedAt.UTC(),
	}, nil
}

func (r snapshotRecord) metrics() (*models.PortfolioMetrics, error) {
	vals, err := parseDecimals(r.TotalMarketValue, r.TotalBookValue, r.TotalGainLoss, r.TotalGainLossPct)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s metrics: %w", r.SnapshotID, err)
	}
	return &models.PortfolioMetrics{
		SnapshotID:       r.SnapshotID,
		TotalMarketValue: vals[0],
		TotalBookValue:   vals[1],
		TotalGainLoss:    vals[2],
		TotalGainLossPct: vals[3],
		HoldingsCount:    r.HoldingsCount,
		AccountsCount:    r.AccountsCount,
	}, nil
}

func parseDecimals(raw ...string) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(raw))
	for i, s := range raw {
		if s == "" {
			continue
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

// holdingRecord is one stored holding row. Nil pointers are stored as NULL.
type holdingRecord struct {
	SnapshotID      string  `json:"snapshot_id"`
	Row             int     `json:"row"`
	Source          string  `json:"source"`
	Symbol          *string `json:"symbol"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	AccountLabel    string  `json:"account_label"`
	Quantity        *string `json:"quantity"`
	Price           *string `json:"price"`
	BookValue       *string `json:"book_value"`
	MarketValue     *string `json:"market_value"`
	GainLoss        *string `json:"gain_loss"`
	GainLossPct     *string `json:"gain_loss_pct"`
	PortfolioWeight *string `json:"portfolio_weight_pct"`
}

func decString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func stringDec(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func toHoldingRecord(snapshotID string, h *models.HoldingRecord) holdingRecord {
	return holdingRecord{
		SnapshotID:      snapshotID,
		Row:             h.Row,
		Source:          string(h.Source),
		Symbol:          h.Symbol,
		Name:            h.Name,
		Category:        h.Category,
		AccountLabel:    h.AccountLabel,
		Quantity:        decString(h.Quantity),
		Price:           decString(h.Price),
		BookValue:       decString(h.BookValue),
		MarketValue:     decString(h.MarketValue),
		GainLoss:        decString(h.GainLoss),
		GainLossPct:     decString(h.GainLossPct),
		PortfolioWeight: decString(h.PortfolioWeight),
	}
}

func (r holdingRecord) holding() (*models.HoldingRecord, error) {
	h := &models.HoldingRecord{
		SnapshotID:   r.SnapshotID,
		Source:       models.Source(r.Source),
		Row:          r.Row,
		Symbol:       r.Symbol,
		Name:         r.Name,
		Category:     r.Category,
		AccountLabel: r.AccountLabel,
	}
	targets := []struct {
		dst **decimal.Decimal
		src *string
	}{
		{&h.Quantity, r.Quantity},
		{&h.Price, r.Price},
		{&h.BookValue, r.BookValue},
		{&h.MarketValue, r.MarketValue},
		{&h.GainLoss, r.GainLoss},
		{&h.GainLossPct, r.GainLossPct},
		{&h.PortfolioWeight, r.PortfolioWeight},
	}
	for _, t := range targets {
		d, err := stringDec(t.src)
		if err != nil {
			return nil, fmt.Errorf("holding %s/%d: %w", r.SnapshotID, r.Row, err)
		}
		*t.dst = d
	}
	return h, nil
}

type accountRecord struct {
	AccountID   string    `json:"account_id"`
	UserID      string    `json:"user_id"`
	Institution string    `json:"institution"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

const accountSelectFields = "account_id, user_id, institution, name, type, active, created_at"

func (r accountRecord) account() *models.ExternalAccount {
	return &models.ExternalAccount{
		ID:          r.AccountID,
		UserID:      r.UserID,
		Institution: r.Institution,
		Name:        r.Name,
		Type:        r.Type,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

type entryRecord struct {
	EntryID    string    `json:"entry_id"`
	AccountID  string    `json:"account_id"`
	UserID     string    `json:"user_id"`
	Value      string    `json:"value"`
	Note       string    `json:"note"`
	RecordedAt time.Time `json:"recorded_at"`
}

const entrySelectFields = "entry_id, account_id, user_id, value, note, recorded_at"

func (r entryRecord) entry() (*models.ExternalAccountEntry, error) {
	v, err := decimal.NewFromString(r.Value)
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", r.EntryID, err)
	}
	return &models.ExternalAccountEntry{
		ID:         r.EntryID,
		AccountID:  r.AccountID,
		Value:      v,
		Note:       r.Note,
		RecordedAt: r.RecordedAt.UTC(),
	}, nil
}
