package sqldb

import (
	"time"

	"github.com/bobmcallan/tally/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type snapshotRow struct {
	ID               string          `gorm:"primaryKey;size:64"`
	UserID           string          `gorm:"size:128;not null;index:idx_snapshots_user_source"`
	Source           string          `gorm:"size:32;not null;index:idx_snapshots_user_source"`
	SnapshotDate     datatypes.Date  `gorm:"not null"`
	Filename         string          `gorm:"size:255"`
	RecordCount      int             `gorm:"not null"`
	ImportedAt       time.Time       `gorm:"not null"`
	TotalMarketValue decimal.Decimal `gorm:"type:numeric(24,6);not null"`
	TotalBookValue   decimal.Decimal `gorm:"type:numeric(24,6);not null"`
	TotalGainLoss    decimal.Decimal `gorm:"type:numeric(24,6);not null"`
	TotalGainLossPct decimal.Decimal `gorm:"type:numeric(16,4);not null"`
	HoldingsCount    int             `gorm:"not null"`
	AccountsCount    int             `gorm:"not null"`
}

func (snapshotRow) TableName() string { return "snapshots" }

func newSnapshotRow(s *models.Snapshot, m *models.PortfolioMetrics) snapshotRow {
	return snapshotRow{
		ID:               s.ID,
		UserID:           s.UserID,
		Source:           string(s.Source),
		SnapshotDate:     datatypes.Date(models.StartOfDay(s.SnapshotDate)),
		Filename:         s.Filename,
		RecordCount:      s.RecordCount,
		ImportedAt:       s.ImportedAt.UTC(),
		TotalMarketValue: m.TotalMarketValue,
		TotalBookValue:   m.TotalBookValue,
		TotalGainLoss:    m.TotalGainLoss,
		TotalGainLossPct: m.TotalGainLossPct,
		HoldingsCount:    m.HoldingsCount,
		AccountsCount:    m.AccountsCount,
	}
}

func (r snapshotRow) snapshot() *models.Snapshot {
	return &models.Snapshot{
		ID:           r.ID,
		UserID:       r.UserID,
		Source:       models.Source(r.Source),
		SnapshotDate: models.StartOfDay(time.Time(r.SnapshotDate)),
		Filename:     r.Filename,
		RecordCount:  r.RecordCount,
		ImportedAt:   r.ImportedAt.UTC(),
	}
}

func (r snapshotRow) metrics() *models.PortfolioMetrics {
	return &models.PortfolioMetrics{
		SnapshotID:       r.ID,
		TotalMarketValue: r.TotalMarketValue,
		TotalBookValue:   r.TotalBookValue,
		TotalGainLoss:    r.TotalGainLoss,
		TotalGainLossPct: r.TotalGainLossPct,
		HoldingsCount:    r.HoldingsCount,
		AccountsCount:    r.AccountsCount,
	}
}

type holdingRow struct {
	ID              uint                `gorm:"primaryKey"`
	SnapshotID      string              `gorm:"size:64;not null;index"`
	Row             int                 `gorm:"column:row_num;not null"`
	Source          string              `gorm:"size:32;not null"`
	Symbol          *string             `gorm:"size:64"`
	Name            string              `gorm:"size:255"`
	Category        string              `gorm:"size:128"`
	AccountLabel    string              `gorm:"size:128"`
	Quantity        decimal.NullDecimal `gorm:"type:numeric(24,6)"`
	Price           decimal.NullDecimal `gorm:"type:numeric(24,4)"`
	BookValue       decimal.NullDecimal `gorm:"type:numeric(24,2)"`
	MarketValue     decimal.NullDecimal `gorm:"type:numeric(24,2)"`
	GainLoss        decimal.NullDecimal `gorm:"type:numeric(24,2)"`
	GainLossPct     decimal.NullDecimal `gorm:"type:numeric(16,4)"`
	PortfolioWeight decimal.NullDecimal `gorm:"type:numeric(16,4)"`
}

func (holdingRow) TableName() string { return "holdings" }

func nullable(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func pointer(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}

func newHoldingRow(snapshotID string, h *models.HoldingRecord) holdingRow {
	return holdingRow{
		SnapshotID:      snapshotID,
		Row:             h.Row,
		Source:          string(h.Source),
		Symbol:          h.Symbol,
		Name:            h.Name,
		Category:        h.Category,
		AccountLabel:    h.AccountLabel,
		Quantity:        nullable(h.Quantity),
		Price:           nullable(h.Price),
		BookValue:       nullable(h.BookValue),
		MarketValue:     nullable(h.MarketValue),
		GainLoss:        nullable(h.GainLoss),
		GainLossPct:     nullable(h.GainLossPct),
		PortfolioWeight: nullable(h.PortfolioWeight),
	}
}

func (r holdingRow) holding() *models.HoldingRecord {
	return &models.HoldingRecord{
		SnapshotID:      r.SnapshotID,
		Source:          models.Source(r.Source),
		Row:             r.Row,
		Symbol:          r.Symbol,
		Name:            r.Name,
		Category:        r.Category,
		AccountLabel:    r.AccountLabel,
		Quantity:        pointer(r.Quantity),
		Price:           pointer(r.Price),
		BookValue:       pointer(r.BookValue),
		MarketValue:     pointer(r.MarketValue),
		GainLoss:        pointer(r.GainLoss),
		GainLossPct:     pointer(r.GainLossPct),
		PortfolioWeight: pointer(r.PortfolioWeight),
	}
}

type accountRow struct {
	ID          string    `gorm:"primaryKey;size:64"`
	UserID      string    `gorm:"size:128;not null;index"`
	Institution string    `gorm:"size:200;not null"`
	Name        string    `gorm:"size:200;not null"`
	Type        string    `gorm:"size:200;not null"`
	Active      bool      `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (accountRow) TableName() string { return "external_accounts" }

func newAccountRow(a *models.ExternalAccount) accountRow {
	return accountRow{
		ID:          a.ID,
		UserID:      a.UserID,
		Institution: a.Institution,
		Name:        a.Name,
		Type:        a.Type,
		Active:      a.Active,
		CreatedAt:   a.CreatedAt.UTC(),
	}
}

func (r accountRow) account() *models.ExternalAccount {
	return &models.ExternalAccount{
		ID:          r.ID,
		UserID:      r.UserID,
		Institution: r.Institution,
		Name:        r.Name,
		Type:        r.Type,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

type entryRow struct {
	ID         string          `gorm:"primaryKey;size:64"`
	AccountID  string          `gorm:"size:64;not null;index"`
	Value      decimal.Decimal `gorm:"type:numeric(24,2);not null"`
	Note       string          `gorm:"size:1000"`
	RecordedAt time.Time       `gorm:"not null;index"`
}

func (entryRow) TableName() string { return "account_entries" }

func (r entryRow) entry() *models.ExternalAccountEntry {
	return &models.ExternalAccountEntry{
		ID:         r.ID,
		AccountID:  r.AccountID,
		Value:      r.Value,
		Note:       r.Note,
		RecordedAt: r.RecordedAt.UTC(),
	}
}
