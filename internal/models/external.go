package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Account types that are tracked as debts. Every other type is an asset.
var liabilityAccountTypes = map[string]bool{
	"mortgage":       true,
	"loan":           true,
	"credit card":    true,
	"line of credit": true,
}

// IsLiabilityType reports whether an account type is a debt (case-insensitive).
func IsLiabilityType(accountType string) bool {
	return liabilityAccountTypes[strings.ToLower(strings.TrimSpace(accountType))]
}

// ExternalAccount is a manually tracked account outside the imported sources
// (bank account, house, mortgage, ...).
type ExternalAccount struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Institution string    `json:"institution"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsLiability reports whether the account is a debt.
func (a ExternalAccount) IsLiability() bool {
	return IsLiabilityType(a.Type)
}

// ExternalAccountEntry is one immutable balance observation. Entries are
// append-only; the latest RecordedAt is the account's current value.
// Debt balances are stored as positive magnitudes.
type ExternalAccountEntry struct {
	ID         string          `json:"id"`
	AccountID  string          `json:"account_id"`
	Value      decimal.Decimal `json:"value"`
	Note       string          `json:"note,omitempty"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// ExternalAccountView is an account with its current (latest) value resolved.
type ExternalAccountView struct {
	ExternalAccount
	Liability    bool                `json:"liability"`
	CurrentValue decimal.NullDecimal `json:"current_value"`
	LastUpdated  *time.Time          `json:"last_updated,omitempty"`
}
