// Package stream defines the published event forms consumed from the
// account event topic. They are kept separate from the persisted events
// so the two contracts can evolve independently.
package stream

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TypeAccountAdded          = "AccountAdded"
	TypeAccountDetailsChanged = "AccountDetailsChanged"
	TypePostAdded             = "PostAdded"
)

// Envelope is the wire form of one published event. Sequence is the
// per-account append index; together with the account number it gives
// projectors a natural idempotency key under at-least-once delivery.
type Envelope struct {
	EventType     string          `json:"event_type"`
	AccountNumber string          `json:"account_number"`
	Sequence      int64           `json:"sequence"`
	AccountName   string          `json:"account_name,omitempty"`
	AccountType   string          `json:"account_type,omitempty"`
	CurrencyCode  string          `json:"currency_code,omitempty"`
	Reference     string          `json:"reference,omitempty"`
	Narrative     string          `json:"narrative,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Balance       decimal.Decimal `json:"balance"`
	Timestamp     time.Time       `json:"timestamp"`
}

// AccountRow is the read-model projection of an account.
type AccountRow struct {
	AccountNumber string    `json:"account_number"`
	AccountName   string    `json:"account_name"`
	AccountType   string    `json:"account_type"`
	CurrencyCode  string    `json:"currency_code"`
	DateCreated   time.Time `json:"date_created"`
}

// PostRow is the read-model projection of one posting leg.
type PostRow struct {
	PostID        string          `json:"post_id"`
	AccountNumber string          `json:"account_number"`
	Reference     string          `json:"reference"`
	Narrative     string          `json:"narrative"`
	Amount        decimal.Decimal `json:"amount"`
	Balance       decimal.Decimal `json:"balance"`
	DateCreated   time.Time       `json:"date_created"`
}
