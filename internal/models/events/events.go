// Package events defines the persisted event variants of the account
// aggregate. The set is closed: the event store, the replay fold and the
// stream translator all switch over exactly these types.
package events

import (
	"time"

	"github.com/globalbank/bookentry/internal/models"
	"github.com/shopspring/decimal"
)

// Event type names, used as the discriminator in storage and on the
// wire.
const (
	TypeAccountAdded          = "AccountAdded"
	TypeAccountDetailsChanged = "AccountDetailsChanged"
	TypePostAdded             = "PostAdded"
)

// Event is one immutable fact in an account's append-only log.
type Event interface {
	EventType() string
	AggregateID() string
}

// AccountAdded records the creation of an account with a zero balance.
type AccountAdded struct {
	AccountNumber string             `json:"account_number"`
	AccountName   string             `json:"account_name"`
	AccountType   models.AccountType `json:"account_type"`
	CurrencyCode  string             `json:"currency_code"`
	Timestamp     time.Time          `json:"timestamp"`
}

func (e AccountAdded) EventType() string   { return TypeAccountAdded }
func (e AccountAdded) AggregateID() string { return e.AccountNumber }

// AccountDetailsChanged records a metadata update. Balance and currency
// are unaffected.
type AccountDetailsChanged struct {
	AccountNumber string             `json:"account_number"`
	AccountName   string             `json:"account_name"`
	AccountType   models.AccountType `json:"account_type"`
	CurrencyCode  string             `json:"currency_code"`
	Timestamp     time.Time          `json:"timestamp"`
}

func (e AccountDetailsChanged) EventType() string   { return TypeAccountDetailsChanged }
func (e AccountDetailsChanged) AggregateID() string { return e.AccountNumber }

// PostAdded records one applied posting leg. Amount is signed (negative
// for debits). Balance is the running total after this posting; it is a
// derived snapshot and must always equal the sum of all signed amounts
// applied so far.
type PostAdded struct {
	AccountNumber string          `json:"account_number"`
	Reference     string          `json:"reference"`
	Narrative     string          `json:"narrative"`
	CurrencyCode  string          `json:"currency_code"`
	Amount        decimal.Decimal `json:"amount"`
	Balance       decimal.Decimal `json:"balance"`
	Timestamp     time.Time       `json:"timestamp"`
}

func (e PostAdded) EventType() string   { return TypePostAdded }
func (e PostAdded) AggregateID() string { return e.AccountNumber }
