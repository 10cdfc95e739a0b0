package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies an account. Suspense accounts act as a system
// cash drawer and are exempt from the overdraft check.
type AccountType string

const (
	AccountTypeSystem   AccountType = "System"
	AccountTypeSavings  AccountType = "Savings"
	AccountTypeCurrent  AccountType = "Current"
	AccountTypeSuspense AccountType = "Suspense"
)

// CreditDebitIndicator marks which side of a posting a leg is on.
type CreditDebitIndicator string

const (
	Debit  CreditDebitIndicator = "Debit"
	Credit CreditDebitIndicator = "Credit"
)

// MoneyScale is the fixed scale of all monetary amounts. Rounding is
// half-up.
const MoneyScale = 2

// Account is the state of one account aggregate. It is rebuilt by
// replaying the account's event log; the event log owns the truth.
type Account struct {
	AccountNumber string          `json:"account_number"`
	AccountName   string          `json:"account_name"`
	AccountType   AccountType     `json:"account_type"`
	CurrencyCode  string          `json:"currency_code"`
	Balance       decimal.Decimal `json:"balance"`
	Timestamp     time.Time       `json:"timestamp"`
}

// NewInitialAccount returns the sentinel state an aggregate holds before
// its first create-type command. The sentinel account number can never
// collide with a real one, so AddAccount's idempotency check is safe.
func NewInitialAccount() Account {
	return Account{
		AccountNumber: "init",
		AccountName:   "init",
		AccountType:   AccountTypeSystem,
		CurrencyCode:  "NON",
		Balance:       decimal.Zero.Round(MoneyScale),
		Timestamp:     time.Now(),
	}
}

// Scale normalizes d to the money scale with half-up rounding.
func Scale(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}
