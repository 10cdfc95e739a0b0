package models

import "github.com/shopspring/decimal"

// Command is a request addressed to one account aggregate. Commands are
// ephemeral; only the events they produce are persisted. Validate runs
// fail-fast null checks before the command reaches the aggregate.
type Command interface {
	Key() string
	Validate() error
}

// AddAccount creates an account, or acks without an event if the
// aggregate already carries that identity.
type AddAccount struct {
	AccountNumber string
	AccountName   string
	AccountType   AccountType
	CurrencyCode  string
}

func (c AddAccount) Key() string { return c.AccountNumber }

func (c AddAccount) Validate() error {
	if err := requireField("accountNumber", c.AccountNumber); err != nil {
		return err
	}
	if err := requireField("accountName", c.AccountName); err != nil {
		return err
	}
	if err := requireField("accountType", string(c.AccountType)); err != nil {
		return err
	}
	return requireField("currencyCode", c.CurrencyCode)
}

// UpdateAccount changes account metadata, preserving balance and
// currency.
type UpdateAccount struct {
	AccountNumber string
	AccountName   string
	AccountType   AccountType
}

func (c UpdateAccount) Key() string { return c.AccountNumber }

func (c UpdateAccount) Validate() error {
	if err := requireField("accountNumber", c.AccountNumber); err != nil {
		return err
	}
	if err := requireField("accountName", c.AccountName); err != nil {
		return err
	}
	return requireField("accountType", string(c.AccountType))
}

// ReadAccount is a pure query; it emits no event.
type ReadAccount struct {
	AccountNumber string
}

func (c ReadAccount) Key() string { return c.AccountNumber }

func (c ReadAccount) Validate() error {
	return requireField("accountNumber", c.AccountNumber)
}

// GetOrInitSuspenseAccount returns the current snapshot if the account
// is already a suspense account, otherwise creates it with type forced
// to Suspense. Serialized command handling per account number makes the
// check-then-create race-free.
type GetOrInitSuspenseAccount struct {
	AccountNumber string
	AccountName   string
	CurrencyCode  string
}

func (c GetOrInitSuspenseAccount) Key() string { return c.AccountNumber }

func (c GetOrInitSuspenseAccount) Validate() error {
	if err := requireField("accountNumber", c.AccountNumber); err != nil {
		return err
	}
	if err := requireField("accountName", c.AccountName); err != nil {
		return err
	}
	return requireField("currencyCode", c.CurrencyCode)
}

// AddPost applies one posting leg. Amount is unsigned; the indicator
// determines the sign of the persisted amount.
type AddPost struct {
	AccountNumber        string
	Reference            string
	Narrative            string
	CurrencyCode         string
	CreditDebitIndicator CreditDebitIndicator
	Amount               decimal.Decimal
}

func (c AddPost) Key() string { return c.AccountNumber }

func (c AddPost) Validate() error {
	if err := requireField("accountNumber", c.AccountNumber); err != nil {
		return err
	}
	if err := requireField("reference", c.Reference); err != nil {
		return err
	}
	if err := requireField("narrative", c.Narrative); err != nil {
		return err
	}
	if err := requireField("currencyCode", c.CurrencyCode); err != nil {
		return err
	}
	return requireField("creditDebitIndicator", string(c.CreditDebitIndicator))
}
