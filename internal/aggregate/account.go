// Package aggregate implements the event-sourced account aggregate and
// the registry that guarantees one active processor per account number.
//
// An aggregate is interacted with by sending it commands through the
// registry. Commands get translated to events, and it is the events
// that get persisted. Each event has an apply step that folds it into
// the current state; the same fold runs when the aggregate is replayed
// from its event log, so in-memory state is only ever a cache of the
// log.
package aggregate

import (
	"time"

	"github.com/globalbank/bookentry/internal/models"
	"github.com/globalbank/bookentry/internal/models/events"
	"github.com/shopspring/decimal"
)

// Ack is the reply to commands that carry no payload back.
type Ack struct{}

// Account holds one account's replayed state and decides what event, if
// any, each command produces. It is not safe for concurrent use; the
// registry serializes all access per account number.
type Account struct {
	state models.Account
}

// NewAccount returns an aggregate in the uninitialized sentinel state.
func NewAccount() *Account {
	return &Account{state: models.NewInitialAccount()}
}

// Snapshot returns the current state.
func (a *Account) Snapshot() models.Account {
	return a.state
}

// DecideAddAccount returns the AccountAdded event to persist, or nil if
// the aggregate already carries this identity (idempotent create).
func (a *Account) DecideAddAccount(cmd models.AddAccount, now time.Time) events.Event {
	if a.state.AccountNumber == cmd.AccountNumber {
		return nil
	}
	return events.AccountAdded{
		AccountNumber: cmd.AccountNumber,
		AccountName:   cmd.AccountName,
		AccountType:   cmd.AccountType,
		CurrencyCode:  cmd.CurrencyCode,
		Timestamp:     now,
	}
}

// DecideUpdateAccount always produces an AccountDetailsChanged event.
// Balance and currency are preserved by the apply step.
func (a *Account) DecideUpdateAccount(cmd models.UpdateAccount, now time.Time) events.Event {
	return events.AccountDetailsChanged{
		AccountNumber: cmd.AccountNumber,
		AccountName:   cmd.AccountName,
		AccountType:   cmd.AccountType,
		CurrencyCode:  a.state.CurrencyCode,
		Timestamp:     now,
	}
}

// DecideGetOrInitSuspense returns nil if the account is already a
// suspense account, otherwise the AccountAdded event with the type
// forced to Suspense. Serialized command handling makes the
// check-then-create race-free.
func (a *Account) DecideGetOrInitSuspense(cmd models.GetOrInitSuspenseAccount, now time.Time) events.Event {
	if a.state.AccountType == models.AccountTypeSuspense {
		return nil
	}
	return events.AccountAdded{
		AccountNumber: cmd.AccountNumber,
		AccountName:   cmd.AccountName,
		AccountType:   models.AccountTypeSuspense,
		CurrencyCode:  cmd.CurrencyCode,
		Timestamp:     now,
	}
}

// DecideAddPost evaluates the overdraft rule and, if the posting is
// allowed, returns the PostAdded event carrying the signed amount and
// the resulting balance. A rejection returns a nil event and the
// business response; nothing is persisted and the balance is unchanged.
// Suspense accounts are exempt from the overdraft check and may go
// negative.
func (a *Account) DecideAddPost(cmd models.AddPost, now time.Time) (events.Event, models.PostingResponse) {
	if cmd.CreditDebitIndicator == models.Debit && a.state.AccountType != models.AccountTypeSuspense {
		if cmd.Amount.GreaterThan(a.state.Balance) {
			return nil, models.PostingResponse{
				ResponseCode:         models.RCInsufficientFunds,
				Narrative:            "Insufficient funds",
				CreditDebitIndicator: cmd.CreditDebitIndicator,
			}
		}
	}

	amount := models.Scale(cmd.Amount)
	if cmd.CreditDebitIndicator == models.Debit {
		amount = amount.Neg()
	}

	evt := events.PostAdded{
		AccountNumber: cmd.AccountNumber,
		Reference:     cmd.Reference,
		Narrative:     cmd.Narrative,
		CurrencyCode:  cmd.CurrencyCode,
		Amount:        amount,
		Balance:       a.state.Balance.Add(amount),
		Timestamp:     now,
	}
	return evt, models.PostingResponse{
		ResponseCode:         models.RCSuccess,
		Narrative:            "Success",
		CreditDebitIndicator: cmd.CreditDebitIndicator,
	}
}

// Apply folds one event into the state. It must stay deterministic:
// replaying the same log always reconstructs the same state.
func (a *Account) Apply(evt events.Event) {
	switch e := evt.(type) {
	case events.AccountAdded:
		a.state = models.Account{
			AccountNumber: e.AccountNumber,
			AccountName:   e.AccountName,
			AccountType:   e.AccountType,
			CurrencyCode:  e.CurrencyCode,
			Balance:       models.Scale(decimal.Zero),
			Timestamp:     e.Timestamp,
		}
	case events.AccountDetailsChanged:
		a.state.AccountName = e.AccountName
		a.state.AccountType = e.AccountType
		a.state.Timestamp = e.Timestamp
	case events.PostAdded:
		a.state.Balance = a.state.Balance.Add(e.Amount)
		a.state.Timestamp = e.Timestamp
	}
}
