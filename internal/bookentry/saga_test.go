package bookentry

import (
	"context"
	"testing"
	"time"

	"github.com/globalbank/bookentry/internal/aggregate"
	storememory "github.com/globalbank/bookentry/internal/eventstore/memory"
	interfaces "github.com/globalbank/bookentry/internal/interfaces"
	"github.com/globalbank/bookentry/internal/models"
	"github.com/globalbank/bookentry/internal/models/events"
	"github.com/globalbank/bookentry/internal/suspense"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	store    *storememory.MemoryEventStore
	registry *aggregate.Registry
	service  *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := storememory.NewMemoryEventStore()
	registry := aggregate.NewRegistry(store, nil, zap.NewNop())
	resolver := suspense.NewResolver(registry, zap.NewNop())
	return &fixture{
		store:    store,
		registry: registry,
		service:  NewService(registry, resolver, DefaultLegTimeout, zap.NewNop()),
	}
}

// newServiceOver builds a service whose posting legs go through bus
// while the suspense resolver keeps talking to the real registry.
func (f *fixture) newServiceOver(bus interfaces.CommandBus, legTimeout time.Duration) *Service {
	resolver := suspense.NewResolver(f.registry, zap.NewNop())
	return NewService(bus, resolver, legTimeout, zap.NewNop())
}

func (f *fixture) addAccount(t *testing.T, number, name string) {
	t.Helper()
	err := f.service.AddAccount(context.Background(), models.AddAccount{
		AccountNumber: number,
		AccountName:   name,
		AccountType:   models.AccountTypeSavings,
		CurrencyCode:  "ZWL",
	})
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, number string) string {
	t.Helper()
	snapshot, err := f.service.ReadAccount(context.Background(), number)
	require.NoError(t, err)
	return snapshot.Balance.StringFixed(2)
}

func (f *fixture) eventLog(t *testing.T, number string) []interfaces.Record {
	t.Helper()
	log, err := f.store.Load(context.Background(), number)
	require.NoError(t, err)
	return log
}

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDepositThenTransfer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addAccount(t, "5", "John Morgan")
	f.addAccount(t, "6", "Jane Morgan")

	resp := f.service.PerformDeposit(ctx, models.DepositRequest{
		Reference:     "DEP-1",
		AccountNumber: "5",
		CurrencyCode:  "ZWL",
		Amount:        amt("20"),
	})
	require.Equal(t, models.RCSuccess, resp.ResponseCode)
	assert.Equal(t, "Success", resp.Narrative)
	assert.Equal(t, "20.00", f.balance(t, "5"))

	// The suspense leg: exactly one debit, balance mirrors the cash out.
	suspLog := f.eventLog(t, "DEP-SUSP-ZWL")
	require.Len(t, suspLog, 2) // AccountAdded + PostAdded
	debit := suspLog[1].Event.(events.PostAdded)
	assert.Equal(t, "-20.00", debit.Amount.StringFixed(2))
	assert.Equal(t, "Cash Deposit", debit.Narrative)

	resp = f.service.PerformTransfer(ctx, models.TransferRequest{
		Reference:          "TRF-1",
		SourceAccount:      "5",
		DestinationAccount: "6",
		CurrencyCode:       "ZWL",
		Amount:             amt("10"),
	})
	require.Equal(t, models.RCSuccess, resp.ResponseCode)
	assert.Equal(t, "10.00", f.balance(t, "5"))
	assert.Equal(t, "10.00", f.balance(t, "6"))
}

func TestInvalidAmountRejectedBeforeAnyAggregate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addAccount(t, "5", "John Morgan")

	for _, amount := range []string{"0", "-5"} {
		resp := f.service.PerformDeposit(ctx, models.DepositRequest{
			Reference:     "DEP-BAD",
			AccountNumber: "5",
			CurrencyCode:  "ZWL",
			Amount:        amt(amount),
		})
		assert.Equal(t, models.RCInvalidAmount, resp.ResponseCode)
		assert.Equal(t, "Invalid amount", resp.Narrative)

		resp = f.service.PerformTransfer(ctx, models.TransferRequest{
			Reference:          "TRF-BAD",
			SourceAccount:      "5",
			DestinationAccount: "6",
			CurrencyCode:       "ZWL",
			Amount:             amt(amount),
		})
		assert.Equal(t, models.RCInvalidAmount, resp.ResponseCode)

		resp = f.service.PerformReversal(ctx, models.ReversalRequest{
			OrgnlReference:          "REV-BAD",
			OrgnlSourceAccount:      "5",
			OrgnlDestinationAccount: "6",
			OrgnlCurrencyCode:       "ZWL",
			OrgnlAmount:             amt(amount),
		})
		assert.Equal(t, models.RCInvalidAmount, resp.ResponseCode)
	}

	// No posting event reached any account; the suspense account was
	// never even initialized.
	assert.Len(t, f.eventLog(t, "5"), 1) // AccountAdded only
	assert.Empty(t, f.eventLog(t, "6"))
	assert.Empty(t, f.eventLog(t, "DEP-SUSP-ZWL"))
}

func TestTransferInsufficientFundsIsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addAccount(t, "5", "John Morgan")
	f.addAccount(t, "6", "Jane Morgan")

	require.Equal(t, models.RCSuccess, f.service.PerformDeposit(ctx, models.DepositRequest{
		Reference:     "DEP-1",
		AccountNumber: "5",
		CurrencyCode:  "ZWL",
		Amount:        amt("5"),
	}).ResponseCode)

	resp := f.service.PerformTransfer(ctx, models.TransferRequest{
		Reference:          "TRF-1",
		SourceAccount:      "5",
		DestinationAccount: "6",
		CurrencyCode:       "ZWL",
		Amount:             amt("10"),
	})

	assert.Equal(t, models.RCInsufficientFunds, resp.ResponseCode)
	assert.Equal(t, "Insufficient funds", resp.Narrative)
	// Debit never applied, credit never attempted.
	assert.Equal(t, "5.00", f.balance(t, "5"))
	assert.Equal(t, "0.00", f.balance(t, "6"))
	assert.Len(t, f.eventLog(t, "6"), 1) // AccountAdded only
}

// rejectCreditBus lets everything through except AddPost credits to the
// target account, which are rejected with a business response code.
type rejectCreditBus struct {
	inner  interfaces.CommandBus
	target string
}

func (b *rejectCreditBus) Ask(ctx context.Context, cmd models.Command) (any, error) {
	if post, ok := cmd.(models.AddPost); ok &&
		post.AccountNumber == b.target && post.CreditDebitIndicator == models.Credit {
		return models.PostingResponse{
			ResponseCode:         models.RCDoNotHonour,
			Narrative:            "Do not honour",
			CreditDebitIndicator: models.Credit,
		}, nil
	}
	return b.inner.Ask(ctx, cmd)
}

func TestCreditRejectionTriggersAutoReversal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addAccount(t, "5", "John Morgan")
	f.addAccount(t, "6", "Jane Morgan")

	require.Equal(t, models.RCSuccess, f.service.PerformDeposit(ctx, models.DepositRequest{
		Reference:     "DEP-1",
		AccountNumber: "5",
		CurrencyCode:  "ZWL",
		Amount:        amt("20"),
	}).ResponseCode)

	service := f.newServiceOver(&rejectCreditBus{inner: f.registry, target: "6"}, DefaultLegTimeout)

	resp := service.PerformTransfer(ctx, models.TransferRequest{
		Reference:          "TRF-1",
		SourceAccount:      "5",
		DestinationAccount: "6",
		CurrencyCode:       "ZWL",
		Amount:             amt("10"),
	})

	// Caller sees the original credit failure, not the compensation.
	assert.Equal(t, models.RCDoNotHonour, resp.ResponseCode)
	assert.Equal(t, "Do not honour", resp.Narrative)

	// Source: deposit credit, debit, compensating credit; balance back
	// to its pre-debit value.
	assert.Equal(t, "20.00", f.balance(t, "5"))
	log := f.eventLog(t, "5")
	require.Len(t, log, 4) // AccountAdded, deposit credit, debit, auto reversal
	reversal := log[3].Event.(events.PostAdded)
	assert.Equal(t, "AUTO REVERSAL", reversal.Narrative)
	assert.Equal(t, "10.00", reversal.Amount.StringFixed(2))

	// Destination untouched.
	assert.Equal(t, "0.00", f.balance(t, "6"))
}

// stallCreditBus blocks AddPost credits to the target account until the
// caller's deadline expires, simulating a transport fault.
type stallCreditBus struct {
	inner  interfaces.CommandBus
	target string
}

func (b *stallCreditBus) Ask(ctx context.Context, cmd models.Command) (any, error) {
	if post, ok := cmd.(models.AddPost); ok &&
		post.AccountNumber == b.target && post.CreditDebitIndicator == models.Credit {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return b.inner.Ask(ctx, cmd)
}

func TestLegFaultMeansNoCompensation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addAccount(t, "5", "John Morgan")
	f.addAccount(t, "6", "Jane Morgan")

	require.Equal(t, models.RCSuccess, f.service.PerformDeposit(ctx, models.DepositRequest{
		Reference:     "DEP-1",
		AccountNumber: "5",
		CurrencyCode:  "ZWL",
		Amount:        amt("20"),
	}).ResponseCode)

	service := f.newServiceOver(&stallCreditBus{inner: f.registry, target: "6"}, 50*time.Millisecond)

	resp := service.PerformTransfer(ctx, models.TransferRequest{
		Reference:          "TRF-1",
		SourceAccount:      "5",
		DestinationAccount: "6",
		CurrencyCode:       "ZWL",
		Amount:             amt("10"),
	})

	assert.Equal(t, models.RCGeneralError, resp.ResponseCode)
	assert.Equal(t, "Posting error", resp.Narrative)

	// The debit stays applied and is NOT blindly compensated; the
	// stranded leg is left for reconciliation.
	assert.Equal(t, "10.00", f.balance(t, "5"))
	log := f.eventLog(t, "5")
	require.Len(t, log, 3) // AccountAdded, deposit credit, debit
	last := log[2].Event.(events.PostAdded)
	assert.Equal(t, "-10.00", last.Amount.StringFixed(2))
}

func TestReversalSwapsSourceAndDestination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addAccount(t, "5", "John Morgan")
	f.addAccount(t, "6", "Jane Morgan")

	require.Equal(t, models.RCSuccess, f.service.PerformDeposit(ctx, models.DepositRequest{
		Reference:     "DEP-1",
		AccountNumber: "5",
		CurrencyCode:  "ZWL",
		Amount:        amt("20"),
	}).ResponseCode)
	require.Equal(t, models.RCSuccess, f.service.PerformTransfer(ctx, models.TransferRequest{
		Reference:          "TRF-1",
		SourceAccount:      "5",
		DestinationAccount: "6",
		CurrencyCode:       "ZWL",
		Amount:             amt("10"),
	}).ResponseCode)

	resp := f.service.PerformReversal(ctx, models.ReversalRequest{
		OrgnlReference:          "TRF-1",
		OrgnlSourceAccount:      "5",
		OrgnlDestinationAccount: "6",
		OrgnlCurrencyCode:       "ZWL",
		OrgnlAmount:             amt("10"),
	})

	require.Equal(t, models.RCSuccess, resp.ResponseCode)
	assert.Equal(t, "20.00", f.balance(t, "5"))
	assert.Equal(t, "0.00", f.balance(t, "6"))

	// The reversal debits the original destination.
	log := f.eventLog(t, "6")
	last := log[len(log)-1].Event.(events.PostAdded)
	assert.Equal(t, "Reversal", last.Narrative)
	assert.Equal(t, "-10.00", last.Amount.StringFixed(2))
}

func TestConcurrentDepositsShareOneSuspenseAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addAccount(t, "5", "John Morgan")

	const n = 10
	done := make(chan models.ServiceResponse, n)
	for i := 0; i < n; i++ {
		go func() {
			done <- f.service.PerformDeposit(ctx, models.DepositRequest{
				Reference:     "DEP",
				AccountNumber: "5",
				CurrencyCode:  "ZWL",
				Amount:        amt("1"),
			})
		}()
	}
	for i := 0; i < n; i++ {
		resp := <-done
		assert.Equal(t, models.RCSuccess, resp.ResponseCode)
	}

	assert.Equal(t, "10.00", f.balance(t, "5"))

	// Exactly one AccountAdded on the suspense account.
	var created int
	for _, rec := range f.eventLog(t, "DEP-SUSP-ZWL") {
		if _, ok := rec.Event.(events.AccountAdded); ok {
			created++
		}
	}
	assert.Equal(t, 1, created)
}
