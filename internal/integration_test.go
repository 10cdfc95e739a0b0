package internal_test

import (
	"context"
	"testing"
	"time"

	"github.com/globalbank/bookentry/internal/aggregate"
	"github.com/globalbank/bookentry/internal/bookentry"
	esmemory "github.com/globalbank/bookentry/internal/events/memory"
	storememory "github.com/globalbank/bookentry/internal/eventstore/memory"
	"github.com/globalbank/bookentry/internal/models"
	"github.com/globalbank/bookentry/internal/models/stream"
	"github.com/globalbank/bookentry/internal/readmodel"
	rmmemory "github.com/globalbank/bookentry/internal/readmodel/memory"
	"github.com/globalbank/bookentry/internal/suspense"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// The full path from command to reporting row: commands are serialized
// by the registry, events are persisted then published, the projector
// upserts the reporting store.
func TestCommandToReadModelFlow(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	store := storememory.NewMemoryEventStore()
	publisher := esmemory.NewMemoryPublisher()
	rmStore := rmmemory.NewMemoryReadModelStore()
	projector := readmodel.NewProjector(rmStore, logger)

	projCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	projDone := make(chan struct{})
	sub := publisher.Subscribe()
	go func() {
		defer close(projDone)
		projector.Run(projCtx, sub)
	}()

	registry := aggregate.NewRegistry(store, publisher, logger)
	resolver := suspense.NewResolver(registry, logger)
	service := bookentry.NewService(registry, resolver, bookentry.DefaultLegTimeout, logger)

	require.NoError(t, service.AddAccount(ctx, models.AddAccount{
		AccountNumber: "5",
		AccountName:   "John Morgan",
		AccountType:   models.AccountTypeSavings,
		CurrencyCode:  "ZWL",
	}))
	require.NoError(t, service.AddAccount(ctx, models.AddAccount{
		AccountNumber: "6",
		AccountName:   "Jane Morgan",
		AccountType:   models.AccountTypeSavings,
		CurrencyCode:  "ZWL",
	}))

	resp := service.PerformDeposit(ctx, models.DepositRequest{
		Reference:     "DEP-1",
		AccountNumber: "5",
		CurrencyCode:  "ZWL",
		Amount:        decimal.RequireFromString("20"),
	})
	require.Equal(t, models.RCSuccess, resp.ResponseCode)

	resp = service.PerformTransfer(ctx, models.TransferRequest{
		Reference:          "TRF-1",
		SourceAccount:      "5",
		DestinationAccount: "6",
		CurrencyCode:       "ZWL",
		Amount:             decimal.RequireFromString("10"),
	})
	require.Equal(t, models.RCSuccess, resp.ResponseCode)

	snapshot, err := service.ReadAccount(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, "10.00", snapshot.Balance.StringFixed(2))
	snapshot, err = service.ReadAccount(ctx, "6")
	require.NoError(t, err)
	assert.Equal(t, "10.00", snapshot.Balance.StringFixed(2))

	// Give the projector time to drain, then stop it.
	require.Eventually(t, func() bool {
		accounts, err := rmStore.GetAllAccounts(ctx)
		return err == nil && len(accounts) == 3 // 5, 6 and the suspense account
	}, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-projDone

	account, err := rmStore.GetAccount(ctx, "DEP-SUSP-ZWL")
	require.NoError(t, err)
	assert.Equal(t, string(models.AccountTypeSuspense), account.AccountType)

	posts, err := rmStore.GetAccountPosts(ctx, "5")
	require.NoError(t, err)
	require.Len(t, posts, 2) // deposit credit, transfer debit
	assert.Equal(t, "20.00", posts[0].Amount.StringFixed(2))
	assert.Equal(t, "-10.00", posts[1].Amount.StringFixed(2))
	assert.Equal(t, "10.00", posts[1].Balance.StringFixed(2))

	// Published events for one account arrive in sequence order.
	var seqs []int64
	for _, env := range publisher.Published() {
		if env.AccountNumber == "5" && env.EventType == stream.TypePostAdded {
			seqs = append(seqs, env.Sequence)
		}
	}
	require.Len(t, seqs, 2)
	assert.Less(t, seqs[0], seqs[1])
}
