// Package suspense resolves the system suspense account that acts as
// the counterparty for cash deposits.
package suspense

import (
	"context"
	"fmt"

	interfaces "github.com/globalbank/bookentry/internal/interfaces"
	"github.com/globalbank/bookentry/internal/models"
	"go.uber.org/zap"
)

// Resolver translates a currency code into the well-known suspense
// account number and guarantees the account exists before returning it.
// Safe to call concurrently for the same currency: the registry
// serializes the get-or-init per account number, so exactly one
// AccountAdded event is ever emitted.
type Resolver struct {
	registry interfaces.CommandBus
	logger   *zap.Logger
}

func NewResolver(registry interfaces.CommandBus, logger *zap.Logger) *Resolver {
	return &Resolver{
		registry: registry,
		logger:   logger,
	}
}

// Resolve returns the snapshot of the cash suspense account for the
// currency, creating it on first use.
func (r *Resolver) Resolve(ctx context.Context, currencyCode string) (models.Account, error) {
	accountNumber := models.DepositCashAccountPrefix + currencyCode
	accountName := "DEPOSIT CASH SUSPENSE " + currencyCode

	reply, err := r.registry.Ask(ctx, models.GetOrInitSuspenseAccount{
		AccountNumber: accountNumber,
		AccountName:   accountName,
		CurrencyCode:  currencyCode,
	})
	if err != nil {
		return models.Account{}, fmt.Errorf("resolving suspense account %s: %w", accountNumber, err)
	}

	snapshot, ok := reply.(models.Account)
	if !ok {
		return models.Account{}, fmt.Errorf("unexpected reply %T resolving suspense account %s", reply, accountNumber)
	}

	r.logger.Debug("resolved suspense account",
		zap.String("account_number", snapshot.AccountNumber),
		zap.String("currency_code", currencyCode))
	return snapshot, nil
}
