// Package bookentry exposes the service operations of the ledger:
// account management pass-throughs and the posting saga for deposits,
// transfers and reversals.
package bookentry

import (
	"context"
	"fmt"
	"time"

	interfaces "github.com/globalbank/bookentry/internal/interfaces"
	"github.com/globalbank/bookentry/internal/models"
	"github.com/globalbank/bookentry/internal/suspense"
	"github.com/globalbank/bookentry/pkg/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultLegTimeout bounds how long the saga waits for one aggregate
// reply. Expiry is indeterminate: the aggregate may still apply the
// command after the caller gave up.
const DefaultLegTimeout = 5 * time.Second

// Service fronts the account registry. One instance serves all
// accounts.
type Service struct {
	registry   interfaces.CommandBus
	resolver   *suspense.Resolver
	legTimeout time.Duration
	logger     *zap.Logger
}

func NewService(registry interfaces.CommandBus, resolver *suspense.Resolver, legTimeout time.Duration, logger *zap.Logger) *Service {
	if legTimeout <= 0 {
		legTimeout = DefaultLegTimeout
	}
	return &Service{
		registry:   registry,
		resolver:   resolver,
		legTimeout: legTimeout,
		logger:     logger,
	}
}

// AddAccount creates an account. Issuing it twice for the same account
// number acks both times but emits a single AccountAdded event.
func (s *Service) AddAccount(ctx context.Context, cmd models.AddAccount) error {
	_, err := s.registry.Ask(ctx, cmd)
	return err
}

// UpdateAccount changes account metadata.
func (s *Service) UpdateAccount(ctx context.Context, cmd models.UpdateAccount) error {
	_, err := s.registry.Ask(ctx, cmd)
	return err
}

// ReadAccount returns the current account snapshot without emitting an
// event.
func (s *Service) ReadAccount(ctx context.Context, accountNumber string) (models.Account, error) {
	reply, err := s.registry.Ask(ctx, models.ReadAccount{AccountNumber: accountNumber})
	if err != nil {
		return models.Account{}, err
	}
	snapshot, ok := reply.(models.Account)
	if !ok {
		return models.Account{}, fmt.Errorf("unexpected reply %T reading account %s", reply, accountNumber)
	}
	return snapshot, nil
}

// PerformDeposit credits an account from the currency's cash suspense
// account.
func (s *Service) PerformDeposit(ctx context.Context, req models.DepositRequest) models.ServiceResponse {
	s.logger.Info("performing deposit",
		zap.String("account_number", req.AccountNumber),
		zap.String("currency_code", req.CurrencyCode),
		zap.String("amount", req.Amount.String()))

	if !isAmountValid(req.Amount) {
		s.logger.Info("rejecting deposit with invalid amount")
		return respond("deposit", models.RCInvalidAmount, "Invalid amount")
	}

	source, err := s.resolver.Resolve(ctx, req.CurrencyCode)
	if err != nil {
		s.logger.Error("error resolving deposit suspense account", zap.Error(err))
		return respond("deposit", models.RCGeneralError, "General error")
	}

	return s.doPosting(ctx, "deposit", models.PostingRequest{
		Reference:          req.Reference,
		SourceAccount:      source.AccountNumber,
		DestinationAccount: req.AccountNumber,
		Narrative:          "Cash Deposit",
		CurrencyCode:       req.CurrencyCode,
		Amount:             req.Amount,
	})
}

// PerformTransfer moves funds between two accounts.
func (s *Service) PerformTransfer(ctx context.Context, req models.TransferRequest) models.ServiceResponse {
	s.logger.Info("performing transfer",
		zap.String("source_account", req.SourceAccount),
		zap.String("destination_account", req.DestinationAccount),
		zap.String("currency_code", req.CurrencyCode),
		zap.String("amount", req.Amount.String()))

	if !isAmountValid(req.Amount) {
		s.logger.Info("rejecting transfer with invalid amount")
		return respond("transfer", models.RCInvalidAmount, "Invalid amount")
	}

	return s.doPosting(ctx, "transfer", models.PostingRequest{
		Reference:          req.Reference,
		SourceAccount:      req.SourceAccount,
		DestinationAccount: req.DestinationAccount,
		Narrative:          "Transfer",
		CurrencyCode:       req.CurrencyCode,
		Amount:             req.Amount,
	})
}

// PerformReversal reruns a previous posting with source and destination
// swapped. It carries no protection against reversing a posting that
// was never made; that validation belongs to the caller.
func (s *Service) PerformReversal(ctx context.Context, req models.ReversalRequest) models.ServiceResponse {
	s.logger.Info("performing reversal",
		zap.String("orgnl_source_account", req.OrgnlSourceAccount),
		zap.String("orgnl_destination_account", req.OrgnlDestinationAccount),
		zap.String("orgnl_currency_code", req.OrgnlCurrencyCode),
		zap.String("amount", req.OrgnlAmount.String()))

	if !isAmountValid(req.OrgnlAmount) {
		s.logger.Info("rejecting reversal with invalid amount")
		return respond("reversal", models.RCInvalidAmount, "Invalid amount")
	}

	return s.doPosting(ctx, "reversal", models.PostingRequest{
		Reference:          req.OrgnlReference,
		SourceAccount:      req.OrgnlDestinationAccount,
		DestinationAccount: req.OrgnlSourceAccount,
		Narrative:          "Reversal",
		CurrencyCode:       req.OrgnlCurrencyCode,
		Amount:             req.OrgnlAmount,
	})
}

// isAmountValid rejects zero and negative posting amounts before any
// aggregate is contacted.
func isAmountValid(amount decimal.Decimal) bool {
	return amount.GreaterThan(decimal.Zero)
}

func respond(operation, code, narrative string) models.ServiceResponse {
	metrics.PostingProcessed(operation, code)
	return models.ServiceResponse{ResponseCode: code, Narrative: narrative}
}
