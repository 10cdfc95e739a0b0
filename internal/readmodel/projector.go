// Package readmodel projects the published account event stream into
// the reporting store.
package readmodel

import (
	"context"
	"fmt"

	interfaces "github.com/globalbank/bookentry/internal/interfaces"
	"github.com/globalbank/bookentry/internal/models/stream"
	"go.uber.org/zap"
)

// Projector applies published events to the reporting store. Delivery
// is at-least-once; the store's natural-key upserts absorb duplicates,
// so Apply can simply be retried until it succeeds.
type Projector struct {
	store  interfaces.ReadModelStore
	logger *zap.Logger
}

func NewProjector(store interfaces.ReadModelStore, logger *zap.Logger) *Projector {
	return &Projector{
		store:  store,
		logger: logger,
	}
}

// Apply upserts one published event. Events the read model does not
// track (AccountDetailsChanged updates the account row) are never
// silently wrong: an unknown event type is an error for the consumer to
// act on.
func (p *Projector) Apply(ctx context.Context, env stream.Envelope) error {
	switch env.EventType {
	case stream.TypeAccountAdded:
		p.logger.Info("projecting account",
			zap.String("account_number", env.AccountNumber),
			zap.String("account_name", env.AccountName))
		return p.store.CreateAccount(ctx, stream.AccountRow{
			AccountNumber: env.AccountNumber,
			AccountName:   env.AccountName,
			AccountType:   env.AccountType,
			CurrencyCode:  env.CurrencyCode,
			DateCreated:   env.Timestamp,
		})

	case stream.TypeAccountDetailsChanged:
		return p.store.CreateAccount(ctx, stream.AccountRow{
			AccountNumber: env.AccountNumber,
			AccountName:   env.AccountName,
			AccountType:   env.AccountType,
			CurrencyCode:  env.CurrencyCode,
			DateCreated:   env.Timestamp,
		})

	case stream.TypePostAdded:
		p.logger.Info("projecting post",
			zap.String("account_number", env.AccountNumber),
			zap.Int64("sequence", env.Sequence))
		return p.store.CreatePost(ctx, stream.PostRow{
			PostID:        PostID(env.AccountNumber, env.Sequence),
			AccountNumber: env.AccountNumber,
			Reference:     env.Reference,
			Narrative:     env.Narrative,
			Amount:        env.Amount,
			Balance:       env.Balance,
			DateCreated:   env.Timestamp,
		})

	default:
		return fmt.Errorf("unknown event type: %s", env.EventType)
	}
}

// Run drains a subscription channel until ctx is canceled or the
// channel closes.
func (p *Projector) Run(ctx context.Context, events <-chan stream.Envelope) {
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-events:
			if !ok {
				return
			}
			if err := p.Apply(ctx, env); err != nil {
				p.logger.Error("projecting event",
					zap.String("event_type", env.EventType),
					zap.String("account_number", env.AccountNumber),
					zap.Error(err))
			}
		}
	}
}

// PostID derives the natural post row key. The per-account sequence
// replaces the random row id the read model would otherwise need, which
// is what makes duplicate delivery harmless.
func PostID(accountNumber string, sequence int64) string {
	return fmt.Sprintf("%s-%d", accountNumber, sequence)
}
