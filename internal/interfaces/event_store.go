package interfaces

import (
	"context"

	"github.com/globalbank/bookentry/internal/models/events"
)

// Record is one persisted event with its per-account sequence number.
// Sequences start at 1 and have no gaps within one account.
type Record struct {
	AccountNumber string
	Sequence      int64
	Event         events.Event
}

// EventStore is the append-only per-account event log. Only the owning
// aggregate worker may append for its account number. An event counts
// as applied only once Append has returned without error.
type EventStore interface {
	Append(ctx context.Context, accountNumber string, event events.Event) (Record, error)
	Load(ctx context.Context, accountNumber string) ([]Record, error)
}
