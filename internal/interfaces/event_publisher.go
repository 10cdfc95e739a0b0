package interfaces

import (
	"context"

	"github.com/globalbank/bookentry/internal/models/stream"
)

// EventPublisher delivers published events to the account event stream.
// Key is the account number; implementations must route equal keys to
// the same partition so per-account order survives fan-out.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event stream.Envelope) error
}
