package interfaces

import (
	"context"

	"github.com/globalbank/bookentry/internal/models"
)

// CommandBus routes a command to the single writer for its account
// number and waits for the typed reply. Waits are bounded by the
// caller's context; expiry means indeterminate, not failed — the
// command may still be applied after the caller gives up.
type CommandBus interface {
	Ask(ctx context.Context, cmd models.Command) (any, error)
}
