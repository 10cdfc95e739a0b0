package interfaces

import (
	"context"

	"github.com/globalbank/bookentry/internal/models/stream"
)

// ReadModelStore is the reporting store written by the projector.
// Delivery from the event stream is at-least-once, so both create
// operations must be idempotent per natural key: account number for
// accounts, (account number, sequence) for posts.
type ReadModelStore interface {
	CreateAccount(ctx context.Context, row stream.AccountRow) error
	CreatePost(ctx context.Context, row stream.PostRow) error
	GetAccount(ctx context.Context, accountNumber string) (stream.AccountRow, error)
	GetAllAccounts(ctx context.Context) ([]stream.AccountRow, error)
	GetAccountPosts(ctx context.Context, accountNumber string) ([]stream.PostRow, error)
}
