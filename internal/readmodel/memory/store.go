package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	interfaces "github.com/globalbank/bookentry/internal/interfaces"
	"github.com/globalbank/bookentry/internal/models/stream"
)

// ErrAccountNotFound is returned when a queried account has not been
// projected.
var ErrAccountNotFound = errors.New("account not found")

// MemoryReadModelStore is an in-memory implementation of the reporting
// store. Writes are idempotent per natural key so at-least-once
// delivery never creates duplicate rows.
type MemoryReadModelStore struct {
	mu       sync.Mutex
	accounts map[string]stream.AccountRow
	posts    map[string]stream.PostRow
}

func NewMemoryReadModelStore() *MemoryReadModelStore {
	return &MemoryReadModelStore{
		accounts: make(map[string]stream.AccountRow),
		posts:    make(map[string]stream.PostRow),
	}
}

func (m *MemoryReadModelStore) CreateAccount(ctx context.Context, row stream.AccountRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Details changes carry no currency; keep the created row's
	// currency and creation time, mirroring the SQL upsert.
	if existing, exists := m.accounts[row.AccountNumber]; exists {
		if row.CurrencyCode == "" {
			row.CurrencyCode = existing.CurrencyCode
		}
		row.DateCreated = existing.DateCreated
	}
	m.accounts[row.AccountNumber] = row
	return nil
}

func (m *MemoryReadModelStore) CreatePost(ctx context.Context, row stream.PostRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Duplicate delivery of the same post is a no-op.
	if _, exists := m.posts[row.PostID]; exists {
		return nil
	}
	m.posts[row.PostID] = row
	return nil
}

func (m *MemoryReadModelStore) GetAccount(ctx context.Context, accountNumber string) (stream.AccountRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, exists := m.accounts[accountNumber]
	if !exists {
		return stream.AccountRow{}, ErrAccountNotFound
	}
	return row, nil
}

func (m *MemoryReadModelStore) GetAllAccounts(ctx context.Context) ([]stream.AccountRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := make([]stream.AccountRow, 0, len(m.accounts))
	for _, row := range m.accounts {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].AccountNumber < rows[j].AccountNumber })
	return rows, nil
}

func (m *MemoryReadModelStore) GetAccountPosts(ctx context.Context, accountNumber string) ([]stream.PostRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var rows []stream.PostRow
	for _, row := range m.posts {
		if row.AccountNumber == accountNumber {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		// Tie-break equal timestamps on the id; ids share the account
		// prefix, so shorter means lower sequence.
		if rows[i].DateCreated.Equal(rows[j].DateCreated) {
			if len(rows[i].PostID) != len(rows[j].PostID) {
				return len(rows[i].PostID) < len(rows[j].PostID)
			}
			return rows[i].PostID < rows[j].PostID
		}
		return rows[i].DateCreated.Before(rows[j].DateCreated)
	})
	return rows, nil
}

// Compile-time check: ensure MemoryReadModelStore implements ReadModelStore.
var _ interfaces.ReadModelStore = (*MemoryReadModelStore)(nil)
