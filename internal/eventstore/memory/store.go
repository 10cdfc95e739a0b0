package memory

import (
	"context"
	"sync"

	interfaces "github.com/globalbank/bookentry/internal/interfaces"
	"github.com/globalbank/bookentry/internal/models/events"
)

// MemoryEventStore is an in-memory implementation of the event store.
// It keeps one append-only slice per account number and is safe for
// concurrent use.
type MemoryEventStore struct {
	mu   sync.Mutex
	logs map[string][]interfaces.Record
}

// NewMemoryEventStore creates and returns a new MemoryEventStore instance.
func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{
		logs: make(map[string][]interfaces.Record),
	}
}

// Append adds an event to the account's log and assigns the next
// sequence number.
func (m *MemoryEventStore) Append(ctx context.Context, accountNumber string, event events.Event) (interfaces.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := interfaces.Record{
		AccountNumber: accountNumber,
		Sequence:      int64(len(m.logs[accountNumber])) + 1,
		Event:         event,
	}
	m.logs[accountNumber] = append(m.logs[accountNumber], rec)
	return rec, nil
}

// Load returns a copy of the account's full event log in append order.
func (m *MemoryEventStore) Load(ctx context.Context, accountNumber string) ([]interfaces.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	log := m.logs[accountNumber]
	copied := make([]interfaces.Record, len(log))
	copy(copied, log)
	return copied, nil
}

// Compile-time check: ensure MemoryEventStore implements EventStore.
var _ interfaces.EventStore = (*MemoryEventStore)(nil)
