package memory

import (
	"context"
	"sync"

	interfaces "github.com/globalbank/bookentry/internal/interfaces"
	"github.com/globalbank/bookentry/internal/models/stream"
)

// MemoryPublisher collects published events in memory. It backs tests
// and broker-less local runs, and can feed the projector directly.
type MemoryPublisher struct {
	mu        sync.Mutex
	published []stream.Envelope
	subs      []chan stream.Envelope
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (m *MemoryPublisher) Publish(ctx context.Context, key string, event stream.Envelope) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.published = append(m.published, event)
	for _, sub := range m.subs {
		sub <- event
	}
	return nil
}

// Subscribe returns a channel receiving every event published after the
// call. The channel is buffered; a stalled consumer will eventually
// block publishers.
func (m *MemoryPublisher) Subscribe() <-chan stream.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan stream.Envelope, 256)
	m.subs = append(m.subs, ch)
	return ch
}

// Published returns a copy of everything published so far.
func (m *MemoryPublisher) Published() []stream.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]stream.Envelope, len(m.published))
	copy(copied, m.published)
	return copied
}

var _ interfaces.EventPublisher = (*MemoryPublisher)(nil)
