package ledger

import (
	"context"
	"sync"

	"rentline/internal/domain/repository"
)

// MemoryLedger is a single-process substitute for the Redis ledger. The
// mutex around the check-then-set sequence preserves the same at-most-one
// pending request invariant.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[string]string
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{entries: make(map[string]string)}
}

var _ repository.NegotiationLedger = (*MemoryLedger)(nil)

func (l *MemoryLedger) TryAcquire(ctx context.Context, roomID, ownerID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.entries[roomID]; exists {
		return false, nil
	}
	l.entries[roomID] = ownerID
	return true, nil
}

func (l *MemoryLedger) Get(ctx context.Context, roomID string) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	val, ok := l.entries[roomID]
	return val, ok, nil
}

func (l *MemoryLedger) Release(ctx context.Context, roomID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, roomID)
	return nil
}
