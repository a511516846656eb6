package lock

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// DocumentLocker grants a single-writer lease per document id. The ledger
// reinitialization inside an orchestration run is not safe under concurrent
// re-runs of the same document, so every orchestration must hold this lock.
type DocumentLocker interface {
	// Acquire returns true if the caller now holds the document's lease.
	Acquire(ctx context.Context, documentId uuid.UUID) (bool, error)
	Release(ctx context.Context, documentId uuid.UUID) error
}

// MemoryLocker is an in-process locker for single-node deployments and tests.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[uuid.UUID]bool
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[uuid.UUID]bool)}
}

func (l *MemoryLocker) Acquire(_ context.Context, documentId uuid.UUID) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[documentId] {
		return false, nil
	}
	l.held[documentId] = true
	return true, nil
}

func (l *MemoryLocker) Release(_ context.Context, documentId uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, documentId)
	return nil
}
