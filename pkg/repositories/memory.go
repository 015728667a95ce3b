package repositories

import (
	"context"
	"sync"
)

// InMemoryRepository keeps snapshots in process memory. It satisfies the
// Repository interface for tests and for running without durable storage.
type InMemoryRepository struct {
	lock      sync.RWMutex
	snapshots map[string][]byte
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		snapshots: make(map[string][]byte),
	}
}

func (r *InMemoryRepository) Close(ctx context.Context) error {
	return nil
}

func (r *InMemoryRepository) SaveSnapshot(ctx context.Context, roomCode string, data []byte) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.snapshots[roomCode] = append([]byte(nil), data...)
	return nil
}

func (r *InMemoryRepository) LoadSnapshot(ctx context.Context, roomCode string) ([]byte, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	data, ok := r.snapshots[roomCode]
	if !ok {
		return nil, &ErrNotFound{}
	}
	return append([]byte(nil), data...), nil
}

func (r *InMemoryRepository) DeleteSnapshot(ctx context.Context, roomCode string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.snapshots, roomCode)
	return nil
}
