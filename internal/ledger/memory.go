package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryRepository keeps the ledger in process. Used when no database is
// configured and in tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

func (r *MemoryRepository) GetByIdempotencyKey(ctx context.Context, key string) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[key]
	if !ok {
		return nil, ErrIdempotencyKeyNotFound
	}
	return &e, nil
}

func (r *MemoryRepository) Create(ctx context.Context, entry *Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[entry.IdempotencyKey]; exists {
		return ErrDuplicateKey
	}
	e := *entry
	if e.Status == "" {
		e.Status = StatusPending
	}
	now := r.now()
	e.CreatedAt, e.UpdatedAt = now, now
	r.entries[e.IdempotencyKey] = e
	return nil
}

func (r *MemoryRepository) UpdateStatus(ctx context.Context, key string, status Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key]
	if !ok {
		return ErrIdempotencyKeyNotFound
	}
	if !e.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", IllegalTransitionError, e.Status, status)
	}
	e.Status = status
	e.UpdatedAt = r.now()
	r.entries[key] = e
	return nil
}

func (r *MemoryRepository) Close() error {
	return nil
}
