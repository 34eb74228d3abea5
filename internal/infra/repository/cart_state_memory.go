package repository

import (
	"context"
	"sync"

	repo "battwheels/internal/repository"
)

// In-process cart state store for tests and dev mode.
type CartStateMemoryRepository struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewCartStateMemoryRepository() *CartStateMemoryRepository {
	return &CartStateMemoryRepository{data: map[string]string{}}
}

func (r *CartStateMemoryRepository) Load(_ context.Context, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	payload, ok := r.data[key]
	if !ok {
		return "", repo.ErrNotFound
	}
	return payload, nil
}

func (r *CartStateMemoryRepository) Save(_ context.Context, key string, payload string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = payload
	return nil
}

func (r *CartStateMemoryRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
	return nil
}
