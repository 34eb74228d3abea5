package repository

import "context"

// CartStateRepository is the key-value medium behind a cart session: the full
// state is read once at store open and written back after every mutation.
// Load returns ErrNotFound for a key that was never written.
type CartStateRepository interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key string, payload string) error
	Delete(ctx context.Context, key string) error
}
