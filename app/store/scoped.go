package store

import (
	"context"
	"fmt"
)

// KV is the minimal contract the scoped wrapper delegates to.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Scoped namespaces all keys with a visitor id so each visitor's records
// stay isolated while callers keep using fixed key names.
type Scoped struct {
	store   KV
	visitor string
}

// NewScoped creates a store view scoped to the given visitor id.
func NewScoped(st KV, visitor string) *Scoped {
	return &Scoped{store: st, visitor: visitor}
}

// Get retrieves the value for the key within the visitor's namespace.
func (s *Scoped) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.store.Get(ctx, s.scopedKey(key))
	if err != nil {
		return nil, err //nolint:wrapcheck // pass through for ErrNotFound checks
	}
	return val, nil
}

// Set stores the value for the key within the visitor's namespace.
func (s *Scoped) Set(ctx context.Context, key string, value []byte) error {
	if err := s.store.Set(ctx, s.scopedKey(key), value); err != nil {
		return fmt.Errorf("scoped set: %w", err)
	}
	return nil
}

func (s *Scoped) scopedKey(key string) string {
	return s.visitor + "/" + key
}
