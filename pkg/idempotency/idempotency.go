package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/packwise/packwise-backend/pkg/redis"
)

// Manager tracks already-processed operation IDs per scope using Redis SETNX
// with a TTL. Keys follow the `pw:idempotency:<scope>:<id>` pattern.
type Manager struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

// NewManager builds an idempotency guard that marks operations as processed
// for the given TTL.
func NewManager(store redis.IdempotencyStore, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &Manager{
		store: store,
		ttl:   ttl,
	}, nil
}

// CheckAndMarkProcessed returns true if the operation has already been
// processed and otherwise marks it as processed with the configured TTL.
func (m *Manager) CheckAndMarkProcessed(ctx context.Context, scope string, id uuid.UUID) (bool, error) {
	key, err := m.key(scope, id)
	if err != nil {
		return false, err
	}
	set, err := m.store.SetNX(ctx, key, "1", m.ttl)
	if err != nil {
		return false, err
	}
	return !set, nil
}

// Release drops the processed marker so a rolled-back operation can retry.
func (m *Manager) Release(ctx context.Context, scope string, id uuid.UUID) error {
	key, err := m.key(scope, id)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, key)
}

func (m *Manager) key(scope string, id uuid.UUID) (string, error) {
	if scope == "" {
		return "", errors.New("scope is required")
	}
	if id == uuid.Nil {
		return "", errors.New("operation id is required")
	}
	return m.store.IdempotencyKey(scope, id.String()), nil
}
