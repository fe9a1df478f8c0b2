package storage

import (
	"context"
	"encoding/json"
	"errors"

	pkgerrors "github.com/angelmondragon/caraccessories-storefront/pkg/errors"
	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
	"github.com/angelmondragon/caraccessories-storefront/pkg/metrics"
)

// Key names one persisted slot. Each key has exactly one owning manager.
type Key string

const (
	KeyToken     Key = "token"
	KeyUser      Key = "user"
	KeyCart      Key = "cart"
	KeyLastOrder Key = "lastOrder"
)

// ErrNotFound is returned by backends when a key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Backend persists raw JSON documents by key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Store is the only path from the managers to persistent state. It never
// returns errors: failures are logged, counted and treated as "absent".
type Store struct {
	backend Backend
	logg    *logger.Logger
	metrics *metrics.Storefront
}

// New wraps a backend.
func New(backend Backend, logg *logger.Logger, m *metrics.Storefront) (*Store, error) {
	if backend == nil {
		return nil, errors.New("storage backend required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{backend: backend, logg: logg, metrics: m}, nil
}

// Read decodes the value stored under key into dest. It reports false when
// the key is missing, unreadable or not valid JSON for dest.
func (s *Store) Read(ctx context.Context, key Key, dest any) bool {
	raw, err := s.backend.Get(ctx, string(key))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.fail(ctx, "read", key, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage read failed"))
		}
		return false
	}
	if len(raw) == 0 {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.fail(ctx, "decode", key, pkgerrors.Wrap(pkgerrors.CodeStorageCorruption, err, "stored value is not valid JSON"))
		return false
	}
	return true
}

// Write serialises value and stores it under key. The write is not
// abandoned when ctx is cancelled.
func (s *Store) Write(ctx context.Context, key Key, value any) {
	ctx = context.WithoutCancel(ctx)
	raw, err := json.Marshal(value)
	if err != nil {
		s.fail(ctx, "encode", key, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode storage value"))
		return
	}
	if err := s.backend.Put(ctx, string(key), raw); err != nil {
		s.fail(ctx, "write", key, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage write failed"))
	}
}

// Remove deletes key. Removing a missing key is not a failure.
func (s *Store) Remove(ctx context.Context, key Key) {
	ctx = context.WithoutCancel(ctx)
	if err := s.backend.Delete(ctx, string(key)); err != nil && !errors.Is(err, ErrNotFound) {
		s.fail(ctx, "remove", key, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage remove failed"))
	}
}

// Ping reports backend readiness.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) fail(ctx context.Context, op string, key Key, err error) {
	s.metrics.IncStorageFailure(op, string(key))
	ctx = s.logg.WithStorageKey(ctx, string(key))
	ctx = s.logg.WithFields(ctx, map[string]any{"storage_op": op, "error_code": pkgerrors.CodeOf(err)})
	s.logg.Warn(ctx, err.Error())
}
