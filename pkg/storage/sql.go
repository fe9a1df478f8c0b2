package storage

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/caraccessories-storefront/pkg/db"
	"github.com/angelmondragon/caraccessories-storefront/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLBackend keeps documents in the storefront_kv table.
type SQLBackend struct {
	client    *db.Client
	namespace string
	now       func() time.Time
}

func NewSQLBackend(client *db.Client, namespace string) (*SQLBackend, error) {
	if client == nil {
		return nil, errors.New("db client required")
	}
	return &SQLBackend{client: client, namespace: namespace, now: time.Now}, nil
}

func (s *SQLBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var entry models.StateEntry
	err := s.client.DB().WithContext(ctx).
		Where("namespace = ? AND state_key = ?", s.namespace, key).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(entry.Value), nil
}

func (s *SQLBackend) Put(ctx context.Context, key string, value []byte) error {
	entry := models.StateEntry{
		Namespace: s.namespace,
		StateKey:  key,
		Value:     string(value),
		UpdatedAt: s.now().UTC(),
	}
	return s.client.DB().WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "state_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (s *SQLBackend) Delete(ctx context.Context, key string) error {
	return s.client.DB().WithContext(ctx).
		Where("namespace = ? AND state_key = ?", s.namespace, key).
		Delete(&models.StateEntry{}).Error
}

func (s *SQLBackend) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *SQLBackend) Close() error {
	return s.client.Close()
}
