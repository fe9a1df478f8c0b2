package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/angelmondragon/caraccessories-storefront/pkg/config"
	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
	"github.com/angelmondragon/caraccessories-storefront/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type line struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

func exerciseBackend(t *testing.T, backend Backend) {
	t.Helper()
	ctx := context.Background()
	store, err := New(backend, logger.Nop(), nil)
	require.NoError(t, err)

	var got []line
	assert.False(t, store.Read(ctx, KeyCart, &got), "missing key must read as absent")

	want := []line{{ID: "p1", Quantity: 2}, {ID: "p2", Quantity: 1}}
	store.Write(ctx, KeyCart, want)
	require.True(t, store.Read(ctx, KeyCart, &got))
	assert.Equal(t, want, got)

	store.Write(ctx, KeyCart, []line{{ID: "p3", Quantity: 4}})
	require.True(t, store.Read(ctx, KeyCart, &got))
	assert.Equal(t, []line{{ID: "p3", Quantity: 4}}, got)

	store.Write(ctx, KeyToken, "abc.def")
	var token string
	require.True(t, store.Read(ctx, KeyToken, &token))
	assert.Equal(t, "abc.def", token)

	store.Remove(ctx, KeyCart)
	assert.False(t, store.Read(ctx, KeyCart, &got))
	store.Remove(ctx, KeyCart)

	require.NoError(t, store.Ping(ctx))
}

func TestMemoryBackend(t *testing.T) {
	exerciseBackend(t, NewMemoryBackend())
}

func TestFileBackend(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir(), "profile/a")
	require.NoError(t, err)
	assert.Equal(t, "profile_a", filepath.Base(backend.Dir()))
	exerciseBackend(t, backend)

	entries, err := os.ReadDir(backend.Dir())
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp", "temp files must not linger")
	}
}

func TestRedisBackend(t *testing.T) {
	srv := miniredis.RunT(t)
	backend, err := OpenBackend(context.Background(), &config.Config{
		Storage: config.StorageConfig{Driver: config.StorageDriverRedis, KeyPrefix: "default"},
		Redis:   config.RedisConfig{Address: srv.Addr(), DialTimeout: time.Second},
	}, logger.Nop())
	require.NoError(t, err)
	defer backend.Close()

	exerciseBackend(t, backend)

	store, err := New(backend, logger.Nop(), nil)
	require.NoError(t, err)
	store.Write(context.Background(), KeyUser, map[string]any{"userId": 7})
	assert.True(t, srv.Exists("storefront:state:default:user"))
}

func TestSQLiteBackend(t *testing.T) {
	dir := t.TempDir()
	backend, err := OpenBackend(context.Background(), &config.Config{
		Storage: config.StorageConfig{Driver: config.StorageDriverSQLite, Dir: dir, KeyPrefix: "default"},
		DB:      config.DBConfig{DSN: "file:" + filepath.Join(dir, "state.db"), AutoMigrate: true},
	}, logger.Nop())
	require.NoError(t, err)
	defer backend.Close()

	exerciseBackend(t, backend)
}

func TestOpenBackendRejectsUnknownDriver(t *testing.T) {
	_, err := OpenBackend(context.Background(), &config.Config{
		Storage: config.StorageConfig{Driver: "floppy"},
	}, logger.Nop())
	require.Error(t, err)
}

func TestCorruptValueReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	require.NoError(t, backend.Put(ctx, string(KeyCart), []byte("{not json")))

	var out bytes.Buffer
	reg := prometheus.NewRegistry()
	m := metrics.NewStorefront(reg)
	store, err := New(backend, logger.New(logger.Options{ServiceName: "test", Output: &out}), m)
	require.NoError(t, err)

	var got []line
	assert.False(t, store.Read(ctx, KeyCart, &got))
	assert.Empty(t, got)
	assert.Contains(t, out.String(), `"storage_key":"cart"`)
	assert.Contains(t, out.String(), "STORAGE_CORRUPTION")
	mfs, err := reg.Gather()
	require.NoError(t, err)
	var failures float64
	for _, mf := range mfs {
		if mf.GetName() == "storefront_storage_failures_total" {
			for _, metric := range mf.GetMetric() {
				failures += metric.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, float64(1), failures)

	// corrupt value is left in place for a later writer
	raw, err := backend.Get(ctx, string(KeyCart))
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(raw))
}

type failingBackend struct {
	*MemoryBackend
}

func (failingBackend) Put(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func (failingBackend) Delete(context.Context, string) error {
	return errors.New("read-only filesystem")
}

func TestWriteFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	store, err := New(failingBackend{NewMemoryBackend()}, logger.New(logger.Options{ServiceName: "test", Output: &out}), nil)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		store.Write(ctx, KeyCart, []line{{ID: "p1", Quantity: 1}})
		store.Remove(ctx, KeyCart)
	})
	assert.Contains(t, out.String(), "disk full")
	assert.Contains(t, out.String(), "read-only filesystem")
}

func TestNewRequiresBackend(t *testing.T) {
	_, err := New(nil, nil, nil)
	require.Error(t, err)
}

func TestWriteOutlivesCancelledContext(t *testing.T) {
	srv := miniredis.RunT(t)
	backend, err := OpenBackend(context.Background(), &config.Config{
		Storage: config.StorageConfig{Driver: config.StorageDriverRedis, KeyPrefix: "default"},
		Redis:   config.RedisConfig{Address: srv.Addr(), DialTimeout: time.Second},
	}, logger.Nop())
	require.NoError(t, err)
	defer backend.Close()
	store, err := New(backend, logger.Nop(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store.Write(ctx, KeyLastOrder, map[string]any{"orderId": 9})
	assert.True(t, srv.Exists("storefront:state:default:lastOrder"))

	store.Remove(ctx, KeyLastOrder)
	assert.False(t, srv.Exists("storefront:state:default:lastOrder"))
}
