package cart

import (
	"context"
	"testing"

	"github.com/angelmondragon/caraccessories-storefront/pkg/bus"
	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
	"github.com/angelmondragon/caraccessories-storefront/pkg/storage"
	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, backend storage.Backend) (*Manager, *bus.Bus) {
	t.Helper()
	store, err := storage.New(backend, logger.Nop(), nil)
	require.NoError(t, err)
	b := bus.New(logger.Nop(), nil)
	m, err := NewManager(context.Background(), ManagerParams{Store: store, Bus: b, Logger: logger.Nop()})
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m, b
}

func product(id string, price float64) types.Product {
	return types.Product{ProductID: types.ID(id), Name: "Product " + id, Price: types.MoneyFromFloat(price)}
}

func TestAddSameProductAccumulatesOneLine(t *testing.T) {
	for _, calls := range []int{1, 2, 5, 17} {
		m, _ := newManager(t, storage.NewMemoryBackend())
		for i := 0; i < calls; i++ {
			_, err := m.AddToCart(context.Background(), product("p1", 10))
			require.NoError(t, err)
		}
		lines := m.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, calls, lines[0].Quantity)
		assert.Equal(t, calls, m.Count())
	}
}

func TestProductRefFallsBackToID(t *testing.T) {
	m, _ := newManager(t, storage.NewMemoryBackend())
	ctx := context.Background()
	_, err := m.AddToCart(ctx, types.Product{ID: "42", Name: "Mat", Price: types.MoneyFromFloat(20)})
	require.NoError(t, err)
	_, err = m.AddToCart(ctx, types.Product{ProductID: "42", Name: "Mat", Price: types.MoneyFromFloat(20)})
	require.NoError(t, err)

	require.Len(t, m.Lines(), 1)
	assert.Equal(t, 2, m.Lines()[0].Quantity)

	_, err = m.AddToCart(ctx, types.Product{Name: "nameless"})
	assert.Error(t, err)
}

func TestUpdateQuantityCoercesInvalidValues(t *testing.T) {
	m, _ := newManager(t, storage.NewMemoryBackend())
	ctx := context.Background()
	_, err := m.AddToCart(ctx, product("p1", 10))
	require.NoError(t, err)

	for _, raw := range []string{"0", "-5", "abc", "", " "} {
		line, ok := m.UpdateQuantity(ctx, "p1", raw)
		require.True(t, ok)
		assert.Equal(t, 1, line.Quantity, "raw %q", raw)
	}

	line, ok := m.UpdateQuantity(ctx, "p1", " 4 ")
	require.True(t, ok)
	assert.Equal(t, 4, line.Quantity)

	line, _ = m.UpdateQuantity(ctx, "p1", "2.9")
	assert.Equal(t, 2, line.Quantity)

	_, ok = m.UpdateQuantity(ctx, "missing", "3")
	assert.False(t, ok)
}

func TestRemoveThenAddResetsQuantity(t *testing.T) {
	m, _ := newManager(t, storage.NewMemoryBackend())
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := m.AddToCart(ctx, product("p1", 10))
		require.NoError(t, err)
	}
	m.RemoveFromCart(ctx, "p1")
	m.RemoveFromCart(ctx, "p1")
	_, err := m.AddToCart(ctx, product("p1", 10))
	require.NoError(t, err)

	require.Len(t, m.Lines(), 1)
	assert.Equal(t, 1, m.Lines()[0].Quantity)
}

func TestPriceSnapshotTakenAtAddTime(t *testing.T) {
	m, _ := newManager(t, storage.NewMemoryBackend())
	ctx := context.Background()
	_, err := m.AddToCart(ctx, product("p1", 10))
	require.NoError(t, err)
	_, err = m.AddToCart(ctx, product("p1", 99))
	require.NoError(t, err)

	assert.Equal(t, "10", m.Lines()[0].Price.String())
	assert.Equal(t, "20", m.Total().String())
}

func TestReloadReproducesCart(t *testing.T) {
	backend := storage.NewMemoryBackend()
	m, _ := newManager(t, backend)
	ctx := context.Background()
	_, _ = m.AddToCart(ctx, product("p1", 100))
	_, _ = m.AddToCart(ctx, product("p2", 12.5))
	_, _ = m.AddToCart(ctx, product("p1", 100))
	_, _ = m.AddToCart(ctx, product("p3", 0.1))
	m.UpdateQuantity(ctx, "p3", "3")

	reloaded, _ := newManager(t, backend)
	assert.Equal(t, m.Lines(), reloaded.Lines())
	assert.Equal(t, m.Count(), reloaded.Count())
	assert.True(t, m.Total().Equal(reloaded.Total()))
	assert.Equal(t, "212.8", reloaded.Total().String())
}

func TestCorruptCartLoadsEmpty(t *testing.T) {
	backend := storage.NewMemoryBackend()
	require.NoError(t, backend.Put(context.Background(), string(storage.KeyCart), []byte("not json at all")))

	m, _ := newManager(t, backend)
	assert.Empty(t, m.Lines())
	assert.Zero(t, m.Count())
	assert.True(t, m.Total().IsZero())
}

func TestWrongShapeCartLoadsEmpty(t *testing.T) {
	backend := storage.NewMemoryBackend()
	require.NoError(t, backend.Put(context.Background(), string(storage.KeyCart), []byte(`{"productId":"p1"}`)))

	m, _ := newManager(t, backend)
	assert.Empty(t, m.Lines())
}

func TestLoadNormalizesLegacyLines(t *testing.T) {
	backend := storage.NewMemoryBackend()
	raw := `[
		{"id": 7, "name": "Mat", "price": 20, "quantity": 0},
		{"productId": "p1", "name": "Cover", "price": "15.5", "quantity": 2},
		{"productId": 7, "name": "Mat", "price": 20, "quantity": 3},
		{"name": "orphan", "price": 1, "quantity": 1},
		{"productId": "p2", "name": "Light", "price": 5, "quantity": null}
	]`
	require.NoError(t, backend.Put(context.Background(), string(storage.KeyCart), []byte(raw)))

	m, _ := newManager(t, backend)
	lines := m.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, types.ID("7"), lines[0].ProductRef)
	assert.Equal(t, 4, lines[0].Quantity)
	assert.Equal(t, types.ID("p1"), lines[1].ProductRef)
	assert.Equal(t, 1, lines[2].Quantity)
}

func TestClearRemovesPersistedKey(t *testing.T) {
	backend := storage.NewMemoryBackend()
	m, _ := newManager(t, backend)
	ctx := context.Background()
	_, _ = m.AddToCart(ctx, product("p1", 1))

	m.Clear(ctx)
	assert.True(t, m.IsEmpty())
	_, err := backend.Get(ctx, string(storage.KeyCart))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSessionClearedEmptiesCart(t *testing.T) {
	backend := storage.NewMemoryBackend()
	m, b := newManager(t, backend)
	ctx := context.Background()
	_, _ = m.AddToCart(ctx, product("p1", 1))

	bus.Publish(ctx, b, bus.SessionCleared, bus.Signal{})
	assert.True(t, m.IsEmpty())

	// UI-only signals leave the cart alone
	_, _ = m.AddToCart(ctx, product("p2", 1))
	bus.Publish(ctx, b, bus.OpenLogin, bus.Signal{})
	bus.Publish(ctx, b, bus.OpenRegister, bus.Signal{})
	assert.Equal(t, 1, m.Count())

	m.Close()
	bus.Publish(ctx, b, bus.SessionCleared, bus.Signal{})
	assert.Equal(t, 1, m.Count(), "closed managers stop listening")
}

func TestParseQuantity(t *testing.T) {
	cases := map[string]int{"1": 1, "3": 3, "0": 1, "-5": 1, "abc": 1, "NaN": 1, "7.9": 7, "1e3": 1000}
	for raw, want := range cases {
		if got := ParseQuantity(raw); got != want {
			t.Fatalf("ParseQuantity(%q) = %d, want %d", raw, got, want)
		}
	}
}
