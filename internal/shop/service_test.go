package shop

import (
	"context"
	"testing"

	"github.com/angelmondragon/caraccessories-storefront/internal/cart"
	"github.com/angelmondragon/caraccessories-storefront/pkg/bus"
	pkgerrors "github.com/angelmondragon/caraccessories-storefront/pkg/errors"
	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
	"github.com/angelmondragon/caraccessories-storefront/pkg/storage"
	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalogue struct {
	products    map[types.ID]types.Product
	purchaseErr error
	purchases   []types.ID
	quantities  []int
}

func (s *stubCatalogue) Product(_ context.Context, id types.ID) (*types.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "")
	}
	return &p, nil
}

func (s *stubCatalogue) PurchaseProduct(_ context.Context, id types.ID, quantity int) error {
	s.purchases = append(s.purchases, id)
	s.quantities = append(s.quantities, quantity)
	return s.purchaseErr
}

func newService(t *testing.T, catalogue *stubCatalogue) (*Service, *cart.Manager) {
	t.Helper()
	store, err := storage.New(storage.NewMemoryBackend(), logger.Nop(), nil)
	require.NoError(t, err)
	m, err := cart.NewManager(context.Background(), cart.ManagerParams{Store: store, Bus: bus.New(logger.Nop(), nil), Logger: logger.Nop()})
	require.NoError(t, err)
	t.Cleanup(m.Close)
	svc, err := NewService(catalogue, m, nil)
	require.NoError(t, err)
	return svc, m
}

func catalogueWith(products ...types.Product) *stubCatalogue {
	c := &stubCatalogue{products: map[types.ID]types.Product{}}
	for _, p := range products {
		c.products[p.Ref()] = p
	}
	return c
}

func TestAddToCartReservesOneUnit(t *testing.T) {
	catalogue := catalogueWith(types.Product{ProductID: "7", Name: "Seat cover", Price: types.MoneyFromFloat(120), StockQuantity: 3})
	svc, m := newService(t, catalogue)

	line, err := svc.AddToCart(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, types.ID("7"), line.ProductRef)
	assert.Equal(t, 1, line.Quantity)

	_, err = svc.AddToCart(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, 2, m.Count())
	assert.Equal(t, []types.ID{"7", "7"}, catalogue.purchases)
	assert.Equal(t, []int{1, 1}, catalogue.quantities)
}

func TestAddToCartRefusesOutOfStock(t *testing.T) {
	catalogue := catalogueWith(
		types.Product{ProductID: "1", Name: "Empty", StockQuantity: 0},
		types.Product{ProductID: "2", Name: "Oversold", StockQuantity: -2},
	)
	svc, m := newService(t, catalogue)

	for _, id := range []types.ID{"1", "2"} {
		_, err := svc.AddToCart(context.Background(), id)
		require.Error(t, err)
		assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
		assert.Equal(t, outOfStockMessage, pkgerrors.As(err).Message())
	}
	assert.Zero(t, m.Count())
	assert.Empty(t, catalogue.purchases)
}

func TestFailedReservationKeepsCartLine(t *testing.T) {
	catalogue := catalogueWith(types.Product{ProductID: "7", Name: "Seat cover", Price: types.MoneyFromFloat(120), StockQuantity: 1})
	catalogue.purchaseErr = pkgerrors.New(pkgerrors.CodeValidation, "Not enough stock")
	svc, m := newService(t, catalogue)

	line, err := svc.AddToCart(context.Background(), "7")
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeDependency))
	assert.Equal(t, purchaseFailedMessage, pkgerrors.As(err).Message())
	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, 1, m.Count())
}

func TestAddToCartUnknownOrMissingProduct(t *testing.T) {
	svc, m := newService(t, catalogueWith())

	_, err := svc.AddToCart(context.Background(), "")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	_, err = svc.AddToCart(context.Background(), "99")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
	assert.Zero(t, m.Count())
}
