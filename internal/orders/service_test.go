package orders

import (
	"context"
	"sync"
	"testing"

	"github.com/angelmondragon/caraccessories-storefront/pkg/bus"
	pkgerrors "github.com/angelmondragon/caraccessories-storefront/pkg/errors"
	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRemote struct {
	mu            sync.Mutex
	orders        []types.Order
	order         *types.Order
	listErr       error
	orderErr      error
	products      map[types.ID]types.Product
	productCalls  map[types.ID]int
	requestedUser types.ID
}

func (s *stubRemote) OrdersByBuyer(_ context.Context, buyerID types.ID) ([]types.Order, error) {
	s.requestedUser = buyerID
	return s.orders, s.listErr
}

func (s *stubRemote) Order(context.Context, types.ID) (*types.Order, error) {
	return s.order, s.orderErr
}

func (s *stubRemote) Product(_ context.Context, id types.ID) (*types.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.productCalls == nil {
		s.productCalls = map[types.ID]int{}
	}
	s.productCalls[id]++
	p, ok := s.products[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return &p, nil
}

type stubSession struct{ user *types.UserProfile }

func (s stubSession) CurrentUser() *types.UserProfile { return s.user }

func newService(t *testing.T, remote *stubRemote, user *types.UserProfile) (*Service, *bus.Bus) {
	t.Helper()
	b := bus.New(logger.Nop(), nil)
	svc, err := NewService(ServiceParams{Remote: remote, Session: stubSession{user: user}, Bus: b})
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc, b
}

func TestListHydratesMissingProducts(t *testing.T) {
	remote := &stubRemote{
		orders: []types.Order{
			{OrderID: "1", OrderItems: []types.OrderItem{
				{ProductID: "10", Quantity: 1},
				{ProductID: "11", Quantity: 2},
				{Product: &types.Product{ProductID: "12", Name: "Embedded"}, Quantity: 1},
			}},
			{ID: "2", Items: []types.OrderItem{{ProductID: "10", Quantity: 4}}},
		},
		products: map[types.ID]types.Product{"10": {ProductID: "10", Name: "Seat cover"}},
	}
	svc, _ := newService(t, remote, &types.UserProfile{UserID: "7"})

	orders, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.ID("7"), remote.requestedUser)
	require.Len(t, orders, 2)

	first := orders[0].OrderDetails
	require.Len(t, first, 3)
	require.NotNil(t, first[0].Product)
	assert.Equal(t, "Seat cover", first[0].Product.Name)
	assert.Nil(t, first[1].Product, "failed lookup keeps the raw item")
	assert.Equal(t, "Embedded", first[2].Product.Name)

	require.Len(t, orders[1].OrderDetails, 1)
	assert.Equal(t, "Seat cover", orders[1].OrderDetails[0].Product.Name)
	assert.Equal(t, 1, remote.productCalls["10"], "each product fetched once")
	assert.Zero(t, remote.productCalls["12"])
}

func TestListRequiresBuyer(t *testing.T) {
	svc, _ := newService(t, &stubRemote{}, nil)
	_, err := svc.List(context.Background())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
	assert.Equal(t, notLoggedInMessage, pkgerrors.As(err).Message())
}

func TestListFailureMessage(t *testing.T) {
	svc, _ := newService(t, &stubRemote{listErr: pkgerrors.New(pkgerrors.CodeTransient, "")}, &types.UserProfile{UserID: "7"})
	_, err := svc.List(context.Background())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeTransient, pkgerrors.CodeOf(err))
	assert.Equal(t, fetchFailedMessage, pkgerrors.As(err).Message())
}

func TestHistoryPrependsUnlistedSnapshots(t *testing.T) {
	remote := &stubRemote{orders: []types.Order{{OrderID: "1"}, {OrderID: "2"}}}
	svc, b := newService(t, remote, &types.UserProfile{UserID: "7"})
	ctx := context.Background()

	bus.Publish(ctx, b, bus.OrderCreated, types.Order{OrderID: "3", OrderNumber: "SRV-3"})
	bus.Publish(ctx, b, bus.OrderCreated, types.Order{OrderID: "2"})
	bus.Publish(ctx, b, bus.OrderCreated, types.Order{OrderID: "3", OrderNumber: "SRV-3b"})

	history, err := svc.History(ctx)
	require.NoError(t, err)
	keys := make([]types.ID, 0, len(history))
	for _, o := range history {
		keys = append(keys, o.Key())
	}
	assert.Equal(t, []types.ID{"3", "1", "2"}, keys)
	assert.Equal(t, "SRV-3b", history[0].OrderNumber)

	bus.Publish(ctx, b, bus.SessionCleared, bus.Signal{})
	history, err = svc.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestRefreshFallsBackToSnapshot(t *testing.T) {
	remote := &stubRemote{orderErr: pkgerrors.New(pkgerrors.CodeNotFound, "")}
	svc, _ := newService(t, remote, nil)

	snapshot := types.Order{OrderID: "9", OrderNumber: "ORD123456"}
	got := svc.Refresh(context.Background(), snapshot)
	assert.Equal(t, "ORD123456", got.OrderNumber)

	remote.orderErr = nil
	remote.order = &types.Order{OrderID: "9", OrderNumber: "SRV-9"}
	got = svc.Refresh(context.Background(), snapshot)
	assert.Equal(t, "SRV-9", got.OrderNumber)
}

func TestGetRequiresID(t *testing.T) {
	svc, _ := newService(t, &stubRemote{}, nil)
	_, err := svc.Get(context.Background(), "")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}
