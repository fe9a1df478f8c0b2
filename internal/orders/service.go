package orders

import (
	"context"
	"fmt"
	"sync"

	"github.com/angelmondragon/caraccessories-storefront/pkg/bus"
	pkgerrors "github.com/angelmondragon/caraccessories-storefront/pkg/errors"
	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
)

const (
	defaultHydrateLimit = 4
	maxRecent           = 20

	notLoggedInMessage = "No logged-in user. Please log in to view your orders."
	fetchFailedMessage = "Failed to fetch orders."
)

type remote interface {
	OrdersByBuyer(ctx context.Context, buyerID types.ID) ([]types.Order, error)
	Order(ctx context.Context, orderID types.ID) (*types.Order, error)
	Product(ctx context.Context, productID types.ID) (*types.Product, error)
}

type session interface {
	CurrentUser() *types.UserProfile
}

// ServiceParams bundles the dependencies of the order history service.
type ServiceParams struct {
	Remote  remote
	Session session
	Bus     *bus.Bus
	Logger  *logger.Logger
	// HydrateLimit caps concurrent product lookups. Zero uses the default.
	HydrateLimit int
}

// Service reads the buyer's orders and keeps the snapshots announced by
// checkout until the backend lists them.
type Service struct {
	remote  remote
	session session
	logg    *logger.Logger
	limit   int

	mu     sync.Mutex
	recent []types.Order

	unsubscribe []func()
}

// NewService validates params and subscribes to order.created and
// session.cleared.
func NewService(params ServiceParams) (*Service, error) {
	if params.Remote == nil {
		return nil, fmt.Errorf("remote client is required")
	}
	if params.Session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if params.Bus == nil {
		return nil, fmt.Errorf("event bus is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	limit := params.HydrateLimit
	if limit <= 0 {
		limit = defaultHydrateLimit
	}

	s := &Service{remote: params.Remote, session: params.Session, logg: logg, limit: limit}
	s.unsubscribe = []func(){
		bus.Subscribe(params.Bus, bus.OrderCreated, func(_ context.Context, env bus.Envelope[types.Order]) {
			s.remember(env.Payload)
		}),
		bus.Subscribe(params.Bus, bus.SessionCleared, func(context.Context, bus.Envelope[bus.Signal]) {
			s.mu.Lock()
			s.recent = nil
			s.mu.Unlock()
		}),
	}
	return s, nil
}

// Close drops the bus subscriptions.
func (s *Service) Close() {
	for _, fn := range s.unsubscribe {
		fn()
	}
}

func (s *Service) remember(order types.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent = prepend(s.recent, order)
	if len(s.recent) > maxRecent {
		s.recent = s.recent[:maxRecent]
	}
}

// List returns the current buyer's orders with product details filled in.
func (s *Service) List(ctx context.Context) ([]types.Order, error) {
	user := s.session.CurrentUser()
	if user == nil || user.Identity().IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, notLoggedInMessage)
	}
	ctx = s.logg.WithUserID(ctx, user.Identity().String())

	orders, err := s.remote.OrdersByBuyer(ctx, user.Identity())
	if err != nil {
		s.logg.Error(ctx, "list orders failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeOf(err), err, fetchFailedMessage)
	}
	return s.hydrate(ctx, orders), nil
}

// Get fetches one order with product details filled in.
func (s *Service) Get(ctx context.Context, orderID types.ID) (*types.Order, error) {
	if orderID.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.remote.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	hydrated := s.hydrate(ctx, []types.Order{*order})
	return &hydrated[0], nil
}

// Refresh re-reads a freshly placed order from the backend, falling back to
// the snapshot when the backend cannot serve it yet.
func (s *Service) Refresh(ctx context.Context, snapshot types.Order) types.Order {
	if snapshot.Key().IsZero() {
		return s.hydrate(ctx, []types.Order{snapshot})[0]
	}
	full, err := s.Get(ctx, snapshot.Key())
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "order_id", snapshot.Key().String()), "order not readable yet; using snapshot")
		return s.hydrate(ctx, []types.Order{snapshot})[0]
	}
	return *full
}

// History lists the buyer's orders with any recently placed order that the
// backend does not list yet placed first.
func (s *Service) History(ctx context.Context) ([]types.Order, error) {
	listed, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	recent := make([]types.Order, len(s.recent))
	copy(recent, s.recent)
	s.mu.Unlock()

	seen := make(map[types.ID]struct{}, len(listed))
	for _, o := range listed {
		seen[o.Key()] = struct{}{}
	}
	pending := make([]types.Order, 0, len(recent))
	for _, o := range recent {
		if _, ok := seen[o.Key()]; ok {
			continue
		}
		pending = append(pending, o)
	}
	return append(pending, listed...), nil
}

// prepend puts order first and drops any other entry with the same key.
func prepend(orders []types.Order, order types.Order) []types.Order {
	out := make([]types.Order, 0, len(orders)+1)
	out = append(out, order)
	for _, o := range orders {
		if !order.Key().IsZero() && o.Key() == order.Key() {
			continue
		}
		out = append(out, o)
	}
	return out
}
