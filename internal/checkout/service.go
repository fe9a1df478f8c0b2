package checkout

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/angelmondragon/caraccessories-storefront/internal/cart"
	"github.com/angelmondragon/caraccessories-storefront/pkg/bus"
	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
	"github.com/angelmondragon/caraccessories-storefront/pkg/metrics"
	"github.com/angelmondragon/caraccessories-storefront/pkg/storage"
	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
)

type session interface {
	CurrentUser() *types.UserProfile
	IsAdmin() bool
}

type cartState interface {
	Lines() []cart.Line
	Clear(ctx context.Context)
}

type remote interface {
	CreateOrder(ctx context.Context, req types.OrderRequest) (*types.Order, error)
	CreatePayment(ctx context.Context, req types.PaymentRequest) (*types.Payment, error)
}

type store interface {
	Read(ctx context.Context, key storage.Key, dest any) bool
	Write(ctx context.Context, key storage.Key, value any)
	Remove(ctx context.Context, key storage.Key)
}

// ServiceParams bundles the dependencies of the checkout service.
type ServiceParams struct {
	Session session
	Cart    cartState
	Remote  remote
	Store   store
	Bus     *bus.Bus
	Logger  *logger.Logger
	Metrics *metrics.Storefront

	// Pricing nil uses DefaultPricing. A zero Pricing charges no fee and no VAT.
	Pricing           *Pricing
	OrderNumberPrefix string
	// OrderNumber overrides the placeholder number generator.
	OrderNumber func() string
	Now         func() time.Time
}

// Service turns the cart into a remote order and payment.
type Service struct {
	session session
	cart    cartState
	remote  remote
	store   store
	bus     *bus.Bus
	logg    *logger.Logger
	metrics *metrics.Storefront

	pricing     Pricing
	orderNumber func() string
	now         func() time.Time

	mu      sync.Mutex
	current *Handoff
}

// NewService validates params and builds the service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart is required")
	}
	if params.Remote == nil {
		return nil, fmt.Errorf("remote client is required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if params.Bus == nil {
		return nil, fmt.Errorf("event bus is required")
	}

	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	pricing := DefaultPricing
	if params.Pricing != nil {
		pricing = *params.Pricing
	}
	orderNumber := params.OrderNumber
	if orderNumber == nil {
		orderNumber = randomOrderNumber(params.OrderNumberPrefix)
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		session:     params.Session,
		cart:        params.Cart,
		remote:      params.Remote,
		store:       params.Store,
		bus:         params.Bus,
		logg:        logg,
		metrics:     params.Metrics,
		pricing:     pricing,
		orderNumber: orderNumber,
		now:         now,
	}, nil
}

// randomOrderNumber yields prefix followed by six digits.
func randomOrderNumber(prefix string) func() string {
	if prefix == "" {
		prefix = "ORD"
	}
	return func() string {
		return prefix + strconv.Itoa(100000+rand.IntN(900000))
	}
}

// Quote prices the current cart.
func (s *Service) Quote() Quote {
	return s.pricing.Price(s.cart.Lines())
}

// NewHandoff starts a fresh single-use checkout attempt.
func (s *Service) NewHandoff() *Handoff {
	return &Handoff{svc: s, orderNumber: s.orderNumber(), stage: stageIdle}
}

// Current returns the open hand-off, starting a new one when there is none
// or the previous one completed.
func (s *Service) Current() *Handoff {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.Completed() {
		s.current = s.NewHandoff()
	}
	return s.current
}

// LastOrder returns the snapshot saved by the most recent completed checkout.
func (s *Service) LastOrder(ctx context.Context) (*types.Order, bool) {
	var order types.Order
	if !s.store.Read(ctx, storage.KeyLastOrder, &order) {
		return nil, false
	}
	return &order, true
}

// ClearLastOrder forgets the saved snapshot.
func (s *Service) ClearLastOrder(ctx context.Context) {
	s.store.Remove(ctx, storage.KeyLastOrder)
}
