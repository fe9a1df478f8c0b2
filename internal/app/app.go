package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/angelmondragon/caraccessories-storefront/internal/admin"
	"github.com/angelmondragon/caraccessories-storefront/internal/auth"
	"github.com/angelmondragon/caraccessories-storefront/internal/cart"
	"github.com/angelmondragon/caraccessories-storefront/internal/checkout"
	"github.com/angelmondragon/caraccessories-storefront/internal/orders"
	"github.com/angelmondragon/caraccessories-storefront/internal/shop"
	"github.com/angelmondragon/caraccessories-storefront/pkg/apiclient"
	"github.com/angelmondragon/caraccessories-storefront/pkg/bus"
	"github.com/angelmondragon/caraccessories-storefront/pkg/config"
	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
	"github.com/angelmondragon/caraccessories-storefront/pkg/metrics"
	"github.com/angelmondragon/caraccessories-storefront/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
)

// Options configures New. Backend and HTTPClient override what the config
// would otherwise build.
type Options struct {
	Config     *config.Config
	Logger     *logger.Logger
	Registerer prometheus.Registerer
	Backend    storage.Backend
	HTTPClient *http.Client
}

// App owns one storefront session: its storage, API client, event bus and
// the managers that share them.
type App struct {
	Config  *config.Config
	Logger  *logger.Logger
	Metrics *metrics.Storefront
	Store   *storage.Store
	Client  *apiclient.Client
	Bus     *bus.Bus

	Auth     *auth.Manager
	Cart     *cart.Manager
	Shop     *shop.Service
	Checkout *checkout.Service
	Orders   *orders.Service
	Admin    *admin.Service
}

// New wires the managers. The cart is loaded immediately; the session is
// restored by Start.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	m := metrics.NewStorefront(opts.Registerer)

	backend := opts.Backend
	if backend == nil {
		var err error
		backend, err = storage.OpenBackend(ctx, cfg, logg)
		if err != nil {
			return nil, err
		}
	}
	store, err := storage.New(backend, logg, m)
	if err != nil {
		return nil, err
	}

	clientOpts := []apiclient.Option{apiclient.WithLogger(logg), apiclient.WithMetrics(m)}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, apiclient.WithHTTPClient(opts.HTTPClient))
	}
	client, err := apiclient.NewFromConfig(cfg.API, clientOpts...)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Logger:  logg,
		Metrics: m,
		Store:   store,
		Client:  client,
		Bus:     bus.New(logg, m),
	}
	if err := a.wire(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context) error {
	var err error
	a.Auth, err = auth.NewManager(auth.ManagerParams{
		Remote: a.Client,
		Store:  a.Store,
		Bus:    a.Bus,
		Logger: a.Logger,
	})
	if err != nil {
		return fmt.Errorf("auth manager: %w", err)
	}

	a.Cart, err = cart.NewManager(ctx, cart.ManagerParams{Store: a.Store, Bus: a.Bus, Logger: a.Logger})
	if err != nil {
		return fmt.Errorf("cart manager: %w", err)
	}

	a.Shop, err = shop.NewService(a.Client, a.Cart, a.Logger)
	if err != nil {
		return fmt.Errorf("shop service: %w", err)
	}

	pricing := checkout.PricingFromConfig(a.Config.Checkout)
	a.Checkout, err = checkout.NewService(checkout.ServiceParams{
		Session:           a.Auth,
		Cart:              a.Cart,
		Remote:            a.Client,
		Store:             a.Store,
		Bus:               a.Bus,
		Logger:            a.Logger,
		Metrics:           a.Metrics,
		Pricing:           &pricing,
		OrderNumberPrefix: a.Config.Checkout.OrderNumberPrefix,
	})
	if err != nil {
		return fmt.Errorf("checkout service: %w", err)
	}

	a.Orders, err = orders.NewService(orders.ServiceParams{
		Remote:  a.Client,
		Session: a.Auth,
		Bus:     a.Bus,
		Logger:  a.Logger,
	})
	if err != nil {
		return fmt.Errorf("orders service: %w", err)
	}

	a.Admin, err = admin.NewService(a.Auth, a.Client, a.Logger)
	if err != nil {
		return fmt.Errorf("admin service: %w", err)
	}
	return nil
}

// Start restores the persisted session. It is safe to call more than once.
func (a *App) Start(ctx context.Context) {
	a.Auth.RestoreSession(ctx)
}

// Close stops the subscribers and closes the storage backend.
func (a *App) Close() error {
	if a.Cart != nil {
		a.Cart.Close()
	}
	if a.Orders != nil {
		a.Orders.Close()
	}
	var err error
	if a.Store != nil {
		err = multierr.Append(err, a.Store.Close())
	}
	return err
}
