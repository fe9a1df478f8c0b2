package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/caraccessories-storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/caraccessories-storefront/pkg/errors"
	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
	"github.com/angelmondragon/caraccessories-storefront/pkg/metrics"
)

const (
	responseReadLimit int64 = 4 << 20
	errorBodyLimit    int64 = 4 << 10
)

var errBaseURLRequired = errors.New("storefront api base url is required")

// Routes holds the order-list paths, which differ between backend builds.
type Routes struct {
	OrdersAll     string
	OrdersByBuyer string
}

// DefaultRoutes is the canonical route set.
var DefaultRoutes = Routes{
	OrdersAll:     "/order/all",
	OrdersByBuyer: "/order/buyer/{id}",
}

// Client talks to the CarAccessories REST backend. It carries the default
// bearer header for every call once a session is established.
type Client struct {
	httpClient *http.Client
	baseURL    string
	routes     Routes
	logg       *logger.Logger
	metrics    *metrics.Storefront

	mu    sync.RWMutex
	token string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRoutes overrides the order-list routes.
func WithRoutes(routes Routes) Option {
	return func(c *Client) {
		if strings.TrimSpace(routes.OrdersAll) != "" {
			c.routes.OrdersAll = routes.OrdersAll
		}
		if strings.Contains(routes.OrdersByBuyer, "{id}") {
			c.routes.OrdersByBuyer = routes.OrdersByBuyer
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		if logg != nil {
			c.logg = logg
		}
	}
}

// WithMetrics attaches the remote request histogram.
func WithMetrics(m *metrics.Storefront) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New builds the client for baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}

	client := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    trimmed,
		routes:     DefaultRoutes,
		logg:       logger.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// NewFromConfig builds the client from the API config section.
func NewFromConfig(cfg config.APIConfig, opts ...Option) (*Client, error) {
	base := []Option{
		WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		WithRoutes(Routes{OrdersAll: cfg.OrdersAllPath, OrdersByBuyer: cfg.OrdersByBuyerPath}),
	}
	return New(cfg.BaseURL, append(base, opts...)...)
}

// SetToken installs the default bearer header.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = strings.TrimSpace(token)
}

// ClearToken drops the default bearer header.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// HasToken reports whether a bearer header will be sent.
func (c *Client) HasToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// call describes one remote request. route is the path template used for
// metrics; path is the concrete request path.
type call struct {
	method string
	route  string
	path   string
	query  url.Values
	body   any
	out    any

	// raw is sent as is instead of a JSON body; used for multipart uploads.
	raw         io.Reader
	contentType string
}

func (c *Client) do(ctx context.Context, rc call) error {
	start := time.Now()
	err := c.execute(ctx, rc)

	outcome := "ok"
	if err != nil {
		outcome = string(pkgerrors.CodeOf(err))
	}
	label := rc.method + " " + rc.route
	c.metrics.ObserveRemote(label, outcome, time.Since(start))

	logCtx := c.logg.WithFields(ctx, map[string]any{
		"remote_route": label,
		"outcome":      outcome,
		"duration_ms":  time.Since(start).Milliseconds(),
	})
	if err != nil {
		c.logg.Warn(logCtx, "remote call failed")
	} else {
		c.logg.Debug(logCtx, "remote call completed")
	}
	return err
}

func (c *Client) execute(ctx context.Context, rc call) error {
	var (
		reader      io.Reader
		contentType string
	)
	switch {
	case rc.raw != nil:
		reader, contentType = rc.raw, rc.contentType
	case rc.body != nil:
		payload, err := json.Marshal(rc.body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal request body")
		}
		reader, contentType = bytes.NewReader(payload), "application/json"
	}

	target := c.buildURL(rc.path)
	if len(rc.query) > 0 {
		target += "?" + rc.query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, rc.method, target, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if token := c.bearer(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeTransient, err, pkgerrors.MetadataFor(pkgerrors.CodeTransient).PublicMessage)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return classify(resp.StatusCode, body)
	}

	if rc.out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, responseReadLimit))
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, responseReadLimit))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeTransient, err, "read response body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, rc.out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response").
			WithDetails(map[string]any{"status": resp.StatusCode})
	}
	return nil
}

func (c *Client) buildURL(path string) string {
	return fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(path, "/"))
}

func withID(template string, id string) string {
	return strings.ReplaceAll(template, "{id}", url.PathEscape(id))
}
