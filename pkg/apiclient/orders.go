package apiclient

import (
	"context"
	"net/http"

	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
)

// CreateOrder posts an order to /order/create.
func (c *Client) CreateOrder(ctx context.Context, req types.OrderRequest) (*types.Order, error) {
	var out types.Order
	if err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/order/create",
		path:   "/order/create",
		body:   req,
		out:    &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// OrdersByBuyer lists the orders of one buyer.
func (c *Client) OrdersByBuyer(ctx context.Context, buyerID types.ID) ([]types.Order, error) {
	var out []types.Order
	if err := c.do(ctx, call{
		method: http.MethodGet,
		route:  c.routes.OrdersByBuyer,
		path:   withID(c.routes.OrdersByBuyer, buyerID.String()),
		out:    &out,
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// Order fetches a single order.
func (c *Client) Order(ctx context.Context, orderID types.ID) (*types.Order, error) {
	var out types.Order
	if err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/order/{id}",
		path:   withID("/order/{id}", orderID.String()),
		out:    &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// AllOrders lists every order. Admin only on the backend.
func (c *Client) AllOrders(ctx context.Context) ([]types.Order, error) {
	var out []types.Order
	if err := c.do(ctx, call{
		method: http.MethodGet,
		route:  c.routes.OrdersAll,
		path:   c.routes.OrdersAll,
		out:    &out,
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// CreatePayment posts a payment to /payment/create.
func (c *Client) CreatePayment(ctx context.Context, req types.PaymentRequest) (*types.Payment, error) {
	var out types.Payment
	if err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/payment/create",
		path:   "/payment/create",
		body:   req,
		out:    &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}
