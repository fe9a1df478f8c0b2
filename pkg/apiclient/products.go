package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
)

// Products lists the public catalogue.
func (c *Client) Products(ctx context.Context) ([]types.Product, error) {
	var out []types.Product
	if err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/product/all",
		path:   "/product/all",
		out:    &out,
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// Product fetches one catalogue entry.
func (c *Client) Product(ctx context.Context, productID types.ID) (*types.Product, error) {
	var out types.Product
	if err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/product/{id}",
		path:   withID("/product/{id}", productID.String()),
		out:    &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// PurchaseProduct reserves quantity units of stock for a product that was
// just added to the cart.
func (c *Client) PurchaseProduct(ctx context.Context, productID types.ID, quantity int) error {
	return c.do(ctx, call{
		method: http.MethodPost,
		route:  "/product/purchase/{id}",
		path:   withID("/product/purchase/{id}", productID.String()),
		query:  url.Values{"quantity": {strconv.Itoa(quantity)}},
	})
}
