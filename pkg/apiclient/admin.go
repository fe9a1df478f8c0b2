package apiclient

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	pkgerrors "github.com/angelmondragon/caraccessories-storefront/pkg/errors"
	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
)

// AdminProducts lists every product including hidden stock.
func (c *Client) AdminProducts(ctx context.Context) ([]types.Product, error) {
	var out []types.Product
	if err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/admin/product/all",
		path:   "/admin/product/all",
		out:    &out,
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// AdminDeleteProduct removes a product.
func (c *Client) AdminDeleteProduct(ctx context.Context, productID types.ID) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		route:  "/admin/product/delete/{id}",
		path:   withID("/admin/product/delete/{id}", productID.String()),
	})
}

// AdminPendingOrders lists orders awaiting fulfilment.
func (c *Client) AdminPendingOrders(ctx context.Context) ([]types.Order, error) {
	var out []types.Order
	if err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/admin/order/pending",
		path:   "/admin/order/pending",
		out:    &out,
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// AdminUsers lists every account.
func (c *Client) AdminUsers(ctx context.Context) ([]types.AdminUser, error) {
	var out []types.AdminUser
	if err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/admin/user/all",
		path:   "/admin/user/all",
		out:    &out,
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// AdminDeleteUser removes an account.
func (c *Client) AdminDeleteUser(ctx context.Context, userID types.ID) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		route:  "/admin/user/delete/{id}",
		path:   withID("/admin/user/delete/{id}", userID.String()),
	})
}

// UploadProduct sends a new product with its image as multipart form data.
func (c *Client) UploadProduct(ctx context.Context, upload types.ProductUpload) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"name", upload.Name},
		{"brand", upload.Brand},
		{"category", upload.Category},
		{"size", upload.Size},
		{"material", upload.Material},
		{"price", upload.Price.String()},
		{"stockQuantity", strconv.Itoa(upload.StockQuantity)},
		{"description", upload.Description},
	}
	for _, f := range fields {
		if err := form.WriteField(f[0], f[1]); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode upload form")
		}
	}
	if upload.Image != nil {
		part, err := form.CreateFormFile("file", upload.FileName)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode upload form")
		}
		if _, err := io.Copy(part, upload.Image); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read product image")
		}
	}
	if err := form.Close(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode upload form")
	}

	return c.do(ctx, call{
		method:      http.MethodPost,
		route:       "/product/upload",
		path:        "/product/upload",
		raw:         &buf,
		contentType: form.FormDataContentType(),
	})
}
