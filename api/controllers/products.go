package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/caraccessories-storefront/api/responses"
	"github.com/angelmondragon/caraccessories-storefront/api/validators"
	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
)

// Catalogue reads products from the backend.
type Catalogue interface {
	Products(ctx context.Context) ([]types.Product, error)
	Product(ctx context.Context, productID types.ID) (*types.Product, error)
}

// ProductsList proxies the shop listing.
func ProductsList(c Catalogue, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := c.Products(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if products == nil {
			products = []types.Product{}
		}
		responses.WriteSuccess(w, products)
	}
}

// ProductDetail proxies a single product.
func ProductDetail(c Catalogue, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := c.Product(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
