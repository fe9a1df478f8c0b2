package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/caraccessories-storefront/api/responses"
	"github.com/angelmondragon/caraccessories-storefront/api/validators"
	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
)

// OrderHistory reads the buyer's orders.
type OrderHistory interface {
	History(ctx context.Context) ([]types.Order, error)
	Get(ctx context.Context, orderID types.ID) (*types.Order, error)
}

// OrdersList returns the buyer's orders, newest placed first.
func OrdersList(svc OrderHistory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := svc.History(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if orders == nil {
			orders = []types.Order{}
		}
		responses.WriteSuccess(w, orders)
	}
}

// OrderDetail returns one order with product details.
func OrderDetail(svc OrderHistory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
