package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/angelmondragon/caraccessories-storefront/api/responses"
	"github.com/angelmondragon/caraccessories-storefront/api/validators"
	"github.com/angelmondragon/caraccessories-storefront/internal/cart"
	"github.com/angelmondragon/caraccessories-storefront/internal/checkout"
	pkgerrors "github.com/angelmondragon/caraccessories-storefront/pkg/errors"
	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
)

// CartManager is the cart surface exposed over HTTP.
type CartManager interface {
	RemoveFromCart(ctx context.Context, ref types.ID)
	UpdateQuantity(ctx context.Context, ref types.ID, raw string) (cart.Line, bool)
	Clear(ctx context.Context)
	Lines() []cart.Line
	Count() int
}

// Shopper adds a product to the cart after checking and reserving stock.
type Shopper interface {
	AddToCart(ctx context.Context, productID types.ID) (cart.Line, error)
}

// Quoter prices the current cart.
type Quoter interface {
	Quote() checkout.Quote
}

type cartResponse struct {
	Items []cart.Line    `json:"items"`
	Count int            `json:"count"`
	Quote checkout.Quote `json:"quote"`
}

func newCartResponse(c CartManager, q Quoter) cartResponse {
	return cartResponse{Items: c.Lines(), Count: c.Count(), Quote: q.Quote()}
}

// rawQuantity accepts the quantity as typed into the page: a JSON string or
// a number. Anything unparseable becomes 1 in the cart manager.
type rawQuantity string

func (q *rawQuantity) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		*q = rawQuantity(s)
		return nil
	}
	*q = rawQuantity(strings.Trim(string(trimmed), `"`))
	return nil
}

type quantityRequest struct {
	Quantity rawQuantity `json:"quantity"`
}

// CartFetch returns the lines, count and price breakdown.
func CartFetch(c CartManager, q Quoter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, newCartResponse(c, q))
	}
}

// CartAdd adds one unit of the posted product. Only the product's id is
// read from the body; price and stock come from the catalogue.
func CartAdd(s Shopper, c CartManager, q Quoter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var product types.Product
		if err := validators.DecodeLooseJSONBody(r, &product); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := s.AddToCart(r.Context(), product.Ref()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(c, q))
	}
}

// CartUpdateQuantity sets the quantity of one line.
func CartUpdateQuantity(c CartManager, q Quoter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, err := validators.PathID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body quantityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, ok := c.UpdateQuantity(r.Context(), ref, string(body.Quantity)); !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "item is not in the cart"))
			return
		}
		responses.WriteSuccess(w, newCartResponse(c, q))
	}
}

// CartRemove deletes one line. Removing an absent line succeeds.
func CartRemove(c CartManager, q Quoter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, err := validators.PathID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c.RemoveFromCart(r.Context(), ref)
		responses.WriteSuccess(w, newCartResponse(c, q))
	}
}

// CartClear empties the cart.
func CartClear(c CartManager, q Quoter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c.Clear(r.Context())
		responses.WriteSuccess(w, newCartResponse(c, q))
	}
}
