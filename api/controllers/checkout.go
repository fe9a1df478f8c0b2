package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/caraccessories-storefront/api/responses"
	"github.com/angelmondragon/caraccessories-storefront/api/validators"
	"github.com/angelmondragon/caraccessories-storefront/internal/checkout"
	"github.com/angelmondragon/caraccessories-storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/caraccessories-storefront/pkg/errors"
	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
)

// CheckoutService is the hand-off surface exposed over HTTP.
type CheckoutService interface {
	Quoter
	Current() *checkout.Handoff
	LastOrder(ctx context.Context) (*types.Order, bool)
	ClearLastOrder(ctx context.Context)
}

type checkoutRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"omitempty,oneof=card eft"`
	BankName      string `json:"bankName" validate:"max=64"`
}

type checkoutResponse struct {
	OrderNumber string              `json:"orderNumber"`
	Stage       enums.CheckoutStage `json:"stage"`
	Quote       checkout.Quote      `json:"quote"`
	Order       *types.Order        `json:"order,omitempty"`
}

// CheckoutFetch shows the open hand-off: its placeholder order number,
// stage and price breakdown.
func CheckoutFetch(svc CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := svc.Current()
		responses.WriteSuccess(w, checkoutResponse{
			OrderNumber: h.OrderNumber(),
			Stage:       h.Stage(),
			Quote:       svc.Quote(),
		})
	}
}

// CheckoutSubmit places the order and records the payment.
func CheckoutSubmit(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote := svc.Quote()
		h := svc.Current()
		order, err := h.Submit(r.Context(), checkout.SubmitInput{
			PaymentMethod: enums.PaymentMethod(body.PaymentMethod),
			BankName:      validators.SanitizeString(body.BankName, 64),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			OrderNumber: h.OrderNumber(),
			Stage:       h.Stage(),
			Quote:       quote,
			Order:       order,
		})
	}
}

// LastOrderFetch returns the snapshot of the most recent checkout.
func LastOrderFetch(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, ok := svc.LastOrder(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no recent order"))
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// LastOrderClear forgets the snapshot.
func LastOrderClear(svc CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.ClearLastOrder(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}
}
