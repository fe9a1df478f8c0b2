package checkout

import (
	"context"
	"strings"
	"sync"

	"github.com/angelmondragon/caraccessories-storefront/pkg/apiclient"
	"github.com/angelmondragon/caraccessories-storefront/pkg/bus"
	"github.com/angelmondragon/caraccessories-storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/caraccessories-storefront/pkg/errors"
	"github.com/angelmondragon/caraccessories-storefront/pkg/storage"
	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
)

const (
	stageIdle              = enums.CheckoutStageIdle
	stageValidating        = enums.CheckoutStageValidating
	stageSubmittingOrder   = enums.CheckoutStageSubmittingOrder
	stageSubmittingPayment = enums.CheckoutStageSubmittingPayment
	stageCompleted         = enums.CheckoutStageCompleted
)

const (
	adminMessage       = "Admins cannot place orders. Please use a buyer account."
	emptyCartMessage   = "Your cart is empty."
	noBuyerMessage     = "Buyer information is missing. Please log in again."
	noAddressMessage   = "Your account doesn't have a delivery address. Please add your address in your profile before placing an order."
	placeFailedMessage = "Failed to place order. Please check your details and try again."
)

// SubmitInput is what the buyer chooses on the payment page.
type SubmitInput struct {
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
	BankName      string              `json:"bankName,omitempty"`
}

// Handoff is one attempt to place an order. It moves Idle → Validating →
// SubmittingOrder → SubmittingPayment → Completed; any failure returns it to
// Idle so the buyer can retry.
type Handoff struct {
	svc *Service

	mu          sync.Mutex
	stage       enums.CheckoutStage
	orderNumber string
	order       *types.Order
}

// Stage reports where the hand-off is.
func (h *Handoff) Stage() enums.CheckoutStage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stage
}

// OrderNumber is the client placeholder until the backend assigns a number.
func (h *Handoff) OrderNumber() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.orderNumber
}

// Completed reports whether the order has been placed.
func (h *Handoff) Completed() bool {
	return h.Stage() == stageCompleted
}

// Order returns the placed order once completed.
func (h *Handoff) Order() *types.Order {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.order
}

func (h *Handoff) setStage(stage enums.CheckoutStage) {
	h.mu.Lock()
	h.stage = stage
	h.mu.Unlock()
}

// begin claims the hand-off for a submission.
func (h *Handoff) begin() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch {
	case h.stage == stageCompleted:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order already placed").
			WithDetails(map[string]any{"order_number": h.orderNumber})
	case h.stage != stageIdle:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already in progress").
			WithDetails(map[string]any{"stage": h.stage})
	}
	h.stage = stageValidating
	return nil
}

// Submit places the order and records the payment. The cart is cleared only
// after both remote calls succeed. Cancelling ctx does not abort a submit in
// flight; the HTTP client timeout still bounds each remote call.
func (h *Handoff) Submit(ctx context.Context, in SubmitInput) (*types.Order, error) {
	ctx = context.WithoutCancel(ctx)
	if err := h.begin(); err != nil {
		return nil, err
	}
	s := h.svc
	ctx = s.logg.WithOrderNumber(ctx, h.OrderNumber())

	req, err := h.validate(ctx, in)
	if err != nil {
		h.setStage(stageIdle)
		s.metrics.IncCheckout(string(stageValidating), string(pkgerrors.CodeOf(err)))
		s.logg.Info(s.logg.WithField(ctx, "reason", err.Error()), "checkout rejected")
		return nil, err
	}
	ctx = s.logg.WithUserID(ctx, req.Buyer.UserID.String())

	h.setStage(stageSubmittingOrder)
	saved, err := s.remote.CreateOrder(ctx, *req)
	if err != nil {
		return nil, h.fail(ctx, stageSubmittingOrder, err)
	}
	if saved == nil {
		saved = &types.Order{}
	}
	if number := saved.DisplayNumber(); number != "" {
		h.mu.Lock()
		h.orderNumber = number
		h.mu.Unlock()
		ctx = s.logg.WithOrderNumber(ctx, number)
	}
	if saved.Key().IsZero() {
		return nil, h.fail(ctx, stageSubmittingOrder,
			pkgerrors.New(pkgerrors.CodeDependency, "").WithDetails(map[string]any{"reason": "order id missing from response"}))
	}

	h.setStage(stageSubmittingPayment)
	payReq := types.PaymentRequest{
		PaymentDate:   s.now().Format("2006-01-02"),
		PaymentMethod: req.PaymentMethod,
		Amount:        req.GrandTotal,
		Status:        req.PaymentMethod.InitialStatus(),
		BankName:      strings.TrimSpace(in.BankName),
		Order:         types.OrderRef{OrderID: saved.Key()},
	}
	payment, err := s.remote.CreatePayment(ctx, payReq)
	if err != nil {
		return nil, h.fail(ctx, stageSubmittingPayment, err)
	}
	if payment == nil || (payment.PaymentID.IsZero() && payment.Amount.IsZero()) {
		payment = &types.Payment{Amount: payReq.Amount}
	}
	saved.Payment = payment

	h.complete(ctx, saved)
	out := *saved
	return &out, nil
}

// validate applies the client-side guards in order and builds the order
// payload. It makes no remote calls.
func (h *Handoff) validate(ctx context.Context, in SubmitInput) (*types.OrderRequest, error) {
	s := h.svc

	if s.session.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, adminMessage)
	}

	lines := s.cart.Lines()
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, emptyCartMessage)
	}

	buyer := s.session.CurrentUser()
	if buyer == nil || buyer.Identity().IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, noBuyerMessage)
	}

	address := buyer.ShippingAddress()
	if address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, noAddressMessage)
	}

	method := in.PaymentMethod
	if method == "" {
		method = enums.PaymentMethodCard
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method").
			WithDetails(map[string]any{"payment_method": in.PaymentMethod})
	}

	quote := s.pricing.Price(lines)
	items := make([]types.OrderItemRequest, 0, len(lines))
	for _, l := range lines {
		items = append(items, types.OrderItemRequest{
			Product:         types.ProductRef{ProductID: l.ProductRef},
			Quantity:        l.Quantity,
			PriceAtPurchase: l.Price,
		})
	}

	s.logg.Debug(s.logg.WithField(ctx, "lines", len(items)), "checkout validated")
	return &types.OrderRequest{
		OrderNumber:     h.OrderNumber(),
		ContactName:     buyer.ContactName(),
		ContactPhone:    buyer.ContactPhone(),
		DeliveryAddress: address,
		OrderItems:      items,
		PaymentMethod:   method,
		Subtotal:        quote.Subtotal,
		DeliveryFee:     quote.DeliveryFee,
		VAT:             quote.VAT,
		GrandTotal:      quote.GrandTotal,
		Status:          enums.OrderStatusPending,
		Buyer:           types.UserRef{UserID: buyer.Identity()},
	}, nil
}

// fail returns the hand-off to Idle and rewrites err with the message shown
// to the buyer. The cart is left untouched.
func (h *Handoff) fail(ctx context.Context, stage enums.CheckoutStage, err error) error {
	s := h.svc
	h.setStage(stageIdle)
	s.metrics.IncCheckout(string(stage), string(pkgerrors.CodeOf(err)))
	s.logg.Error(s.logg.WithField(ctx, "stage", stage), "checkout failed", err)

	message := placeFailedMessage
	if apiclient.HasServerMessage(err) {
		message = pkgerrors.As(err).Message()
	}
	return pkgerrors.Wrap(pkgerrors.CodeOf(err), err, message)
}

func (h *Handoff) complete(ctx context.Context, order *types.Order) {
	s := h.svc

	h.mu.Lock()
	h.stage = stageCompleted
	h.order = order
	h.mu.Unlock()

	s.cart.Clear(ctx)
	s.store.Write(ctx, storage.KeyLastOrder, order)
	bus.Publish(ctx, s.bus, bus.OrderCreated, *order)

	s.metrics.IncCheckout(string(stageCompleted), "ok")
	s.logg.Info(s.logg.WithField(ctx, "order_id", order.Key().String()), "order placed")
}
