package shop

import (
	"context"
	"fmt"

	"github.com/angelmondragon/caraccessories-storefront/internal/cart"
	pkgerrors "github.com/angelmondragon/caraccessories-storefront/pkg/errors"
	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
)

const (
	outOfStockMessage     = "This product is out of stock."
	purchaseFailedMessage = "Purchase failed. Product may be out of stock."
)

type catalogue interface {
	Product(ctx context.Context, productID types.ID) (*types.Product, error)
	PurchaseProduct(ctx context.Context, productID types.ID, quantity int) error
}

type basket interface {
	AddToCart(ctx context.Context, p types.Product) (cart.Line, error)
}

// Service is the shop's add-to-cart action: it checks stock, adds the
// product to the local cart and reserves one unit with the backend.
type Service struct {
	catalogue catalogue
	cart      basket
	logg      *logger.Logger
}

// NewService builds the shop service.
func NewService(client catalogue, c basket, logg *logger.Logger) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("catalogue client is required")
	}
	if c == nil {
		return nil, fmt.Errorf("cart is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{catalogue: client, cart: c, logg: logg}, nil
}

// AddToCart fetches the current listing for productID and refuses it when no
// stock is left. Otherwise the cart gains one unit and one unit is reserved.
// A failed reservation keeps the cart line and returns it alongside a
// Dependency error.
func (s *Service) AddToCart(ctx context.Context, productID types.ID) (cart.Line, error) {
	if productID.IsZero() {
		return cart.Line{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.catalogue.Product(ctx, productID)
	if err != nil {
		return cart.Line{}, err
	}
	if product.Ref().IsZero() {
		product.ProductID = productID
	}
	if !product.InStock() {
		return cart.Line{}, pkgerrors.New(pkgerrors.CodeValidation, outOfStockMessage).
			WithDetails(map[string]any{"product_id": productID.String()})
	}

	line, err := s.cart.AddToCart(ctx, *product)
	if err != nil {
		return cart.Line{}, err
	}

	ctx = s.logg.WithField(ctx, "product_id", productID.String())
	if err := s.catalogue.PurchaseProduct(ctx, product.Ref(), 1); err != nil {
		s.logg.Warn(ctx, "stock reservation failed; cart line kept")
		return line, pkgerrors.Wrap(pkgerrors.CodeDependency, err, purchaseFailedMessage)
	}
	s.logg.Info(ctx, "product added and reserved")
	return line, nil
}
