package checkout

import (
	"github.com/angelmondragon/caraccessories-storefront/internal/cart"
	"github.com/angelmondragon/caraccessories-storefront/pkg/config"
	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
	"github.com/shopspring/decimal"
)

// Pricing holds the flat delivery fee and the VAT rate applied at checkout.
type Pricing struct {
	DeliveryFee decimal.Decimal
	VATRate     decimal.Decimal
}

// DefaultPricing is a 50 delivery fee and 15% VAT.
var DefaultPricing = Pricing{
	DeliveryFee: decimal.NewFromInt(50),
	VATRate:     decimal.RequireFromString("0.15"),
}

// PricingFromConfig reads the checkout section of the config.
func PricingFromConfig(cfg config.CheckoutConfig) Pricing {
	return Pricing{DeliveryFee: cfg.Fee(), VATRate: cfg.Rate()}
}

// Quote is the price breakdown of a cart.
type Quote struct {
	ItemCount   int         `json:"itemCount"`
	Subtotal    types.Money `json:"subtotal"`
	DeliveryFee types.Money `json:"deliveryFee"`
	VAT         types.Money `json:"vat"`
	GrandTotal  types.Money `json:"grandTotal"`
}

// Price computes the quote for lines. VAT is charged on the subtotal plus
// the delivery fee.
func (p Pricing) Price(lines []cart.Line) Quote {
	subtotal := cart.Sum(lines)
	taxable := subtotal.Add(p.DeliveryFee)
	vat := taxable.Mul(p.VATRate)

	count := 0
	for _, l := range lines {
		count += l.Quantity
	}

	return Quote{
		ItemCount:   count,
		Subtotal:    types.NewMoney(subtotal),
		DeliveryFee: types.NewMoney(p.DeliveryFee),
		VAT:         types.NewMoney(vat),
		GrandTotal:  types.NewMoney(taxable.Add(vat)),
	}
}
