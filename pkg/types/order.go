package types

import (
	"github.com/angelmondragon/caraccessories-storefront/pkg/enums"
)

// ProductRef points an order line at a catalogue product.
type ProductRef struct {
	ProductID ID `json:"productId"`
}

// UserRef points an order at its buyer.
type UserRef struct {
	UserID ID `json:"userId"`
}

// OrderRef points a payment at its order.
type OrderRef struct {
	OrderID ID `json:"orderId"`
}

// OrderItemRequest is one line of an order submission.
type OrderItemRequest struct {
	Product         ProductRef `json:"product"`
	Quantity        int        `json:"quantity"`
	PriceAtPurchase Money      `json:"priceAtPurchase"`
}

// OrderRequest is the order submission payload.
type OrderRequest struct {
	OrderNumber     string              `json:"orderNumber"`
	ContactName     string              `json:"contactName"`
	ContactPhone    string              `json:"contactPhone"`
	DeliveryAddress string              `json:"deliveryAddress"`
	OrderItems      []OrderItemRequest  `json:"orderItems"`
	PaymentMethod   enums.PaymentMethod `json:"paymentMethod"`
	Subtotal        Money               `json:"subtotal"`
	DeliveryFee     Money               `json:"deliveryFee"`
	VAT             Money               `json:"vat"`
	GrandTotal      Money               `json:"grandTotal"`
	Status          enums.OrderStatus   `json:"status"`
	Buyer           UserRef             `json:"buyer"`
}

// PaymentRequest is the payment submission payload.
type PaymentRequest struct {
	PaymentDate   string              `json:"paymentDate"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
	Amount        Money               `json:"amount"`
	Status        enums.PaymentStatus `json:"status"`
	BankName      string              `json:"bankName,omitempty"`
	Order         OrderRef            `json:"order"`
}

// Payment is the payment record returned by the backend.
type Payment struct {
	PaymentID     ID                  `json:"paymentId,omitempty"`
	PaymentDate   string              `json:"paymentDate,omitempty"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod,omitempty"`
	Amount        Money               `json:"amount"`
	Status        enums.PaymentStatus `json:"status,omitempty"`
}

// OrderItem is one line of an order as returned by the backend. Product is
// filled in by hydration when the backend only sends the id.
type OrderItem struct {
	OrderItemID     ID       `json:"orderItemId,omitempty"`
	ProductID       ID       `json:"productId,omitempty"`
	ProductName     string   `json:"productName,omitempty"`
	Quantity        int      `json:"quantity"`
	PriceAtPurchase Money    `json:"priceAtPurchase"`
	Product         *Product `json:"product,omitempty"`
}

// ProductKey returns the product id referenced by the line.
func (i OrderItem) ProductKey() ID {
	if i.Product != nil {
		return FirstID(i.ProductID, i.Product.Ref())
	}
	return i.ProductID
}

// HasProduct reports whether the line already carries product details.
func (i OrderItem) HasProduct() bool {
	return i.Product != nil && (i.Product.Name != "" || !i.Product.Ref().IsZero())
}

// Order is an order as returned by the backend. It doubles as the last-order
// snapshot once Payment is attached.
type Order struct {
	OrderID         ID                  `json:"orderId,omitempty"`
	ID              ID                  `json:"id,omitempty"`
	OrderNumber     string              `json:"orderNumber,omitempty"`
	OrderDate       string              `json:"orderDate,omitempty"`
	ReturnableUntil string              `json:"returnableUntil,omitempty"`
	Status          string              `json:"status,omitempty"`
	ContactName     string              `json:"contactName,omitempty"`
	ContactPhone    string              `json:"contactPhone,omitempty"`
	DeliveryAddress string              `json:"deliveryAddress,omitempty"`
	PaymentMethod   enums.PaymentMethod `json:"paymentMethod,omitempty"`
	Subtotal        Money               `json:"subtotal"`
	DeliveryFee     Money               `json:"deliveryFee"`
	VAT             Money               `json:"vat"`
	GrandTotal      Money               `json:"grandTotal"`
	Buyer           *UserRef            `json:"buyer,omitempty"`
	OrderDetails    []OrderItem         `json:"orderDetails,omitempty"`
	OrderItems      []OrderItem         `json:"orderItems,omitempty"`
	Items           []OrderItem         `json:"items,omitempty"`
	Payment         *Payment            `json:"payment,omitempty"`
}

// Key identifies the order for de-duplication.
func (o Order) Key() ID {
	return FirstID(o.OrderID, o.ID)
}

// DisplayNumber is the number shown to the buyer.
func (o Order) DisplayNumber() string {
	if o.OrderNumber != "" {
		return o.OrderNumber
	}
	return o.Key().String()
}

// Lines returns whichever item list the backend populated.
func (o Order) Lines() []OrderItem {
	switch {
	case len(o.OrderDetails) > 0:
		return o.OrderDetails
	case len(o.OrderItems) > 0:
		return o.OrderItems
	default:
		return o.Items
	}
}

// WithLines returns a copy with lines normalised into OrderDetails.
func (o Order) WithLines(lines []OrderItem) Order {
	o.OrderDetails = lines
	o.OrderItems = nil
	o.Items = nil
	return o
}
