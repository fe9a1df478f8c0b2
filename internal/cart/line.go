package cart

import (
	"math"
	"strconv"
	"strings"

	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
	"github.com/shopspring/decimal"
)

// Line is one product in the cart. Price is the snapshot taken when the
// product was first added and is never refreshed.
type Line struct {
	ProductRef types.ID    `json:"productId"`
	Name       string      `json:"name"`
	Price      types.Money `json:"price"`
	ImageRef   string      `json:"imageURL,omitempty"`
	Quantity   int         `json:"quantity"`
}

// Subtotal is price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func lineFromProduct(p types.Product) Line {
	return Line{
		ProductRef: p.Ref(),
		Name:       p.Name,
		Price:      p.Price,
		ImageRef:   p.ImageRef(),
		Quantity:   1,
	}
}

// storedLine accepts both the current layout and lines saved as a product
// with a quantity attached.
type storedLine struct {
	types.Product
	Quantity *float64 `json:"quantity"`
}

func (s storedLine) toLine() Line {
	line := lineFromProduct(s.Product)
	line.Quantity = 1
	if s.Quantity != nil {
		line.Quantity = clampQuantity(*s.Quantity)
	}
	return line
}

// ParseQuantity reads a user-entered quantity. Anything that is not a
// number of at least one becomes 1.
func ParseQuantity(raw string) int {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		return clampQuantity(float64(n))
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return clampQuantity(f)
	}
	return 1
}

func clampQuantity(q float64) int {
	if math.IsNaN(q) || q < 1 {
		return 1
	}
	if q > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(q)
}
