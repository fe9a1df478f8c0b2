package enums

// OrderStatus is the status the client attaches to a new order. The backend
// owns every transition after creation.
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
)

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}
